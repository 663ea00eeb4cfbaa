package server

import (
	"fmt"
	"log/slog"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/pliniogoncalves/PPD-comunicador-geografico/pkg/model"
	"github.com/pliniogoncalves/PPD-comunicador-geografico/pkg/registry"
)

// UserYAML represents a user in the seed/export YAML format.
type UserYAML struct {
	Name      string  `yaml:"name"`
	Latitude  float64 `yaml:"lat"`
	Longitude float64 `yaml:"lon"`
	Radius    float64 `yaml:"radius"`
	Status    string  `yaml:"status,omitempty"`
}

// UsersConfig is the top-level YAML document for seeding and export.
type UsersConfig struct {
	Users []UserYAML `yaml:"users"`
}

// LoadUsersFromYAML reads a users YAML file and registers each entry.
// Entries with an invalid name are skipped with a log line; a seed file
// must never take the server down.
func LoadUsersFromYAML(path string, reg *registry.Registry) error {
	data, err := os.ReadFile(path) //nolint:gosec // path from user-provided CLI config
	if err != nil {
		return fmt.Errorf("server: read users file: %w", err)
	}
	return ImportUsersFromYAML(data, reg)
}

// ImportUsersFromYAML parses YAML data and registers each user.
func ImportUsersFromYAML(data []byte, reg *registry.Registry) error {
	var cfg UsersConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("server: parse users file: %w", err)
	}

	count := 0
	for _, u := range cfg.Users {
		if err := model.ValidateName(u.Name); err != nil {
			slog.Warn("skipping seed user", "name", u.Name, "err", err)
			continue
		}
		reg.Register(u.Name, u.Latitude, u.Longitude, u.Radius)
		if s := model.Status(u.Status); s.Valid() {
			reg.UpdateStatus(u.Name, s)
		}
		count++
	}

	slog.Info("seeded users from YAML", "count", count)
	return nil
}

// ExportUsersYAML exports all registered users as YAML, sorted by name.
func ExportUsersYAML(reg *registry.Registry) ([]byte, error) {
	users := reg.ListUsers()

	names := make([]string, 0, len(users))
	for name := range users {
		names = append(names, name)
	}
	sort.Strings(names)

	export := UsersConfig{}
	for _, name := range names {
		u := users[name]
		export.Users = append(export.Users, UserYAML{
			Name:      u.Name,
			Latitude:  u.Latitude,
			Longitude: u.Longitude,
			Radius:    u.Radius,
			Status:    string(u.Status),
		})
	}
	return yaml.Marshal(&export)
}
