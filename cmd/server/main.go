package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/pliniogoncalves/PPD-comunicador-geografico/pkg/logging"
	"github.com/pliniogoncalves/PPD-comunicador-geografico/pkg/registry"
	"github.com/pliniogoncalves/PPD-comunicador-geografico/pkg/server"
	"github.com/pliniogoncalves/PPD-comunicador-geografico/pkg/version"
)

func main() {
	cfg := server.DefaultConfig()

	flag.StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "TCP bind address for the registry RPC plane")
	flag.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "HTTP bind address for /metrics (empty to disable)")
	flag.StringVar(&cfg.UsersFile, "users-file", "", "YAML file of users to register on startup")
	flag.BoolVar(&cfg.ExportUsers, "export-users", false, "Export the seeded users as YAML and exit")
	showVersion := flag.Bool("version", false, "Print version and exit")

	logLevel := flag.String("log-level", "info", "Log level: "+logging.LevelNames())
	logFormat := flag.String("log-format", "text", "Log format: text or json")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Full())
		return
	}

	// Configure structured logging
	if err := logging.Setup(logging.Options{
		Level:  *logLevel,
		Format: *logFormat,
		Output: os.Stdout,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "invalid logging config: %v\n", err)
		os.Exit(1)
	}

	reg := registry.New()

	// Handle export command (run and exit)
	if cfg.ExportUsers {
		if cfg.UsersFile != "" {
			if err := server.LoadUsersFromYAML(cfg.UsersFile, reg); err != nil {
				slog.Error("load users file", "err", err)
				os.Exit(1)
			}
		}
		data, err := server.ExportUsersYAML(reg)
		if err != nil {
			slog.Error("export users", "err", err)
			os.Exit(1)
		}
		fmt.Print(string(data))
		return
	}

	srv := server.New(cfg, reg)
	if err := srv.Run(); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}
