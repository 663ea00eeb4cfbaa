package server_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pliniogoncalves/PPD-comunicador-geografico/pkg/model"
	"github.com/pliniogoncalves/PPD-comunicador-geografico/pkg/registry"
	"github.com/pliniogoncalves/PPD-comunicador-geografico/pkg/server"
)

const seedYAML = `
users:
  - name: Alice
    lat: -3.71
    lon: -38.54
    radius: 5
  - name: Bob
    lat: -3.72
    lon: -38.55
    radius: 5
    status: ONLINE
  - name: "bad name!"
    lat: 0
    lon: 0
    radius: 1
`

func TestImportUsersFromYAML(t *testing.T) {
	reg := registry.New()
	if err := server.ImportUsersFromYAML([]byte(seedYAML), reg); err != nil {
		t.Fatalf("ImportUsersFromYAML: %v", err)
	}

	want := map[string]model.UserRecord{
		"Alice": {Name: "Alice", Latitude: -3.71, Longitude: -38.54, Radius: 5, Status: model.StatusOffline},
		"Bob":   {Name: "Bob", Latitude: -3.72, Longitude: -38.55, Radius: 5, Status: model.StatusOnline},
	}
	if diff := cmp.Diff(want, reg.ListUsers()); diff != "" {
		t.Errorf("seeded registry mismatch (-want +got):\n%s", diff)
	}
}

func TestImportUsersRejectsBadYAML(t *testing.T) {
	reg := registry.New()
	if err := server.ImportUsersFromYAML([]byte("users: {not a list"), reg); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestExportUsersYAMLRoundTrip(t *testing.T) {
	reg := registry.New()
	reg.Register("zoe", 1, 2, 3)
	reg.Register("adam", 4, 5, 6)
	reg.UpdateStatus("adam", model.StatusOnline)

	data, err := server.ExportUsersYAML(reg)
	if err != nil {
		t.Fatalf("ExportUsersYAML: %v", err)
	}

	// Re-importing the export reproduces the same registry.
	reg2 := registry.New()
	if err := server.ImportUsersFromYAML(data, reg2); err != nil {
		t.Fatalf("ImportUsersFromYAML: %v", err)
	}
	if diff := cmp.Diff(reg.ListUsers(), reg2.ListUsers()); diff != "" {
		t.Errorf("export/import mismatch (-want +got):\n%s", diff)
	}
}
