package registry_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pliniogoncalves/PPD-comunicador-geografico/pkg/model"
	"github.com/pliniogoncalves/PPD-comunicador-geografico/pkg/registry"
)

func TestRegisterUpsert(t *testing.T) {
	reg := registry.New()

	if !reg.Register("alice", -3.71, -38.54, 5) {
		t.Fatal("Register: expected true")
	}

	users := reg.ListUsers()
	want := model.UserRecord{Name: "alice", Latitude: -3.71, Longitude: -38.54, Radius: 5, Status: model.StatusOffline}
	if diff := cmp.Diff(want, users["alice"]); diff != "" {
		t.Errorf("record after first register mismatch (-want +got):\n%s", diff)
	}

	// Re-registering overwrites coordinates/radius but leaves status alone.
	if !reg.UpdateStatus("alice", model.StatusOnline) {
		t.Fatal("UpdateStatus: expected true")
	}
	if !reg.Register("alice", 10, 20, 50) {
		t.Fatal("Register: expected true")
	}

	users = reg.ListUsers()
	want = model.UserRecord{Name: "alice", Latitude: 10, Longitude: 20, Radius: 50, Status: model.StatusOnline}
	if diff := cmp.Diff(want, users["alice"]); diff != "" {
		t.Errorf("record after re-register mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdatesFailForUnknownName(t *testing.T) {
	reg := registry.New()

	if reg.UpdateLocation("ghost", 1, 2) {
		t.Error("UpdateLocation: expected false for unknown name")
	}
	if reg.UpdateRadius("ghost", 10) {
		t.Error("UpdateRadius: expected false for unknown name")
	}
	if reg.UpdateStatus("ghost", model.StatusOnline) {
		t.Error("UpdateStatus: expected false for unknown name")
	}
	if n := reg.UserCount(); n != 0 {
		t.Errorf("UserCount = %d, want 0 (failed updates must not create records)", n)
	}
}

func TestUpdateStatusRejectsInvalidStatus(t *testing.T) {
	reg := registry.New()
	reg.Register("alice", 0, 0, 5)

	if reg.UpdateStatus("alice", model.Status("AWAY")) {
		t.Error("UpdateStatus: expected false for invalid status")
	}
	if got := reg.ListUsers()["alice"].Status; got != model.StatusOffline {
		t.Errorf("status = %q, want %q untouched", got, model.StatusOffline)
	}
}

func TestUpdateLocationPreservesOtherFields(t *testing.T) {
	reg := registry.New()
	reg.Register("alice", -3.71, -38.54, 5)
	reg.UpdateStatus("alice", model.StatusOnline)

	if !reg.UpdateLocation("alice", -3.8, -38.6) {
		t.Fatal("UpdateLocation: expected true")
	}
	want := model.UserRecord{Name: "alice", Latitude: -3.8, Longitude: -38.6, Radius: 5, Status: model.StatusOnline}
	if diff := cmp.Diff(want, reg.ListUsers()["alice"]); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestSendSyncAndDrain(t *testing.T) {
	reg := registry.New()
	reg.Register("bob", 0, 0, 5)
	reg.UpdateStatus("bob", model.StatusOnline)

	if !reg.SendSync("alice", "bob", "hello") {
		t.Fatal("SendSync: expected true")
	}
	if !reg.SendSync("carol", "bob", "hi there") {
		t.Fatal("SendSync: expected true")
	}

	want := []string{"(RPC) alice: hello", "(RPC) carol: hi there"}
	if diff := cmp.Diff(want, reg.DrainSync("bob")); diff != "" {
		t.Errorf("DrainSync mismatch (-want +got):\n%s", diff)
	}

	// Draining empties the mailbox: a second drain yields nothing.
	if diff := cmp.Diff([]string{}, reg.DrainSync("bob")); diff != "" {
		t.Errorf("second DrainSync mismatch (-want +got):\n%s", diff)
	}
}

func TestSendSyncRejections(t *testing.T) {
	reg := registry.New()
	reg.Register("bob", 0, 0, 5) // status OFFLINE

	if reg.SendSync("alice", "bob", "anyone home?") {
		t.Error("SendSync: expected false for OFFLINE recipient")
	}
	if reg.SendSync("alice", "ghost", "hello?") {
		t.Error("SendSync: expected false for unknown recipient")
	}

	// Rejected sends must leave no trace in the mailbox.
	reg.UpdateStatus("bob", model.StatusOnline)
	if diff := cmp.Diff([]string{}, reg.DrainSync("bob")); diff != "" {
		t.Errorf("mailbox after rejected sends (-want +got):\n%s", diff)
	}
}

func TestDrainSyncUnknownName(t *testing.T) {
	reg := registry.New()
	if diff := cmp.Diff([]string{}, reg.DrainSync("nobody")); diff != "" {
		t.Errorf("DrainSync for unknown name (-want +got):\n%s", diff)
	}
}

func TestListUsersIsASnapshot(t *testing.T) {
	reg := registry.New()
	reg.Register("alice", 1, 2, 3)

	snap := reg.ListUsers()
	reg.UpdateLocation("alice", 9, 9)

	if snap["alice"].Latitude != 1 || snap["alice"].Longitude != 2 {
		t.Error("snapshot mutated by a later update; ListUsers must copy records")
	}
}

// Concurrent registers and snapshot reads must never expose a
// partially written record: all fields from one Register call appear
// together or not at all.
func TestConcurrentRegisterAndList(t *testing.T) {
	reg := registry.New()

	const workers = 8
	const rounds = 200

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			name := fmt.Sprintf("user%d", w)
			for i := 0; i < rounds; i++ {
				v := float64(i)
				reg.Register(name, v, v*2, v*3)
			}
		}(w)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			for _, u := range reg.ListUsers() {
				if u.Longitude != u.Latitude*2 || u.Radius != u.Latitude*3 {
					t.Errorf("torn record observed: %+v", u)
					return
				}
			}
		}
	}()

	wg.Wait()
}
