// Package registry implements the authoritative user-record store and
// the per-user synchronous mailboxes.
//
// Every operation runs under one coarse lock covering both maps, so the
// RPC surface is linearizable and ListUsers returns a consistent
// point-in-time snapshot. Operations never fail with an error; an
// ill-formed request is reported through the boolean return value.
package registry

import (
	"fmt"
	"sync"

	"github.com/pliniogoncalves/PPD-comunicador-geografico/pkg/model"
)

// Registry holds the user records and synchronous mailboxes.
type Registry struct {
	mu        sync.Mutex
	users     map[string]*model.UserRecord
	mailboxes map[string][]string
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		users:     make(map[string]*model.UserRecord),
		mailboxes: make(map[string][]string),
	}
}

// Register upserts a user record. A new name starts OFFLINE; an
// existing name keeps its current status and only has coordinates and
// radius overwritten. Always succeeds.
func (r *Registry) Register(name string, lat, lon, radius float64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[name]; ok {
		u.Latitude = lat
		u.Longitude = lon
		u.Radius = radius
		return true
	}
	r.users[name] = &model.UserRecord{
		Name:      name,
		Latitude:  lat,
		Longitude: lon,
		Radius:    radius,
		Status:    model.StatusOffline,
	}
	return true
}

// UpdateLocation overwrites a user's coordinates. Returns false if the
// name is unknown.
func (r *Registry) UpdateLocation(name string, lat, lon float64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[name]
	if !ok {
		return false
	}
	u.Latitude = lat
	u.Longitude = lon
	return true
}

// UpdateRadius overwrites a user's hearing radius. Returns false if the
// name is unknown.
func (r *Registry) UpdateRadius(name string, radius float64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[name]
	if !ok {
		return false
	}
	u.Radius = radius
	return true
}

// UpdateStatus overwrites a user's status. Returns false if the name is
// unknown or the status is not ONLINE/OFFLINE.
func (r *Registry) UpdateStatus(name string, status model.Status) bool {
	if !status.Valid() {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[name]
	if !ok {
		return false
	}
	u.Status = status
	return true
}

// ListUsers returns a full copy of every record. Records are copied
// under the lock, so no caller observes a partially written record.
func (r *Registry) ListUsers() map[string]model.UserRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make(map[string]model.UserRecord, len(r.users))
	for name, u := range r.users {
		users[name] = *u
	}
	return users
}

// SendSync appends a formatted message to the recipient's mailbox.
// Returns false, with no side effect, if the recipient is unknown or
// not ONLINE. The sender is not required to be registered.
func (r *Registry) SendSync(sender, recipient, text string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[recipient]
	if !ok || u.Status != model.StatusOnline {
		return false
	}
	r.mailboxes[recipient] = append(r.mailboxes[recipient], fmt.Sprintf("(RPC) %s: %s", sender, text))
	return true
}

// DrainSync returns the pending messages for a user in insertion order
// and atomically empties the mailbox. A name with no mailbox yields an
// empty slice without creating one.
func (r *Registry) DrainSync(name string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs, ok := r.mailboxes[name]
	if !ok {
		return []string{}
	}
	delete(r.mailboxes, name)
	return msgs
}

// UserCount returns the number of registered users.
func (r *Registry) UserCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}
