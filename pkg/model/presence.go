package model

import (
	"fmt"
	"strings"
)

// PresenceEvent is the transient value carried on the presence topic.
// It is published retained, so the broker always holds each user's
// last-known status for late subscribers.
type PresenceEvent struct {
	Name   string
	Status Status
}

// Encode renders the event in the "{name}:{status}" wire form.
func (e PresenceEvent) Encode() string {
	return fmt.Sprintf("%s:%s", e.Name, e.Status)
}

// ParsePresence parses a "{name}:{status}" presence payload.
func ParsePresence(payload string) (PresenceEvent, error) {
	name, status, ok := strings.Cut(payload, ":")
	if !ok {
		return PresenceEvent{}, fmt.Errorf("model: presence payload %q: missing separator", payload)
	}
	if err := ValidateName(name); err != nil {
		return PresenceEvent{}, fmt.Errorf("model: presence payload %q: %w", payload, err)
	}
	s := Status(status)
	if !s.Valid() {
		return PresenceEvent{}, fmt.Errorf("model: presence payload %q: %w", payload, ErrInvalidStatus)
	}
	return PresenceEvent{Name: name, Status: s}, nil
}
