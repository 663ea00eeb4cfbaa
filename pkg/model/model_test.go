package model

import (
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"valid simple", "alice", nil},
		{"valid with numbers", "user123", nil},
		{"valid with underscore", "my_user", nil},
		{"valid with hyphen", "my-user", nil},
		{"valid mixed", "A-b_3", nil},
		{"valid max length", strings.Repeat("a", MaxNameLength), nil},
		{"empty", "", ErrNameEmpty},
		{"too long", strings.Repeat("a", MaxNameLength+1), ErrNameTooLong},
		{"contains space", "has space", ErrNameInvalidChars},
		{"contains colon", "user:name", ErrNameInvalidChars},
		{"contains slash", "user/name", ErrNameInvalidChars},
		{"unicode letter", "ñoño", ErrNameInvalidChars},
		{"tab character", "user\tname", ErrNameInvalidChars},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if err != tt.wantErr {
				t.Errorf("ValidateName(%q) = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lon     float64
		wantErr error
	}{
		{"origin", 0, 0, nil},
		{"fortaleza", -3.71, -38.54, nil},
		{"poles", 90, -180, nil},
		{"lat too high", 90.01, 0, ErrInvalidLatitude},
		{"lat too low", -91, 0, ErrInvalidLatitude},
		{"lon too high", 0, 180.5, ErrInvalidLongitude},
		{"lon too low", 0, -181, ErrInvalidLongitude},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinates(tt.lat, tt.lon)
			if err != tt.wantErr {
				t.Errorf("ValidateCoordinates(%v, %v) = %v, want %v", tt.lat, tt.lon, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRadius(t *testing.T) {
	if err := ValidateRadius(5); err != nil {
		t.Errorf("ValidateRadius(5) = %v, want nil", err)
	}
	if err := ValidateRadius(0); err != nil {
		t.Errorf("ValidateRadius(0) = %v, want nil", err)
	}
	if err := ValidateRadius(-1); err != ErrInvalidRadius {
		t.Errorf("ValidateRadius(-1) = %v, want %v", err, ErrInvalidRadius)
	}
}

func TestStatusValid(t *testing.T) {
	if !StatusOnline.Valid() || !StatusOffline.Valid() {
		t.Error("expected ONLINE and OFFLINE to be valid")
	}
	if Status("AWAY").Valid() {
		t.Error("expected AWAY to be invalid")
	}
	if Status("online").Valid() {
		t.Error("status comparison must be case sensitive")
	}
}

func TestPresenceRoundTrip(t *testing.T) {
	ev := PresenceEvent{Name: "alice", Status: StatusOnline}
	if got := ev.Encode(); got != "alice:ONLINE" {
		t.Fatalf("Encode() = %q, want %q", got, "alice:ONLINE")
	}

	parsed, err := ParsePresence("alice:ONLINE")
	if err != nil {
		t.Fatalf("ParsePresence: unexpected error: %v", err)
	}
	if parsed != ev {
		t.Errorf("ParsePresence = %+v, want %+v", parsed, ev)
	}
}

func TestParsePresenceRejectsMalformed(t *testing.T) {
	for _, payload := range []string{"", "alice", "alice:AWAY", ":ONLINE", "al ice:ONLINE"} {
		if _, err := ParsePresence(payload); err == nil {
			t.Errorf("ParsePresence(%q): expected error, got nil", payload)
		}
	}
}
