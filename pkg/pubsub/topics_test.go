package pubsub

import "testing"

func TestPersonalTopic(t *testing.T) {
	if got := PersonalTopic("alice"); got != "messages/alice" {
		t.Errorf("PersonalTopic = %q, want %q", got, "messages/alice")
	}
}

func TestIsPersonalTopic(t *testing.T) {
	tests := []struct {
		topic    string
		wantName string
		wantOK   bool
	}{
		{"messages/alice", "alice", true},
		{"messages/bob", "bob", true},
		{"messages/", "", false},
		{"presence", "", false},
		{"location_updates", "", false},
		{"mailbox/alice", "", false},
	}

	for _, tt := range tests {
		name, ok := IsPersonalTopic(tt.topic)
		if name != tt.wantName || ok != tt.wantOK {
			t.Errorf("IsPersonalTopic(%q) = (%q, %v), want (%q, %v)",
				tt.topic, name, ok, tt.wantName, tt.wantOK)
		}
	}
}
