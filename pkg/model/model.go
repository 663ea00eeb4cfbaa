// Package model defines the core domain types for the geographic communicator.
package model

import (
	"errors"
	"fmt"
	"math"
)

const MaxNameLength = 32

var ErrNameEmpty = errors.New("name must not be empty")
var ErrNameTooLong = fmt.Errorf("name must not exceed %d characters", MaxNameLength)
var ErrNameInvalidChars = errors.New("name must contain only alphanumeric characters, underscores, or hyphens")
var ErrInvalidLatitude = errors.New("latitude must be a number between -90 and 90")
var ErrInvalidLongitude = errors.New("longitude must be a number between -180 and 180")
var ErrInvalidRadius = errors.New("radius must be a non-negative number of kilometers")
var ErrInvalidStatus = errors.New("status must be ONLINE or OFFLINE")

// Status is a user's availability as seen by the registry and the
// presence topic.
type Status string

const (
	StatusOnline  Status = "ONLINE"
	StatusOffline Status = "OFFLINE"
)

// Valid reports whether s is one of the two recognized statuses.
func (s Status) Valid() bool {
	return s == StatusOnline || s == StatusOffline
}

// UserRecord is one registered identity. The registry owns the
// authoritative copy; clients hold cached snapshots obtained by polling.
type UserRecord struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Radius    float64 `json:"radius"` // hearing range in km, from the sender's side
	Status    Status  `json:"status"`
}

// ValidateName checks that a user name is 1-32 ASCII alphanumeric,
// underscore, or hyphen characters. The character set keeps names safe
// to embed in presence payloads and topic paths.
func ValidateName(name string) error {
	if len(name) == 0 {
		return ErrNameEmpty
	}
	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}
	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '_' && r != '-' {
			return ErrNameInvalidChars
		}
	}
	return nil
}

// ValidateCoordinates checks that lat/lon are finite and within range.
func ValidateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || lat < -90 || lat > 90 {
		return ErrInvalidLatitude
	}
	if math.IsNaN(lon) || math.IsInf(lon, 0) || lon < -180 || lon > 180 {
		return ErrInvalidLongitude
	}
	return nil
}

// ValidateRadius checks that a hearing radius is finite and non-negative.
func ValidateRadius(radius float64) error {
	if math.IsNaN(radius) || math.IsInf(radius, 0) || radius < 0 {
		return ErrInvalidRadius
	}
	return nil
}
