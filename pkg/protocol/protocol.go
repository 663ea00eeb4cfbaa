// Package protocol defines the synchronous RPC framing between clients
// and the registry server: length-prefixed JSON envelopes carrying
// exactly one request or response per frame.
package protocol

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/pliniogoncalves/PPD-comunicador-geografico/pkg/model"
)

// MaxMessage is the maximum frame payload size (64KB).
const MaxMessage = 65536

// ErrMalformed marks a frame whose payload could not be decoded.
// Pollers treat it as transient noise rather than a transport failure.
var ErrMalformed = errors.New("protocol: malformed message")

// Request is a union envelope: exactly one field is non-nil.
type Request struct {
	Register       *RegisterRequest       `json:"register,omitempty"`
	UpdateLocation *UpdateLocationRequest `json:"update_location,omitempty"`
	UpdateRadius   *UpdateRadiusRequest   `json:"update_radius,omitempty"`
	UpdateStatus   *UpdateStatusRequest   `json:"update_status,omitempty"`
	ListUsers      *ListUsersRequest      `json:"list_users,omitempty"`
	SendSync       *SendSyncRequest       `json:"send_sync,omitempty"`
	DrainSync      *DrainSyncRequest      `json:"drain_sync,omitempty"`
}

type RegisterRequest struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Radius    float64 `json:"radius"`
}

type UpdateLocationRequest struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

type UpdateRadiusRequest struct {
	Name   string  `json:"name"`
	Radius float64 `json:"radius"`
}

type UpdateStatusRequest struct {
	Name   string       `json:"name"`
	Status model.Status `json:"status"`
}

type ListUsersRequest struct{}

type SendSyncRequest struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Text      string `json:"text"`
}

type DrainSyncRequest struct {
	Name string `json:"name"`
}

// Response carries the result of any registry call. OK reflects the
// boolean surface of the RPC table; Users and Messages are populated
// only for list_users and drain_sync respectively.
type Response struct {
	OK       bool                        `json:"ok"`
	Users    map[string]model.UserRecord `json:"users,omitempty"`
	Messages []string                    `json:"messages,omitempty"`
	Err      string                      `json:"err,omitempty"`
}

// WriteRequest writes a length-prefixed JSON request frame.
func WriteRequest(w io.Writer, req *Request) error {
	return writeFrame(w, req)
}

// ReadRequest reads a length-prefixed JSON request frame.
func ReadRequest(r io.Reader) (*Request, error) {
	req := &Request{}
	if err := readFrame(r, req); err != nil {
		return nil, err
	}
	return req, nil
}

// WriteResponse writes a length-prefixed JSON response frame.
func WriteResponse(w io.Writer, resp *Response) error {
	return writeFrame(w, resp)
}

// ReadResponse reads a length-prefixed JSON response frame.
func ReadResponse(r io.Reader) (*Response, error) {
	resp := &Response{}
	if err := readFrame(r, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// writeFrame writes [4-byte big-endian length][JSON payload].
func writeFrame(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("protocol: marshal: %w", err)
	}
	if len(data) > MaxMessage {
		return fmt.Errorf("protocol: message too large: %d bytes", len(data))
	}

	lenBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(lenBuf, uint32(len(data))) //nolint:gosec // length already bounds-checked above
	if _, err := w.Write(lenBuf); err != nil {
		return fmt.Errorf("protocol: write length: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("protocol: write payload: %w", err)
	}
	return nil
}

// readFrame reads a length-prefixed JSON frame into v.
func readFrame(r io.Reader, v any) error {
	lenBuf := make([]byte, 4)
	if _, err := io.ReadFull(r, lenBuf); err != nil {
		return fmt.Errorf("protocol: read length: %w", err)
	}
	length := binary.BigEndian.Uint32(lenBuf)
	if length > MaxMessage {
		return fmt.Errorf("protocol: message too large: %d bytes", length)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return fmt.Errorf("protocol: read payload: %w", err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}
