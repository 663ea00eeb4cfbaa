// Package client implements the client side of the geographic
// communicator: the registry RPC client and the presence & routing
// engine.
package client

import (
	"fmt"
	"net"
	"sync"

	"github.com/pliniogoncalves/PPD-comunicador-geografico/pkg/model"
	"github.com/pliniogoncalves/PPD-comunicador-geografico/pkg/protocol"
)

// RegistryAPI is the synchronous RPC surface of the registry, as seen
// by the engine. *RegistryClient implements it over TCP; tests supply
// in-memory fakes.
type RegistryAPI interface {
	Register(name string, lat, lon, radius float64) (bool, error)
	UpdateLocation(name string, lat, lon float64) (bool, error)
	UpdateRadius(name string, radius float64) (bool, error)
	UpdateStatus(name string, status model.Status) (bool, error)
	ListUsers() (map[string]model.UserRecord, error)
	SendSync(sender, recipient, text string) (bool, error)
	DrainSync(name string) ([]string, error)
	Close() error
}

// RegistryClient speaks the RPC protocol over a single TCP connection.
// Calls are serialized: one request frame out, one response frame in.
type RegistryClient struct {
	mu   sync.Mutex
	conn net.Conn
}

// DialRegistry connects to the registry server.
func DialRegistry(addr string) (*RegistryClient, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("client: connect registry: %w", err)
	}
	return &RegistryClient{conn: conn}, nil
}

// call performs one synchronous request/response exchange.
func (c *RegistryClient) call(req *protocol.Request) (*protocol.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := protocol.WriteRequest(c.conn, req); err != nil {
		return nil, err
	}
	return protocol.ReadResponse(c.conn)
}

func (c *RegistryClient) Register(name string, lat, lon, radius float64) (bool, error) {
	resp, err := c.call(&protocol.Request{
		Register: &protocol.RegisterRequest{Name: name, Latitude: lat, Longitude: lon, Radius: radius},
	})
	if err != nil {
		return false, err
	}
	return resp.OK, nil
}

func (c *RegistryClient) UpdateLocation(name string, lat, lon float64) (bool, error) {
	resp, err := c.call(&protocol.Request{
		UpdateLocation: &protocol.UpdateLocationRequest{Name: name, Latitude: lat, Longitude: lon},
	})
	if err != nil {
		return false, err
	}
	return resp.OK, nil
}

func (c *RegistryClient) UpdateRadius(name string, radius float64) (bool, error) {
	resp, err := c.call(&protocol.Request{
		UpdateRadius: &protocol.UpdateRadiusRequest{Name: name, Radius: radius},
	})
	if err != nil {
		return false, err
	}
	return resp.OK, nil
}

func (c *RegistryClient) UpdateStatus(name string, status model.Status) (bool, error) {
	resp, err := c.call(&protocol.Request{
		UpdateStatus: &protocol.UpdateStatusRequest{Name: name, Status: status},
	})
	if err != nil {
		return false, err
	}
	return resp.OK, nil
}

func (c *RegistryClient) ListUsers() (map[string]model.UserRecord, error) {
	resp, err := c.call(&protocol.Request{ListUsers: &protocol.ListUsersRequest{}})
	if err != nil {
		return nil, err
	}
	if resp.Users == nil {
		return map[string]model.UserRecord{}, nil
	}
	return resp.Users, nil
}

func (c *RegistryClient) SendSync(sender, recipient, text string) (bool, error) {
	resp, err := c.call(&protocol.Request{
		SendSync: &protocol.SendSyncRequest{Sender: sender, Recipient: recipient, Text: text},
	})
	if err != nil {
		return false, err
	}
	return resp.OK, nil
}

func (c *RegistryClient) DrainSync(name string) ([]string, error) {
	resp, err := c.call(&protocol.Request{
		DrainSync: &protocol.DrainSyncRequest{Name: name},
	})
	if err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// Close closes the underlying connection.
func (c *RegistryClient) Close() error {
	return c.conn.Close()
}

// Compile-time check: *RegistryClient implements RegistryAPI.
var _ RegistryAPI = (*RegistryClient)(nil)
