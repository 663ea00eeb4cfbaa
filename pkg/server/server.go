// Package server exposes the registry over the synchronous RPC
// protocol: one TCP connection per client, one request frame in, one
// response frame out.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/pliniogoncalves/PPD-comunicador-geografico/pkg/protocol"
	"github.com/pliniogoncalves/PPD-comunicador-geografico/pkg/registry"
)

// Config holds server configuration.
type Config struct {
	ListenAddr  string // TCP bind address for the RPC plane (e.g. ":8000")
	MetricsAddr string // HTTP bind address for /metrics (empty = disabled)
	UsersFile   string // YAML file of users to register on startup

	// CLI-only action (run and exit)
	ExportUsers bool // export the seeded users as YAML and exit
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ListenAddr:  ":8000",
		MetricsAddr: ":8001",
	}
}

// Server serves registry RPC calls over TCP.
type Server struct {
	cfg     Config
	reg     *registry.Registry
	metrics *Metrics
	ln      net.Listener
	ctx     context.Context
	cancel  context.CancelFunc
}

// New creates a Server around an existing registry.
func New(cfg Config, reg *registry.Registry) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:     cfg,
		reg:     reg,
		metrics: NewMetrics(),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Registry returns the underlying store.
func (s *Server) Registry() *registry.Registry {
	return s.reg
}

// Metrics returns the server metrics.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Addr returns the bound listener address, valid after Start.
func (s *Server) Addr() string {
	if s.ln == nil {
		return s.cfg.ListenAddr
	}
	return s.ln.Addr().String()
}

// Start seeds the registry, binds the RPC listener, and starts the
// metrics endpoint. It does not block.
func (s *Server) Start() error {
	if s.cfg.UsersFile != "" {
		if err := LoadUsersFromYAML(s.cfg.UsersFile, s.reg); err != nil {
			return err
		}
	}

	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("server: listen: %w", err)
	}
	s.ln = ln
	slog.Info("registry RPC listening", "addr", ln.Addr().String())

	s.StartMetricsHTTP()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
					slog.Error("accept error", "err", err)
					continue
				}
			}
			go s.handleConn(conn)
		}
	}()

	return nil
}

// Run starts the server and blocks until an interrupt signal.
func (s *Server) Run() error {
	if err := s.Start(); err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	slog.Info("shutting down")
	s.Shutdown()
	return nil
}

// Shutdown stops accepting connections and cancels in-flight handlers.
func (s *Server) Shutdown() {
	s.cancel()
	if s.ln != nil {
		_ = s.ln.Close()
	}
}

// handleConn serves one client connection: a sequence of synchronous
// request/response exchanges until the peer hangs up.
func (s *Server) handleConn(conn net.Conn) {
	defer func() { _ = conn.Close() }()

	remote := conn.RemoteAddr().String()
	s.metrics.TotalConnections.Add(1)
	s.metrics.ActiveConnections.Add(1)
	defer s.metrics.ActiveConnections.Add(-1)
	slog.Debug("client connected", "remote", remote)

	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		req, err := protocol.ReadRequest(conn)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				slog.Debug("client disconnected", "remote", remote)
			} else {
				slog.Warn("read request failed", "remote", remote, "err", err)
			}
			return
		}

		resp := s.dispatch(req)
		if err := protocol.WriteResponse(conn, resp); err != nil {
			slog.Warn("write response failed", "remote", remote, "err", err)
			return
		}
	}
}
