package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// StartMetricsHTTP starts a lightweight HTTP server that exposes
// /metrics in Prometheus text exposition format plus a /healthz probe.
// It runs in the background and shuts down when the server context is
// cancelled.
func (s *Server) StartMetricsHTTP() {
	addr := s.cfg.MetricsAddr
	if addr == "" {
		return // metrics endpoint disabled
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("metrics HTTP listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics HTTP error", "err", err)
		}
	}()

	go func() {
		<-s.ctx.Done()
		_ = srv.Close()
	}()
}

// handleMetrics writes all metrics in Prometheus text exposition format.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	m := s.metrics

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	// Helper for gauge/counter lines.
	// Write errors to http.ResponseWriter are non-actionable; suppress errcheck.
	write := func(name, help, mtype string, value int64) {
		_, _ = fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		_, _ = fmt.Fprintf(w, "# TYPE %s %s\n", name, mtype)
		_, _ = fmt.Fprintf(w, "%s %d\n", name, value)
	}

	_, _ = fmt.Fprintf(w, "# HELP geochat_uptime_seconds Server uptime in seconds.\n")
	_, _ = fmt.Fprintf(w, "# TYPE geochat_uptime_seconds gauge\n")
	_, _ = fmt.Fprintf(w, "geochat_uptime_seconds %f\n", m.Uptime().Seconds())

	write("geochat_connections_active", "Current active RPC connections.", "gauge",
		m.ActiveConnections.Load())
	write("geochat_connections_total", "Lifetime RPC connections accepted.", "counter",
		m.TotalConnections.Load())

	write("geochat_registrations_total", "Register calls handled.", "counter",
		m.Registrations.Load())
	write("geochat_location_updates_total", "Successful location updates.", "counter",
		m.LocationUpdates.Load())
	write("geochat_radius_updates_total", "Successful radius updates.", "counter",
		m.RadiusUpdates.Load())
	write("geochat_status_updates_total", "Successful status updates.", "counter",
		m.StatusUpdates.Load())
	write("geochat_snapshot_reads_total", "User snapshots served.", "counter",
		m.SnapshotReads.Load())

	write("geochat_sync_messages_stored_total", "Messages accepted into mailboxes.", "counter",
		m.SyncMessagesStored.Load())
	write("geochat_sync_messages_drained_total", "Messages handed to recipients.", "counter",
		m.SyncMessagesDrained.Load())
	write("geochat_sync_sends_rejected_total", "Sends rejected for unknown or offline recipients.", "counter",
		m.SyncSendsRejected.Load())

	write("geochat_users_registered", "Currently registered users.", "gauge",
		int64(s.reg.UserCount()))
}
