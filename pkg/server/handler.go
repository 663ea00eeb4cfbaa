package server

import (
	"log/slog"

	"github.com/pliniogoncalves/PPD-comunicador-geografico/pkg/protocol"
)

// dispatch routes a request envelope to the registry operation it
// names. An envelope with no recognized field is answered with an
// error response rather than dropped, keeping the exchange synchronous.
func (s *Server) dispatch(req *protocol.Request) *protocol.Response {
	switch {
	case req.Register != nil:
		r := req.Register
		ok := s.reg.Register(r.Name, r.Latitude, r.Longitude, r.Radius)
		s.metrics.Registrations.Add(1)
		slog.Info("user registered", "name", r.Name, "lat", r.Latitude, "lon", r.Longitude, "radius", r.Radius)
		return &protocol.Response{OK: ok}

	case req.UpdateLocation != nil:
		r := req.UpdateLocation
		ok := s.reg.UpdateLocation(r.Name, r.Latitude, r.Longitude)
		if ok {
			s.metrics.LocationUpdates.Add(1)
			slog.Info("location updated", "name", r.Name, "lat", r.Latitude, "lon", r.Longitude)
		}
		return &protocol.Response{OK: ok}

	case req.UpdateRadius != nil:
		r := req.UpdateRadius
		ok := s.reg.UpdateRadius(r.Name, r.Radius)
		if ok {
			s.metrics.RadiusUpdates.Add(1)
			slog.Info("radius updated", "name", r.Name, "radius", r.Radius)
		}
		return &protocol.Response{OK: ok}

	case req.UpdateStatus != nil:
		r := req.UpdateStatus
		ok := s.reg.UpdateStatus(r.Name, r.Status)
		if ok {
			s.metrics.StatusUpdates.Add(1)
			slog.Info("status updated", "name", r.Name, "status", r.Status)
		}
		return &protocol.Response{OK: ok}

	case req.ListUsers != nil:
		s.metrics.SnapshotReads.Add(1)
		return &protocol.Response{OK: true, Users: s.reg.ListUsers()}

	case req.SendSync != nil:
		r := req.SendSync
		ok := s.reg.SendSync(r.Sender, r.Recipient, r.Text)
		if ok {
			s.metrics.SyncMessagesStored.Add(1)
			slog.Info("sync message stored", "from", r.Sender, "to", r.Recipient)
		} else {
			s.metrics.SyncSendsRejected.Add(1)
			slog.Debug("sync message rejected", "from", r.Sender, "to", r.Recipient)
		}
		return &protocol.Response{OK: ok}

	case req.DrainSync != nil:
		msgs := s.reg.DrainSync(req.DrainSync.Name)
		s.metrics.SyncMessagesDrained.Add(int64(len(msgs)))
		return &protocol.Response{OK: true, Messages: msgs}

	default:
		return &protocol.Response{OK: false, Err: "unknown request"}
	}
}
