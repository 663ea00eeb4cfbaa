package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pliniogoncalves/PPD-comunicador-geografico/pkg/geo"
	"github.com/pliniogoncalves/PPD-comunicador-geografico/pkg/model"
	"github.com/pliniogoncalves/PPD-comunicador-geografico/pkg/protocol"
	"github.com/pliniogoncalves/PPD-comunicador-geografico/pkg/pubsub"
)

// State represents the engine's presence state.
type State int

const (
	StateOffline State = iota
	StateConnecting
	StateOnline
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "CONNECTING"
	case StateOnline:
		return "ONLINE"
	default:
		return "OFFLINE"
	}
}

// Route identifies the delivery path chosen for an outgoing message.
type Route int

const (
	// RouteSync is store-and-forward delivery through the registry
	// mailbox, polled by the recipient.
	RouteSync Route = iota
	// RouteBroadcast is push delivery through the recipient's personal
	// pub/sub topic.
	RouteBroadcast
)

func (r Route) String() string {
	if r == RouteSync {
		return "sync"
	}
	return "broadcast"
}

const (
	defaultPollInterval = 2 * time.Second
	defaultPollBackoff  = 5 * time.Second
)

// Engine owns the local user's identity and presence, keeps a cached
// snapshot of the registry, and routes each outgoing message over the
// synchronous or the broadcast path.
//
// All inbound traffic (presence flaps, personal messages, profile
// broadcasts, drained mailbox messages) reaches the front end through
// the On* callbacks; any front end can drive the engine without
// touching the state machine.
type Engine struct {
	mu sync.RWMutex

	reg RegistryAPI
	bus pubsub.Client

	self    model.UserRecord
	state   State
	running bool
	roster  map[string]model.UserRecord

	// Payloads that arrived while invisible, flushed in arrival order
	// on the next transition back to ONLINE.
	offlineBuf []string

	pollInterval time.Duration
	pollBackoff  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	// Callbacks for front-end updates
	OnStateChange  func(state State)
	OnMessage      func(text string)
	OnPresence     func(ev model.PresenceEvent)
	OnRosterUpdate func(users map[string]model.UserRecord)
	OnError        func(err error)
}

// NewEngine creates an engine over a registry connection and a pub/sub
// transport. The engine installs itself as the transport's inbound
// handler.
func NewEngine(reg RegistryAPI, bus pubsub.Client) *Engine {
	e := &Engine{
		reg:          reg,
		bus:          bus,
		state:        StateOffline,
		roster:       make(map[string]model.UserRecord),
		pollInterval: defaultPollInterval,
		pollBackoff:  defaultPollBackoff,
		done:         make(chan struct{}),
	}
	bus.SetHandler(e.handleInbound)
	return e
}

// Login registers the identity, connects the broadcast transport with
// an offline last will, announces presence, and starts the mailbox
// polling loop. On a connect failure the user stays registered but the
// engine returns to OFFLINE for an explicit retry.
func (e *Engine) Login(name string, lat, lon, radius float64) error {
	if err := model.ValidateName(name); err != nil {
		return err
	}
	if err := model.ValidateCoordinates(lat, lon); err != nil {
		return err
	}
	if err := model.ValidateRadius(radius); err != nil {
		return err
	}

	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return ErrAlreadyConnected
	}
	e.self = model.UserRecord{Name: name, Latitude: lat, Longitude: lon, Radius: radius, Status: model.StatusOffline}
	e.state = StateConnecting
	e.mu.Unlock()
	e.notifyStateChange(StateConnecting)

	if _, err := e.reg.Register(name, lat, lon, radius); err != nil {
		e.setState(StateOffline)
		return fmt.Errorf("client: register: %w", err)
	}

	will := &pubsub.Will{
		Topic:   pubsub.TopicPresence,
		Payload: model.PresenceEvent{Name: name, Status: model.StatusOffline}.Encode(),
	}
	if err := e.bus.Connect(will); err != nil {
		e.setState(StateOffline)
		return fmt.Errorf("client: connect broker: %w", err)
	}

	if err := e.announceOnline(name); err != nil {
		e.bus.Disconnect()
		e.setState(StateOffline)
		return err
	}

	for _, topic := range []string{
		pubsub.TopicPresence,
		pubsub.PersonalTopic(name),
		pubsub.TopicLocationUpdates,
	} {
		if err := e.bus.Subscribe(topic); err != nil {
			e.bus.Disconnect()
			e.setState(StateOffline)
			return fmt.Errorf("client: subscribe: %w", err)
		}
	}

	e.refreshRoster()

	e.mu.Lock()
	e.self.Status = model.StatusOnline
	e.state = StateOnline
	e.running = true
	e.ctx, e.cancel = context.WithCancel(context.Background())
	ctx := e.ctx
	flushed := e.offlineBuf
	e.offlineBuf = nil
	e.mu.Unlock()
	e.notifyStateChange(StateOnline)
	for _, text := range flushed {
		if e.OnMessage != nil {
			e.OnMessage(text)
		}
	}

	go e.pollLoop(ctx)

	slog.Info("logged in", "name", name, "lat", lat, "lon", lon, "radius", radius)
	return nil
}

// announceOnline flips the registry status and publishes the retained
// presence event.
func (e *Engine) announceOnline(name string) error {
	if _, err := e.reg.UpdateStatus(name, model.StatusOnline); err != nil {
		return fmt.Errorf("client: update status: %w", err)
	}
	ev := model.PresenceEvent{Name: name, Status: model.StatusOnline}
	if err := e.bus.Publish(pubsub.TopicPresence, ev.Encode(), true); err != nil {
		return fmt.Errorf("client: announce presence: %w", err)
	}
	return nil
}

// SendMessage routes one message to recipient and reports the path
// taken. The routing decision uses the cached snapshot and the sender's
// own radius: an ONLINE recipient within range goes through the
// registry mailbox, everyone else through their personal topic.
func (e *Engine) SendMessage(recipient, text string) (Route, error) {
	e.mu.RLock()
	if e.state != StateOnline {
		e.mu.RUnlock()
		return 0, ErrNotConnected
	}
	self := e.self
	rec, known := e.roster[recipient]
	e.mu.RUnlock()

	if !known {
		return 0, fmt.Errorf("%w: %s", ErrUnknownRecipient, recipient)
	}

	d := geo.Distance(self.Latitude, self.Longitude, rec.Latitude, rec.Longitude)
	if rec.Status == model.StatusOnline && d <= self.Radius {
		ok, err := e.reg.SendSync(self.Name, recipient, text)
		if err != nil {
			return RouteSync, fmt.Errorf("client: send sync: %w", err)
		}
		if !ok {
			// The recipient went offline after our last snapshot; this
			// race is reported, not downgraded to the broadcast path.
			return RouteSync, fmt.Errorf("%w: %s", ErrRecipientUnavailable, recipient)
		}
		slog.Debug("message routed", "to", recipient, "route", RouteSync, "distance_km", d)
		return RouteSync, nil
	}

	payload := fmt.Sprintf("(MQTT) %s: %s", self.Name, text)
	if err := e.bus.Publish(pubsub.PersonalTopic(recipient), payload, false); err != nil {
		return RouteBroadcast, fmt.Errorf("client: publish message: %w", err)
	}
	slog.Debug("message routed", "to", recipient, "route", RouteBroadcast, "distance_km", d)
	return RouteBroadcast, nil
}

// SetStatus toggles visibility without tearing the session down.
// Setting the current status is a no-op. Going OFFLINE suppresses live
// presentation only: subscriptions and the polling loop keep running.
// Coming back ONLINE flushes everything buffered meanwhile, in arrival
// order.
func (e *Engine) SetStatus(status model.Status) error {
	if !status.Valid() {
		return model.ErrInvalidStatus
	}

	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return ErrNotConnected
	}
	if e.self.Status == status {
		e.mu.Unlock()
		return nil
	}
	name := e.self.Name
	e.mu.Unlock()

	if _, err := e.reg.UpdateStatus(name, status); err != nil {
		return fmt.Errorf("client: update status: %w", err)
	}
	ev := model.PresenceEvent{Name: name, Status: status}
	if err := e.bus.Publish(pubsub.TopicPresence, ev.Encode(), true); err != nil {
		return fmt.Errorf("client: announce presence: %w", err)
	}

	var flushed []string
	e.mu.Lock()
	e.self.Status = status
	if status == model.StatusOnline {
		e.state = StateOnline
		flushed = e.offlineBuf
		e.offlineBuf = nil
	} else {
		e.state = StateOffline
	}
	state := e.state
	e.mu.Unlock()

	e.notifyStateChange(state)
	for _, text := range flushed {
		if e.OnMessage != nil {
			e.OnMessage(text)
		}
	}
	slog.Info("status changed", "name", name, "status", status)
	return nil
}

// Toggle flips between visible and invisible.
func (e *Engine) Toggle() (model.Status, error) {
	e.mu.RLock()
	current := e.self.Status
	e.mu.RUnlock()

	target := model.StatusOnline
	if current == model.StatusOnline {
		target = model.StatusOffline
	}
	if err := e.SetStatus(target); err != nil {
		return current, err
	}
	return target, nil
}

// UpdateLocation moves the local user and broadcasts a profile-change
// signal so peers re-fetch the snapshot.
func (e *Engine) UpdateLocation(lat, lon float64) error {
	if err := model.ValidateCoordinates(lat, lon); err != nil {
		return err
	}

	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return ErrNotConnected
	}
	name := e.self.Name
	e.mu.Unlock()

	ok, err := e.reg.UpdateLocation(name, lat, lon)
	if err != nil {
		return fmt.Errorf("client: update location: %w", err)
	}
	if !ok {
		return fmt.Errorf("client: update location: %q not registered", name)
	}

	e.mu.Lock()
	e.self.Latitude = lat
	e.self.Longitude = lon
	e.mu.Unlock()

	if err := e.bus.Publish(pubsub.TopicLocationUpdates, name, false); err != nil {
		e.reportError(fmt.Errorf("client: broadcast location update: %w", err))
	}
	slog.Info("location updated", "lat", lat, "lon", lon)
	return nil
}

// UpdateRadius changes the local user's hearing range and broadcasts a
// profile-change signal.
func (e *Engine) UpdateRadius(radius float64) error {
	if err := model.ValidateRadius(radius); err != nil {
		return err
	}

	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return ErrNotConnected
	}
	name := e.self.Name
	e.mu.Unlock()

	ok, err := e.reg.UpdateRadius(name, radius)
	if err != nil {
		return fmt.Errorf("client: update radius: %w", err)
	}
	if !ok {
		return fmt.Errorf("client: update radius: %q not registered", name)
	}

	e.mu.Lock()
	e.self.Radius = radius
	e.mu.Unlock()

	if err := e.bus.Publish(pubsub.TopicLocationUpdates, name, false); err != nil {
		e.reportError(fmt.Errorf("client: broadcast radius update: %w", err))
	}
	slog.Info("radius updated", "radius", radius)
	return nil
}

// Shutdown leaves the session. Cleanup (retained offline presence,
// broker disconnect, registry status) is best-effort in the background
// so the front end can close immediately; Done is closed when it
// finishes.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	e.state = StateOffline
	name := e.self.Name
	e.self.Status = model.StatusOffline
	cancel := e.cancel
	e.mu.Unlock()

	cancel()
	e.notifyStateChange(StateOffline)

	go func() {
		defer close(e.done)
		ev := model.PresenceEvent{Name: name, Status: model.StatusOffline}
		if err := e.bus.Publish(pubsub.TopicPresence, ev.Encode(), true); err != nil {
			slog.Warn("publish offline presence failed", "err", err)
		}
		e.bus.Disconnect()
		if _, err := e.reg.UpdateStatus(name, model.StatusOffline); err != nil {
			slog.Warn("registry offline update failed", "err", err)
		}
		if err := e.reg.Close(); err != nil {
			slog.Warn("close registry connection failed", "err", err)
		}
		slog.Info("session closed", "name", name)
	}()
}

// Done returns a channel closed once shutdown cleanup has finished.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// GetState returns the current presence state.
func (e *Engine) GetState() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Self returns the local user's record.
func (e *Engine) Self() model.UserRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.self
}

// Roster returns a copy of the cached registry snapshot.
func (e *Engine) Roster() map[string]model.UserRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()
	users := make(map[string]model.UserRecord, len(e.roster))
	for name, u := range e.roster {
		users[name] = u
	}
	return users
}

// handleInbound dispatches pub/sub traffic: presence flaps and profile
// broadcasts refresh the cached snapshot, personal messages go through
// the delivery gate.
func (e *Engine) handleInbound(topic string, payload []byte) {
	switch topic {
	case pubsub.TopicPresence:
		ev, err := model.ParsePresence(string(payload))
		if err != nil {
			slog.Debug("ignoring malformed presence event", "payload", string(payload), "err", err)
			return
		}
		if ev.Name == e.Self().Name {
			return
		}
		e.refreshRoster()
		if e.OnPresence != nil {
			e.OnPresence(ev)
		}

	case pubsub.TopicLocationUpdates:
		if name := string(payload); name != e.Self().Name {
			slog.Debug("peer profile changed", "name", name)
			e.refreshRoster()
		}

	default:
		if owner, ok := pubsub.IsPersonalTopic(topic); ok && owner == e.Self().Name {
			e.deliver(string(payload))
		}
	}
}

// deliver shows a message immediately when visible, otherwise parks it
// in the offline buffer.
func (e *Engine) deliver(text string) {
	e.mu.Lock()
	if e.state != StateOnline {
		e.offlineBuf = append(e.offlineBuf, text)
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	if e.OnMessage != nil {
		e.OnMessage(text)
	}
}

// refreshRoster re-fetches the full registry snapshot.
func (e *Engine) refreshRoster() {
	users, err := e.reg.ListUsers()
	if err != nil {
		e.reportError(fmt.Errorf("client: refresh users: %w", err))
		return
	}

	e.mu.Lock()
	e.roster = users
	e.mu.Unlock()

	if e.OnRosterUpdate != nil {
		e.OnRosterUpdate(e.Roster())
	}
}

// pollLoop drains the registry mailbox at a fixed cadence for as long
// as the session lives. Malformed responses are skipped as transient
// noise; other errors back off before resuming the normal cadence.
func (e *Engine) pollLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(e.pollInterval):
		}

		name := e.Self().Name
		msgs, err := e.reg.DrainSync(name)
		if err != nil {
			if errors.Is(err, protocol.ErrMalformed) {
				continue
			}
			slog.Warn("mailbox poll failed", "err", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(e.pollBackoff):
			}
			continue
		}

		for _, m := range msgs {
			e.deliver(m)
		}
	}
}

func (e *Engine) setState(state State) {
	e.mu.Lock()
	e.state = state
	e.mu.Unlock()
	e.notifyStateChange(state)
}

func (e *Engine) notifyStateChange(state State) {
	if e.OnStateChange != nil {
		e.OnStateChange(state)
	}
}

func (e *Engine) reportError(err error) {
	slog.Error("engine error", "err", err)
	if e.OnError != nil {
		e.OnError(err)
	}
}
