// Package geolocation tracks the location-permission lifecycle of one booking
// session and exposes the single "granted" flag the wizard is gated on.
package geolocation

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Status is the permission state.
type Status string

const (
	StatusNotRequested Status = "not_requested"
	StatusRequesting   Status = "requesting"
	StatusGranted      Status = "granted"
	StatusDenied       Status = "denied"
)

// Source records how a grant was obtained.
type Source string

const (
	SourceDevice Source = "device"
	SourceDraft  Source = "draft"
)

// Options are passed to the platform location API.
type Options struct {
	EnableHighAccuracy bool
	Timeout            time.Duration
	MaximumAge         time.Duration
}

// DefaultOptions asks for a fresh, precise fix.
func DefaultOptions() Options {
	return Options{
		EnableHighAccuracy: true,
		Timeout:            10 * time.Second,
		MaximumAge:         30 * time.Second,
	}
}

// MarshalJSON encodes durations in milliseconds, as browser APIs expect.
func (o Options) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		EnableHighAccuracy bool  `json:"enableHighAccuracy"`
		Timeout            int64 `json:"timeout"`
		MaximumAge         int64 `json:"maximumAge"`
	}{o.EnableHighAccuracy, o.Timeout.Milliseconds(), o.MaximumAge.Milliseconds()})
}

// Position is a device fix.
type Position struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Accuracy float64 `json:"accuracy,omitempty"`
}

// Locator is the platform location API.
type Locator interface {
	CurrentPosition(ctx context.Context, opts Options) (Position, error)
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func(ctx context.Context, opts Options) (Position, error)

func (f LocatorFunc) CurrentPosition(ctx context.Context, opts Options) (Position, error) {
	return f(ctx, opts)
}

// State is a serializable snapshot of the gate.
type State struct {
	Status    Status    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	Position  *Position `json:"position,omitempty"`
	Source    Source    `json:"source,omitempty"`
	StartedAt time.Time `json:"startedAt,omitzero"`
}

// GrantHook runs after a device grant, outside the gate's lock.
type GrantHook func(ctx context.Context, pos Position)

// Gate mediates access to the device location. The zero value is not usable;
// call New or Restore.
type Gate struct {
	mu      sync.Mutex
	state   State
	opts    Options
	onGrant GrantHook
	now     func() time.Time
}

// New creates a gate in the not_requested state.
func New(opts Options) *Gate {
	return Restore(State{Status: StatusNotRequested}, opts)
}

// Restore recreates a gate from a snapshot.
func Restore(state State, opts Options) *Gate {
	if state.Status == "" {
		state.Status = StatusNotRequested
	}
	return &Gate{state: state, opts: opts, now: time.Now}
}

// OnGrant registers the hook run after each successful device request.
func (g *Gate) OnGrant(hook GrantHook) {
	g.mu.Lock()
	g.onGrant = hook
	g.mu.Unlock()
}

// State returns a copy of the current state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	s := g.state
	if s.Position != nil {
		p := *s.Position
		s.Position = &p
	}
	return s
}

// Granted reports whether downstream steps may proceed.
func (g *Gate) Granted() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.Status == StatusGranted
}

// Options returns the options used for platform requests.
func (g *Gate) Options() Options {
	return g.opts
}

// Begin moves the gate to requesting and returns the options the platform must
// use. A request already in flight is not restarted unless it has outlived
// twice its timeout.
func (g *Gate) Begin() (Options, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.state.Status {
	case StatusGranted:
		return g.opts, ErrAlreadyGranted
	case StatusRequesting:
		if !g.expiredLocked() {
			return g.opts, ErrRequestInFlight
		}
	}

	g.state = State{Status: StatusRequesting, StartedAt: g.now().UTC()}
	return g.opts, nil
}

func (g *Gate) expiredLocked() bool {
	if g.state.StartedAt.IsZero() || g.opts.Timeout <= 0 {
		return false
	}
	return g.now().Sub(g.state.StartedAt) > 2*g.opts.Timeout
}

// Complete applies the outcome of the request started with Begin. perr wins
// over pos when both are set.
func (g *Gate) Complete(ctx context.Context, pos *Position, perr error) (State, error) {
	g.mu.Lock()
	if g.state.Status != StatusRequesting {
		s := g.state
		g.mu.Unlock()
		return s, ErrNoRequestInFlight
	}

	if perr != nil || pos == nil {
		if perr == nil {
			perr = &PositionError{}
		}
		g.state = State{Status: StatusDenied, Reason: Reason(perr)}
		s := g.state
		g.mu.Unlock()
		return s, nil
	}

	p := *pos
	g.state = State{Status: StatusGranted, Position: &p, Source: SourceDevice}
	s := g.state
	hook := g.onGrant
	g.mu.Unlock()

	if hook != nil {
		hook(ctx, p)
	}
	return s, nil
}

// Request runs a full round trip through an in-process Locator.
func (g *Gate) Request(ctx context.Context, loc Locator) (State, error) {
	opts, err := g.Begin()
	if err != nil {
		return g.State(), err
	}

	reqCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	pos, perr := loc.CurrentPosition(reqCtx, opts)
	if perr != nil {
		return g.Complete(ctx, nil, perr)
	}
	return g.Complete(ctx, &pos, nil)
}

// Grant marks the gate granted without asking the device, e.g. when a saved
// draft already carries coordinates. The grant hook is not run.
func (g *Gate) Grant(pos Position, source Source) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = State{Status: StatusGranted, Position: &pos, Source: source}
}

// Reset returns the gate to not_requested.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = State{Status: StatusNotRequested}
}
