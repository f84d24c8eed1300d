package geolocation

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if !opts.EnableHighAccuracy || opts.Timeout != 10*time.Second || opts.MaximumAge != 30*time.Second {
		t.Fatalf("unexpected options: %+v", opts)
	}
}

func TestRequestGranted(t *testing.T) {
	g := New(DefaultOptions())

	var hooked *Position
	g.OnGrant(func(_ context.Context, pos Position) { hooked = &pos })

	loc := LocatorFunc(func(_ context.Context, opts Options) (Position, error) {
		if !opts.EnableHighAccuracy {
			t.Error("expected high accuracy")
		}
		return Position{Lat: 12.65, Lng: -8}, nil
	})

	state, err := g.Request(context.Background(), loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Status != StatusGranted || state.Position == nil || state.Position.Lat != 12.65 || state.Source != SourceDevice {
		t.Fatalf("unexpected state: %+v", state)
	}
	if !g.Granted() {
		t.Fatal("expected gate granted")
	}
	if hooked == nil || hooked.Lng != -8 {
		t.Fatal("expected grant hook to run with the position")
	}
}

func TestRequestDeniedReasons(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&PositionError{Code: CodePermissionDenied}, MsgPermissionDenied},
		{&PositionError{Code: CodePositionUnavailable}, MsgPositionUnavailable},
		{&PositionError{Code: CodeTimeout}, MsgTimeout},
		{&PositionError{Code: 42}, MsgGeneric},
		{errors.New("boom"), MsgGeneric},
	}

	reasons := map[string]bool{}
	for _, tc := range tests {
		g := New(DefaultOptions())
		loc := LocatorFunc(func(context.Context, Options) (Position, error) {
			return Position{}, tc.err
		})
		state, err := g.Request(context.Background(), loc)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if state.Status != StatusDenied || state.Reason != tc.want {
			t.Errorf("%v: got %+v, want reason %q", tc.err, state, tc.want)
		}
		if g.Granted() {
			t.Errorf("%v: gate should not be granted", tc.err)
		}
		reasons[state.Reason] = true
	}
	if len(reasons) != 4 {
		t.Fatalf("expected four distinct messages, got %d", len(reasons))
	}
}

func TestRequestDeadlineMapsToTimeout(t *testing.T) {
	g := New(Options{Timeout: 10 * time.Millisecond})
	loc := LocatorFunc(func(ctx context.Context, _ Options) (Position, error) {
		<-ctx.Done()
		return Position{}, ctx.Err()
	})

	state, _ := g.Request(context.Background(), loc)
	if state.Reason != MsgTimeout {
		t.Fatalf("expected timeout reason, got %q", state.Reason)
	}
}

func TestBeginIsNotReentrant(t *testing.T) {
	g := New(DefaultOptions())

	if _, err := g.Begin(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := g.Begin(); !errors.Is(err, ErrRequestInFlight) {
		t.Fatalf("expected ErrRequestInFlight, got %v", err)
	}

	if _, err := g.Complete(context.Background(), nil, &PositionError{Code: CodePermissionDenied}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// denied -> requesting on retry
	if _, err := g.Begin(); err != nil {
		t.Fatalf("expected retry to be allowed, got %v", err)
	}
	if _, err := g.Complete(context.Background(), &Position{Lat: 1, Lng: 2}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := g.Begin(); !errors.Is(err, ErrAlreadyGranted) {
		t.Fatalf("expected ErrAlreadyGranted, got %v", err)
	}
}

func TestStaleRequestCanRestart(t *testing.T) {
	now := time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)
	g := New(DefaultOptions())
	g.now = func() time.Time { return now }

	if _, err := g.Begin(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	now = now.Add(25 * time.Second)
	if _, err := g.Begin(); err != nil {
		t.Fatalf("expected stale request to restart, got %v", err)
	}
}

func TestCompleteWithoutBegin(t *testing.T) {
	g := New(DefaultOptions())
	if _, err := g.Complete(context.Background(), &Position{}, nil); !errors.Is(err, ErrNoRequestInFlight) {
		t.Fatalf("expected ErrNoRequestInFlight, got %v", err)
	}
}

func TestGrantAndRestore(t *testing.T) {
	g := New(DefaultOptions())
	called := false
	g.OnGrant(func(context.Context, Position) { called = true })

	g.Grant(Position{Lat: 12, Lng: -8}, SourceDraft)
	if !g.Granted() || called {
		t.Fatalf("expected silent grant, granted=%v hook=%v", g.Granted(), called)
	}

	restored := Restore(g.State(), DefaultOptions())
	if s := restored.State(); s.Status != StatusGranted || s.Source != SourceDraft {
		t.Fatalf("unexpected restored state: %+v", s)
	}

	restored.Reset()
	if restored.State().Status != StatusNotRequested {
		t.Fatal("expected reset to not_requested")
	}
}

func TestOptionsJSONInMilliseconds(t *testing.T) {
	raw, err := json.Marshal(DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"enableHighAccuracy":true,"timeout":10000,"maximumAge":30000}`
	if string(raw) != want {
		t.Fatalf("got %s, want %s", raw, want)
	}
}
