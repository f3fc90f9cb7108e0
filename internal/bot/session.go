package bot

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrAlreadyRunning is returned by Start while a run is in flight.
var ErrAlreadyRunning = errors.New("bot already running")

// RunFunc executes one full bot run until the context is cancelled.
type RunFunc func(ctx context.Context, p Params) error

// Session owns one bot run's lifecycle. It replaces the old pattern of
// a module-scope process handle: callers hold the session by reference
// and get explicit Start/Stop semantics.
type Session struct {
	mu        sync.Mutex
	run       RunFunc
	cancel    context.CancelFunc
	done      chan struct{}
	params    Params
	startedAt time.Time
	lastErr   error
}

// NewSession wraps a run function. Use Runner for the real bot.
func NewSession(run RunFunc) *Session {
	return &Session{run: run}
}

// Start launches a run in the background. Fails if one is in flight.
func (s *Session) Start(p Params) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.runningLocked() {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	s.cancel = cancel
	s.done = done
	s.params = p
	s.startedAt = time.Now()
	s.lastErr = nil

	go func() {
		err := s.run(ctx, p)
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		close(done)
	}()

	return nil
}

// Stop requests cancellation and waits for the run to finish. The loop
// completes its current iteration first; resting orders remain on the
// exchange. Safe to call when nothing is running.
func (s *Session) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether a run is in flight.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runningLocked()
}

func (s *Session) runningLocked() bool {
	if s.done == nil {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// SessionStatus is the external view of the session, secrets excluded.
type SessionStatus struct {
	Running   bool      `json:"running"`
	Ticker    string    `json:"ticker,omitempty"`
	MakerOnly bool      `json:"maker_only"`
	Testnet   bool      `json:"testnet"`
	StartedAt time.Time `json:"started_at,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

// Status returns the current session state.
func (s *Session) Status() SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := SessionStatus{
		Running:   s.runningLocked(),
		Ticker:    s.params.Ticker,
		MakerOnly: s.params.MakerOnly,
		Testnet:   s.params.UseTestnet,
	}
	if !s.startedAt.IsZero() {
		st.StartedAt = s.startedAt
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}
