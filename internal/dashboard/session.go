package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lmx/internal/models"
	"github.com/desertthunder/lmx/internal/services"
	"github.com/desertthunder/lmx/internal/shared"
)

// Observer receives the outcome of every request a [Session] issues.
type Observer interface {
	ObservePoll(status models.MigrationStatus, err error)
	ObserveAction(c models.Control, err error)
}

// Option configures a [Session].
type Option func(*Session)

// WithLogger sets the session logger. Defaults to [log.Default].
func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithObserver registers o for request outcomes.
func WithObserver(o Observer) Option {
	return func(s *Session) { s.observer = o }
}

// WithOnChange registers fn to be called with the new state after each applied result.
// fn runs on the goroutine that completed the request and must not block.
func WithOnChange(fn func(State)) Option {
	return func(s *Session) { s.onChange = fn }
}

// Session owns a [State] and keeps it in sync with the backend.
type Session struct {
	client   services.MigrationClient
	logger   *log.Logger
	observer Observer
	onChange func(State)
	interval time.Duration

	mu      sync.RWMutex
	state   State
	closed  bool
	started bool
	wg      sync.WaitGroup
}

// NewSession creates a session in the [NewState] state. Nothing is requested until [Session.Run].
func NewSession(client services.MigrationClient, opts ...Option) *Session {
	s := &Session{
		client:   client,
		logger:   log.Default(),
		interval: PollInterval,
		state:    NewState(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// View projects the current state.
func (s *Session) View() View {
	return Project(s.Snapshot())
}

// Closed reports whether the session has been torn down.
func (s *Session) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Run polls on a fixed interval until ctx is cancelled, then tears the session down
// and waits for in-flight requests before returning.
// The first request is issued one interval after Run is called.
func (s *Session) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return shared.ErrSessionClosed
	}
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("%w: session already running", shared.ErrInvalidInput)
	}
	s.started = true
	s.mu.Unlock()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.close()
			s.wg.Wait()
			return nil
		case <-ticker.C:
			s.spawn(func() { s.poll(context.WithoutCancel(ctx)) })
		}
	}
}

// Dispatch issues the request for c in the background.
//
// c must be the control available in the current state. The result only affects the error message;
// the state changes when a later poll observes it.
func (s *Session) Dispatch(ctx context.Context, c models.Control) error {
	s.mu.RLock()
	closed, available := s.closed, s.state.Control()
	s.mu.RUnlock()

	if closed {
		return shared.ErrSessionClosed
	}
	if c == models.ControlNone || c != available {
		return fmt.Errorf("%w: %s", shared.ErrControlUnavailable, c)
	}

	ok := s.spawn(func() {
		err := s.client.Act(context.WithoutCancel(ctx), c)
		if err != nil {
			s.logger.Warn("control request failed", "action", c, "error", err)
		} else {
			s.logger.Info("control request sent", "action", c)
		}
		if s.Closed() {
			return
		}
		if s.observer != nil {
			s.observer.ObserveAction(c, err)
		}
		s.apply(func(st State) State { return st.ApplyAction(c, err) })
	})
	if !ok {
		return shared.ErrSessionClosed
	}
	return nil
}

// Wait blocks until every request started by the session has returned.
// Call it after Run has returned, or on a session that is not running.
func (s *Session) Wait() { s.wg.Wait() }

func (s *Session) poll(ctx context.Context) {
	status, err := s.client.Status(ctx)
	if err != nil {
		s.logger.Debug("status poll failed", "error", err)
	} else {
		s.logger.Debug("status polled", "state", status.State, "progress", status.Progress)
	}
	if s.Closed() {
		return
	}
	if s.observer != nil {
		s.observer.ObservePoll(status, err)
	}
	s.apply(func(st State) State { return st.ApplyPoll(status, err) })
}

func (s *Session) apply(fn func(State) State) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.state = fn(s.state)
	next := s.state
	s.mu.Unlock()

	if s.onChange != nil {
		s.onChange(next)
	}
}

// spawn starts fn unless the session is closed. The Add happens under mu so it
// cannot race the Wait in Run once closed is set.
func (s *Session) spawn(fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
	return true
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}
