package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wirebound/wirebound/internal/observability"
	"github.com/wirebound/wirebound/internal/protocol"
	"github.com/wirebound/wirebound/internal/retry"
)

// State is the session lifecycle phase.
type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateOpen       State = "open"
	StateClosing    State = "closing"
	StateClosed     State = "closed"
	StateFailed     State = "failed"
)

var (
	ErrAlreadyStarted = errors.New("session: already started")
	ErrNotOpen        = errors.New("session: not open")
)

// Session drives one logical connection from establishment through
// teardown. All lifecycle work runs on a single goroutine spawned by
// Start; the exported methods only signal it or read its state.
type Session struct {
	name       string
	cfg        Config
	transport  Transport
	dispatcher *protocol.Dispatcher
	exec       *retry.Executor
	log        zerolog.Logger

	onTransition func(from, to State)

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	closeOnce sync.Once
	doneOnce  sync.Once

	mu      sync.RWMutex
	state   State
	err     error
	conn    Conn
	started bool
}

// New builds a session around cfg. The handler receives every inbound
// message; register it here, before Start, never after.
func New(name string, cfg Config, transport Transport, handler protocol.Handler) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		name:       name,
		cfg:        cfg,
		transport:  transport,
		dispatcher: protocol.NewDispatcher(handler),
		exec:       retry.NewExecutor(retry.NewExponentialPolicy(cfg.Retry)),
		log:        log.With().Str("session", name).Logger(),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
		state:      StateIdle,
	}
}

// OnTransition registers an observer for state changes. Call before
// Start. The session never waits on the observer.
func (s *Session) OnTransition(fn func(from, to State)) {
	s.onTransition = fn
}

// SetPolicy replaces the connect backoff policy. Call before Start.
func (s *Session) SetPolicy(policy retry.Policy) {
	s.exec = retry.NewExecutor(policy)
}

// Start begins the connect sequence and returns immediately. The
// optional initial payload is sent as a Normal message as soon as the
// transport opens.
func (s *Session) Start(initial []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}
	if s.transport == nil {
		return ErrNoTransport
	}
	s.started = true
	go s.run(initial)
	return nil
}

// Stop signals cancellation and returns without waiting for shutdown
// to complete; use Done to observe it.
func (s *Session) Stop() {
	s.cancel()
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		s.transition(StateClosed)
		s.finish()
	}
}

// State reports the current lifecycle phase.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Err reports why the session failed or the last receive error. Nil
// after a clean shutdown.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Done closes once the session reaches Closed or Failed.
func (s *Session) Done() <-chan struct{} { return s.done }

// Send encodes msg and writes it to the open transport.
func (s *Session) Send(ctx context.Context, msg protocol.Message) error {
	s.mu.RLock()
	conn, state := s.conn, s.state
	s.mu.RUnlock()
	if state != StateOpen || conn == nil {
		return ErrNotOpen
	}
	frame, err := protocol.EncodeMessage(msg)
	if err != nil {
		return err
	}
	if s.cfg.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.WriteTimeout)
		defer cancel()
	}
	return conn.Send(ctx, frame)
}

func (s *Session) run(initial []byte) {
	defer s.finish()

	s.transition(StateConnecting)
	startedAt := time.Now()
	out := retry.DoIf(s.ctx, s.exec, func(ctx context.Context) (Conn, error) {
		if s.cfg.ConnectTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.cfg.ConnectTimeout)
			defer cancel()
		}
		return s.transport.Connect(ctx)
	}, func(err error) bool {
		return !IsTerminal(err)
	})
	observability.RecordConnect(s.name, out.Attempts, time.Since(startedAt), out.OK)

	if !out.OK {
		s.setErr(out.Err)
		s.log.Error().Err(out.Err).Int("attempts", out.Attempts).
			Dur("total_delay", out.TotalDelay).Msg("connect failed")
		s.transition(StateFailed)
		return
	}

	s.mu.Lock()
	s.conn = out.Value
	s.mu.Unlock()
	s.log.Info().Int("attempts", out.Attempts).Msg("transport open")
	s.transition(StateOpen)

	if len(initial) > 0 {
		msg := protocol.NewMessage(protocol.Normal, initial)
		if err := s.Send(s.ctx, msg); err != nil {
			s.setErr(err)
			s.log.Warn().Err(err).Msg("initial send failed")
			s.shutdown(out.Value)
			return
		}
	}

	s.receiveLoop(out.Value)
	s.shutdown(out.Value)
}

// receiveLoop processes one inbound frame at a time. Dispatch is
// synchronous, so at most one message is in flight per session.
func (s *Session) receiveLoop(conn Conn) {
	for {
		if s.ctx.Err() != nil {
			return
		}
		frame, err := conn.Receive(s.ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				s.setErr(err)
				s.log.Warn().Err(err).Msg("receive failed")
			}
			return
		}
		msg := protocol.DecodeMessage(frame)
		observability.RecordDispatch(s.name, msg.Urgency.String())
		s.dispatcher.Dispatch(msg)
	}
}

// shutdown releases the transport. Close errors are logged, never
// escalated; there is nothing useful to do with them during teardown.
func (s *Session) shutdown(conn Conn) {
	s.transition(StateClosing)
	s.closeOnce.Do(func() {
		if err := conn.Close(); err != nil {
			s.log.Warn().Err(err).Msg("transport close failed")
		}
	})
	s.mu.Lock()
	s.conn = nil
	s.mu.Unlock()
	s.transition(StateClosed)
}

func (s *Session) transition(to State) {
	s.mu.Lock()
	from := s.state
	s.state = to
	s.mu.Unlock()
	if from == to {
		return
	}
	s.log.Debug().Str("from", string(from)).Str("to", string(to)).Msg("state transition")
	observability.RecordSessionTransition(s.name, string(from), string(to))
	if s.onTransition != nil {
		s.onTransition(from, to)
	}
}

func (s *Session) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *Session) finish() {
	s.doneOnce.Do(func() { close(s.done) })
}
