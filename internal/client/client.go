// Package client runs the interactive client service: one supervised
// session against a remote endpoint, fed from an input stream.
package client

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wirebound/wirebound/internal/protocol"
	"github.com/wirebound/wirebound/internal/session"
	"github.com/wirebound/wirebound/internal/transport/ws"
)

// urgentPrefix marks an input line for the priority path.
const urgentPrefix = "!"

// Service supervises the client session: when an established session
// drops mid-flight it builds a fresh one, while terminal failures and
// exhausted connect budgets end the run.
type Service struct {
	name    string
	cfg     session.Config
	initial []byte
	input   io.Reader
	log     zerolog.Logger
}

func NewService(name string, cfg session.Config, initial []byte, input io.Reader) *Service {
	return &Service{
		name:    name,
		cfg:     cfg,
		initial: initial,
		input:   input,
		log:     log.With().Str("client", name).Logger(),
	}
}

// Run blocks until ctx is canceled, the input stream ends, or the
// session fails for good.
func (s *Service) Run(ctx context.Context) error {
	dialer, err := ws.NewDialer(s.cfg)
	if err != nil {
		return err
	}

	handler := protocol.HandlerFuncs{
		Normal: func(msg protocol.Message) {
			s.log.Info().Str("payload", msg.Text()).Msg("received")
		},
		Urgent: func(msg protocol.Message) {
			s.log.Warn().Str("urgency", msg.Urgency.String()).
				Str("payload", msg.Text()).Msg("received urgent")
		},
	}

	lines := make(chan string)
	go s.readInput(ctx, lines)

	initial := s.initial
	for {
		sess := session.New(s.name, s.cfg, dialer, handler)
		if err := sess.Start(initial); err != nil {
			return err
		}
		initial = nil // only the first session carries the greeting

		inputClosed := s.pump(ctx, sess, lines)
		sess.Stop()
		<-sess.Done()

		switch {
		case ctx.Err() != nil || inputClosed:
			return nil
		case sess.State() == session.StateFailed:
			return sess.Err()
		}
		// Session closed mid-flight (peer went away); supervise a new
		// one, its own backoff pacing the reconnect.
		s.log.Info().Msg("session lost, reconnecting")
	}
}

// pump forwards input lines into the session until the session ends,
// the input closes, or ctx fires. Reports whether the input stream was
// exhausted.
func (s *Service) pump(ctx context.Context, sess *session.Session, lines <-chan string) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case <-sess.Done():
			return false
		case line, ok := <-lines:
			if !ok {
				return true
			}
			msg := classify(line)
			if err := sess.Send(ctx, msg); err != nil {
				if errors.Is(err, session.ErrNotOpen) {
					continue
				}
				s.log.Warn().Err(err).Msg("send failed")
			}
		}
	}
}

func (s *Service) readInput(ctx context.Context, lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(s.input)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		select {
		case lines <- line:
		case <-ctx.Done():
			return
		}
	}
}

// classify maps an input line to a message: a "!" prefix requests the
// priority path, everything else travels as Normal.
func classify(line string) protocol.Message {
	if rest, ok := strings.CutPrefix(line, urgentPrefix); ok {
		return protocol.NewMessage(protocol.Critical, []byte(strings.TrimSpace(rest)))
	}
	return protocol.NewMessage(protocol.Normal, []byte(line))
}
