package session

import (
	"context"
	"errors"
)

// Transport is the external capability that performs the actual secure
// handshake and connection setup. Connect may block for the full
// handshake; it must honor ctx cancellation.
type Transport interface {
	Connect(ctx context.Context) (Conn, error)
}

// Conn is one established connection. A session owns its Conn
// exclusively while open; no other caller may touch it. Receive must
// return promptly when ctx is canceled, and Close must be idempotent.
type Conn interface {
	Send(ctx context.Context, frame []byte) error
	Receive(ctx context.Context) ([]byte, error)
	Close() error
}

// terminalError marks a failure that retrying cannot fix.
type terminalError struct {
	err error
}

func (e *terminalError) Error() string { return e.err.Error() }

func (e *terminalError) Unwrap() error { return e.err }

// Terminal wraps err so the connect loop stops immediately instead of
// burning the remaining retry budget. Use it for rejected credentials,
// protocol mismatch, and anything else a re-dial cannot change.
func Terminal(err error) error {
	if err == nil {
		return nil
	}
	return &terminalError{err: err}
}

// IsTerminal reports whether err was marked Terminal anywhere in its
// chain.
func IsTerminal(err error) bool {
	var te *terminalError
	return errors.As(err, &te)
}

// TransportFunc adapts a connect func to Transport.
type TransportFunc func(ctx context.Context) (Conn, error)

func (f TransportFunc) Connect(ctx context.Context) (Conn, error) { return f(ctx) }

var _ Transport = TransportFunc(nil)

// ErrNoTransport is returned by Start when the session was built
// without a transport.
var ErrNoTransport = errors.New("session: no transport configured")
