package ws

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wirebound/wirebound/internal/session"
)

const closeGrace = time.Second

// Conn wraps one established WebSocket connection. A read pump owns
// the socket's read side and feeds frames through a channel so Receive
// can race against the caller's context; writes are serialized by a
// mutex because gorilla allows at most one concurrent writer.
type Conn struct {
	ws *websocket.Conn

	frames  chan []byte
	readErr error
	readEnd chan struct{}
	quit    chan struct{}

	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

func newConn(ws *websocket.Conn) *Conn {
	c := &Conn{
		ws:      ws,
		frames:  make(chan []byte, 16),
		readEnd: make(chan struct{}),
		quit:    make(chan struct{}),
	}
	go c.readPump()
	return c
}

func (c *Conn) readPump() {
	defer close(c.readEnd)
	for {
		_, frame, err := c.ws.ReadMessage()
		if err != nil {
			c.readErr = err
			return
		}
		// The send must not outlive Close: a peer flooding past the
		// buffer while nobody receives would otherwise park this
		// goroutine forever.
		select {
		case c.frames <- frame:
		case <-c.quit:
			return
		}
	}
}

// Send writes one frame, honoring the context deadline if set.
func (c *Conn) Send(ctx context.Context, frame []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if deadline, ok := ctx.Deadline(); ok {
		if err := c.ws.SetWriteDeadline(deadline); err != nil {
			return err
		}
	}
	return c.ws.WriteMessage(websocket.TextMessage, frame)
}

// Receive returns the next inbound frame, the read pump's error once
// the socket dies, or ctx.Err() when the caller gives up first.
func (c *Conn) Receive(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case frame := <-c.frames:
		return frame, nil
	case <-c.readEnd:
		// Drain frames buffered before the pump stopped.
		select {
		case frame := <-c.frames:
			return frame, nil
		default:
		}
		return nil, c.readErr
	}
}

// Close sends a close frame and tears the socket down, releasing the
// read pump even if it is blocked handing off a frame. Idempotent.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.quit)

		c.writeMu.Lock()
		deadline := time.Now().Add(closeGrace)
		_ = c.ws.SetWriteDeadline(deadline)
		_ = c.ws.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
		c.writeMu.Unlock()

		select {
		case <-c.readEnd:
		case <-time.After(closeGrace):
		}
		c.closeErr = c.ws.Close()
	})
	return c.closeErr
}

var _ session.Conn = (*Conn)(nil)
