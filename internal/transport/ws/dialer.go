package ws

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/wirebound/wirebound/internal/session"
)

// Dialer connects WebSocket sessions. It satisfies session.Transport;
// one dialer may establish many connections sequentially.
type Dialer struct {
	cfg session.Config
}

func NewDialer(cfg session.Config) (*Dialer, error) {
	if err := cfg.ValidateClientTransport(); err != nil {
		return nil, err
	}
	return &Dialer{cfg: cfg}, nil
}

// Connect dials the configured endpoint, performing the TLS and
// WebSocket handshakes. Handshake rejections the server will repeat
// (bad path, failed auth) come back marked terminal so the session
// does not burn its retry budget on them.
func (d *Dialer) Connect(ctx context.Context) (session.Conn, error) {
	tlsCfg, err := clientTLSConfig(d.cfg.TLS, d.cfg.Host)
	if err != nil {
		return nil, session.Terminal(err)
	}

	dialer := websocket.Dialer{
		TLSClientConfig:  tlsCfg,
		HandshakeTimeout: d.cfg.ConnectTimeout,
	}
	conn, resp, err := dialer.DialContext(ctx, d.cfg.URL(), nil)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			if rejectedByPeer(resp.StatusCode) {
				return nil, session.Terminal(fmt.Errorf("ws: handshake rejected: %s: %w", resp.Status, err))
			}
		}
		return nil, fmt.Errorf("ws: dial %s: %w", d.cfg.URL(), err)
	}
	return newConn(conn), nil
}

// rejectedByPeer reports whether a handshake HTTP status indicates a
// deliberate refusal rather than transient load.
func rejectedByPeer(status int) bool {
	if status == http.StatusTooManyRequests || status == http.StatusRequestTimeout {
		return false
	}
	return status >= 400 && status < 500
}

var _ session.Transport = (*Dialer)(nil)
