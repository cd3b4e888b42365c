package server

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/wirebound/wirebound/internal/observability"
	"github.com/wirebound/wirebound/internal/protocol"
)

const greeting = "connected"

// handleSocket upgrades the request and runs one peer's echo loop.
// Each frame is decoded, routed by urgency, and echoed back with its
// original classification. One frame is in flight at a time per peer.
func (s *Server) handleSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn().Err(err).Str("client_ip", c.ClientIP()).Msg("upgrade failed")
		return
	}
	defer conn.Close()

	peer := c.ClientIP()
	plog := s.log.With().Str("peer", peer).Logger()
	plog.Info().Msg("peer connected")

	var writeMu sync.Mutex
	send := func(msg protocol.Message) error {
		frame, err := protocol.EncodeMessage(msg)
		if err != nil {
			return err
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteMessage(websocket.TextMessage, frame)
	}

	if err := send(protocol.NewMessage(protocol.Normal, []byte(greeting))); err != nil {
		plog.Warn().Err(err).Msg("greeting failed")
		return
	}

	dispatcher := protocol.NewDispatcher(protocol.HandlerFuncs{
		Normal: func(msg protocol.Message) {
			plog.Info().Str("payload", msg.Text()).Msg("message")
		},
		Urgent: func(msg protocol.Message) {
			plog.Warn().Str("urgency", msg.Urgency.String()).
				Str("payload", msg.Text()).Msg("urgent message")
		},
	})

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			plog.Info().Err(err).Msg("peer disconnected")
			return
		}
		msg := protocol.DecodeMessage(frame)
		observability.RecordDispatch(s.name, msg.Urgency.String())
		dispatcher.Dispatch(msg)

		if err := send(msg); err != nil {
			plog.Warn().Err(err).Msg("echo failed")
			return
		}
	}
}
