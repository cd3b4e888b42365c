package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wirebound/wirebound/internal/observability"
	"github.com/wirebound/wirebound/internal/session"
)

// Server terminates WebSocket sessions and exposes the operational
// HTTP surface (health, readiness, metrics) beside the socket endpoint.
type Server struct {
	name     string
	cfg      session.Config
	engine   *gin.Engine
	upgrader websocket.Upgrader
	log      zerolog.Logger
	appeared time.Time

	httpSrv *http.Server
}

// New validates the listen-side configuration and wires the router.
func New(name string, cfg session.Config) (*Server, error) {
	if err := cfg.ValidateServerTransport(); err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	logger := log.With().Str("server", name).Logger()
	engine.Use(gin.Recovery())
	engine.Use(observability.RequestLogger(logger))
	engine.Use(observability.RequestMetricsMiddleware(name))
	engine.Use(cors.Default())

	s := &Server{
		name:   name,
		cfg:    cfg,
		engine: engine,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		log:      logger,
		appeared: time.Now(),
	}
	s.registerRoutes()
	return s, nil
}

// Handler exposes the router for in-process tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is canceled, then drains with a short grace
// period. TLS is decided by the session config.
func (s *Server) Run(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:              s.cfg.Address(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			err = s.httpSrv.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			err = s.httpSrv.ListenAndServe()
		}
		errCh <- err
	}()
	s.log.Info().Str("addr", s.cfg.Address()).Bool("tls", s.cfg.TLS.Enabled).Msg("listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		s.log.Warn().Err(err).Msg("shutdown incomplete")
		return err
	}
	return nil
}
