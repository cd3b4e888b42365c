package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"uptime":    time.Since(s.appeared).String(),
			"component": s.name,
			"version":   "0.1.0",
		})
	})

	s.engine.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":     true,
			"uptime":    time.Since(s.appeared).String(),
			"component": s.name,
			"version":   "0.1.0",
		})
	})

	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.engine.GET(s.cfg.Endpoint, s.handleSocket)
}
