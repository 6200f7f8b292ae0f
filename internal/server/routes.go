package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Pages
	s.echo.GET("/", s.handleViewerPage)
	s.echo.GET("/publisher", s.handlePublisherPage)

	// Publish endpoint
	s.echo.POST("/publish", s.handlePublish)

	// Viewer websocket endpoint
	s.echo.GET("/ws/view", s.handleViewerSocket)

	// Stats API
	s.echo.GET("/api/stats", s.handleStats)
}
