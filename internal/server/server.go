// Package server wires the HTTP surface: publish endpoint, viewer
// websocket endpoint, pages, health checks, and metrics.
package server

import (
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/framecast/framecast/internal/config"
	"github.com/framecast/framecast/internal/relay"
	"github.com/framecast/framecast/web"
)

type Server struct {
	echo              *echo.Echo
	config            *config.Config
	registry          *relay.Registry
	hub               *relay.Hub
	clock             clockwork.Clock
	limits            *ViewerLimits
	publishLimiter    *rate.Limiter
	upgrader          websocket.Upgrader
	viewerTemplate    *template.Template
	publisherTemplate *template.Template
	startTime         time.Time
}

func NewServer(cfg *config.Config, registry *relay.Registry, hub *relay.Hub, clock clockwork.Clock) (*Server, error) {
	viewerTmpl, err := template.ParseFS(web.Templates, "templates/viewer.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse viewer template: %w", err)
	}
	publisherTmpl, err := template.ParseFS(web.Templates, "templates/publisher.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse publisher template: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(errorHandlingMiddleware())

	srv := &Server{
		echo:              e,
		config:            cfg,
		registry:          registry,
		hub:               hub,
		clock:             clock,
		limits:            NewViewerLimits(cfg.MaxViewers, cfg.MaxViewersPerIP, cfg.ViewerConnectRate, cfg.ViewerConnectBurst),
		publishLimiter:    rate.NewLimiter(rate.Limit(cfg.PublishRate), cfg.PublishBurst),
		viewerTemplate:    viewerTmpl,
		publisherTemplate: publisherTmpl,
		startTime:         clock.Now(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     NewCheckOrigin(cfg.AppURL, cfg.IsDevelopment()),
		},
	}

	srv.registerRoutes()

	return srv, nil
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
