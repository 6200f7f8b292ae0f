package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/framecast/framecast/internal/metrics"
	"github.com/framecast/framecast/internal/relay"
)

func (s *Server) handleViewerSocket(c echo.Context) error {
	ip := c.RealIP()

	ok, reason := s.limits.Acquire(ip)
	if !ok {
		metrics.LimiterRejectionsTotal.WithLabelValues(string(reason)).Inc()
		slog.Warn("viewer connection rejected", "reason", reason, "ip", ip)

		status := http.StatusTooManyRequests
		if reason == LimitReasonGlobal {
			status = http.StatusServiceUnavailable
		}
		return c.JSON(status, map[string]string{"error": "connection limit reached", "reason": string(reason)})
	}
	defer s.limits.Release(ip)

	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade websocket: %w", err)
	}

	viewer := relay.NewViewer(conn, s.clock)
	s.registry.Register(viewer)
	metrics.ConnectedViewers.Set(float64(s.registry.Len()))
	slog.Debug("viewer joined", "connection_id", viewer.ID(), "viewers", s.registry.Len())

	s.hub.OnJoin(viewer)

	// Blocks until the transport dies; viewers send nothing meaningful.
	viewer.ReadUntilClosed()

	s.registry.Deregister(viewer)
	viewer.Close("connection closed")
	metrics.ConnectedViewers.Set(float64(s.registry.Len()))
	slog.Debug("viewer left", "connection_id", viewer.ID(), "viewers", s.registry.Len())

	return nil
}
