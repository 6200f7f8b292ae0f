package server

import (
	"github.com/labstack/echo/v4"

	"github.com/framecast/framecast/internal/version"
)

func (s *Server) handleLiveness(c echo.Context) error {
	uptime := s.clock.Since(s.startTime).Seconds()
	return c.JSON(200, map[string]any{
		"status":  "ok",
		"uptime":  uptime,
		"version": version.Version,
	})
}

// The relay has no external backends; readiness only signals that the
// process is serving and below its global viewer capacity.
func (s *Server) handleReadiness(c echo.Context) error {
	if !s.limits.Global().HasCapacity() {
		return c.JSON(503, map[string]any{
			"status":  "unhealthy",
			"reason":  "viewer capacity exhausted",
			"viewers": s.limits.Global().Current(),
		})
	}
	return c.JSON(200, map[string]string{"status": "ready"})
}
