package server

import (
	"github.com/labstack/echo/v4"

	"github.com/framecast/framecast/internal/version"
)

func (s *Server) handleStats(c echo.Context) error {
	stats := map[string]any{
		"viewers":          s.hub.ViewerCount(),
		"frames_published": s.hub.FramesPublished(),
		"has_frame":        false,
		"version":          version.Version,
	}

	if frame, ok := s.hub.CurrentFrame(); ok {
		stats["has_frame"] = true
		stats["last_media_type"] = frame.MediaType
		stats["last_published_at"] = frame.PublishedAt
		stats["last_frame_bytes"] = len(frame.Data)
	}

	return c.JSON(200, stats)
}
