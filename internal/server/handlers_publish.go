package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/framecast/framecast/internal/domain"
	apperrors "github.com/framecast/framecast/internal/errors"
	"github.com/framecast/framecast/internal/metrics"
)

func (s *Server) handlePublish(c echo.Context) error {
	if !s.publishLimiter.Allow() {
		metrics.PublishRejectionsTotal.WithLabelValues("rate_limited").Inc()
		return apperrors.RateLimitedError("publish rate limit exceeded")
	}

	body := http.MaxBytesReader(nil, c.Request().Body, s.config.MaxFrameBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			metrics.PublishRejectionsTotal.WithLabelValues("too_large").Inc()
			return apperrors.TooLargeError("frame exceeds size limit").
				WithField("max_bytes", s.config.MaxFrameBytes)
		}
		return apperrors.InternalError("failed to read frame payload", err)
	}

	if len(data) == 0 {
		metrics.PublishRejectionsTotal.WithLabelValues("empty").Inc()
		return apperrors.ValidationError("frame payload is empty")
	}

	mediaType := c.Request().Header.Get(echo.HeaderContentType)
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}

	result, err := s.hub.Publish(domain.Frame{Data: data, MediaType: mediaType})
	if errors.Is(err, domain.ErrEmptyFrame) {
		return apperrors.ValidationError("frame payload is empty")
	}
	if err != nil {
		return apperrors.InternalError("failed to publish frame", err)
	}

	return c.JSON(http.StatusAccepted, map[string]any{
		"status":    "accepted",
		"delivered": result.Delivered,
		"evicted":   result.Evicted,
		"viewers":   s.hub.ViewerCount(),
	})
}
