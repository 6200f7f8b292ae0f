package server

import (
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) handleViewerPage(c echo.Context) error {
	data := map[string]any{
		"Host": c.Request().Host,
	}
	return renderTemplate(c, s.viewerTemplate, data)
}

func (s *Server) handlePublisherPage(c echo.Context) error {
	data := map[string]any{
		"MaxFrameBytes": s.config.MaxFrameBytes,
	}
	return renderTemplate(c, s.publisherTemplate, data)
}

func renderTemplate(c echo.Context, tmpl *template.Template, data any) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return tmpl.Execute(c.Response(), data)
}
