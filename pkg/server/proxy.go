package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"mibhub/pkg/backend"
	"mibhub/pkg/log"

	"github.com/labstack/echo/v4"
)

// proxiedResources are forwarded verbatim to {BACKEND_URL}/api/v1/{resource}.
var proxiedResources = []string{"devices", "mibs", "alert-rules"}

const maxProxyBody = 32 << 20

// proxy forwards the request, including query string and body, to the backend
// and relays the backend status, end-to-end headers and body unchanged.
func (s *Server) proxy(ctx echo.Context) error {
	req := ctx.Request()
	path := strings.TrimPrefix(req.URL.Path, "/api")

	body, err := io.ReadAll(io.LimitReader(req.Body, maxProxyBody))
	if err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "failed to read request body")
	}

	resp, err := s.Backend.Forward(req.Context(), req.Method, path, req.URL.RawQuery, body, req.Header)
	if err != nil {
		if errors.Is(err, backend.ErrNotConfigured) {
			return errorJSON(ctx, http.StatusServiceUnavailable, err.Error())
		}
		if backend.IsTimeoutOrConnectionError(err) && s.Watcher != nil {
			s.Watcher.MarkDead(err)
		}
		log.Warn().
			Err(err).
			Str("method", req.Method).
			Str("path", path).
			Msg("Backend request failed")
		return errorJSON(ctx, http.StatusBadGateway, "backend unavailable: "+err.Error())
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close backend response body")
		}
	}()

	backend.CopyHeaders(ctx.Response().Header(), resp.Header)

	contentType := resp.Header.Get(echo.HeaderContentType)
	if contentType == "" {
		contentType = echo.MIMEApplicationJSON
	}
	return ctx.Stream(resp.StatusCode, contentType, resp.Body)
}
