package server

import (
	"net/http"

	"mibhub/pkg/log"

	"github.com/labstack/echo/v4"
)

// liveness handles GET /healthz.
func (s *Server) liveness(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.version,
	})
}

// systemHealth handles GET /api/system/health. Partial readings are returned
// with a 200; the failures are only logged.
func (s *Server) systemHealth(ctx echo.Context) error {
	snapshot, err := s.Health.Collect(ctx.Request().Context())
	if err != nil {
		log.Warn().Err(err).Msg("Incomplete system health snapshot")
	}
	return ctx.JSON(http.StatusOK, snapshot)
}
