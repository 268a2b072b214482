package server

import (
	"net/http"

	"mibhub/pkg/deploy"
	"mibhub/pkg/log"
	"mibhub/pkg/models"

	"github.com/labstack/echo/v4"
)

// deployRules handles POST /api/deploy/rules.
func (s *Server) deployRules(ctx echo.Context) error {
	return s.runDeployment(ctx, models.DeployRules)
}

// deployMonitoring handles POST /api/deploy/monitoring.
func (s *Server) deployMonitoring(ctx echo.Context) error {
	return s.runDeployment(ctx, models.DeployMonitoring)
}

func (s *Server) runDeployment(ctx echo.Context, kind string) error {
	var req models.DeployRequest
	if err := bindJSON(ctx, &req); err != nil {
		return respondError(ctx, err)
	}

	if !s.Backend.Configured() {
		return errorJSON(ctx, http.StatusServiceUnavailable, "deployment requires BACKEND_URL")
	}

	log.Info().
		Str("kind", kind).
		Strs("hosts", req.Hosts).
		Str("group", req.Group).
		Msg("Deployment request")

	deployment, err := s.Deployer.Deploy(ctx.Request().Context(), kind, &req)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, deploy.Response(deployment))
}

// listDeployments handles GET /api/deployments.
func (s *Server) listDeployments(ctx echo.Context) error {
	return dataJSON(ctx, http.StatusOK, s.Deployer.History().List())
}

// getDeployment handles GET /api/deployments/:id.
func (s *Server) getDeployment(ctx echo.Context) error {
	deployment, err := s.Deployer.History().Get(ctx.Param("id"))
	if err != nil {
		return respondError(ctx, err)
	}
	return dataJSON(ctx, http.StatusOK, deployment)
}
