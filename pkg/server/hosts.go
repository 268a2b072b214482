package server

import (
	"net/http"
	"strings"

	"mibhub/pkg/log"
	"mibhub/pkg/models"

	"github.com/labstack/echo/v4"
)

// discoverHost handles POST /api/hosts/discover. A failed SNMP probe does not
// fail the discovery; the host is registered without a brand.
func (s *Server) discoverHost(ctx echo.Context) error {
	var req models.DiscoverRequest
	if err := bindJSON(ctx, &req); err != nil {
		return respondError(ctx, err)
	}

	host, err := s.Registry.Discover(&req)
	if err != nil {
		return respondError(ctx, err)
	}

	log.Info().Str("host", host.ID).Str("ip", host.IP).Msg("Host discovered")

	if req.SNMP == nil {
		return dataJSON(ctx, http.StatusCreated, host)
	}

	probe := *req.SNMP
	if strings.TrimSpace(probe.Target) == "" {
		probe.Target = host.IP
	}

	brand, err := s.Prober.Probe(ctx.Request().Context(), probe)
	if err != nil {
		log.Warn().Err(err).Str("host", host.ID).Str("target", probe.Target).Msg("SNMP probe failed during discovery")
		return ctx.JSON(http.StatusCreated, map[string]interface{}{
			"success": true,
			"data":    host,
			"warning": "snmp probe failed: " + err.Error(),
		})
	}

	if err := s.Registry.SetBrand(host.ID, brand); err != nil {
		return respondError(ctx, err)
	}
	host, err = s.Registry.Get(host.ID)
	if err != nil {
		return respondError(ctx, err)
	}
	return dataJSON(ctx, http.StatusCreated, host)
}

// listHosts handles GET /api/hosts.
func (s *Server) listHosts(ctx echo.Context) error {
	return dataJSON(ctx, http.StatusOK, s.Registry.List())
}

// getHost handles GET /api/hosts/:id.
func (s *Server) getHost(ctx echo.Context) error {
	host, err := s.Registry.Get(ctx.Param("id"))
	if err != nil {
		return respondError(ctx, err)
	}
	return dataJSON(ctx, http.StatusOK, host)
}

// deleteHost handles DELETE /api/hosts/:id.
func (s *Server) deleteHost(ctx echo.Context) error {
	id := ctx.Param("id")
	if err := s.Registry.Delete(id); err != nil {
		return respondError(ctx, err)
	}

	log.Info().Str("host", id).Msg("Host deleted")
	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Host deleted successfully",
		"id":      id,
	})
}

// updateComponent handles PUT /api/hosts/:id/components/:component.
func (s *Server) updateComponent(ctx echo.Context) error {
	var update models.ComponentUpdate
	if err := bindJSON(ctx, &update); err != nil {
		return respondError(ctx, err)
	}

	host, err := s.Registry.UpdateComponent(ctx.Param("id"), ctx.Param("component"), update)
	if err != nil {
		return respondError(ctx, err)
	}
	return dataJSON(ctx, http.StatusOK, host)
}

// listGroups handles GET /api/host-groups.
func (s *Server) listGroups(ctx echo.Context) error {
	return dataJSON(ctx, http.StatusOK, s.Registry.ListGroups())
}

// createGroup handles POST /api/host-groups.
func (s *Server) createGroup(ctx echo.Context) error {
	var group models.HostGroup
	if err := bindJSON(ctx, &group); err != nil {
		return respondError(ctx, err)
	}

	created, err := s.Registry.CreateGroup(group)
	if err != nil {
		return respondError(ctx, err)
	}
	return dataJSON(ctx, http.StatusCreated, created)
}

// getGroup handles GET /api/host-groups/:id.
func (s *Server) getGroup(ctx echo.Context) error {
	group, err := s.Registry.GetGroup(ctx.Param("id"))
	if err != nil {
		return respondError(ctx, err)
	}
	return dataJSON(ctx, http.StatusOK, group)
}

// deleteGroup handles DELETE /api/host-groups/:id.
func (s *Server) deleteGroup(ctx echo.Context) error {
	id := ctx.Param("id")
	if err := s.Registry.DeleteGroup(id); err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Host group deleted successfully",
		"id":      id,
	})
}
