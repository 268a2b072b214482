package server

import (
	"errors"
	"net/http"
	"strings"

	"mibhub/pkg/log"
	"mibhub/pkg/models"
	"mibhub/pkg/snmp"

	"github.com/labstack/echo/v4"
)

// detectBrand handles POST /api/snmp/detect.
func (s *Server) detectBrand(ctx echo.Context) error {
	var req models.DetectRequest
	if err := bindJSON(ctx, &req); err != nil {
		return respondError(ctx, err)
	}
	if strings.TrimSpace(req.SysDescr) == "" && strings.TrimSpace(req.SysObjectID) == "" {
		return errorJSON(ctx, http.StatusBadRequest, "sysDescr or sysObjectID is required")
	}

	return dataJSON(ctx, http.StatusOK, snmp.DetectBrand(req.SysDescr, req.SysObjectID))
}

// probeDevice handles POST /api/snmp/probe.
func (s *Server) probeDevice(ctx echo.Context) error {
	var req models.ProbeRequest
	if err := bindJSON(ctx, &req); err != nil {
		return respondError(ctx, err)
	}
	if strings.TrimSpace(req.Target) == "" {
		return errorJSON(ctx, http.StatusBadRequest, "target is required")
	}
	if _, err := snmp.ParseVersion(req.Version); err != nil {
		return errorJSON(ctx, http.StatusBadRequest, err.Error())
	}

	match, err := s.Prober.Probe(ctx.Request().Context(), req)
	if errors.Is(err, snmp.ErrInvalidV3) {
		return errorJSON(ctx, http.StatusBadRequest, err.Error())
	}
	if err != nil {
		log.Warn().Err(err).Str("target", req.Target).Msg("SNMP probe failed")
		return errorJSON(ctx, http.StatusBadGateway, "snmp probe failed: "+err.Error())
	}
	return dataJSON(ctx, http.StatusOK, match)
}
