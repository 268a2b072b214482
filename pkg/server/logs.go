package server

import (
	"errors"
	"net/http"
	"strconv"

	"mibhub/pkg/logstore"
	"mibhub/pkg/models"

	"github.com/labstack/echo/v4"
)

// appendLog handles POST /api/logs.
func (s *Server) appendLog(ctx echo.Context) error {
	var entry models.LogEntry
	if err := bindJSON(ctx, &entry); err != nil {
		return respondError(ctx, err)
	}

	stored, err := s.Logs.Append(entry)
	if err != nil {
		return respondError(ctx, err)
	}
	if s.Flusher != nil {
		s.Flusher.Enqueue(stored)
	}

	return ctx.JSON(http.StatusCreated, map[string]interface{}{
		"success": true,
		"entry":   stored,
	})
}

// readLogs handles GET /api/logs?level=&date=&limit=.
func (s *Server) readLogs(ctx echo.Context) error {
	query := logstore.Query{
		Date:  ctx.QueryParam("date"),
		Level: ctx.QueryParam("level"),
	}
	if raw := ctx.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return errorJSON(ctx, http.StatusBadRequest, "limit must be a positive integer")
		}
		query.Limit = limit
	}

	entries, err := s.Logs.Read(query)
	if errors.Is(err, logstore.ErrNoLogs) {
		return ctx.JSON(http.StatusOK, map[string]interface{}{
			"success": true,
			"logs":    []models.LogEntry{},
			"message": err.Error(),
		})
	}
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"logs":    entries,
		"count":   len(entries),
	})
}

// recentLogs handles GET /api/logs/recent?level=.
func (s *Server) recentLogs(ctx echo.Context) error {
	level := ctx.QueryParam("level")
	if level != "" {
		canonical, ok := logstore.NormalizeLevel(level)
		if !ok {
			return errorJSON(ctx, http.StatusBadRequest, "unknown level "+strconv.Quote(level))
		}
		level = canonical
	}

	entries := s.Recent.Entries(level)
	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"logs":    entries,
		"count":   len(entries),
	})
}
