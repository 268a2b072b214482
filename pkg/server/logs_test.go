package server

import (
	"net/http"

	"mibhub/pkg/models"
)

// TestAppendAndReadLogs tests POST and GET /api/logs.
func (s *ServerTestSuite) TestAppendAndReadLogs() {
	rec := s.do(http.MethodPost, "/api/logs", models.LogEntry{Level: "warning", Message: "disk almost full", Component: "ui"})
	s.Equal(http.StatusCreated, rec.Code)
	entry := s.decode(rec)["entry"].(map[string]interface{})
	s.Equal("warn", entry["level"])

	rec = s.do(http.MethodPost, "/api/logs", models.LogEntry{Message: "page loaded"})
	s.Equal(http.StatusCreated, rec.Code)

	rec = s.do(http.MethodGet, "/api/logs?level=warn", nil)
	s.Equal(http.StatusOK, rec.Code)
	response := s.decode(rec)
	s.Equal(float64(1), response["count"])

	rec = s.do(http.MethodGet, "/api/logs?limit=1", nil)
	logs := s.decode(rec)["logs"].([]interface{})
	s.Require().Len(logs, 1)
	s.Equal("page loaded", logs[0].(map[string]interface{})["message"])
}

// TestAppendLogValidation tests the 400 on a missing message.
func (s *ServerTestSuite) TestAppendLogValidation() {
	rec := s.do(http.MethodPost, "/api/logs", models.LogEntry{Level: "info"})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(s.decode(rec)["error"], "message is required")
}

// TestReadLogsNoFile tests the empty answer for a day without logs.
func (s *ServerTestSuite) TestReadLogsNoFile() {
	rec := s.do(http.MethodGet, "/api/logs?date=2001-01-01", nil)
	s.Equal(http.StatusOK, rec.Code)

	response := s.decode(rec)
	s.Equal(true, response["success"])
	s.Empty(response["logs"])
	s.Equal("no logs found for this date", response["message"])
}

// TestReadLogsBadQuery tests limit and date validation.
func (s *ServerTestSuite) TestReadLogsBadQuery() {
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/api/logs?limit=0", nil).Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/api/logs?limit=abc", nil).Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/api/logs?date=yesterday", nil).Code)
}

// TestRecentLogs tests the in-memory ring buffer.
func (s *ServerTestSuite) TestRecentLogs() {
	s.do(http.MethodPost, "/api/logs", models.LogEntry{Level: "error", Message: "boom"})
	s.do(http.MethodPost, "/api/logs", models.LogEntry{Level: "info", Message: "ok"})

	rec := s.do(http.MethodGet, "/api/logs/recent?level=error", nil)
	s.Equal(http.StatusOK, rec.Code)
	logs := s.decode(rec)["logs"].([]interface{})
	s.Require().Len(logs, 1)
	s.Equal("boom", logs[0].(map[string]interface{})["message"])

	rec = s.do(http.MethodGet, "/api/logs/recent?level=loud", nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}
