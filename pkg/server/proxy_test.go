package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"mibhub/pkg/backend"
)

// TestProxyPassthrough tests that method, path, query and body reach the backend.
func (s *ServerTestSuite) TestProxyPassthrough() {
	req := httptest.NewRequest(http.MethodPut, "/api/devices/42?force=true", strings.NewReader(`{"name":"sw1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	s.server.Handler().ServeHTTP(rec, req)

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("1", rec.Header().Get("X-Total-Count"))
	s.JSONEq(`{"items":[{"id":1}]}`, rec.Body.String())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Equal(http.MethodPut, s.lastRequest.method)
	s.Equal("/api/v1/devices/42", s.lastRequest.path)
	s.Equal("force=true", s.lastRequest.query)
	s.Equal(`{"name":"sw1"}`, s.lastRequest.body)
	s.Equal("Bearer token", s.lastRequest.auth)
}

// TestProxyResources tests every proxied resource root.
func (s *ServerTestSuite) TestProxyResources() {
	for _, resource := range []string{"devices", "mibs", "alert-rules"} {
		rec := s.do(http.MethodGet, "/api/"+resource+"?page=2", nil)
		s.Equal(http.StatusOK, rec.Code, resource)

		s.mu.Lock()
		s.Equal("/api/v1/"+resource, s.lastRequest.path)
		s.Equal("page=2", s.lastRequest.query)
		s.mu.Unlock()
	}
}

// TestProxyForwardsBackendErrors tests that backend statuses are relayed as-is.
func (s *ServerTestSuite) TestProxyForwardsBackendErrors() {
	rec := s.do(http.MethodGet, "/api/devices/missing", nil)
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("device not found", s.decode(rec)["error"])
}

// TestProxyBackendDown tests the 502 envelope when the backend is unreachable.
func (s *ServerTestSuite) TestProxyBackendDown() {
	s.mockBackend.Close()

	rec := s.do(http.MethodGet, "/api/devices", nil)
	s.Equal(http.StatusBadGateway, rec.Code)

	response := s.decode(rec)
	s.Equal(false, response["success"])
	s.Contains(response["error"], "backend unavailable")
	s.False(s.server.Watcher.Status().Online)
}

// TestProxyNotConfigured tests the 503 envelope without BACKEND_URL.
func (s *ServerTestSuite) TestProxyNotConfigured() {
	s.server.MIBs.Close()
	s.server = s.newServer("")

	rec := s.do(http.MethodDelete, "/api/alert-rules/3", nil)
	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.Equal(false, s.decode(rec)["success"])
}

// TestProxyStalledBackend tests that a backend which never answers yields a 502.
func (s *ServerTestSuite) TestProxyStalledBackend() {
	release := make(chan struct{})
	stalled := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer stalled.Close()
	defer close(release)

	client := backend.NewClient(backend.Options{URL: stalled.URL, RequestTimeout: 100 * time.Millisecond})
	s.server.Backend = client
	s.server.Watcher = backend.NewWatcher(client, time.Hour, time.Second)

	start := time.Now()
	rec := s.do(http.MethodGet, "/api/devices", nil)
	s.Less(time.Since(start), 2*time.Second)
	s.Equal(http.StatusBadGateway, rec.Code)
	s.Contains(s.decode(rec)["error"], "backend unavailable")
	s.False(s.server.Watcher.Status().Online)
}

// TestProxyRelaysHeaders tests that end-to-end headers pass both ways and
// hop-by-hop headers do not.
func (s *ServerTestSuite) TestProxyRelaysHeaders() {
	req := httptest.NewRequest(http.MethodGet, "/api/mibs", nil)
	req.Header.Set("X-Tenant", "acme")
	req.Header.Set("Connection", "X-Hop")
	req.Header.Set("X-Hop", "secret")
	rec := httptest.NewRecorder()
	s.server.Handler().ServeHTTP(rec, req)

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("backend-v1", rec.Header().Get("X-Backend-Version"))
	s.Empty(rec.Header().Get("Keep-Alive"))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Equal("acme", s.lastRequest.header.Get("X-Tenant"))
	s.Empty(s.lastRequest.header.Get("X-Hop"))
}
