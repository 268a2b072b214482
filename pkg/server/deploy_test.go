package server

import (
	"net/http"

	"mibhub/pkg/models"
)

func (s *ServerTestSuite) discover(ip string) string {
	host, err := s.server.Registry.Discover(&models.DiscoverRequest{IP: ip})
	s.Require().NoError(err)
	return host.ID
}

// TestDeployMonitoring tests a successful monitoring deployment.
func (s *ServerTestSuite) TestDeployMonitoring() {
	id := s.discover("10.0.0.1")

	rec := s.do(http.MethodPost, "/api/deploy/monitoring", models.DeployRequest{
		Hosts:      []string{id},
		Components: []string{"node_exporter"},
	})
	s.Equal(http.StatusOK, rec.Code)

	response := s.decode(rec)
	s.Equal(true, response["success"])
	s.NotEmpty(response["deploymentId"])
	summary := response["summary"].(map[string]interface{})
	s.Equal(float64(1), summary["succeeded"])

	host, err := s.server.Registry.Get(id)
	s.Require().NoError(err)
	s.Equal(models.ComponentInstalled, host.Components[0].Status)

	list := s.decode(s.do(http.MethodGet, "/api/deployments", nil))
	s.Len(list["data"], 1)

	got := s.do(http.MethodGet, "/api/deployments/"+response["deploymentId"].(string), nil)
	s.Equal(http.StatusOK, got.Code)
}

// TestDeployRulesFailure tests that a failed remote task is reported, not masked.
func (s *ServerTestSuite) TestDeployRulesFailure() {
	s.taskStatus.Store("failed")
	id := s.discover("10.0.0.2")

	rec := s.do(http.MethodPost, "/api/deploy/rules", models.DeployRequest{
		Hosts: []string{id},
		Rules: []map[string]interface{}{{"name": "if-down"}},
	})
	s.Equal(http.StatusOK, rec.Code)

	response := s.decode(rec)
	s.Equal(false, response["success"])
	results := response["results"].([]interface{})
	s.Require().Len(results, 1)
	s.Equal(false, results[0].(map[string]interface{})["success"])
}

// TestDeployValidation tests the aggregated 400.
func (s *ServerTestSuite) TestDeployValidation() {
	rec := s.do(http.MethodPost, "/api/deploy/rules", models.DeployRequest{})
	s.Equal(http.StatusBadRequest, rec.Code)

	response := s.decode(rec)
	s.Contains(response["error"], "at least one host is required")
	s.Contains(response["error"], "at least one rule is required")
}

// TestDeployWithoutBackend tests the 503 without BACKEND_URL.
func (s *ServerTestSuite) TestDeployWithoutBackend() {
	s.server.MIBs.Close()
	s.server = s.newServer("")

	rec := s.do(http.MethodPost, "/api/deploy/monitoring", models.DeployRequest{Hosts: []string{"x"}})
	s.Equal(http.StatusServiceUnavailable, rec.Code)
}

// TestGetDeploymentNotFound tests an unknown deployment id.
func (s *ServerTestSuite) TestGetDeploymentNotFound() {
	rec := s.do(http.MethodGet, "/api/deployments/nope", nil)
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("deployment not found", s.decode(rec)["error"])
}
