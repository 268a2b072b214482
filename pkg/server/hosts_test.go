package server

import (
	"errors"
	"net/http"

	"mibhub/pkg/models"
)

// TestDiscoverHost tests registration and duplicate detection.
func (s *ServerTestSuite) TestDiscoverHost() {
	rec := s.do(http.MethodPost, "/api/hosts/discover", models.DiscoverRequest{IP: "192.168.1.10", Hostname: "web-1"})
	s.Equal(http.StatusCreated, rec.Code)

	host := s.decode(rec)["data"].(map[string]interface{})
	s.Equal("192.168.1.10", host["ip"])
	s.Equal("web-1", host["hostname"])
	s.NotEmpty(host["id"])

	rec = s.do(http.MethodPost, "/api/hosts/discover", models.DiscoverRequest{IP: "192.168.1.10"})
	s.Equal(http.StatusConflict, rec.Code)
	s.Contains(s.decode(rec)["error"], "host already registered")
}

// TestDiscoverHostInvalidIP tests the 400 on a malformed address.
func (s *ServerTestSuite) TestDiscoverHostInvalidIP() {
	rec := s.do(http.MethodPost, "/api/hosts/discover", models.DiscoverRequest{IP: "not-an-ip"})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(false, s.decode(rec)["success"])
}

// TestDiscoverHostWithSNMP tests that a probe result is stored as the host brand.
func (s *ServerTestSuite) TestDiscoverHostWithSNMP() {
	rec := s.do(http.MethodPost, "/api/hosts/discover", models.DiscoverRequest{
		IP:   "10.1.1.1",
		SNMP: &models.ProbeRequest{Community: "public"},
	})
	s.Equal(http.StatusCreated, rec.Code)

	host := s.decode(rec)["data"].(map[string]interface{})
	brand := host["brand"].(map[string]interface{})
	s.Equal("huawei", brand["brand"])
	s.Equal("core-rtr", brand["sys_name"])
}

// TestDiscoverHostProbeFailure tests that a probe failure still registers the host.
func (s *ServerTestSuite) TestDiscoverHostProbeFailure() {
	s.snmpClient.connectErr = errors.New("no route to host")

	rec := s.do(http.MethodPost, "/api/hosts/discover", models.DiscoverRequest{
		IP:   "10.1.1.2",
		SNMP: &models.ProbeRequest{},
	})
	s.Equal(http.StatusCreated, rec.Code)

	response := s.decode(rec)
	s.Contains(response["warning"], "no route to host")
	s.Len(s.server.Registry.List(), 1)
}

// TestHostLifecycle tests get, list, component update and delete.
func (s *ServerTestSuite) TestHostLifecycle() {
	id := s.discover("10.2.0.1")

	rec := s.do(http.MethodGet, "/api/hosts/"+id, nil)
	s.Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/hosts", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Len(s.decode(rec)["data"], 1)

	rec = s.do(http.MethodPut, "/api/hosts/"+id+"/components/node_exporter", models.ComponentUpdate{
		Status:  models.ComponentInstalled,
		Version: "1.8.0",
	})
	s.Equal(http.StatusOK, rec.Code)
	components := s.decode(rec)["data"].(map[string]interface{})["components"].([]interface{})
	s.Require().Len(components, 1)
	s.Equal("node_exporter", components[0].(map[string]interface{})["name"])

	rec = s.do(http.MethodPut, "/api/hosts/"+id+"/components/node_exporter", models.ComponentUpdate{Status: "exploded"})
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodDelete, "/api/hosts/"+id, nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(id, s.decode(rec)["id"])

	rec = s.do(http.MethodGet, "/api/hosts/"+id, nil)
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("host not found", s.decode(rec)["error"])

	rec = s.do(http.MethodDelete, "/api/hosts/"+id, nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

// TestHostGroups tests the group endpoints.
func (s *ServerTestSuite) TestHostGroups() {
	id := s.discover("10.3.0.1")
	group := models.HostGroup{ID: "edge", Name: "Edge routers", HostIDs: []string{id}}

	rec := s.do(http.MethodPost, "/api/host-groups", group)
	s.Equal(http.StatusCreated, rec.Code)

	rec = s.do(http.MethodPost, "/api/host-groups", group)
	s.Equal(http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPost, "/api/host-groups", models.HostGroup{ID: "bad", HostIDs: []string{"ghost"}})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(s.decode(rec)["error"], "unknown host ghost")

	rec = s.do(http.MethodGet, "/api/host-groups/edge", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("Edge routers", s.decode(rec)["data"].(map[string]interface{})["name"])

	rec = s.do(http.MethodGet, "/api/host-groups", nil)
	s.Len(s.decode(rec)["data"], 1)

	rec = s.do(http.MethodDelete, "/api/host-groups/edge", nil)
	s.Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/host-groups/edge", nil)
	s.Equal(http.StatusNotFound, rec.Code)
}
