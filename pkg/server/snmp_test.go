package server

import (
	"errors"
	"net/http"

	"mibhub/pkg/models"
)

// TestDetectBrand tests offline brand detection.
func (s *ServerTestSuite) TestDetectBrand() {
	rec := s.do(http.MethodPost, "/api/snmp/detect", models.DetectRequest{SysObjectID: "1.3.6.1.4.1.9.1.1208"})
	s.Equal(http.StatusOK, rec.Code)

	match := s.decode(rec)["data"].(map[string]interface{})
	s.Equal("cisco", match["brand"])
	s.Equal("cisco-ios", match["template"])

	rec = s.do(http.MethodPost, "/api/snmp/detect", models.DetectRequest{})
	s.Equal(http.StatusBadRequest, rec.Code)
}

// TestProbeDevice tests a live probe through the client factory.
func (s *ServerTestSuite) TestProbeDevice() {
	rec := s.do(http.MethodPost, "/api/snmp/probe", models.ProbeRequest{Target: "10.9.9.9", Version: "2c"})
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("huawei", s.decode(rec)["data"].(map[string]interface{})["brand"])

	rec = s.do(http.MethodPost, "/api/snmp/probe", models.ProbeRequest{})
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/snmp/probe", models.ProbeRequest{Target: "10.9.9.9", Version: "4"})
	s.Equal(http.StatusBadRequest, rec.Code)
}

// TestProbeDeviceUnreachable tests the 502 on a connect failure.
func (s *ServerTestSuite) TestProbeDeviceUnreachable() {
	s.snmpClient.connectErr = errors.New("request timeout")

	rec := s.do(http.MethodPost, "/api/snmp/probe", models.ProbeRequest{Target: "10.9.9.9"})
	s.Equal(http.StatusBadGateway, rec.Code)
	s.Contains(s.decode(rec)["error"], "request timeout")
}

// TestProbeDeviceV3 tests that SNMPv3 credentials reach the client and bad ones are rejected.
func (s *ServerTestSuite) TestProbeDeviceV3() {
	rec := s.do(http.MethodPost, "/api/snmp/probe", models.ProbeRequest{
		Target:  "10.9.9.9",
		Version: "3",
		V3:      &models.SNMPv3{User: "monitor", AuthProtocol: "sha", AuthPassphrase: "authsecret"},
	})
	s.Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, "/api/snmp/probe", models.ProbeRequest{Target: "10.9.9.9", Version: "3"})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(s.decode(rec)["error"], "invalid SNMPv3 settings")

	rec = s.do(http.MethodPost, "/api/snmp/probe", models.ProbeRequest{
		Target:  "10.9.9.9",
		Version: "3",
		V3:      &models.SNMPv3{User: "monitor", PrivProtocol: "aes", PrivPassphrase: "privsecret"},
	})
	s.Equal(http.StatusBadRequest, rec.Code)
}
