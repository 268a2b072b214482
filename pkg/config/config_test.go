package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite
	v *viper.Viper
}

func (s *ConfigTestSuite) SetupTest() {
	s.v = viper.New()
	SetDefaults(s.v)
	s.Require().NoError(Bind(s.v))
}

func (s *ConfigTestSuite) TestDefaults() {
	cfg, err := Load(s.v)
	s.Require().NoError(err)

	s.Equal(":8080", cfg.Server.Addr)
	s.Equal(2*time.Second, cfg.Deploy.PollInterval)
	s.Equal(60, cfg.Deploy.MaxAttempts)
	s.Equal(1000, cfg.Logs.BufferSize)
	s.Equal("public", cfg.SNMP.Community)
	s.Empty(cfg.Backend.URL)
}

func (s *ConfigTestSuite) TestBackendURLFromEnv() {
	s.T().Setenv("BACKEND_URL", "http://backend:9000")
	cfg, err := Load(s.v)
	s.Require().NoError(err)
	s.Equal("http://backend:9000", cfg.Backend.URL)
}

func (s *ConfigTestSuite) TestPrefixedEnv() {
	s.T().Setenv("MIBHUB_SERVER_ADDR", ":9090")
	s.T().Setenv("MIBHUB_DEPLOY_WORKERS", "8")
	s.T().Setenv("MIBHUB_DEPLOY_POLL_INTERVAL", "500ms")

	cfg, err := Load(s.v)
	s.Require().NoError(err)
	s.Equal(":9090", cfg.Server.Addr)
	s.Equal(8, cfg.Deploy.Workers)
	s.Equal(500*time.Millisecond, cfg.Deploy.PollInterval)
}

func (s *ConfigTestSuite) TestReadFile() {
	path := filepath.Join(s.T().TempDir(), "mibhub.yml")
	content := `
server:
  addr: ":7070"
backend:
  url: "https://backend.example.com"
  retry_max: 5
snmp:
  community: "monitor"
  v3:
    user: "readonly"
    auth_protocol: "sha256"
registry:
  groups_file: "groups.yml"
`
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600))
	s.Require().NoError(ReadFile(s.v, path))

	cfg, err := Load(s.v)
	s.Require().NoError(err)
	s.Equal(":7070", cfg.Server.Addr)
	s.Equal("https://backend.example.com", cfg.Backend.URL)
	s.Equal(5, cfg.Backend.RetryMax)
	s.Equal("monitor", cfg.SNMP.Community)
	s.Equal("readonly", cfg.SNMP.V3.User)
	s.Equal("sha256", cfg.SNMP.V3.AuthProtocol)
	s.Equal("groups.yml", cfg.Registry.GroupsFile)
}

func (s *ConfigTestSuite) TestReadFileMissingDefault() {
	s.T().Chdir(s.T().TempDir())
	s.NoError(ReadFile(s.v, ""))
}

func (s *ConfigTestSuite) TestReadFileExplicitMissing() {
	s.Error(ReadFile(s.v, filepath.Join(s.T().TempDir(), "absent.yml")))
}

func (s *ConfigTestSuite) TestValidationAggregates() {
	s.v.Set("backend.url", "ftp://backend")
	s.v.Set("deploy.workers", 0)
	s.v.Set("logs.remote_url", "collector")

	_, err := Load(s.v)
	s.Require().Error(err)
	s.Contains(err.Error(), "backend.url")
	s.Contains(err.Error(), "deploy.workers")
	s.Contains(err.Error(), "logs.remote_url")
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}
