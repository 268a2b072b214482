// Package config loads mibhub settings from a config file, MIBHUB_* environment
// variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"mibhub/pkg/models"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment override, e.g. MIBHUB_SERVER_ADDR.
const EnvPrefix = "MIBHUB"

// Config is the full service configuration.
type Config struct {
	Debug    bool           `mapstructure:"debug"`
	Server   ServerConfig   `mapstructure:"server"`
	Backend  BackendConfig  `mapstructure:"backend"`
	Deploy   DeployConfig   `mapstructure:"deploy"`
	Logs     LogsConfig     `mapstructure:"logs"`
	MIB      MIBConfig      `mapstructure:"mib"`
	SNMP     SNMPConfig     `mapstructure:"snmp"`
	Registry RegistryConfig `mapstructure:"registry"`
	Consul   ConsulConfig   `mapstructure:"consul"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type BackendConfig struct {
	URL            string        `mapstructure:"url"`
	RetryMax       int           `mapstructure:"retry_max"`
	RetryWaitMin   time.Duration `mapstructure:"retry_wait_min"`
	RetryWaitMax   time.Duration `mapstructure:"retry_wait_max"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	HealthInterval time.Duration `mapstructure:"health_interval"`
}

type DeployConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
	Workers      int           `mapstructure:"workers"`
	History      int           `mapstructure:"history"`
}

type LogsConfig struct {
	Dir           string        `mapstructure:"dir"`
	BufferSize    int           `mapstructure:"buffer_size"`
	RemoteURL     string        `mapstructure:"remote_url"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
}

type MIBConfig struct {
	Dir string `mapstructure:"dir"`
	DB  string `mapstructure:"db"`
}

type SNMPConfig struct {
	Community string        `mapstructure:"community"`
	Version   string        `mapstructure:"version"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Retries   int           `mapstructure:"retries"`
	V3        models.SNMPv3 `mapstructure:"v3"`
}

type RegistryConfig struct {
	GroupsFile string `mapstructure:"groups_file"`
}

type ConsulConfig struct {
	Addr      string `mapstructure:"addr"`
	ServiceID string `mapstructure:"service_id"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("backend.url", "")
	v.SetDefault("backend.retry_max", 3)
	v.SetDefault("backend.retry_wait_min", time.Second)
	v.SetDefault("backend.retry_wait_max", 30*time.Second)
	v.SetDefault("backend.request_timeout", 30*time.Second)
	v.SetDefault("backend.health_interval", 15*time.Second)

	v.SetDefault("deploy.poll_interval", 2*time.Second)
	v.SetDefault("deploy.max_attempts", 60)
	v.SetDefault("deploy.workers", 4)
	v.SetDefault("deploy.history", 100)

	v.SetDefault("logs.dir", "logs")
	v.SetDefault("logs.buffer_size", 1000)
	v.SetDefault("logs.remote_url", "")
	v.SetDefault("logs.flush_interval", 30*time.Second)

	v.SetDefault("mib.dir", "data/mibs")
	v.SetDefault("mib.db", "data/mibhub.db")

	v.SetDefault("snmp.community", "public")
	v.SetDefault("snmp.version", "2c")
	v.SetDefault("snmp.timeout", 5*time.Second)
	v.SetDefault("snmp.retries", 1)
	v.SetDefault("snmp.v3.user", "")
	v.SetDefault("snmp.v3.auth_protocol", "")
	v.SetDefault("snmp.v3.auth_passphrase", "")
	v.SetDefault("snmp.v3.priv_protocol", "")
	v.SetDefault("snmp.v3.priv_passphrase", "")
	v.SetDefault("snmp.v3.context_name", "")

	v.SetDefault("registry.groups_file", "")

	v.SetDefault("consul.addr", "")
	v.SetDefault("consul.service_id", "mibhub")
}

// Bind enables environment overrides on v. BACKEND_URL is honoured as well as
// MIBHUB_BACKEND_URL.
func Bind(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v.BindEnv("backend.url", EnvPrefix+"_BACKEND_URL", "BACKEND_URL")
}

// ReadFile reads path, or mibhub.yml from the working directory when path is
// empty. A missing default file is not an error.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("mibhub")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Backend.URL = strings.TrimSpace(cfg.Backend.URL)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.Server.Addr == "" {
		result = multierror.Append(result, errors.New("server.addr must not be empty"))
	}
	if c.Backend.URL != "" {
		if err := validateHTTPURL(c.Backend.URL); err != nil {
			result = multierror.Append(result, fmt.Errorf("backend.url: %w", err))
		}
	}
	if c.Logs.RemoteURL != "" {
		if err := validateHTTPURL(c.Logs.RemoteURL); err != nil {
			result = multierror.Append(result, fmt.Errorf("logs.remote_url: %w", err))
		}
	}
	if c.Backend.RetryMax < 0 {
		result = multierror.Append(result, errors.New("backend.retry_max must not be negative"))
	}
	if c.Deploy.PollInterval <= 0 {
		result = multierror.Append(result, errors.New("deploy.poll_interval must be positive"))
	}
	if c.Deploy.MaxAttempts <= 0 {
		result = multierror.Append(result, errors.New("deploy.max_attempts must be positive"))
	}
	if c.Deploy.Workers <= 0 {
		result = multierror.Append(result, errors.New("deploy.workers must be positive"))
	}
	if c.Logs.BufferSize <= 0 {
		result = multierror.Append(result, errors.New("logs.buffer_size must be positive"))
	}
	if c.Logs.Dir == "" {
		result = multierror.Append(result, errors.New("logs.dir must not be empty"))
	}
	if c.MIB.Dir == "" || c.MIB.DB == "" {
		result = multierror.Append(result, errors.New("mib.dir and mib.db must not be empty"))
	}

	return result.ErrorOrNil()
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must start with http:// or https://, got %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}
