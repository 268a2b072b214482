// Package discovery registers the API with a Consul agent.
package discovery

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"mibhub/pkg/log"

	consul "github.com/hashicorp/consul/api"
)

const (
	// DefaultServiceID is used when no service id is configured.
	DefaultServiceID = "mibhub"

	checkInterval   = "10s"
	checkTimeout    = "5s"
	deregisterAfter = "1m"
)

// Registrar registers and deregisters one service instance.
type Registrar struct {
	client    *consul.Client
	serviceID string
}

// NewRegistrar creates a registrar talking to the Consul agent at addr.
func NewRegistrar(addr, serviceID string) (*Registrar, error) {
	if serviceID == "" {
		serviceID = DefaultServiceID
	}

	config := consul.DefaultConfig()
	config.Address = addr
	client, err := consul.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("create consul client: %w", err)
	}

	return &Registrar{client: client, serviceID: serviceID}, nil
}

// Register announces the API listening on listenAddr with an HTTP check on /healthz.
func (r *Registrar) Register(listenAddr string) error {
	host, portStr, err := net.SplitHostPort(listenAddr)
	if err != nil {
		return fmt.Errorf("parse listen address: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("parse listen port: %w", err)
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = advertiseHost()
	}

	registration := &consul.AgentServiceRegistration{
		ID:      r.serviceID,
		Name:    DefaultServiceID,
		Port:    port,
		Address: host,
		Check: &consul.AgentServiceCheck{
			HTTP:                           "http://" + net.JoinHostPort(host, portStr) + "/healthz",
			Interval:                       checkInterval,
			Timeout:                        checkTimeout,
			DeregisterCriticalServiceAfter: deregisterAfter,
		},
		Tags: []string{"snmp", "mib", "http", "api"},
	}

	if err := r.client.Agent().ServiceRegister(registration); err != nil {
		return fmt.Errorf("register service: %w", err)
	}

	log.Info().
		Str("service_id", r.serviceID).
		Str("address", host).
		Int("port", port).
		Msg("Registered with Consul")
	return nil
}

// Deregister removes the service instance.
func (r *Registrar) Deregister() error {
	if err := r.client.Agent().ServiceDeregister(r.serviceID); err != nil {
		return fmt.Errorf("deregister service: %w", err)
	}
	log.Info().Str("service_id", r.serviceID).Msg("Deregistered from Consul")
	return nil
}

// advertiseHost picks the address other nodes should use to reach this one.
func advertiseHost() string {
	if ip := os.Getenv("MIBHUB_ADVERTISE_ADDR"); ip != "" {
		return ip
	}

	addrs, err := net.InterfaceAddrs()
	if err == nil {
		for _, addr := range addrs {
			if ipNet, ok := addr.(*net.IPNet); ok && !ipNet.IP.IsLoopback() && ipNet.IP.To4() != nil {
				return ipNet.IP.String()
			}
		}
	}

	if hostname, err := os.Hostname(); err == nil {
		return hostname
	}
	return "127.0.0.1"
}
