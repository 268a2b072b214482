// Package server exposes the mibhub HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mibhub/pkg/backend"
	"mibhub/pkg/deploy"
	"mibhub/pkg/health"
	"mibhub/pkg/log"
	"mibhub/pkg/logstore"
	"mibhub/pkg/mibstore"
	"mibhub/pkg/registry"
	"mibhub/pkg/snmp"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const defaultShutdownTimeout = 10 * time.Second

// Deps are the components served by the API. Flusher may be nil.
type Deps struct {
	Registry *registry.Registry
	Backend  *backend.Client
	Watcher  *backend.Watcher
	Deployer *deploy.Orchestrator
	Prober   *snmp.Prober
	Health   *health.Collector
	Logs     *logstore.Store
	Recent   *log.Buffer
	Flusher  *logstore.Flusher
	MIBs     *mibstore.Store
}

// Server is the API server.
type Server struct {
	Deps
	echo            *echo.Echo
	version         string
	shutdownTimeout time.Duration
}

// NewServer creates a server with routes registered.
func NewServer(deps Deps, version string, shutdownTimeout time.Duration) *Server {
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}
	if deps.Recent == nil {
		deps.Recent = log.Recent
	}

	s := &Server{
		Deps:            deps,
		echo:            echo.New(),
		version:         version,
		shutdownTimeout: shutdownTimeout,
	}
	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start(addr string) error {
	go func() {
		log.Info().
			Str("addr", addr).
			Str("version", s.version).
			Str("backend", s.Backend.BaseURL()).
			Msg("Starting mibhub API server")

		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server startup failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	return s.Shutdown()
}

// Shutdown stops accepting requests and flushes pending client logs.
func (s *Server) Shutdown() error {
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.echo.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
		return err
	}

	if s.Flusher != nil {
		if err := s.Flusher.Stop(ctx); err != nil {
			log.Warn().Err(err).Int("pending", s.Flusher.Pending()).Msg("Final log flush failed")
		}
	}

	log.Info().Msg("Server gracefully stopped")
	return nil
}

func (s *Server) setupRoutes() {
	s.echo.HideBanner = true
	s.echo.HidePort = true

	s.echo.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} ${status} ${method} ${uri} (${latency_human})\n",
	}))
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.CORS())
	s.echo.Use(middleware.RequestID())

	s.echo.GET("/healthz", s.liveness)

	api := s.echo.Group("/api")
	api.GET("/docs", s.serveSwaggerUI)
	api.GET("/docs/swagger.yml", s.serveSwaggerSpec)

	for _, resource := range proxiedResources {
		api.Any("/"+resource, s.proxy)
		api.Any("/"+resource+"/*", s.proxy)
	}

	api.POST("/deploy/rules", s.deployRules)
	api.POST("/deploy/monitoring", s.deployMonitoring)
	api.GET("/deployments", s.listDeployments)
	api.GET("/deployments/:id", s.getDeployment)

	api.POST("/hosts/discover", s.discoverHost)
	api.GET("/hosts", s.listHosts)
	api.GET("/hosts/:id", s.getHost)
	api.DELETE("/hosts/:id", s.deleteHost)
	api.PUT("/hosts/:id/components/:component", s.updateComponent)

	api.GET("/host-groups", s.listGroups)
	api.POST("/host-groups", s.createGroup)
	api.GET("/host-groups/:id", s.getGroup)
	api.DELETE("/host-groups/:id", s.deleteGroup)

	api.POST("/snmp/detect", s.detectBrand)
	api.POST("/snmp/probe", s.probeDevice)

	api.GET("/system/health", s.systemHealth)

	api.POST("/logs", s.appendLog)
	api.GET("/logs", s.readLogs)
	api.GET("/logs/recent", s.recentLogs)

	api.POST("/mib-files/upload", s.uploadMIB)
	api.GET("/mib-files", s.listMIBs)
	api.GET("/mib-files/:id", s.getMIB)
	api.GET("/mib-files/:id/download", s.downloadMIB)
	api.DELETE("/mib-files/:id", s.deleteMIB)
}
