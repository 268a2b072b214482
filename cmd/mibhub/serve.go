package main

import (
	"os"

	"mibhub/pkg/backend"
	"mibhub/pkg/config"
	"mibhub/pkg/deploy"
	"mibhub/pkg/discovery"
	"mibhub/pkg/health"
	"mibhub/pkg/log"
	"mibhub/pkg/logstore"
	"mibhub/pkg/mibstore"
	"mibhub/pkg/registry"
	"mibhub/pkg/server"
	"mibhub/pkg/snmp"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const dataDirPerm = 0750

func newServeCmd(v *viper.Viper, version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		RunE: func(*cobra.Command, []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return serve(cfg, version)
		},
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().String("backend-url", "", "backend base URL (BACKEND_URL)")
	_ = v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = v.BindPFlag("backend.url", cmd.Flags().Lookup("backend-url"))
	return cmd
}

func serve(cfg *config.Config, version string) error {
	log.Setup(cfg.Logs.BufferSize, cfg.Debug)

	if err := os.MkdirAll(cfg.Logs.Dir, dataDirPerm); err != nil {
		log.Fatal().Err(err).Str("logs_dir", cfg.Logs.Dir).Msg("Failed to create logs directory")
	}

	client := backend.NewClient(backend.Options{
		URL:            cfg.Backend.URL,
		RetryMax:       cfg.Backend.RetryMax,
		RetryWaitMin:   cfg.Backend.RetryWaitMin,
		RetryWaitMax:   cfg.Backend.RetryWaitMax,
		RequestTimeout: cfg.Backend.RequestTimeout,
	})
	if !client.Configured() {
		log.Warn().Msg("BACKEND_URL is not set, proxy and deployment endpoints will answer 503")
	}

	watcher := backend.NewWatcher(client, cfg.Backend.HealthInterval, cfg.Backend.RequestTimeout)
	watcher.Start()
	defer watcher.Stop()

	reg := registry.New()
	if cfg.Registry.GroupsFile != "" {
		loaded, err := reg.LoadGroups(cfg.Registry.GroupsFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.Registry.GroupsFile).Msg("Failed to load host groups")
		}
		log.Info().Int("groups", loaded).Msg("Host groups loaded")
	}

	mibs, err := mibstore.NewStore(cfg.MIB.DB, cfg.MIB.Dir)
	if err != nil {
		log.Fatal().Err(err).Str("db", cfg.MIB.DB).Msg("Failed to open MIB store")
	}
	defer func() { _ = mibs.Close() }()

	logs, err := logstore.New(cfg.Logs.Dir, log.Recent)
	if err != nil {
		log.Fatal().Err(err).Str("logs_dir", cfg.Logs.Dir).Msg("Failed to open log store")
	}

	var flusher *logstore.Flusher
	if cfg.Logs.RemoteURL != "" {
		flusher = logstore.NewFlusher(cfg.Logs.RemoteURL, cfg.Logs.FlushInterval, cfg.Logs.BufferSize)
		flusher.Start()
	}

	srv := server.NewServer(server.Deps{
		Registry: reg,
		Backend:  client,
		Watcher:  watcher,
		Deployer: deploy.NewOrchestrator(client, reg, deploy.Options{
			PollInterval: cfg.Deploy.PollInterval,
			MaxAttempts:  cfg.Deploy.MaxAttempts,
			Workers:      cfg.Deploy.Workers,
			History:      cfg.Deploy.History,
		}),
		Prober: snmp.NewProber(snmp.Config{
			Community: cfg.SNMP.Community,
			Version:   cfg.SNMP.Version,
			Timeout:   cfg.SNMP.Timeout,
			Retries:   cfg.SNMP.Retries,
			V3:        cfg.SNMP.V3,
		}),
		Health: health.NewCollector(cfg.MIB.Dir,
			health.BackendCheck(watcher.Status),
			health.PingCheck("mibstore", mibs.Ping),
		),
		Logs:    logs,
		Recent:  log.Recent,
		Flusher: flusher,
		MIBs:    mibs,
	}, version, cfg.Server.ShutdownTimeout)

	if cfg.Consul.Addr != "" {
		registrar, err := discovery.NewRegistrar(cfg.Consul.Addr, cfg.Consul.ServiceID)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Consul client")
		}
		if err := registrar.Register(cfg.Server.Addr); err != nil {
			log.Warn().Err(err).Str("consul", cfg.Consul.Addr).Msg("Consul registration failed")
		} else {
			defer func() {
				if err := registrar.Deregister(); err != nil {
					log.Warn().Err(err).Msg("Consul deregistration failed")
				}
			}()
		}
	}

	return srv.Start(cfg.Server.Addr)
}
