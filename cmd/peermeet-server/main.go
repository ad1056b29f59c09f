// Package main provides the entry point for peermeet-server.
//
// peermeet-server is the rendezvous service process: peers that share
// a secret group key register themselves and discover each other
// through it.
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/peermeet/peermeet-go/internal/core/registry"
	"github.com/peermeet/peermeet-go/internal/fanout"
	"github.com/peermeet/peermeet-go/internal/infra/buildinfo"
	"github.com/peermeet/peermeet-go/internal/infra/confloader"
	"github.com/peermeet/peermeet-go/internal/infra/shutdown"
	"github.com/peermeet/peermeet-go/internal/infra/tlsroots"
	"github.com/peermeet/peermeet-go/internal/server/config"
	"github.com/peermeet/peermeet-go/internal/server/httpserver"
	"github.com/peermeet/peermeet-go/internal/server/httpserver/handler"
	"github.com/peermeet/peermeet-go/internal/storage/memory"
	"github.com/peermeet/peermeet-go/internal/storage/snapshot"
	"github.com/peermeet/peermeet-go/internal/telemetry/logger"
	"github.com/peermeet/peermeet-go/internal/telemetry/metric"
)

func main() {
	app := &cli.App{
		Name:    "peermeet-server",
		Usage:   "rendezvous service for peers sharing a secret group key",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML configuration file",
				EnvVars: []string{"PEERMEET_CONFIG"},
			},
		},
		Action: func(c *cli.Context) error {
			return run(c.String("config"))
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile string) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	log.Info("starting peermeet-server",
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"config", configFile)

	metrics := metric.NewRegistry()

	store := memory.New(
		memory.WithCapacity(cfg.Registry.Capacity),
		memory.WithMaxGroupAge(cfg.Registry.MaxGroupAge),
		memory.WithEvictionFunc(metrics.IncGroupEvicted),
	)

	hub := fanout.NewHub(fanout.WithDropFunc(func(id string) {
		metrics.IncObserverDropped()
		log.Warn("observer dropped", "observer_id", id)
	}))

	svc := registry.NewService(store,
		registry.WithNotifier(hub),
		registry.WithMetrics(metrics),
	)

	metrics.RegisterStatsFuncs(
		func() float64 { return float64(svc.GroupCount()) },
		func() float64 { observers, _ := hub.Stats(); return float64(observers) },
		func() float64 { _, keys := hub.Stats(); return float64(keys) },
	)

	snaps, err := initSnapshots(cfg, store, log)
	if err != nil {
		return fmt.Errorf("init snapshots: %w", err)
	}

	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Registry:  svc,
		Hub:       hub,
		Snapshots: snaps,
		Exporter:  store,
		Metrics:   metrics,
		Logger:    log,
		Address: &handler.AddressExtractor{
			TrustProxyHeader: cfg.Registry.TrustProxyHeader,
			Hop:              cfg.Registry.ProxyHop,
		},
		RatePerSecond: cfg.Limits.RatePerSecond,
		RateBurst:     cfg.Limits.Burst,
	})

	httpServer := httpserver.New(cfg.Server.HTTP.Addr, router,
		cfg.Server.HTTP.ReadTimeout, cfg.Server.HTTP.WriteTimeout)

	shutdownHandler := shutdown.NewHandler(shutdown.WithLogger(log))

	// Hooks run in reverse order: HTTP drains first, then the final
	// snapshot captures whatever the drained server left behind.
	if snaps != nil {
		shutdownHandler.OnShutdown("final snapshot", func(ctx context.Context) error {
			_, err := snaps.Create(store.Export())
			return err
		})

		stopPeriodic := startPeriodicSnapshots(cfg.Storage.Snapshot.Interval, snaps, store, log)
		shutdownHandler.OnShutdown("periodic snapshots", func(ctx context.Context) error {
			stopPeriodic()
			return nil
		})
	}

	shutdownHandler.OnShutdown("http server", func(ctx context.Context) error {
		return httpServer.Shutdown(ctx)
	})

	if configFile != "" {
		watcher, err := startConfigWatcher(configFile, log)
		if err != nil {
			log.Warn("config watcher disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown("config watcher", func(ctx context.Context) error {
				return watcher.Stop()
			})
		}
	}

	var certWatcher *tlsroots.Watcher
	if cfg.Server.HTTP.TLSCertFile != "" && cfg.Server.HTTP.TLSKeyFile != "" {
		certWatcher, err = tlsroots.NewWatcher(
			cfg.Server.HTTP.TLSCertFile, cfg.Server.HTTP.TLSKeyFile,
			tlsroots.WithWatcherLogger(log))
		if err != nil {
			return fmt.Errorf("load tls certificate: %w", err)
		}
		certWatcher.StartAsync()
		shutdownHandler.OnShutdown("certificate watcher", func(ctx context.Context) error {
			certWatcher.Stop()
			return nil
		})
	}

	go func() {
		log.Info("http server listening",
			"addr", cfg.Server.HTTP.Addr,
			"tls", certWatcher != nil)

		var err error
		if certWatcher != nil {
			err = httpServer.ListenAndServeTLSConfig(certWatcher.TLSConfig())
		} else {
			err = httpServer.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "error", err)
			shutdownHandler.Trigger()
		}
	}()

	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from file and environment.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	loader := confloader.NewLoader(opts...)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// initLogger initializes the structured logger and installs it as the
// process default.
func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, err
	}

	logger.SetDefault(log)
	return log, nil
}

// initSnapshots builds the snapshot manager and restores the newest
// readable snapshot into the store. Returns nil when persistence is
// disabled.
func initSnapshots(cfg *config.ServerConfig, store *memory.Store, log logger.Logger) (*snapshot.Manager, error) {
	snapCfg := cfg.Storage.Snapshot
	if snapCfg.Dir == "" {
		log.Info("snapshot persistence disabled")
		return nil, nil
	}

	mgrCfg := snapshot.Config{
		Dir:            snapCfg.Dir,
		RetentionCount: snapCfg.RetentionCount,
		RetentionDays:  snapCfg.RetentionDays,
	}
	if snapCfg.EncryptionKey != "" {
		key, err := hex.DecodeString(snapCfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("decode encryption key: %w", err)
		}
		cipher, err := snapshot.NewCipher(key)
		if err != nil {
			return nil, err
		}
		mgrCfg.Cipher = cipher
	}

	mgr, err := snapshot.NewManager(mgrCfg)
	if err != nil {
		return nil, err
	}

	groups, info, err := mgr.Load()
	switch {
	case errors.Is(err, snapshot.ErrNoSnapshots):
		log.Info("no snapshot to restore", "dir", snapCfg.Dir)
	case err != nil:
		return nil, fmt.Errorf("load snapshot: %w", err)
	default:
		restored := store.Import(groups)
		log.Info("snapshot restored",
			"id", info.ID,
			"groups_in_file", info.GroupCount,
			"groups_restored", restored)
	}

	return mgr, nil
}

// startPeriodicSnapshots saves the registry on the configured interval
// and prunes old files after each save. The returned function stops
// the loop. A zero interval disables the loop.
func startPeriodicSnapshots(interval time.Duration, mgr *snapshot.Manager, store *memory.Store, log logger.Logger) func() {
	if interval <= 0 {
		return func() {}
	}

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				info, err := mgr.Create(store.Export())
				if err != nil {
					log.Error("periodic snapshot failed", "error", err)
					continue
				}
				log.Debug("periodic snapshot written",
					"id", info.ID, "groups", info.GroupCount, "size", info.Size)

				if err := mgr.Prune(); err != nil {
					log.Warn("snapshot prune failed", "error", err)
				}
			case <-done:
				return
			}
		}
	}()

	return func() { close(done) }
}

// startConfigWatcher reloads the log level when the config file
// changes. Other settings require a restart.
func startConfigWatcher(configFile string, log logger.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}

	if err := watcher.Watch(configFile); err != nil {
		watcher.Stop()
		return nil, err
	}

	watcher.OnChange(func(path string) {
		loader := confloader.NewLoader(confloader.WithConfigFile(path))
		cfg := config.Default()
		if err := loader.Load(cfg); err != nil {
			log.Warn("config reload failed", "path", path, "error", err)
			return
		}

		if cfg.Log.Level != logger.GetLevel() {
			log.Info("log level changed", "level", cfg.Log.Level)
			logger.SetLevel(cfg.Log.Level)
		}
	})

	watcher.StartAsync()
	return watcher, nil
}
