package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/relayhub/gateway/pkg/activity"
	"github.com/relayhub/gateway/pkg/budget"
	"github.com/relayhub/gateway/pkg/cache"
	"github.com/relayhub/gateway/pkg/classifier"
	"github.com/relayhub/gateway/pkg/cli"
	"github.com/relayhub/gateway/pkg/config"
	"github.com/relayhub/gateway/pkg/pipeline"
	"github.com/relayhub/gateway/pkg/providerfactory"
	"github.com/relayhub/gateway/pkg/providers"
	"github.com/relayhub/gateway/pkg/router"
	"github.com/relayhub/gateway/pkg/server"
	"github.com/relayhub/gateway/pkg/store"
	"github.com/relayhub/gateway/pkg/store/storage"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Relayhub proxy server",
	Long: `Start the Relayhub proxy server with the specified configuration.

The server listens on the configured address and proxies chat-completion
requests through the classifier, router, budget guard, and cache before
dispatching to the chosen provider.

Examples:
  # Start with default config
  relayhub run

  # Start with custom config
  relayhub run --config /etc/relayhub/config.yaml

  # Override listen address
  relayhub run --listen 0.0.0.0:8080

  # Validate config without starting server
  relayhub run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Proxy.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	// Initialize logging based on config
	var logLevel slog.Level
	switch cfg.Telemetry.Logging.Level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	// Print startup banner
	printBanner(cfg)

	// Create provider manager
	slog.Info("initializing provider manager")
	manager := providerfactory.NewManager()
	defer manager.Close()

	providerConfigs := make([]providers.ProviderConfig, 0, len(cfg.Providers))
	for name, providerCfg := range cfg.Providers {
		pc := providers.ProviderConfig{
			Name:       name,
			Type:       name,
			BaseURL:    providerCfg.BaseURL,
			APIKey:     providerCfg.APIKey,
			Timeout:    providerCfg.Timeout,
			MaxRetries: providerCfg.MaxRetries,
		}
		providerConfigs = append(providerConfigs, pc)
	}

	if len(providerConfigs) > 0 {
		if err := manager.LoadFromConfig(providerConfigs); err != nil {
			slog.Warn("some providers failed to initialize", "error", err)
		}
	} else {
		slog.Warn("no providers configured")
	}

	fmt.Printf("✓ Providers initialized (%d providers)\n", manager.ProviderCount())

	// Open the audit-trail store. The evidence config section's SQLite
	// settings back this store now that evidence recording has been
	// replaced by the pipeline's own request/step/task tables.
	gatewayStore, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer gatewayStore.Close()

	if err := seedCatalog(gatewayStore, cfg); err != nil {
		slog.Warn("failed to seed provider/model catalog from config", "error", err)
	}

	registry := &providerRegistryAdapter{manager: manager}
	pl := &pipeline.Pipeline{
		Store:      gatewayStore,
		Classifier: classifier.NewHeuristic(),
		Router:     router.New(gatewayStore, router.Config{}),
		Cache:      cache.New(),
		Budget:     budget.New(gatewayStore),
		Providers:  registry,
		Activity:   activity.New(),
		Estimator:  pipeline.NewCatalogEstimator(gatewayStore),
	}
	defer pl.Cache.Close()

	fmt.Println("✓ Pipeline assembled")

	// Create HTTP server
	slog.Info("creating HTTP server")
	srv := server.NewServer(&cfg.Proxy, &cfg.Security, manager, pl)

	// Start server in background goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting HTTP server",
			"address", cfg.Proxy.ListenAddress,
			"tls_enabled", cfg.Security.TLS.Enabled,
		)
		if err := srv.Start(ctx); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	// Wait for server to be ready
	if err := waitForServerReady(cfg.Proxy.ListenAddress, 5*time.Second); err != nil {
		return fmt.Errorf("server failed to start: %w", err)
	}

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Proxy.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Proxy.ListenAddress)
	fmt.Printf("✓ Metrics endpoint: http://%s/metrics\n", cfg.Proxy.ListenAddress)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for shutdown signal or server error
	sigChan := cli.WaitForShutdown()

	select {
	case err := <-errChan:
		return cli.NewCommandError("run", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down gracefully...\n", sig)
		cancel()

		// Graceful shutdown with timeout
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Proxy.ShutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
			return cli.NewCommandError("run", err)
		}

		fmt.Println("✓ Server stopped")
		return nil
	}
}

// openStore opens the gateway's audit-trail store. SQLite is used whenever
// the evidence backend names it (the evidence schema is gone, but its
// connection settings are a reasonable home for ours); everything else
// falls back to the in-memory store, intended for local/dev runs only.
func openStore(cfg *config.Config) (store.Store, error) {
	if cfg.Evidence.Enabled && cfg.Evidence.Backend == "sqlite" {
		sqliteCfg := &storage.SQLiteConfig{
			Path:         cfg.Evidence.SQLite.Path,
			MaxOpenConns: cfg.Evidence.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.Evidence.SQLite.MaxIdleConns,
			WALMode:      cfg.Evidence.SQLite.WALMode,
			BusyTimeout:  cfg.Evidence.SQLite.BusyTimeout,
		}
		s, err := storage.NewSQLiteStorage(sqliteCfg)
		if err != nil {
			return nil, err
		}
		fmt.Printf("✓ Store opened (sqlite: %s)\n", sqliteCfg.Path)
		return s, nil
	}

	fmt.Println("✓ Store opened (in-memory)")
	return storage.NewMemoryStorage(), nil
}

// seedCatalog registers every configured provider (enabled, by virtue of
// being present in cfg.Providers) with the store so the router can resolve
// against it on the first request. Model rows aren't derivable from
// ProviderConfig alone and are left to the provider-catalog API.
func seedCatalog(s store.Store, cfg *config.Config) error {
	ctx := context.Background()
	for name := range cfg.Providers {
		if err := s.UpsertProvider(ctx, &store.ProviderConfig{ID: name, Name: name, Enabled: true}); err != nil {
			return err
		}
	}
	return nil
}

// providerRegistryAdapter satisfies pipeline.ProviderRegistry over a
// providerfactory.Manager, which looks providers up by name and returns an
// error rather than an ok-bool.
type providerRegistryAdapter struct {
	manager *providerfactory.Manager
}

func (a *providerRegistryAdapter) Get(providerID string) (providers.Provider, bool) {
	p, err := a.manager.GetProvider(providerID)
	if err != nil {
		return nil, false
	}
	return p, true
}

func printBanner(cfg *config.Config) {
	fmt.Printf("relayhub v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	providerCount := len(cfg.Providers)
	if providerCount > 0 {
		slog.Debug("providers configured", "count", providerCount)
	}
}

func waitForServerReady(address string, timeout time.Duration) error {
	// Simple delay for MVP - in production this should poll the health endpoint
	time.Sleep(100 * time.Millisecond)
	return nil
}
