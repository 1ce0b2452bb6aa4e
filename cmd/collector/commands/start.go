package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/mozilla-services/antenna/internal/logger"
	"github.com/mozilla-services/antenna/pkg/api"
	"github.com/mozilla-services/antenna/pkg/api/handlers"
	"github.com/mozilla-services/antenna/pkg/config"
	"github.com/mozilla-services/antenna/pkg/metrics"
	promMetrics "github.com/mozilla-services/antenna/pkg/metrics/prometheus"
	"github.com/mozilla-services/antenna/pkg/mover"
	"github.com/mozilla-services/antenna/pkg/parser"
	"github.com/mozilla-services/antenna/pkg/server"
	"github.com/mozilla-services/antenna/pkg/throttler"
	"github.com/mozilla-services/antenna/pkg/verifier"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the crash collector",
	Long: `Start the collector's HTTP listener and Crash-Mover worker pool.

Configuration is read from environment variables (CRASHMOVER_*,
BREAKPAD_*, STATSD_* and related) and, optionally, a YAML file via
--config.`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return fmt.Errorf("%w: %v", errConfig, err)
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return fmt.Errorf("%w: failed to initialize logger: %v", errConfig, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("collector starting", "version", Version, "commit", Commit)

	var metricsHandler *promMetrics.CollectorMetrics
	if cfg.Metrics.Enabled {
		metrics.InitRegistry(cfg.Metrics.Namespace)
		metricsHandler = promMetrics.New(cfg.Metrics.Namespace)
		logger.Info("metrics enabled", "namespace", cfg.Metrics.Namespace)
	} else {
		logger.Info("metrics disabled")
	}

	store, err := newStorageAdapter(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("%w: storage adapter: %v", errConfig, err)
	}
	pub, err := newPublishAdapter(ctx, cfg.Publish)
	if err != nil {
		return fmt.Errorf("%w: publish adapter: %v", errConfig, err)
	}
	logger.Info("adapters configured", "storage", store.Name(), "publish", pub.Name())

	if _, err := verifier.Verify(ctx, store, pub); err != nil {
		return fmt.Errorf("%w: %v", errVerification, err)
	}
	logger.Info("startup verification passed")

	rules, err := throttler.LoadRules(cfg.Breakpad.ThrottlerProducts)
	if err != nil {
		return fmt.Errorf("%w: throttler rules: %v", errConfig, err)
	}
	th := throttler.New(rules)

	moverCfg := mover.Config{
		Workers:         cfg.Mover.ConcurrentCrashmovers,
		QueueCapacity:   cfg.Mover.MaxQueueSize,
		MaxRetries:      cfg.Mover.MaxRetries,
		InitialBackoff:  cfg.Mover.InitialBackoff,
		PublishDeadline: cfg.Publish.Timeout,
		EnqueueTimeout:  cfg.Mover.EnqueueTimeout,
	}
	mv := mover.New(moverCfg, store, pub, metricsHandler)

	parserOpts := parser.Options{
		MaxAnnotationValueSize: int(cfg.Breakpad.MaxAnnotationSize),
		MaxBodySize:            int64(cfg.Breakpad.MaxCrashSize),
	}
	submit := handlers.NewSubmitHandler(th, mv, parserOpts, metricsHandler)
	versionInfo := handlers.VersionInfo{
		Commit:  Commit,
		Version: Version,
		Source:  "github.com/mozilla-services/antenna",
		Build:   Date,
	}
	if exe, err := os.Executable(); err == nil {
		if data, err := os.ReadFile(filepath.Join(filepath.Dir(exe), "version.json")); err == nil {
			if err := json.Unmarshal(data, &versionInfo); err != nil {
				logger.Warn("ignoring unreadable version.json", "error", err)
			}
		}
	}
	health := handlers.NewHealthHandler(store, pub, versionInfo)

	var metricsMux http.Handler
	if cfg.Metrics.Enabled {
		metricsMux = promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})
	}
	router := api.NewRouter(submit, health, metricsMux)

	srv := server.New(cfg.Server.Addr, router, mv, cfg.Server.ShutdownTimeout)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ctx) }()

	logger.Info("collector running", "addr", cfg.Server.Addr)

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received")
		cancel()
		if err := <-serveErr; err != nil {
			return err
		}
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	logger.Info("collector stopped")
	return nil
}
