package config

import (
	"strings"
	"time"

	"github.com/mozilla-services/antenna/internal/bytesize"
)

// GetDefaultConfig returns a Config populated with the collector's
// defaults; Load unmarshals environment/file values over this base.
func GetDefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			Namespace: "antenna",
			Enabled:   false,
		},
		Server: ServerConfig{
			Addr:            ":8000",
			ShutdownTimeout: 30 * time.Second,
		},
		Breakpad: BreakpadConfig{
			DumpField:         "upload_file_minidump",
			MaxCrashSize:      20 * bytesize.MiB,
			MaxAnnotationSize: 1 * bytesize.MiB,
		},
		Mover: CrashMoverConfig{
			ConcurrentCrashmovers: 8,
			MaxQueueSize:          32,
			MaxRetries:            5,
			InitialBackoff:        100 * time.Millisecond,
			EnqueueTimeout:        5 * time.Second,
		},
		Storage: CrashStorageConfig{
			Class:           "noop",
			VerifyKeyPrefix: "test/",
		},
		Publish: CrashPublishConfig{
			Class:   "noop",
			Timeout: 5 * time.Second,
		},
	}
}

// ApplyDefaults fills in any zero-valued fields left after Load's
// Unmarshal with the values from GetDefaultConfig, normalizing a couple
// of string fields along the way.
func ApplyDefaults(cfg *Config) {
	d := GetDefaultConfig()

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = d.Logging.Level
	}
	cfg.Logging.Level = strings.ToUpper(cfg.Logging.Level)
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = d.Logging.Format
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = d.Logging.Output
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = d.Metrics.Namespace
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = d.Server.Addr
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = d.Server.ShutdownTimeout
	}

	if cfg.Breakpad.DumpField == "" {
		cfg.Breakpad.DumpField = d.Breakpad.DumpField
	}
	if cfg.Breakpad.MaxCrashSize == 0 {
		cfg.Breakpad.MaxCrashSize = d.Breakpad.MaxCrashSize
	}
	if cfg.Breakpad.MaxAnnotationSize == 0 {
		cfg.Breakpad.MaxAnnotationSize = d.Breakpad.MaxAnnotationSize
	}

	if cfg.Mover.ConcurrentCrashmovers == 0 {
		cfg.Mover.ConcurrentCrashmovers = d.Mover.ConcurrentCrashmovers
	}
	if cfg.Mover.MaxQueueSize == 0 {
		cfg.Mover.MaxQueueSize = d.Mover.MaxQueueSize
	}
	if cfg.Mover.MaxRetries == 0 {
		cfg.Mover.MaxRetries = d.Mover.MaxRetries
	}
	if cfg.Mover.InitialBackoff == 0 {
		cfg.Mover.InitialBackoff = d.Mover.InitialBackoff
	}
	if cfg.Mover.EnqueueTimeout == 0 {
		cfg.Mover.EnqueueTimeout = d.Mover.EnqueueTimeout
	}

	if cfg.Storage.Class == "" {
		cfg.Storage.Class = d.Storage.Class
	}
	if cfg.Publish.Class == "" {
		cfg.Publish.Class = d.Publish.Class
	}
	if cfg.Publish.Timeout == 0 {
		cfg.Publish.Timeout = d.Publish.Timeout
	}
}
