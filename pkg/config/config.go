// Package config loads the collector's configuration from environment
// variables (and, optionally, a YAML file), following the env-var surface
// named in spec.md §6 under the CRASHMOVER_*, BREAKPAD_*, STATSD_* and
// bare operational prefixes.
//
// Configuration sources (highest precedence first):
//  1. Environment variables
//  2. Configuration file (YAML, optional)
//  3. Defaults applied by ApplyDefaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mozilla-services/antenna/internal/bytesize"
)

// Config is the collector's complete runtime configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Metrics   MetricsConfig   `mapstructure:"statsd" yaml:"statsd"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Breakpad  BreakpadConfig  `mapstructure:"breakpad" yaml:"breakpad"`
	Mover     CrashMoverConfig `mapstructure:"crashmover" yaml:"crashmover"`
	Storage   CrashStorageConfig `mapstructure:"crashmover_crashstorage" yaml:"crashstorage"`
	Publish   CrashPublishConfig `mapstructure:"crashmover_crashpublish" yaml:"crashpublish"`

	// HostID identifies this replica in logs and metrics (HOST_ID).
	HostID string `mapstructure:"host_id" yaml:"host_id"`
	// SentryDSN configures error reporting for the collector process
	// itself (SECRET_SENTRY_DSN); empty disables it.
	SentryDSN string `mapstructure:"secret_sentry_dsn" yaml:"-"`
}

// LoggingConfig controls the collector's own structured logging, per
// LOGGING_LEVEL.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`
	Format string `mapstructure:"format" validate:"required,oneof=text json color" yaml:"format"`
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// MetricsConfig configures the statsd-shaped metrics sink (§6 STATSD_*;
// see SPEC_FULL.md's Open Question resolution — the namespace is reused
// as the Prometheus metric namespace, host/port are accepted but only
// meaningful when a statsd exporter is wired in front of the registry).
type MetricsConfig struct {
	Host      string `mapstructure:"host" yaml:"host"`
	Port      int    `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
	Namespace string `mapstructure:"namespace" validate:"required" yaml:"namespace"`
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
}

// ServerConfig controls the HTTP listener and graceful shutdown, per §4.10.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required" yaml:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`
}

// BreakpadConfig is the collector's crash-ingestion policy, per
// BREAKPAD_* (§6), plus the BREAKPAD_MAX_ANNOTATION_SIZE supplement
// documented in SPEC_FULL.md.
type BreakpadConfig struct {
	DumpField         string            `mapstructure:"dump_field" validate:"required" yaml:"dump_field"`
	ThrottlerRules    string            `mapstructure:"throttler_rules" yaml:"throttler_rules"`
	ThrottlerProducts string            `mapstructure:"throttler_products" yaml:"throttler_products"`
	MaxCrashSize      bytesize.ByteSize `mapstructure:"max_crash_size" validate:"required" yaml:"max_crash_size"`
	MaxAnnotationSize bytesize.ByteSize `mapstructure:"max_annotation_size" validate:"required" yaml:"max_annotation_size"`
}

// CrashMoverConfig sizes the worker pool and hand-off queue, per §4.6/§5.
type CrashMoverConfig struct {
	ConcurrentCrashmovers int           `mapstructure:"concurrent_crashmovers" validate:"required,gt=0" yaml:"concurrent_crashmovers"`
	MaxQueueSize          int           `mapstructure:"max_queue_size" validate:"required,gt=0" yaml:"max_queue_size"`
	MaxRetries            int           `mapstructure:"max_retries" validate:"required,gt=0" yaml:"max_retries"`
	InitialBackoff        time.Duration `mapstructure:"initial_backoff" validate:"required,gt=0" yaml:"initial_backoff"`
	EnqueueTimeout        time.Duration `mapstructure:"enqueue_timeout" validate:"required,gt=0" yaml:"enqueue_timeout"`
}

// CrashStorageConfig selects and configures the Storage Adapter, per
// CRASHMOVER_CRASHSTORAGE_*.
type CrashStorageConfig struct {
	Class           string `mapstructure:"class" validate:"required,oneof=s3 gcs fs noop" yaml:"class"`
	BucketName      string `mapstructure:"bucket_name" yaml:"bucket_name"`
	EndpointURL     string `mapstructure:"endpoint_url" yaml:"endpoint_url"`
	Region          string `mapstructure:"region" yaml:"region"`
	AccessKey       string `mapstructure:"access_key" yaml:"-"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"-"`
	RootDir         string `mapstructure:"root_dir" yaml:"root_dir"`
	VerifyKeyPrefix string `mapstructure:"verify_key_prefix" yaml:"verify_key_prefix"`
}

// CrashPublishConfig selects and configures the Publish Adapter, per
// CRASHMOVER_CRASHPUBLISH_*.
type CrashPublishConfig struct {
	Class            string        `mapstructure:"class" validate:"required,oneof=sqs pubsub noop" yaml:"class"`
	ProjectID        string        `mapstructure:"project_id" yaml:"project_id"`
	QueueName        string        `mapstructure:"queue_name" yaml:"queue_name"`
	TopicName        string        `mapstructure:"topic_name" yaml:"topic_name"`
	SubscriptionName string        `mapstructure:"subscription_name" yaml:"subscription_name"`
	Region           string        `mapstructure:"region" yaml:"region"`
	EndpointURL      string        `mapstructure:"endpoint_url" yaml:"endpoint_url"`
	Timeout          time.Duration `mapstructure:"timeout" validate:"required,gt=0" yaml:"timeout"`
}

// Load loads configuration from environment variables, an optional YAML
// file, and defaults, in that order of precedence, then validates the
// result.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	if _, err := readConfigFile(v); err != nil {
		return nil, err
	}

	cfg := GetDefaultConfig()
	if err := v.Unmarshal(cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// MustLoad loads configuration or fails the process with a descriptive
// error, per §7 exit code 4 (fatal configuration error).
func MustLoad(configPath string) (*Config, error) {
	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path as YAML, for operators bootstrapping a
// config file from the current environment.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// setupViper wires environment variable binding (bare prefixes, since
// §6's option names are already prefix-grouped rather than nested under
// one umbrella prefix) and optional config-file discovery.
func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvVars(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// bindEnvVars binds each mapstructure key to its §6 environment variable
// name explicitly; the option names don't share a single common prefix
// with their struct path, so automatic env / key-replacer alone can't
// derive them.
func bindEnvVars(v *viper.Viper) {
	binds := map[string]string{
		"logging.level":                                 "LOGGING_LEVEL",
		"logging.format":                                 "LOGGING_FORMAT",
		"logging.output":                                 "LOGGING_OUTPUT",
		"statsd.host":                                    "STATSD_HOST",
		"statsd.port":                                    "STATSD_PORT",
		"statsd.namespace":                                "STATSD_NAMESPACE",
		"statsd.enabled":                                  "STATSD_ENABLED",
		"server.addr":                                     "SERVER_ADDR",
		"server.shutdown_timeout":                         "SERVER_SHUTDOWN_TIMEOUT",
		"breakpad.dump_field":                             "BREAKPAD_DUMP_FIELD",
		"breakpad.throttler_rules":                        "BREAKPAD_THROTTLER_RULES",
		"breakpad.throttler_products":                     "BREAKPAD_THROTTLER_PRODUCTS",
		"breakpad.max_crash_size":                         "BREAKPAD_MAX_CRASH_SIZE",
		"breakpad.max_annotation_size":                    "BREAKPAD_MAX_ANNOTATION_SIZE",
		"crashmover.concurrent_crashmovers":                "CRASHMOVER_CONCURRENT_CRASHMOVERS",
		"crashmover.max_queue_size":                        "CRASHMOVER_MAX_QUEUE_SIZE",
		"crashmover.max_retries":                           "CRASHMOVER_MAX_RETRIES",
		"crashmover.initial_backoff":                       "CRASHMOVER_INITIAL_BACKOFF",
		"crashmover.enqueue_timeout":                       "CRASHMOVER_ENQUEUE_TIMEOUT",
		"crashmover_crashstorage.class":                    "CRASHMOVER_CRASHSTORAGE_CLASS",
		"crashmover_crashstorage.bucket_name":              "CRASHMOVER_CRASHSTORAGE_BUCKET_NAME",
		"crashmover_crashstorage.endpoint_url":             "CRASHMOVER_CRASHSTORAGE_ENDPOINT_URL",
		"crashmover_crashstorage.region":                   "CRASHMOVER_CRASHSTORAGE_REGION",
		"crashmover_crashstorage.access_key":               "CRASHMOVER_CRASHSTORAGE_ACCESS_KEY",
		"crashmover_crashstorage.secret_access_key":        "CRASHMOVER_CRASHSTORAGE_SECRET_ACCESS_KEY",
		"crashmover_crashstorage.root_dir":                 "CRASHMOVER_CRASHSTORAGE_ROOT_DIR",
		"crashmover_crashstorage.verify_key_prefix":        "CRASHMOVER_CRASHSTORAGE_VERIFY_KEY_PREFIX",
		"crashmover_crashpublish.class":                    "CRASHMOVER_CRASHPUBLISH_CLASS",
		"crashmover_crashpublish.project_id":               "CRASHMOVER_CRASHPUBLISH_PROJECT_ID",
		"crashmover_crashpublish.queue_name":                "CRASHMOVER_CRASHPUBLISH_QUEUE_NAME",
		"crashmover_crashpublish.topic_name":                "CRASHMOVER_CRASHPUBLISH_TOPIC_NAME",
		"crashmover_crashpublish.subscription_name":         "CRASHMOVER_CRASHPUBLISH_SUBSCRIPTION_NAME",
		"crashmover_crashpublish.region":                    "CRASHMOVER_CRASHPUBLISH_REGION",
		"crashmover_crashpublish.endpoint_url":              "CRASHMOVER_CRASHPUBLISH_ENDPOINT_URL",
		"crashmover_crashpublish.timeout":                   "CRASHMOVER_CRASHPUBLISH_TIMEOUT",
		"host_id":                                          "HOST_ID",
		"secret_sentry_dsn":                                "SECRET_SENTRY_DSN",
	}
	for key, env := range binds {
		_ = v.BindEnv(key, env)
	}
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// configDecodeHooks composes the custom mapstructure decode hooks: byte
// sizes (BREAKPAD_MAX_CRASH_SIZE and friends) and time.Duration.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return bytesize.ParseByteSize(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "antenna")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "antenna")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the
// default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}
