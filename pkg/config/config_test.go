package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := GetDefaultConfig()
	ApplyDefaults(cfg)
	assert.NoError(t, Validate(cfg))
}

func TestLoadWithNoFileUsesEnvOverDefaults(t *testing.T) {
	t.Setenv("LOGGING_LEVEL", "debug")
	t.Setenv("CRASHMOVER_CONCURRENT_CRASHMOVERS", "16")
	t.Setenv("CRASHMOVER_CRASHSTORAGE_CLASS", "fs")
	t.Setenv("CRASHMOVER_CRASHSTORAGE_ROOT_DIR", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, 16, cfg.Mover.ConcurrentCrashmovers)
	assert.Equal(t, "fs", cfg.Storage.Class)
}

func TestLoadParsesByteSizeAndDuration(t *testing.T) {
	t.Setenv("BREAKPAD_MAX_CRASH_SIZE", "5Mi")
	t.Setenv("CRASHMOVER_CRASHPUBLISH_TIMEOUT", "2s")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.EqualValues(t, 5*1024*1024, cfg.Breakpad.MaxCrashSize)
	assert.Equal(t, "2s", cfg.Publish.Timeout.String())
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := GetDefaultConfig()
	ApplyDefaults(cfg)
	cfg.Logging.Level = "INVALID"
	assert.Error(t, Validate(cfg))
}

func TestValidateRequiresBucketForS3(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Storage.Class = "s3"
	ApplyDefaults(cfg)
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket_name")
}

func TestSaveConfigRoundTrips(t *testing.T) {
	cfg := GetDefaultConfig()
	ApplyDefaults(cfg)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, SaveConfig(cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "logging:")
}

func TestDefaultConfigPathHonorsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdgtest")
	assert.Equal(t, "/tmp/xdgtest/antenna/config.yaml", GetDefaultConfigPath())
}
