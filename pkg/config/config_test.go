package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("MissingFileUsesDefaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		// viper treats an explicitly named missing file as an error
		if err != nil {
			return
		}
		assert.Equal(t, DefaultPort, cfg.Server.Port)
	})

	t.Run("EmptyPathUsesDefaults", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, DefaultPort, cfg.Server.Port)
		assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
		assert.Equal(t, DefaultStoreType, cfg.Store.Type)
		assert.Equal(t, DefaultFSPath, cfg.Store.FS["path"])
	})

	t.Run("FileOverridesDefaults", func(t *testing.T) {
		path := writeConfigFile(t, `
logging:
  level: debug
  format: json
server:
  port: 61000
  serialize_users: true
store:
  type: memory
`)

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "DEBUG", cfg.Logging.Level)
		assert.Equal(t, "json", cfg.Logging.Format)
		assert.Equal(t, 61000, cfg.Server.Port)
		assert.True(t, cfg.Server.SerializeUsers)
		assert.Equal(t, "memory", cfg.Store.Type)
	})

	t.Run("InvalidStoreTypeFailsValidation", func(t *testing.T) {
		path := writeConfigFile(t, `
store:
  type: cassandra
`)

		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validation failed")
	})

	t.Run("MalformedYAMLFails", func(t *testing.T) {
		path := writeConfigFile(t, ":\n  - not yaml")

		_, err := Load(path)
		require.Error(t, err)
	})
}

func TestApplyDefaults(t *testing.T) {
	t.Run("FillsEverythingOnEmptyConfig", func(t *testing.T) {
		var cfg Config
		ApplyDefaults(&cfg)

		assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
		assert.Equal(t, DefaultLogFormat, cfg.Logging.Format)
		assert.Equal(t, DefaultLogOutput, cfg.Logging.Output)
		assert.Equal(t, DefaultPort, cfg.Server.Port)
		assert.Equal(t, DefaultIdleTimeout, cfg.Server.IdleTimeout)
		assert.Equal(t, DefaultWriteTimeout, cfg.Server.WriteTimeout)
		assert.Equal(t, DefaultShutdownTimeout, cfg.Server.ShutdownTimeout)
		assert.Equal(t, DefaultMetricsPort, cfg.Server.Metrics.Port)
		assert.False(t, cfg.Server.Metrics.Enabled)
		assert.Equal(t, DefaultStoreType, cfg.Store.Type)
	})

	t.Run("NormalizesLogLevelCase", func(t *testing.T) {
		cfg := Config{Logging: LoggingConfig{Level: "warn"}}
		ApplyDefaults(&cfg)
		assert.Equal(t, "WARN", cfg.Logging.Level)
	})

	t.Run("KeepsExplicitValues", func(t *testing.T) {
		cfg := Config{
			Server: ServerConfig{Port: 12345, ShutdownTimeout: time.Minute},
			Store:  StoreConfig{Type: "memory"},
		}
		ApplyDefaults(&cfg)

		assert.Equal(t, 12345, cfg.Server.Port)
		assert.Equal(t, time.Minute, cfg.Server.ShutdownTimeout)
		assert.Equal(t, "memory", cfg.Store.Type)
		// Non-fs stores get no fs section injected.
		assert.Nil(t, cfg.Store.FS)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		var cfg Config
		ApplyDefaults(&cfg)
		return &cfg
	}

	t.Run("DefaultsAreValid", func(t *testing.T) {
		require.NoError(t, Validate(valid()))
	})

	t.Run("RejectsBadPort", func(t *testing.T) {
		cfg := valid()
		cfg.Server.Port = 70000
		require.Error(t, Validate(cfg))
	})

	t.Run("RejectsBadLogFormat", func(t *testing.T) {
		cfg := valid()
		cfg.Logging.Format = "xml"
		require.Error(t, Validate(cfg))
	})

	t.Run("RejectsFSWithoutPath", func(t *testing.T) {
		cfg := valid()
		cfg.Store.FS = map[string]any{"path": ""}
		err := Validate(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "path is required")
	})

	t.Run("RejectsS3WithoutSection", func(t *testing.T) {
		cfg := valid()
		cfg.Store.Type = "s3"
		cfg.Store.S3 = nil
		require.Error(t, Validate(cfg))
	})
}
