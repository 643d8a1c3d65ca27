package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".s3cfg")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("virtual hosted", func(t *testing.T) {
		path := writeConfig(t, `[default]
bucket = my-bucket
host_base = s3.ap-south-1.amazonaws.com
host_bucket = %(bucket)s.s3.ap-south-1.amazonaws.com
bucket_location = ap-south-1
page_size = 25
exclude = index.html, robots.txt
timeout = 5s
`)
		cfg, used, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, path, used)

		assert.Equal(t, "my-bucket", cfg.Bucket)
		assert.Equal(t, "%(bucket)s.s3.ap-south-1.amazonaws.com", cfg.HostBucket, "template is kept raw")
		assert.Equal(t, "ap-south-1", cfg.Region)
		assert.Equal(t, 25, cfg.PageSize)
		assert.Equal(t, []string{"index.html", "robots.txt"}, cfg.Exclude)
		assert.Equal(t, 5*time.Second, cfg.Timeout)
		assert.True(t, cfg.VirtualHosted())
		assert.Equal(t, "https://my-bucket.s3.ap-south-1.amazonaws.com/", cfg.BucketURL())
	})

	t.Run("custom endpoint defaults to path style", func(t *testing.T) {
		path := writeConfig(t, `[default]
bucket = my-bucket
host_base = localhost:9000
use_https = False
backend = sdk
`)
		cfg, _, err := LoadConfig(path)
		require.NoError(t, err)

		assert.False(t, cfg.VirtualHosted())
		assert.Equal(t, BackendSDK, cfg.Backend)
		assert.Equal(t, "http://localhost:9000", cfg.GetEndpointURL())
		assert.Equal(t, "http://localhost:9000/my-bucket/", cfg.BucketURL())
		assert.Equal(t, DefaultExclude, cfg.Exclude)
		assert.Equal(t, DefaultPageSize, cfg.PageSize)
	})

	t.Run("bad timeout", func(t *testing.T) {
		path := writeConfig(t, "[default]\nbucket = b\ntimeout = soon\n")
		_, _, err := LoadConfig(path)

		var cfgErr *ConfigError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "timeout", cfgErr.Field)
	})

	t.Run("missing explicit file", func(t *testing.T) {
		_, _, err := LoadConfig(filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})

	t.Run("nothing found yields defaults", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		if _, err := os.Stat("/etc/s3cfg"); err == nil {
			t.Skip("/etc/s3cfg exists on this machine")
		}

		cfg, used, err := LoadConfig("")
		require.NoError(t, err)
		assert.Empty(t, used)
		assert.Equal(t, DefaultConfig(), cfg)
	})
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing bucket", func(c *Config) { c.Bucket = "" }, "bucket"},
		{"missing host", func(c *Config) { c.HostBase = "" }, "host_base"},
		{"unknown backend", func(c *Config) { c.Backend = "ftp" }, "backend"},
		{"negative page size", func(c *Config) { c.PageSize = -1 }, "page_size"},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, "timeout"},
		{"unbounded pages", func(c *Config) { c.PageSize = Unbounded }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Bucket = "b"
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestBucketURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bucket = "my-bucket"
	assert.Equal(t, "https://my-bucket.s3.amazonaws.com/", cfg.BucketURL())
	assert.Equal(t, "https://my-bucket.s3.amazonaws.com/a%20b/c.txt", ObjectURL(cfg.BucketURL(), "a b/c.txt"))

	cfg.HostBucket = "s3.amazonaws.com/%(bucket)s"
	assert.Equal(t, "https://s3.amazonaws.com/my-bucket/", cfg.BucketURL())
}

func TestSaveConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bucket = "round-trip"
	cfg.HostBase = "localhost:9000"
	cfg.HostBucket = "localhost:9000/%(bucket)s"
	cfg.UseHTTPS = false
	cfg.PageSize = 50
	cfg.Exclude = []string{"index.html"}
	cfg.ResetPageOnEnter = true
	cfg.Timeout = 3 * time.Second

	path := filepath.Join(t.TempDir(), "nested", ".s3cfg")
	require.NoError(t, SaveConfig(cfg, path))

	loaded, _, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
