package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/ini.v1"
)

const (
	BackendREST = "rest"
	BackendSDK  = "sdk"

	DefaultHostBase   = "s3.amazonaws.com"
	DefaultHostBucket = "%(bucket)s.s3.amazonaws.com"
	DefaultRegion     = "us-east-1"
	DefaultPageSize   = 10
	DefaultTimeFormat = "2006-01-02 15:04:05"

	bucketPlaceholder = "%(bucket)s"
)

// DefaultExclude lists the site assets published next to the browser page.
var DefaultExclude = []string{
	"index.html",
	"s3.js",
	"dark-mode.css",
	"download-removebg-preview.png",
	"images-removebg-preview.png",
}

// Config holds the browser configuration parsed from .s3cfg plus overrides
type Config struct {
	Bucket     string
	HostBase   string
	HostBucket string
	UseHTTPS   bool
	Region     string

	Backend          string
	PageSize         int // 0 lists everything on one page
	Exclude          []string
	ResetPageOnEnter bool
	Timeout          time.Duration
	TimeFormat       string

	LogFile  string
	LogLevel string
}

// ConfigError reports an invalid configuration field.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config: " + e.Field + ": " + e.Message
}

// DefaultConfig returns the configuration used when no .s3cfg exists.
func DefaultConfig() *Config {
	return &Config{
		HostBase:   DefaultHostBase,
		HostBucket: DefaultHostBucket,
		UseHTTPS:   true,
		Region:     DefaultRegion,
		Backend:    BackendREST,
		PageSize:   DefaultPageSize,
		Exclude:    append([]string(nil), DefaultExclude...),
		TimeFormat: DefaultTimeFormat,
		LogLevel:   "info",
	}
}

// configSearchPaths lists the places a .s3cfg is looked for, in order.
func configSearchPaths() []string {
	paths := []string{".s3cfg"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".s3cfg"))
	}
	return append(paths, "/etc/s3cfg")
}

// FindConfigFile returns the first existing .s3cfg, or "" when there is none.
func FindConfigFile() string {
	for _, path := range configSearchPaths() {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// LoadConfig loads configuration from path. An empty path searches the
// standard locations; finding nothing yields the defaults.
func LoadConfig(path string) (*Config, string, error) {
	if path == "" {
		path = FindConfigFile()
	}
	if path == "" {
		return DefaultConfig(), "", nil
	}

	file, err := ini.Load(path)
	if err != nil {
		return nil, path, fmt.Errorf("failed to load %s: %w", path, err)
	}

	cfg, err := configFromSection(file.Section("default"))
	if err != nil {
		return nil, path, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, path, nil
}

func configFromSection(section *ini.Section) (*Config, error) {
	cfg := DefaultConfig()

	cfg.Bucket = section.Key("bucket").String()
	cfg.HostBase = section.Key("host_base").MustString(DefaultHostBase)
	// Value() skips ini's own %(name)s interpolation, which would otherwise
	// substitute the bucket key eagerly.
	if section.HasKey("host_bucket") {
		cfg.HostBucket = section.Key("host_bucket").Value()
	} else if cfg.HostBase != DefaultHostBase {
		cfg.HostBucket = cfg.HostBase + "/" + bucketPlaceholder
	}
	cfg.UseHTTPS = section.Key("use_https").MustBool(true)
	cfg.Region = section.Key("bucket_location").MustString(DefaultRegion)

	cfg.Backend = section.Key("backend").MustString(BackendREST)
	cfg.PageSize = section.Key("page_size").MustInt(DefaultPageSize)
	if section.HasKey("exclude") {
		cfg.Exclude = splitList(section.Key("exclude").String())
	}
	cfg.ResetPageOnEnter = section.Key("reset_page_on_enter").MustBool(false)
	if section.HasKey("timeout") {
		d, err := time.ParseDuration(section.Key("timeout").String())
		if err != nil {
			return nil, &ConfigError{Field: "timeout", Message: err.Error()}
		}
		cfg.Timeout = d
	}
	cfg.TimeFormat = section.Key("time_format").MustString(DefaultTimeFormat)
	cfg.LogFile = section.Key("log_file").String()
	cfg.LogLevel = section.Key("log_level").MustString("info")

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks that the configuration can drive a browsing session.
func (c *Config) Validate() error {
	if c.Bucket == "" {
		return &ConfigError{Field: "bucket", Message: "bucket name is required"}
	}
	if c.HostBase == "" {
		return &ConfigError{Field: "host_base", Message: "storage domain is required"}
	}
	switch c.Backend {
	case BackendREST, BackendSDK:
	default:
		return &ConfigError{Field: "backend", Message: fmt.Sprintf("unknown backend %q (want %s or %s)", c.Backend, BackendREST, BackendSDK)}
	}
	if c.PageSize < 0 {
		return &ConfigError{Field: "page_size", Message: "must be zero (unbounded) or positive"}
	}
	if c.Timeout < 0 {
		return &ConfigError{Field: "timeout", Message: "must not be negative"}
	}
	return nil
}

func (c *Config) scheme() string {
	if c.UseHTTPS {
		return "https"
	}
	return "http"
}

// VirtualHosted reports whether the bucket is addressed by host name
// rather than by the first path segment.
func (c *Config) VirtualHosted() bool {
	return strings.Contains(c.HostBucket, bucketPlaceholder) && !strings.Contains(c.HostBucket, "/")
}

// GetEndpointURL returns the endpoint URL for the storage service
func (c *Config) GetEndpointURL() string {
	return fmt.Sprintf("%s://%s", c.scheme(), c.HostBase)
}

// BucketURL returns the root URL of the bucket, always ending in "/".
func (c *Config) BucketURL() string {
	if c.VirtualHosted() {
		host := strings.ReplaceAll(c.HostBucket, bucketPlaceholder, c.Bucket)
		return fmt.Sprintf("%s://%s/", c.scheme(), host)
	}
	return fmt.Sprintf("%s://%s/%s/", c.scheme(), strings.TrimSuffix(c.HostBase, "/"), url.PathEscape(c.Bucket))
}

// SaveConfig writes the configuration to path in .s3cfg form.
func SaveConfig(c *Config, path string) error {
	file := ini.Empty()
	section := file.Section("default")

	section.Key("bucket").SetValue(c.Bucket)
	section.Key("host_base").SetValue(c.HostBase)
	section.Key("host_bucket").SetValue(c.HostBucket)
	if c.UseHTTPS {
		section.Key("use_https").SetValue("True")
	} else {
		section.Key("use_https").SetValue("False")
	}
	section.Key("bucket_location").SetValue(c.Region)
	section.Key("backend").SetValue(c.Backend)
	section.Key("page_size").SetValue(fmt.Sprintf("%d", c.PageSize))
	section.Key("exclude").SetValue(strings.Join(c.Exclude, ","))
	if c.ResetPageOnEnter {
		section.Key("reset_page_on_enter").SetValue("True")
	} else {
		section.Key("reset_page_on_enter").SetValue("False")
	}
	if c.Timeout > 0 {
		section.Key("timeout").SetValue(c.Timeout.String())
	}
	section.Key("time_format").SetValue(c.TimeFormat)
	if c.LogFile != "" {
		section.Key("log_file").SetValue(c.LogFile)
	}
	section.Key("log_level").SetValue(c.LogLevel)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return file.SaveTo(path)
}
