// Package config loads convertd settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultMultipartMemory = 32 << 20
	defaultStatsKey        = "convertd:stats"
)

// Config is the resolved process configuration.
type Config struct {
	HTTPHost string
	HTTPPort string

	PandocPath      string
	StagingDir      string
	MultipartMemory int64

	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration
	// RecordTimeout bounds each audit, stats and archive call after a
	// conversion.
	RecordTimeout time.Duration

	// DatabaseURL enables the conversion audit log when set.
	DatabaseURL string
	// RedisAddr enables conversion counters when set.
	RedisAddr string
	StatsKey  string

	Archive ArchiveConfig
	Log     LogConfig
}

// ArchiveConfig selects where successful artifacts are exported.
// An empty Provider disables archiving.
type ArchiveConfig struct {
	Provider  string
	LocalRoot string

	GDriveClientID     string
	GDriveClientSecret string
	GDriveRefreshToken string
	GDriveFolderID     string
}

type LogConfig struct {
	Level  string
	Format string
	Source bool
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.HTTPHost + ":" + c.HTTPPort
}

// Load reads the environment. Unset variables take their defaults; malformed
// numeric or duration values are reported as errors.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPHost:           Env("HTTP_HOST", "0.0.0.0"),
		HTTPPort:           Env("HTTP_PORT", "8000"),
		PandocPath:         Env("PANDOC_PATH", "pandoc"),
		StagingDir:         Env("STAGING_DIR", os.TempDir()),
		CORSAllowedOrigins: CSVEnv("CORS_ALLOWED_ORIGINS"),
		DatabaseURL:        Env("DATABASE_URL", ""),
		RedisAddr:          Env("REDIS_ADDR", ""),
		StatsKey:           Env("STATS_KEY", defaultStatsKey),
		Archive: ArchiveConfig{
			Provider:           strings.ToLower(Env("ARCHIVE_PROVIDER", "")),
			LocalRoot:          Env("ARCHIVE_LOCAL_ROOT", ""),
			GDriveClientID:     Env("GDRIVE_CLIENT_ID", ""),
			GDriveClientSecret: Env("GDRIVE_CLIENT_SECRET", ""),
			GDriveRefreshToken: Env("GDRIVE_REFRESH_TOKEN", ""),
			GDriveFolderID:     Env("GDRIVE_FOLDER_ID", ""),
		},
		Log: LogConfig{
			Level:  Env("LOG_LEVEL", "info"),
			Format: Env("LOG_FORMAT", "json"),
			Source: BoolEnv("LOG_SOURCE", false),
		},
	}

	var err error
	if cfg.MultipartMemory, err = Int64Env("MULTIPART_MEMORY_BYTES", defaultMultipartMemory); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = DurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}

	if cfg.RecordTimeout, err = DurationEnv("RECORD_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.MultipartMemory <= 0 {
		return fmt.Errorf("MULTIPART_MEMORY_BYTES must be positive, got %d", c.MultipartMemory)
	}
	if c.RecordTimeout <= 0 {
		return fmt.Errorf("RECORD_TIMEOUT must be positive, got %s", c.RecordTimeout)
	}

	switch c.Archive.Provider {
	case "":
	case "localfs":
		if c.Archive.LocalRoot == "" {
			return fmt.Errorf("ARCHIVE_LOCAL_ROOT is required for the localfs archive")
		}
	case "gdrive":
		for key, v := range map[string]string{
			"GDRIVE_CLIENT_ID":     c.Archive.GDriveClientID,
			"GDRIVE_CLIENT_SECRET": c.Archive.GDriveClientSecret,
			"GDRIVE_REFRESH_TOKEN": c.Archive.GDriveRefreshToken,
		} {
			if v == "" {
				return fmt.Errorf("%s is required for the gdrive archive", key)
			}
		}
	default:
		return fmt.Errorf("unknown archive provider: %s", c.Archive.Provider)
	}
	return nil
}

// Env gets an environment variable with a default value.
func Env(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}

// BoolEnv reads an env var as bool. If empty or invalid, returns def.
func BoolEnv(k string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func Int64Env(k string, def int64) (int64, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", k, err)
	}
	return n, nil
}

func DurationEnv(k string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", k, err)
	}
	return d, nil
}

// CSVEnv splits a comma separated env var, dropping blank entries.
func CSVEnv(k string) []string {
	raw := strings.TrimSpace(os.Getenv(k))
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
