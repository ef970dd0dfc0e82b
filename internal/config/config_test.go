package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

var allKeys = []string{
	"HTTP_HOST", "HTTP_PORT", "PANDOC_PATH", "STAGING_DIR", "MULTIPART_MEMORY_BYTES",
	"CORS_ALLOWED_ORIGINS", "SHUTDOWN_TIMEOUT", "RECORD_TIMEOUT", "DATABASE_URL", "REDIS_ADDR", "STATS_KEY",
	"ARCHIVE_PROVIDER", "ARCHIVE_LOCAL_ROOT", "GDRIVE_CLIENT_ID", "GDRIVE_CLIENT_SECRET",
	"GDRIVE_REFRESH_TOKEN", "GDRIVE_FOLDER_ID", "LOG_LEVEL", "LOG_FORMAT", "LOG_SOURCE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Addr() != "0.0.0.0:8000" {
		t.Errorf("expected addr 0.0.0.0:8000, got %s", cfg.Addr())
	}
	if cfg.PandocPath != "pandoc" {
		t.Errorf("expected pandoc path 'pandoc', got %s", cfg.PandocPath)
	}
	if cfg.StagingDir != os.TempDir() {
		t.Errorf("expected staging dir %s, got %s", os.TempDir(), cfg.StagingDir)
	}
	if cfg.MultipartMemory != 32<<20 {
		t.Errorf("expected 32MiB multipart memory, got %d", cfg.MultipartMemory)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("expected 30s shutdown timeout, got %s", cfg.ShutdownTimeout)
	}
	if cfg.RecordTimeout != 30*time.Second {
		t.Errorf("expected 30s record timeout, got %s", cfg.RecordTimeout)
	}
	if cfg.StatsKey != "convertd:stats" {
		t.Errorf("expected default stats key, got %s", cfg.StatsKey)
	}
	if cfg.DatabaseURL != "" || cfg.RedisAddr != "" || cfg.Archive.Provider != "" {
		t.Error("expected optional integrations to be disabled by default")
	}
	if cfg.CORSAllowedOrigins != nil {
		t.Errorf("expected no CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" || cfg.Log.Source {
		t.Errorf("unexpected log defaults: %+v", cfg.Log)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_HOST", "127.0.0.1")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("MULTIPART_MEMORY_BYTES", "1024")
	t.Setenv("SHUTDOWN_TIMEOUT", "5s")
	t.Setenv("RECORD_TIMEOUT", "2s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("ARCHIVE_PROVIDER", "LocalFS")
	t.Setenv("ARCHIVE_LOCAL_ROOT", "/var/lib/convertd")
	t.Setenv("LOG_SOURCE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Addr() != "127.0.0.1:9000" {
		t.Errorf("expected addr 127.0.0.1:9000, got %s", cfg.Addr())
	}
	if cfg.MultipartMemory != 1024 {
		t.Errorf("expected multipart memory 1024, got %d", cfg.MultipartMemory)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("expected 5s, got %s", cfg.ShutdownTimeout)
	}
	if cfg.RecordTimeout != 2*time.Second {
		t.Errorf("expected 2s record timeout, got %s", cfg.RecordTimeout)
	}
	if strings.Join(cfg.CORSAllowedOrigins, "|") != "http://a.test|http://b.test" {
		t.Errorf("unexpected CORS origins: %v", cfg.CORSAllowedOrigins)
	}
	if cfg.Archive.Provider != "localfs" {
		t.Errorf("expected provider to be lowercased, got %s", cfg.Archive.Provider)
	}
	if !cfg.Log.Source {
		t.Error("expected LOG_SOURCE=true to be honored")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"bad multipart memory", map[string]string{"MULTIPART_MEMORY_BYTES": "lots"}, "MULTIPART_MEMORY_BYTES"},
		{"zero multipart memory", map[string]string{"MULTIPART_MEMORY_BYTES": "0"}, "must be positive"},
		{"bad shutdown timeout", map[string]string{"SHUTDOWN_TIMEOUT": "soon"}, "SHUTDOWN_TIMEOUT"},
		{"bad record timeout", map[string]string{"RECORD_TIMEOUT": "later"}, "RECORD_TIMEOUT"},
		{"zero record timeout", map[string]string{"RECORD_TIMEOUT": "0s"}, "must be positive"},
		{"unknown archive", map[string]string{"ARCHIVE_PROVIDER": "s3"}, "unknown archive provider"},
		{"localfs without root", map[string]string{"ARCHIVE_PROVIDER": "localfs"}, "ARCHIVE_LOCAL_ROOT"},
		{
			"gdrive without token",
			map[string]string{
				"ARCHIVE_PROVIDER":     "gdrive",
				"GDRIVE_CLIENT_ID":     "id",
				"GDRIVE_CLIENT_SECRET": "secret",
			},
			"GDRIVE_REFRESH_TOKEN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error to mention %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestBoolEnv(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{"", true, true},
		{"false", true, false},
		{"1", false, true},
		{"maybe", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("CONVERTD_TEST_BOOL", tt.value)
			if got := BoolEnv("CONVERTD_TEST_BOOL", tt.def); got != tt.want {
				t.Errorf("BoolEnv(%q, %v) = %v, expected %v", tt.value, tt.def, got, tt.want)
			}
		})
	}
}
