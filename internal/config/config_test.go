package config_test

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hytale-oss/gameserver/internal/config"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()

	if cfg.QUIC.Addr != ":5520" {
		t.Errorf("QUIC.Addr = %q, want %q", cfg.QUIC.Addr, ":5520")
	}
	if cfg.GRPC.Addr != ":50051" {
		t.Errorf("GRPC.Addr = %q, want %q", cfg.GRPC.Addr, ":50051")
	}
	if cfg.Metrics.Addr != ":9100" {
		t.Errorf("Metrics.Addr = %q, want %q", cfg.Metrics.Addr, ":9100")
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("Metrics.Path = %q, want %q", cfg.Metrics.Path, "/metrics")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, "json")
	}
	if cfg.SessionService.Timeout != 10*time.Second {
		t.Errorf("SessionService.Timeout = %v, want %v", cfg.SessionService.Timeout, 10*time.Second)
	}
	if len(cfg.OAuth.Scopes) != 3 {
		t.Errorf("OAuth.Scopes = %v, want 3 entries", cfg.OAuth.Scopes)
	}
	if cfg.World.Height != 384 {
		t.Errorf("World.Height = %d, want 384", cfg.World.Height)
	}

	// Defaults alone are missing required fields (TLS material, session
	// service URL, audience) that only a real deployment supplies.
	if err := config.Validate(cfg); err == nil {
		t.Error("DefaultConfig() unexpectedly passed validation without TLS/session-service settings")
	}
}

func validConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.QUIC.CertFile = "/etc/gameserver/tls.crt"
	cfg.QUIC.KeyFile = "/etc/gameserver/tls.key"
	cfg.SessionService.BaseURL = "https://session.hytale.com"
	cfg.SessionService.Audience = "f47ac10b-58cc-4372-a567-0e02b2c3d479"
	return cfg
}

func TestValidConfigPassesValidation(t *testing.T) {
	t.Parallel()

	if err := config.Validate(validConfig()); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestLoadFromYAML(t *testing.T) {
	t.Parallel()

	yamlContent := `
quic:
  addr: ":6000"
  cert_file: "/tmp/tls.crt"
  key_file: "/tmp/tls.key"
session_service:
  base_url: "https://session.example.com"
  account_data_url: "https://account-data.example.com"
  audience: "f47ac10b-58cc-4372-a567-0e02b2c3d479"
  timeout: "5s"
grpc:
  addr: ":60000"
metrics:
  addr: ":9200"
  path: "/custom-metrics"
log:
  level: "debug"
  format: "text"
world:
  height: 256
`
	path := writeTemp(t, yamlContent)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load(%q) error: %v", path, err)
	}

	if cfg.QUIC.Addr != ":6000" {
		t.Errorf("QUIC.Addr = %q, want %q", cfg.QUIC.Addr, ":6000")
	}
	if cfg.SessionService.BaseURL != "https://session.example.com" {
		t.Errorf("SessionService.BaseURL = %q", cfg.SessionService.BaseURL)
	}
	if cfg.SessionService.Timeout != 5*time.Second {
		t.Errorf("SessionService.Timeout = %v, want 5s", cfg.SessionService.Timeout)
	}
	if cfg.GRPC.Addr != ":60000" {
		t.Errorf("GRPC.Addr = %q, want %q", cfg.GRPC.Addr, ":60000")
	}
	if cfg.Metrics.Addr != ":9200" {
		t.Errorf("Metrics.Addr = %q, want %q", cfg.Metrics.Addr, ":9200")
	}
	if cfg.Metrics.Path != "/custom-metrics" {
		t.Errorf("Metrics.Path = %q, want %q", cfg.Metrics.Path, "/custom-metrics")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
	if cfg.World.Height != 256 {
		t.Errorf("World.Height = %d, want 256", cfg.World.Height)
	}
}

func TestLoadMergesDefaults(t *testing.T) {
	t.Parallel()

	yamlContent := `
quic:
  cert_file: "/tmp/tls.crt"
  key_file: "/tmp/tls.key"
session_service:
  base_url: "https://session.example.com"
  audience: "f47ac10b-58cc-4372-a567-0e02b2c3d479"
log:
  level: "warn"
`
	path := writeTemp(t, yamlContent)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load(%q) error: %v", path, err)
	}

	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "warn")
	}
	// Defaults preserved.
	if cfg.QUIC.Addr != ":5520" {
		t.Errorf("QUIC.Addr = %q, want default %q", cfg.QUIC.Addr, ":5520")
	}
	if cfg.Metrics.Addr != ":9100" {
		t.Errorf("Metrics.Addr = %q, want default %q", cfg.Metrics.Addr, ":9100")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want default %q", cfg.Log.Format, "json")
	}
}

func TestValidateErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*config.Config)
		wantErr error
	}{
		{
			name: "empty quic addr",
			modify: func(cfg *config.Config) {
				cfg.QUIC.Addr = ""
			},
			wantErr: config.ErrEmptyQUICAddr,
		},
		{
			name: "missing tls cert",
			modify: func(cfg *config.Config) {
				cfg.QUIC.CertFile = ""
			},
			wantErr: config.ErrMissingTLSMaterial,
		},
		{
			name: "missing tls key",
			modify: func(cfg *config.Config) {
				cfg.QUIC.KeyFile = ""
			},
			wantErr: config.ErrMissingTLSMaterial,
		},
		{
			name: "empty grpc addr",
			modify: func(cfg *config.Config) {
				cfg.GRPC.Addr = ""
			},
			wantErr: config.ErrEmptyGRPCAddr,
		},
		{
			name: "empty session service url",
			modify: func(cfg *config.Config) {
				cfg.SessionService.BaseURL = ""
			},
			wantErr: config.ErrEmptySessionServiceURL,
		},
		{
			name: "empty audience",
			modify: func(cfg *config.Config) {
				cfg.SessionService.Audience = ""
			},
			wantErr: config.ErrEmptyAudience,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.modify(cfg)

			err := config.Validate(cfg)
			if err == nil {
				t.Fatal("Validate() returned nil, want error")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  slog.Level
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "DEBUG", want: slog.LevelDebug},
		{input: "info", want: slog.LevelInfo},
		{input: "INFO", want: slog.LevelInfo},
		{input: "warn", want: slog.LevelWarn},
		{input: "WARN", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "Error", want: slog.LevelError},
		{input: "unknown", want: slog.LevelInfo},
		{input: "", want: slog.LevelInfo},
		{input: "trace", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got := config.ParseLogLevel(tt.input)
			if got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLoadNonexistentFile(t *testing.T) {
	t.Parallel()

	_, err := config.Load("/nonexistent/path/config.yml")
	if err == nil {
		t.Fatal("Load() returned nil error for nonexistent file")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	// Environment variable tests cannot be parallel because they modify
	// process-wide state (os.Setenv).

	yamlContent := `
quic:
  cert_file: "/tmp/tls.crt"
  key_file: "/tmp/tls.key"
session_service:
  base_url: "https://session.example.com"
  audience: "f47ac10b-58cc-4372-a567-0e02b2c3d479"
log:
  level: "info"
`
	path := writeTemp(t, yamlContent)

	t.Setenv("GAMESERVER_GRPC_ADDR", ":60000")
	t.Setenv("GAMESERVER_LOG_LEVEL", "debug")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load(%q) error: %v", path, err)
	}

	if cfg.GRPC.Addr != ":60000" {
		t.Errorf("GRPC.Addr = %q, want %q (from env)", cfg.GRPC.Addr, ":60000")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q (from env)", cfg.Log.Level, "debug")
	}
}

func TestLoadEnvOverridesMetrics(t *testing.T) {
	yamlContent := `
quic:
  cert_file: "/tmp/tls.crt"
  key_file: "/tmp/tls.key"
session_service:
  base_url: "https://session.example.com"
  audience: "f47ac10b-58cc-4372-a567-0e02b2c3d479"
metrics:
  addr: ":9100"
  path: "/metrics"
`
	path := writeTemp(t, yamlContent)

	t.Setenv("GAMESERVER_METRICS_ADDR", ":9200")
	t.Setenv("GAMESERVER_METRICS_PATH", "/custom")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load(%q) error: %v", path, err)
	}

	if cfg.Metrics.Addr != ":9200" {
		t.Errorf("Metrics.Addr = %q, want %q (from env)", cfg.Metrics.Addr, ":9200")
	}
	if cfg.Metrics.Path != "/custom" {
		t.Errorf("Metrics.Path = %q, want %q (from env)", cfg.Metrics.Path, "/custom")
	}
}

// writeTemp creates a temporary YAML file and returns its path.
// The file is automatically cleaned up when the test finishes.
func writeTemp(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "gameserver.yml")

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	return path
}
