// Package config manages the game server's configuration using koanf/v2.
//
// Supports YAML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// -------------------------------------------------------------------------
// Configuration Structures
// -------------------------------------------------------------------------

// Config holds the complete game server configuration.
type Config struct {
	QUIC           QUICConfig           `koanf:"quic"`
	SessionService SessionServiceConfig `koanf:"session_service"`
	OAuth          OAuthConfig          `koanf:"oauth"`
	GRPC           GRPCConfig           `koanf:"grpc"`
	Metrics        MetricsConfig        `koanf:"metrics"`
	Log            LogConfig            `koanf:"log"`
	World          WorldConfig          `koanf:"world"`
}

// QUICConfig holds the QUIC transport listener configuration.
type QUICConfig struct {
	// Addr is the UDP listen address (e.g., ":5520").
	Addr string `koanf:"addr"`
	// CertFile and KeyFile locate the TLS 1.3 server certificate used
	// both for the QUIC handshake and for deriving the certificate
	// fingerprint exchanged during auth-token issuance.
	CertFile string `koanf:"cert_file"`
	KeyFile  string `koanf:"key_file"`
}

// SessionServiceConfig holds the upstream identity/session-service base
// URLs this server authenticates against.
type SessionServiceConfig struct {
	// BaseURL is the session service's base URL.
	BaseURL string `koanf:"base_url"`
	// AccountDataURL is the account-data service's base URL, used for
	// game-profile enumeration.
	AccountDataURL string `koanf:"account_data_url"`
	// Audience is this deployment's stable UUID, presented as the aud
	// parameter when requesting authorization grants.
	Audience string `koanf:"audience"`
	// Timeout bounds every outbound HTTP call to the session service.
	Timeout time.Duration `koanf:"timeout"`
}

// OAuthConfig holds the external authorization server's endpoints and
// this server's client identity, used by the bootstrap acquisition flows
// (internal/auth/oauthflow) rather than by per-connection traffic.
type OAuthConfig struct {
	// BaseURL is the external authorization server's base URL.
	BaseURL string `koanf:"base_url"`
	// ClientID identifies this server to the authorization server.
	ClientID string `koanf:"client_id"`
	// Scopes is the OAuth scope list requested in every flow.
	Scopes []string `koanf:"scopes"`
}

// GRPCConfig holds the ConnectRPC control-surface server configuration.
type GRPCConfig struct {
	// Addr is the gRPC listen address (e.g., ":50051").
	Addr string `koanf:"addr"`
}

// MetricsConfig holds the Prometheus metrics endpoint configuration.
type MetricsConfig struct {
	// Addr is the HTTP listen address for the metrics endpoint (e.g., ":9100").
	Addr string `koanf:"addr"`
	// Path is the URL path for the metrics endpoint (e.g., "/metrics").
	Path string `koanf:"path"`
}

// LogConfig holds the logging configuration.
type LogConfig struct {
	// Level is the log level: "debug", "info", "warn", "error".
	Level string `koanf:"level"`
	// Format is the log output format: "json" or "text".
	Format string `koanf:"format"`
}

// WorldConfig holds the unsolicited WorldSettings payload pushed to every
// connection once the AUTH handshake completes.
type WorldConfig struct {
	// Height is the world height limit announced to clients.
	Height uint32 `koanf:"height"`
	// RequiredAssetDigests is the list of asset content hashes (each 64
	// bytes, matching packets.Asset's fixed-length hash field) the client
	// must already have before requesting the asset catalog.
	RequiredAssetDigests []string `koanf:"required_asset_digests"`
}

// -------------------------------------------------------------------------
// Defaults
// -------------------------------------------------------------------------

// defaultQUICPort is the reference default UDP port from spec.md §6.
const defaultQUICPort = 5520

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		QUIC: QUICConfig{
			Addr: fmt.Sprintf(":%d", defaultQUICPort),
		},
		SessionService: SessionServiceConfig{
			Timeout: 10 * time.Second,
		},
		OAuth: OAuthConfig{
			Scopes: []string{"openid", "offline", "auth:server"},
		},
		GRPC: GRPCConfig{
			Addr: ":50051",
		},
		Metrics: MetricsConfig{
			Addr: ":9100",
			Path: "/metrics",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		World: WorldConfig{
			Height: 384,
		},
	}
}

// -------------------------------------------------------------------------
// Loader
// -------------------------------------------------------------------------

// envPrefix is the environment variable prefix for game server
// configuration. Variables are named GAMESERVER_<section>_<key>, e.g.,
// GAMESERVER_QUIC_ADDR.
const envPrefix = "GAMESERVER_"

// Load reads configuration from a YAML file at path, overlays environment
// variable overrides (GAMESERVER_ prefix), and merges on top of
// DefaultConfig(). Missing fields inherit defaults.
//
// Environment variable mapping:
//
//	GAMESERVER_QUIC_ADDR               -> quic.addr
//	GAMESERVER_SESSION_SERVICE_BASE_URL -> session_service.base_url
//	GAMESERVER_OAUTH_CLIENT_ID          -> oauth.client_id
//	GAMESERVER_GRPC_ADDR                -> grpc.addr
//	GAMESERVER_METRICS_ADDR             -> metrics.addr
//	GAMESERVER_LOG_LEVEL                -> log.level
//
// Uses koanf/v2 with file + env providers and YAML parser.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := DefaultConfig()
	if err := loadDefaults(k, defaults); err != nil {
		return nil, fmt.Errorf("load config defaults: %w", err)
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load config from %s: %w", path, err)
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKeyMapper), nil); err != nil {
		return nil, fmt.Errorf("load env overrides: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config from %s: %w", path, err)
	}

	return cfg, nil
}

// envKeyMapper transforms GAMESERVER_GRPC_ADDR -> grpc.addr.
// Strips the GAMESERVER_ prefix, lowercases, and replaces the _ after
// the section name with .; underscores inside the key are kept.
func envKeyMapper(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	s = strings.ToLower(s)
	for _, section := range []string{"session_service", "quic", "oauth", "grpc", "metrics", "log", "world"} {
		if rest, ok := strings.CutPrefix(s, section+"_"); ok {
			return section + "." + rest
		}
	}
	return strings.ReplaceAll(s, "_", ".")
}

// loadDefaults marshals the default config into koanf as the base layer.
func loadDefaults(k *koanf.Koanf, defaults *Config) error {
	defaultMap := map[string]any{
		"quic.addr":                   defaults.QUIC.Addr,
		"session_service.timeout":     defaults.SessionService.Timeout.String(),
		"oauth.scopes":                defaults.OAuth.Scopes,
		"grpc.addr":                   defaults.GRPC.Addr,
		"metrics.addr":                defaults.Metrics.Addr,
		"metrics.path":                defaults.Metrics.Path,
		"log.level":                   defaults.Log.Level,
		"log.format":                  defaults.Log.Format,
		"world.height":                defaults.World.Height,
	}

	for key, val := range defaultMap {
		if err := k.Set(key, val); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

// -------------------------------------------------------------------------
// Validation
// -------------------------------------------------------------------------

// Validation errors.
var (
	// ErrEmptyQUICAddr indicates the QUIC listen address is empty.
	ErrEmptyQUICAddr = errors.New("quic.addr must not be empty")

	// ErrEmptyGRPCAddr indicates the gRPC listen address is empty.
	ErrEmptyGRPCAddr = errors.New("grpc.addr must not be empty")

	// ErrEmptySessionServiceURL indicates no session service base URL
	// was configured.
	ErrEmptySessionServiceURL = errors.New("session_service.base_url must not be empty")

	// ErrEmptyAudience indicates no per-deployment audience UUID was
	// configured; it is required for every authorization-grant request.
	ErrEmptyAudience = errors.New("session_service.audience must not be empty")

	// ErrMissingTLSMaterial indicates the QUIC listener has no
	// certificate/key pair configured.
	ErrMissingTLSMaterial = errors.New("quic.cert_file and quic.key_file must both be set")
)

// Validate checks the configuration for logical errors.
// Returns the first validation error encountered.
func Validate(cfg *Config) error {
	if cfg.QUIC.Addr == "" {
		return ErrEmptyQUICAddr
	}
	if cfg.QUIC.CertFile == "" || cfg.QUIC.KeyFile == "" {
		return ErrMissingTLSMaterial
	}
	if cfg.GRPC.Addr == "" {
		return ErrEmptyGRPCAddr
	}
	if cfg.SessionService.BaseURL == "" {
		return ErrEmptySessionServiceURL
	}
	if cfg.SessionService.Audience == "" {
		return ErrEmptyAudience
	}
	return nil
}

// -------------------------------------------------------------------------
// Log Level Parsing
// -------------------------------------------------------------------------

// ParseLogLevel maps a configuration log level string to the corresponding
// slog.Level. Unknown values default to slog.LevelInfo.
//
// Recognized values: "debug", "info", "warn", "error" (case-insensitive).
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
