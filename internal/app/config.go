package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/florianilch/genaibridge/internal/credentials"
	"github.com/florianilch/genaibridge/internal/generator"
	"github.com/florianilch/genaibridge/internal/genai"
	"github.com/florianilch/genaibridge/internal/observability"
	"github.com/florianilch/genaibridge/internal/proxy"
	"github.com/florianilch/genaibridge/internal/tokenizer"
)

// EnvPrefix prefixes every configuration environment variable. Nested keys are
// separated by a double underscore, e.g. GENAIBRIDGE_SERVER__ADDRESS.
const EnvPrefix = "GENAIBRIDGE_"

// TokenStorageType selects where the backend credential is stored.
type TokenStorageType string

const (
	// TokenStorageTypeEnv reads the credential from an environment variable. Read-only.
	TokenStorageTypeEnv TokenStorageType = "env"
	// TokenStorageTypeFile keeps the credential in a 0600 file.
	TokenStorageTypeFile TokenStorageType = "file"
	// TokenStorageTypeKeyring keeps the credential in the OS keychain.
	TokenStorageTypeKeyring TokenStorageType = "keyring"
)

// Token estimators.
const (
	EstimatorChars    = "chars"
	EstimatorTiktoken = "tiktoken"
)

// Config is the application configuration.
type Config struct {
	Log       LogConfig       `koanf:"log"`
	Server    ServerConfig    `koanf:"server"`
	Generator GeneratorConfig `koanf:"generator"`
	Auth      AuthConfig      `koanf:"auth"`
	Tokens    TokensConfig    `koanf:"tokens"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// LogConfig controls stdout logging.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
	Format string `koanf:"format" validate:"oneof=text json"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Address         string        `koanf:"address" validate:"required,hostname_port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	MaxRequestBytes int64         `koanf:"max_request_bytes" validate:"gt=0"`
}

// GeneratorConfig selects the backend. Credentials come from Auth.
type GeneratorConfig struct {
	AuthType generator.AuthType `koanf:"auth_type" validate:"required,oneof=openai-api-key anthropic-api-key claude-oauth"`
	Model    string             `koanf:"model"`
	BaseURL  string             `koanf:"base_url" validate:"omitempty,url"`
	Proxy    string             `koanf:"proxy" validate:"omitempty,url"`
}

// AuthConfig selects the credential store.
type AuthConfig struct {
	Storage TokenStorageType `koanf:"storage" validate:"required,oneof=env file keyring"`
	// Env is the variable holding the credential for env storage.
	Env string `koanf:"env" validate:"required_if=Storage env"`
	// File is the credential file for file storage. A leading ~/ is expanded.
	File string `koanf:"file" validate:"required_if=Storage file"`
	// KeyringService and KeyringUser identify the keychain entry.
	KeyringService string `koanf:"keyring_service" validate:"required_if=Storage keyring"`
	KeyringUser    string `koanf:"keyring_user" validate:"required_if=Storage keyring"`
}

// TokensConfig selects the token estimator used by countTokens.
type TokensConfig struct {
	Estimator string `koanf:"estimator" validate:"oneof=chars tiktoken"`
	Encoding  string `koanf:"encoding" validate:"required_if=Estimator tiktoken"`
}

// TelemetryConfig controls OTLP log export.
type TelemetryConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Protocol string `koanf:"protocol" validate:"oneof=grpc http stdout"`
	Endpoint string `koanf:"endpoint"`
	Insecure bool   `koanf:"insecure"`
}

// defaults are the lowest configuration layer.
func defaults() map[string]any {
	return map[string]any{
		"log.level":                slog.LevelInfo.String(),
		"log.format":               "text",
		"server.address":           "127.0.0.1:4000",
		"server.shutdown_timeout":  "5s",
		"server.max_request_bytes": proxy.DefaultMaxRequestBytes,
		"generator.auth_type":      string(generator.AuthTypeOpenAIAPIKey),
		"auth.storage":             string(TokenStorageTypeEnv),
		"auth.env":                 EnvPrefix + "TOKEN",
		"auth.file":                "~/.config/genaibridge/credential",
		"auth.keyring_service":     "genaibridge",
		"auth.keyring_user":        "default",
		"tokens.estimator":         EstimatorChars,
		"tokens.encoding":          tokenizer.DefaultEncoding,
		"telemetry.enabled":        false,
		"telemetry.protocol":       observability.ProtocolGRPC,
	}
}

// LoadConfig merges defaults, the optional TOML file at path, environment
// variables from environ, and overrides (typically explicitly set CLI flags), in
// that order, and validates the result.
func LoadConfig(path string, environ func() []string, overrides map[string]any) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(expandHome(path)), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKey,
		EnvironFunc:   environ,
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("failed to load overrides: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// envKey maps GENAIBRIDGE_SERVER__SHUTDOWN_TIMEOUT to server.shutdown_timeout.
func envKey(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return strings.ReplaceAll(key, "__", "."), value
}

// Validate checks struct constraints and reports every violation.
func (c *Config) Validate() error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(c)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("invalid config: %w", err)
	}

	msgs := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed '%s' (value %q)", fe.Namespace(), fe.Tag(), fmt.Sprint(fe.Value())))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// SlogLevel parses Log.Level.
func (c LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}
	return level, nil
}

// ObservabilityConfig derives the logging setup.
func (c *Config) ObservabilityConfig(version string) (observability.Config, error) {
	level, err := c.Log.SlogLevel()
	if err != nil {
		return observability.Config{}, err
	}

	return observability.Config{
		Level:          level,
		Format:         c.Log.Format,
		ServiceName:    "genaibridge",
		ServiceVersion: version,
		Export: observability.ExportConfig{
			Enabled:  c.Telemetry.Enabled,
			Protocol: c.Telemetry.Protocol,
			Endpoint: c.Telemetry.Endpoint,
			Insecure: c.Telemetry.Insecure,
		},
	}, nil
}

// NewTokenStore creates the configured credential store. environ is consulted by
// env storage only.
func (a AuthConfig) NewTokenStore(environ func() []string) (credentials.Store, error) {
	switch a.Storage {
	case TokenStorageTypeEnv:
		return credentials.NewEnvStore(a.Env, environ), nil
	case TokenStorageTypeFile:
		return credentials.NewFileStore(a.File)
	case TokenStorageTypeKeyring:
		return credentials.NewKeyringStore(a.KeyringService, a.KeyringUser), nil
	default:
		return nil, fmt.Errorf("unsupported token storage %q", a.Storage)
	}
}

// NewEstimator creates the configured token estimator.
func (t TokensConfig) NewEstimator() (genai.TokenEstimator, error) {
	switch t.Estimator {
	case EstimatorChars, "":
		return genai.CharEstimator{}, nil
	case EstimatorTiktoken:
		return tokenizer.New(t.Encoding)
	default:
		return nil, fmt.Errorf("unsupported token estimator %q", t.Estimator)
	}
}

func expandHome(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return path
}
