package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/florianilch/genaibridge/internal/credentials"
	"github.com/florianilch/genaibridge/internal/genai"
	"github.com/florianilch/genaibridge/internal/generator"
	"github.com/florianilch/genaibridge/internal/proxy"
)

func environ(vars ...string) func() []string {
	return func() []string { return vars }
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("", environ(), nil)
	require.NoError(t, err)

	assert.Equal(t, "INFO", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "127.0.0.1:4000", cfg.Server.Address)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, proxy.DefaultMaxRequestBytes, cfg.Server.MaxRequestBytes)
	assert.Equal(t, generator.AuthTypeOpenAIAPIKey, cfg.Generator.AuthType)
	assert.Equal(t, TokenStorageTypeEnv, cfg.Auth.Storage)
	assert.Equal(t, "GENAIBRIDGE_TOKEN", cfg.Auth.Env)
	assert.Equal(t, EstimatorChars, cfg.Tokens.Estimator)
	assert.False(t, cfg.Telemetry.Enabled)
}

func TestLoadConfig_Layers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
address = "0.0.0.0:8080"
shutdown_timeout = "30s"

[generator]
auth_type = "anthropic-api-key"
model = "from-file"

[tokens]
estimator = "tiktoken"
`), 0o600))

	cfg, err := LoadConfig(path,
		environ(
			"GENAIBRIDGE_GENERATOR__MODEL=from-env",
			"GENAIBRIDGE_SERVER__MAX_REQUEST_BYTES=1024",
			"GENAIBRIDGE_LOG__LEVEL=warn",
			"UNRELATED=1",
		),
		map[string]any{"log.level": "debug"},
	)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address, "file overrides defaults")
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, generator.AuthTypeAnthropicAPIKey, cfg.Generator.AuthType)
	assert.Equal(t, "from-env", cfg.Generator.Model, "env overrides file")
	assert.Equal(t, int64(1024), cfg.Server.MaxRequestBytes)
	assert.Equal(t, "debug", cfg.Log.Level, "overrides win over env")
	assert.Equal(t, EstimatorTiktoken, cfg.Tokens.Estimator)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     []string
		wantErr string
	}{
		{name: "auth type", env: []string{"GENAIBRIDGE_GENERATOR__AUTH_TYPE=vertex"}, wantErr: "AuthType"},
		{name: "storage", env: []string{"GENAIBRIDGE_AUTH__STORAGE=vault"}, wantErr: "Storage"},
		{name: "log format", env: []string{"GENAIBRIDGE_LOG__FORMAT=xml"}, wantErr: "Format"},
		{name: "address", env: []string{"GENAIBRIDGE_SERVER__ADDRESS=nowhere"}, wantErr: "Address"},
		{name: "base url", env: []string{"GENAIBRIDGE_GENERATOR__BASE_URL=not a url"}, wantErr: "BaseURL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig("", environ(tt.env...), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"), environ(), nil)
	require.Error(t, err)
}

func TestAuthConfig_NewTokenStore(t *testing.T) {
	t.Run("env", func(t *testing.T) {
		store, err := AuthConfig{Storage: TokenStorageTypeEnv, Env: "KEY"}.NewTokenStore(environ("KEY=secret"))
		require.NoError(t, err)

		secret, err := store.Read(t.Context())
		require.NoError(t, err)
		assert.Equal(t, "secret", secret)
		assert.ErrorIs(t, store.Write(t.Context(), "x"), credentials.ErrReadOnly)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "credential")
		store, err := AuthConfig{Storage: TokenStorageTypeFile, File: path}.NewTokenStore(environ())
		require.NoError(t, err)

		require.NoError(t, store.Write(t.Context(), "secret"))
		secret, err := store.Read(t.Context())
		require.NoError(t, err)
		assert.Equal(t, "secret", secret)
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := AuthConfig{Storage: "vault"}.NewTokenStore(environ())
		require.Error(t, err)
	})
}

func TestTokensConfig_NewEstimator(t *testing.T) {
	estimator, err := TokensConfig{Estimator: EstimatorChars}.NewEstimator()
	require.NoError(t, err)
	assert.IsType(t, genai.CharEstimator{}, estimator)

	_, err = TokensConfig{Estimator: "words"}.NewEstimator()
	require.Error(t, err)
}

func TestObservabilityConfig(t *testing.T) {
	cfg, err := LoadConfig("", environ("GENAIBRIDGE_TELEMETRY__ENABLED=true", "GENAIBRIDGE_TELEMETRY__PROTOCOL=http"), nil)
	require.NoError(t, err)

	obs, err := cfg.ObservabilityConfig("1.2.3")
	require.NoError(t, err)
	assert.True(t, obs.Export.Enabled)
	assert.Equal(t, "http", obs.Export.Protocol)
	assert.Equal(t, "1.2.3", obs.ServiceVersion)
}
