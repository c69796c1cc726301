package app

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/florianilch/genaibridge/internal/generator"
)

func testConfig(t *testing.T, env ...string) *Config {
	t.Helper()
	cfg, err := LoadConfig("", environ(env...), map[string]any{
		"server.shutdown_timeout": "1s",
	})
	require.NoError(t, err)

	// Port 0 fails address validation but lets the OS pick a free port
	cfg.Server.Address = "127.0.0.1:0"
	return cfg
}

func TestNewGenerator(t *testing.T) {
	cfg := testConfig(t, "GENAIBRIDGE_GENERATOR__MODEL=gpt-test")

	gen, err := NewGenerator(t.Context(), cfg, "test", environ("GENAIBRIDGE_TOKEN=sk-test"))
	require.NoError(t, err)
	assert.Equal(t, "gpt-test", gen.Model())
}

func TestNewGenerator_MissingCredential(t *testing.T) {
	cfg := testConfig(t)
	_, err := NewGenerator(t.Context(), cfg, "test", environ())
	require.ErrorIs(t, err, generator.ErrMissingAPIKey)

	cfg = testConfig(t, "GENAIBRIDGE_GENERATOR__AUTH_TYPE=claude-oauth")
	_, err = NewGenerator(t.Context(), cfg, "test", environ())
	require.ErrorIs(t, err, generator.ErrMissingRefreshToken)
}

func TestApp_StartStop(t *testing.T) {
	cfg := testConfig(t)
	gen, err := NewGenerator(t.Context(), cfg, "test", environ("GENAIBRIDGE_TOKEN=sk-test"))
	require.NoError(t, err)

	application, err := New(cfg, gen)
	require.NoError(t, err)
	assert.False(t, application.Health().IsReady())

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- application.Start(ctx) }()

	require.Eventually(t, application.Health().IsReady, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.False(t, application.Health().IsReady())
}

func TestApp_StartFailsOnBusyAddress(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	cfg := testConfig(t)
	cfg.Server.Address = ln.Addr().String()
	gen, err := NewGenerator(t.Context(), cfg, "test", environ("GENAIBRIDGE_TOKEN=sk-test"))
	require.NoError(t, err)

	application, err := New(cfg, gen)
	require.NoError(t, err)

	require.Error(t, application.Start(t.Context()))
}

func TestHealth(t *testing.T) {
	h := NewHealth()
	assert.False(t, h.IsReady())
	h.SetReady(true)
	assert.True(t, h.IsReady())
	h.SetReady(false)
	assert.False(t, h.IsReady())
}
