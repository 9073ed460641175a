package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	t.Setenv("ACCOUNT_GRPC_ADDR", ":7000")
	t.Setenv("ACCOUNT_REDIS_URL", "redis://cache:6379/0")
	t.Setenv("ACCOUNT_ACCESS_TOKEN_TTL", "15m")
	t.Setenv("ACCOUNT_LEDGER_SWEEP_INTERVAL", "1m")
	t.Setenv("ACCOUNT_OTEL_ENDPOINT", "collector:4318")

	c := &Config{SecretKey: "kept"}
	require.NoError(t, parseEnv(c))

	assert.Equal(t, ":7000", c.EndpointAddrGRPC)
	assert.Equal(t, "redis://cache:6379/0", c.RedisURL)
	assert.Equal(t, 15*time.Minute, c.AccessTokenValidityDuration)
	assert.Equal(t, time.Minute, c.LedgerSweepInterval)
	assert.Equal(t, "collector:4318", c.OtelEndpoint)
	assert.Equal(t, "kept", c.SecretKey, "unset variables leave values alone")
}

func TestParseEnv_IgnoresUnprefixed(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://other:6379")

	c := &Config{}
	require.NoError(t, parseEnv(c))
	assert.Empty(t, c.RedisURL)
}

func TestParseEnv_BadDuration(t *testing.T) {
	t.Setenv("ACCOUNT_REQUEST_TIMEOUT", "five seconds")

	err := parseEnv(&Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}
