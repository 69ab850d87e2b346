package server

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets the relay's variables for the duration of the test so
// ambient CI environments cannot leak into default assertions.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HOST", "PORT", "ALLOWED_ORIGINS", "MAX_MESSAGE_SIZE",
		"SEND_BUFFER_SIZE", "RATE_LIMIT_BURST", "RATE_LIMIT_REFILL_INTERVAL",
		"JOKE_URL", "JOKE_TIMEOUT", "SHUTDOWN_TIMEOUT", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	req := require.New(t)
	clearEnv(t)

	cfg, err := LoadConfig()
	req.NoError(err)

	req.Equal("0.0.0.0:8080", cfg.Addr())
	req.Equal(int64(512), cfg.MaxMessageSize)
	req.Equal(5, cfg.RateLimitBurst)
	req.Equal(time.Second, cfg.RateLimitRefill)
	req.Equal("https://icanhazdadjoke.com", cfg.JokeURL)
	req.Equal(10*time.Second, cfg.JokeTimeout)
	req.Equal([]string{"http://localhost:8080"}, cfg.Origins())
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "9999")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("JOKE_TIMEOUT", "2s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9999", cfg.Addr())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Origins())
	assert.Equal(t, 2*time.Second, cfg.JokeTimeout)
}

func TestNewLogger_LevelParsing(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "nonsense"} {
		assert.NotNil(t, NewLogger(level))
	}
}
