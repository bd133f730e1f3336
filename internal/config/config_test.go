package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("NEXUS_JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "Nexus API", cfg.AppName)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, "*", cfg.CORSOrigins)
	require.Equal(t, "nexus:realtime", cfg.RealtimeChannel)
	require.Equal(t, 24*time.Hour, cfg.TutorCacheTTL)
	require.Equal(t, time.Minute, cfg.StatsInterval)
	require.Equal(t, "openai", cfg.AIProvider)
	require.Equal(t, 10, cfg.AIRateLimit)
	require.Equal(t, 10, cfg.UploadMaxSizeMB)
	require.False(t, cfg.CloudinaryEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("NEXUS_JWT_SECRET", "secret")
	t.Setenv("NEXUS_APP_PORT", ":9090")
	t.Setenv("NEXUS_TUTOR_CACHE_TTL", "30m")
	t.Setenv("NEXUS_AI_PROVIDER", "Gemini")
	t.Setenv("NEXUS_GEMINI_API_KEY", "g-key")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddress())
	require.Equal(t, 30*time.Minute, cfg.TutorCacheTTL)
	require.Equal(t, "gemini", cfg.AIProvider)
	require.Equal(t, "g-key", cfg.GeminiAPIKey)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("NEXUS_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	t.Setenv("NEXUS_JWT_SECRET", "secret")
	t.Setenv("NEXUS_STATS_INTERVAL", "soon")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Setenv("NEXUS_JWT_SECRET", "secret")
	t.Setenv("NEXUS_AI_PROVIDER", "llama")

	_, err := Load()
	require.Error(t, err)
}
