package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/docuchat")

	cfg := LoadConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "text-embedding-004", cfg.EmbedModel)
	assert.Equal(t, 768, cfg.EmbedDim)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Equal(t, "textracted", cfg.TextractedDir)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 200, cfg.ChunkOverlap)
	assert.Equal(t, int64(50)<<20, cfg.MaxFileBytes)
	assert.Equal(t, 1000, cfg.MaxImageDim)
	assert.Equal(t, "eng", cfg.OCRLanguage)
	assert.Equal(t, 4, cfg.Workers)
	assert.False(t, cfg.WatchUploads)
	assert.Equal(t, 30*time.Second, cfg.ChatTimeout)
	assert.Equal(t, 5, cfg.ConnectRetries)
	assert.Equal(t, 2*time.Second, cfg.ConnectBackoff)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://db:5432/docs")
	t.Setenv("PORT", "8080")
	t.Setenv("CHUNK_SIZE", "500")
	t.Setenv("MAX_FILE_MB", "10")
	t.Setenv("WATCH_UPLOADS", "true")
	t.Setenv("CHAT_TIMEOUT", "45s")

	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 500, cfg.ChunkSize)
	assert.Equal(t, int64(10)<<20, cfg.MaxFileBytes)
	assert.True(t, cfg.WatchUploads)
	assert.Equal(t, 45*time.Second, cfg.ChatTimeout)
}

func TestEnvHelpersFallBackOnGarbage(t *testing.T) {
	t.Setenv("SOME_INT", "not-a-number")
	t.Setenv("SOME_FLOAT", "nope")
	t.Setenv("SOME_DURATION", "forever")

	assert.Equal(t, 42, getEnvInt("SOME_INT", 42))
	assert.Equal(t, 1.5, getEnvFloat("SOME_FLOAT", 1.5))
	assert.Equal(t, time.Minute, getEnvDuration("SOME_DURATION", time.Minute))
	assert.Equal(t, "fallback", getEnv("SOME_UNSET_KEY", "fallback"))
}
