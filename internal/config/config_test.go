package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, "", cfg.Staging.Dir)
	assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.DefaultModel)
	assert.Equal(t, 120, cfg.Gemini.TimeoutSecs)
	assert.Equal(t, 20, cfg.Batch.MaxFiles)
	assert.Equal(t, int64(50), cfg.Batch.MaxFileSizeMB)
	assert.Equal(t, 1, cfg.Batch.Concurrency)
	assert.False(t, cfg.Archive.Enabled)
	assert.Equal(t, "Invoices", cfg.Export.SheetName)
	assert.NotEmpty(t, cfg.CORS.AllowedOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FACTURA_SERVER_PORT", ":9090")
	t.Setenv("FACTURA_GEMINI_DEFAULT_MODEL", "gemini-2.5-pro")
	t.Setenv("FACTURA_BATCH_CONCURRENCY", "4")
	t.Setenv("FACTURA_ARCHIVE_ENABLED", "true")
	t.Setenv("FACTURA_CORS_ALLOWED_ORIGINS", "https://app.example.com, https://staging.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Equal(t, "gemini-2.5-pro", cfg.Gemini.DefaultModel)
	assert.Equal(t, 4, cfg.Batch.Concurrency)
	assert.True(t, cfg.Archive.Enabled)
	assert.Equal(t, []string{"https://app.example.com", "https://staging.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_PlatformPortFallback(t *testing.T) {
	t.Setenv("PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Port)
}
