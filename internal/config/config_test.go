package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/studio-agent/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("STUDIO_PORT", "")
	t.Setenv("PORT", "")

	cfg := config.Load()
	require.NotNil(t, cfg)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Empty(t, cfg.GeminiAPIKey)
	assert.Equal(t, config.ClassifierRegex, cfg.Classifier)
	assert.Equal(t, config.DefaultGeneration(), cfg.Generation)
	assert.Equal(t, "https://graph.facebook.com", cfg.Facebook.GraphURL)
	assert.False(t, cfg.Facebook.Configured())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", " secret ")
	t.Setenv("PORT", "9000")
	t.Setenv("STUDIO_INTENT_CLASSIFIER", "MODEL")
	t.Setenv("STUDIO_MAX_OUTPUT_TOKENS", "1200")
	t.Setenv("FACEBOOK_PAGE_ID", "123")
	t.Setenv("FACEBOOK_PAGE_ACCESS_TOKEN", "tok")
	t.Setenv("FACEBOOK_GRAPH_URL", "http://graph.local/")

	cfg := config.Load()

	assert.Equal(t, "secret", cfg.GeminiAPIKey)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, config.ClassifierModel, cfg.Classifier)
	assert.Equal(t, 1200, cfg.Generation.DefaultMaxOutputTokens)
	assert.True(t, cfg.Facebook.Configured())
	assert.Equal(t, "http://graph.local", cfg.Facebook.GraphURL)
}

func TestStudioPortWinsOverPort(t *testing.T) {
	t.Setenv("STUDIO_PORT", "7000")
	t.Setenv("PORT", "9000")

	assert.Equal(t, "7000", config.Load().Port)
}

func TestClampRangeStaysOrdered(t *testing.T) {
	t.Setenv("STUDIO_MIN_OUTPUT_TOKENS", "800")
	t.Setenv("STUDIO_MAX_OUTPUT_TOKENS_CEILING", "100")

	cfg := config.Load()
	assert.Equal(t, 800, cfg.Generation.MinOutputTokens)
	assert.Equal(t, 800, cfg.Generation.MaxOutputTokens)
}

func TestTemperaturesFromEnv(t *testing.T) {
	t.Setenv("STUDIO_TEMPERATURE", "0.55")
	t.Setenv("STUDIO_JSON_TEMPERATURE", "0.2")
	t.Setenv("STUDIO_REPAIR_TEMPERATURE", "7")

	gen := config.Load().Generation
	assert.Equal(t, float32(0.55), gen.ConversationalTemperature)
	assert.Equal(t, float32(0.2), gen.StructuredTemperature)
	assert.Equal(t, config.DefaultGeneration().RepairTemperature, gen.RepairTemperature, "out of range keeps the default")
}
