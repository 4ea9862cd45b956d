package config

import (
	"strings"

	"github.com/spf13/viper"
)

type ClassifierKind string

const (
	ClassifierRegex ClassifierKind = "regex"
	ClassifierModel ClassifierKind = "model"
)

type Config struct {
	Port string

	GeminiAPIKey     string
	GeminiModel      string
	GeminiBaseURL    string
	GeminiAPIVersion string

	UseMockLLM bool
	Classifier ClassifierKind

	Generation GenerationConfig

	// StudioMemory replaces the built-in business description when set.
	StudioMemory string

	Facebook FacebookConfig

	LogLevel string
}

// GenerationConfig holds the pipeline tunables.
type GenerationConfig struct {
	DefaultMaxOutputTokens int
	MinOutputTokens        int
	MaxOutputTokens        int

	ConversationalTemperature float32
	StructuredTemperature     float32
	RepairTemperature         float32

	TruncationThreshold int // runes
	ContinuationTail    int // runes
}

type FacebookConfig struct {
	PageID       string
	AccessToken  string
	GraphURL     string
	GraphVersion string
}

// Configured reports whether both page credentials are present.
func (f FacebookConfig) Configured() bool {
	return f.PageID != "" && f.AccessToken != ""
}

// DefaultGeneration returns the production tunables.
func DefaultGeneration() GenerationConfig {
	return GenerationConfig{
		DefaultMaxOutputTokens:    3000,
		MinOutputTokens:           500,
		MaxOutputTokens:           4096,
		ConversationalTemperature: 0.65,
		StructuredTemperature:     0.3,
		RepairTemperature:         0.1,
		TruncationThreshold:       1100,
		ContinuationTail:          1400,
	}
}

// bindings maps config keys to the env vars that feed them (first one set wins).
var bindings = map[string][]string{
	"port":                            {"STUDIO_PORT", "PORT"},
	"gemini.api_key":                  {"GEMINI_API_KEY"},
	"gemini.model":                    {"GEMINI_MODEL"},
	"gemini.base_url":                 {"GEMINI_BASE_URL"},
	"gemini.api_version":              {"GEMINI_API_VERSION"},
	"use_mock_llm":                    {"STUDIO_USE_MOCK_LLM"},
	"classifier":                      {"STUDIO_INTENT_CLASSIFIER"},
	"generation.default_max_tokens":   {"STUDIO_MAX_OUTPUT_TOKENS"},
	"generation.min_tokens":           {"STUDIO_MIN_OUTPUT_TOKENS"},
	"generation.max_tokens":           {"STUDIO_MAX_OUTPUT_TOKENS_CEILING"},
	"generation.truncation_threshold": {"STUDIO_TRUNCATION_THRESHOLD"},
	"generation.continuation_tail":    {"STUDIO_CONTINUATION_TAIL"},
	"generation.temperature":          {"STUDIO_TEMPERATURE"},
	"generation.json_temperature":     {"STUDIO_JSON_TEMPERATURE"},
	"generation.repair_temperature":   {"STUDIO_REPAIR_TEMPERATURE"},
	"studio_memory":                   {"STUDIO_MEMORY"},
	"facebook.page_id":                {"FACEBOOK_PAGE_ID"},
	"facebook.access_token":           {"FACEBOOK_PAGE_ACCESS_TOKEN"},
	"facebook.graph_url":              {"FACEBOOK_GRAPH_URL"},
	"facebook.graph_version":          {"FACEBOOK_GRAPH_VERSION"},
	"log_level":                       {"LOG_LEVEL"},
}

// New returns a viper instance with env bindings and defaults applied.
// Callers may bind CLI flags onto it before calling FromViper.
func New() *viper.Viper {
	v := viper.New()
	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		_ = v.BindEnv(args...)
	}

	def := DefaultGeneration()
	v.SetDefault("port", "8080")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("use_mock_llm", false)
	v.SetDefault("classifier", string(ClassifierRegex))
	v.SetDefault("generation.default_max_tokens", def.DefaultMaxOutputTokens)
	v.SetDefault("generation.min_tokens", def.MinOutputTokens)
	v.SetDefault("generation.max_tokens", def.MaxOutputTokens)
	v.SetDefault("generation.truncation_threshold", def.TruncationThreshold)
	v.SetDefault("generation.continuation_tail", def.ContinuationTail)
	v.SetDefault("generation.temperature", def.ConversationalTemperature)
	v.SetDefault("generation.json_temperature", def.StructuredTemperature)
	v.SetDefault("generation.repair_temperature", def.RepairTemperature)
	v.SetDefault("facebook.graph_url", "https://graph.facebook.com")
	v.SetDefault("facebook.graph_version", "v23.0")
	v.SetDefault("log_level", "info")
	return v
}

// Load reads all env vars and builds the config
func Load() *Config {
	return FromViper(New())
}

// FromViper builds the config from an already prepared viper instance.
func FromViper(v *viper.Viper) *Config {
	gen := DefaultGeneration()
	gen.DefaultMaxOutputTokens = v.GetInt("generation.default_max_tokens")
	gen.MinOutputTokens = v.GetInt("generation.min_tokens")
	gen.MaxOutputTokens = v.GetInt("generation.max_tokens")
	gen.TruncationThreshold = v.GetInt("generation.truncation_threshold")
	gen.ContinuationTail = v.GetInt("generation.continuation_tail")
	gen.ConversationalTemperature = temperature(v, "generation.temperature", gen.ConversationalTemperature)
	gen.StructuredTemperature = temperature(v, "generation.json_temperature", gen.StructuredTemperature)
	gen.RepairTemperature = temperature(v, "generation.repair_temperature", gen.RepairTemperature)

	// Keep the clamp range sane even with odd env values.
	if gen.MinOutputTokens <= 0 {
		gen.MinOutputTokens = DefaultGeneration().MinOutputTokens
	}
	if gen.MaxOutputTokens < gen.MinOutputTokens {
		gen.MaxOutputTokens = gen.MinOutputTokens
	}

	classifier := ClassifierRegex
	if strings.EqualFold(strings.TrimSpace(v.GetString("classifier")), string(ClassifierModel)) {
		classifier = ClassifierModel
	}

	return &Config{
		Port: v.GetString("port"),

		GeminiAPIKey:     strings.TrimSpace(v.GetString("gemini.api_key")),
		GeminiModel:      v.GetString("gemini.model"),
		GeminiBaseURL:    v.GetString("gemini.base_url"),
		GeminiAPIVersion: v.GetString("gemini.api_version"),

		UseMockLLM: v.GetBool("use_mock_llm"),
		Classifier: classifier,

		Generation: gen,

		StudioMemory: v.GetString("studio_memory"),

		Facebook: FacebookConfig{
			PageID:       strings.TrimSpace(v.GetString("facebook.page_id")),
			AccessToken:  strings.TrimSpace(v.GetString("facebook.access_token")),
			GraphURL:     strings.TrimRight(v.GetString("facebook.graph_url"), "/"),
			GraphVersion: v.GetString("facebook.graph_version"),
		},

		LogLevel: v.GetString("log_level"),
	}
}

// temperature reads a sampling temperature, keeping def when the value is
// outside the 0..2 range the model accepts.
func temperature(v *viper.Viper, key string, def float32) float32 {
	t := v.GetFloat64(key)
	if t < 0 || t > 2 {
		return def
	}
	return float32(t)
}
