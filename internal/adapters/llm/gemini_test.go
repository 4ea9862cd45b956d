package llm_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/studio-agent/internal/adapters/llm"
	"github.com/PabloGalante/studio-agent/internal/domain"
)

func newGemini(t *testing.T, h http.HandlerFunc) *llm.GeminiClient {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	client, err := llm.NewGeminiClient(context.Background(), llm.GeminiOptions{
		APIKey:     "test-key",
		Model:      "gemini-test",
		BaseURL:    srv.URL,
		APIVersion: "v1",
	})
	require.NoError(t, err)
	return client
}

func TestGeminiCompleteParsesCandidate(t *testing.T) {
	var gotBody map[string]any
	var gotPath string

	client := newGemini(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Hello "},{"text":"there။"}]},"finishReason":"MAX_TOKENS"}]}`)
	})

	res, err := client.Complete(context.Background(), "prompt text", domain.GenerationConfig{
		Temperature:     0.3,
		MaxOutputTokens: 1200,
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello there။", res.Text)
	assert.Equal(t, domain.FinishLengthLimited, res.Finish)
	assert.Equal(t, "MAX_TOKENS", res.Reason)

	assert.True(t, strings.HasSuffix(gotPath, "/models/gemini-test:generateContent"), gotPath)
	genCfg, ok := gotBody["generationConfig"].(map[string]any)
	require.True(t, ok, "generationConfig missing: %v", gotBody)
	assert.EqualValues(t, 1200, genCfg["maxOutputTokens"])
}

func TestGeminiEmptyCandidatesIsEmptyText(t *testing.T) {
	client := newGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[]}`)
	})

	res, err := client.Complete(context.Background(), "p", domain.GenerationConfig{MaxOutputTokens: 500})
	require.NoError(t, err)
	assert.Empty(t, res.Text)
	assert.Equal(t, domain.FinishOther, res.Finish)
}

func TestGeminiNonSuccessStatusIsUpstreamError(t *testing.T) {
	client := newGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`)
	})

	_, err := client.Complete(context.Background(), "p", domain.GenerationConfig{MaxOutputTokens: 500})
	require.Error(t, err)

	upErr, ok := domain.AsUpstream(err)
	require.True(t, ok, "expected UpstreamError, got %T", err)
	assert.Equal(t, http.StatusTooManyRequests, upErr.Status)
	assert.Equal(t, "Resource has been exhausted", upErr.Message)
}

func TestGeminiUnparseableBodyIsUpstreamError(t *testing.T) {
	client := newGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{not json`)
	})

	_, err := client.Complete(context.Background(), "p", domain.GenerationConfig{MaxOutputTokens: 500})
	require.Error(t, err)

	upErr, ok := domain.AsUpstream(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, upErr.HTTPStatus())
}

func TestNewGeminiClientRequiresKey(t *testing.T) {
	_, err := llm.NewGeminiClient(context.Background(), llm.GeminiOptions{})
	assert.True(t, domain.IsConfiguration(err))
}

func TestNormalizeFinishReason(t *testing.T) {
	assert.Equal(t, domain.FinishNormal, llm.NormalizeFinishReason("STOP"))
	assert.Equal(t, domain.FinishLengthLimited, llm.NormalizeFinishReason("max_tokens"))
	assert.Equal(t, domain.FinishOther, llm.NormalizeFinishReason("SAFETY"))
	assert.Equal(t, domain.FinishOther, llm.NormalizeFinishReason(""))
}

func TestMockLLMReplaysInOrder(t *testing.T) {
	m := llm.NewMockLLM(llm.Reply("one", "STOP"), llm.Fail(500, "down"))

	res, err := m.Complete(context.Background(), "a", domain.GenerationConfig{})
	require.NoError(t, err)
	assert.Equal(t, "one", res.Text)

	_, err = m.Complete(context.Background(), "b", domain.GenerationConfig{})
	assert.Error(t, err)

	res, err = m.Complete(context.Background(), "c", domain.GenerationConfig{})
	require.NoError(t, err)
	assert.Contains(t, res.Text, "Mock reply")

	assert.Len(t, m.Calls(), 3)
}
