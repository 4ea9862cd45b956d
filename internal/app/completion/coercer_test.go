package completion_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/studio-agent/internal/adapters/llm"
	"github.com/PabloGalante/studio-agent/internal/app/completion"
	"github.com/PabloGalante/studio-agent/internal/domain"
)

func TestCoerceExtractsFromProse(t *testing.T) {
	mock := llm.NewMockLLM()
	c := completion.NewCoercer(mock, 0.1, nil)

	got := c.Coerce(context.Background(), "Here you go:\n{ \"a\": 1, \"b\": [true, null] }\nThanks!", 1000)

	assert.True(t, got.OK)
	assert.Equal(t, `{"a":1,"b":[true,null]}`, got.JSON)
	assert.Empty(t, mock.Calls(), "no repair needed")
}

func TestCoerceRepairsOnce(t *testing.T) {
	mock := llm.NewMockLLM(llm.Reply("```json\n{\"title\": \"fixed\"}\n```", "STOP"))
	c := completion.NewCoercer(mock, 0.1, nil)

	got := c.Coerce(context.Background(), "{title: broken", 800)

	assert.True(t, got.OK)
	assert.Equal(t, `{"title":"fixed"}`, got.JSON)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.True(t, strings.HasSuffix(calls[0].Prompt, "{title: broken"))
	assert.Equal(t, 800, calls[0].Config.MaxOutputTokens)
}

func TestCoerceIrreparableFallsBackToRepairedText(t *testing.T) {
	mock := llm.NewMockLLM(llm.Reply("  sorry, cannot do that  ", "STOP"))
	c := completion.NewCoercer(mock, 0.1, nil)

	got := c.Coerce(context.Background(), "{nope", 800)

	assert.False(t, got.OK)
	assert.Equal(t, "sorry, cannot do that", got.JSON)
	assert.Len(t, mock.Calls(), 1, "exactly one repair attempt")
}

func TestCoerceRepairFailureFallsBackToOriginal(t *testing.T) {
	mock := llm.NewMockLLM(llm.Fail(500, "boom"))
	c := completion.NewCoercer(mock, 0.1, nil)

	got := c.Coerce(context.Background(), "  {nope  ", 800)

	assert.False(t, got.OK)
	assert.Equal(t, "{nope", got.JSON)
}

func TestContinuerPromptCarriesTail(t *testing.T) {
	c := completion.NewContinuer(llm.NewMockLLM(), 10, nil)

	p := c.Prompt("0123456789ABCDEFGHIJ", "the request")
	assert.Contains(t, p, "ABCDEFGHIJ")
	assert.NotContains(t, p, "0123456789")
	assert.Contains(t, p, "the request")
	assert.Contains(t, p, "Do not repeat")
}

func TestContinuerEmptyContinuationKeepsOriginal(t *testing.T) {
	mock := llm.NewMockLLM(llm.Reply("   ", "STOP"))
	c := completion.NewContinuer(mock, 0, nil)

	orig := domain.CompletionResult{Text: "partial", Finish: domain.FinishLengthLimited, Reason: "MAX_TOKENS"}
	got, ok := c.Continue(context.Background(), orig, "req", domain.GenerationConfig{MaxOutputTokens: 500})

	assert.False(t, ok)
	assert.Equal(t, orig, got)
}
