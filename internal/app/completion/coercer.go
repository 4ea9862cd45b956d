package completion

import (
	"context"
	"strings"

	"github.com/PabloGalante/studio-agent/internal/app/jsonx"
	"github.com/PabloGalante/studio-agent/internal/domain"
	"github.com/PabloGalante/studio-agent/internal/observability"
)

const repairPrompt = `The text below was supposed to be valid JSON but it is not.
Return ONLY valid JSON that preserves the intended meaning, keys and values.
No markdown, no code fences, no comments, nothing before or after the JSON.

TEXT:
`

// Coerced is the outcome of structured-output coercion. When OK is false,
// JSON holds the best-effort raw text instead.
type Coerced struct {
	OK   bool
	JSON string
}

// Coercer turns model output into minimized JSON, with one repair call.
type Coercer struct {
	llm         domain.LLMClient
	temperature float32
	metrics     *observability.Metrics
}

func NewCoercer(llm domain.LLMClient, repairTemperature float32, metrics *observability.Metrics) *Coercer {
	return &Coercer{llm: llm, temperature: repairTemperature, metrics: metrics}
}

// Coerce never fails: an irreparable answer comes back trimmed with OK=false.
func (c *Coercer) Coerce(ctx context.Context, text string, maxTokens int) Coerced {
	log := observability.LoggerFromContext(ctx).With("stage", "coerce_json")

	if out, src, ok := jsonx.Extract(text); ok {
		c.metrics.JSONCoercion(string(src))
		return Coerced{OK: true, JSON: out}
	}

	log.Info("model output is not valid JSON, requesting repair")

	res, err := c.llm.Complete(ctx, repairPrompt+strings.TrimSpace(text), domain.GenerationConfig{
		Temperature:     c.temperature,
		MaxOutputTokens: maxTokens,
	})
	c.metrics.Completion(observability.KindRepair, err)
	if err != nil {
		log.Warn("json repair call failed, returning raw text", "error", err)
		c.metrics.JSONCoercion(observability.CoercionFallback)
		return Coerced{JSON: strings.TrimSpace(text)}
	}

	if out, _, ok := jsonx.Extract(res.Text); ok {
		c.metrics.JSONCoercion(observability.CoercionRepaired)
		return Coerced{OK: true, JSON: out}
	}

	log.Warn("json repair did not produce valid JSON, returning repaired text")
	c.metrics.JSONCoercion(observability.CoercionFallback)
	return Coerced{JSON: strings.TrimSpace(res.Text)}
}
