package intent

import (
	"context"
	"strings"
	"unicode"

	"github.com/PabloGalante/studio-agent/internal/domain"
	"github.com/PabloGalante/studio-agent/internal/observability"
)

const classifyPrompt = `Classify the message for a photography studio assistant.
Answer with exactly one word from this list: mentor, business, manager, general.

- mentor: learning photography, light, composition, inspiration, famous photographers
- business: prices, packages, bookings, dates, clients
- manager: what to do today, plans, priorities
- general: anything else

Message:
`

// ModelClassifier asks the model for the label at zero temperature.
// Any failure or unexpected answer falls back to general.
type ModelClassifier struct {
	llm     domain.LLMClient
	metrics *observability.Metrics
}

func NewModelClassifier(llm domain.LLMClient, metrics *observability.Metrics) *ModelClassifier {
	return &ModelClassifier{llm: llm, metrics: metrics}
}

func (c *ModelClassifier) Classify(ctx context.Context, text string) domain.Intent {
	log := observability.LoggerFromContext(ctx)

	res, err := c.llm.Complete(ctx, classifyPrompt+text, domain.GenerationConfig{
		Temperature:     0,
		MaxOutputTokens: 16,
	})
	c.metrics.Completion(observability.KindClassify, err)
	if err != nil {
		log.Warn("intent classification call failed, using general", "error", err)
		return domain.IntentGeneral
	}

	return ParseLabel(res.Text)
}

// ParseLabel reads a model answer like `"Business."` as an Intent.
func ParseLabel(raw string) domain.Intent {
	label := strings.TrimFunc(strings.ToLower(strings.TrimSpace(raw)), func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r) || r == '`'
	})
	if in, ok := domain.ParseIntent(label); ok {
		return in
	}
	return domain.IntentGeneral
}
