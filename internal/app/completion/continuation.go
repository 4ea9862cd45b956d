package completion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PabloGalante/studio-agent/internal/domain"
	"github.com/PabloGalante/studio-agent/internal/observability"
)

// DefaultContinuationTail is how much of the existing answer, in runes, the
// continuation prompt carries.
const DefaultContinuationTail = 1400

// requestPreview bounds how much of the original request is repeated.
const requestPreview = 600

// Continuer asks the model, once, for the missing remainder of a cut-off answer.
type Continuer struct {
	llm     domain.LLMClient
	tail    int
	metrics *observability.Metrics
}

func NewContinuer(llm domain.LLMClient, tail int, metrics *observability.Metrics) *Continuer {
	if tail <= 0 {
		tail = DefaultContinuationTail
	}
	return &Continuer{llm: llm, tail: tail, metrics: metrics}
}

// Continue returns the original followed by the continuation. On any
// failure it returns the original unchanged and false.
func (c *Continuer) Continue(
	ctx context.Context,
	original domain.CompletionResult,
	userText string,
	gen domain.GenerationConfig,
) (domain.CompletionResult, bool) {
	log := observability.LoggerFromContext(ctx).With("stage", "continuation")
	start := time.Now()

	res, err := c.llm.Complete(ctx, c.Prompt(original.Text, userText), gen)
	c.metrics.Completion(observability.KindContinuation, err)
	if err != nil {
		log.Warn("continuation failed, returning truncated result", "error", err)
		return original, false
	}

	rest := strings.TrimSpace(res.Text)
	if rest == "" {
		log.Warn("continuation returned no text", "finish_reason", res.Reason)
		return original, false
	}

	log.Info("continuation appended",
		"added_chars", len([]rune(rest)),
		"finish_reason", res.Reason,
		"elapsed_ms", time.Since(start).Milliseconds())

	return domain.CompletionResult{
		Text:   strings.TrimRight(original.Text, " \t\r\n") + "\n" + rest,
		Finish: res.Finish,
		Reason: res.Reason,
	}, true
}

// Prompt renders the continuation request for the given partial answer.
func (c *Continuer) Prompt(partial, userText string) string {
	return fmt.Sprintf(`You were answering the request below and your answer was cut off.

ORIGINAL REQUEST:
%s

END OF YOUR ANSWER SO FAR:
%s

Continue from exactly where it stops.
- Output ONLY the missing remainder.
- Do not repeat any line that is already written.
- Keep the same tone, language and format.
- Complete every open section, list and sentence.
`, headRunes(strings.TrimSpace(userText), requestPreview), tailRunes(strings.TrimSpace(partial), c.tail))
}

func tailRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

func headRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
