package domain

import "context"

// LLMClient defines how the core application interacts with an LLM service.
// Implementations return an *UpstreamError when the service answers with a
// non-success status or an unparseable body. An empty candidate list is not
// an error: it comes back as empty text.
type LLMClient interface {
	Complete(ctx context.Context, prompt string, cfg GenerationConfig) (CompletionResult, error)
}

// Classifier maps free-form text to an Intent.
type Classifier interface {
	Classify(ctx context.Context, text string) Intent
}

// Publisher posts finished text to a social platform and returns the post id.
type Publisher interface {
	Publish(ctx context.Context, text string) (string, error)
}
