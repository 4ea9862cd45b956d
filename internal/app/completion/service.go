// Package completion runs the response-completion pipeline:
// classify, compose, complete, detect truncation, continue, coerce JSON.
package completion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PabloGalante/studio-agent/internal/app/intent"
	"github.com/PabloGalante/studio-agent/internal/app/jsonx"
	"github.com/PabloGalante/studio-agent/internal/app/prompt"
	"github.com/PabloGalante/studio-agent/internal/config"
	"github.com/PabloGalante/studio-agent/internal/domain"
	"github.com/PabloGalante/studio-agent/internal/observability"
)

// ErrMissingInput is the validation message for an empty request.
const ErrMissingInput = "userMessage or prompt is required"

// Service holds everything one request needs. It keeps no per-request state,
// so a single instance serves concurrent requests.
type Service struct {
	llm        domain.LLMClient
	classifier domain.Classifier
	composer   *prompt.Composer
	continuer  *Continuer
	coercer    *Coercer
	cfg        config.GenerationConfig
	metrics    *observability.Metrics
}

// NewService wires the pipeline. llm may be nil when no credential is
// configured; Generate then reports a ConfigurationError.
func NewService(
	llm domain.LLMClient,
	classifier domain.Classifier,
	composer *prompt.Composer,
	cfg config.GenerationConfig,
	metrics *observability.Metrics,
) *Service {
	if classifier == nil {
		classifier = intent.NewRegexClassifier()
	}
	return &Service{
		llm:        llm,
		classifier: classifier,
		composer:   composer,
		continuer:  NewContinuer(llm, cfg.ContinuationTail, metrics),
		coercer:    NewCoercer(llm, cfg.RepairTemperature, metrics),
		cfg:        cfg,
		metrics:    metrics,
	}
}

// Generate runs the whole pipeline for one request. Stages run strictly in
// sequence; only the continuation and repair sub-calls swallow their errors.
func (s *Service) Generate(ctx context.Context, req domain.Request) (*domain.FinalResponse, error) {
	text := strings.TrimSpace(req.UserText)
	if text == "" {
		return nil, &domain.ValidationError{Message: ErrMissingInput}
	}
	if s.llm == nil {
		return nil, &domain.ConfigurationError{Message: "API key missing"}
	}

	in, mode := intent.Resolve(ctx, s.classifier, req.Mode, text)
	structured := jsonx.Requested(text)

	log := observability.LoggerFromContext(ctx).With(
		"intent", in,
		"mode", mode,
		"structured", structured,
	)
	log.Info("generation started", "history_len", len(req.History))

	promptText := s.composer.Compose(prompt.Input{
		Intent:   in,
		Mode:     mode,
		UserText: text,
		Memory:   req.Memory,
		History:  req.History,
	})

	gen := domain.GenerationConfig{
		Temperature:     s.cfg.ConversationalTemperature,
		MaxOutputTokens: s.ClampTokens(req.MaxOutputTokens),
	}
	if structured {
		gen.Temperature = s.cfg.StructuredTemperature
	}

	start := time.Now()
	res, err := s.llm.Complete(ctx, promptText, gen)
	s.metrics.Completion(observability.KindInitial, err)
	if err != nil {
		log.Error("completion failed", "error", err)
		return nil, fmt.Errorf("initial completion: %w", err)
	}
	log.Info("completion received",
		"finish_reason", res.Reason,
		"chars", len([]rune(res.Text)),
		"elapsed_ms", time.Since(start).Milliseconds())

	if strings.TrimSpace(res.Text) == "" {
		return nil, &domain.EmptyResultError{FinishReason: res.Reason}
	}

	truncated := IsTruncated(res.Text, res.Finish, s.cfg.TruncationThreshold)
	if truncated {
		s.metrics.Truncation()
		log.Info("output looks truncated", "finish_reason", res.Reason)
	}

	out := &domain.FinalResponse{
		Intent:      in,
		Mode:        mode,
		IsTruncated: truncated,
		Structured:  structured,
	}

	// JSON answers get repaired, not continued.
	if truncated && !structured {
		res, out.Continued = s.continuer.Continue(ctx, res, text, gen)
	}

	result := strings.TrimSpace(res.Text)
	if structured {
		coerced := s.coercer.Coerce(ctx, result, gen.MaxOutputTokens)
		result = coerced.JSON
		if !coerced.OK {
			log.Warn("structured output could not be coerced to JSON")
		}
	}

	if result == "" {
		return nil, &domain.EmptyResultError{FinishReason: res.Reason}
	}

	out.Result = result
	out.Finish = res.Finish
	out.FinishReason = res.Reason

	log.Info("generation finished",
		"truncated", out.IsTruncated,
		"continued", out.Continued,
		"finish_reason", out.FinishReason)

	return out, nil
}

// ClampTokens applies the default and the fixed floor/ceiling to a
// caller-requested output budget.
func (s *Service) ClampTokens(requested int) int {
	n := requested
	if n <= 0 {
		n = s.cfg.DefaultMaxOutputTokens
	}
	if n < s.cfg.MinOutputTokens {
		n = s.cfg.MinOutputTokens
	}
	if n > s.cfg.MaxOutputTokens {
		n = s.cfg.MaxOutputTokens
	}
	return n
}
