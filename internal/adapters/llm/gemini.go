package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/PabloGalante/studio-agent/internal/domain"
	"google.golang.org/genai"
)

type GeminiClient struct {
	client    *genai.Client
	modelName string
}

// GeminiOptions configures the Gemini API client. BaseURL and APIVersion
// are optional and fall back to the genai defaults.
type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	APIVersion string
	HTTPClient *http.Client
}

// NewGeminiClient creates an LLMClient backed by the Gemini API (API key auth).
func NewGeminiClient(ctx context.Context, opts GeminiOptions) (*GeminiClient, error) {
	if opts.APIKey == "" {
		return nil, &domain.ConfigurationError{Message: "API key missing"}
	}

	modelName := opts.Model
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    opts.BaseURL,
			APIVersion: opts.APIVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	return &GeminiClient{
		client:    client,
		modelName: modelName,
	}, nil
}

// Complete implements domain.LLMClient.
func (g *GeminiClient) Complete(
	ctx context.Context,
	prompt string,
	gen domain.GenerationConfig,
) (domain.CompletionResult, error) {
	temp := gen.Temperature

	cfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: int32(gen.MaxOutputTokens),
	}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), cfg)
	if err != nil {
		return domain.CompletionResult{}, toUpstreamError(err)
	}

	// No candidates is empty text, not an error; the pipeline decides.
	if len(res.Candidates) == 0 || res.Candidates[0] == nil {
		return domain.CompletionResult{Finish: domain.FinishOther}, nil
	}

	cand := res.Candidates[0]
	return domain.CompletionResult{
		Text:   candidateText(cand),
		Finish: NormalizeFinishReason(string(cand.FinishReason)),
		Reason: string(cand.FinishReason),
	}, nil
}

// NormalizeFinishReason maps the upstream reason onto the closed FinishSignal set.
func NormalizeFinishReason(reason string) domain.FinishSignal {
	switch strings.TrimSpace(strings.ToUpper(reason)) {
	case string(genai.FinishReasonStop):
		return domain.FinishNormal
	case string(genai.FinishReasonMaxTokens):
		return domain.FinishLengthLimited
	default:
		return domain.FinishOther
	}
}

func candidateText(c *genai.Candidate) string {
	if c.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range c.Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		sb.WriteString(p.Text)
	}
	return sb.String()
}

func toUpstreamError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &domain.UpstreamError{Message: err.Error(), Err: err}
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		msg := strings.TrimSpace(apiErr.Message)
		if msg == "" {
			msg = "Gemini API error"
		}
		return &domain.UpstreamError{Status: apiErr.Code, Message: msg, Err: err}
	}

	// Transport failures and undecodable bodies.
	return &domain.UpstreamError{
		Status:  http.StatusBadGateway,
		Message: fmt.Sprintf("gemini generate content: %v", err),
		Err:     err,
	}
}
