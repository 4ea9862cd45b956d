package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/PabloGalante/studio-agent/internal/domain"
)

// MockReply is one scripted answer: either a result or an error.
type MockReply struct {
	Result domain.CompletionResult
	Err    error
}

// MockCall records what the pipeline sent.
type MockCall struct {
	Prompt string
	Config domain.GenerationConfig
}

// MockLLM replays queued replies in order. When the queue is empty it
// echoes the prompt's size, which is enough for local development.
type MockLLM struct {
	mu      sync.Mutex
	replies []MockReply
	calls   []MockCall
}

func NewMockLLM(replies ...MockReply) *MockLLM {
	return &MockLLM{replies: replies}
}

// Reply is a shorthand for a successful scripted completion.
func Reply(text, reason string) MockReply {
	return MockReply{Result: domain.CompletionResult{
		Text:   text,
		Finish: NormalizeFinishReason(reason),
		Reason: reason,
	}}
}

// Fail is a shorthand for a scripted upstream failure.
func Fail(status int, msg string) MockReply {
	return MockReply{Err: &domain.UpstreamError{Status: status, Message: msg}}
}

func (m *MockLLM) Enqueue(replies ...MockReply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, replies...)
}

func (m *MockLLM) Complete(ctx context.Context, prompt string, cfg domain.GenerationConfig) (domain.CompletionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{Prompt: prompt, Config: cfg})

	if err := ctx.Err(); err != nil {
		return domain.CompletionResult{}, &domain.UpstreamError{Message: err.Error(), Err: err}
	}

	if len(m.replies) == 0 {
		return domain.CompletionResult{
			Text:   fmt.Sprintf("Mock reply (%d prompt characters).", len([]rune(prompt))),
			Finish: domain.FinishNormal,
			Reason: "STOP",
		}, nil
	}

	next := m.replies[0]
	m.replies = m.replies[1:]
	return next.Result, next.Err
}

// Calls returns a copy of the recorded calls.
func (m *MockLLM) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}
