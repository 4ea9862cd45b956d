package intent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PabloGalante/studio-agent/internal/adapters/llm"
	"github.com/PabloGalante/studio-agent/internal/domain"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		text string
		want domain.Intent
	}{
		{name: "burmese price question", text: "ဈေးနှုန်း ဘယ်လောက်လဲ", want: domain.IntentBusiness},
		{name: "english booking", text: "Can I change my BOOKING?", want: domain.IntentBusiness},
		{name: "mentor keyword", text: "Who should I study? I need inspiration", want: domain.IntentMentor},
		{name: "burmese learning", text: "အလင်းအကြောင်း လေ့လာချင်တယ်", want: domain.IntentMentor},
		{name: "manager today", text: "ဒီနေ့ ဘာလုပ်ရမလဲ", want: domain.IntentManager},
		{name: "manager plan", text: "make a plan for the week", want: domain.IntentManager},
		{name: "booking a photographer", text: "book a photographer for our date", want: domain.IntentBusiness},
		{name: "composition price", text: "price for a family composition shoot", want: domain.IntentBusiness},
		{name: "nothing matches", text: "hello there", want: domain.IntentGeneral},
		{name: "empty", text: "", want: domain.IntentGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.text))
		})
	}
}

func TestDetectPrecedence(t *testing.T) {
	// mentor > business > manager on the same input
	assert.Equal(t, domain.IntentMentor, Detect("mentor: price plan"))
	assert.Equal(t, domain.IntentBusiness, Detect("price plan"))
	assert.Equal(t, domain.IntentManager, Detect("plan"))
}

func TestDetectIsDeterministic(t *testing.T) {
	text := "package booking ဒီနေ့"
	first := Detect(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Detect(text))
	}
}

func TestResolveOverrideSkipsClassification(t *testing.T) {
	mock := llm.NewMockLLM()
	c := NewModelClassifier(mock, nil)

	in, mode := Resolve(context.Background(), c, domain.ModeFBCopywriter, "mentor me")
	assert.Equal(t, domain.IntentBusiness, in)
	assert.Equal(t, domain.ModeFBCopywriter, mode)
	assert.Empty(t, mock.Calls(), "override must not call the model")
}

func TestResolveClassifies(t *testing.T) {
	in, mode := Resolve(context.Background(), NewRegexClassifier(), "", "price?")
	assert.Equal(t, domain.IntentBusiness, in)
	assert.Equal(t, domain.ModeBusiness, mode)
}

func TestModelClassifier(t *testing.T) {
	mock := llm.NewMockLLM(
		llm.Reply(" Mentor.\n", "STOP"),
		llm.Reply("I think it is about pricing", "STOP"),
		llm.Fail(503, "unavailable"),
	)
	c := NewModelClassifier(mock, nil)
	ctx := context.Background()

	assert.Equal(t, domain.IntentMentor, c.Classify(ctx, "a"))
	assert.Equal(t, domain.IntentGeneral, c.Classify(ctx, "b"))
	assert.Equal(t, domain.IntentGeneral, c.Classify(ctx, "c"))

	calls := mock.Calls()
	assert.Len(t, calls, 3)
	assert.Zero(t, calls[0].Config.Temperature)
}

func TestParseLabel(t *testing.T) {
	assert.Equal(t, domain.IntentBusiness, ParseLabel("`business`"))
	assert.Equal(t, domain.IntentManager, ParseLabel(`"MANAGER"`))
	assert.Equal(t, domain.IntentGeneral, ParseLabel(""))
	assert.Equal(t, domain.IntentGeneral, ParseLabel("sales"))
}
