// Package intent maps free-form studio messages to one of the closed
// intent labels.
package intent

import (
	"context"
	"regexp"
	"strings"

	"github.com/PabloGalante/studio-agent/internal/domain"
)

type rule struct {
	intent  domain.Intent
	pattern *regexp.Regexp
}

// rules are evaluated in order and the first match wins.
// Keyword lists mix English and Burmese on purpose: clients write both.
var rules = []rule{
	{
		intent:  domain.IntentMentor,
		pattern: regexp.MustCompile(`(?i)(mentor|ဓာတ်ပုံဆရာ|ဘယ်သူ|လေ့လာ|inspire|inspiration)`),
	},
	{
		intent:  domain.IntentBusiness,
		pattern: regexp.MustCompile(`(?i)(ဈေး|price|package|booking|ရက်|date|ဘယ်နေ့|client|deposit)`),
	},
	{
		intent:  domain.IntentManager,
		pattern: regexp.MustCompile(`(?i)(ဒီနေ့|ဘာလုပ်|plan|လုပ်သင့်|today|priority)`),
	},
}

// RegexClassifier is the deterministic keyword classifier.
type RegexClassifier struct{}

func NewRegexClassifier() *RegexClassifier {
	return &RegexClassifier{}
}

// Classify implements domain.Classifier. It never fails and never calls out.
func (RegexClassifier) Classify(_ context.Context, text string) domain.Intent {
	return Detect(text)
}

// Detect returns the first intent whose keywords appear in text, or general.
func Detect(text string) domain.Intent {
	t := strings.ToLower(text)
	for _, r := range rules {
		if r.pattern.MatchString(t) {
			return r.intent
		}
	}
	return domain.IntentGeneral
}

// Resolve picks the intent and effective mode for a request. An explicit
// mode skips classification entirely.
func Resolve(ctx context.Context, c domain.Classifier, mode domain.Mode, text string) (domain.Intent, domain.Mode) {
	if mode != "" {
		return mode.Intent(), mode
	}
	in := c.Classify(ctx, text)
	return in, domain.Mode(in)
}
