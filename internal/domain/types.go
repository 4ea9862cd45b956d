package domain

import "strings"

// Intent is the closed classification label that drives role selection.
type Intent string

const (
	IntentMentor   Intent = "mentor"
	IntentBusiness Intent = "business"
	IntentManager  Intent = "manager"
	IntentGeneral  Intent = "general"
)

// Intents lists every valid Intent in classification order.
var Intents = []Intent{IntentMentor, IntentBusiness, IntentManager, IntentGeneral}

// ParseIntent returns the Intent named by s, if any.
func ParseIntent(s string) (Intent, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, in := range Intents {
		if string(in) == s {
			return in, true
		}
	}
	return "", false
}

// Mode is a client-supplied override of intent and content voice.
// It is a superset of Intent.
type Mode string

const (
	ModeMentor       Mode = "mentor"
	ModeBusiness     Mode = "business"
	ModeManager      Mode = "manager"
	ModeGeneral      Mode = "general"
	ModeDM           Mode = "dm"
	ModeManagerDaily Mode = "manager_daily"
	ModeStudio       Mode = "studio"
	ModeStudioLite   Mode = "studio_lite"
	ModeFBCopywriter Mode = "fb_copywriter"
)

// NormalizeMode folds case and separators so "FB-Copywriter" becomes "fb_copywriter".
func NormalizeMode(s string) Mode {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	return Mode(s)
}

// Intent maps a mode to the closed intent it implies.
func (m Mode) Intent() Intent {
	switch m {
	case ModeMentor:
		return IntentMentor
	case ModeBusiness, ModeDM, ModeStudio, ModeStudioLite, ModeFBCopywriter:
		return IntentBusiness
	case ModeManager, ModeManagerDaily:
		return IntentManager
	default:
		return IntentGeneral
	}
}

// Turn is one entry of the client-held conversation transcript.
type Turn struct {
	Role    string
	Content string
}

// FinishSignal is the normalized reason a completion stopped.
type FinishSignal string

const (
	FinishNormal        FinishSignal = "NORMAL"
	FinishLengthLimited FinishSignal = "LENGTH_LIMITED"
	FinishOther         FinishSignal = "OTHER"
)

// GenerationConfig carries the per-call model tunables.
type GenerationConfig struct {
	Temperature     float32
	MaxOutputTokens int
}

// CompletionResult is one completion plus its termination signal.
// Reason keeps the upstream's raw finish reason (e.g. "MAX_TOKENS").
type CompletionResult struct {
	Text   string
	Finish FinishSignal
	Reason string
}

// Request is the request-scoped input to the generation pipeline.
type Request struct {
	UserText        string
	Mode            Mode // empty means "classify"
	MaxOutputTokens int  // 0 means "use the default"
	History         []Turn
	Memory          string
}

// FinalResponse is the only externally visible output on success.
type FinalResponse struct {
	Intent       Intent
	Mode         Mode
	Result       string
	IsTruncated  bool
	Continued    bool
	Structured   bool
	Finish       FinishSignal
	FinishReason string
}
