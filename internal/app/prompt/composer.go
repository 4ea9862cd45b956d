// Package prompt renders the single instruction block sent to the model.
package prompt

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/PabloGalante/studio-agent/internal/app/jsonx"
	"github.com/PabloGalante/studio-agent/internal/domain"
)

// HistoryWindow is how many trailing conversation entries make it into the prompt.
const HistoryWindow = 6

// Role template keys.
const (
	RoleBusiness   = "business"
	RoleMentor     = "mentor"
	RoleCopywriter = "copywriter"
	RoleColleague  = "colleague"
)

//go:embed templates.yaml
var catalogYAML []byte

// Catalog is the closed set of role and task templates.
type Catalog struct {
	DefaultMemory string            `yaml:"default_memory"`
	Roles         map[string]string `yaml:"roles"`
	Tasks         map[string]string `yaml:"tasks"`
	Closing       []string          `yaml:"closing"`
	JSONClosing   string            `yaml:"json_closing"`
}

// LoadCatalog parses the embedded templates and checks that every role the
// composer can select is present.
func LoadCatalog() (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(catalogYAML, &c); err != nil {
		return nil, fmt.Errorf("parsing prompt templates: %w", err)
	}
	for _, role := range []string{RoleBusiness, RoleMentor, RoleCopywriter, RoleColleague} {
		if strings.TrimSpace(c.Roles[role]) == "" {
			return nil, fmt.Errorf("prompt templates: missing role %q", role)
		}
	}
	if strings.TrimSpace(c.Tasks[string(domain.ModeGeneral)]) == "" {
		return nil, fmt.Errorf("prompt templates: missing general task")
	}
	return &c, nil
}

// Input is everything the composer needs for one request.
type Input struct {
	Intent   domain.Intent
	Mode     domain.Mode
	UserText string
	Memory   string
	History  []domain.Turn
}

type Composer struct {
	catalog *Catalog
	memory  string
}

// NewComposer builds a composer. defaultMemory overrides the catalog's
// business description when non-empty.
func NewComposer(defaultMemory string) (*Composer, error) {
	c, err := LoadCatalog()
	if err != nil {
		return nil, err
	}
	mem := strings.TrimSpace(defaultMemory)
	if mem == "" {
		mem = strings.TrimSpace(c.DefaultMemory)
	}
	return &Composer{catalog: c, memory: mem}, nil
}

// Compose renders the prompt block. Same input, same output.
func (c *Composer) Compose(in Input) string {
	structured := jsonx.Requested(in.UserText)

	var b strings.Builder

	if HasEmbeddedInstructions(in.UserText) {
		// The caller brought its own instruction block; ours would conflict.
		b.WriteString(strings.TrimSpace(in.UserText))
		b.WriteString("\n\n")
		c.writeClosing(&b, structured)
		return b.String()
	}

	section(&b, "SYSTEM", c.RoleTemplate(in.Intent, in.Mode))
	section(&b, "STUDIO MEMORY", c.memoryFor(in.Memory))
	section(&b, "CONVERSATION", RenderHistory(in.History))
	section(&b, "TASK", c.TaskTemplate(in.Mode))
	section(&b, "USER", in.UserText)
	c.writeClosing(&b, structured)

	return b.String()
}

// RoleTemplate selects the voice: by content mode when one maps to a voice,
// else by intent.
func (c *Composer) RoleTemplate(intent domain.Intent, mode domain.Mode) string {
	return strings.TrimSpace(c.catalog.Roles[roleKey(intent, mode)])
}

func roleKey(intent domain.Intent, mode domain.Mode) string {
	switch mode {
	case domain.ModeMentor:
		return RoleMentor
	case domain.ModeBusiness, domain.ModeManager, domain.ModeManagerDaily, domain.ModeDM:
		return RoleBusiness
	case domain.ModeStudio, domain.ModeStudioLite, domain.ModeFBCopywriter:
		return RoleCopywriter
	case domain.ModeGeneral:
		return RoleColleague
	}

	switch intent {
	case domain.IntentMentor:
		return RoleMentor
	case domain.IntentBusiness, domain.IntentManager:
		return RoleBusiness
	default:
		return RoleColleague
	}
}

// TaskTemplate returns the mode's task instruction or the generic one.
func (c *Composer) TaskTemplate(mode domain.Mode) string {
	if t, ok := c.catalog.Tasks[string(mode)]; ok && strings.TrimSpace(t) != "" {
		return strings.TrimSpace(t)
	}
	return strings.TrimSpace(c.catalog.Tasks[string(domain.ModeGeneral)])
}

func (c *Composer) memoryFor(memory string) string {
	if m := strings.TrimSpace(memory); m != "" {
		return m
	}
	return c.memory
}

func (c *Composer) writeClosing(b *strings.Builder, structured bool) {
	b.WriteString("IMPORTANT:\n")
	for _, line := range c.catalog.Closing {
		b.WriteString("- ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	if structured {
		b.WriteString("- ")
		b.WriteString(c.catalog.JSONClosing)
		b.WriteString("\n")
	}
}

// RenderHistory keeps the last HistoryWindow entries, oldest first, as
// "ROLE: content". No entries renders as "None".
func RenderHistory(history []domain.Turn) string {
	var lines []string
	start := 0
	if len(history) > HistoryWindow {
		start = len(history) - HistoryWindow
	}
	for _, t := range history[start:] {
		content := strings.TrimSpace(t.Content)
		if content == "" {
			continue
		}
		role := strings.ToUpper(strings.TrimSpace(t.Role))
		if role == "" {
			role = "USER"
		}
		lines = append(lines, role+": "+content)
	}
	if len(lines) == 0 {
		return "None"
	}
	return strings.Join(lines, "\n")
}

var instructionMarker = regexp.MustCompile(`(?im)^\s*(?:#{1,3}\s*)?(SYSTEM|ROLE|TASK|RULES|CONTEXT|INSTRUCTIONS?|OUTPUT(?: FORMAT)?|FORMAT|STUDIO MEMORY|TONE)\s*:`)

// HasEmbeddedInstructions reports whether text already carries its own
// instruction block: at least two distinct section headers like "TASK:".
func HasEmbeddedInstructions(text string) bool {
	seen := map[string]bool{}
	for _, m := range instructionMarker.FindAllStringSubmatch(text, -1) {
		seen[strings.ToUpper(m[1])] = true
		if len(seen) >= 2 {
			return true
		}
	}
	return false
}

func section(b *strings.Builder, title, body string) {
	b.WriteString(title)
	b.WriteString(":\n")
	b.WriteString(strings.TrimSpace(body))
	b.WriteString("\n\n")
}
