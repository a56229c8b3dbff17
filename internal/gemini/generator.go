package gemini

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// DefaultAttemptTimeout bounds a single model call so a stalled model
// counts as that model's failure.
const DefaultAttemptTimeout = 30 * time.Second

// Backend is a single-turn prompt-in/text-out call against one model.
type Backend interface {
	GenerateText(ctx context.Context, model, prompt string) (string, error)
}

// Generator turns a SuggestionRequest into short, de-duplicated suggestion
// lines, trying each configured model in order until one yields output.
type Generator struct {
	backend Backend
	models  []string
	timeout time.Duration
}

// NewGenerator returns a Generator over backend. An empty model list falls
// back to DefaultModels.
func NewGenerator(backend Backend, models []string) *Generator {
	if len(models) == 0 {
		models = DefaultModels
	}
	return &Generator{
		backend: backend,
		models:  append([]string(nil), models...),
		timeout: DefaultAttemptTimeout,
	}
}

// SetAttemptTimeout changes the per-model time limit. Zero disables it.
func (g *Generator) SetAttemptTimeout(d time.Duration) {
	g.timeout = d
}

// Models returns the fallback order in use.
func (g *Generator) Models() []string {
	return append([]string(nil), g.models...)
}

// BuildPrompt composes the single instruction sent to every candidate model.
func BuildPrompt(req SuggestionRequest) string {
	existing := strings.Join(req.ExistingTitles, " | ")
	if existing == "" {
		existing = "(none)"
	}
	mood := req.MoodHint
	if mood == "" {
		mood = "unknown"
	}

	var b strings.Builder
	b.WriteString("You help college students spark small moments of joy.\n")
	fmt.Fprintf(&b, "Return %d SHORT, actionable, inclusive challenges. Max ~12 words each.\n", ClampCount(req.DesiredCount))
	fmt.Fprintf(&b, "Avoid duplicates of: %s\n", existing)
	fmt.Fprintf(&b, "If mood is provided, tailor tone slightly. Mood: %s\n\n", mood)
	b.WriteString("FORMAT STRICTLY:\n")
	b.WriteString("- One challenge per line\n")
	b.WriteString("- No numbering, no bullets, no quotes, no extra commentary\n")
	return b.String()
}

// Generate walks the model list. The first model returning at least one
// usable line wins, even with fewer than DesiredCount items.
func (g *Generator) Generate(ctx context.Context, req SuggestionRequest) (SuggestionResult, error) {
	count := ClampCount(req.DesiredCount)
	prompt := BuildPrompt(req)

	genErr := &GenerationError{}
	for _, model := range g.models {
		if err := ctx.Err(); err != nil {
			genErr.Last = err
			break
		}

		text, err := g.attempt(ctx, model, prompt)
		if err == nil && strings.TrimSpace(text) == "" {
			err = fmt.Errorf("empty response from %s", model)
		}
		if err != nil {
			log.Printf("Suggestion Generator: model %s failed: %v", model, err)
			genErr.Attempts = append(genErr.Attempts, Attempt{Model: model, Err: err})
			genErr.Last = err
			continue
		}

		items := ParseLines(text, count)
		if len(items) > 0 {
			return SuggestionResult{Items: items, SourceModel: model}, nil
		}

		err = fmt.Errorf("no usable lines from %s", model)
		log.Printf("Suggestion Generator: %v", err)
		genErr.Attempts = append(genErr.Attempts, Attempt{Model: model, Err: err})
		genErr.Last = err
	}

	if genErr.Last == nil {
		genErr.Last = errors.New("no models configured")
	}
	return SuggestionResult{}, genErr
}

func (g *Generator) attempt(ctx context.Context, model, prompt string) (string, error) {
	if g.timeout <= 0 {
		return g.backend.GenerateText(ctx, model, prompt)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.backend.GenerateText(attemptCtx, model, prompt)
}
