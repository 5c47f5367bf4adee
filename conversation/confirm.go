package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/dinerec/intent"
	"github.com/smallnest/dinerec/log"
	"github.com/smallnest/dinerec/recommend"
)

// ConfirmationGenerator phrases the "is this what you meant?" message
// shown before a recommendation task is launched. An LLM rewrite is
// optional; without one (or on failure) a fixed template is used.
type ConfirmationGenerator struct {
	model  llms.Model
	logger log.Logger
}

// ConfirmationOption configures the generator.
type ConfirmationOption func(*ConfirmationGenerator)

// WithConfirmationModel enables LLM phrasing of the confirmation.
func WithConfirmationModel(model llms.Model) ConfirmationOption {
	return func(g *ConfirmationGenerator) {
		g.model = model
	}
}

// WithConfirmationLogger sets the logger.
func WithConfirmationLogger(logger log.Logger) ConfirmationOption {
	return func(g *ConfirmationGenerator) {
		g.logger = logger
	}
}

// NewConfirmationGenerator creates a generator.
func NewConfirmationGenerator(opts ...ConfirmationOption) *ConfirmationGenerator {
	g := &ConfirmationGenerator{
		logger: log.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a confirmation message for the extracted
// preferences, in the conversation's language.
func (g *ConfirmationGenerator) Generate(ctx context.Context, query string, prefs recommend.Preferences, language string) string {
	summary := intent.DescribePreferences(&prefs, language)
	fallback := templateConfirmation(summary, language)

	if g.model == nil {
		return fallback
	}

	prompt := fmt.Sprintf(
		"The user asked: %q. You extracted these dining preferences: %s. "+
			"Write one short, friendly message in %s that restates the preferences "+
			"and asks the user to confirm before searching. Do not add new preferences.",
		query, summary, languageName(language))
	resp, err := llms.GenerateFromSinglePrompt(ctx, g.model, prompt,
		llms.WithTemperature(0.7))
	if err != nil {
		g.logger.Warn("confirmation generation failed, using template: %v", err)
		return fallback
	}
	resp = strings.TrimSpace(resp)
	if resp == "" {
		return fallback
	}
	return resp
}

func templateConfirmation(summary, language string) string {
	if language == intent.LangZH {
		return fmt.Sprintf("根据您的需求，我理解您想找：%s。这样对吗？", summary)
	}
	return fmt.Sprintf("Based on your request, I understand you're looking for: %s. Is this correct?", summary)
}

func languageName(language string) string {
	if language == intent.LangZH {
		return "Chinese"
	}
	return "English"
}
