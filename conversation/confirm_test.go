package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/dinerec/intent"
	"github.com/smallnest/dinerec/recommend"
)

// cannedModel returns a fixed completion or error.
type cannedModel struct {
	content string
	err     error
}

func (m *cannedModel) GenerateContent(_ context.Context, _ []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: m.content}},
	}, nil
}

func (m *cannedModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestTemplateConfirmationEnglish(t *testing.T) {
	g := NewConfirmationGenerator()

	prefs := recommend.DefaultPreferences()
	prefs.Location = "Chinatown"
	msg := g.Generate(context.Background(), "spicy food in Chinatown", prefs, intent.LangEN)

	assert.Contains(t, msg, "I understand you're looking for")
	assert.Contains(t, msg, "Chinatown")
	assert.Contains(t, msg, "Is this correct?")
}

func TestTemplateConfirmationChinese(t *testing.T) {
	g := NewConfirmationGenerator()

	prefs := recommend.DefaultPreferences()
	prefs.FlavorProfiles = []string{"spicy"}
	msg := g.Generate(context.Background(), "我想吃辣的", prefs, intent.LangZH)

	assert.Contains(t, msg, "这样对吗")
}

func TestGenerateUsesModel(t *testing.T) {
	g := NewConfirmationGenerator(WithConfirmationModel(&cannedModel{
		content: "So you want spicy food around Chinatown, right?",
	}))

	msg := g.Generate(context.Background(), "spicy food", recommend.DefaultPreferences(), intent.LangEN)
	assert.Equal(t, "So you want spicy food around Chinatown, right?", msg)
}

func TestGenerateFallsBackOnModelError(t *testing.T) {
	g := NewConfirmationGenerator(WithConfirmationModel(&cannedModel{
		err: errors.New("model unavailable"),
	}))

	prefs := recommend.DefaultPreferences()
	prefs.Location = "Orchard"
	msg := g.Generate(context.Background(), "dinner", prefs, intent.LangEN)
	assert.Contains(t, msg, "Is this correct?")
	assert.Contains(t, msg, "Orchard")
}

func TestGenerateFallsBackOnEmptyContent(t *testing.T) {
	g := NewConfirmationGenerator(WithConfirmationModel(&cannedModel{content: "   "}))

	msg := g.Generate(context.Background(), "dinner", recommend.DefaultPreferences(), intent.LangEN)
	assert.Contains(t, msg, "Is this correct?")
}
