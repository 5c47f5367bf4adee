package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/dinerec/log"
	"github.com/smallnest/dinerec/tool"
)

// maxToolResultChars caps how much raw tool output is fed to the model.
const maxToolResultChars = 200000

const summarySystemPrompt = `You are an agent that fuses, deduplicates, scores and ranks restaurant candidates. Task: combine the user preferences with the tool search results and output the 5 best matching restaurants.

[Steps]
1) Normalize: convert prices to SGD, map price symbols to ranges, normalize cuisine/flavor/food type, extract occasion clues from review snippets (group-friendly, date, family, quiet).
2) Deduplicate by name plus address or coordinates; for chains keep the branch with the better rating and distance.
3) Hard constraints first:
   - Budget: drop candidates clearly more than 15% over budget_max; with only a price symbol estimate the midpoint; keep but down-score when undecidable.
   - Location: prefer the same district, then widen to the city and note distance.
   - Dietary restrictions (halal, vegetarian): filter strictly.
4) Score 0-100:
   - Match (40%): flavor, food type, restaurant type and occasion fit.
   - Quality (30%): rating and review volume, e.g. score = rating*10 + log1p(reviews_count)*2 capped near 50; recent word-of-mouth consistency adds.
   - Price fit (15%): full marks inside budget; up to 15% over halves it; beyond that zero.
   - Accessibility (15%): distance, open now, easy booking, open late.
   Ties: higher rating with more reviews first, then easier access, then diversity across sub-categories.
5) Give each result 1-2 verifiable sentences on why it matches; call out missing data instead of inventing it.

[Output format, strictly JSON and nothing else]
{
  "recommendations": [
    {
      "name": "...",
      "address": "...",
      "area": "...",
      "cuisine": "Sichuan/Hotpot/BBQ/...",
      "type": "casual/fine dining/...",
      "price_per_person_sgd": "30-50",
      "rating": 4.6,
      "reviews_count": 1234,
      "open_hours_note": "Open late Fri",
      "flavor_match": ["Spicy", "Umami"],
      "purpose_match": ["Friends", "Group-friendly"],
      "why": "...",
      "sources": {"google_maps": "...", "xiaohongshu": "..."}
    }
  ]
}
- Always return exactly 5 entries; with fewer candidates return what exists and say so in why.
- Use null or omit missing fields, never fabricate.
- Never output any text besides the JSON.`

// Summarizer turns raw tool results into a ranked recommendation list.
type Summarizer struct {
	model  llms.Model
	logger log.Logger
}

// SummarizerOption configures the Summarizer.
type SummarizerOption func(*Summarizer)

// WithSummarizerLogger sets the logger.
func WithSummarizerLogger(logger log.Logger) SummarizerOption {
	return func(s *Summarizer) {
		s.logger = logger
	}
}

// NewSummarizer creates a summarizer on top of the given model.
func NewSummarizer(model llms.Model, opts ...SummarizerOption) *Summarizer {
	s := &Summarizer{
		model:  model,
		logger: log.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize fuses the per-tool outputs into a final JSON summary.
func (s *Summarizer) Summarize(ctx context.Context, userInput string, executions []tool.Execution) (string, error) {
	var mapsResults, notesResults any
	for _, exec := range executions {
		switch exec.Tool {
		case tool.NameMapsSearch:
			mapsResults = exec.Output
		case tool.NameNotesSearch:
			notesResults = exec.Output
		}
	}

	userMessage := fmt.Sprintf(
		"User preferences: %s\n\nTool search results: {\n  %q: %s, %q: %s}",
		userInput,
		tool.NameMapsSearch, safeDump(mapsResults),
		tool.NameNotesSearch, safeDump(notesResults),
	)

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, summarySystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userMessage),
	}

	resp, err := s.model.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("summary model call failed: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return "", fmt.Errorf("summary model returned empty content")
	}

	content := resp.Choices[0].Content
	s.logger.Info("summary generated (%d chars)", len(content))
	return content, nil
}

// safeDump serializes a tool output, capped so oversized scrapes cannot
// blow the prompt.
func safeDump(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	s := string(data)
	if len(s) > maxToolResultChars {
		s = s[:maxToolResultChars]
	}
	return s
}
