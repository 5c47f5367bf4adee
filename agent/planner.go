package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/dinerec/log"
	"github.com/smallnest/dinerec/tool"
)

const plannerSystemPrompt = `You are an agent that turns a dining request into search tool calls. The input may be structured fields or free text. Your only output is which tools to call and the query for each call.

[Available tools]
1) gmap.search (Google Maps): candidate restaurants with ratings, price levels, reviews and opening hours. Parameter: query:string.
2) xhs.search (Xiaohongshu): word-of-mouth notes about taste, vibe and scene. Parameter: query:string.

[Input fields]
May include restaurant_type, flavor_profile, dining_purpose, budget_range (per person, SGD), location and food_type.

[Output rules]
- Output only the tool calls, nothing else.
- When restaurant_type or food_type has several values, call gmap.search and xhs.search once per value.
- When information is missing, build the most reasonable keyword combination from what is given. Never ask follow-up questions.
- If you cannot use native tool calls, answer with a JSON array of the form:
[
  {"function_name": "gmap.search", "parameters": {"query": "Chinatown Hotpot buffet"}},
  {"function_name": "xhs.search", "parameters": {"query": "新加坡 Chinatown 川菜 辣 朋友聚餐 人均 20-60"}}
]`

// plannerToolDefs declares the two search tools to the model.
var plannerToolDefs = []llms.Tool{
	{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        tool.NameMapsSearch,
			Description: "Search Google Maps for candidate restaurants: names, ratings, price levels, reviews, opening hours.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "Search keywords combining location, food type and restaurant type, e.g. \"Chinatown Hotpot buffet\".",
					},
				},
				"required":             []string{"query"},
				"additionalProperties": false,
			},
		},
	},
	{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        tool.NameNotesSearch,
			Description: "Search Xiaohongshu for real dining notes about taste, vibe and occasion fit.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "Mixed-language keywords covering city or district, cuisine, flavor, occasion and budget, e.g. \"新加坡 Chinatown 川菜 辣 朋友聚餐 人均 20-60\".",
					},
				},
				"required":             []string{"query"},
				"additionalProperties": false,
			},
		},
	},
}

// Planner asks a model which search tools to run for a dining request.
type Planner struct {
	model  llms.Model
	logger log.Logger
}

// PlannerOption configures the Planner.
type PlannerOption func(*Planner)

// WithPlannerLogger sets the logger.
func WithPlannerLogger(logger log.Logger) PlannerOption {
	return func(p *Planner) {
		p.logger = logger
	}
}

// NewPlanner creates a planner on top of the given model.
func NewPlanner(model llms.Model, opts ...PlannerOption) *Planner {
	p := &Planner{
		model:  model,
		logger: log.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan returns the ordered tool calls for the user input. An empty
// plan is not an error; the pipeline reports it as "None".
func (p *Planner) Plan(ctx context.Context, userInput string) ([]tool.Call, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, plannerSystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userInput),
	}

	resp, err := p.model.GenerateContent(ctx, messages,
		llms.WithTools(plannerToolDefs),
		llms.WithTemperature(0.2),
	)
	if err != nil {
		return nil, fmt.Errorf("planner model call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("planner returned no choices")
	}
	choice := resp.Choices[0]

	// Native tool calls win over content parsing.
	if len(choice.ToolCalls) > 0 {
		calls := make([]tool.Call, 0, len(choice.ToolCalls))
		for _, tc := range choice.ToolCalls {
			if tc.FunctionCall == nil {
				continue
			}
			params := map[string]any{}
			if tc.FunctionCall.Arguments != "" {
				if err := json.Unmarshal([]byte(tc.FunctionCall.Arguments), &params); err != nil {
					p.logger.Warn("failed to parse tool call arguments for %s: %v", tc.FunctionCall.Name, err)
					params = map[string]any{}
				}
			}
			calls = append(calls, tool.Call{Name: tc.FunctionCall.Name, Parameters: params})
		}
		p.logger.Info("planner returned %d tool calls", len(calls))
		return calls, nil
	}

	return p.parseContentPlan(choice.Content), nil
}

// parseContentPlan handles models that answer with a JSON array in the
// message content instead of native tool calls.
func (p *Planner) parseContentPlan(content string) []tool.Call {
	text := strings.TrimSpace(content)
	if !strings.HasPrefix(text, "[") || !strings.HasSuffix(text, "]") {
		p.logger.Warn("planner output could not be parsed into tool calls")
		return nil
	}

	var items []struct {
		FunctionName string         `json:"function_name"`
		Name         string         `json:"name"`
		Parameters   map[string]any `json:"parameters"`
	}
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		p.logger.Warn("failed to parse planner JSON array: %v", err)
		return nil
	}

	var calls []tool.Call
	for _, item := range items {
		name := item.FunctionName
		if name == "" {
			name = item.Name
		}
		if name == "" {
			continue
		}
		params := item.Parameters
		if params == nil {
			params = map[string]any{}
		}
		calls = append(calls, tool.Call{Name: name, Parameters: params})
	}
	p.logger.Info("planner returned JSON array with %d items", len(calls))
	return calls
}
