package intent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/smallnest/dinerec/log"
	"github.com/smallnest/dinerec/recommend"
	"github.com/smallnest/dinerec/store"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// LLMClassifier classifies messages with an OpenAI-compatible chat API
// forced into JSON mode. API and parsing failures degrade to a Chat
// response with an apology, never an error, so the conversation keeps
// moving.
type LLMClassifier struct {
	client  *openai.Client
	model   string
	baseURL string
	logger  log.Logger
}

// LLMOption configures the LLMClassifier.
type LLMOption func(*LLMClassifier)

// WithLLMModel sets the chat model name.
func WithLLMModel(model string) LLMOption {
	return func(c *LLMClassifier) {
		c.model = model
	}
}

// WithLLMBaseURL points the client at an OpenAI-compatible endpoint
// such as Groq or a local server.
func WithLLMBaseURL(baseURL string) LLMOption {
	return func(c *LLMClassifier) {
		c.baseURL = baseURL
	}
}

// WithLLMLogger sets the logger.
func WithLLMLogger(logger log.Logger) LLMOption {
	return func(c *LLMClassifier) {
		c.logger = logger
	}
}

// NewLLMClassifier creates a classifier. An empty apiKey falls back to
// the OPENAI_API_KEY environment variable.
func NewLLMClassifier(apiKey string, opts ...LLMOption) (*LLMClassifier, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("api key is required (set OPENAI_API_KEY)")
	}

	c := &LLMClassifier{
		model:  DefaultModel,
		logger: log.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	cfg := openai.DefaultConfig(apiKey)
	if c.baseURL != "" {
		cfg.BaseURL = c.baseURL
	}
	c.client = openai.NewClientWithConfig(cfg)
	return c, nil
}

// wireResult mirrors the JSON contract the system prompt demands.
type wireResult struct {
	Intent         string                 `json:"intent"`
	Reply          string                 `json:"reply"`
	Confidence     float64                `json:"confidence"`
	Preferences    *recommend.Preferences `json:"preferences"`
	ProfileUpdates *ProfileUpdates        `json:"profile_updates"`
}

// Classify sends the message plus recent history to the model and
// parses the JSON verdict.
func (c *LLMClassifier) Classify(ctx context.Context, req Request) (*Response, error) {
	language := ConversationLanguage(req.Message, req.History)

	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: buildSystemPrompt(language, req.Profile, req.InConfirmation, req.PendingPreferences),
		},
	}
	history := req.History
	if len(history) > MaxHistoryTurns {
		history = history[len(history)-MaxHistoryTurns:]
	}
	for _, msg := range history {
		role := openai.ChatMessageRoleUser
		if msg.Role == store.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Message,
	})

	body := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0.7,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, body)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "response_format") {
		// Some OpenAI-compatible backends reject JSON mode.
		c.logger.Warn("model rejected response_format, retrying without it: %v", err)
		body.ResponseFormat = nil
		resp, err = c.client.CreateChatCompletion(ctx, body)
	}
	if err != nil {
		c.logger.Error("chat completion failed: %v", err)
		return &Response{
			Intent:     Chat,
			Reply:      apologyUnavailable(language),
			Confidence: 0.3,
		}, nil
	}
	if len(resp.Choices) == 0 {
		c.logger.Error("chat completion returned no choices")
		return &Response{
			Intent:     Chat,
			Reply:      apologyUnavailable(language),
			Confidence: 0.3,
		}, nil
	}

	return c.parse(resp.Choices[0].Message.Content, language, req.InConfirmation), nil
}

func (c *LLMClassifier) parse(content, language string, inConfirmation bool) *Response {
	var result wireResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		// Not JSON: salvage the plain-text reply and guess the intent
		// from keywords.
		c.logger.Warn("classifier output is not JSON: %v", err)
		guessed, confidence := guessIntent(content, language)
		return &Response{
			Intent:     guessed,
			Reply:      content,
			Confidence: confidence,
		}
	}

	out := &Response{
		Intent:     CoerceIntent(result.Intent, inConfirmation),
		Reply:      result.Reply,
		Confidence: result.Confidence,
	}
	if out.Reply == "" {
		out.Reply = apologyMisunderstood(language)
	}
	if out.Confidence <= 0 {
		out.Confidence = 0.8
	}

	// Preferences only travel with a query, or a rejection that
	// carried replacements.
	if result.Preferences != nil && (out.Intent == Query || out.Intent == ConfirmNo) {
		prefs := result.Preferences.Clone()
		prefs.Normalize()
		out.Preferences = &prefs
	}
	if !result.ProfileUpdates.Empty() {
		out.ProfileUpdates = result.ProfileUpdates
	}
	return out
}

// guessIntent does coarse keyword spotting over a non-JSON reply.
func guessIntent(content, language string) (string, float64) {
	lower := strings.ToLower(content)
	var keywords []string
	if language == LangZH {
		keywords = []string{"推荐", "餐厅", "吃饭", "美食", "想吃"}
	} else {
		keywords = []string{"recommend", "restaurant", "food", "dining", "looking for", "eat"}
	}
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return Query, 0.7
		}
	}
	return Chat, 0.8
}

func apologyMisunderstood(language string) string {
	if language == LangZH {
		return "抱歉，我没有理解您的问题。"
	}
	return "Sorry, I didn't understand your question."
}

func apologyUnavailable(language string) string {
	if language == LangZH {
		return "抱歉，服务暂时不可用，请稍后再试。"
	}
	return "Sorry, the service is temporarily unavailable. Please try again later."
}

// DescribePreferences renders the non-default preference dimensions as
// a short comma-joined summary for prompts and confirmation texts.
func DescribePreferences(p *recommend.Preferences, language string) string {
	if p == nil {
		return ""
	}

	zh := language == LangZH
	label := func(zhLabel, enLabel string) string {
		if zh {
			return zhLabel
		}
		return enLabel
	}

	var parts []string
	if types := recommend.FilterAny(p.RestaurantTypes); len(types) > 0 {
		parts = append(parts, label("餐厅类型: ", "restaurant types: ")+strings.Join(types, ", "))
	}
	if flavors := recommend.FilterAny(p.FlavorProfiles); len(flavors) > 0 {
		parts = append(parts, label("口味: ", "flavors: ")+strings.Join(flavors, ", "))
	}
	if p.HasPurpose() {
		parts = append(parts, label("用餐目的: ", "purpose: ")+p.DiningPurpose)
	}
	if p.BudgetRange.Min > 0 && p.BudgetRange.Max > 0 {
		parts = append(parts, fmt.Sprintf("%s%d-%d SGD", label("预算: ", "budget: "), p.BudgetRange.Min, p.BudgetRange.Max))
	}
	if p.HasLocation() {
		parts = append(parts, label("位置: ", "location: ")+p.Location)
	}
	return strings.Join(parts, ", ")
}

func profileContext(language string, profile *store.Profile) string {
	if profile == nil {
		return ""
	}
	d := profile.Demographics
	h := profile.DiningHabits

	or := func(v, fallback string) string {
		if v == "" {
			return fallback
		}
		return v
	}
	desc := h.Description
	if len(desc) > 50 {
		desc = desc[:50]
	}

	if language == LangZH {
		return fmt.Sprintf(`用户画像: demographics(age_range=%s, gender=%s, occupation=%s, location=%s, nationality=%s), dining_habits(typical_budget=%s, dietary_restrictions=%s, spice_tolerance=%s, description=%s)

Profile更新: demographics仅可更新age_range/gender/occupation/location/nationality(字符串,未知为空); dining_habits仅可更新typical_budget/dietary_restrictions(逗号分隔)/spice_tolerance/description(字符串,未知为空); description需完整覆盖而非追加`,
			or(d.AgeRange, "未知"), or(d.Gender, "未知"), or(d.Occupation, "未知"),
			or(d.Location, "未知"), or(d.Nationality, "未知"),
			or(h.TypicalBudget, "未知"), or(h.DietaryRestrictions, "无"),
			or(h.SpiceTolerance, "未知"), or(desc, "无"))
	}
	return fmt.Sprintf(`User profile: demographics(age_range=%s, gender=%s, occupation=%s, location=%s, nationality=%s), dining_habits(typical_budget=%s, dietary_restrictions=%s, spice_tolerance=%s, description=%s)

Profile updates: demographics only age_range/gender/occupation/location/nationality(string, empty if unknown); dining_habits only typical_budget/dietary_restrictions(comma-separated)/spice_tolerance/description(string, empty if unknown); description must replace not append`,
		or(d.AgeRange, "unknown"), or(d.Gender, "unknown"), or(d.Occupation, "unknown"),
		or(d.Location, "unknown"), or(d.Nationality, "unknown"),
		or(h.TypicalBudget, "unknown"), or(h.DietaryRestrictions, "none"),
		or(h.SpiceTolerance, "unknown"), or(desc, "none"))
}

func buildSystemPrompt(language string, profile *store.Profile, inConfirmation bool, pending *recommend.Preferences) string {
	ctx := profileContext(language, profile)

	if inConfirmation {
		pendingText := ""
		if desc := DescribePreferences(pending, language); desc != "" {
			if language == LangZH {
				pendingText = "\n待确认的偏好：" + desc
			} else {
				pendingText = "\nPending preferences: " + desc
			}
		}

		if language == LangZH {
			return fmt.Sprintf(`餐厅推荐助手。等待用户确认偏好: %s

分析意图并返回JSON:
- "confirmation_yes": 用户确认(如"yes"/"对"/"正确")
- "confirmation_no": 用户拒绝但未提供新偏好
- "query": 用户拒绝并提供新偏好，或新推荐请求
- "chat": 普通对话

JSON格式:
{"intent":"confirmation_yes|confirmation_no|query|chat", "reply":"回复", "confidence":0.0-1.0, "preferences":{"restaurant_types":["casual"]或["any"], "flavor_profiles":["spicy"]或["any"], "dining_purpose":"date-night|family|friends|business|solo|any", "budget_range":{"min":20,"max":60,"currency":"SGD","per":"person"}, "location":"Chinatown"或"any"}, "profile_updates":{"demographics":{}, "dining_habits":{}}}

规则: preferences仅在intent为"query"或"confirmation_no"(有新偏好)时提供; "confirmation_yes"和"chat"时preferences为null; profile_updates可选,仅推断新信息时提供
%s
回复使用中文`, pendingText, ctx)
		}
		return fmt.Sprintf(`Restaurant recommendation assistant. Waiting for user confirmation: %s

Analyze intent and return JSON:
- "confirmation_yes": user confirms("yes"/"correct"/"right")
- "confirmation_no": user rejects without new preferences
- "query": user rejects with new preferences or new request
- "chat": general conversation

JSON format:
{"intent":"confirmation_yes|confirmation_no|query|chat", "reply":"reply", "confidence":0.0-1.0, "preferences":{"restaurant_types":["casual"]or["any"], "flavor_profiles":["spicy"]or["any"], "dining_purpose":"date-night|family|friends|business|solo|any", "budget_range":{"min":20,"max":60,"currency":"SGD","per":"person"}, "location":"Chinatown"or"any"}, "profile_updates":{"demographics":{}, "dining_habits":{}}}

Rules: preferences only when intent is "query" or "confirmation_no"(with new prefs); null for "confirmation_yes" and "chat"; profile_updates optional, only when inferring new info
%s
Use English for replies`, pendingText, ctx)
	}

	if language == LangZH {
		return fmt.Sprintf(`餐厅推荐助手。分析意图并返回JSON:
- "query": 推荐餐厅/寻找餐厅/询问餐厅信息
- "chat": 普通对话/问候/闲聊

JSON格式:
{"intent":"query|chat", "reply":"回复", "confidence":0.0-1.0, "preferences":{"restaurant_types":["casual","fine-dining","fast-casual","street-food","buffet","cafe"]或["any"], "flavor_profiles":["spicy","savory","sweet","sour","mild"]或["any"], "dining_purpose":"date-night|family|friends|business|solo|celebration|any", "budget_range":{"min":20,"max":60,"currency":"SGD"}, "location":"Chinatown"或"any"}, "profile_updates":{"demographics":{}, "dining_habits":{}}}

规则: preferences仅在"query"时提供,"chat"时为null; profile_updates可选,仅推断新信息时提供; budget_range未提及则默认20-60 SGD; location未提及则"any"
%s
回复使用中文`, ctx)
	}
	return fmt.Sprintf(`Restaurant recommendation assistant. Analyze intent and return JSON:
- "query": wants recommendations/searches restaurants/asks about restaurants
- "chat": general conversation/greetings/casual chat

JSON format:
{"intent":"query|chat", "reply":"reply", "confidence":0.0-1.0, "preferences":{"restaurant_types":["casual","fine-dining","fast-casual","street-food","buffet","cafe"]or["any"], "flavor_profiles":["spicy","savory","sweet","sour","mild"]or["any"], "dining_purpose":"date-night|family|friends|business|solo|celebration|any", "budget_range":{"min":20,"max":60,"currency":"SGD"}, "location":"Chinatown"or"any"}, "profile_updates":{"demographics":{}, "dining_habits":{}}}

Rules: preferences only when "query", null for "chat"; profile_updates optional, only when inferring new info; budget_range default 20-60 SGD if not mentioned; location default "any" if not mentioned
%s
Use English for replies`, ctx)
}
