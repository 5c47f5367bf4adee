package intent

import (
	"context"
	"regexp"
	"strings"

	"github.com/smallnest/dinerec/recommend"
)

// RuleClassifier is a keyword-based classifier used when no LLM is
// configured or reachable. It recognizes yes/no answers during a
// confirmation and recommendation requests by vocabulary, in English
// and Chinese.
type RuleClassifier struct{}

// NewRuleClassifier creates a rule-based classifier.
func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{}
}

var (
	yesPattern = regexp.MustCompile(`(?i)^\s*(yes|yeah|yep|yup|ok|okay|sure|correct|right|sounds good|go ahead|对|是的?|好的?|没错|确认|可以)\s*[.!。！]*\s*$`)
	noPattern  = regexp.MustCompile(`(?i)^\s*(no|nope|nah|wrong|not (really|quite|right)|cancel|不|不对|不是|不要|取消|算了)\s*[.!。！]*\s*$`)

	locationPattern = regexp.MustCompile(`(?i)\b(?:in|at|near|around)\s+([A-Z][A-Za-z '-]+)`)
)

var queryKeywords = []string{
	"recommend", "restaurant", "food", "dining", "dinner", "lunch",
	"hungry", "looking for", "where to eat", "want to eat",
	"推荐", "餐厅", "吃饭", "美食", "想吃", "找个",
}

var flavorKeywords = map[string][]string{
	"spicy": {"spicy", "hot pot", "mala", "辣", "麻辣"},
	"sweet": {"sweet", "dessert", "甜"},
	"sour":  {"sour", "酸"},
}

// Classify applies the keyword rules.
func (r *RuleClassifier) Classify(_ context.Context, req Request) (*Response, error) {
	message := strings.TrimSpace(req.Message)
	language := ConversationLanguage(message, req.History)

	if req.InConfirmation {
		if yesPattern.MatchString(message) {
			return &Response{Intent: ConfirmYes, Confidence: 0.9}, nil
		}
		if noPattern.MatchString(message) {
			return &Response{Intent: ConfirmNo, Confidence: 0.9}, nil
		}
	}

	lower := strings.ToLower(message)
	for _, kw := range queryKeywords {
		if strings.Contains(lower, kw) {
			prefs := r.extractPreferences(message)
			return &Response{
				Intent:      Query,
				Confidence:  0.6,
				Preferences: prefs,
			}, nil
		}
	}

	return &Response{
		Intent:     Chat,
		Reply:      chatFallbackReply(language),
		Confidence: 0.5,
	}, nil
}

// extractPreferences pulls the obvious dimensions out of the message
// text. Everything it cannot see stays at the defaults.
func (r *RuleClassifier) extractPreferences(message string) *recommend.Preferences {
	prefs := recommend.DefaultPreferences()
	lower := strings.ToLower(message)

	var flavors []string
	for flavor, words := range flavorKeywords {
		for _, w := range words {
			if strings.Contains(lower, w) {
				flavors = append(flavors, flavor)
				break
			}
		}
	}
	if len(flavors) > 0 {
		prefs.FlavorProfiles = flavors
	}

	if m := locationPattern.FindStringSubmatch(message); m != nil {
		prefs.Location = strings.TrimSpace(m[1])
	}

	return &prefs
}

func chatFallbackReply(language string) string {
	if language == LangZH {
		return "你好！想找餐厅的话，告诉我你想吃什么就行。"
	}
	return "Hi! Tell me what you feel like eating and I'll find some restaurants for you."
}
