package intent

import (
	"unicode"

	"github.com/smallnest/dinerec/store"
)

// Language codes used for prompt selection and canned replies.
const (
	LangEN = "en"
	LangZH = "zh"
)

// DetectLanguage returns LangZH when the text contains Han characters,
// LangEN otherwise.
func DetectLanguage(text string) string {
	for _, r := range text {
		if unicode.Is(unicode.Han, r) {
			return LangZH
		}
	}
	return LangEN
}

// ConversationLanguage detects the language of the current message,
// falling back to the last few history turns so a short "yes" inside a
// Chinese conversation still gets a Chinese reply.
func ConversationLanguage(message string, history []store.Message) string {
	if DetectLanguage(message) == LangZH {
		return LangZH
	}
	start := len(history) - 3
	if start < 0 {
		start = 0
	}
	for _, msg := range history[start:] {
		if DetectLanguage(msg.Content) == LangZH {
			return LangZH
		}
	}
	return LangEN
}
