package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smallnest/dinerec/store"
)

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, LangEN, DetectLanguage("find me a good ramen place"))
	assert.Equal(t, LangZH, DetectLanguage("推荐一家餐厅"))
	assert.Equal(t, LangZH, DetectLanguage("I want 麻辣 hotpot"))
	assert.Equal(t, LangEN, DetectLanguage(""))
}

func TestConversationLanguageUsesHistory(t *testing.T) {
	history := []store.Message{
		{Role: store.RoleUser, Content: "帮我找家川菜馆"},
		{Role: store.RoleAssistant, Content: "你想要什么价位？"},
	}
	// A bare "yes" inherits the conversation's language.
	assert.Equal(t, LangZH, ConversationLanguage("yes", history))
}

func TestConversationLanguageIgnoresOldHistory(t *testing.T) {
	history := []store.Message{
		{Role: store.RoleUser, Content: "推荐餐厅"},
		{Role: store.RoleAssistant, Content: "sure"},
		{Role: store.RoleUser, Content: "thanks"},
		{Role: store.RoleAssistant, Content: "anytime"},
	}
	// Only the last three turns count.
	assert.Equal(t, LangEN, ConversationLanguage("another one please", history))
}
