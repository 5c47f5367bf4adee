package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/dinerec/tool"
)

// MockLLM implements llms.Model for testing
type MockLLM struct {
	responses []llms.ContentResponse
	callCount int
	err       error
}

func (m *MockLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.callCount >= len(m.responses) {
		return &llms.ContentResponse{
			Choices: []*llms.ContentChoice{
				{Content: "No more responses"},
			},
		}, nil
	}
	resp := m.responses[m.callCount]
	m.callCount++
	return &resp, nil
}

func (m *MockLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return "", nil
}

func TestPlannerParsesNativeToolCalls(t *testing.T) {
	mock := &MockLLM{
		responses: []llms.ContentResponse{
			{
				Choices: []*llms.ContentChoice{
					{
						ToolCalls: []llms.ToolCall{
							{
								ID:   "call-1",
								Type: "function",
								FunctionCall: &llms.FunctionCall{
									Name:      tool.NameMapsSearch,
									Arguments: `{"query": "Chinatown Sichuan restaurant"}`,
								},
							},
							{
								ID:   "call-2",
								Type: "function",
								FunctionCall: &llms.FunctionCall{
									Name:      tool.NameNotesSearch,
									Arguments: `{"query": "新加坡 Chinatown 川菜"}`,
								},
							},
						},
					},
				},
			},
		},
	}

	p := NewPlanner(mock)
	calls, err := p.Plan(context.Background(), "spicy Sichuan in Chinatown")
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, tool.NameMapsSearch, calls[0].Name)
	assert.Equal(t, "Chinatown Sichuan restaurant", calls[0].Query())
	assert.Equal(t, tool.NameNotesSearch, calls[1].Name)
}

func TestPlannerParsesJSONArrayContent(t *testing.T) {
	mock := &MockLLM{
		responses: []llms.ContentResponse{
			{
				Choices: []*llms.ContentChoice{
					{
						Content: `[
							{"function_name": "gmap.search", "parameters": {"query": "Chinatown Hotpot buffet"}},
							{"name": "xhs.search", "parameters": {"query": "Chinatown 火锅"}}
						]`,
					},
				},
			},
		},
	}

	p := NewPlanner(mock)
	calls, err := p.Plan(context.Background(), "hotpot with friends")
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, tool.NameMapsSearch, calls[0].Name)
	assert.Equal(t, "Chinatown Hotpot buffet", calls[0].Query())
	// "name" is accepted as an alias for "function_name".
	assert.Equal(t, tool.NameNotesSearch, calls[1].Name)
}

func TestPlannerEmptyPlanIsNotAnError(t *testing.T) {
	mock := &MockLLM{
		responses: []llms.ContentResponse{
			{Choices: []*llms.ContentChoice{{Content: "I cannot plan anything here."}}},
		},
	}

	p := NewPlanner(mock)
	calls, err := p.Plan(context.Background(), "hello")
	require.NoError(t, err)
	assert.Empty(t, calls)
}

func TestPlannerPropagatesModelError(t *testing.T) {
	p := NewPlanner(&MockLLM{err: errors.New("model down")})
	_, err := p.Plan(context.Background(), "anything")
	assert.ErrorContains(t, err, "model down")
}

func TestPlannerToleratesBadArguments(t *testing.T) {
	mock := &MockLLM{
		responses: []llms.ContentResponse{
			{
				Choices: []*llms.ContentChoice{
					{
						ToolCalls: []llms.ToolCall{
							{
								FunctionCall: &llms.FunctionCall{
									Name:      tool.NameMapsSearch,
									Arguments: `not json`,
								},
							},
						},
					},
				},
			},
		},
	}

	p := NewPlanner(mock)
	calls, err := p.Plan(context.Background(), "anything")
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Empty(t, calls[0].Query())
}
