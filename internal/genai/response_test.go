package genai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/florianilch/genaibridge/internal/chat"
)

// assertTextInvariant checks that Text mirrors the first choice, or is empty.
func assertTextInvariant(t *testing.T, resp *GenerateContentResponse) {
	t.Helper()

	if len(resp.Choices) == 0 {
		assert.Empty(t, resp.Text)
		return
	}
	assert.Equal(t, resp.Choices[0].Message.Content, resp.Text)
}

// assertLegacyOnlyFieldsEmpty checks that legacy-only concepts are never fabricated.
func assertLegacyOnlyFieldsEmpty(t *testing.T, resp *GenerateContentResponse) {
	t.Helper()

	require.NotNil(t, resp.FunctionCalls)
	assert.Empty(t, resp.FunctionCalls)
	assert.Nil(t, resp.ExecutableCode)
	assert.Nil(t, resp.CodeExecutionResult)
}

func TestFromChatResponse(t *testing.T) {
	resp := &chat.Response{
		ID:      "chatcmpl-1",
		Object:  chat.ObjectChatCompletion,
		Created: 1700000000,
		Model:   "gpt-test",
		Choices: []chat.Choice{
			{Index: 0, Message: chat.ResponseMessage{Role: chat.RoleAssistant, Content: ptr("first")}, FinishReason: "stop"},
			{Index: 1, Message: chat.ResponseMessage{Role: chat.RoleAssistant, Content: ptr("second")}, FinishReason: "length"},
		},
		Usage: &chat.Usage{
			PromptTokens:        5,
			CompletionTokens:    7,
			TotalTokens:         12,
			PromptTokensDetails: &chat.PromptTokensDetails{CachedTokens: 2},
		},
	}

	got := FromChatResponse(resp)

	assert.Equal(t, "first", got.Text)
	assertTextInvariant(t, got)
	assertLegacyOnlyFieldsEmpty(t, got)
	assert.Same(t, resp, got.Data)

	require.Len(t, got.Choices, 2)
	assert.Equal(t, Choice{Message: ChoiceMessage{Content: "second", Role: chat.RoleAssistant}, FinishReason: "length"}, got.Choices[1])

	require.Len(t, got.Candidates, 2)
	assert.Equal(t, "model", got.Candidates[0].Content.Role)
	assert.Equal(t, []Part{{Text: "first"}}, got.Candidates[0].Content.Parts)
	assert.Equal(t, "STOP", got.Candidates[0].FinishReason)
	assert.Equal(t, "MAX_TOKENS", got.Candidates[1].FinishReason)
	assert.Equal(t, 1, got.Candidates[1].Index)

	assert.Equal(t, &UsageMetadata{
		PromptTokenCount:        5,
		CandidatesTokenCount:    7,
		TotalTokenCount:         12,
		CachedContentTokenCount: 2,
	}, got.UsageMetadata)
	assert.Equal(t, "gpt-test", got.ModelVersion)
	assert.Equal(t, "chatcmpl-1", got.ResponseID)
}

func TestFromChatResponse_Defaults(t *testing.T) {
	resp := &chat.Response{
		Choices: []chat.Choice{
			{Message: chat.ResponseMessage{}}, // role omitted, content null
		},
	}

	got := FromChatResponse(resp)

	require.Len(t, got.Choices, 1)
	assert.Equal(t, chat.RoleAssistant, got.Choices[0].Message.Role)
	assert.Equal(t, "", got.Choices[0].Message.Content)
	assert.Equal(t, "", got.Text)
	assertTextInvariant(t, got)
	assert.Equal(t, &UsageMetadata{}, got.UsageMetadata)
}

func TestFromChatResponse_NoChoices(t *testing.T) {
	for name, resp := range map[string]*chat.Response{
		"nil response": nil,
		"no choices":   {ID: "x"},
	} {
		t.Run(name, func(t *testing.T) {
			got := FromChatResponse(resp)

			assert.Equal(t, "", got.Text)
			require.NotNil(t, got.Choices)
			assert.Empty(t, got.Choices)
			assertTextInvariant(t, got)
			assertLegacyOnlyFieldsEmpty(t, got)
		})
	}
}

func TestToLegacyFinishReason(t *testing.T) {
	tests := map[string]string{
		"":               "",
		"stop":           "STOP",
		"length":         "MAX_TOKENS",
		"content_filter": "SAFETY",
		"tool_calls":     "STOP",
		"something_else": "OTHER",
	}
	for in, want := range tests {
		assert.Equal(t, want, toLegacyFinishReason(in), "finish reason %q", in)
	}
}

func TestGenerateContentResponse_JSONShape(t *testing.T) {
	got := FromChatResponse(&chat.Response{
		Choices: []chat.Choice{{Message: chat.ResponseMessage{Content: ptr("hi")}, FinishReason: "stop"}},
	})

	b, err := json.Marshal(got)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "hi", decoded["text"])
	assert.Equal(t, []any{}, decoded["functionCalls"])
	assert.NotContains(t, decoded, "executableCode")
	assert.NotContains(t, decoded, "codeExecutionResult")
	assert.Contains(t, decoded, "candidates")
	assert.Contains(t, decoded, "data")
}
