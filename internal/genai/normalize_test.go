package genai

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/florianilch/genaibridge/internal/chat"
)

func ptr[T any](v T) *T { return &v }

func TestNormalize_ExplicitMessagesVerbatim(t *testing.T) {
	messages := []chat.Message{
		{Role: chat.RoleSystem, Content: "be brief"},
		{Role: chat.RoleAssistant, Content: "earlier answer"},
		{Role: chat.RoleUser, Content: "  spaced  "},
	}
	req := &GenerateContentRequest{
		Messages: messages,
		// Contents are ignored when messages are present
		Contents: []ContentItem{NewTextItem("ignored")},
	}

	got := Normalize(req, "default-model")

	if diff := cmp.Diff(messages, got.Messages); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, PromptMessages, req.Kind())
}

func TestNormalize_ContentsPositionalParity(t *testing.T) {
	req := &GenerateContentRequest{
		Contents: []ContentItem{NewTextItem("a"), NewTextItem("b"), NewTextItem("c")},
	}

	got := Normalize(req, "m")

	want := []chat.Message{
		{Role: chat.RoleUser, Content: "a"},
		{Role: chat.RoleAssistant, Content: "b"},
		{Role: chat.RoleUser, Content: "c"},
	}
	if diff := cmp.Diff(want, got.Messages); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_StructuredContentsStringified(t *testing.T) {
	structured, err := NewValueItem(map[string]any{
		"role":  "user",
		"parts": []any{map[string]any{"text": "hi"}},
	})
	require.NoError(t, err)

	req := &GenerateContentRequest{
		Contents: []ContentItem{structured, NewRawItem(json.RawMessage(`[1, 2,  3]`)), NewRawItem(json.RawMessage(`42`))},
	}

	got := Normalize(req, "m")

	require.Len(t, got.Messages, 3)
	assert.Equal(t, `{"parts":[{"text":"hi"}],"role":"user"}`, got.Messages[0].Content)
	assert.Equal(t, `[1,2,3]`, got.Messages[1].Content)
	assert.Equal(t, `42`, got.Messages[2].Content)
}

func TestNormalize_DefaultGreeting(t *testing.T) {
	for name, req := range map[string]*GenerateContentRequest{
		"nil request":   nil,
		"empty request": {},
	} {
		t.Run(name, func(t *testing.T) {
			got := Normalize(req, "m")
			assert.Equal(t, []chat.Message{{Role: chat.RoleUser, Content: "Hello"}}, got.Messages)
			assert.Equal(t, "m", got.Model)
		})
	}
}

func TestNormalize_EmptyContentsAreStillContents(t *testing.T) {
	req := &GenerateContentRequest{Contents: []ContentItem{}}

	got := Normalize(req, "m")

	assert.Equal(t, PromptContents, req.Kind())
	assert.Empty(t, got.Messages)
}

func TestNormalize_ModelAndLimits(t *testing.T) {
	t.Run("override", func(t *testing.T) {
		got := Normalize(&GenerateContentRequest{
			Model:       "override",
			MaxTokens:   ptr(128),
			Temperature: ptr(0.2),
		}, "default")

		assert.Equal(t, "override", got.Model)
		require.NotNil(t, got.MaxTokens)
		assert.Equal(t, 128, *got.MaxTokens)
		require.NotNil(t, got.Temperature)
		assert.InDelta(t, 0.2, *got.Temperature, 1e-9)
	})

	t.Run("defaults", func(t *testing.T) {
		got := Normalize(&GenerateContentRequest{}, "default")

		assert.Equal(t, "default", got.Model)
		assert.Nil(t, got.MaxTokens)
		assert.Nil(t, got.Temperature)
		assert.False(t, got.Stream)
	})
}

func TestGenerateContentRequest_UnmarshalJSON(t *testing.T) {
	var req GenerateContentRequest
	require.NoError(t, json.Unmarshal([]byte(`{
		"model": "m",
		"contents": ["plain", {"role": "model", "parts": [{"text": "x"}]}],
		"max_tokens": 10
	}`), &req))

	assert.Equal(t, PromptContents, req.Kind())
	require.Len(t, req.Contents, 2)
	assert.True(t, req.Contents[0].IsText())
	assert.Equal(t, "plain", req.Contents[0].String())
	assert.False(t, req.Contents[1].IsText())
	assert.Equal(t, `{"role":"model","parts":[{"text":"x"}]}`, req.Contents[1].String())
}
