package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/florianilch/genaibridge/internal/genai"
)

// newTestTiktoken loads the default encoding, skipping when the BPE ranks cannot
// be fetched (offline CI).
func newTestTiktoken(t *testing.T) *Tiktoken {
	t.Helper()

	tk, err := New("")
	if err != nil {
		t.Skipf("cl100k_base unavailable: %v", err)
	}
	return tk
}

func TestTiktoken_EstimateTokens(t *testing.T) {
	tk := newTestTiktoken(t)

	assert.Zero(t, tk.EstimateTokens(""))
	assert.Equal(t, 2, tk.EstimateTokens("hello world"))
	// Special token markers are plain text
	assert.Positive(t, tk.EstimateTokens("<|endoftext|>"))
}

func TestTiktoken_AsGeneratorEstimator(t *testing.T) {
	tk := newTestTiktoken(t)

	text := genai.JoinContents([]genai.ContentItem{genai.NewTextItem("hello"), genai.NewTextItem("world")})
	assert.Equal(t, 2, tk.EstimateTokens(text))
}

func TestNew_UnknownEncoding(t *testing.T) {
	_, err := New("no_such_encoding")
	require.Error(t, err)
}
