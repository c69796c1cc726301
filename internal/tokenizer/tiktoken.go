// Package tokenizer provides BPE token counting as an alternative to the
// character-based estimate in package genai.
package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/florianilch/genaibridge/internal/genai"
)

// DefaultEncoding is used when no encoding is configured.
const DefaultEncoding = "cl100k_base"

// Tiktoken counts tokens with an OpenAI BPE encoding. Counts for other model
// families remain approximations.
type Tiktoken struct {
	encoding *tiktoken.Tiktoken
}

// Compile-time check to ensure Tiktoken implements genai.TokenEstimator
var _ genai.TokenEstimator = (*Tiktoken)(nil)

// New loads the named encoding. The first load of an encoding may download its
// BPE ranks; tiktoken-go caches them in TIKTOKEN_CACHE_DIR when set.
func New(encoding string) (*Tiktoken, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}

	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %q: %w", encoding, err)
	}
	return &Tiktoken{encoding: enc}, nil
}

// EstimateTokens implements genai.TokenEstimator. Special tokens are counted as
// plain text.
func (t *Tiktoken) EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(t.encoding.Encode(text, nil, nil))
}
