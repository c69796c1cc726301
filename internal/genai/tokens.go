package genai

import (
	"strings"
	"unicode/utf8"
)

// charsPerToken is the average length of an English token in characters.
const charsPerToken = 4

// TokenEstimator approximates the number of tokens in a text.
type TokenEstimator interface {
	EstimateTokens(text string) int
}

// CharEstimator estimates ceil(characters / 4) tokens. It is an approximation, not
// a tokenizer: results differ from any backend's real count.
type CharEstimator struct{}

// Compile-time check to ensure CharEstimator implements TokenEstimator
var _ TokenEstimator = CharEstimator{}

// EstimateTokens implements TokenEstimator. Characters are Unicode code points.
func (CharEstimator) EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + charsPerToken - 1) / charsPerToken
}

// JoinContents renders every content item as text and joins them with single spaces.
func JoinContents(contents []ContentItem) string {
	parts := make([]string, len(contents))
	for i, item := range contents {
		parts[i] = item.String()
	}
	return strings.Join(parts, " ")
}

// EstimateTokens approximates the token count of contents with CharEstimator.
func EstimateTokens(contents []ContentItem) int {
	return CharEstimator{}.EstimateTokens(JoinContents(contents))
}
