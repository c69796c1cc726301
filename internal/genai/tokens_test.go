package genai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateTokens(t *testing.T) {
	structured, err := NewValueItem(map[string]int{"a": 1})
	require.NoError(t, err)

	tests := []struct {
		name     string
		contents []ContentItem
		want     int
	}{
		{name: "no contents", contents: nil, want: 0},
		{name: "empty string", contents: []ContentItem{NewTextItem("")}, want: 0},
		{name: "exact multiple", contents: []ContentItem{NewTextItem("abcd")}, want: 1},
		{name: "rounds up", contents: []ContentItem{NewTextItem("abcde")}, want: 2},
		// "abcd efgh" is 9 characters
		{name: "joined with space", contents: []ContentItem{NewTextItem("abcd"), NewTextItem("efgh")}, want: 3},
		// `{"a":1}` is 7 characters
		{name: "structured as JSON", contents: []ContentItem{structured}, want: 2},
		{name: "counts code points", contents: []ContentItem{NewTextItem("äöüß")}, want: 1},
		// Each emoji is one code point, not a surrogate pair
		{name: "emoji outside BMP", contents: []ContentItem{NewTextItem("😀😀😀😀")}, want: 1},
		{name: "emoji rounds up", contents: []ContentItem{NewTextItem("😀😀😀😀😀")}, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateTokens(tt.contents))
		})
	}
}

func TestJoinContents(t *testing.T) {
	assert.Equal(t, "", JoinContents(nil))
	assert.Equal(t, "a [1,2] b", JoinContents([]ContentItem{
		NewTextItem("a"),
		NewRawItem([]byte(`[1, 2]`)),
		NewTextItem("b"),
	}))
}
