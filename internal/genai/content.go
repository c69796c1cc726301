package genai

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// ContentItem is one opaque element of a request's generic contents: a string or
// any structured JSON value. Items are never interpreted, only rendered as text.
type ContentItem struct {
	raw json.RawMessage
}

// NewTextItem returns a string content item.
func NewTextItem(text string) ContentItem {
	b, _ := json.Marshal(text) // marshaling a string cannot fail
	return ContentItem{raw: b}
}

// NewValueItem returns a structured content item holding the JSON encoding of v.
func NewValueItem(v any) (ContentItem, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return ContentItem{}, fmt.Errorf("encode content item: %w", err)
	}
	return ContentItem{raw: b}, nil
}

// NewRawItem wraps already encoded JSON.
func NewRawItem(raw json.RawMessage) ContentItem {
	return ContentItem{raw: bytes.Clone(raw)}
}

// IsText reports whether the item is a JSON string.
func (c ContentItem) IsText() bool {
	return gjson.ParseBytes(c.raw).Type == gjson.String
}

// String renders the item as text: strings verbatim, anything else as compact JSON.
// The rendering is lossy but deterministic.
func (c ContentItem) String() string {
	if len(c.raw) == 0 {
		return "null"
	}

	if result := gjson.ParseBytes(c.raw); result.Type == gjson.String {
		return result.String()
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, c.raw); err != nil {
		return string(c.raw)
	}
	return buf.String()
}

// MarshalJSON implements json.Marshaler.
func (c ContentItem) MarshalJSON() ([]byte, error) {
	if len(c.raw) == 0 {
		return []byte("null"), nil
	}
	return c.raw, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *ContentItem) UnmarshalJSON(data []byte) error {
	c.raw = bytes.Clone(data)
	return nil
}
