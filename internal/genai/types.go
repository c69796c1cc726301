package genai

import (
	"context"
	"iter"

	"github.com/florianilch/genaibridge/internal/chat"
)

// ContentGenerator is the capability surface offered to legacy callers.
type ContentGenerator interface {
	// GenerateContent produces one complete response.
	GenerateContent(ctx context.Context, req *GenerateContentRequest, promptID string) (*GenerateContentResponse, error)

	// GenerateContentStream produces response fragments in arrival order. Each
	// fragment has the same shape as a GenerateContent result.
	GenerateContentStream(ctx context.Context, req *GenerateContentRequest, promptID string) (iter.Seq2[*GenerateContentResponse, error], error)

	// CountTokens returns an approximate token count for the request contents.
	CountTokens(ctx context.Context, req *CountTokensRequest) (*CountTokensResponse, error)
}

// Embedder is the optional embedding capability. Callers probe for it with a type
// assertion on a ContentGenerator.
type Embedder interface {
	EmbedContent(ctx context.Context, req *EmbedContentRequest) (*EmbedContentResponse, error)
}

// GenerateContentRequest is a legacy generation request. It carries either an
// explicit message sequence, a generic contents sequence, or neither; see Kind.
type GenerateContentRequest struct {
	Model       string         `json:"model,omitempty"`
	Messages    []chat.Message `json:"messages,omitempty"`
	Contents    []ContentItem  `json:"contents,omitempty"`
	MaxTokens   *int           `json:"max_tokens,omitempty"`
	Temperature *float64       `json:"temperature,omitempty"`
}

// PromptKind tags which prompt shape a GenerateContentRequest carries.
type PromptKind int

const (
	// PromptDefault means neither messages nor contents were given.
	PromptDefault PromptKind = iota
	// PromptMessages means an explicit message sequence was given.
	PromptMessages
	// PromptContents means a generic contents sequence was given.
	PromptContents
)

// String implements fmt.Stringer.
func (k PromptKind) String() string {
	switch k {
	case PromptMessages:
		return "messages"
	case PromptContents:
		return "contents"
	default:
		return "default"
	}
}

// Kind resolves the prompt shape. Explicit messages win over contents. A present
// but empty sequence still counts as given.
func (r *GenerateContentRequest) Kind() PromptKind {
	switch {
	case r == nil:
		return PromptDefault
	case r.Messages != nil:
		return PromptMessages
	case r.Contents != nil:
		return PromptContents
	default:
		return PromptDefault
	}
}

// GenerateContentResponse is a legacy response, produced both for complete
// responses and for every streamed fragment.
//
// Text always equals Choices[0].Message.Content, or is empty when there are no
// choices. Candidates and UsageMetadata render the same data in the legacy wire
// shape for HTTP clients.
type GenerateContentResponse struct {
	Text    string         `json:"text"`
	Choices []Choice       `json:"choices"`
	Data    *chat.Response `json:"data"`

	// FunctionCalls is always empty: chat backends have no function call analog here.
	FunctionCalls []FunctionCall `json:"functionCalls"`
	// ExecutableCode and CodeExecutionResult are always nil.
	ExecutableCode      *ExecutableCode      `json:"executableCode,omitempty"`
	CodeExecutionResult *CodeExecutionResult `json:"codeExecutionResult,omitempty"`

	Candidates    []Candidate    `json:"candidates"`
	UsageMetadata *UsageMetadata `json:"usageMetadata"`
	ModelVersion  string         `json:"modelVersion,omitempty"`
	ResponseID    string         `json:"responseId,omitempty"`
}

// Choice is one generated alternative.
type Choice struct {
	Message      ChoiceMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

// ChoiceMessage is the message of a Choice.
type ChoiceMessage struct {
	Content string    `json:"content"`
	Role    chat.Role `json:"role"`
}

// FunctionCall is a legacy function call. Never populated.
type FunctionCall struct {
	ID   string         `json:"id,omitempty"`
	Name string         `json:"name,omitempty"`
	Args map[string]any `json:"args,omitempty"`
}

// ExecutableCode is legacy model-generated code. Never populated.
type ExecutableCode struct {
	Language string `json:"language,omitempty"`
	Code     string `json:"code,omitempty"`
}

// CodeExecutionResult is the legacy result of running ExecutableCode. Never populated.
type CodeExecutionResult struct {
	Outcome string `json:"outcome,omitempty"`
	Output  string `json:"output,omitempty"`
}

// Candidate is a Choice in the legacy wire shape.
type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
	Index        int     `json:"index"`
}

// Content is a legacy multi-part message.
type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Part is one part of a Content. Only text parts are produced.
type Part struct {
	Text string `json:"text"`
}

// UsageMetadata is token usage in the legacy wire shape.
type UsageMetadata struct {
	PromptTokenCount        int `json:"promptTokenCount"`
	CandidatesTokenCount    int `json:"candidatesTokenCount"`
	TotalTokenCount         int `json:"totalTokenCount"`
	CachedContentTokenCount int `json:"cachedContentTokenCount,omitempty"`
}

// CountTokensRequest asks for the token count of contents.
type CountTokensRequest struct {
	Model    string        `json:"model,omitempty"`
	Contents []ContentItem `json:"contents"`
}

// CountTokensResponse holds an estimated token count.
type CountTokensResponse struct {
	TotalTokens int `json:"totalTokens"`
}

// EmbedContentRequest asks for an embedding of contents.
type EmbedContentRequest struct {
	Model    string        `json:"model,omitempty"`
	Contents []ContentItem `json:"contents"`
}

// EmbedContentResponse holds one embedding.
type EmbedContentResponse struct {
	Embedding ContentEmbedding `json:"embedding"`
}

// ContentEmbedding is an embedding vector.
type ContentEmbedding struct {
	Values []float64 `json:"values"`
}
