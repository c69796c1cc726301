package genai

import (
	"github.com/samber/lo"

	"github.com/florianilch/genaibridge/internal/chat"
)

// Legacy wire finish reasons.
const (
	finishReasonStop      = "STOP"
	finishReasonMaxTokens = "MAX_TOKENS"
	finishReasonSafety    = "SAFETY"
	finishReasonOther     = "OTHER"
)

// legacyRoleModel is the legacy wire role of generated content.
const legacyRoleModel = "model"

// FromChatResponse projects a complete chat response into a legacy response.
//
// Missing roles default to assistant and null contents to the empty string. The
// input is retained verbatim in Data. Function calls and executable code have no
// chat equivalent and are left empty. FromChatResponse never fails; a nil response
// yields an empty result.
func FromChatResponse(resp *chat.Response) *GenerateContentResponse {
	result := &GenerateContentResponse{
		Choices:       []Choice{},
		Data:          resp,
		FunctionCalls: []FunctionCall{},
		Candidates:    []Candidate{},
		UsageMetadata: &UsageMetadata{},
	}
	if resp == nil {
		return result
	}

	result.Choices = lo.Map(resp.Choices, func(c chat.Choice, _ int) Choice {
		return toChoice(c)
	})
	if len(result.Choices) > 0 {
		result.Text = result.Choices[0].Message.Content
	}

	result.Candidates = lo.Map(resp.Choices, func(c chat.Choice, i int) Candidate {
		return Candidate{
			Content: Content{
				Role:  legacyRoleModel,
				Parts: []Part{{Text: result.Choices[i].Message.Content}},
			},
			FinishReason: toLegacyFinishReason(c.FinishReason),
			Index:        c.Index,
		}
	})

	if resp.Usage != nil {
		result.UsageMetadata = toUsageMetadata(*resp.Usage)
	}
	result.ModelVersion = resp.Model
	result.ResponseID = resp.ID

	return result
}

// toChoice maps one chat choice, defaulting role and content.
func toChoice(c chat.Choice) Choice {
	role := c.Message.Role
	if role == "" {
		role = chat.RoleAssistant
	}
	return Choice{
		Message: ChoiceMessage{
			Content: lo.FromPtrOr(c.Message.Content, ""),
			Role:    role,
		},
		FinishReason: c.FinishReason,
	}
}

// toLegacyFinishReason maps chat finish reasons to legacy wire finish reasons.
// An empty reason (stream still running) stays empty.
func toLegacyFinishReason(reason string) string {
	switch reason {
	case "":
		return ""
	case chat.FinishReasonStop:
		return finishReasonStop
	case chat.FinishReasonLength:
		return finishReasonMaxTokens
	case chat.FinishReasonContentFilter:
		return finishReasonSafety
	case chat.FinishReasonToolCalls:
		// Tool calls are not surfaced (FunctionCalls stays empty), so the turn simply ended
		return finishReasonStop
	default:
		return finishReasonOther
	}
}

// toUsageMetadata converts chat usage totals to the legacy wire shape.
func toUsageMetadata(usage chat.Usage) *UsageMetadata {
	metadata := &UsageMetadata{
		PromptTokenCount:     usage.PromptTokens,
		CandidatesTokenCount: usage.CompletionTokens,
		TotalTokenCount:      usage.TotalTokens,
	}
	if usage.PromptTokensDetails != nil {
		metadata.CachedContentTokenCount = usage.PromptTokensDetails.CachedTokens
	}
	return metadata
}
