package anthropicclaude

import (
	"github.com/florianilch/genaibridge/internal/chat"
)

// toUsage converts Anthropic token counts into chat usage totals. Anthropic's
// cache reads map directly to cached prompt tokens; thinking tokens are already part
// of the output count.
func toUsage(inputTokens, outputTokens, cacheReadTokens int64) *chat.Usage {
	usage := &chat.Usage{
		PromptTokens:     int(inputTokens),
		CompletionTokens: int(outputTokens),
		TotalTokens:      int(inputTokens + outputTokens),
	}

	if cacheReadTokens > 0 {
		usage.PromptTokensDetails = &chat.PromptTokensDetails{
			CachedTokens: int(cacheReadTokens),
		}
	}

	return usage
}
