package llmutils

import (
	"sync"

	"github.com/mfinkle/llm-agents/pkg/llms"
	"github.com/pkoukk/tiktoken-go"
)

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
)

// EstimateTokens approximates the token count of text with the
// cl100k_base encoding. Used when a provider reports no usage.
// Falls back to a bytes/4 heuristic if the encoding is unavailable.
func EstimateTokens(text string) int64 {
	encOnce.Do(func() {
		enc, _ = tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
	})
	if enc == nil {
		return int64(len(text) / 4)
	}
	return int64(len(enc.Encode(text, nil, nil)))
}

// EstimateUsage approximates the usage of a model call from its
// request messages and response content.
func EstimateUsage(msgs []llms.Message, content string) llms.TokenUsage {
	var in int64
	for _, m := range msgs {
		in += EstimateTokens(m.Content)
	}
	return llms.TokenUsage{
		InputTokens:  in,
		OutputTokens: EstimateTokens(content),
	}
}
