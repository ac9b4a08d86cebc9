// Package ollama provides a chat model client backed by a local
// Ollama server.
package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mfinkle/llm-agents/pkg/llms"
	ollama "github.com/ollama/ollama/api"
)

const defaultHost = "http://localhost:11434"

// LLM is a chat model served by Ollama.
type LLM struct {
	client *ollama.Client
	model  string
}

var _ llms.Model = (*LLM)(nil)

// New returns a new Ollama LLM.
// The host defaults to OLLAMA_HOST or http://localhost:11434.
func New(model, host string) (*LLM, error) {
	if model == "" {
		return nil, errors.New("ollama: model is required")
	}
	if host == "" {
		host = os.Getenv("OLLAMA_HOST")
	}
	if host == "" {
		host = defaultHost
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid ollama host %q", host)
	}

	httpClient := &http.Client{
		Timeout: 120 * time.Second,
	}
	return &LLM{
		client: ollama.NewClient(u, httpClient),
		model:  model,
	}, nil
}

// GetName implements the Model interface.
func (o *LLM) GetName() string {
	return o.model
}

// GetProviderType implements the Model interface.
func (o *LLM) GetProviderType() llms.ProviderType {
	return llms.ProviderOllama
}

// GenerateContent implements the Model interface.
func (o *LLM) GenerateContent(ctx context.Context, messages []llms.Message, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{}
	for _, opt := range options {
		opt(&opts)
	}

	chatMsgs := make([]ollama.Message, 0, len(messages))
	for _, m := range messages {
		role := string(m.Role)
		if m.Role == llms.RoleTool {
			// Ollama has no tool role for plain chat, fold into user turns.
			role = string(llms.RoleUser)
		}
		chatMsgs = append(chatMsgs, ollama.Message{
			Role:    role,
			Content: m.Content,
		})
	}

	model := o.model
	if opts.Model != "" {
		model = opts.Model
	}

	modelOpts := map[string]any{}
	if opts.Temperature > 0 {
		modelOpts["temperature"] = opts.Temperature
	}
	if opts.TopP > 0 {
		modelOpts["top_p"] = opts.TopP
	}
	if opts.Seed > 0 {
		modelOpts["seed"] = opts.Seed
	}
	if opts.MaxTokens > 0 {
		modelOpts["num_predict"] = opts.MaxTokens
	}
	if len(opts.StopWords) > 0 {
		modelOpts["stop"] = opts.StopWords
	}

	stream := false
	req := &ollama.ChatRequest{
		Model:    model,
		Messages: chatMsgs,
		Stream:   &stream,
		Options:  modelOpts,
	}
	if opts.JSONMode {
		req.Format = json.RawMessage(`"json"`)
	}

	var (
		text strings.Builder
		last ollama.ChatResponse
	)
	err := o.client.Chat(ctx, req, func(cr ollama.ChatResponse) error {
		text.WriteString(cr.Message.Content)
		last = cr
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to call ollama chat")
	}

	return &llms.ContentResponse{
		Content:    text.String(),
		StopReason: last.DoneReason,
		Usage: llms.TokenUsage{
			InputTokens:  int64(last.Metrics.PromptEvalCount),
			OutputTokens: int64(last.Metrics.EvalCount),
		},
	}, nil
}
