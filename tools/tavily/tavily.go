// Package tavily publishes a web search tool backed by the Tavily
// search API.
package tavily

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	tavilygo "github.com/diverged/tavily-go"
	tavilymodels "github.com/diverged/tavily-go/models"
	"github.com/mfinkle/llm-agents/tools"
)

// ProviderName identifies the provider in registries and MCP
// tool names.
const ProviderName = "WebSearchToolProvider"

const envAPIKey = "TAVILY_API_KEY"

// Provider offers a single web_search tool. The API key comes from
// the TAVILY_API_KEY environment variable.
type Provider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ tools.Provider = (*Provider)(nil)

// New returns a provider, or an error when the API key is not set.
func New() (*Provider, error) {
	apiKey := os.Getenv(envAPIKey)
	if apiKey == "" {
		return nil, errors.Newf("%s is not set", envAPIKey)
	}
	return &Provider{
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
	}, nil
}

// Enabled reports whether the API key is present, so callers can skip
// registration instead of failing.
func Enabled() bool {
	return os.Getenv(envAPIKey) != ""
}

// WithBaseURL overrides the API endpoint, mainly for tests.
func (p *Provider) WithBaseURL(baseURL string) *Provider {
	p.baseURL = baseURL
	return p
}

// WithHTTPClient overrides the HTTP client.
func (p *Provider) WithHTTPClient(client *http.Client) *Provider {
	p.httpClient = client
	return p
}

// Name implements the Provider interface.
func (p *Provider) Name() string {
	return ProviderName
}

// GetTools implements the Provider interface.
func (p *Provider) GetTools() []*tools.Descriptor {
	return []*tools.Descriptor{
		{
			Name:        "web_search",
			Description: `Searches the web for current information. Parameter should be a string containing the search query. Example: { "type": "call_tool", "tool": "web_search", "param": "capital of France" }`,
			Response:    `Returns an aggregated answer and the top results. Example: {"answer": "Paris", "results": [{"title": "Paris", "url": "https://en.wikipedia.org/wiki/Paris", "content": "...", "score": 0.9}]}`,
			Param: &tools.ParamInfo{
				Required:    true,
				Type:        tools.ParamString,
				Description: "The search query as a string",
			},
			Func: p.search,
		},
	}
}

func (p *Provider) search(_ context.Context, param any) (any, error) {
	query := strings.TrimSpace(tools.StringParam(param))
	if query == "" {
		return nil, errors.WithMessage(tools.ErrInvalidParam, "search query is required")
	}

	client := tavilygo.NewClient(p.apiKey)
	if p.baseURL != "" {
		client.BaseURL = p.baseURL
	}
	if p.httpClient != nil {
		client.HTTPClient = p.httpClient
	}

	resp, err := tavilygo.Search(client, tavilymodels.SearchRequest{
		Query:         query,
		SearchDepth:   "basic",
		IncludeAnswer: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "search request failed")
	}

	results := make([]map[string]any, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, map[string]any{
			"title":   r.Title,
			"url":     r.URL,
			"content": r.Content,
			"score":   r.Score,
		})
	}
	return map[string]any{
		"answer":  resp.Answer,
		"results": results,
	}, nil
}
