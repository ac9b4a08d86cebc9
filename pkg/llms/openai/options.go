package openai

import (
	"net/http"
	"os"
	"time"
)

const (
	tokenEnvVarName   = "OPENAI_API_KEY"
	baseURLEnvVarName = "OPENAI_BASE_URL"
)

type options struct {
	token      string
	model      string
	baseURL    string
	httpClient *http.Client
}

// Option is a functional option for the OpenAI client.
type Option func(*options)

func applyOptions(opts ...Option) *options {
	o := &options{
		token:   os.Getenv(tokenEnvVarName),
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
	if v := os.Getenv(baseURLEnvVarName); v != "" {
		o.baseURL = v
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithToken sets the API token.
// Local servers typically require none.
func WithToken(token string) Option {
	return func(o *options) {
		o.token = token
	}
}

// WithModel sets the model name to use.
func WithModel(model string) Option {
	return func(o *options) {
		o.model = model
	}
}

// WithBaseURL sets the API base URL, e.g. http://localhost:8000/v1.
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}
