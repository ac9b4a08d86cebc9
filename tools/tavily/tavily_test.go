package tavily_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
	tavilymodels "github.com/diverged/tavily-go/models"
	"github.com/mfinkle/llm-agents/tools"
	"github.com/mfinkle/llm-agents/tools/tavily"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_Search(t *testing.T) {
	t.Setenv("TAVILY_API_KEY", "testkey")
	assert.True(t, tavily.Enabled())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req tavilymodels.SearchRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		assert.NoError(t, err)
		assert.Equal(t, "What is capital of France", req.Query)
		assert.True(t, req.IncludeAnswer)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"answer": "Paris",
			"results": []map[string]any{
				{"title": "Paris", "url": "https://en.wikipedia.org/wiki/Paris", "content": "Capital of France", "score": 0.9},
			},
		})
	}))
	defer server.Close()

	provider, err := tavily.New()
	require.NoError(t, err)
	provider.WithBaseURL(server.URL).WithHTTPClient(server.Client())

	assert.Equal(t, tavily.ProviderName, provider.Name())

	reg := tools.NewRegistry()
	require.NoError(t, reg.Register(provider))
	assert.Contains(t, reg.Catalog(), "<name>web_search</name>")

	res, err := reg.Dispatch(context.Background(), "web_search", "What is capital of France")
	require.NoError(t, err)
	assert.Contains(t, res, `"answer":"Paris"`)
	assert.Contains(t, res, `"title":"Paris"`)
	assert.Contains(t, res, `"score":0.9`)
}

func TestProvider_EmptyQuery(t *testing.T) {
	t.Setenv("TAVILY_API_KEY", "testkey")

	provider, err := tavily.New()
	require.NoError(t, err)

	reg := tools.NewRegistry()
	require.NoError(t, reg.Register(provider))

	_, err = reg.Dispatch(context.Background(), "web_search", "   ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, tools.ErrToolExecution))
}

func TestProvider_MissingAPIKey(t *testing.T) {
	t.Setenv("TAVILY_API_KEY", "")
	assert.False(t, tavily.Enabled())

	_, err := tavily.New()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TAVILY_API_KEY")
}
