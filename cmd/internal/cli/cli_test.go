package cli_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/mfinkle/llm-agents/agent"
	"github.com/mfinkle/llm-agents/cmd/internal/cli"
	"github.com/mfinkle/llm-agents/pkg/llms"
	"github.com/mfinkle/llm-agents/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedModel struct {
	responses []string
	idx       int
}

func (m *scriptedModel) GetName() string { return "scripted" }
func (m *scriptedModel) GetProviderType() llms.ProviderType { return llms.ProviderOpenAI }

func (m *scriptedModel) GenerateContent(_ context.Context, _ []llms.Message, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	if m.idx >= len(m.responses) {
		return nil, errors.New("model exhausted")
	}
	content := m.responses[m.idx]
	m.idx++
	return &llms.ContentResponse{
		Content:    content,
		StopReason: "stop",
		Usage:      llms.TokenUsage{InputTokens: 10, OutputTokens: 5},
	}, nil
}

type emptyProvider struct{}

func (p *emptyProvider) Name() string { return "EmptyToolProvider" }
func (p *emptyProvider) GetTools() []*tools.Descriptor { return nil }

func newREPLAgent(t *testing.T, responses []string) *agent.Agent {
	t.Helper()
	reg := tools.NewRegistry()
	require.NoError(t, reg.Register(&emptyProvider{}))
	return agent.New(&scriptedModel{responses: responses}, reg)
}

func TestRunREPL(t *testing.T) {
	ag := newREPLAgent(t, []string{
		`{"type": "output", "value": "Hello!"}`,
		`{"type": "output", "value": "It is sunny."}`,
	})

	in := strings.NewReader("hi there\n\nhow is the weather\nexit\n")
	var out bytes.Buffer
	require.NoError(t, cli.RunREPL(context.Background(), ag, in, &out))

	text := out.String()
	assert.Contains(t, text, "Agent: Hello!")
	assert.Contains(t, text, "Agent: It is sunny.")
	// two round trips at 15 tokens each
	assert.Contains(t, text, "Token usage: 20 input, 10 output, 30 total")
}

func TestRunREPL_ExitWordsCaseInsensitive(t *testing.T) {
	ag := newREPLAgent(t, nil)

	in := strings.NewReader("BYE\n")
	var out bytes.Buffer
	require.NoError(t, cli.RunREPL(context.Background(), ag, in, &out))
	assert.NotContains(t, out.String(), "Agent:")
}

func TestRunREPL_ErrorKeepsLoopAlive(t *testing.T) {
	ag := newREPLAgent(t, []string{
		`not json at all`,
		`still not json`,
		`nope`,
		`more garbage`,
		`{"type": "output", "value": "Recovered."}`,
	})

	in := strings.NewReader("first\nsecond\nquit\n")
	var out bytes.Buffer
	require.NoError(t, cli.RunREPL(context.Background(), ag, in, &out))

	text := out.String()
	assert.Contains(t, text, "Error:")
	assert.Contains(t, text, "Agent: Recovered.")
}

func TestBuildModel_Flags(t *testing.T) {
	model, err := cli.BuildModel("", "OLLAMA", "llama3.2")
	require.NoError(t, err)
	assert.Equal(t, "llama3.2", model.GetName())
	assert.Equal(t, llms.ProviderOllama, model.GetProviderType())

	model, err = cli.BuildModel("", "", "")
	require.NoError(t, err)
	assert.Equal(t, "qwen2.5", model.GetName())
}
