package benchmark_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/mfinkle/llm-agents/agent"
	"github.com/mfinkle/llm-agents/benchmark"
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
		Usage:      llms.TokenUsage{InputTokens: 100, OutputTokens: 20},
	}, nil
}

type weatherProvider struct{}

func (p *weatherProvider) Name() string { return "WeatherToolProvider" }

func (p *weatherProvider) GetTools() []*tools.Descriptor {
	return []*tools.Descriptor{
		{
			Name:        "get_weather",
			Description: "Get the weather.",
			Response:    "A forecast.",
			Param:       &tools.ParamInfo{Required: true, Type: tools.ParamString},
			Func: func(_ context.Context, _ any) (any, error) {
				return "It is sunny and 75 F.", nil
			},
		},
		{
			Name:        "get_datetime",
			Description: "Get date and time.",
			Response:    "The date and time.",
			Func: func(_ context.Context, _ any) (any, error) {
				return "2026-08-23 10:00 AM", nil
			},
		},
	}
}

func newRunner(t *testing.T, responses []string) *benchmark.Runner {
	t.Helper()
	reg := tools.NewRegistry()
	require.NoError(t, reg.Register(&weatherProvider{}))
	ag := agent.New(&scriptedModel{responses: responses}, reg)
	return benchmark.NewRunner(ag, "scripted", false, nil)
}

func TestRunner_SuccessfulCase(t *testing.T) {
	runner := newRunner(t, []string{
		`{"thought": "need the forecast", "type": "call_tool", "tool": "get_weather", "param": "94105"}`,
		`{"type": "output", "value": "The weather in 94105 is sunny and 75 F."}`,
	})

	cr := runner.RunCase(context.Background(), &benchmark.TestCase{
		ID:                       "weather_lookup",
		Prompt:                   "What is the weather like in 94105?",
		ExpectedTools:            []string{"get_weather"},
		ExpectedResponseContains: []string{"Weather", "75 f"},
	})

	assert.True(t, cr.Success)
	assert.True(t, cr.ToolsMatched)
	assert.True(t, cr.ResponseMatched)
	assert.Equal(t, []string{"get_weather"}, cr.ToolsCalled)
	assert.Equal(t, []string{"need the forecast"}, cr.Thoughts)
	assert.Equal(t, int64(240), cr.Usage.Total())
	assert.Empty(t, cr.Error)
}

func TestRunner_OptionalToolsDoNotFail(t *testing.T) {
	runner := newRunner(t, []string{
		`{"type": "call_tool", "tool": "get_weather", "param": "94105"}`,
		`{"type": "output", "value": "Sunny, 75 F."}`,
	})

	cr := runner.RunCase(context.Background(), &benchmark.TestCase{
		ID:            "optional",
		Prompt:        "weather please",
		ExpectedTools: []string{"~get_datetime", "get_weather"},
	})

	assert.True(t, cr.Success)
	assert.Equal(t, []string{"get_weather"}, cr.RequiredTools)
	assert.Equal(t, []string{"get_datetime"}, cr.OptionalTools)
	assert.Empty(t, cr.OptionalToolsUsed)
}

func TestRunner_MissingRequiredToolFails(t *testing.T) {
	runner := newRunner(t, []string{
		`{"type": "output", "value": "I guessed without tools."}`,
	})

	cr := runner.RunCase(context.Background(), &benchmark.TestCase{
		ID:            "missing_tool",
		Prompt:        "weather please",
		ExpectedTools: []string{"get_weather"},
	})

	assert.False(t, cr.Success)
	assert.False(t, cr.ToolsMatched)
	assert.True(t, cr.ResponseMatched)
}

func TestRunner_ResponseMismatchFails(t *testing.T) {
	runner := newRunner(t, []string{
		`{"type": "call_tool", "tool": "get_weather", "param": "94105"}`,
		`{"type": "output", "value": "It is nice outside."}`,
	})

	cr := runner.RunCase(context.Background(), &benchmark.TestCase{
		ID:                       "mismatch",
		Prompt:                   "weather please",
		ExpectedTools:            []string{"get_weather"},
		ExpectedResponseContains: []string{"75 F"},
	})

	assert.False(t, cr.Success)
	assert.True(t, cr.ToolsMatched)
	assert.False(t, cr.ResponseMatched)
}

func TestRunner_AgentErrorRecorded(t *testing.T) {
	// no scripted responses, the model errors immediately
	runner := newRunner(t, nil)

	cr := runner.RunCase(context.Background(), &benchmark.TestCase{
		ID:     "errored",
		Prompt: "anything",
	})

	assert.False(t, cr.Success)
	assert.NotEmpty(t, cr.Error)
}

func TestRunner_RunSummary(t *testing.T) {
	runner := newRunner(t, []string{
		`{"type": "call_tool", "tool": "get_weather", "param": "94105"}`,
		`{"type": "output", "value": "Sunny and 75 F."}`,
		`{"type": "output", "value": "I cannot help with that."}`,
	})

	cases := []*benchmark.TestCase{
		{
			ID:                       "pass",
			Prompt:                   "weather please",
			ExpectedTools:            []string{"get_weather"},
			ExpectedResponseContains: []string{"75 F"},
		},
		{
			ID:            "fail",
			Prompt:        "date please",
			ExpectedTools: []string{"get_datetime"},
		},
	}

	results, sum := runner.Run(context.Background(), cases)
	require.Len(t, results, 2)
	assert.Equal(t, 2, sum.TotalTests)
	assert.Equal(t, 1, sum.SuccessfulTests)
	assert.InDelta(t, 50.0, sum.SuccessRate, 0.01)
	assert.Equal(t, "scripted", sum.Model)
	// 2 calls for the first case + 1 for the second
	assert.Equal(t, int64(360), sum.Usage.Total())
}

func TestDefaultTestCases(t *testing.T) {
	cases := benchmark.DefaultTestCases()
	require.Len(t, cases, 12)

	ids := map[string]bool{}
	for _, tc := range cases {
		assert.NotEmpty(t, tc.ID)
		assert.NotEmpty(t, tc.Prompt)
		assert.False(t, ids[tc.ID], "duplicate test id %s", tc.ID)
		ids[tc.ID] = true
	}

	booking := cases[5]
	assert.Equal(t, "book_appointment", booking.ID)
	assert.Equal(t, []string{"get_available_appointments", "book_appointment"}, booking.RequiredTools())
	assert.Equal(t, []string{"get_appointment_specialties"}, booking.OptionalTools())
}

func TestReports(t *testing.T) {
	results := []*benchmark.CaseResult{
		{
			TestID:          "pass",
			Success:         true,
			ToolsCalled:     []string{"get_weather"},
			RequiredTools:   []string{"get_weather"},
			ToolsMatched:    true,
			ResponseMatched: true,
			Usage:           llms.TokenUsage{InputTokens: 100, OutputTokens: 20},
		},
		{
			TestID: "errored",
			Error:  "model exhausted",
		},
	}
	sum := &benchmark.Summary{
		Model:           "scripted",
		TotalTests:      2,
		SuccessfulTests: 1,
		SuccessRate:     50,
		Usage:           llms.TokenUsage{InputTokens: 100, OutputTokens: 20},
	}

	var console bytes.Buffer
	benchmark.PrintSummary(&console, results, sum)
	out := console.String()
	assert.Contains(t, out, "Success Rate: 50.00%")
	assert.Contains(t, out, "Total Tokens: 120")
	assert.Contains(t, out, "errored: model exhausted")

	var csvBuf bytes.Buffer
	require.NoError(t, benchmark.WriteCSV(&csvBuf, results))
	rows, err := csv.NewReader(&csvBuf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "test_id", rows[0][0])
	assert.Equal(t, "pass", rows[1][0])
	assert.Equal(t, "true", rows[1][1])
	assert.Equal(t, "120", rows[1][11])
	assert.Equal(t, "model exhausted", rows[2][12])

	var jsonBuf bytes.Buffer
	require.NoError(t, benchmark.WriteJSON(&jsonBuf, results))
	assert.Contains(t, jsonBuf.String(), `"test_id": "pass"`)
}
