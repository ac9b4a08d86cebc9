// Package benchmark measures agent quality over scripted test cases:
// which tools were called, what the answer contained, and how many
// tokens it cost.
package benchmark

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/effective-security/xlog"
	"github.com/mfinkle/llm-agents/agent"
	"github.com/mfinkle/llm-agents/pkg/llms"
)

var logger = xlog.NewPackageLogger("github.com/mfinkle/llm-agents", "benchmark")

// OptionalPrefix marks an expected tool that does not fail the test
// when absent.
const OptionalPrefix = "~"

// TestCase is one scripted benchmark prompt with its success criteria.
type TestCase struct {
	ID     string `json:"id" yaml:"id"`
	Prompt string `json:"prompt" yaml:"prompt"`
	// ExpectedTools lists tools that must be called; a "~" prefix
	// marks a tool as optional.
	ExpectedTools []string `json:"expected_tools,omitempty" yaml:"expected_tools,omitempty"`
	// ExpectedResponseContains lists substrings the final answer must
	// contain, matched case-insensitively.
	ExpectedResponseContains []string `json:"expected_response_contains,omitempty" yaml:"expected_response_contains,omitempty"`
}

// RequiredTools returns the tools without the optional prefix.
func (tc *TestCase) RequiredTools() []string {
	var out []string
	for _, tool := range tc.ExpectedTools {
		if !strings.HasPrefix(tool, OptionalPrefix) {
			out = append(out, tool)
		}
	}
	return out
}

// OptionalTools returns the optional tools with the prefix stripped.
func (tc *TestCase) OptionalTools() []string {
	var out []string
	for _, tool := range tc.ExpectedTools {
		if strings.HasPrefix(tool, OptionalPrefix) {
			out = append(out, strings.TrimPrefix(tool, OptionalPrefix))
		}
	}
	return out
}

// CaseResult holds the outcome and metrics of one test case.
type CaseResult struct {
	TestID            string          `json:"test_id"`
	Prompt            string          `json:"prompt"`
	Success           bool            `json:"success"`
	ExecutionTime     time.Duration   `json:"execution_time"`
	Response          string          `json:"response,omitempty"`
	ToolsCalled       []string        `json:"tools_called,omitempty"`
	RequiredTools     []string        `json:"required_tools,omitempty"`
	OptionalTools     []string        `json:"optional_tools,omitempty"`
	OptionalToolsUsed []string        `json:"optional_tools_used,omitempty"`
	ToolsMatched      bool            `json:"tools_matched"`
	ResponseMatched   bool            `json:"response_matched"`
	Thoughts          []string        `json:"thoughts,omitempty"`
	Usage             llms.TokenUsage `json:"token_usage"`
	Error             string          `json:"error,omitempty"`
}

// Summary aggregates a benchmark run.
type Summary struct {
	Model           string          `json:"model"`
	TotalTests      int             `json:"total_tests"`
	SuccessfulTests int             `json:"successful_tests"`
	SuccessRate     float64         `json:"success_rate"`
	AvgExecTime     time.Duration   `json:"avg_execution_time"`
	Usage           llms.TokenUsage `json:"token_usage"`
}

// Runner executes test cases against one agent, each in a fresh
// conversation.
type Runner struct {
	agent   *agent.Agent
	model   string
	verbose bool
	out     io.Writer
}

// NewRunner returns a runner over the agent. When verbose, per-test
// progress is written to out.
func NewRunner(ag *agent.Agent, model string, verbose bool, out io.Writer) *Runner {
	return &Runner{
		agent:   ag,
		model:   model,
		verbose: verbose,
		out:     out,
	}
}

func (r *Runner) logf(format string, args ...any) {
	if r.verbose && r.out != nil {
		fmt.Fprintf(r.out, format+"\n", args...)
	}
}

// RunCase executes one test case. Agent failures are recorded on the
// result, not returned, so a broken case does not abort the suite.
func (r *Runner) RunCase(ctx context.Context, tc *TestCase) *CaseResult {
	r.logf("running test: %s", tc.ID)
	r.logf("prompt: %s", tc.Prompt)

	// usage is measured per test
	r.agent.ResetTokenUsage()

	cr := &CaseResult{
		TestID:        tc.ID,
		Prompt:        tc.Prompt,
		RequiredTools: tc.RequiredTools(),
		OptionalTools: tc.OptionalTools(),
	}

	started := time.Now()
	conv := r.agent.CreateConversation()
	res, err := r.agent.ProcessMessage(ctx, conv, tc.Prompt)
	cr.ExecutionTime = time.Since(started)

	if err != nil {
		cr.Error = err.Error()
		cr.Usage = r.agent.TokenUsage()
		logger.ContextKV(ctx, xlog.WARNING, "test", tc.ID, "err", err.Error())
		r.logf("test %s errored: %s", tc.ID, err.Error())
		return cr
	}

	cr.Response = res.Text
	cr.Usage = res.Usage

	for _, rec := range res.Log {
		switch rec.Stage {
		case agent.StageToolCall:
			cr.ToolsCalled = append(cr.ToolsCalled, rec.Tool)
			if rec.Thought != "" {
				cr.Thoughts = append(cr.Thoughts, rec.Thought)
			}
		case agent.StageFinal:
			if rec.Thought != "" {
				cr.Thoughts = append(cr.Thoughts, rec.Thought)
			}
		}
	}

	cr.ToolsMatched = containsAll(cr.ToolsCalled, cr.RequiredTools)
	for _, tool := range cr.OptionalTools {
		if contains(cr.ToolsCalled, tool) {
			cr.OptionalToolsUsed = append(cr.OptionalToolsUsed, tool)
		}
	}

	cr.ResponseMatched = true
	lowered := strings.ToLower(cr.Response)
	for _, expected := range tc.ExpectedResponseContains {
		if !strings.Contains(lowered, strings.ToLower(expected)) {
			cr.ResponseMatched = false
			break
		}
	}

	cr.Success = cr.ToolsMatched && cr.ResponseMatched
	if cr.Success {
		r.logf("test %s passed, time %s, tokens %d", tc.ID, cr.ExecutionTime, cr.Usage.Total())
	} else {
		r.logf("test %s failed, time %s, tokens %d", tc.ID, cr.ExecutionTime, cr.Usage.Total())
		if !cr.ToolsMatched {
			r.logf("  tools mismatch, required %v, got %v", cr.RequiredTools, cr.ToolsCalled)
		}
		if !cr.ResponseMatched {
			r.logf("  response missing expected text %v", tc.ExpectedResponseContains)
		}
	}
	return cr
}

// Run executes all test cases and returns their results with a
// summary.
func (r *Runner) Run(ctx context.Context, cases []*TestCase) ([]*CaseResult, *Summary) {
	results := make([]*CaseResult, 0, len(cases))
	sum := &Summary{
		Model:      r.model,
		TotalTests: len(cases),
	}

	var totalExec time.Duration
	for _, tc := range cases {
		cr := r.RunCase(ctx, tc)
		results = append(results, cr)

		totalExec += cr.ExecutionTime
		sum.Usage.Add(cr.Usage)
		if cr.Success {
			sum.SuccessfulTests++
		}
	}

	if sum.TotalTests > 0 {
		sum.SuccessRate = float64(sum.SuccessfulTests) / float64(sum.TotalTests) * 100
		sum.AvgExecTime = totalExec / time.Duration(sum.TotalTests)
	}
	return results, sum
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func containsAll(haystack, needles []string) bool {
	for _, needle := range needles {
		if !contains(haystack, needle) {
			return false
		}
	}
	return true
}
