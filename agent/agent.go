// Package agent implements the conversation engine: a ReAct loop that
// drives a chat model against a tool registry until the model emits a
// final output.
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/slices"
	"github.com/effective-security/xlog"
	"github.com/mfinkle/llm-agents/pkg/llms"
	"github.com/mfinkle/llm-agents/pkg/llmutils"
	"github.com/mfinkle/llm-agents/pkg/metricskey"
	"github.com/mfinkle/llm-agents/tools"
)

var logger = xlog.NewPackageLogger("github.com/mfinkle/llm-agents", "agent")

var (
	// ErrResponseValidation is returned when the model cannot produce a
	// well-formed structured response within the retry budget.
	ErrResponseValidation = errors.New("model response failed validation")
	// ErrStepBudgetExceeded is returned when a single ProcessMessage call
	// exceeds its tool dispatch budget.
	ErrStepBudgetExceeded = errors.New("tool call budget exceeded")
)

// StageType tags entries of the per-call processing log.
type StageType string

const (
	StageModelCall  StageType = "model_call"
	StageParseError StageType = "parse_error"
	StageToolCall   StageType = "tool_call"
	StageFinal      StageType = "final"
)

// StageRecord is one entry of the processing log returned by
// ProcessMessage, enough to reconstruct what the engine did.
type StageRecord struct {
	Stage   StageType `json:"stage"`
	Thought string    `json:"thought,omitempty"`
	Tool    string    `json:"tool,omitempty"`
	Param   any       `json:"param,omitempty"`
	Result  string    `json:"result,omitempty"`
	Error   string    `json:"error,omitempty"`
}

// Result is the outcome of one ProcessMessage call.
type Result struct {
	// Text is the final user-facing answer.
	Text string
	// Log records each engine stage in order.
	Log []StageRecord
	// Usage is the token usage of this call only.
	Usage llms.TokenUsage
}

// Agent drives conversations between a chat model and a tool registry.
// The engine processes one message at a time per conversation; the
// usage trackers are instance-owned.
type Agent struct {
	llm      llms.Model
	registry *tools.Registry
	cfg      *Config
	usage    *UsageTracker
}

// New returns an agent over the given model and registry.
func New(llmModel llms.Model, registry *tools.Registry, options ...Option) *Agent {
	return &Agent{
		llm:      llmModel,
		registry: registry,
		cfg:      NewConfig(options...),
		usage:    NewUsageTracker(),
	}
}

// Name returns the agent name.
func (a *Agent) Name() string {
	return a.cfg.Name
}

// Registry returns the tool registry backing this agent.
func (a *Agent) Registry() *tools.Registry {
	return a.registry
}

// TokenUsage returns the process-lifetime usage of this agent across
// all its conversations.
func (a *Agent) TokenUsage() llms.TokenUsage {
	return a.usage.Snapshot()
}

// ResetTokenUsage zeroes the agent-scoped usage counters.
func (a *Agent) ResetTokenUsage() {
	a.usage.Reset()
}

// CreateConversation returns a fresh conversation seeded with the
// system preamble: role, response contract, tool catalog and any
// configured few-shot examples.
func (a *Agent) CreateConversation() *Conversation {
	return newConversation(a.buildPreamble(), a.cfg.Examples)
}

func (a *Agent) buildPreamble() string {
	var sb strings.Builder
	sb.WriteString(`You are a helpful assistant that can answer various tasks.
User inputs will be passed as plain text.
All responses MUST use JSON format. You can reply with output, for example {"type": "output", "value": "text of your response"}.
Or you can request a tool call by replying with {"type": "call_tool", "tool": "tool_name", "param": "tool_parameters"}.
You may include a short "thought" field explaining your reasoning.
Call at most one tool per response, then wait for its result before deciding the next step.
Here are the set of tools you can call:
`)
	sb.WriteString(a.registry.Catalog())
	sb.WriteString("\n\n# OUTPUT SCHEMA\n")
	sb.WriteString(llmutils.BackticksJSON(ResponseSchema()))
	return sb.String()
}

// ProcessMessage appends the user message and runs the ReAct loop:
// model call, structured response parse, tool dispatch, repeat, until
// the model emits an output or a budget is exhausted.
//
// Malformed model responses are retried with a corrective instruction
// up to the retry budget; tool failures are reported back to the model
// and never retried by the engine. History is append-only throughout.
func (a *Agent) ProcessMessage(ctx context.Context, conv *Conversation, text string, opts ...Option) (*Result, error) {
	started := time.Now()
	cfg := a.cfg.Apply(opts...)
	defer metricskey.PerfAgentCall.MeasureSince(started, cfg.Name)

	res, err := a.run(ctx, cfg, conv, text)
	if err != nil {
		metricskey.StatsAgentCallsFailed.IncrCounter(1, cfg.Name)
		return nil, err
	}
	metricskey.StatsAgentCallsSucceeded.IncrCounter(1, cfg.Name)
	return res, nil
}

func (a *Agent) run(ctx context.Context, cfg *Config, conv *Conversation, text string) (*Result, error) {
	if conv == nil {
		return nil, errors.New("conversation is required")
	}

	conv.append(llms.NewMessage(llms.RoleUser, text))

	callOpts := cfg.GetCallOptions()
	modelName := a.llm.GetName()
	callback := cfg.CallbackHandler

	res := &Result{}
	retryCount := 0
	stepCount := 0

	for {
		if len(conv.messages) >= cfg.MaxMessages {
			return nil, errors.Newf("agent %s: the messages count exceeded limit", cfg.Name)
		}
		if llmutils.CountMessagesContentSize(conv.messages) > cfg.MaxContentSize {
			return nil, errors.Newf("agent %s: the content size exceeded limit", cfg.Name)
		}

		if callback != nil {
			callback.OnModelCallStart(ctx, a, conv.messages)
		}

		resp, err := a.llm.GenerateContent(ctx, conv.messages, callOpts...)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to generate content from LLM")
		}

		if callback != nil {
			callback.OnModelCallEnd(ctx, a, resp)
		}

		usage := resp.Usage
		if usage.Total() == 0 {
			// provider reported nothing, estimate
			usage = llmutils.EstimateUsage(conv.messages, resp.Content)
		}
		res.Usage.Add(usage)
		conv.usage.Add(usage)
		a.usage.Add(usage)
		metricskey.StatsLLMInputTokens.IncrCounter(float64(usage.InputTokens), cfg.Name, modelName)
		metricskey.StatsLLMOutputTokens.IncrCounter(float64(usage.OutputTokens), cfg.Name, modelName)

		res.Log = append(res.Log, StageRecord{
			Stage:  StageModelCall,
			Result: resp.Content,
		})

		// history stays append-only, the raw reply is recorded even
		// when it fails to parse
		conv.append(llms.NewMessage(llms.RoleAssistant, resp.Content))

		action, err := ParseResponse(resp.Content)
		if err != nil {
			metricskey.StatsAgentParseErrors.IncrCounter(1, cfg.Name)
			if callback != nil {
				callback.OnParseError(ctx, a, resp.Content, err)
			}
			res.Log = append(res.Log, StageRecord{
				Stage: StageParseError,
				Error: err.Error(),
			})

			retryCount++
			if retryCount > cfg.MaxRetries {
				logger.ContextKV(ctx, xlog.ERROR,
					"agent", cfg.Name,
					"status", "parse_retries_exhausted",
					"input", slices.StringUpto(text, 64),
					"retry_count", retryCount,
				)
				return nil, errors.WithMessagef(ErrResponseValidation, "no valid response after %d attempts", retryCount)
			}
			logger.ContextKV(ctx, xlog.WARNING,
				"agent", cfg.Name,
				"status", "retrying_malformed_response",
				"retry_count", retryCount,
				"err", err.Error(),
			)
			conv.append(llms.NewMessage(llms.RoleUser,
				`Your last response was not valid. Reply with a single JSON object matching the required format: {"type": "output", "value": "..."} or {"type": "call_tool", "tool": "...", "param": ...}.`))
			continue
		}
		retryCount = 0

		if action.Type == ResponseOutput {
			res.Text = action.Value
			res.Log = append(res.Log, StageRecord{
				Stage:   StageFinal,
				Thought: action.Thought,
				Result:  action.Value,
			})
			logger.ContextKV(ctx, xlog.DEBUG,
				"agent", cfg.Name,
				"conversation", conv.id,
				"status", "final_output",
				"steps", stepCount,
				"output", slices.StringUpto(action.Value, 64),
			)
			return res, nil
		}

		stepCount++
		if stepCount > cfg.MaxSteps {
			return nil, errors.WithMessagef(ErrStepBudgetExceeded, "after %d tool calls", stepCount-1)
		}

		record := StageRecord{
			Stage:   StageToolCall,
			Thought: action.Thought,
			Tool:    action.Tool,
			Param:   action.Param,
		}

		if callback != nil {
			callback.OnToolStart(ctx, a, action.Tool, action.Param)
		}

		toolStarted := time.Now()
		toolResult, err := a.registry.Dispatch(ctx, action.Tool, action.Param)
		metricskey.PerfToolCall.MeasureSince(toolStarted, action.Tool)
		if err != nil {
			// tool and validation errors are information for the model,
			// not a reason to fail the call
			metricskey.StatsToolCallsFailed.IncrCounter(1, action.Tool)
			if callback != nil {
				callback.OnToolError(ctx, a, action.Tool, err)
			}
			record.Error = err.Error()
			res.Log = append(res.Log, record)
			conv.append(llms.NewMessage(llms.RoleUser, fmt.Sprintf("Tool call failed: %s", err.Error())))
			continue
		}

		metricskey.StatsToolCallsSucceeded.IncrCounter(1, action.Tool)
		if callback != nil {
			callback.OnToolEnd(ctx, a, action.Tool, toolResult)
		}
		record.Result = toolResult
		res.Log = append(res.Log, record)
		conv.append(llms.NewMessage(llms.RoleUser, fmt.Sprintf("Tool result: %s", toolResult)))
	}
}
