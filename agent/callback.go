package agent

import (
	"context"
	"fmt"
	"io"

	"github.com/mfinkle/llm-agents/pkg/llms"
)

// Callback receives engine lifecycle events.
type Callback interface {
	OnModelCallStart(ctx context.Context, agent *Agent, messages []llms.Message)
	OnModelCallEnd(ctx context.Context, agent *Agent, resp *llms.ContentResponse)
	OnParseError(ctx context.Context, agent *Agent, raw string, err error)
	OnToolStart(ctx context.Context, agent *Agent, tool string, param any)
	OnToolEnd(ctx context.Context, agent *Agent, tool string, result string)
	OnToolError(ctx context.Context, agent *Agent, tool string, err error)
}

// PrinterCallback writes engine events to a writer,
// used by the CLIs in verbose mode.
type PrinterCallback struct {
	Out io.Writer
}

var _ Callback = (*PrinterCallback)(nil)

func (p *PrinterCallback) OnModelCallStart(_ context.Context, _ *Agent, messages []llms.Message) {
	fmt.Fprintf(p.Out, "[model] sending %d messages\n", len(messages))
}

func (p *PrinterCallback) OnModelCallEnd(_ context.Context, _ *Agent, resp *llms.ContentResponse) {
	fmt.Fprintf(p.Out, "[model] %s\n", resp.Content)
}

func (p *PrinterCallback) OnParseError(_ context.Context, _ *Agent, raw string, err error) {
	fmt.Fprintf(p.Out, "[parse] failed: %s\n", err.Error())
}

func (p *PrinterCallback) OnToolStart(_ context.Context, _ *Agent, tool string, param any) {
	fmt.Fprintf(p.Out, "[tool] %s(%v)\n", tool, param)
}

func (p *PrinterCallback) OnToolEnd(_ context.Context, _ *Agent, tool string, result string) {
	fmt.Fprintf(p.Out, "[tool] %s => %s\n", tool, result)
}

func (p *PrinterCallback) OnToolError(_ context.Context, _ *Agent, tool string, err error) {
	fmt.Fprintf(p.Out, "[tool] %s failed: %s\n", tool, err.Error())
}
