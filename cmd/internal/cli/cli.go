// Package cli holds the shared wiring of the command line tools: log
// setup, model construction and the interactive loop.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
	"github.com/mfinkle/llm-agents/agent"
	"github.com/mfinkle/llm-agents/pkg/llmfactory"
	"github.com/mfinkle/llm-agents/pkg/llms"
)

// exitWords end the interactive loop.
var exitWords = []string{"exit", "quit", "bye"}

// SetupLogs installs a string formatter on stderr. Debug raises the
// global level.
func SetupLogs(debug bool) {
	formatter := xlog.NewStringFormatter(os.Stderr)
	xlog.SetFormatter(formatter)
	if debug {
		xlog.SetGlobalLogLevel(xlog.DEBUG)
	} else {
		xlog.SetGlobalLogLevel(xlog.WARNING)
	}
}

// BuildModel constructs a chat model from a factory config file, or
// from the provider/model flags when no file is given.
func BuildModel(configFile, provider, model string) (llms.Model, error) {
	if configFile != "" {
		f, err := llmfactory.Load(configFile)
		if err != nil {
			return nil, err
		}
		if provider != "" {
			return f.ModelByName(provider)
		}
		return f.DefaultModel()
	}

	return llmfactory.NewLLM(&llmfactory.ProviderConfig{
		Name:         "default",
		Type:         values.StringsCoalesce(provider, string(llms.ProviderOllama)),
		DefaultModel: values.StringsCoalesce(model, "qwen2.5"),
	})
}

// RunREPL reads prompts from in and processes each through the agent
// in one long-lived conversation until an exit word or EOF. The token
// usage summary is printed on exit.
func RunREPL(ctx context.Context, ag *agent.Agent, in io.Reader, out io.Writer) error {
	conv := ag.CreateConversation()
	scanner := bufio.NewScanner(in)

	fmt.Fprintln(out, "Type 'exit', 'quit', or 'bye' to end the conversation.")
	for {
		fmt.Fprint(out, "You: ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if isExitWord(line) {
			break
		}

		res, err := ag.ProcessMessage(ctx, conv, line)
		if err != nil {
			fmt.Fprintf(out, "Error: %s\n", err.Error())
			continue
		}
		fmt.Fprintf(out, "Agent: %s\n", res.Text)
	}

	usage := ag.TokenUsage()
	fmt.Fprintf(out, "\nToken usage: %d input, %d output, %d total\n",
		usage.InputTokens, usage.OutputTokens, usage.Total())
	return scanner.Err()
}

func isExitWord(line string) bool {
	lowered := strings.ToLower(line)
	for _, word := range exitWords {
		if lowered == word {
			return true
		}
	}
	return false
}
