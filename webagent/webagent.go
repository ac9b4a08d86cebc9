package webagent

import (
	"context"
	"fmt"
	"sync"

	"github.com/mfinkle/llm-agents/agent"
	"github.com/mfinkle/llm-agents/pkg/llms"
	"github.com/mfinkle/llm-agents/tools"
)

// WebAgent completes a task on a web page by driving the page tools
// through a conversation. Each instance owns exactly one page.
type WebAgent struct {
	page      Page
	agent     *agent.Agent
	closeOnce sync.Once
	closeErr  error
}

// New returns a web agent over the given model and page.
func New(model llms.Model, page Page, opts ...agent.Option) (*WebAgent, error) {
	registry := tools.NewRegistry()
	if err := registry.Register(NewPageProvider(page)); err != nil {
		return nil, err
	}

	opts = append([]agent.Option{agent.WithName("WebAgent")}, opts...)
	return &WebAgent{
		page:  page,
		agent: agent.New(model, registry, opts...),
	}, nil
}

// Run navigates to the initial URL if given, then asks the agent to
// complete the task using the page tools.
func (w *WebAgent) Run(ctx context.Context, task, initialURL string) (*agent.Result, error) {
	if initialURL != "" {
		if err := w.page.Navigate(ctx, initialURL); err != nil {
			return nil, err
		}
	}

	conv := w.agent.CreateConversation()
	prompt := fmt.Sprintf(`Complete the following task using the browser tools.
Use get_content to read the page HTML, then act on elements with valid CSS selectors.
Look for semantic ID, ROLE, and ARIA-LABEL attributes to identify elements.
Only report information you actually found on the page.
Task: %s`, task)

	return w.agent.ProcessMessage(ctx, conv, prompt)
}

// TokenUsage returns the tokens consumed by this web agent.
func (w *WebAgent) TokenUsage() llms.TokenUsage {
	return w.agent.TokenUsage()
}

// Close releases the page. Safe to call multiple times; the page is
// closed exactly once.
func (w *WebAgent) Close() error {
	w.closeOnce.Do(func() {
		w.closeErr = w.page.Close()
	})
	return w.closeErr
}
