package agent

import (
	"github.com/google/uuid"
	"github.com/mfinkle/llm-agents/pkg/llms"
)

// Conversation holds the ordered message history of one chat session.
// It is an opaque handle: only the engine mutates it, and history is
// append-only, including on parse retries.
type Conversation struct {
	id       string
	messages []llms.Message
	usage    *UsageTracker
}

func newConversation(preamble string, examples []Example) *Conversation {
	c := &Conversation{
		id:    uuid.New().String(),
		usage: NewUsageTracker(),
	}
	c.append(llms.NewMessage(llms.RoleSystem, preamble))
	for _, ex := range examples {
		c.append(llms.NewMessage(llms.RoleUser, ex.Prompt))
		c.append(llms.NewMessage(llms.RoleAssistant, ex.Completion))
	}
	return c
}

func (c *Conversation) append(msg llms.Message) {
	c.messages = append(c.messages, msg)
}

// ID returns the unique conversation identifier.
func (c *Conversation) ID() string {
	return c.id
}

// Messages returns a copy of the conversation history.
func (c *Conversation) Messages() []llms.Message {
	out := make([]llms.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// TokenUsage returns the tokens consumed by this conversation.
func (c *Conversation) TokenUsage() llms.TokenUsage {
	return c.usage.Snapshot()
}
