package ai

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"
)

// Role identifies who wrote a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one transcript entry.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Asker answers a chat message.
type Asker interface {
	Ask(ctx context.Context, message string) (string, error)
}

// Conversation is the chat transcript with the assistant. The user's turn
// is recorded before the request goes out and the reply, or the fallback,
// after it returns.
type Conversation struct {
	asker    Asker
	now      func() time.Time
	onChange func([]Turn, bool)

	mu     sync.Mutex
	turns  []Turn
	typing bool
}

// NewConversation starts an empty transcript. onChange receives the
// transcript and whether a reply is pending.
func NewConversation(asker Asker, onChange func([]Turn, bool)) *Conversation {
	return &Conversation{asker: asker, now: time.Now, onChange: onChange}
}

// Send records text, asks the assistant and records the reply. Blank text
// is ignored.
func (c *Conversation) Send(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	c.append(Turn{Role: RoleUser, Content: text, Timestamp: c.now()}, true)
	reply, _ := c.asker.Ask(ctx, text)
	c.append(Turn{Role: RoleAssistant, Content: reply, Timestamp: c.now()}, false)
}

func (c *Conversation) append(t Turn, typing bool) {
	c.mu.Lock()
	c.turns = append(c.turns, t)
	c.typing = typing
	turns := slices.Clone(c.turns)
	c.mu.Unlock()
	if c.onChange != nil {
		c.onChange(turns, typing)
	}
}

// Turns returns the transcript.
func (c *Conversation) Turns() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.turns)
}
