package agent

import (
	"context"
	"sync"

	"github.com/k-namiki/grounder/pkg/model"
	"github.com/k-namiki/grounder/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Conversation is one multi-turn session. It owns its message log and a
// free-text context string prepended to every retrieval query. Turns on one
// conversation are serialized; separate conversations are independent.
type Conversation struct {
	agent *Agent
	id    string

	mu       sync.Mutex
	context  string
	messages []*model.Message
}

// ID returns the registry id of this conversation, including one generated
// by StartConversation.
func (c *Conversation) ID() string {
	return c.id
}

// AddContext replaces the conversation context. The newest call wins; the
// next Ask uses it.
func (c *Conversation) AddContext(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.context = text
}

// Context returns the current conversation context.
func (c *Conversation) Context() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.context
}

// AddMessage appends a message with the current timestamp.
func (c *Conversation) AddMessage(role model.Role, content string, results []*model.SearchResult) error {
	if err := role.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, model.NewMessage(role, content, results))
	return nil
}

// GetHistory returns a copy of the message log. Mutating the returned slice
// does not affect the conversation.
func (c *Conversation) GetHistory() []*model.Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	history := make([]*model.Message, len(c.messages))
	copy(history, c.messages)
	return history
}

// Ask resolves one turn: the stored context is prepended to the query for
// retrieval, the original query is logged as the user message, and the
// synthesized answer is appended together with the results it was grounded
// in. Retrieval failures propagate to the caller.
func (c *Conversation) Ask(ctx context.Context, query string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	effective := query
	if c.context != "" {
		effective = c.context + " " + query
	}

	c.messages = append(c.messages, model.NewMessage(model.RoleUser, query, nil))

	results, err := c.agent.search.Search(ctx, effective)
	if err != nil {
		return "", goerr.Wrap(err, "failed to resolve turn", goerr.V("query", query))
	}

	answer := noResultsAnswer
	if len(results) > 0 {
		answer = Synthesize(effective, results, c.messages).Answer
	}

	c.messages = append(c.messages, model.NewMessage(model.RoleAssistant, answer, results))

	logging.From(ctx).Debug("turn resolved",
		"query", query, "result_count", len(results), "history_len", len(c.messages))
	return answer, nil
}
