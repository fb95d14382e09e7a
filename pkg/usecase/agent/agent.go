package agent

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/k-namiki/grounder/pkg/adapter"
	"github.com/k-namiki/grounder/pkg/config"
	"github.com/k-namiki/grounder/pkg/model"
	"github.com/k-namiki/grounder/pkg/utils/logging"
)

// Agent is the top-level entry point. It owns the configuration, one search
// client and the registry of named conversations.
type Agent struct {
	cfg     *config.Config
	search  adapter.SearchClient
	storage adapter.Storage

	mu            sync.RWMutex
	conversations map[string]*Conversation
	convSeq       int
}

// Option is a functional option for Agent
type Option func(*Agent)

// WithStorage enables transcript archiving through the given storage.
func WithStorage(s adapter.Storage) Option {
	return func(a *Agent) {
		a.storage = s
	}
}

// New creates an Agent. The configuration is validated here; an invalid
// configuration never produces a usable agent.
func New(cfg *config.Config, search adapter.SearchClient, opts ...Option) (*Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &Agent{
		cfg:           cfg,
		search:        search,
		conversations: map[string]*Conversation{},
	}

	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// Config returns the agent configuration.
func (a *Agent) Config() *config.Config {
	return a.cfg
}

// Ask answers a single question without conversation state. It never returns
// an error: empty results yield a fixed no-information answer, and any
// failure is converted into a textual fallback embedding the cause.
func (a *Agent) Ask(ctx context.Context, query string) string {
	results, err := a.search.Search(ctx, query)
	if err != nil {
		logging.From(ctx).Error("failed to generate response", "query", query, "error", err)
		return errorAnswerPrefix + err.Error()
	}

	if len(results) == 0 {
		logging.From(ctx).Warn("no search results found", "query", query)
		return noResultsAnswer
	}

	return Synthesize(query, results, nil).Answer
}

// Search returns raw retrieval results. Errors propagate to the caller.
func (a *Agent) Search(ctx context.Context, query string) ([]*model.SearchResult, error) {
	return a.search.Search(ctx, query)
}

// StartConversation registers and returns a new conversation. With an empty
// id one is generated as "conv_<n>" from a counter that never repeats within
// this agent, so ended conversations cannot cause id collisions.
func (a *Agent) StartConversation(id string) *Conversation {
	a.mu.Lock()
	defer a.mu.Unlock()

	if id == "" {
		a.convSeq++
		id = fmt.Sprintf("conv_%d", a.convSeq)
	}

	conv := &Conversation{agent: a, id: id}
	a.conversations[id] = conv

	logging.Default().Info("new conversation started", "conversation_id", id)
	return conv
}

// GetConversation returns the conversation registered under id.
func (a *Agent) GetConversation(id string) (*Conversation, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	conv, ok := a.conversations[id]
	return conv, ok
}

// ListConversations returns the ids of all active conversations, sorted.
func (a *Agent) ListConversations() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	ids := make([]string, 0, len(a.conversations))
	for id := range a.conversations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// EndConversation removes a conversation from the registry. Ending an
// unknown id is a no-op. The history is gone afterwards; the id may be
// reused for a logically unrelated conversation.
func (a *Agent) EndConversation(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.conversations[id]; ok {
		delete(a.conversations, id)
		logging.Default().Info("conversation ended", "conversation_id", id)
	}
}
