package agent_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/k-namiki/grounder/pkg/config"
	"github.com/k-namiki/grounder/pkg/model"
	"github.com/k-namiki/grounder/pkg/usecase/agent"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

// mockSearch records queries and replays canned results
type mockSearch struct {
	results []*model.SearchResult
	err     error
	queries []string
}

func (m *mockSearch) Search(ctx context.Context, query string) ([]*model.SearchResult, error) {
	m.queries = append(m.queries, query)
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

// mockStorage keeps written objects in memory
type mockStorage struct {
	data map[string][]byte
}

func newMockStorage() *mockStorage {
	return &mockStorage{data: map[string][]byte{}}
}

type mockWriteCloser struct {
	*bytes.Buffer
	storage *mockStorage
	key     string
}

func (m *mockWriteCloser) Close() error {
	m.storage.data[m.key] = m.Buffer.Bytes()
	return nil
}

func (m *mockStorage) Put(ctx context.Context, key string) (io.WriteCloser, error) {
	return &mockWriteCloser{Buffer: &bytes.Buffer{}, storage: m, key: key}, nil
}

func (m *mockStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.data[key]
	if !ok {
		return nil, goerr.New("object not found", goerr.V("key", key))
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.New("test-project", "test-engine")
	gt.NoError(t, err)
	return cfg
}

func testResults() []*model.SearchResult {
	return []*model.SearchResult{
		model.NewSearchResult("Title A", "Snippet A", "https://a.example.com", 0.9, nil),
		model.NewSearchResult("Title B", "Snippet B", "", 0.4, nil),
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxResults = 99

	_, err := agent.New(cfg, &mockSearch{})
	gt.Error(t, err)
	gt.True(t, errors.Is(err, config.ErrInvalidConfig))
}

func TestAsk(t *testing.T) {
	search := &mockSearch{results: testResults()}
	ag, err := agent.New(testConfig(t), search)
	gt.NoError(t, err)

	answer := ag.Ask(context.Background(), "what is AI?")
	gt.S(t, answer).Contains(`your query: "what is AI?"`)
	gt.S(t, answer).Contains("1. Title A: Snippet A")
	gt.Equal(t, search.queries, []string{"what is AI?"})
}

func TestAskNoResults(t *testing.T) {
	ag, err := agent.New(testConfig(t), &mockSearch{})
	gt.NoError(t, err)

	answer := ag.Ask(context.Background(), "anything")
	gt.Equal(t, answer, "I couldn't find any relevant information for your query.")
}

func TestAskSearchFailure(t *testing.T) {
	search := &mockSearch{err: errors.New("service unavailable")}
	ag, err := agent.New(testConfig(t), search)
	gt.NoError(t, err)

	answer := ag.Ask(context.Background(), "anything")
	gt.S(t, answer).Contains("I encountered an error while searching for information:")
	gt.S(t, answer).Contains("service unavailable")
}

func TestSearchPassthrough(t *testing.T) {
	results := testResults()
	ag, err := agent.New(testConfig(t), &mockSearch{results: results})
	gt.NoError(t, err)

	got, err := ag.Search(context.Background(), "q")
	gt.NoError(t, err)
	gt.A(t, got).Length(2)
	gt.Equal(t, got[0], results[0])
	gt.Equal(t, got[1], results[1])
}

func TestSearchPassthroughError(t *testing.T) {
	boom := errors.New("boom")
	ag, err := agent.New(testConfig(t), &mockSearch{err: boom})
	gt.NoError(t, err)

	_, err = ag.Search(context.Background(), "q")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, boom))
}

func TestConversationRegistry(t *testing.T) {
	ag, err := agent.New(testConfig(t), &mockSearch{})
	gt.NoError(t, err)

	first := ag.StartConversation("")
	second := ag.StartConversation("")
	gt.V(t, first).NotNil()
	gt.V(t, second).NotNil()
	gt.Equal(t, ag.ListConversations(), []string{"conv_1", "conv_2"})

	// Each conversation knows its own id, generated or not
	gt.Equal(t, first.ID(), "conv_1")
	gt.Equal(t, second.ID(), "conv_2")

	got, ok := ag.GetConversation("conv_1")
	gt.True(t, ok)
	gt.Equal(t, got, first)

	ag.EndConversation("conv_1")
	gt.Equal(t, ag.ListConversations(), []string{"conv_2"})

	_, ok = ag.GetConversation("conv_1")
	gt.False(t, ok)
}

func TestConversationIDsNotReused(t *testing.T) {
	ag, err := agent.New(testConfig(t), &mockSearch{})
	gt.NoError(t, err)

	ag.StartConversation("")
	ag.StartConversation("")
	ag.EndConversation("conv_1")

	// The counter keeps increasing, ending a conversation cannot cause
	// a later auto-generated ID to collide
	ag.StartConversation("")
	gt.Equal(t, ag.ListConversations(), []string{"conv_2", "conv_3"})
}

func TestConversationExplicitID(t *testing.T) {
	ag, err := agent.New(testConfig(t), &mockSearch{})
	gt.NoError(t, err)

	conv := ag.StartConversation("research")
	gt.Equal(t, conv.ID(), "research")
	got, ok := ag.GetConversation("research")
	gt.True(t, ok)
	gt.Equal(t, got, conv)
}

func TestEndConversationAbsent(t *testing.T) {
	ag, err := agent.New(testConfig(t), &mockSearch{})
	gt.NoError(t, err)

	// No-op, no panic
	ag.EndConversation("never-started")
	gt.A(t, ag.ListConversations()).Length(0)
}

func TestSaveTranscript(t *testing.T) {
	ctx := context.Background()
	storage := newMockStorage()
	search := &mockSearch{results: testResults()}
	ag, err := agent.New(testConfig(t), search, agent.WithStorage(storage))
	gt.NoError(t, err)

	conv := ag.StartConversation("session")
	conv.AddContext("focus on 2024")
	_, err = conv.Ask(ctx, "AI news")
	gt.NoError(t, err)

	key, err := ag.SaveTranscript(ctx, "session")
	gt.NoError(t, err)
	gt.True(t, strings.HasPrefix(key, "transcripts/"))
	gt.True(t, strings.HasSuffix(key, ".json"))

	var saved model.Transcript
	gt.NoError(t, json.Unmarshal(storage.data[key], &saved))
	gt.Equal(t, saved.ConversationID, "session")
	gt.Equal(t, saved.Context, "focus on 2024")
	gt.A(t, saved.Messages).Length(2)
	gt.Equal(t, saved.Messages[0].Role, model.RoleUser)
	gt.Equal(t, saved.Messages[0].Content, "AI news")
	gt.Equal(t, saved.Messages[1].Role, model.RoleAssistant)

	// Saving does not end the conversation
	_, ok := ag.GetConversation("session")
	gt.True(t, ok)
}

func TestSaveTranscriptUnknownConversation(t *testing.T) {
	ag, err := agent.New(testConfig(t), &mockSearch{}, agent.WithStorage(newMockStorage()))
	gt.NoError(t, err)

	_, err = ag.SaveTranscript(context.Background(), "missing")
	gt.Error(t, err)
}

func TestSaveTranscriptWithoutStorage(t *testing.T) {
	ag, err := agent.New(testConfig(t), &mockSearch{})
	gt.NoError(t, err)
	ag.StartConversation("session")

	_, err = ag.SaveTranscript(context.Background(), "session")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, agent.ErrNoStorage))
}
