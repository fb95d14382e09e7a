package agent_test

import (
	"fmt"
	"testing"

	"github.com/k-namiki/grounder/pkg/model"
	"github.com/k-namiki/grounder/pkg/usecase/agent"
	"github.com/m-mizutani/gt"
)

func TestSynthesize(t *testing.T) {
	results := []*model.SearchResult{
		model.NewSearchResult("Go 1.25", "released in August", "https://go.dev", 0.9, nil),
		model.NewSearchResult("Generics", "type parameters landed", "", 0.5, nil),
	}

	syn := agent.Synthesize("what's new in Go?", results, nil)

	gt.S(t, syn.Answer).Contains(`your query: "what's new in Go?"`)
	gt.S(t, syn.Answer).Contains("1. Go 1.25: released in August")
	gt.S(t, syn.Answer).Contains("2. Generics: type parameters landed")
	gt.S(t, syn.Answer).Contains("follow-up questions")
	gt.Equal(t, syn.History, "")
}

func TestSynthesizeEvidenceOrder(t *testing.T) {
	// Results are numbered in the given order, regardless of score
	results := []*model.SearchResult{
		model.NewSearchResult("Low", "low score first", "", 0.1, nil),
		model.NewSearchResult("High", "high score second", "", 0.9, nil),
	}

	syn := agent.Synthesize("q", results, nil)
	gt.S(t, syn.Answer).Contains("1. Low: low score first\n2. High: high score second")
}

func TestSynthesizeDeterministic(t *testing.T) {
	results := []*model.SearchResult{
		model.NewSearchResult("T", "S", "", 0.5, nil),
	}
	history := []*model.Message{
		model.NewMessage(model.RoleUser, "hello", nil),
	}

	first := agent.Synthesize("q", results, history)
	second := agent.Synthesize("q", results, history)
	gt.Equal(t, first, second)
}

func TestSynthesizeHistoryBlock(t *testing.T) {
	var history []*model.Message
	for i := 1; i <= 5; i++ {
		role := model.RoleUser
		if i%2 == 0 {
			role = model.RoleAssistant
		}
		history = append(history, model.NewMessage(role, fmt.Sprintf("message %d", i), nil))
	}

	results := []*model.SearchResult{model.NewSearchResult("T", "S", "", 0.5, nil)}
	syn := agent.Synthesize("q", results, history)

	// Only the last 3 messages survive, as "<role>: <content>" lines
	gt.Equal(t, syn.History, "user: message 3\nassistant: message 4\nuser: message 5")
	gt.S(t, syn.History).NotContains("message 1")
	gt.S(t, syn.History).NotContains("message 2")

	// The history block is computed but not rendered into the answer
	gt.S(t, syn.Answer).NotContains("message 3")
}

func TestSynthesizeShortHistory(t *testing.T) {
	history := []*model.Message{
		model.NewMessage(model.RoleUser, "first", nil),
		model.NewMessage(model.RoleAssistant, "second", nil),
	}

	results := []*model.SearchResult{model.NewSearchResult("T", "S", "", 0.5, nil)}
	syn := agent.Synthesize("q", results, history)
	gt.Equal(t, syn.History, "user: first\nassistant: second")
}
