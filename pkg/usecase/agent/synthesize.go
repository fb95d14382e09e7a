package agent

import (
	"fmt"
	"strings"

	"github.com/k-namiki/grounder/pkg/model"
)

const (
	noResultsAnswer   = "I couldn't find any relevant information for your query."
	errorAnswerPrefix = "I encountered an error while searching for information: "

	// recentHistoryLimit is how many trailing messages feed the history
	// block. Older messages are dropped, not summarized.
	recentHistoryLimit = 3
)

// Synthesis is the outcome of composing an answer from retrieval evidence.
// History holds the recent-dialogue block; the current answer template does
// not render it, it is kept for templates that will.
type Synthesis struct {
	Answer  string
	History string
}

// Synthesize composes a grounded answer from ranked results and recent
// dialogue. It is deterministic: same inputs always yield the same output,
// with no external calls. Results are used in the given order, one numbered
// evidence line each. Callers must not invoke it with zero results.
func Synthesize(query string, results []*model.SearchResult, history []*model.Message) Synthesis {
	evidence := make([]string, 0, len(results))
	for i, r := range results {
		evidence = append(evidence, fmt.Sprintf("%d. %s: %s", i+1, r.Title, r.Snippet))
	}

	answer := fmt.Sprintf(`Based on my search results, here's what I found regarding your query: "%s"

%s

This information is grounded in current search results from authoritative sources. If you need more specific details or have follow-up questions, please let me know!`,
		query, strings.Join(evidence, "\n"))

	return Synthesis{
		Answer:  answer,
		History: historyBlock(history),
	}
}

func historyBlock(history []*model.Message) string {
	if len(history) == 0 {
		return ""
	}

	recent := history
	if len(recent) > recentHistoryLimit {
		recent = recent[len(recent)-recentHistoryLimit:]
	}

	lines := make([]string, 0, len(recent))
	for _, msg := range recent {
		lines = append(lines, fmt.Sprintf("%s: %s", msg.Role, msg.Content))
	}
	return strings.Join(lines, "\n")
}
