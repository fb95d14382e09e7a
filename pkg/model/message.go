package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

var ErrInvalidRole = goerr.New("invalid message role")

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Validate checks if the role is valid
func (r Role) Validate() error {
	switch r {
	case RoleUser, RoleAssistant:
		return nil
	default:
		return goerr.Wrap(ErrInvalidRole, "unknown role", goerr.V("role", r))
	}
}

// Message is one turn entry in a conversation log. SearchResults is set only
// on assistant messages that were grounded in retrieved evidence.
type Message struct {
	Role          Role            `json:"role"`
	Content       string          `json:"content"`
	Timestamp     time.Time       `json:"timestamp"`
	SearchResults []*SearchResult `json:"search_results,omitempty"`
	Metadata      map[string]any  `json:"metadata"`
}

// NewMessage creates a Message stamped with the current time and its own
// metadata map. Messages are never mutated after creation.
func NewMessage(role Role, content string, results []*SearchResult) *Message {
	return &Message{
		Role:          role,
		Content:       content,
		Timestamp:     time.Now(),
		SearchResults: results,
		Metadata:      map[string]any{},
	}
}
