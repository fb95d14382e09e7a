package model

import (
	"time"

	"github.com/google/uuid"
)

type TranscriptID string

// NewTranscriptID generates a new unique TranscriptID
func NewTranscriptID() TranscriptID {
	return TranscriptID(uuid.New().String())
}

// Transcript is an archived snapshot of a conversation, written to object
// storage when the caller asks for it. Archiving does not keep the
// conversation itself alive.
type Transcript struct {
	ID             TranscriptID `json:"id"`
	ConversationID string       `json:"conversation_id"`
	Context        string       `json:"context,omitempty"`
	Messages       []*Message   `json:"messages"`
	SavedAt        time.Time    `json:"saved_at"`
}
