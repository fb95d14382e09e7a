package agent

import (
	"context"
	"encoding/json"
	"time"

	"github.com/k-namiki/grounder/pkg/model"
	"github.com/k-namiki/grounder/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

var ErrNoStorage = goerr.New("transcript storage is not configured")

// SaveTranscript archives the current state of a conversation as JSON and
// returns the storage key. The conversation itself stays registered; ending
// it afterwards still destroys the in-memory history.
func (a *Agent) SaveTranscript(ctx context.Context, id string) (string, error) {
	if a.storage == nil {
		return "", ErrNoStorage
	}

	conv, ok := a.GetConversation(id)
	if !ok {
		return "", goerr.New("conversation not found", goerr.V("conversation_id", id))
	}

	transcript := &model.Transcript{
		ID:             model.NewTranscriptID(),
		ConversationID: id,
		Context:        conv.Context(),
		Messages:       conv.GetHistory(),
		SavedAt:        time.Now(),
	}

	key := "transcripts/" + string(transcript.ID) + ".json"

	writer, err := a.storage.Put(ctx, key)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create transcript writer", goerr.V("key", key))
	}

	data, err := json.Marshal(transcript)
	if err != nil {
		return "", goerr.Wrap(err, "failed to marshal transcript")
	}

	if _, err := writer.Write(data); err != nil {
		return "", goerr.Wrap(err, "failed to write transcript", goerr.V("key", key))
	}
	if err := writer.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to close transcript writer", goerr.V("key", key))
	}

	logging.From(ctx).Info("transcript saved",
		"conversation_id", id, "key", key, "messages", len(transcript.Messages))
	return key, nil
}
