package search

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"talksy/domain"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	writer, err := bluge.OpenWriter(bluge.InMemoryOnlyConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })
	return NewIndex(writer, 10, slog.Default())
}

func message(sender, receiver, text string) domain.Message {
	return domain.Message{
		ID:         uuid.New(),
		SenderID:   sender,
		ReceiverID: receiver,
		Text:       text,
		Language:   DetectLanguage(text),
		CreatedAt:  time.Now().UTC(),
	}
}

func Test_SearchMessages_Finds_Indexed_Text(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)

	stored := message("alice", "bob", "let's meet at the harbour tomorrow")
	req.NoError(index.IndexMessage(stored))
	req.NoError(index.IndexMessage(message("alice", "bob", "completely unrelated topic")))

	hits, err := index.SearchMessages(context.Background(), "harbour", "")
	req.NoError(err)
	req.Len(hits, 1)
	req.Equal(stored.ID, hits[0].MessageID)
	req.Equal("alice", hits[0].SenderID)
	req.Equal(stored.Conversation(), hits[0].ConversationID)
}

func Test_SearchMessages_Scoped_To_Conversation(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)

	req.NoError(index.IndexMessage(message("alice", "bob", "the secret harbour plan")))
	req.NoError(index.IndexMessage(message("alice", "carol", "another harbour mention")))

	scope := domain.DirectConversationID("alice", "bob")
	hits, err := index.SearchMessages(context.Background(), "harbour", scope)
	req.NoError(err)
	req.Len(hits, 1)
	req.Equal(scope, hits[0].ConversationID)
}

func Test_IndexMessage_Update_Replaces_Document(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)

	msg := message("alice", "bob", "original wording here")
	req.NoError(index.IndexMessage(msg))

	msg.Text = "censored wording here"
	req.NoError(index.IndexMessage(msg))

	hits, err := index.SearchMessages(context.Background(), "original", "")
	req.NoError(err)
	req.Empty(hits)

	hits, err = index.SearchMessages(context.Background(), "censored", "")
	req.NoError(err)
	req.Len(hits, 1)
}

func Test_DetectLanguage(t *testing.T) {
	req := require.New(t)

	req.Equal("eng", DetectLanguage("This is clearly an English sentence about sailing boats."))
	req.Equal("fra", DetectLanguage("Ceci est une phrase française à propos des bateaux."))
	req.Equal("", DetectLanguage("ok"))
}
