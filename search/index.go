//go:generate go run go.uber.org/mock/mockgen -source=index.go -destination=../mocks/mock_search_index.go -package=mocks
package search

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/blugelabs/bluge"
	"github.com/google/uuid"

	"talksy/domain"
)

type ISearchIndex interface {
	IndexMessage(msg domain.Message) error
	SearchMessages(ctx context.Context, query, conversationID string) ([]Hit, error)
	Close() error
}

// Hit is one search result. The full message still lives in the message
// repository; the index stores just enough to render a result list.
type Hit struct {
	MessageID      uuid.UUID `json:"messageId"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	Text           string    `json:"text"`
	Language       string    `json:"language"`
	CreatedAt      time.Time `json:"createdAt"`
}

type Index struct {
	writer *bluge.Writer
	limit  int
	log    *slog.Logger
}

func NewIndex(writer *bluge.Writer, limit int, log *slog.Logger) *Index {
	return &Index{writer: writer, limit: limit, log: log}
}

// DetectLanguage returns the ISO 639-3 code of the text's language, or ""
// when detection is not reliable enough to be worth storing.
func DetectLanguage(text string) string {
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6393()
}

func (i *Index) IndexMessage(msg domain.Message) error {
	doc := bluge.NewDocument(msg.ID.String()).
		AddField(bluge.NewTextField("text", msg.Text).StoreValue()).
		AddField(bluge.NewKeywordField("conversation", msg.Conversation()).StoreValue()).
		AddField(bluge.NewKeywordField("sender", msg.SenderID).StoreValue()).
		AddField(bluge.NewKeywordField("language", msg.Language).StoreValue()).
		AddField(bluge.NewKeywordField("created_at",
			strconv.FormatInt(msg.CreatedAt.UnixNano(), 10)).StoreValue())

	return i.writer.Update(doc.ID(), doc)
}

// SearchMessages runs a full-text match over message bodies. A non-empty
// conversationID narrows the search to one conversation, which is how
// access control is enforced: callers pass only conversations the user
// belongs to.
func (i *Index) SearchMessages(ctx context.Context, query, conversationID string) ([]Hit, error) {
	match := bluge.NewMatchQuery(query).SetField("text")

	var finalQuery bluge.Query = match
	if conversationID != "" {
		finalQuery = bluge.NewBooleanQuery().
			AddMust(match).
			AddMust(bluge.NewTermQuery(conversationID).SetField("conversation"))
	}

	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(i.limit, finalQuery))
	if err != nil {
		return nil, err
	}

	var hits []Hit
	for {
		next, err := iterator.Next()
		if err != nil {
			return nil, err
		}
		if next == nil {
			break
		}

		var hit Hit
		err = next.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				hit.MessageID, _ = uuid.Parse(string(value))
			case "text":
				hit.Text = string(value)
			case "conversation":
				hit.ConversationID = string(value)
			case "sender":
				hit.SenderID = string(value)
			case "language":
				hit.Language = string(value)
			case "created_at":
				if nanos, err := strconv.ParseInt(string(value), 10, 64); err == nil {
					hit.CreatedAt = time.Unix(0, nanos).UTC()
				}
			}
			return true
		})
		if err != nil {
			i.log.Error("failed to read stored fields", "error", err)
			continue
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

func (i *Index) Close() error {
	return i.writer.Close()
}
