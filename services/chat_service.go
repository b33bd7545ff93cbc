//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"talksy/contract"
	"talksy/domain"
	"talksy/domain/event"
	"talksy/errors"
	"talksy/moderation"
	"talksy/repositories"
	"talksy/search"
	"talksy/storage"
)

type IChatService interface {
	SendDirect(ctx context.Context, senderID, receiverID, text, imageDataURL string) (domain.Message, error)
	SendGroup(ctx context.Context, senderID, groupID, text, imageDataURL string) (domain.Message, error)
	Conversation(selfID, otherID string, cursor *string) ([]domain.Message, *string, error)
	GroupConversation(selfID, groupID string, cursor *string) ([]domain.Message, *string, error)
	Search(ctx context.Context, selfID, query, otherID string) ([]search.Hit, error)
	SearchGroup(ctx context.Context, selfID, query, groupID string) ([]search.Hit, error)
}

type ChatService struct {
	messages  repositories.IMessageRepository
	groups    repositories.IGroupRepository
	media     *storage.MediaStore
	moderator *moderation.Moderator
	index     search.ISearchIndex
	router    contract.IRouter
	log       *slog.Logger
}

func NewChatService(
	messages repositories.IMessageRepository,
	groups repositories.IGroupRepository,
	media *storage.MediaStore,
	moderator *moderation.Moderator,
	index search.ISearchIndex,
	router contract.IRouter,
	log *slog.Logger,
) IChatService {
	return &ChatService{
		messages:  messages,
		groups:    groups,
		media:     media,
		moderator: moderator,
		index:     index,
		router:    router,
		log:       log,
	}
}

// SendDirect stores the message and delivers it to every device of the
// receiver. The sender already has it; echoing it back would only
// duplicate it on their screen.
func (s *ChatService) SendDirect(ctx context.Context, senderID, receiverID, text, imageDataURL string) (domain.Message, error) {
	msg, err := s.prepare(senderID, text, imageDataURL)
	if err != nil {
		return domain.Message{}, err
	}
	msg.ReceiverID = receiverID

	if err := s.persist(msg); err != nil {
		return domain.Message{}, err
	}

	s.router.Deliver(ctx, event.DirectMessage{Message: msg}, contract.ToUser(receiverID))
	return msg, nil
}

// SendGroup checks membership on the write path, then delivers to every
// subscribed device of the group, the sender's other devices included.
func (s *ChatService) SendGroup(ctx context.Context, senderID, groupID, text, imageDataURL string) (domain.Message, error) {
	group, err := s.groups.GetGroup(groupID)
	if err != nil {
		return domain.Message{}, err
	}
	if !group.IsMember(senderID) {
		return domain.Message{}, errors.ErrNotGroupMember
	}

	msg, err := s.prepare(senderID, text, imageDataURL)
	if err != nil {
		return domain.Message{}, err
	}
	msg.GroupID = groupID

	if err := s.persist(msg); err != nil {
		return domain.Message{}, err
	}

	s.router.Deliver(ctx, event.GroupMessage{Message: msg}, contract.ToGroup(groupID))
	return msg, nil
}

func (s *ChatService) Conversation(selfID, otherID string, cursor *string) ([]domain.Message, *string, error) {
	return s.messages.Conversation(domain.DirectConversationID(selfID, otherID), cursor)
}

func (s *ChatService) GroupConversation(selfID, groupID string, cursor *string) ([]domain.Message, *string, error) {
	group, err := s.groups.GetGroup(groupID)
	if err != nil {
		return nil, nil, err
	}
	if !group.IsMember(selfID) {
		return nil, nil, errors.ErrNotGroupMember
	}
	return s.messages.Conversation(groupID, cursor)
}

// Search is always scoped to a single conversation the caller belongs to.
// An empty otherID would mean "everything", which the index cannot verify
// access for, so it is rejected as an empty result.
func (s *ChatService) Search(ctx context.Context, selfID, query, otherID string) ([]search.Hit, error) {
	if query == "" || otherID == "" {
		return nil, nil
	}
	return s.index.SearchMessages(ctx, query, domain.DirectConversationID(selfID, otherID))
}

// SearchGroup scopes the query to one group's messages, gated on membership
// the same way history reads are.
func (s *ChatService) SearchGroup(ctx context.Context, selfID, query, groupID string) ([]search.Hit, error) {
	if query == "" || groupID == "" {
		return nil, nil
	}
	group, err := s.groups.GetGroup(groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsMember(selfID) {
		return nil, errors.ErrNotGroupMember
	}
	return s.index.SearchMessages(ctx, query, groupID)
}

// prepare builds the common part of an outgoing message: censoring,
// optional image upload, language detection.
func (s *ChatService) prepare(senderID, text, imageDataURL string) (domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" && imageDataURL == "" {
		return domain.Message{}, errors.ErrEmptyMessage
	}

	msg := domain.Message{
		ID:        uuid.New(),
		SenderID:  senderID,
		Text:      s.moderator.Censor(text),
		CreatedAt: time.Now().UTC(),
	}
	msg.Language = search.DetectLanguage(msg.Text)

	if imageDataURL != "" {
		url, err := s.media.SaveImage(imageDataURL)
		if err != nil {
			return domain.Message{}, err
		}
		msg.ImageURL = url
	}
	return msg, nil
}

func (s *ChatService) persist(msg domain.Message) error {
	if err := s.messages.StoreMessage(msg); err != nil {
		return err
	}
	// Indexing failures must not lose the message itself.
	if err := s.index.IndexMessage(msg); err != nil {
		s.log.Error("failed to index message", "message_id", msg.ID, "error", err)
	}
	return nil
}
