// Package domain contains core concepts of the chat system.
// This file defines Message records and related rules.
// Messages are immutable once created.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message represents one chat message, either direct or group.
// A direct message has ReceiverID set and GroupID empty; a group
// message has GroupID set and ReceiverID empty.
type Message struct {
	ID         uuid.UUID `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId,omitempty"`
	GroupID    string    `json:"groupId,omitempty"`
	Text       string    `json:"text,omitempty"`
	ImageURL   string    `json:"image,omitempty"`
	Language   string    `json:"language,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// IsGroup reports whether the message belongs to a group conversation.
func (m Message) IsGroup() bool {
	return m.GroupID != ""
}

// Conversation returns the stable identifier of the conversation this
// message belongs to: the group ID for group messages, the order-independent
// pair key for direct ones.
func (m Message) Conversation() string {
	if m.IsGroup() {
		return m.GroupID
	}
	return DirectConversationID(m.SenderID, m.ReceiverID)
}

// DirectConversationID builds the same key regardless of which side sends,
// so both directions of a 1:1 exchange land in one conversation.
func DirectConversationID(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return strings.Join([]string{a, b}, ":")
}
