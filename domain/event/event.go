// Package event defines the closed set of ephemeral events the live layer
// fans out to connected clients. Keeping the set closed lets the transport
// codec dispatch with an exhaustive type switch instead of string matching.
package event

import "talksy/domain"

// Event is implemented only by the variants in this package.
type Event interface {
	isEvent()
}

// DirectMessage announces a persisted 1:1 message to the receiver's
// live connections.
type DirectMessage struct {
	Message domain.Message
}

// GroupMessage announces a persisted group message to every connection
// subscribed to the group.
type GroupMessage struct {
	Message domain.Message
}

// Typing carries a typing indicator, unchanged, from sender to receiver.
// Active=false is the stop signal. The state lives only in the receiving
// client; a lost stop signal stays stale until overwritten.
type Typing struct {
	SenderID   string
	ReceiverID string
	Active     bool
}

// PresenceSnapshot is the full recomputed set of online users. It is
// always rebuilt from the registry, never patched incrementally.
type PresenceSnapshot struct {
	Online []string
}

// MembershipAction tags what happened to a group.
type MembershipAction string

const (
	MemberAdded   MembershipAction = "memberAdded"
	MemberRemoved MembershipAction = "memberRemoved"
	GroupUpdated  MembershipAction = "groupUpdated"
	GroupDeleted  MembershipAction = "groupDeleted"
)

// MembershipChanged announces a group change to the group's subscribers.
type MembershipChanged struct {
	Action MembershipAction
	Group  domain.Group
}

func (DirectMessage) isEvent()     {}
func (GroupMessage) isEvent()      {}
func (Typing) isEvent()            {}
func (PresenceSnapshot) isEvent()  {}
func (MembershipChanged) isEvent() {}
