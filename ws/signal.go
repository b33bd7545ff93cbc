// Package ws is the websocket transport for the live layer: one upgraded
// connection per client, an {"event", "data"} envelope on the wire, and
// the read/write pump split so a slow browser never blocks reads.
package ws

import (
	"encoding/json"
	"fmt"

	"talksy/domain"
	"talksy/domain/event"
)

// frame is the wire envelope, both directions.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

const (
	signalJoin           = "join"
	signalJoinGroup      = "joinGroup"
	signalTyping         = "typing"
	signalStopTyping     = "stopTyping"
	signalGetOnlineUsers = "getOnlineUsers"

	frameNewMessage      = "newMessage"
	frameNewGroupMessage = "newGroupMessage"
	frameGroupUpdated    = "groupUpdated"
)

// signal is the closed set of inbound client intents.
type signal interface {
	isSignal()
}

type joinSignal struct{ UserID string }
type joinGroupSignal struct{ GroupID string }
type typingSignal struct {
	SenderID   string
	ReceiverID string
	Active     bool
}
type presencePullSignal struct{}

func (s typingSignal) toEvent() event.Typing {
	return event.Typing{SenderID: s.SenderID, ReceiverID: s.ReceiverID, Active: s.Active}
}

func (joinSignal) isSignal()         {}
func (joinGroupSignal) isSignal()    {}
func (typingSignal) isSignal()       {}
func (presencePullSignal) isSignal() {}

type typingPayload struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId,omitempty"`
}

// decodeSignal parses one inbound frame. ok=false covers malformed frames,
// frames missing a required field, and unknown event names alike: the live
// layer ignores all of them silently, they are page-transition races rather
// than actionable faults.
func decodeSignal(data []byte) (signal, bool) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, false
	}

	switch f.Event {
	case signalJoin:
		var userID string
		if err := json.Unmarshal(f.Data, &userID); err != nil || userID == "" {
			return nil, false
		}
		return joinSignal{UserID: userID}, true

	case signalJoinGroup:
		var groupID string
		if err := json.Unmarshal(f.Data, &groupID); err != nil || groupID == "" {
			return nil, false
		}
		return joinGroupSignal{GroupID: groupID}, true

	case signalTyping, signalStopTyping:
		var p typingPayload
		if err := json.Unmarshal(f.Data, &p); err != nil || p.ReceiverID == "" {
			return nil, false
		}
		return typingSignal{
			SenderID:   p.SenderID,
			ReceiverID: p.ReceiverID,
			Active:     f.Event == signalTyping,
		}, true

	case signalGetOnlineUsers:
		return presencePullSignal{}, true

	default:
		return nil, false
	}
}

type membershipPayload struct {
	Action event.MembershipAction `json:"action"`
	Group  domain.Group           `json:"group"`
}

// encodeFrame turns a fan-out event into its wire frame. The switch is
// exhaustive over the event package's closed variant set; a new variant
// that is not handled here fails loudly instead of vanishing.
func encodeFrame(e event.Event) ([]byte, error) {
	var f frame
	var payload any

	switch evt := e.(type) {
	case event.PresenceSnapshot:
		f.Event = signalGetOnlineUsers
		online := evt.Online
		if online == nil {
			online = []string{}
		}
		payload = online
	case event.DirectMessage:
		f.Event = frameNewMessage
		payload = evt.Message
	case event.GroupMessage:
		f.Event = frameNewGroupMessage
		payload = evt.Message
	case event.Typing:
		if evt.Active {
			f.Event = signalTyping
		} else {
			f.Event = signalStopTyping
		}
		payload = typingPayload{SenderID: evt.SenderID}
	case event.MembershipChanged:
		f.Event = frameGroupUpdated
		payload = membershipPayload{Action: evt.Action, Group: evt.Group}
	default:
		return nil, fmt.Errorf("no wire frame for event %T", e)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	f.Data = data
	return json.Marshal(f)
}
