package live

import (
	"context"
	"log/slog"

	"talksy/contract"
)

// Lifecycle walks each connection through its state machine:
// CONNECTED (anonymous) -> JOINED (bound to a user) -> subscribed to any
// number of groups -> DISCONNECTED (terminal). It owns every registry
// mutation; Presence and Router only read.
//
// No authentication happens here. The user ID is trusted as asserted by
// the transport session, which the token collaborator verified before the
// connection was allowed to open.
type Lifecycle struct {
	registry contract.IRegistry
	presence contract.IPresence
	log      *slog.Logger
}

func NewLifecycle(log *slog.Logger, registry contract.IRegistry, presence contract.IPresence) *Lifecycle {
	return &Lifecycle{registry: registry, presence: presence, log: log}
}

// Connect records a freshly opened, still-anonymous session. From here on
// presence broadcasts reach it, even if it never joins.
func (l *Lifecycle) Connect(_ context.Context, s contract.Session) {
	l.registry.Track(s)
}

// Join binds the session to a user and announces the new presence set.
// An empty user ID is ignored without error: typically a race during a
// page transition, not an actionable fault.
func (l *Lifecycle) Join(ctx context.Context, s contract.Session, userID string) {
	if userID == "" {
		return
	}
	l.registry.Register(userID, s)
	l.log.Debug("session joined", "user_id", userID)
	l.presence.Broadcast(ctx)
}

// JoinGroup subscribes the session to a group. Repeatable for any number
// of groups; rejoining one is idempotent. Membership is deliberately not
// checked here: authorization lives on the persistence write path, so a
// subscriber that is not a member can receive live events but can neither
// fetch history nor post. Known gap, kept as-is.
func (l *Lifecycle) JoinGroup(_ context.Context, s contract.Session, groupID string) {
	if groupID == "" {
		return
	}
	l.registry.Subscribe(groupID, s)
	l.log.Debug("session subscribed to group", "group_id", groupID)
}

// Disconnect handles the terminal transition for a session, whether the
// transport closed normally, errored, or timed out. The offline check runs
// after the removal completed, so a second device reconnecting in parallel
// is never flashed as offline.
func (l *Lifecycle) Disconnect(ctx context.Context, s contract.Session) {
	userID, wentOffline := l.registry.Remove(s)
	if userID != "" {
		l.log.Debug("session disconnected", "user_id", userID, "went_offline", wentOffline)
	}
	if wentOffline {
		l.presence.Broadcast(ctx)
	}
}
