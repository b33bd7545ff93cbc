package live

import (
	"context"
	"log/slog"

	"talksy/contract"
	"talksy/domain/event"
	"talksy/observability"
)

// Presence derives the online-user set from the registry and pushes it to
// clients. The snapshot is recomputed on every use rather than patched
// incrementally: correctness over bandwidth, acceptable at chat-sized
// presence sets.
type Presence struct {
	registry contract.IRegistry
	stats    *observability.Stats
	log      *slog.Logger
}

func NewPresence(log *slog.Logger, registry contract.IRegistry, stats *observability.Stats) *Presence {
	return &Presence{registry: registry, stats: stats, log: log}
}

// Snapshot returns the current set of online users.
func (p *Presence) Snapshot() []string {
	return p.registry.OnlineUsers()
}

// Broadcast sends the full snapshot to every live session, not a scoped
// subset. Edge-triggered: callers fire it after a join and after a user
// drops to zero connections.
func (p *Presence) Broadcast(ctx context.Context) {
	snapshot := event.PresenceSnapshot{Online: p.Snapshot()}
	sessions := p.registry.Sessions()
	for _, s := range sessions {
		if err := s.Consume(ctx, snapshot); err != nil {
			p.stats.Dropped()
		}
	}
	p.stats.PresenceBroadcast()
	p.log.Debug("presence broadcast", "online", len(snapshot.Online), "sessions", len(sessions))
}

// SnapshotTo answers a single session's pull request. Needed because the
// broadcast only fires on change: a connection joining between two changes
// would otherwise hold a stale or empty view.
func (p *Presence) SnapshotTo(ctx context.Context, s contract.Session) {
	if err := s.Consume(ctx, event.PresenceSnapshot{Online: p.Snapshot()}); err != nil {
		p.stats.Dropped()
	}
}
