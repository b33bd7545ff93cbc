package live

import (
	"context"
	"log/slog"

	"talksy/contract"
	"talksy/domain/event"
	"talksy/observability"
)

// Router resolves a selector against the registry and hands the event to
// every matching session. Fire-and-forget: a session whose transport is
// already broken but not yet reaped just swallows the error; the
// subsequent disconnect cleans the registry. Order is preserved per
// session by the session's own ordered send queue; across sessions there
// is no ordering guarantee.
type Router struct {
	registry contract.IRegistry
	stats    *observability.Stats
	log      *slog.Logger
}

func NewRouter(log *slog.Logger, registry contract.IRegistry, stats *observability.Stats) *Router {
	return &Router{registry: registry, stats: stats, log: log}
}

// Deliver fans the event out to the selector's resolved session set.
// A user with two devices subscribed to the same group receives a group
// event twice, once per device: each device renders independently.
func (r *Router) Deliver(ctx context.Context, e event.Event, sel contract.Selector) {
	var targets []contract.Session
	switch {
	case sel.UserID != "":
		targets = r.registry.SessionsFor(sel.UserID)
	case sel.GroupID != "":
		targets = r.registry.Subscribers(sel.GroupID)
	default:
		return
	}

	for _, s := range targets {
		if err := s.Consume(ctx, e); err != nil {
			r.stats.Dropped()
			r.log.Debug("event dropped for stale session", "error", err)
			continue
		}
		r.stats.Delivered()
	}
}
