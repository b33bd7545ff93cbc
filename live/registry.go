// Package live implements the real-time session and fan-out layer:
// the connection registry, the session lifecycle, presence tracking,
// and event routing to live connections. State lives for the process
// lifetime only and is rebuilt from scratch on restart.
package live

import (
	"slices"
	"sync"

	"talksy/contract"
)

type sessionSet map[contract.Session]struct{}

// binding is the reverse index entry for one session: who owns it and
// which groups it subscribed to. It makes Remove cheap without scanning
// every user and group set.
type binding struct {
	userID string
	groups map[string]struct{}
}

// Registry maps users to their live sessions and groups to the sessions
// subscribed to them. A user may hold any number of simultaneous sessions
// (multi-device); a subscription belongs to a session, not a user, so two
// devices in the same group are two independent entries.
//
// Registry is safe for concurrent use. Reads hand out copied slices so a
// fan-out iteration never observes a session mid-removal.
type Registry struct {
	mu      sync.RWMutex
	byUser  map[string]sessionSet
	byGroup map[string]sessionSet
	bound   map[contract.Session]*binding
}

func NewRegistry() *Registry {
	return &Registry{
		byUser:  make(map[string]sessionSet),
		byGroup: make(map[string]sessionSet),
		bound:   make(map[contract.Session]*binding),
	}
}

// Track makes the registry aware of a freshly opened session before it
// joins: no user, no groups, but whole-registry fan-out (presence) already
// reaches it. Idempotent; Remove cleans it up like any other binding.
func (r *Registry) Track(s contract.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureBinding(s)
}

// Register adds the session to the user's session set, lazily creating the
// set for a first-seen user. Idempotent per session. Registering a session
// that was somehow bound to another user moves it over.
func (r *Registry) Register(userID string, s contract.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := r.ensureBinding(s)
	if b.userID == userID {
		return
	}
	if b.userID != "" {
		r.dropFromUser(b.userID, s)
	}
	b.userID = userID

	if _, ok := r.byUser[userID]; !ok {
		r.byUser[userID] = make(sessionSet)
	}
	r.byUser[userID][s] = struct{}{}
}

// Subscribe records the session's interest in a group. Set semantics:
// rejoining is a no-op. Subscriptions are only ever cleared by Remove.
func (r *Registry) Subscribe(groupID string, s contract.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := r.ensureBinding(s)
	b.groups[groupID] = struct{}{}

	if _, ok := r.byGroup[groupID]; !ok {
		r.byGroup[groupID] = make(sessionSet)
	}
	r.byGroup[groupID][s] = struct{}{}
}

// Remove erases the session from its user set and from every group set it
// accumulated. It is the sole cleanup path and must be called exactly once
// per terminal disconnect; calling it for a never-registered session is a
// harmless no-op.
//
// The returned wentOffline is computed after the removal completed, under
// the same lock, so a reconnecting second device is never momentarily
// reported offline.
func (r *Registry) Remove(s contract.Session) (userID string, wentOffline bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bound[s]
	if !ok {
		return "", false
	}
	delete(r.bound, s)

	for groupID := range b.groups {
		if set, ok := r.byGroup[groupID]; ok {
			delete(set, s)
			if len(set) == 0 {
				delete(r.byGroup, groupID)
			}
		}
	}

	if b.userID == "" {
		return "", false
	}
	r.dropFromUser(b.userID, s)
	_, stillOnline := r.byUser[b.userID]
	return b.userID, !stillOnline
}

// SessionsFor returns a snapshot of the user's live sessions, possibly empty.
func (r *Registry) SessionsFor(userID string) []contract.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return collect(r.byUser[userID])
}

// Subscribers returns a snapshot of the sessions subscribed to the group.
func (r *Registry) Subscribers(groupID string) []contract.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return collect(r.byGroup[groupID])
}

// Sessions returns every session the registry knows about.
func (r *Registry) Sessions() []contract.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]contract.Session, 0, len(r.bound))
	for s := range r.bound {
		out = append(out, s)
	}
	return out
}

// OnlineUsers recomputes the presence set: a user is online iff their
// session set is non-empty. Sorted for stable output.
func (r *Registry) OnlineUsers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	online := make([]string, 0, len(r.byUser))
	for userID := range r.byUser {
		online = append(online, userID)
	}
	slices.Sort(online)
	return online
}

func (r *Registry) ensureBinding(s contract.Session) *binding {
	b, ok := r.bound[s]
	if !ok {
		b = &binding{groups: make(map[string]struct{})}
		r.bound[s] = b
	}
	return b
}

// dropFromUser removes the session and prunes the empty set, so presence
// never reports a user with zero sessions.
func (r *Registry) dropFromUser(userID string, s contract.Session) {
	set, ok := r.byUser[userID]
	if !ok {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(r.byUser, userID)
	}
}

func collect(set sessionSet) []contract.Session {
	if len(set) == 0 {
		return nil
	}
	out := make([]contract.Session, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	return out
}
