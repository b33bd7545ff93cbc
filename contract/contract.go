//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"talksy/domain/event"
)

// Session is one live transport connection able to receive fanned-out
// events. Consume must not block on the peer: a slow client drops frames
// instead of stalling delivery to other sessions.
type Session interface {
	Consume(ctx context.Context, e event.Event) error
}

// IRegistry tracks which sessions belong to which user and which sessions
// subscribed to which group. All mutations are atomic with respect to each
// other and to reads used for fan-out.
type IRegistry interface {
	Track(s Session)
	Register(userID string, s Session)
	Subscribe(groupID string, s Session)
	Remove(s Session) (userID string, wentOffline bool)
	SessionsFor(userID string) []Session
	Subscribers(groupID string) []Session
	Sessions() []Session
	OnlineUsers() []string
}

// Selector names the target of one delivery: exactly one of a user's
// sessions or a group's subscribers.
type Selector struct {
	UserID  string
	GroupID string
}

func ToUser(id string) Selector  { return Selector{UserID: id} }
func ToGroup(id string) Selector { return Selector{GroupID: id} }

// IRouter fans one event out to every session matching the selector.
// Delivery is fire-and-forget: no retry, no acknowledgment, and no
// ordering guarantee across different sessions.
type IRouter interface {
	Deliver(ctx context.Context, e event.Event, sel Selector)
}

// IPresence derives the online-user set from the registry and pushes it
// to clients.
type IPresence interface {
	Snapshot() []string
	Broadcast(ctx context.Context)
	SnapshotTo(ctx context.Context, s Session)
}

// ILifecycle owns every registry mutation a connection goes through:
// join, group subscription, and terminal disconnect.
type ILifecycle interface {
	Connect(ctx context.Context, s Session)
	Join(ctx context.Context, s Session, userID string)
	JoinGroup(ctx context.Context, s Session, groupID string)
	Disconnect(ctx context.Context, s Session)
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself; the supervisor does.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// lifecycle events, avoiding the need for manual naming in the Worker
// interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
