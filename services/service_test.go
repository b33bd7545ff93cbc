package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"talksy/auth"
	"talksy/contract"
	"talksy/domain"
	"talksy/domain/event"
	"talksy/errors"
	"talksy/moderation"
	"talksy/repositories"
	"talksy/search"
	"talksy/storage"
)

// In-memory fakes standing in for the Badger-backed repositories. The
// repository packages have their own tests against real storage.

type fakeUsers struct {
	byID map[string]repositories.User
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byID: map[string]repositories.User{}} }

func (f *fakeUsers) add(id, fullName, email, hash string) repositories.User {
	user := repositories.User{ID: id, FullName: fullName, Email: email, PasswordHash: hash, CreatedAt: time.Now().UTC()}
	f.byID[id] = user
	return user
}

func (f *fakeUsers) CreateUser(fullName, email, hashedPassword string) (domain.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return domain.User{}, errors.ErrUserAlreadyExists
		}
	}
	user := f.add(uuid.NewString(), fullName, email, hashedPassword)
	return user.ToDomain(), nil
}

func (f *fakeUsers) GetUserByEmail(email string) (repositories.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return repositories.User{}, errors.ErrUserNotFound
}

func (f *fakeUsers) GetUserByID(id string) (domain.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return domain.User{}, errors.ErrUserNotFound
	}
	return u.ToDomain(), nil
}

func (f *fakeUsers) UpdateUser(id, fullName, avatarURL string) (domain.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return domain.User{}, errors.ErrUserNotFound
	}
	if fullName != "" {
		u.FullName = fullName
	}
	if avatarURL != "" {
		u.AvatarURL = avatarURL
	}
	f.byID[id] = u
	return u.ToDomain(), nil
}

func (f *fakeUsers) SearchUsers(query, excludeID string) ([]domain.User, error) {
	var found []domain.User
	for _, u := range f.byID {
		if u.ID != excludeID {
			found = append(found, u.ToDomain())
		}
	}
	return found, nil
}

type fakeGroups struct {
	byID map[string]domain.Group
}

func newFakeGroups() *fakeGroups { return &fakeGroups{byID: map[string]domain.Group{}} }

func (f *fakeGroups) CreateGroup(group domain.Group) error {
	f.byID[group.ID] = group
	return nil
}

func (f *fakeGroups) GetGroup(id string) (domain.Group, error) {
	g, ok := f.byID[id]
	if !ok {
		return domain.Group{}, errors.ErrGroupNotFound
	}
	return g, nil
}

func (f *fakeGroups) SaveGroup(group domain.Group) error {
	if _, ok := f.byID[group.ID]; !ok {
		return errors.ErrGroupNotFound
	}
	f.byID[group.ID] = group
	return nil
}

func (f *fakeGroups) DeleteGroup(id string) error {
	if _, ok := f.byID[id]; !ok {
		return errors.ErrGroupNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeGroups) GroupsForUser(userID string) ([]domain.Group, error) {
	var groups []domain.Group
	for _, g := range f.byID {
		if g.IsMember(userID) {
			groups = append(groups, g)
		}
	}
	return groups, nil
}

type fakeMessages struct {
	stored  []domain.Message
	deleted []string
}

func (f *fakeMessages) StoreMessage(message domain.Message) error {
	f.stored = append(f.stored, message)
	return nil
}

func (f *fakeMessages) Conversation(conversationID string, cursor *string) ([]domain.Message, *string, error) {
	var out []domain.Message
	for _, m := range f.stored {
		if m.Conversation() == conversationID {
			out = append(out, m)
		}
	}
	return out, nil, nil
}

func (f *fakeMessages) DeleteConversation(conversationID string) error {
	f.deleted = append(f.deleted, conversationID)
	return nil
}

type fakeIndex struct {
	indexed []domain.Message
	queries []string
	hits    []search.Hit
}

func (f *fakeIndex) IndexMessage(msg domain.Message) error {
	f.indexed = append(f.indexed, msg)
	return nil
}

func (f *fakeIndex) SearchMessages(_ context.Context, query, conversationID string) ([]search.Hit, error) {
	f.queries = append(f.queries, conversationID)
	return f.hits, nil
}

func (f *fakeIndex) Close() error { return nil }

type delivery struct {
	event    event.Event
	selector contract.Selector
}

type fakeRouter struct {
	deliveries []delivery
}

func (f *fakeRouter) Deliver(_ context.Context, e event.Event, sel contract.Selector) {
	f.deliveries = append(f.deliveries, delivery{event: e, selector: sel})
}

func testMediaStore(t *testing.T) *storage.MediaStore {
	t.Helper()
	store, err := storage.NewMediaStore(t.TempDir(), slog.Default())
	require.NoError(t, err)
	return store
}

func testModerator(t *testing.T) *moderation.Moderator {
	t.Helper()
	mod, err := moderation.NewModerator([]string{"badger"})
	require.NoError(t, err)
	return mod
}

func testTokens() *auth.Tokens {
	return auth.NewTokens([]byte("test-secret"), time.Hour)
}
