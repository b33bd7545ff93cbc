package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"talksy/domain/event"
	"talksy/errors"
)

type groupFixture struct {
	service  IGroupService
	groups   *fakeGroups
	users    *fakeUsers
	messages *fakeMessages
	router   *fakeRouter
}

func newGroupFixture(t *testing.T) groupFixture {
	t.Helper()
	groups := newFakeGroups()
	users := newFakeUsers()
	messages := &fakeMessages{}
	router := &fakeRouter{}
	users.add("alice", "Alice Doe", "alice@example.com", "hash")
	users.add("bob", "Bob Roe", "bob@example.com", "hash")
	users.add("carol", "Carol Boe", "carol@example.com", "hash")
	service := NewGroupService(groups, users, messages, testMediaStore(t), router, slog.Default())
	return groupFixture{service: service, groups: groups, users: users, messages: messages, router: router}
}

func (f groupFixture) lastAction(t *testing.T) event.MembershipAction {
	t.Helper()
	require.NotEmpty(t, f.router.deliveries)
	change, ok := f.router.deliveries[len(f.router.deliveries)-1].event.(event.MembershipChanged)
	require.True(t, ok)
	return change.Action
}

func TestGroupService_CreateGroup(t *testing.T) {
	t.Run("should always include the admin as a member", func(t *testing.T) {
		req := require.New(t)
		f := newGroupFixture(t)

		group, err := f.service.CreateGroup(context.Background(), "alice", "friends", "", "", []string{"bob"})

		req.NoError(err)
		req.True(group.IsMember("alice"))
		req.True(group.IsMember("bob"))
		req.Equal("alice", group.AdminID)
	})

	t.Run("should not duplicate an admin who listed themselves", func(t *testing.T) {
		req := require.New(t)
		f := newGroupFixture(t)

		group, err := f.service.CreateGroup(context.Background(), "alice", "friends", "", "", []string{"alice", "bob"})

		req.NoError(err)
		req.Len(group.MemberIDs, 2)
	})

	t.Run("should reject an empty name", func(t *testing.T) {
		req := require.New(t)
		f := newGroupFixture(t)

		_, err := f.service.CreateGroup(context.Background(), "alice", "  ", "", "", nil)
		req.ErrorIs(err, errors.ErrGroupNameRequired)
	})

	t.Run("should reject unknown members", func(t *testing.T) {
		req := require.New(t)
		f := newGroupFixture(t)

		_, err := f.service.CreateGroup(context.Background(), "alice", "friends", "", "", []string{"ghost"})
		req.ErrorIs(err, errors.ErrUserNotFound)
	})
}

func TestGroupService_UpdateGroup_Is_Admin_Only(t *testing.T) {
	req := require.New(t)
	f := newGroupFixture(t)
	group, err := f.service.CreateGroup(context.Background(), "alice", "friends", "", "", []string{"bob"})
	req.NoError(err)

	_, err = f.service.UpdateGroup(context.Background(), "bob", group.ID, "hijacked", "", "")
	req.ErrorIs(err, errors.ErrNotGroupAdmin)

	updated, err := f.service.UpdateGroup(context.Background(), "alice", group.ID, "renamed", "", "")
	req.NoError(err)
	req.Equal("renamed", updated.Name)
	req.Equal(event.GroupUpdated, f.lastAction(t))
}

func TestGroupService_AddMember(t *testing.T) {
	req := require.New(t)
	f := newGroupFixture(t)
	group, err := f.service.CreateGroup(context.Background(), "alice", "friends", "", "", []string{"bob"})
	req.NoError(err)

	_, err = f.service.AddMember(context.Background(), "bob", group.ID, "carol")
	req.ErrorIs(err, errors.ErrNotGroupAdmin)

	updated, err := f.service.AddMember(context.Background(), "alice", group.ID, "carol")
	req.NoError(err)
	req.True(updated.IsMember("carol"))
	req.Equal(event.MemberAdded, f.lastAction(t))
}

func TestGroupService_RemoveMember(t *testing.T) {
	t.Run("admin can remove a member", func(t *testing.T) {
		req := require.New(t)
		f := newGroupFixture(t)
		group, err := f.service.CreateGroup(context.Background(), "alice", "friends", "", "", []string{"bob"})
		req.NoError(err)

		updated, err := f.service.RemoveMember(context.Background(), "alice", group.ID, "bob")
		req.NoError(err)
		req.False(updated.IsMember("bob"))
		req.Equal(event.MemberRemoved, f.lastAction(t))
	})

	t.Run("member can remove themselves but nobody else", func(t *testing.T) {
		req := require.New(t)
		f := newGroupFixture(t)
		group, err := f.service.CreateGroup(context.Background(), "alice", "friends", "", "", []string{"bob", "carol"})
		req.NoError(err)

		_, err = f.service.RemoveMember(context.Background(), "bob", group.ID, "carol")
		req.ErrorIs(err, errors.ErrNotGroupAdmin)

		updated, err := f.service.RemoveMember(context.Background(), "bob", group.ID, "bob")
		req.NoError(err)
		req.False(updated.IsMember("bob"))
	})

	t.Run("the admin cannot be removed at all", func(t *testing.T) {
		req := require.New(t)
		f := newGroupFixture(t)
		group, err := f.service.CreateGroup(context.Background(), "alice", "friends", "", "", []string{"bob"})
		req.NoError(err)

		_, err = f.service.RemoveMember(context.Background(), "alice", group.ID, "alice")
		req.ErrorIs(err, errors.ErrCannotRemoveAdmin)
	})
}

func TestGroupService_DeleteGroup_Cascades_To_Messages(t *testing.T) {
	req := require.New(t)
	f := newGroupFixture(t)
	group, err := f.service.CreateGroup(context.Background(), "alice", "friends", "", "", []string{"bob"})
	req.NoError(err)

	err = f.service.DeleteGroup(context.Background(), "bob", group.ID)
	req.ErrorIs(err, errors.ErrNotGroupAdmin)

	req.NoError(f.service.DeleteGroup(context.Background(), "alice", group.ID))
	req.Contains(f.messages.deleted, group.ID)
	req.Equal(event.GroupDeleted, f.lastAction(t))

	_, err = f.service.GetGroup("alice", group.ID)
	req.ErrorIs(err, errors.ErrGroupNotFound)
}
