//go:generate go run go.uber.org/mock/mockgen -source=group_service.go -destination=../mocks/mock_group_service.go -package=mocks
package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"talksy/contract"
	"talksy/domain"
	"talksy/domain/event"
	"talksy/errors"
	"talksy/repositories"
	"talksy/storage"
)

type IGroupService interface {
	CreateGroup(ctx context.Context, adminID, name, description, imageDataURL string, memberIDs []string) (domain.Group, error)
	GetGroup(selfID, groupID string) (domain.Group, error)
	GroupsForUser(userID string) ([]domain.Group, error)
	UpdateGroup(ctx context.Context, selfID, groupID, name, description, imageDataURL string) (domain.Group, error)
	AddMember(ctx context.Context, selfID, groupID, userID string) (domain.Group, error)
	RemoveMember(ctx context.Context, selfID, groupID, userID string) (domain.Group, error)
	DeleteGroup(ctx context.Context, selfID, groupID string) error
}

type GroupService struct {
	groups   repositories.IGroupRepository
	users    repositories.IUserRepository
	messages repositories.IMessageRepository
	media    *storage.MediaStore
	router   contract.IRouter
	log      *slog.Logger
}

func NewGroupService(
	groups repositories.IGroupRepository,
	users repositories.IUserRepository,
	messages repositories.IMessageRepository,
	media *storage.MediaStore,
	router contract.IRouter,
	log *slog.Logger,
) IGroupService {
	return &GroupService{
		groups:   groups,
		users:    users,
		messages: messages,
		media:    media,
		router:   router,
		log:      log,
	}
}

// CreateGroup always counts the admin as a member, whether or not the
// caller listed themselves.
func (s *GroupService) CreateGroup(ctx context.Context, adminID, name, description, imageDataURL string, memberIDs []string) (domain.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Group{}, errors.ErrGroupNameRequired
	}

	members := lo.Uniq(append([]string{adminID}, memberIDs...))
	for _, userID := range members {
		if _, err := s.users.GetUserByID(userID); err != nil {
			return domain.Group{}, err
		}
	}

	group := domain.Group{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		AdminID:     adminID,
		MemberIDs:   members,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if imageDataURL != "" {
		url, err := s.media.SaveImage(imageDataURL)
		if err != nil {
			return domain.Group{}, err
		}
		group.ImageURL = url
	}

	if err := s.groups.CreateGroup(group); err != nil {
		return domain.Group{}, err
	}

	s.log.Info("group created", "group_id", group.ID, "admin_id", adminID)
	s.notify(ctx, event.GroupUpdated, group)
	return group, nil
}

func (s *GroupService) GetGroup(selfID, groupID string) (domain.Group, error) {
	group, err := s.groups.GetGroup(groupID)
	if err != nil {
		return domain.Group{}, err
	}
	if !group.IsMember(selfID) {
		return domain.Group{}, errors.ErrNotGroupMember
	}
	return group, nil
}

func (s *GroupService) GroupsForUser(userID string) ([]domain.Group, error) {
	return s.groups.GroupsForUser(userID)
}

// UpdateGroup patches name, description and image. Admin only.
func (s *GroupService) UpdateGroup(ctx context.Context, selfID, groupID, name, description, imageDataURL string) (domain.Group, error) {
	group, err := s.adminGroup(selfID, groupID)
	if err != nil {
		return domain.Group{}, err
	}

	if name = strings.TrimSpace(name); name != "" {
		group.Name = name
	}
	if description != "" {
		group.Description = description
	}
	if imageDataURL != "" {
		url, err := s.media.SaveImage(imageDataURL)
		if err != nil {
			return domain.Group{}, err
		}
		group.ImageURL = url
	}
	group.UpdatedAt = time.Now().UTC()

	if err := s.groups.SaveGroup(group); err != nil {
		return domain.Group{}, err
	}
	s.notify(ctx, event.GroupUpdated, group)
	return group, nil
}

func (s *GroupService) AddMember(ctx context.Context, selfID, groupID, userID string) (domain.Group, error) {
	group, err := s.adminGroup(selfID, groupID)
	if err != nil {
		return domain.Group{}, err
	}
	if _, err := s.users.GetUserByID(userID); err != nil {
		return domain.Group{}, err
	}

	group.AddMember(userID)
	group.UpdatedAt = time.Now().UTC()
	if err := s.groups.SaveGroup(group); err != nil {
		return domain.Group{}, err
	}

	s.notify(ctx, event.MemberAdded, group)
	return group, nil
}

// RemoveMember is allowed for the admin, or for a member removing
// themselves. The admin cannot be removed at all; they delete the group
// instead.
func (s *GroupService) RemoveMember(ctx context.Context, selfID, groupID, userID string) (domain.Group, error) {
	group, err := s.groups.GetGroup(groupID)
	if err != nil {
		return domain.Group{}, err
	}
	if !group.IsAdmin(selfID) && selfID != userID {
		return domain.Group{}, errors.ErrNotGroupAdmin
	}
	if group.IsAdmin(userID) {
		return domain.Group{}, errors.ErrCannotRemoveAdmin
	}
	if !group.IsMember(userID) {
		return domain.Group{}, errors.ErrNotGroupMember
	}

	group.RemoveMember(userID)
	group.UpdatedAt = time.Now().UTC()
	if err := s.groups.SaveGroup(group); err != nil {
		return domain.Group{}, err
	}

	// The removed user still gets this last event: their devices are
	// unsubscribed only when they reconnect or leave the socket.
	s.notify(ctx, event.MemberRemoved, group)
	return group, nil
}

// DeleteGroup is admin only and cascades to the group's message history.
func (s *GroupService) DeleteGroup(ctx context.Context, selfID, groupID string) error {
	group, err := s.adminGroup(selfID, groupID)
	if err != nil {
		return err
	}

	if err := s.messages.DeleteConversation(groupID); err != nil {
		return err
	}
	if err := s.groups.DeleteGroup(groupID); err != nil {
		return err
	}

	s.log.Info("group deleted", "group_id", groupID)
	s.notify(ctx, event.GroupDeleted, group)
	return nil
}

func (s *GroupService) adminGroup(selfID, groupID string) (domain.Group, error) {
	group, err := s.groups.GetGroup(groupID)
	if err != nil {
		return domain.Group{}, err
	}
	if !group.IsAdmin(selfID) {
		return domain.Group{}, errors.ErrNotGroupAdmin
	}
	return group, nil
}

func (s *GroupService) notify(ctx context.Context, action event.MembershipAction, group domain.Group) {
	s.router.Deliver(ctx, event.MembershipChanged{Action: action, Group: group}, contract.ToGroup(group.ID))
}
