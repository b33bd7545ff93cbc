//go:generate go run go.uber.org/mock/mockgen -source=group.go -destination=../mocks/mock_group_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"talksy/domain"
	"talksy/errors"
)

type IGroupRepository interface {
	CreateGroup(group domain.Group) error
	GetGroup(id string) (domain.Group, error)
	SaveGroup(group domain.Group) error
	DeleteGroup(id string) error
	GroupsForUser(userID string) ([]domain.Group, error)
}

type GroupRepository struct {
	db *badger.DB
}

func NewGroupRepository(db *badger.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// The record lives under its ID; a per-member index entry per membership
// makes "groups of user X" a prefix scan instead of a full walk.
func groupKey(id string) []byte { return []byte("group:" + id) }
func memberKey(userID, groupID string) []byte {
	return []byte(fmt.Sprintf("groupmember:%s:%s", userID, groupID))
}

func (r *GroupRepository) CreateGroup(group domain.Group) error {
	data, err := json.Marshal(group)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(groupKey(group.ID), data); err != nil {
			return err
		}
		for _, userID := range group.MemberIDs {
			if err := txn.Set(memberKey(userID, group.ID), nil); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GroupRepository) GetGroup(id string) (domain.Group, error) {
	var group domain.Group
	err := r.db.View(func(txn *badger.Txn) error {
		return readJSON(txn, groupKey(id), &group)
	})
	if err != nil {
		return domain.Group{}, errors.ErrGroupNotFound
	}
	return group, nil
}

// SaveGroup overwrites the record and reconciles the member index against
// the previously stored membership, all in one transaction.
func (r *GroupRepository) SaveGroup(group domain.Group) error {
	data, err := json.Marshal(group)
	if err != nil {
		return err
	}

	return r.db.Update(func(txn *badger.Txn) error {
		var previous domain.Group
		if err := readJSON(txn, groupKey(group.ID), &previous); err != nil {
			return errors.ErrGroupNotFound
		}

		for _, userID := range previous.MemberIDs {
			if !group.IsMember(userID) {
				if err := txn.Delete(memberKey(userID, group.ID)); err != nil {
					return err
				}
			}
		}
		for _, userID := range group.MemberIDs {
			if err := txn.Set(memberKey(userID, group.ID), nil); err != nil {
				return err
			}
		}
		return txn.Set(groupKey(group.ID), data)
	})
}

func (r *GroupRepository) DeleteGroup(id string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		var group domain.Group
		if err := readJSON(txn, groupKey(id), &group); err != nil {
			return errors.ErrGroupNotFound
		}
		for _, userID := range group.MemberIDs {
			if err := txn.Delete(memberKey(userID, id)); err != nil {
				return err
			}
		}
		return txn.Delete(groupKey(id))
	})
}

func (r *GroupRepository) GroupsForUser(userID string) ([]domain.Group, error) {
	var groupIDs []string
	prefixStr := fmt.Sprintf("groupmember:%s:", userID)

	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		prefix := []byte(prefixStr)
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			groupIDs = append(groupIDs, string(it.Item().Key()[len(prefixStr):]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var groups []domain.Group
	for _, id := range groupIDs {
		group, err := r.GetGroup(id)
		if err != nil {
			// Index entry outliving its group is repaired on next save.
			continue
		}
		groups = append(groups, group)
	}
	return groups, nil
}
