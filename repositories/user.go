//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"talksy/domain"
	"talksy/errors"
)

type IUserRepository interface {
	CreateUser(fullName, email, hashedPassword string) (domain.User, error)
	GetUserByEmail(email string) (User, error)
	GetUserByID(id string) (domain.User, error)
	UpdateUser(id, fullName, avatarURL string) (domain.User, error)
	SearchUsers(query, excludeID string) ([]domain.User, error)
}

// User is the stored account record. The password hash never crosses into
// the domain type.
type User struct {
	ID           string    `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u User) ToDomain() domain.User {
	return domain.User{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Two keys per account: the record under its ID and an email index entry
// pointing at the ID, so login stays a point lookup.
func userKey(id string) []byte     { return []byte("user:id:" + id) }
func emailKey(email string) []byte { return []byte("user:email:" + strings.ToLower(email)) }

func (r *UserRepository) CreateUser(fullName, email, hashedPassword string) (domain.User, error) {
	user := User{
		ID:           uuid.NewString(),
		FullName:     fullName,
		Email:        email,
		PasswordHash: hashedPassword,
		CreatedAt:    time.Now().UTC(),
	}

	data, err := json.Marshal(user)
	if err != nil {
		return domain.User{}, fmt.Errorf("marshal failed: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(emailKey(email)); err == nil {
			return errors.ErrUserAlreadyExists
		}
		if err := txn.Set(emailKey(email), []byte(user.ID)); err != nil {
			return err
		}
		return txn.Set(userKey(user.ID), data)
	})
	if err != nil {
		return domain.User{}, err
	}
	return user.ToDomain(), nil
}

// GetUserByEmail returns the full stored record, hash included: the auth
// service needs it to verify credentials.
func (r *UserRepository) GetUserByEmail(email string) (User, error) {
	var user User
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(emailKey(email))
		if err != nil {
			return errors.ErrUserNotFound
		}
		var id []byte
		if id, err = item.ValueCopy(nil); err != nil {
			return err
		}
		return readJSON(txn, userKey(string(id)), &user)
	})
	return user, err
}

func (r *UserRepository) GetUserByID(id string) (domain.User, error) {
	var user User
	err := r.db.View(func(txn *badger.Txn) error {
		return readJSON(txn, userKey(id), &user)
	})
	if err != nil {
		return domain.User{}, errors.ErrUserNotFound
	}
	return user.ToDomain(), nil
}

// UpdateUser patches profile fields; empty arguments leave the current
// value in place.
func (r *UserRepository) UpdateUser(id, fullName, avatarURL string) (domain.User, error) {
	var user User
	err := r.db.Update(func(txn *badger.Txn) error {
		if err := readJSON(txn, userKey(id), &user); err != nil {
			return errors.ErrUserNotFound
		}
		if fullName != "" {
			user.FullName = fullName
		}
		if avatarURL != "" {
			user.AvatarURL = avatarURL
		}
		data, err := json.Marshal(user)
		if err != nil {
			return err
		}
		return txn.Set(userKey(id), data)
	})
	if err != nil {
		return domain.User{}, err
	}
	return user.ToDomain(), nil
}

// SearchUsers scans all accounts and matches the query case-insensitively
// against name and email, excluding the searcher. Fine at the account
// counts this service targets; an index would be overkill here.
func (r *UserRepository) SearchUsers(query, excludeID string) ([]domain.User, error) {
	needle := strings.ToLower(query)
	var found []domain.User

	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		prefix := []byte("user:id:")
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var user User
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &user)
			})
			if err != nil {
				return err
			}
			if user.ID == excludeID {
				continue
			}
			if strings.Contains(strings.ToLower(user.FullName), needle) ||
				strings.Contains(strings.ToLower(user.Email), needle) {
				found = append(found, user.ToDomain())
			}
		}
		return nil
	})
	return found, err
}

func readJSON(txn *badger.Txn, key []byte, out any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, out)
	})
}
