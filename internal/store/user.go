package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/shelftalk/shelftalk-server/internal/domain"
)

const (
	userPrefix           = "user:"
	userByEmailPrefix    = "idx:users:email:"    // For login lookups
	userByUsernamePrefix = "idx:users:username:" // For uniqueness and profile lookups
)

var (
	// ErrUserNotFound is returned when a user cannot be found by ID, email, or username.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when attempting to create a user with an existing ID.
	ErrUserExists = errors.New("user already exists")
	// ErrEmailExists is returned when the email address is already in use.
	ErrEmailExists = errors.New("email already in use")
	// ErrUsernameExists is returned when the username is already taken.
	ErrUsernameExists = errors.New("username already taken")
)

// normalizeEmail lowercases and trims an email for index storage and lookup.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// normalizeUsername lowercases and trims a username so uniqueness is
// case-insensitive while the stored user keeps the original casing.
func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// CreateUser creates a new user account.
// Email and username uniqueness are enforced atomically via index keys.
func (s *Store) CreateUser(_ context.Context, user *domain.User) error {
	key := []byte(userPrefix + user.ID)
	emailKey := []byte(userByEmailPrefix + normalizeEmail(user.Email))
	usernameKey := []byte(userByUsernamePrefix + normalizeUsername(user.Username))

	return s.db.Update(func(txn *badger.Txn) error {
		exists, err := keyExists(txn, key)
		if err != nil {
			return fmt.Errorf("check user exists: %w", err)
		}
		if exists {
			return ErrUserExists
		}

		exists, err = keyExists(txn, emailKey)
		if err != nil {
			return fmt.Errorf("check email exists: %w", err)
		}
		if exists {
			return ErrEmailExists
		}

		exists, err = keyExists(txn, usernameKey)
		if err != nil {
			return fmt.Errorf("check username exists: %w", err)
		}
		if exists {
			return ErrUsernameExists
		}

		if err := setJSON(txn, key, user); err != nil {
			return fmt.Errorf("marshal user: %w", err)
		}

		if err := txn.Set(emailKey, []byte(user.ID)); err != nil {
			return err
		}
		return txn.Set(usernameKey, []byte(user.ID))
	})
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(_ context.Context, id string) (*domain.User, error) {
	key := []byte(userPrefix + id)

	var user domain.User
	if err := s.get(key, &user); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

// GetUserByEmail retrieves a user by email address.
// Lookup is case-insensitive.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	emailKey := []byte(userByEmailPrefix + normalizeEmail(email))

	var userID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(emailKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			userID = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup email index: %w", err)
	}

	return s.GetUser(ctx, userID)
}

// GetUserByUsername retrieves a user by username.
// Lookup is case-insensitive.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	usernameKey := []byte(userByUsernamePrefix + normalizeUsername(username))

	var userID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(usernameKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			userID = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup username index: %w", err)
	}

	return s.GetUser(ctx, userID)
}

// UpdateUser saves changes to an existing user, reindexing email and
// username if they changed. Uniqueness of the new values is checked in
// the same transaction.
func (s *Store) UpdateUser(_ context.Context, user *domain.User) error {
	key := []byte(userPrefix + user.ID)

	return s.db.Update(func(txn *badger.Txn) error {
		var old domain.User
		err := getJSON(txn, key, &old)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("get existing user: %w", err)
		}

		oldEmail := normalizeEmail(old.Email)
		newEmail := normalizeEmail(user.Email)
		if oldEmail != newEmail {
			newKey := []byte(userByEmailPrefix + newEmail)
			taken, err := keyExists(txn, newKey)
			if err != nil {
				return fmt.Errorf("check email exists: %w", err)
			}
			if taken {
				return ErrEmailExists
			}
			if err := txn.Delete([]byte(userByEmailPrefix + oldEmail)); err != nil {
				return err
			}
			if err := txn.Set(newKey, []byte(user.ID)); err != nil {
				return err
			}
		}

		oldUsername := normalizeUsername(old.Username)
		newUsername := normalizeUsername(user.Username)
		if oldUsername != newUsername {
			newKey := []byte(userByUsernamePrefix + newUsername)
			taken, err := keyExists(txn, newKey)
			if err != nil {
				return fmt.Errorf("check username exists: %w", err)
			}
			if taken {
				return ErrUsernameExists
			}
			if err := txn.Delete([]byte(userByUsernamePrefix + oldUsername)); err != nil {
				return err
			}
			if err := txn.Set(newKey, []byte(user.ID)); err != nil {
				return err
			}
		}

		return setJSON(txn, key, user)
	})
}

// DeleteUser removes a user along with every review they authored.
// The user's reviews are detached from their books (with fresh averages)
// in the same transaction, so no book is left pointing at a deleted review.
func (s *Store) DeleteUser(_ context.Context, id string) error {
	key := []byte(userPrefix + id)

	return s.db.Update(func(txn *badger.Txn) error {
		var user domain.User
		err := getJSON(txn, key, &user)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}

		for _, reviewID := range user.Reviews {
			if err := dropReview(txn, reviewID, &dropOpts{skipUser: true}); err != nil {
				return fmt.Errorf("drop review %s: %w", reviewID, err)
			}
		}

		if err := txn.Delete([]byte(userByEmailPrefix + normalizeEmail(user.Email))); err != nil {
			return err
		}
		if err := txn.Delete([]byte(userByUsernamePrefix + normalizeUsername(user.Username))); err != nil {
			return err
		}

		return txn.Delete(key)
	})
}

// ListUsers returns all users.
func (s *Store) ListUsers(_ context.Context) ([]*domain.User, error) {
	var users []*domain.User

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(userPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(userPrefix)); it.ValidForPrefix([]byte(userPrefix)); it.Next() {
			var user domain.User
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &user)
			})
			if err != nil {
				return err
			}
			users = append(users, &user)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return users, nil
}
