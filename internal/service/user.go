package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shelftalk/shelftalk-server/internal/auth"
	"github.com/shelftalk/shelftalk-server/internal/domain"
	domainerrors "github.com/shelftalk/shelftalk-server/internal/errors"
	"github.com/shelftalk/shelftalk-server/internal/store"
)

// UserService handles profile management and favorites.
type UserService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(store *store.Store, logger *slog.Logger) *UserService {
	return &UserService{
		store:  store,
		logger: logger,
	}
}

// Get retrieves a user by ID.
func (s *UserService) Get(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateUserRequest contains the mutable profile fields. Nil pointers leave
// the current value unchanged.
type UpdateUserRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=3,max=30,alphanum"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8,max=1024"`
}

// Update applies partial changes to a user's own profile.
// Only the profile owner or an admin may update it.
func (s *UserService) Update(ctx context.Context, userID string, req UpdateUserRequest, actor *domain.User) (*domain.User, error) {
	if userID != actor.ID && !actor.IsAdmin() {
		return nil, domainerrors.Forbidden("you can only update your own profile")
	}

	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}
	user.Touch()

	if err := s.store.UpdateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, store.ErrEmailExists):
			return nil, domainerrors.AlreadyExists("email already in use")
		case errors.Is(err, store.ErrUsernameExists):
			return nil, domainerrors.AlreadyExists("username already taken")
		default:
			return nil, fmt.Errorf("update user: %w", err)
		}
	}

	return user, nil
}

// Delete removes a user account and cascades their reviews.
// Only the account owner or an admin may delete it.
func (s *UserService) Delete(ctx context.Context, userID string, actor *domain.User) error {
	if userID != actor.ID && !actor.IsAdmin() {
		return domainerrors.Forbidden("you can only delete your own account")
	}

	if err := s.store.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return domainerrors.NotFound("user not found")
		}
		return fmt.Errorf("delete user: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("User account deleted",
			"user_id", userID,
			"deleted_by", actor.ID,
		)
	}

	return nil
}

// AddFavorite adds a book to the user's favorites list.
// Favoriting a book twice is a no-op.
func (s *UserService) AddFavorite(ctx context.Context, userID, bookID string) (*domain.User, error) {
	// Make sure the book exists before referencing it.
	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.AddFavorite(bookID) {
		user.Touch()
		if err := s.store.UpdateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
	}

	return user, nil
}

// RemoveFavorite removes a book from the user's favorites list.
// Removing a book that isn't favorited is a no-op.
func (s *UserService) RemoveFavorite(ctx context.Context, userID, bookID string) (*domain.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.RemoveFavorite(bookID) {
		user.Touch()
		if err := s.store.UpdateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
	}

	return user, nil
}
