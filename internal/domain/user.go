package domain

import "time"

// Role represents the user's permission level in the system.
type Role string

const (
	// RoleAdmin grants full administrative access.
	RoleAdmin Role = "admin"
	// RoleUser grants standard user access.
	RoleUser Role = "user"
)

// User represents an authenticated user account in the system.
type User struct {
	Entity
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	Role         Role      `json:"role"`                    // admin or user
	Reviews      []string  `json:"reviews"`                 // Review IDs authored by this user
	Favorites    []string  `json:"favorites"`               // Book IDs the user has favorited
	LastActiveAt time.Time `json:"last_active_at"`
}

// IsAdmin returns true if the user has administrative privileges.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasFavorite returns true if the book is in the user's favorites list.
func (u *User) HasFavorite(bookID string) bool {
	for _, id := range u.Favorites {
		if id == bookID {
			return true
		}
	}
	return false
}

// AddFavorite adds a book to the user's favorites. Adding a book that is
// already favorited is a no-op, so the operation is safe to retry.
func (u *User) AddFavorite(bookID string) bool {
	if u.HasFavorite(bookID) {
		return false
	}
	u.Favorites = append(u.Favorites, bookID)
	return true
}

// RemoveFavorite removes a book from the user's favorites.
// Returns true if the book was present.
func (u *User) RemoveFavorite(bookID string) bool {
	for i, id := range u.Favorites {
		if id == bookID {
			u.Favorites = append(u.Favorites[:i], u.Favorites[i+1:]...)
			return true
		}
	}
	return false
}

// Name returns the best available name to display for the user.
// Prefers the username, falls back to email.
func (u *User) Name() string {
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}
