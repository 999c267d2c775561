package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_IsAdmin(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		expected bool
	}{
		{"admin role", RoleAdmin, true},
		{"user role", RoleUser, false},
		{"zero value", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &User{Role: tt.role}
			assert.Equal(t, tt.expected, user.IsAdmin())
		})
	}
}

func TestUser_Favorites(t *testing.T) {
	user := &User{}

	assert.True(t, user.AddFavorite("book-1"))
	assert.True(t, user.AddFavorite("book-2"))
	assert.True(t, user.HasFavorite("book-1"))

	// Adding again is a no-op.
	assert.False(t, user.AddFavorite("book-1"))
	assert.Len(t, user.Favorites, 2)

	assert.True(t, user.RemoveFavorite("book-1"))
	assert.False(t, user.HasFavorite("book-1"))
	assert.False(t, user.RemoveFavorite("book-1"))
	assert.Equal(t, []string{"book-2"}, user.Favorites)
}

func TestUser_Name(t *testing.T) {
	user := &User{Username: "reader42", Email: "reader@example.com"}
	assert.Equal(t, "reader42", user.Name())

	user.Username = ""
	assert.Equal(t, "reader@example.com", user.Name())
}
