package api

import (
	"encoding/json/v2"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBook_AdminOnly(t *testing.T) {
	ts := setupTestServer(t)

	userToken, _ := ts.registerTestUser(t, "alice", "alice@example.com")

	// Regular users cannot add books.
	resp := ts.api.Post("/api/v1/books",
		map[string]any{"title": "Dune", "author": "Frank Herbert"},
		"Authorization: Bearer "+userToken)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	// Unauthenticated requests are rejected.
	resp = ts.api.Post("/api/v1/books",
		map[string]any{"title": "Dune", "author": "Frank Herbert"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	// Admins can.
	adminToken, _ := ts.createTestAdmin(t)
	resp = ts.api.Post("/api/v1/books",
		map[string]any{
			"title":          "Dune",
			"author":         "Frank Herbert",
			"genres":         []string{"science fiction"},
			"published_year": 1965,
		},
		"Authorization: Bearer "+adminToken)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var envelope testEnvelope[BookResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Data.ID)
	assert.Equal(t, "Dune", envelope.Data.Title)
	assert.Equal(t, 1965, envelope.Data.PublishedYear)
	assert.Zero(t, envelope.Data.AverageRating)
}

func TestGetBook(t *testing.T) {
	ts := setupTestServer(t)

	bookID := ts.createTestBook(t, "Dune", "Frank Herbert")

	resp := ts.api.Get("/api/v1/books/" + bookID)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[BookResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, bookID, envelope.Data.ID)
	assert.Equal(t, "Frank Herbert", envelope.Data.Author)
}

// TestGetBook_PopulatesReviews verifies the detail endpoint carries the
// book's full reviews with author usernames, unlike the slim list response.
func TestGetBook_PopulatesReviews(t *testing.T) {
	ts := setupTestServer(t)

	bookID := ts.createTestBook(t, "Dune", "Frank Herbert")
	token, _ := ts.registerTestUser(t, "alice", "alice@example.com")

	resp := ts.api.Post("/api/v1/reviews",
		map[string]any{"bookId": bookID, "rating": 5, "comment": "The spice must flow."},
		"Authorization: Bearer "+token)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/books/" + bookID)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[BookResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Reviews, 1)
	assert.Equal(t, "The spice must flow.", envelope.Data.Reviews[0].Comment)
	assert.Equal(t, "alice", envelope.Data.Reviews[0].Username)
	assert.Equal(t, 5, envelope.Data.Reviews[0].Rating)

	// The list endpoint stays slim.
	resp = ts.api.Get("/api/v1/books")
	require.Equal(t, http.StatusOK, resp.Code)

	var listEnvelope testEnvelope[ListBooksResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &listEnvelope))
	require.Len(t, listEnvelope.Data.Books, 1)
	assert.Empty(t, listEnvelope.Data.Books[0].Reviews)
}

func TestGetBook_NotFound(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/books/book_missing")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestListBooks_Pagination(t *testing.T) {
	ts := setupTestServer(t)

	adminToken, _ := ts.createTestAdmin(t)
	for i := range 12 {
		ts.createTestBookAs(t, adminToken, fmt.Sprintf("Book %02d", i), "Author")
	}

	resp := ts.api.Get("/api/v1/books?page=1&limit=5")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[ListBooksResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data.Books, 5)
	assert.Equal(t, 12, envelope.Data.Total)
	assert.Equal(t, 3, envelope.Data.TotalPages)
	assert.Equal(t, 1, envelope.Data.CurrentPage)
	assert.True(t, envelope.Data.HasMore)

	resp = ts.api.Get("/api/v1/books?page=3&limit=5")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data.Books, 2)
	assert.False(t, envelope.Data.HasMore)
}

func TestListBooks_DefaultPagination(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/books")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[ListBooksResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.Data.CurrentPage)
	assert.Empty(t, envelope.Data.Books)
}

func TestUpdateBook(t *testing.T) {
	ts := setupTestServer(t)

	adminToken, _ := ts.createTestAdmin(t)
	bookID := ts.createTestBookAs(t, adminToken, "Drafty Title", "Jane Austen")

	resp := ts.api.Patch("/api/v1/books/"+bookID,
		map[string]any{"title": "Persuasion", "published_year": 1817},
		"Authorization: Bearer "+adminToken)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[BookResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "Persuasion", envelope.Data.Title)
	assert.Equal(t, 1817, envelope.Data.PublishedYear)
	assert.Equal(t, "Jane Austen", envelope.Data.Author)
}

func TestUpdateBook_NonAdmin(t *testing.T) {
	ts := setupTestServer(t)

	bookID := ts.createTestBook(t, "Dune", "Frank Herbert")
	userToken, _ := ts.registerTestUser(t, "alice", "alice@example.com")

	resp := ts.api.Patch("/api/v1/books/"+bookID,
		map[string]any{"title": "Renamed"},
		"Authorization: Bearer "+userToken)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestDeleteBook_CascadesReviews(t *testing.T) {
	ts := setupTestServer(t)

	adminToken, _ := ts.createTestAdmin(t)
	bookID := ts.createTestBookAs(t, adminToken, "Dune", "Frank Herbert")

	userToken, _ := ts.registerTestUser(t, "alice", "alice@example.com")
	resp := ts.api.Post("/api/v1/reviews",
		map[string]any{"bookId": bookID, "rating": 5, "comment": "The spice must flow."},
		"Authorization: Bearer "+userToken)
	require.Equal(t, http.StatusCreated, resp.Code)

	var reviewEnvelope testEnvelope[ReviewResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &reviewEnvelope))

	resp = ts.api.Delete("/api/v1/books/"+bookID, "Authorization: Bearer "+adminToken)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/books/" + bookID)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Get("/api/v1/reviews/" + reviewEnvelope.Data.ID)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
