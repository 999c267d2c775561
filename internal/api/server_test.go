package api

import (
	"context"
	"encoding/json/v2"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelftalk/shelftalk-server/internal/auth"
	"github.com/shelftalk/shelftalk-server/internal/domain"
	"github.com/shelftalk/shelftalk-server/internal/id"
	"github.com/shelftalk/shelftalk-server/internal/search"
	"github.com/shelftalk/shelftalk-server/internal/service"
	"github.com/shelftalk/shelftalk-server/internal/store"
)

// testEnvelope mirrors the response envelope for decoding in tests.
type testEnvelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details any    `json:"details"`
	} `json:"error"`
}

// testServer wraps the API server for testing.
type testServer struct {
	*Server
	api          humatest.TestAPI
	tokenService *auth.TokenService
}

// setupTestServer creates a fully wired test server with temporary storage.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tmpDir := t.TempDir()

	st, err := store.New(filepath.Join(tmpDir, "test.db"), nil)
	require.NoError(t, err)

	authKey, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)

	tokenService, err := auth.NewTokenService(authKey, 15*time.Minute)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	index, err := search.NewIndex(search.Options{
		DataPath: filepath.Join(tmpDir, "search"),
		Logger:   logger,
	})
	require.NoError(t, err)

	searchService := service.NewSearchService(index, st, logger)
	st.SetSearchIndexer(searchService)

	services := &Services{
		Auth:   service.NewAuthService(st, tokenService, logger),
		Book:   service.NewBookService(st, logger),
		Review: service.NewReviewService(st, logger),
		User:   service.NewUserService(st, logger),
		Search: searchService,
	}

	server := NewServer(st, services, []string{"https://app.shelftalk.test"}, logger)
	t.Cleanup(func() {
		server.Close()
		_ = index.Close()
		_ = st.Close()
	})

	return &testServer{
		Server:       server,
		api:          humatest.Wrap(t, server.api),
		tokenService: tokenService,
	}
}

// registerTestUser registers a user through the API and returns the token and user ID.
func (ts *testServer) registerTestUser(t *testing.T, username, email string) (token, userID string) {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"username": username,
		"email":    email,
		"password": "sup3rsecret",
	})
	require.Equal(t, http.StatusCreated, resp.Code, "Register failed: %s", resp.Body.String())

	var envelope testEnvelope[AuthResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	return envelope.Data.AccessToken, envelope.Data.User.ID
}

// createTestAdmin creates an admin account directly in the store and returns a token.
func (ts *testServer) createTestAdmin(t *testing.T) (token, userID string) {
	t.Helper()
	ctx := context.Background()

	hash, err := auth.HashPassword("adminsecret123")
	require.NoError(t, err)

	adminID, err := id.Generate("user")
	require.NoError(t, err)

	admin := &domain.User{
		Username:     "admin",
		Email:        "admin@shelftalk.test",
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}
	admin.ID = adminID
	admin.InitTimestamps()
	require.NoError(t, ts.store.CreateUser(ctx, admin))

	token, err = ts.tokenService.GenerateAccessToken(admin)
	require.NoError(t, err)

	return token, adminID
}

// createTestBook adds a book as admin and returns its ID.
func (ts *testServer) createTestBook(t *testing.T, title, author string) string {
	t.Helper()

	adminToken, _ := ts.createTestAdmin(t)
	return ts.createTestBookAs(t, adminToken, title, author)
}

// createTestBookAs adds a book with the given token and returns its ID.
func (ts *testServer) createTestBookAs(t *testing.T, token, title, author string) string {
	t.Helper()

	resp := ts.api.Post("/api/v1/books",
		map[string]any{"title": title, "author": author},
		"Authorization: Bearer "+token)
	require.Equal(t, http.StatusCreated, resp.Code, "Create book failed: %s", resp.Body.String())

	var envelope testEnvelope[BookResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	return envelope.Data.ID
}

// === Tests ===

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	assert.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[HealthResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	assert.True(t, envelope.Success)
	assert.Equal(t, "healthy", envelope.Data.Status)
	assert.Equal(t, "healthy", envelope.Data.Components["database"].Status)
	assert.Equal(t, "healthy", envelope.Data.Components["search"].Status)
}

func TestEnvelope_SuccessShape(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	var raw map[string]any
	err := json.Unmarshal(resp.Body.Bytes(), &raw)
	require.NoError(t, err)

	assert.Equal(t, true, raw["success"])
	assert.Contains(t, raw, "data")
	assert.NotContains(t, raw, "error")
}

func TestEnvelope_ErrorShape(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/books/book_missing")
	require.Equal(t, http.StatusNotFound, resp.Code)

	var raw map[string]any
	err := json.Unmarshal(resp.Body.Bytes(), &raw)
	require.NoError(t, err)

	assert.Equal(t, false, raw["success"])
	assert.NotContains(t, raw, "data")

	errObj, ok := raw["error"].(map[string]any)
	require.True(t, ok, "error must be an object")
	assert.Equal(t, "NOT_FOUND", errObj["code"])
	assert.NotEmpty(t, errObj["message"])
}

// TestFullReviewScenario walks the main product flow end to end: admin
// seeds a book, readers register, review, and the rollup stays consistent.
func TestFullReviewScenario(t *testing.T) {
	ts := setupTestServer(t)

	adminToken, _ := ts.createTestAdmin(t)
	bookID := ts.createTestBookAs(t, adminToken, "The Left Hand of Darkness", "Ursula K. Le Guin")

	aliceToken, _ := ts.registerTestUser(t, "alice", "alice@example.com")
	bobToken, _ := ts.registerTestUser(t, "bob", "bob@example.com")

	// Alice posts a 5-star review.
	resp := ts.api.Post("/api/v1/reviews",
		map[string]any{"bookId": bookID, "rating": 5, "comment": "Genly Ai's journey broke me."},
		"Authorization: Bearer "+aliceToken)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	// Bob posts a 3-star review.
	resp = ts.api.Post("/api/v1/reviews",
		map[string]any{"bookId": bookID, "rating": 3, "comment": "Beautiful but slow in the middle."},
		"Authorization: Bearer "+bobToken)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	// Bob cannot review twice.
	resp = ts.api.Post("/api/v1/reviews",
		map[string]any{"bookId": bookID, "rating": 4, "comment": "Changed my mind, trying again."},
		"Authorization: Bearer "+bobToken)
	assert.Equal(t, http.StatusConflict, resp.Code)

	// The book shows the combined average.
	resp = ts.api.Get("/api/v1/books/" + bookID)
	require.Equal(t, http.StatusOK, resp.Code)

	var bookEnvelope testEnvelope[BookResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &bookEnvelope))
	assert.InDelta(t, 4.0, bookEnvelope.Data.AverageRating, 0.001)
	assert.Equal(t, 2, bookEnvelope.Data.ReviewCount)

	// The review listing carries the rollup and author names.
	resp = ts.api.Get("/api/v1/reviews?bookId=" + bookID)
	require.Equal(t, http.StatusOK, resp.Code)

	var listEnvelope testEnvelope[ListReviewsResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &listEnvelope))
	assert.Equal(t, 2, listEnvelope.Data.Total)
	assert.InDelta(t, 4.0, listEnvelope.Data.AverageRating, 0.001)

	// The book is searchable.
	resp = ts.api.Get("/api/v1/search?q=darkness")
	require.Equal(t, http.StatusOK, resp.Code)

	var searchEnvelope testEnvelope[SearchResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &searchEnvelope))
	require.Len(t, searchEnvelope.Data.Hits, 1)
	assert.Equal(t, bookID, searchEnvelope.Data.Hits[0].ID)

	// Alice deletes her review; the rollup follows.
	resp = ts.api.Get("/api/v1/reviews?bookId=" + bookID)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &listEnvelope))
	var aliceReviewID string
	for _, review := range listEnvelope.Data.Reviews {
		if review.Username == "alice" {
			aliceReviewID = review.ID
		}
	}
	require.NotEmpty(t, aliceReviewID)

	resp = ts.api.Delete("/api/v1/reviews/"+aliceReviewID, "Authorization: Bearer "+aliceToken)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/books/" + bookID)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &bookEnvelope))
	assert.InDelta(t, 3.0, bookEnvelope.Data.AverageRating, 0.001)
	assert.Equal(t, 1, bookEnvelope.Data.ReviewCount)
}

// TestPasswordNeverSerialized guards against the password hash leaking
// through any response that includes a user.
func TestPasswordNeverSerialized(t *testing.T) {
	ts := setupTestServer(t)

	token, userID := ts.registerTestUser(t, "alice", "alice@example.com")

	paths := []string{
		"/api/v1/auth/me",
		"/api/v1/users/" + userID,
	}
	for _, path := range paths {
		resp := ts.api.Get(path, "Authorization: Bearer "+token)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.NotContains(t, resp.Body.String(), "password")
		assert.NotContains(t, resp.Body.String(), "argon2")
	}
}

func TestAuthRateLimit(t *testing.T) {
	ts := setupTestServer(t)

	// Hammer the login endpoint from one IP until the limiter kicks in.
	var sawTooMany bool
	for range 15 {
		resp := ts.api.Post("/api/v1/auth/login", map[string]any{
			"email":    "nobody@example.com",
			"password": "wrongpassword",
		})
		if resp.Code == http.StatusTooManyRequests {
			sawTooMany = true
			assert.Contains(t, resp.Body.String(), "RATE_LIMITED")
			break
		}
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	}
	assert.True(t, sawTooMany, "rate limiter never engaged")
}

func TestRateLimit_DoesNotThrottleCatalog(t *testing.T) {
	ts := setupTestServer(t)

	for range 30 {
		resp := ts.api.Get("/api/v1/books")
		require.Equal(t, http.StatusOK, resp.Code)
	}
}

// TestCORS_ConfiguredOrigins verifies the allow-list handed to NewServer
// reaches the CORS middleware: a listed origin is echoed back, others get
// no allow header.
func TestCORS_ConfiguredOrigins(t *testing.T) {
	ts := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://app.shelftalk.test")
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	assert.Equal(t, "https://app.shelftalk.test", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
