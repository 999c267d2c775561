package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelftalk/shelftalk-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}",
		Summary:     "Get user",
		Description: "Returns a user's public profile",
		Tags:        []string{"Users"},
	}, s.handleGetUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateUser",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/{id}",
		Summary:     "Update user",
		Description: "Updates a user's profile. Profile owner or admin only.",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteUser",
		Method:      http.MethodDelete,
		Path:        "/api/v1/users/{id}",
		Summary:     "Delete user",
		Description: "Deletes an account and all its reviews. Account owner or admin only.",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUserReviews",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/reviews",
		Summary:     "Get user reviews",
		Description: "Returns all reviews written by a user, newest first",
		Tags:        []string{"Users"},
	}, s.handleGetUserReviews)

	huma.Register(s.api, huma.Operation{
		OperationID: "addFavorite",
		Method:      http.MethodPut,
		Path:        "/api/v1/users/me/favorites/{bookID}",
		Summary:     "Add favorite",
		Description: "Adds a book to the authenticated user's favorites. Idempotent.",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddFavorite)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeFavorite",
		Method:      http.MethodDelete,
		Path:        "/api/v1/users/me/favorites/{bookID}",
		Summary:     "Remove favorite",
		Description: "Removes a book from the authenticated user's favorites. Idempotent.",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRemoveFavorite)
}

// === DTOs ===

// GetUserInput contains parameters for getting a user.
type GetUserInput struct {
	ID string `path:"id" doc:"User ID"`
}

// UpdateUserRequest is the request body for updating a profile.
type UpdateUserRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=3,max=30,alphanum" doc:"New username"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email,max=254" doc:"New email"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8,max=1024" doc:"New password"`
}

// UpdateUserInput wraps the update user request for Huma.
type UpdateUserInput struct {
	ID   string `path:"id" doc:"User ID"`
	Body UpdateUserRequest
}

// DeleteUserInput contains parameters for deleting a user.
type DeleteUserInput struct {
	ID string `path:"id" doc:"User ID"`
}

// GetUserReviewsInput contains parameters for listing a user's reviews.
type GetUserReviewsInput struct {
	ID string `path:"id" doc:"User ID"`
}

// UserReviewsResponse contains all reviews by a user.
type UserReviewsResponse struct {
	Reviews []ReviewResponse `json:"reviews" doc:"Reviews, newest first"`
}

// UserReviewsOutput wraps the user reviews response for Huma.
type UserReviewsOutput struct {
	Body UserReviewsResponse
}

// FavoriteInput contains parameters for favorite operations.
type FavoriteInput struct {
	BookID string `path:"bookID" doc:"Book ID"`
}

// === Handlers ===

func (s *Server) handleGetUser(ctx context.Context, input *GetUserInput) (*UserOutput, error) {
	user, err := s.services.User.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: mapUserResponse(user)}, nil
}

func (s *Server) handleUpdateUser(ctx context.Context, input *UpdateUserInput) (*UserOutput, error) {
	actor, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.services.User.Update(ctx, input.ID, service.UpdateUserRequest{
		Username: input.Body.Username,
		Email:    input.Body.Email,
		Password: input.Body.Password,
	}, actor)
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: mapUserResponse(user)}, nil
}

func (s *Server) handleDeleteUser(ctx context.Context, input *DeleteUserInput) (*MessageOutput, error) {
	actor, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.User.Delete(ctx, input.ID, actor); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Account deleted"}}, nil
}

func (s *Server) handleGetUserReviews(ctx context.Context, input *GetUserReviewsInput) (*UserReviewsOutput, error) {
	reviews, err := s.services.Review.ListForUser(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	resp := make([]ReviewResponse, len(reviews))
	for i, review := range reviews {
		resp[i] = ReviewResponse{
			ID:        review.ID,
			BookID:    review.BookID,
			UserID:    review.UserID,
			Rating:    review.Rating,
			Comment:   review.Comment,
			CreatedAt: review.CreatedAt,
			UpdatedAt: review.UpdatedAt,
		}
	}

	return &UserReviewsOutput{Body: UserReviewsResponse{Reviews: resp}}, nil
}

func (s *Server) handleAddFavorite(ctx context.Context, input *FavoriteInput) (*UserOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.services.User.AddFavorite(ctx, userID, input.BookID)
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: mapUserResponse(user)}, nil
}

func (s *Server) handleRemoveFavorite(ctx context.Context, input *FavoriteInput) (*UserOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.services.User.RemoveFavorite(ctx, userID, input.BookID)
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: mapUserResponse(user)}, nil
}
