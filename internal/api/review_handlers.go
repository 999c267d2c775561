package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelftalk/shelftalk-server/internal/service"
	"github.com/shelftalk/shelftalk-server/internal/store"
)

func (s *Server) registerReviewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listReviews",
		Method:      http.MethodGet,
		Path:        "/api/v1/reviews",
		Summary:     "List reviews",
		Description: "Returns a page of reviews for a book, newest first, with the book's average rating",
		Tags:        []string{"Reviews"},
	}, s.handleListReviews)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createReview",
		Method:        http.MethodPost,
		Path:          "/api/v1/reviews",
		Summary:       "Post review",
		Description:   "Posts a review for a book. One review per user per book.",
		Tags:          []string{"Reviews"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "getReview",
		Method:      http.MethodGet,
		Path:        "/api/v1/reviews/{id}",
		Summary:     "Get review",
		Description: "Returns a review by ID",
		Tags:        []string{"Reviews"},
	}, s.handleGetReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteReview",
		Method:      http.MethodDelete,
		Path:        "/api/v1/reviews/{id}",
		Summary:     "Delete review",
		Description: "Deletes a review. Review author or admin only.",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteReview)
}

// === DTOs ===

// ReviewResponse contains review data in API responses.
type ReviewResponse struct {
	ID        string    `json:"id" doc:"Review ID"`
	BookID    string    `json:"book_id" doc:"Reviewed book ID"`
	BookTitle string    `json:"book_title,omitempty" doc:"Reviewed book's title"`
	UserID    string    `json:"user_id" doc:"Author's user ID"`
	Username  string    `json:"username,omitempty" doc:"Author's username"`
	Rating    int       `json:"rating" doc:"Rating from 1 to 5"`
	Comment   string    `json:"comment" doc:"Review text"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

// ListReviewsInput contains parameters for listing a book's reviews.
type ListReviewsInput struct {
	BookID string `query:"bookId" required:"true" doc:"Book to list reviews for"`
	Page   int    `query:"page" validate:"omitempty,gte=1" doc:"Page number (default 1)"`
	Limit  int    `query:"limit" validate:"omitempty,gte=1,lte=100" doc:"Page size (default 10, max 100)"`
}

// ListReviewsResponse contains one page of a book's reviews.
type ListReviewsResponse struct {
	Reviews       []ReviewResponse `json:"reviews" doc:"Reviews on this page"`
	Total         int              `json:"total" doc:"Total reviews for the book"`
	TotalPages    int              `json:"total_pages" doc:"Total number of pages"`
	CurrentPage   int              `json:"current_page" doc:"Current page number"`
	HasMore       bool             `json:"has_more" doc:"Whether more pages follow"`
	AverageRating float64          `json:"average_rating" doc:"Book's average rating"`
}

// ListReviewsOutput wraps the review list response for Huma.
type ListReviewsOutput struct {
	Body ListReviewsResponse
}

// CreateReviewRequest is the request body for posting a review.
type CreateReviewRequest struct {
	BookID  string `json:"bookId" validate:"required" doc:"Book to review"`
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5" doc:"Rating from 1 to 5"`
	Comment string `json:"comment" validate:"required,min=3,max=1000" doc:"Review text"`
}

// CreateReviewInput wraps the create review request for Huma.
type CreateReviewInput struct {
	Body CreateReviewRequest
}

// ReviewOutput wraps a review response for Huma.
type ReviewOutput struct {
	Body ReviewResponse
}

// GetReviewInput contains parameters for getting a review.
type GetReviewInput struct {
	ID string `path:"id" doc:"Review ID"`
}

// DeleteReviewInput contains parameters for deleting a review.
type DeleteReviewInput struct {
	ID string `path:"id" doc:"Review ID"`
}

// === Handlers ===

func (s *Server) handleListReviews(ctx context.Context, input *ListReviewsInput) (*ListReviewsOutput, error) {
	page, err := s.services.Review.ListForBook(ctx, input.BookID, store.PageParams{
		Page:  input.Page,
		Limit: input.Limit,
	})
	if err != nil {
		return nil, err
	}

	reviews := make([]ReviewResponse, len(page.Reviews))
	for i, review := range page.Reviews {
		reviews[i] = ReviewResponse{
			ID:        review.ID,
			BookID:    review.BookID,
			UserID:    review.UserID,
			Username:  review.Username,
			Rating:    review.Rating,
			Comment:   review.Comment,
			CreatedAt: review.CreatedAt,
			UpdatedAt: review.UpdatedAt,
		}
	}

	return &ListReviewsOutput{
		Body: ListReviewsResponse{
			Reviews:       reviews,
			Total:         page.Total,
			TotalPages:    page.TotalPages,
			CurrentPage:   page.Page,
			HasMore:       page.HasMore,
			AverageRating: page.AverageRating,
		},
	}, nil
}

func (s *Server) handleCreateReview(ctx context.Context, input *CreateReviewInput) (*ReviewOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	review, err := s.services.Review.Create(ctx, userID, input.Body.BookID, service.CreateReviewRequest{
		Rating:  input.Body.Rating,
		Comment: input.Body.Comment,
	})
	if err != nil {
		return nil, err
	}

	return &ReviewOutput{
		Body: ReviewResponse{
			ID:        review.ID,
			BookID:    review.BookID,
			BookTitle: review.BookTitle,
			UserID:    review.UserID,
			Username:  review.Username,
			Rating:    review.Rating,
			Comment:   review.Comment,
			CreatedAt: review.CreatedAt,
			UpdatedAt: review.UpdatedAt,
		},
	}, nil
}

func (s *Server) handleGetReview(ctx context.Context, input *GetReviewInput) (*ReviewOutput, error) {
	review, err := s.services.Review.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &ReviewOutput{
		Body: ReviewResponse{
			ID:        review.ID,
			BookID:    review.BookID,
			UserID:    review.UserID,
			Rating:    review.Rating,
			Comment:   review.Comment,
			CreatedAt: review.CreatedAt,
			UpdatedAt: review.UpdatedAt,
		},
	}, nil
}

func (s *Server) handleDeleteReview(ctx context.Context, input *DeleteReviewInput) (*MessageOutput, error) {
	actor, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Review.Delete(ctx, input.ID, actor); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Review deleted"}}, nil
}
