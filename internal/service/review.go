package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shelftalk/shelftalk-server/internal/domain"
	domainerrors "github.com/shelftalk/shelftalk-server/internal/errors"
	"github.com/shelftalk/shelftalk-server/internal/id"
	"github.com/shelftalk/shelftalk-server/internal/store"
)

// ReviewService owns the review lifecycle and the consistency between
// reviews, books, and users. All multi-document updates go through the
// store's transactional review operations.
type ReviewService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(store *store.Store, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		store:  store,
		logger: logger,
	}
}

// CreateReviewRequest contains the data for posting a review.
type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"required,min=3,max=1000"`
}

// ReviewWithAuthor is a review enriched with the author's display name.
type ReviewWithAuthor struct {
	*domain.Review
	Username string `json:"username"`
}

// CreatedReview is a freshly posted review with its author's username and
// the book's title resolved, so the caller can render it without extra reads.
type CreatedReview struct {
	*domain.Review
	Username  string `json:"username"`
	BookTitle string `json:"book_title"`
}

// ReviewPage is one page of a book's reviews plus the rating rollup.
type ReviewPage struct {
	Reviews       []*ReviewWithAuthor `json:"reviews"`
	Page          int                 `json:"page"`
	Limit         int                 `json:"limit"`
	Total         int                 `json:"total"`
	TotalPages    int                 `json:"total_pages"`
	HasMore       bool                `json:"has_more"`
	AverageRating float64             `json:"average_rating"`
}

// Create posts a review for a book on behalf of a user.
// A user can review a given book only once; a second attempt conflicts.
func (s *ReviewService) Create(ctx context.Context, userID, bookID string, req CreateReviewRequest) (*CreatedReview, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	reviewID, err := id.Generate("review")
	if err != nil {
		return nil, fmt.Errorf("generate review ID: %w", err)
	}

	review := &domain.Review{
		BookID:  bookID,
		UserID:  userID,
		Rating:  req.Rating,
		Comment: req.Comment,
	}
	review.ID = reviewID
	review.InitTimestamps()

	if err := s.store.AddReview(ctx, review); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateReview):
			return nil, domainerrors.Conflict("you have already reviewed this book")
		case errors.Is(err, store.ErrBookNotFound):
			return nil, domainerrors.NotFound("book not found")
		case errors.Is(err, store.ErrUserNotFound):
			return nil, domainerrors.NotFound("user not found")
		default:
			return nil, fmt.Errorf("add review: %w", err)
		}
	}

	if s.logger != nil {
		s.logger.Info("Review posted",
			"review_id", reviewID,
			"book_id", bookID,
			"user_id", userID,
			"rating", req.Rating,
		)
	}

	created := &CreatedReview{Review: review}
	if user, err := s.store.GetUser(ctx, userID); err == nil {
		created.Username = user.Username
	}
	if book, err := s.store.GetBook(ctx, bookID); err == nil {
		created.BookTitle = book.Title
	}

	return created, nil
}

// Get retrieves a review by ID.
func (s *ReviewService) Get(ctx context.Context, reviewID string) (*domain.Review, error) {
	review, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		if errors.Is(err, store.ErrReviewNotFound) {
			return nil, domainerrors.NotFound("review not found")
		}
		return nil, fmt.Errorf("get review: %w", err)
	}
	return review, nil
}

// Delete removes a review. Only the author or an admin may delete it.
func (s *ReviewService) Delete(ctx context.Context, reviewID string, actor *domain.User) error {
	review, err := s.Get(ctx, reviewID)
	if err != nil {
		return err
	}

	if review.UserID != actor.ID && !actor.IsAdmin() {
		return domainerrors.Forbidden("you can only delete your own reviews")
	}

	if err := s.store.RemoveReview(ctx, reviewID); err != nil {
		if errors.Is(err, store.ErrReviewNotFound) {
			return domainerrors.NotFound("review not found")
		}
		return fmt.Errorf("remove review: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Review deleted",
			"review_id", reviewID,
			"book_id", review.BookID,
			"deleted_by", actor.ID,
		)
	}

	return nil
}

// ListForBook returns one page of a book's reviews, newest first, with
// author usernames and the book's rating rollup.
func (s *ReviewService) ListForBook(ctx context.Context, bookID string, params store.PageParams) (*ReviewPage, error) {
	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	reviews, err := s.store.GetReviewsForBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	page := store.Paginate(reviews, params)

	enriched := make([]*ReviewWithAuthor, 0, len(page.Items))
	for _, review := range page.Items {
		enriched = append(enriched, s.withAuthor(ctx, review))
	}

	return &ReviewPage{
		Reviews:    enriched,
		Page:       page.Page,
		Limit:      page.Limit,
		Total:      page.Total,
		TotalPages: page.TotalPages,
		HasMore:    page.HasMore,
		// Aggregated over the full review set, not read from the stored
		// rollup, so the listing is correct even if the rollup drifts.
		AverageRating: domain.AverageRating(reviews),
	}, nil
}

// ViewsForBook returns every review for a book with author usernames,
// newest first. Used to populate the book detail view.
func (s *ReviewService) ViewsForBook(ctx context.Context, bookID string) ([]*ReviewWithAuthor, error) {
	reviews, err := s.store.GetReviewsForBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	enriched := make([]*ReviewWithAuthor, 0, len(reviews))
	for _, review := range reviews {
		enriched = append(enriched, s.withAuthor(ctx, review))
	}
	return enriched, nil
}

// ListForUser returns all reviews authored by a user, newest first.
func (s *ReviewService) ListForUser(ctx context.Context, userID string) ([]*domain.Review, error) {
	reviews, err := s.store.GetReviewsForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// withAuthor attaches the author's username to a review. A missing author
// (deleted mid-read) degrades to an empty username rather than an error.
func (s *ReviewService) withAuthor(ctx context.Context, review *domain.Review) *ReviewWithAuthor {
	enriched := &ReviewWithAuthor{Review: review}

	user, err := s.store.GetUser(ctx, review.UserID)
	if err == nil {
		enriched.Username = user.Username
	}

	return enriched
}
