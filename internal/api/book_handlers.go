package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelftalk/shelftalk-server/internal/domain"
	"github.com/shelftalk/shelftalk-server/internal/service"
	"github.com/shelftalk/shelftalk-server/internal/store"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns a page of the catalog, newest first",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a book by ID",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createBook",
		Method:        http.MethodPost,
		Path:          "/api/v1/books",
		Summary:       "Add book",
		Description:   "Adds a book to the catalog. Admin only.",
		Tags:          []string{"Books"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPatch,
		Path:        "/api/v1/books/{id}",
		Summary:     "Update book",
		Description: "Updates catalog metadata for a book. Admin only.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}",
		Summary:     "Delete book",
		Description: "Removes a book and all its reviews. Admin only.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBook)
}

// === DTOs ===

// BookResponse contains book data in API responses.
type BookResponse struct {
	ID            string    `json:"id" doc:"Book ID"`
	Title         string    `json:"title" doc:"Title"`
	Author        string    `json:"author" doc:"Author name"`
	Description   string    `json:"description,omitempty" doc:"Description"`
	CoverImage    string    `json:"cover_image,omitempty" doc:"Cover image URL"`
	Genres        []string  `json:"genres,omitempty" doc:"Genres"`
	PublishedYear int       `json:"published_year,omitempty" doc:"Year of publication"`
	ISBN          string    `json:"isbn,omitempty" doc:"ISBN"`
	AverageRating float64   `json:"average_rating" doc:"Average review rating (0 when unreviewed)"`
	ReviewCount   int       `json:"review_count" doc:"Number of reviews"`
	CreatedAt     time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt     time.Time `json:"updated_at" doc:"Last update time"`

	// Populated on the detail endpoint only; list responses stay slim.
	Reviews []ReviewResponse `json:"reviews,omitempty" doc:"The book's reviews, newest first (detail only)"`
}

// ListBooksInput contains pagination parameters for listing books.
type ListBooksInput struct {
	Page  int `query:"page" validate:"omitempty,gte=1" doc:"Page number (default 1)"`
	Limit int `query:"limit" validate:"omitempty,gte=1,lte=100" doc:"Page size (default 10, max 100)"`
}

// ListBooksResponse contains one page of the catalog.
type ListBooksResponse struct {
	Books       []BookResponse `json:"books" doc:"Books on this page"`
	Total       int            `json:"total" doc:"Total books in the catalog"`
	TotalPages  int            `json:"total_pages" doc:"Total number of pages"`
	CurrentPage int            `json:"current_page" doc:"Current page number"`
	HasMore     bool           `json:"has_more" doc:"Whether more pages follow"`
}

// ListBooksOutput wraps the book list response for Huma.
type ListBooksOutput struct {
	Body ListBooksResponse
}

// GetBookInput contains parameters for getting a book.
type GetBookInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// BookOutput wraps a book response for Huma.
type BookOutput struct {
	Body BookResponse
}

// CreateBookRequest is the request body for adding a book.
type CreateBookRequest struct {
	Title         string   `json:"title" validate:"required,max=300" doc:"Title"`
	Author        string   `json:"author" validate:"required,max=200" doc:"Author name"`
	Description   string   `json:"description,omitempty" validate:"omitempty,max=5000" doc:"Description"`
	CoverImage    string   `json:"cover_image,omitempty" validate:"omitempty,url" doc:"Cover image URL"`
	Genres        []string `json:"genres,omitempty" validate:"omitempty,max=10,dive,max=50" doc:"Genres"`
	PublishedYear int      `json:"published_year,omitempty" validate:"omitempty,gte=0,lte=2100" doc:"Year of publication"`
	ISBN          string   `json:"isbn,omitempty" validate:"omitempty,max=20" doc:"ISBN"`
}

// CreateBookInput wraps the create book request for Huma.
type CreateBookInput struct {
	Body CreateBookRequest
}

// UpdateBookRequest is the request body for updating a book.
type UpdateBookRequest struct {
	Title         *string   `json:"title,omitempty" validate:"omitempty,min=1,max=300" doc:"Title"`
	Author        *string   `json:"author,omitempty" validate:"omitempty,min=1,max=200" doc:"Author name"`
	Description   *string   `json:"description,omitempty" validate:"omitempty,max=5000" doc:"Description"`
	CoverImage    *string   `json:"cover_image,omitempty" validate:"omitempty,url" doc:"Cover image URL"`
	Genres        *[]string `json:"genres,omitempty" validate:"omitempty,max=10,dive,max=50" doc:"Genres"`
	PublishedYear *int      `json:"published_year,omitempty" validate:"omitempty,gte=0,lte=2100" doc:"Year of publication"`
}

// UpdateBookInput wraps the update book request for Huma.
type UpdateBookInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body UpdateBookRequest
}

// DeleteBookInput contains parameters for deleting a book.
type DeleteBookInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*ListBooksOutput, error) {
	page, err := s.services.Book.List(ctx, store.PageParams{
		Page:  input.Page,
		Limit: input.Limit,
	})
	if err != nil {
		return nil, err
	}

	books := make([]BookResponse, len(page.Items))
	for i, book := range page.Items {
		books[i] = mapBookResponse(book)
	}

	return &ListBooksOutput{
		Body: ListBooksResponse{
			Books:       books,
			Total:       page.Total,
			TotalPages:  page.TotalPages,
			CurrentPage: page.Page,
			HasMore:     page.HasMore,
		},
	}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookOutput, error) {
	book, err := s.services.Book.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	views, err := s.services.Review.ViewsForBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	body := mapBookResponse(book)
	body.Reviews = make([]ReviewResponse, len(views))
	for i, review := range views {
		body.Reviews[i] = ReviewResponse{
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

	return &BookOutput{Body: body}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	book, err := s.services.Book.Create(ctx, service.CreateBookRequest{
		Title:         input.Body.Title,
		Author:        input.Body.Author,
		Description:   input.Body.Description,
		CoverImage:    input.Body.CoverImage,
		Genres:        input.Body.Genres,
		PublishedYear: input.Body.PublishedYear,
		ISBN:          input.Body.ISBN,
	})
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	book, err := s.services.Book.Update(ctx, input.ID, service.UpdateBookRequest{
		Title:         input.Body.Title,
		Author:        input.Body.Author,
		Description:   input.Body.Description,
		CoverImage:    input.Body.CoverImage,
		Genres:        input.Body.Genres,
		PublishedYear: input.Body.PublishedYear,
	})
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *DeleteBookInput) (*MessageOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	if err := s.services.Book.Delete(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Book deleted"}}, nil
}

// === Helpers ===

func mapBookResponse(book *domain.Book) BookResponse {
	return BookResponse{
		ID:            book.ID,
		Title:         book.Title,
		Author:        book.Author,
		Description:   book.Description,
		CoverImage:    book.CoverImage,
		Genres:        book.Genres,
		PublishedYear: book.PublishedYear,
		ISBN:          book.ISBN,
		AverageRating: book.AverageRating,
		ReviewCount:   len(book.Reviews),
		CreatedAt:     book.CreatedAt,
		UpdatedAt:     book.UpdatedAt,
	}
}
