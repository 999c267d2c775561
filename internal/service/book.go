package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shelftalk/shelftalk-server/internal/domain"
	domainerrors "github.com/shelftalk/shelftalk-server/internal/errors"
	"github.com/shelftalk/shelftalk-server/internal/id"
	"github.com/shelftalk/shelftalk-server/internal/store"
)

// BookService handles catalog management.
type BookService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(store *store.Store, logger *slog.Logger) *BookService {
	return &BookService{
		store:  store,
		logger: logger,
	}
}

// CreateBookRequest contains the data for adding a book to the catalog.
type CreateBookRequest struct {
	Title         string   `json:"title" validate:"required,max=300"`
	Author        string   `json:"author" validate:"required,max=200"`
	Description   string   `json:"description,omitempty" validate:"max=5000"`
	CoverImage    string   `json:"cover_image,omitempty" validate:"omitempty,url"`
	Genres        []string `json:"genres,omitempty" validate:"max=10,dive,max=50"`
	PublishedYear int      `json:"published_year,omitempty" validate:"omitempty,gte=0,lte=2100"`
	ISBN          string   `json:"isbn,omitempty" validate:"max=20"`
}

// Create adds a new book to the catalog.
func (s *BookService) Create(ctx context.Context, req CreateBookRequest) (*domain.Book, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	bookID, err := id.Generate("book")
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	book := &domain.Book{
		Title:         req.Title,
		Author:        req.Author,
		Description:   req.Description,
		CoverImage:    req.CoverImage,
		Genres:        req.Genres,
		PublishedYear: req.PublishedYear,
		ISBN:          req.ISBN,
	}
	book.ID = bookID
	book.InitTimestamps()

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Book added to catalog",
			"book_id", bookID,
			"title", book.Title,
		)
	}

	return book, nil
}

// Get retrieves a book by ID.
func (s *BookService) Get(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// List returns one page of the catalog, newest first.
func (s *BookService) List(ctx context.Context, params store.PageParams) (*store.PageResult[*domain.Book], error) {
	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	result := store.Paginate(books, params)
	return &result, nil
}

// UpdateBookRequest contains the mutable book fields. Nil pointers leave
// the current value unchanged.
type UpdateBookRequest struct {
	Title         *string   `json:"title,omitempty" validate:"omitempty,min=1,max=300"`
	Author        *string   `json:"author,omitempty" validate:"omitempty,min=1,max=200"`
	Description   *string   `json:"description,omitempty" validate:"omitempty,max=5000"`
	CoverImage    *string   `json:"cover_image,omitempty" validate:"omitempty,url"`
	Genres        *[]string `json:"genres,omitempty" validate:"omitempty,max=10,dive,max=50"`
	PublishedYear *int      `json:"published_year,omitempty" validate:"omitempty,gte=0,lte=2100"`
}

// Update applies partial changes to a book.
func (s *BookService) Update(ctx context.Context, bookID string, req UpdateBookRequest) (*domain.Book, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	book, err := s.Get(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Author != nil {
		book.Author = *req.Author
	}
	if req.Description != nil {
		book.Description = *req.Description
	}
	if req.CoverImage != nil {
		book.CoverImage = *req.CoverImage
	}
	if req.Genres != nil {
		book.Genres = *req.Genres
	}
	if req.PublishedYear != nil {
		book.PublishedYear = *req.PublishedYear
	}
	book.Touch()

	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}

	return book, nil
}

// Delete removes a book and all of its reviews.
func (s *BookService) Delete(ctx context.Context, bookID string) error {
	start := time.Now()

	if err := s.store.DeleteBook(ctx, bookID); err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return domainerrors.NotFound("book not found")
		}
		return fmt.Errorf("delete book: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Book removed from catalog",
			"book_id", bookID,
			"duration", time.Since(start),
		)
	}

	return nil
}
