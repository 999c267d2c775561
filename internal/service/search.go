package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shelftalk/shelftalk-server/internal/domain"
	"github.com/shelftalk/shelftalk-server/internal/search"
	"github.com/shelftalk/shelftalk-server/internal/store"
)

// SearchService bridges the search index with the data store. It implements
// store.SearchIndexer so catalog writes keep the index in sync, and serves
// queries for the search endpoint.
type SearchService struct {
	index  *search.Index
	store  *store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.Index, store *store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  store,
		logger: logger,
	}
}

// Search executes a catalog search.
func (s *SearchService) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	return s.index.Search(ctx, params)
}

// IndexBook indexes a single book. Called by the store when a book is
// created or updated.
func (s *SearchService) IndexBook(_ context.Context, book *domain.Book) error {
	if err := s.index.IndexDocument(search.FromBook(book)); err != nil {
		return fmt.Errorf("index document: %w", err)
	}

	if s.logger != nil {
		s.logger.Debug("indexed book", "id", book.ID, "title", book.Title)
	}
	return nil
}

// DeleteBook removes a book from the index.
func (s *SearchService) DeleteBook(_ context.Context, bookID string) error {
	return s.index.DeleteDocument(bookID)
}

// DocumentCount returns the number of indexed books.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// ReindexAll rebuilds the index from the store. Called on startup when the
// index is empty or the document count has drifted from the catalog.
func (s *SearchService) ReindexAll(ctx context.Context) error {
	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return fmt.Errorf("list books: %w", err)
	}

	docs := make([]*search.Document, 0, len(books))
	for _, book := range books {
		docs = append(docs, search.FromBook(book))
	}

	if err := s.index.IndexDocuments(docs); err != nil {
		return fmt.Errorf("index documents: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("search index rebuilt", "books", len(docs))
	}
	return nil
}

// SyncIfStale reindexes the catalog when the index document count doesn't
// match the store. Cheap no-op in the common case.
func (s *SearchService) SyncIfStale(ctx context.Context) error {
	bookCount, err := s.store.CountBooks(ctx)
	if err != nil {
		return fmt.Errorf("count books: %w", err)
	}

	docCount, err := s.index.DocumentCount()
	if err != nil {
		return fmt.Errorf("count documents: %w", err)
	}

	if uint64(bookCount) == docCount {
		return nil
	}

	if s.logger != nil {
		s.logger.Info("search index out of sync, rebuilding",
			"books", bookCount,
			"indexed", docCount,
		)
	}
	return s.ReindexAll(ctx)
}
