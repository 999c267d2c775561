package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/shelftalk/shelftalk-server/internal/domain"
)

const bookPrefix = "book:"

var (
	// ErrBookNotFound is returned when a book cannot be found by ID.
	ErrBookNotFound = errors.New("book not found")
	// ErrBookExists is returned when attempting to create a book with an existing ID.
	ErrBookExists = errors.New("book already exists")
)

// CreateBook creates a new book.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	key := []byte(bookPrefix + book.ID)

	err := s.db.Update(func(txn *badger.Txn) error {
		exists, err := keyExists(txn, key)
		if err != nil {
			return fmt.Errorf("check book exists: %w", err)
		}
		if exists {
			return ErrBookExists
		}

		return setJSON(txn, key, book)
	})
	if err != nil {
		return err
	}

	s.indexBook(ctx, book)
	return nil
}

// GetBook retrieves a book by ID.
func (s *Store) GetBook(_ context.Context, id string) (*domain.Book, error) {
	key := []byte(bookPrefix + id)

	var book domain.Book
	if err := s.get(key, &book); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	return &book, nil
}

// UpdateBook saves changes to an existing book.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	key := []byte(bookPrefix + book.ID)

	err := s.db.Update(func(txn *badger.Txn) error {
		exists, err := keyExists(txn, key)
		if err != nil {
			return fmt.Errorf("check book exists: %w", err)
		}
		if !exists {
			return ErrBookNotFound
		}

		return setJSON(txn, key, book)
	})
	if err != nil {
		return err
	}

	s.indexBook(ctx, book)
	return nil
}

// ListBooks returns all books sorted by creation time, newest first.
func (s *Store) ListBooks(_ context.Context) ([]*domain.Book, error) {
	var books []*domain.Book

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(bookPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(bookPrefix)); it.ValidForPrefix([]byte(bookPrefix)); it.Next() {
			var book domain.Book
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &book)
			})
			if err != nil {
				return err
			}
			books = append(books, &book)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	sort.Slice(books, func(i, j int) bool {
		return books[i].CreatedAt.After(books[j].CreatedAt)
	})

	return books, nil
}

// CountBooks returns the number of books in the catalog.
// Only keys are scanned, values are never loaded.
func (s *Store) CountBooks(_ context.Context) (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(bookPrefix)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(bookPrefix)); it.ValidForPrefix([]byte(bookPrefix)); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return count, nil
}

// DeleteBook removes a book along with every review attached to it.
// Review documents, their pair indexes, and references held by the
// reviewing users are all cleaned up in the same transaction.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	key := []byte(bookPrefix + id)

	err := s.db.Update(func(txn *badger.Txn) error {
		var book domain.Book
		err := getJSON(txn, key, &book)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrBookNotFound
		}
		if err != nil {
			return fmt.Errorf("get book: %w", err)
		}

		for _, reviewID := range book.Reviews {
			if err := dropReview(txn, reviewID, &dropOpts{skipBook: true}); err != nil {
				return fmt.Errorf("drop review %s: %w", reviewID, err)
			}
		}

		return txn.Delete(key)
	})
	if err != nil {
		return err
	}

	if s.searchIndexer != nil {
		if err := s.searchIndexer.DeleteBook(ctx, id); err != nil && s.logger != nil {
			s.logger.Warn("failed to remove book from search index", "book_id", id, "error", err)
		}
	}
	return nil
}

// indexBook pushes a book into the search index, logging failures instead
// of surfacing them. Search staleness must not fail a write.
func (s *Store) indexBook(ctx context.Context, book *domain.Book) {
	if s.searchIndexer == nil {
		return
	}
	if err := s.searchIndexer.IndexBook(ctx, book); err != nil && s.logger != nil {
		s.logger.Warn("failed to index book", "book_id", book.ID, "error", err)
	}
}
