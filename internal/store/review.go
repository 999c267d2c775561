package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/shelftalk/shelftalk-server/internal/domain"
)

const (
	reviewPrefix       = "review:"
	reviewByPairPrefix = "idx:reviews:pair:" // "<userID>:<bookID>" -> review ID
)

var (
	// ErrReviewNotFound is returned when a review cannot be found by ID.
	ErrReviewNotFound = errors.New("review not found")
	// ErrDuplicateReview is returned when a user already has a review for the book.
	ErrDuplicateReview = errors.New("user has already reviewed this book")
)

// reviewPairKey builds the uniqueness index key for one user's review of one book.
func reviewPairKey(userID, bookID string) []byte {
	return []byte(reviewByPairPrefix + userID + ":" + bookID)
}

// AddReview creates a review and updates every document that references it.
// The review document, the per-pair uniqueness index, the book's review list
// and average rating, and the author's review list are all written in a
// single transaction, so readers never observe a partially applied review.
func (s *Store) AddReview(_ context.Context, review *domain.Review) error {
	reviewKey := []byte(reviewPrefix + review.ID)
	pairKey := reviewPairKey(review.UserID, review.BookID)
	bookKey := []byte(bookPrefix + review.BookID)
	userKey := []byte(userPrefix + review.UserID)

	return s.db.Update(func(txn *badger.Txn) error {
		// One review per (user, book). The index key makes concurrent
		// duplicate submissions conflict inside Badger instead of racing.
		taken, err := keyExists(txn, pairKey)
		if err != nil {
			return fmt.Errorf("check review pair: %w", err)
		}
		if taken {
			return ErrDuplicateReview
		}

		var book domain.Book
		err = getJSON(txn, bookKey, &book)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrBookNotFound
		}
		if err != nil {
			return fmt.Errorf("get book: %w", err)
		}

		var user domain.User
		err = getJSON(txn, userKey, &user)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}

		if err := setJSON(txn, reviewKey, review); err != nil {
			return fmt.Errorf("save review: %w", err)
		}
		if err := txn.Set(pairKey, []byte(review.ID)); err != nil {
			return err
		}

		book.AttachReview(review.ID)
		avg, err := recomputeAverage(txn, &book)
		if err != nil {
			return err
		}
		book.AverageRating = avg
		book.Touch()
		if err := setJSON(txn, bookKey, &book); err != nil {
			return fmt.Errorf("save book: %w", err)
		}

		user.Reviews = append(user.Reviews, review.ID)
		user.Touch()
		if err := setJSON(txn, userKey, &user); err != nil {
			return fmt.Errorf("save user: %w", err)
		}

		return nil
	})
}

// RemoveReview deletes a review and detaches it from its book and author.
// The book's average rating is recomputed from the remaining reviews in the
// same transaction.
func (s *Store) RemoveReview(_ context.Context, reviewID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return dropReview(txn, reviewID, &dropOpts{})
	})
}

// GetReview retrieves a review by ID.
func (s *Store) GetReview(_ context.Context, id string) (*domain.Review, error) {
	key := []byte(reviewPrefix + id)

	var review domain.Review
	if err := s.get(key, &review); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("get review: %w", err)
	}

	return &review, nil
}

// GetReviewByPair retrieves the review a user wrote for a book, if any.
func (s *Store) GetReviewByPair(ctx context.Context, userID, bookID string) (*domain.Review, error) {
	var reviewID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(reviewPairKey(userID, bookID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			reviewID = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup review pair: %w", err)
	}

	return s.GetReview(ctx, reviewID)
}

// GetReviewsForBook returns all reviews attached to a book, newest first.
// The book document and every review are read in one snapshot, so the
// result is consistent with the book's stored review list.
func (s *Store) GetReviewsForBook(_ context.Context, bookID string) ([]*domain.Review, error) {
	var reviews []*domain.Review

	err := s.db.View(func(txn *badger.Txn) error {
		var book domain.Book
		err := getJSON(txn, []byte(bookPrefix+bookID), &book)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrBookNotFound
		}
		if err != nil {
			return fmt.Errorf("get book: %w", err)
		}

		for _, reviewID := range book.Reviews {
			var review domain.Review
			err := getJSON(txn, []byte(reviewPrefix+reviewID), &review)
			if errors.Is(err, badger.ErrKeyNotFound) {
				// Dangling reference. Skip it rather than fail the read.
				continue
			}
			if err != nil {
				return fmt.Errorf("get review %s: %w", reviewID, err)
			}
			reviews = append(reviews, &review)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})

	return reviews, nil
}

// GetReviewsForUser returns all reviews authored by a user, newest first.
func (s *Store) GetReviewsForUser(_ context.Context, userID string) ([]*domain.Review, error) {
	var reviews []*domain.Review

	err := s.db.View(func(txn *badger.Txn) error {
		var user domain.User
		err := getJSON(txn, []byte(userPrefix+userID), &user)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}

		for _, reviewID := range user.Reviews {
			var review domain.Review
			err := getJSON(txn, []byte(reviewPrefix+reviewID), &review)
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("get review %s: %w", reviewID, err)
			}
			reviews = append(reviews, &review)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})

	return reviews, nil
}

// dropOpts controls which back-references dropReview cleans up. Cascading
// deletes skip the document that is itself being deleted in the same
// transaction.
type dropOpts struct {
	skipBook bool // book document is being deleted, don't rewrite it
	skipUser bool // user document is being deleted, don't rewrite it
}

// dropReview removes a review inside an open transaction: the review
// document, its pair index, the reference in the book (with a fresh
// average), and the reference in the author's review list.
func dropReview(txn *badger.Txn, reviewID string, opts *dropOpts) error {
	reviewKey := []byte(reviewPrefix + reviewID)

	var review domain.Review
	err := getJSON(txn, reviewKey, &review)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrReviewNotFound
	}
	if err != nil {
		return fmt.Errorf("get review: %w", err)
	}

	if err := txn.Delete(reviewKey); err != nil {
		return err
	}
	if err := txn.Delete(reviewPairKey(review.UserID, review.BookID)); err != nil {
		return err
	}

	if !opts.skipBook {
		bookKey := []byte(bookPrefix + review.BookID)
		var book domain.Book
		err := getJSON(txn, bookKey, &book)
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("get book: %w", err)
		}
		if err == nil {
			book.DetachReview(reviewID)
			avg, err := recomputeAverage(txn, &book)
			if err != nil {
				return err
			}
			book.AverageRating = avg
			book.Touch()
			if err := setJSON(txn, bookKey, &book); err != nil {
				return fmt.Errorf("save book: %w", err)
			}
		}
	}

	if !opts.skipUser {
		userKey := []byte(userPrefix + review.UserID)
		var user domain.User
		err := getJSON(txn, userKey, &user)
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("get user: %w", err)
		}
		if err == nil {
			for i, id := range user.Reviews {
				if id == reviewID {
					user.Reviews = append(user.Reviews[:i], user.Reviews[i+1:]...)
					break
				}
			}
			user.Touch()
			if err := setJSON(txn, userKey, &user); err != nil {
				return fmt.Errorf("save user: %w", err)
			}
		}
	}

	return nil
}

// recomputeAverage computes the mean rating over the book's current review
// list by reading each review document inside the transaction. Pending
// writes in the same transaction are visible, so a review attached moments
// ago counts.
func recomputeAverage(txn *badger.Txn, book *domain.Book) (float64, error) {
	if len(book.Reviews) == 0 {
		return 0, nil
	}

	sum := 0
	count := 0
	for _, reviewID := range book.Reviews {
		var review domain.Review
		err := getJSON(txn, []byte(reviewPrefix+reviewID), &review)
		if errors.Is(err, badger.ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("get review %s: %w", reviewID, err)
		}
		sum += review.Rating
		count++
	}

	if count == 0 {
		return 0, nil
	}
	return float64(sum) / float64(count), nil
}
