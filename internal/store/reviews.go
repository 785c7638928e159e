package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/bookshouse/bookshouse-server/internal/domain"
	"github.com/bookshouse/bookshouse-server/internal/normalize"
)

const (
	reviewPrefix       = "review:"
	reviewByBookPrefix = "idx:reviews:book:" // idx:reviews:book:<bookID>:<reviewID> -> reviewID
	reviewByPairPrefix = "idx:reviews:pair:" // idx:reviews:pair:<email>:<bookID> -> reviewID
)

var (
	// ErrReviewNotFound is returned when a review cannot be found by ID.
	ErrReviewNotFound = errors.New("review not found")
	// ErrDuplicateReview is returned when a reviewer already has a review
	// for the same book.
	ErrDuplicateReview = errors.New("review already exists for this reviewer and book")
)

func reviewBookIndexKey(bookID, reviewID string) []byte {
	return []byte(reviewByBookPrefix + bookID + ":" + reviewID)
}

func reviewPairIndexKey(reviewerEmail, bookID string) []byte {
	return []byte(reviewByPairPrefix + normalize.Email(reviewerEmail) + ":" + bookID)
}

// CreateReview stores a new review. The (reviewer, book) pair index is
// checked and written inside the same transaction, so two concurrent
// submissions for the same pair cannot both succeed.
func (s *Store) CreateReview(ctx context.Context, review *domain.Review) error {
	key := []byte(reviewPrefix + review.ID)
	pairKey := reviewPairIndexKey(review.ReviewerEmail, review.BookID)

	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(pairKey)
		if err == nil {
			return ErrDuplicateReview
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		data, err := json.Marshal(review)
		if err != nil {
			return fmt.Errorf("marshal review: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}
		if err := txn.Set(reviewBookIndexKey(review.BookID, review.ID), []byte(review.ID)); err != nil {
			return err
		}
		return txn.Set(pairKey, []byte(review.ID))
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateReview) {
			return err
		}
		return fmt.Errorf("create review: %w", err)
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "review created",
			slog.String("id", review.ID),
			slog.String("book_id", review.BookID),
			slog.String("reviewer", review.ReviewerEmail),
		)
	}
	return nil
}

// GetReview retrieves a review by ID.
func (s *Store) GetReview(_ context.Context, id string) (*domain.Review, error) {
	key := []byte(reviewPrefix + id)

	var review domain.Review
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &review)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("get review: %w", err)
	}
	return &review, nil
}

// GetReviewsForBook returns all reviews for the given book via the book index,
// oldest first.
func (s *Store) GetReviewsForBook(_ context.Context, bookID string) ([]*domain.Review, error) {
	prefix := []byte(reviewByBookPrefix + bookID + ":")

	var reviews []*domain.Review
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var reviewID string
			if err := it.Item().Value(func(val []byte) error {
				reviewID = string(val)
				return nil
			}); err != nil {
				return err
			}

			item, err := txn.Get([]byte(reviewPrefix + reviewID))
			if err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				return err
			}

			var review domain.Review
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &review)
			}); err != nil {
				return err
			}
			reviews = append(reviews, &review)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get reviews for book: %w", err)
	}

	sort.SliceStable(reviews, func(i, j int) bool {
		if !reviews[i].CreatedAt.Equal(reviews[j].CreatedAt) {
			return reviews[i].CreatedAt.Before(reviews[j].CreatedAt)
		}
		return reviews[i].ID < reviews[j].ID
	})
	return reviews, nil
}

// GetReviewByReviewerAndBook looks up a review through the pair index.
func (s *Store) GetReviewByReviewerAndBook(ctx context.Context, reviewerEmail, bookID string) (*domain.Review, error) {
	pairKey := reviewPairIndexKey(reviewerEmail, bookID)

	var reviewID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(pairKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			reviewID = string(val)
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("get review by pair: %w", err)
	}

	return s.GetReview(ctx, reviewID)
}

// UpdateReviewComment replaces the comment text on a review.
func (s *Store) UpdateReviewComment(_ context.Context, id, comment string) (*domain.Review, error) {
	key := []byte(reviewPrefix + id)

	var review domain.Review
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrReviewNotFound
		}
		if err != nil {
			return err
		}

		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &review)
		}); err != nil {
			return err
		}

		review.Comment = comment
		review.Touch()

		data, err := json.Marshal(&review)
		if err != nil {
			return fmt.Errorf("marshal review: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		if errors.Is(err, ErrReviewNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update review: %w", err)
	}
	return &review, nil
}

// DeleteReview removes a review and both of its index entries.
func (s *Store) DeleteReview(ctx context.Context, id string) error {
	key := []byte(reviewPrefix + id)

	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrReviewNotFound
		}
		if err != nil {
			return err
		}

		var review domain.Review
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &review)
		}); err != nil {
			return err
		}

		if err := txn.Delete(reviewBookIndexKey(review.BookID, review.ID)); err != nil {
			return err
		}
		if err := txn.Delete(reviewPairIndexKey(review.ReviewerEmail, review.BookID)); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if err != nil {
		if errors.Is(err, ErrReviewNotFound) {
			return err
		}
		return fmt.Errorf("delete review: %w", err)
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "review deleted", slog.String("id", id))
	}
	return nil
}
