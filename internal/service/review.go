package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bookshouse/bookshouse-server/internal/domain"
	domainerrors "github.com/bookshouse/bookshouse-server/internal/errors"
	"github.com/bookshouse/bookshouse-server/internal/id"
	"github.com/bookshouse/bookshouse-server/internal/normalize"
	"github.com/bookshouse/bookshouse-server/internal/store"
	"github.com/bookshouse/bookshouse-server/internal/validation"
)

// ReviewService handles book reviews.
type ReviewService struct {
	store     *store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(st *store.Store, v *validation.Validator, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		store:     st,
		validator: v,
		logger:    logger,
	}
}

// CreateReviewRequest contains a new review submission.
type CreateReviewRequest struct {
	ReviewerEmail string `json:"reviewerEmail" validate:"required,email"`
	BookID        string `json:"reviewedBookId" validate:"required"`
	Comment       string `json:"comment" validate:"required,max=5000"`
}

// UpdateReviewRequest contains the replacement comment text.
type UpdateReviewRequest struct {
	Comment string `json:"comment" validate:"required,max=5000"`
}

// Create submits a review. A reviewer may hold at most one review per book.
// The reviewed book id is a loose reference; it is not checked against the
// catalog, and book deletion does not cascade to reviews.
func (s *ReviewService) Create(ctx context.Context, req CreateReviewRequest) (*domain.Review, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	reviewID, err := id.Generate("review")
	if err != nil {
		return nil, fmt.Errorf("generate review ID: %w", err)
	}

	review := &domain.Review{
		ReviewerEmail: normalize.Email(req.ReviewerEmail),
		BookID:        req.BookID,
		Comment:       req.Comment,
	}
	review.ID = reviewID
	review.InitTimestamps()

	if err := s.store.CreateReview(ctx, review); err != nil {
		if domainerrors.Is(err, store.ErrDuplicateReview) {
			return nil, domainerrors.Conflict("you have already added a review for this book")
		}
		return nil, fmt.Errorf("create review: %w", err)
	}
	return review, nil
}

// ListForBook returns all reviews for a book, oldest first.
func (s *ReviewService) ListForBook(ctx context.Context, bookID string) ([]*domain.Review, error) {
	reviews, err := s.store.GetReviewsForBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	if reviews == nil {
		reviews = []*domain.Review{}
	}
	return reviews, nil
}

// UpdateComment replaces the comment text on an existing review.
func (s *ReviewService) UpdateComment(ctx context.Context, reviewID string, req UpdateReviewRequest) (*domain.Review, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	review, err := s.store.UpdateReviewComment(ctx, reviewID, req.Comment)
	if err != nil {
		if domainerrors.Is(err, store.ErrReviewNotFound) {
			return nil, domainerrors.NotFound("review not found")
		}
		return nil, fmt.Errorf("update review: %w", err)
	}
	return review, nil
}

// Delete removes a review.
func (s *ReviewService) Delete(ctx context.Context, reviewID string) error {
	if err := s.store.DeleteReview(ctx, reviewID); err != nil {
		if domainerrors.Is(err, store.ErrReviewNotFound) {
			return domainerrors.NotFound("review not found")
		}
		return fmt.Errorf("delete review: %w", err)
	}
	return nil
}
