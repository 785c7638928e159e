package api

import (
	"encoding/json/v2"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domainerrors "github.com/bookshouse/bookshouse-server/internal/errors"
	"github.com/bookshouse/bookshouse-server/internal/http/response"
	"github.com/bookshouse/bookshouse-server/internal/service"
)

// handleCreateReview submits a review. A second review for the same
// (reviewer, book) pair returns a notice message instead of an error.
func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	var req service.CreateReviewRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	review, err := s.reviewService.Create(r.Context(), req)
	if err != nil {
		if domainerrors.Is(err, domainerrors.ErrConflict) {
			response.Message(w, "You have already added a review for this book", s.logger)
			return
		}
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, review, s.logger)
}

// handleListReviewsForBook returns all reviews for a book.
func (s *Server) handleListReviewsForBook(w http.ResponseWriter, r *http.Request) {
	bookID := strings.TrimSpace(chi.URLParam(r, "id"))
	if bookID == "" {
		response.BadRequest(w, "Book ID is required", s.logger)
		return
	}

	reviews, err := s.reviewService.ListForBook(r.Context(), bookID)
	if err != nil {
		s.logger.Error("Failed to list reviews", "error", err, "book_id", bookID)
		response.InternalError(w, "Failed to retrieve reviews", s.logger)
		return
	}

	response.Success(w, reviews, s.logger)
}

// handleUpdateReview replaces a review's comment text.
func (s *Server) handleUpdateReview(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		response.BadRequest(w, "Review ID is required", s.logger)
		return
	}

	var req service.UpdateReviewRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	review, err := s.reviewService.UpdateComment(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, review, s.logger)
}

// handleDeleteReview removes a review.
func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		response.BadRequest(w, "Review ID is required", s.logger)
		return
	}

	if err := s.reviewService.Delete(r.Context(), id); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]string{"deleted": id}, s.logger)
}
