package api

import (
	"encoding/json/v2"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bookshouse/bookshouse-server/internal/http/response"
	"github.com/bookshouse/bookshouse-server/internal/service"
	"github.com/bookshouse/bookshouse-server/internal/store"
)

// handleListBooks returns one page of the public catalog. Accepts page,
// limit, filteredStatus, and searchParams query parameters.
func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	params := parsePageParams(r)
	filter := store.BookFilter{
		Status: r.URL.Query().Get("filteredStatus"),
		Search: r.URL.Query().Get("searchParams"),
	}

	page, err := s.bookService.List(r.Context(), filter, params)
	if err != nil {
		s.logger.Error("Failed to list books", "error", err)
		response.InternalError(w, "Failed to retrieve books", s.logger)
		return
	}

	response.Success(w, page, s.logger)
}

// handleListOwnBooks returns all books owned by the authenticated user.
// The email query parameter was validated against the token upstream.
func (s *Server) handleListOwnBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.bookService.ListByOwner(r.Context(), getEmail(r.Context()))
	if err != nil {
		s.logger.Error("Failed to list own books", "error", err)
		response.InternalError(w, "Failed to retrieve books", s.logger)
		return
	}

	response.Success(w, books, s.logger)
}

// handleGetBook returns a single book by ID.
func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		response.BadRequest(w, "Book ID is required", s.logger)
		return
	}

	book, err := s.bookService.Get(r.Context(), id)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, book, s.logger)
}

// handleGetBookForEdit returns a book for the owner's edit form.
func (s *Server) handleGetBookForEdit(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		response.BadRequest(w, "Book ID is required", s.logger)
		return
	}

	book, err := s.bookService.GetForEdit(r.Context(), id, getEmail(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, book, s.logger)
}

// handleListPopularBooks returns the most upvoted books.
func (s *Server) handleListPopularBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.bookService.ListPopular(r.Context())
	if err != nil {
		s.logger.Error("Failed to list popular books", "error", err)
		response.InternalError(w, "Failed to retrieve popular books", s.logger)
		return
	}

	response.Success(w, books, s.logger)
}

// handleListBooksByCategory returns all books in a category.
func (s *Server) handleListBooksByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	if category == "" {
		response.BadRequest(w, "Category is required", s.logger)
		return
	}

	books, err := s.bookService.ListByCategory(r.Context(), category)
	if err != nil {
		s.logger.Error("Failed to list books by category", "error", err, "category", category)
		response.InternalError(w, "Failed to retrieve books", s.logger)
		return
	}

	response.Success(w, books, s.logger)
}

// handleCreateBook adds a new book owned by the authenticated user.
func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var req service.CreateBookRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	book, err := s.bookService.Create(r.Context(), req, getEmail(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, book, s.logger)
}

// handleUpdateBook replaces the editable fields of an owned book.
func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		response.BadRequest(w, "Book ID is required", s.logger)
		return
	}

	var req service.UpdateBookRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	book, err := s.bookService.Update(r.Context(), id, req, getEmail(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, book, s.logger)
}

// upvoteRequest carries the voter's email.
type upvoteRequest struct {
	Email string `json:"email"`
}

// handleUpvoteBook records an upvote from the voter named in the body. A
// vote on the voter's own book returns a notice message instead of an error.
func (s *Server) handleUpvoteBook(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		response.BadRequest(w, "Book ID is required", s.logger)
		return
	}

	var req upvoteRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil || req.Email == "" {
		response.BadRequest(w, "Voter email is required", s.logger)
		return
	}

	result, err := s.bookService.Upvote(r.Context(), id, req.Email)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	if !result.Recorded {
		response.Message(w, "You cannot upvote your own book", s.logger)
		return
	}

	response.Success(w, result.Book, s.logger)
}

// readingStatusRequest carries the single field of a status update.
type readingStatusRequest struct {
	Status string `json:"status"`
}

// handleSetReadingStatus updates only a book's reading status.
func (s *Server) handleSetReadingStatus(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		response.BadRequest(w, "Book ID is required", s.logger)
		return
	}

	var req readingStatusRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	book, err := s.bookService.SetReadingStatus(r.Context(), id, req.Status)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, book, s.logger)
}

// handleDeleteBook removes an owned book.
func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		response.BadRequest(w, "Book ID is required", s.logger)
		return
	}

	if err := s.bookService.Delete(r.Context(), id, getEmail(r.Context())); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]string{"deleted": id}, s.logger)
}
