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

// popularBooksLimit caps the popular listing on the landing page.
const popularBooksLimit = 6

// BookService handles the book catalog: listings, ownership-guarded
// mutations, upvotes, and reading status.
type BookService struct {
	store     *store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(st *store.Store, v *validation.Validator, logger *slog.Logger) *BookService {
	return &BookService{
		store:     st,
		validator: v,
		logger:    logger,
	}
}

// CreateBookRequest contains the fields for a new book.
type CreateBookRequest struct {
	OwnerEmail    string           `json:"email" validate:"required,email"`
	Title         string           `json:"book_title" validate:"required,max=300"`
	Author        string           `json:"book_author" validate:"required,max=200"`
	Category      string           `json:"book_category" validate:"required,max=100"`
	TotalPages    domain.PageCount `json:"total_page"`
	ReadingStatus string           `json:"reading_status"`
	CoverPhoto    string           `json:"cover_photo" validate:"omitempty,url"`
	Overview      string           `json:"book_overview" validate:"max=5000"`
}

// UpdateBookRequest contains the editable fields of a book. OwnerEmail must
// match both the token and the stored record.
type UpdateBookRequest struct {
	OwnerEmail    string           `json:"email" validate:"required,email"`
	Title         string           `json:"book_title" validate:"required,max=300"`
	Author        string           `json:"book_author" validate:"required,max=200"`
	Category      string           `json:"book_category" validate:"required,max=100"`
	TotalPages    domain.PageCount `json:"total_page"`
	ReadingStatus string           `json:"reading_status"`
	CoverPhoto    string           `json:"cover_photo" validate:"omitempty,url"`
	Overview      string           `json:"book_overview" validate:"max=5000"`
}

// UpvoteResult reports the outcome of an upvote attempt.
type UpvoteResult struct {
	Book *domain.Book
	// Recorded is false when the voter owns the book.
	Recorded bool
}

// Create adds a new book owned by the authenticated user. The payload's
// email must match the token email.
func (s *BookService) Create(ctx context.Context, req CreateBookRequest, tokenEmail string) (*domain.Book, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if !normalize.Equal(req.OwnerEmail, tokenEmail) {
		return nil, domainerrors.Forbidden("book email does not match the authenticated user")
	}

	status := domain.ReadingStatus(req.ReadingStatus)
	if req.ReadingStatus != "" && !status.Valid() {
		return nil, domainerrors.Validationf("reading_status must be one of %q, %q, %q",
			domain.StatusRead, domain.StatusReading, domain.StatusWantToRead)
	}

	bookID, err := id.Generate("book")
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	book := &domain.Book{
		OwnerEmail:    normalize.Email(req.OwnerEmail),
		Title:         req.Title,
		Author:        req.Author,
		Category:      req.Category,
		TotalPages:    req.TotalPages,
		ReadingStatus: status,
		CoverPhoto:    req.CoverPhoto,
		Overview:      req.Overview,
		Upvotes:       []string{},
	}
	book.ID = bookID
	book.InitTimestamps()

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}
	return book, nil
}

// List returns one page of the public catalog, optionally filtered by
// reading status and a title/author search term.
func (s *BookService) List(ctx context.Context, filter store.BookFilter, params store.PageParams) (*store.BookPage, error) {
	page, err := s.store.ListBooks(ctx, filter, params)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return page, nil
}

// ListByOwner returns every book owned by the authenticated user.
func (s *BookService) ListByOwner(ctx context.Context, ownerEmail string) ([]*domain.Book, error) {
	books, err := s.store.GetBooksByOwner(ctx, ownerEmail)
	if err != nil {
		return nil, fmt.Errorf("list books by owner: %w", err)
	}
	if books == nil {
		books = []*domain.Book{}
	}
	return books, nil
}

// Get returns a single book by ID.
func (s *BookService) Get(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if domainerrors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// GetForEdit returns a book for the edit form. Only the owner may load it.
func (s *BookService) GetForEdit(ctx context.Context, bookID, requesterEmail string) (*domain.Book, error) {
	book, err := s.Get(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !book.IsOwnedBy(requesterEmail) {
		return nil, domainerrors.Forbidden("you are not the owner of this book")
	}
	return book, nil
}

// ListPopular returns up to six books ranked by upvote count.
func (s *BookService) ListPopular(ctx context.Context) ([]*domain.Book, error) {
	books, err := s.store.ListPopularBooks(ctx, popularBooksLimit)
	if err != nil {
		return nil, fmt.Errorf("list popular books: %w", err)
	}
	if books == nil {
		books = []*domain.Book{}
	}
	return books, nil
}

// ListByCategory returns every book in the given category.
func (s *BookService) ListByCategory(ctx context.Context, category string) ([]*domain.Book, error) {
	books, err := s.store.GetBooksByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list books by category: %w", err)
	}
	if books == nil {
		books = []*domain.Book{}
	}
	return books, nil
}

// Update replaces the editable fields of a book. The requester must own the
// stored record and the payload email must match the token.
func (s *BookService) Update(ctx context.Context, bookID string, req UpdateBookRequest, tokenEmail string) (*domain.Book, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if !normalize.Equal(req.OwnerEmail, tokenEmail) {
		return nil, domainerrors.Forbidden("book email does not match the authenticated user")
	}

	status := domain.ReadingStatus(req.ReadingStatus)
	if req.ReadingStatus != "" && !status.Valid() {
		return nil, domainerrors.Validationf("reading_status must be one of %q, %q, %q",
			domain.StatusRead, domain.StatusReading, domain.StatusWantToRead)
	}

	book, err := s.Get(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !book.IsOwnedBy(tokenEmail) {
		return nil, domainerrors.Forbidden("you are not the owner of this book")
	}

	book.Title = req.Title
	book.Author = req.Author
	book.Category = req.Category
	book.TotalPages = req.TotalPages
	book.ReadingStatus = status
	book.CoverPhoto = req.CoverPhoto
	book.Overview = req.Overview
	book.Touch()

	if err := s.store.UpdateBook(ctx, book); err != nil {
		if domainerrors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("update book: %w", err)
	}
	return book, nil
}

// Upvote records an upvote from voterEmail. Owners cannot upvote their own
// book; that attempt returns Recorded=false without an error.
func (s *BookService) Upvote(ctx context.Context, bookID, voterEmail string) (*UpvoteResult, error) {
	book, recorded, err := s.store.AddUpvote(ctx, bookID, voterEmail)
	if err != nil {
		if domainerrors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("upvote book: %w", err)
	}
	return &UpvoteResult{Book: book, Recorded: recorded}, nil
}

// SetReadingStatus updates only the reading status field.
func (s *BookService) SetReadingStatus(ctx context.Context, bookID, status string) (*domain.Book, error) {
	rs := domain.ReadingStatus(status)
	if !rs.Valid() {
		return nil, domainerrors.Validationf("reading_status must be one of %q, %q, %q",
			domain.StatusRead, domain.StatusReading, domain.StatusWantToRead)
	}

	book, err := s.store.SetReadingStatus(ctx, bookID, rs)
	if err != nil {
		if domainerrors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("set reading status: %w", err)
	}
	return book, nil
}

// Delete removes a book. Only the owner may delete it.
func (s *BookService) Delete(ctx context.Context, bookID, requesterEmail string) error {
	book, err := s.Get(ctx, bookID)
	if err != nil {
		return err
	}
	if !book.IsOwnedBy(requesterEmail) {
		return domainerrors.Forbidden("you are not the owner of this book")
	}

	if err := s.store.DeleteBook(ctx, bookID); err != nil {
		if domainerrors.Is(err, store.ErrBookNotFound) {
			return domainerrors.NotFound("book not found")
		}
		return fmt.Errorf("delete book: %w", err)
	}
	return nil
}
