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
	bookPrefix        = "book:"
	bookByOwnerPrefix = "idx:books:owner:" // idx:books:owner:<email>:<bookID> -> bookID
)

var (
	// ErrBookNotFound is returned when a book cannot be found by ID.
	ErrBookNotFound = errors.New("book not found")
	// ErrBookExists is returned when attempting to create a book with an existing ID.
	ErrBookExists = errors.New("book already exists")
)

// BookFilter narrows the public book listing.
type BookFilter struct {
	Status string // Exact match on reading status when non-empty
	Search string // Case-insensitive substring match on title OR author when non-empty
}

// Matches reports whether the book passes the filter.
func (f BookFilter) Matches(b *domain.Book) bool {
	if f.Status != "" && string(b.ReadingStatus) != f.Status {
		return false
	}
	if f.Search != "" && !normalize.Contains(b.Title, f.Search) && !normalize.Contains(b.Author, f.Search) {
		return false
	}
	return true
}

// BookPage is one window of the filtered book listing, mirroring the
// response shape the client expects.
type BookPage struct {
	Books       []*domain.Book `json:"books"`
	TotalBooks  int            `json:"totalBooks"`
	CurrentPage int            `json:"currentPage"`
	TotalPages  int            `json:"totalPages"`
}

// ownerIndexKey builds the secondary index key for a book's owner.
func ownerIndexKey(ownerEmail, bookID string) []byte {
	return []byte(bookByOwnerPrefix + normalize.Email(ownerEmail) + ":" + bookID)
}

// CreateBook creates a new book together with its owner index.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	key := []byte(bookPrefix + book.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check book exists: %w", err)
	}
	if exists {
		return ErrBookExists
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(book)
		if err != nil {
			return fmt.Errorf("marshal book: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}

		return txn.Set(ownerIndexKey(book.OwnerEmail, book.ID), []byte(book.ID))
	})
	if err != nil {
		return fmt.Errorf("create book: %w", err)
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "book created",
			slog.String("id", book.ID),
			slog.String("title", book.Title),
			slog.String("owner", book.OwnerEmail),
		)
	}
	return nil
}

// GetBook retrieves a book by ID.
func (s *Store) GetBook(_ context.Context, id string) (*domain.Book, error) {
	key := []byte(bookPrefix + id)

	var book domain.Book
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &book)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return &book, nil
}

// GetBooksByOwner returns all books owned by the given email, via the owner index.
func (s *Store) GetBooksByOwner(_ context.Context, ownerEmail string) ([]*domain.Book, error) {
	prefix := []byte(bookByOwnerPrefix + normalize.Email(ownerEmail) + ":")

	var books []*domain.Book
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var bookID string
			if err := it.Item().Value(func(val []byte) error {
				bookID = string(val)
				return nil
			}); err != nil {
				return err
			}

			item, err := txn.Get([]byte(bookPrefix + bookID))
			if err != nil {
				// Dangling index entry; skip rather than fail the whole listing.
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				return err
			}

			var book domain.Book
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &book)
			}); err != nil {
				return err
			}
			books = append(books, &book)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get books by owner: %w", err)
	}

	sortBooksByCreation(books)
	return books, nil
}

// ListBooks returns one page of the filtered book listing with totals.
// This is a full-collection scan with an in-memory filter and sort;
// acceptable at catalog scale, documented as O(collection size).
func (s *Store) ListBooks(ctx context.Context, filter BookFilter, params PageParams) (*BookPage, error) {
	params.Validate()

	all, err := s.scanBooks(ctx)
	if err != nil {
		return nil, err
	}

	filtered := all[:0:0]
	for _, book := range all {
		if filter.Matches(book) {
			filtered = append(filtered, book)
		}
	}

	// Stable order by creation time so page windows are disjoint and
	// exhaustive across pages 1..totalPages.
	sortBooksByCreation(filtered)

	total := len(filtered)
	start := params.Offset()
	if start > total {
		start = total
	}
	end := start + params.Limit
	if end > total {
		end = total
	}

	return &BookPage{
		Books:       filtered[start:end],
		TotalBooks:  total,
		CurrentPage: params.Page,
		TotalPages:  totalPages(total, params.Limit),
	}, nil
}

// ListPopularBooks returns the top limit books ranked by upvote count descending.
// Ties break by creation time ascending (insertion order) for determinism.
// Full-collection scan; callers relying on this at scale need a maintained
// counter with an indexed sort instead.
func (s *Store) ListPopularBooks(ctx context.Context, limit int) ([]*domain.Book, error) {
	all, err := s.scanBooks(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].UpvoteCount() != all[j].UpvoteCount() {
			return all[i].UpvoteCount() > all[j].UpvoteCount()
		}
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// GetBooksByCategory returns all books whose category matches under case folding.
func (s *Store) GetBooksByCategory(ctx context.Context, category string) ([]*domain.Book, error) {
	all, err := s.scanBooks(ctx)
	if err != nil {
		return nil, err
	}

	matched := all[:0:0]
	for _, book := range all {
		if normalize.Equal(book.Category, category) {
			matched = append(matched, book)
		}
	}

	sortBooksByCreation(matched)
	return matched, nil
}

// UpdateBook replaces a stored book. The owner index is moved if the owner
// email changed (it shouldn't - owner email is set at creation - but a stale
// index is worse than the extra read).
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	key := []byte(bookPrefix + book.ID)

	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrBookNotFound
		}
		if err != nil {
			return fmt.Errorf("get existing book: %w", err)
		}

		var old domain.Book
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &old)
		}); err != nil {
			return fmt.Errorf("unmarshal existing book: %w", err)
		}

		if normalize.Email(old.OwnerEmail) != normalize.Email(book.OwnerEmail) {
			if err := txn.Delete(ownerIndexKey(old.OwnerEmail, old.ID)); err != nil {
				return err
			}
			if err := txn.Set(ownerIndexKey(book.OwnerEmail, book.ID), []byte(book.ID)); err != nil {
				return err
			}
		}

		data, err := json.Marshal(book)
		if err != nil {
			return fmt.Errorf("marshal book: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		if errors.Is(err, ErrBookNotFound) {
			return err
		}
		return fmt.Errorf("update book: %w", err)
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelDebug, "book updated", slog.String("id", book.ID))
	}
	return nil
}

// AddUpvote appends voterEmail to the book's upvote list in a single
// read-modify-write transaction. Returns the updated book and whether the
// vote was recorded; a vote from the owner is rejected without mutation.
func (s *Store) AddUpvote(_ context.Context, bookID, voterEmail string) (*domain.Book, bool, error) {
	key := []byte(bookPrefix + bookID)

	var book domain.Book
	var recorded bool
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrBookNotFound
		}
		if err != nil {
			return err
		}

		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &book)
		}); err != nil {
			return err
		}

		recorded = book.AddUpvote(voterEmail)
		if !recorded {
			return nil
		}

		book.Touch()
		data, err := json.Marshal(&book)
		if err != nil {
			return fmt.Errorf("marshal book: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		if errors.Is(err, ErrBookNotFound) {
			return nil, false, err
		}
		return nil, false, fmt.Errorf("add upvote: %w", err)
	}
	return &book, recorded, nil
}

// SetReadingStatus sets the reading status field on a book.
func (s *Store) SetReadingStatus(_ context.Context, bookID string, status domain.ReadingStatus) (*domain.Book, error) {
	key := []byte(bookPrefix + bookID)

	var book domain.Book
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrBookNotFound
		}
		if err != nil {
			return err
		}

		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &book)
		}); err != nil {
			return err
		}

		book.ReadingStatus = status
		book.Touch()

		data, err := json.Marshal(&book)
		if err != nil {
			return fmt.Errorf("marshal book: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		if errors.Is(err, ErrBookNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("set reading status: %w", err)
	}
	return &book, nil
}

// DeleteBook removes a book and its owner index.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	key := []byte(bookPrefix + id)

	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrBookNotFound
		}
		if err != nil {
			return err
		}

		var book domain.Book
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &book)
		}); err != nil {
			return err
		}

		if err := txn.Delete(ownerIndexKey(book.OwnerEmail, book.ID)); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if err != nil {
		if errors.Is(err, ErrBookNotFound) {
			return err
		}
		return fmt.Errorf("delete book: %w", err)
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "book deleted", slog.String("id", id))
	}
	return nil
}

// scanBooks loads every book document, skipping index keys.
func (s *Store) scanBooks(_ context.Context) ([]*domain.Book, error) {
	prefix := []byte(bookPrefix)

	var books []*domain.Book
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var book domain.Book
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &book)
			}); err != nil {
				return err
			}
			books = append(books, &book)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan books: %w", err)
	}
	return books, nil
}

// sortBooksByCreation orders books by creation time ascending, ID as tie-break.
func sortBooksByCreation(books []*domain.Book) {
	sort.SliceStable(books, func(i, j int) bool {
		if !books[i].CreatedAt.Equal(books[j].CreatedAt) {
			return books[i].CreatedAt.Before(books[j].CreatedAt)
		}
		return books[i].ID < books[j].ID
	})
}
