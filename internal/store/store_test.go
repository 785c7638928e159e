package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bookshouse/bookshouse-server/internal/domain"
	"github.com/bookshouse/bookshouse-server/internal/id"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(t.TempDir(), nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

func newTestBook(t *testing.T, owner, title string) *domain.Book {
	t.Helper()

	book := &domain.Book{
		OwnerEmail:    owner,
		Title:         title,
		Author:        "Test Author",
		Category:      "Fiction",
		TotalPages:    200,
		ReadingStatus: domain.StatusReading,
		CoverPhoto:    "https://example.com/cover.jpg",
		Overview:      "A test book.",
	}
	book.ID = id.MustGenerate("book")
	book.InitTimestamps()
	return book
}

func newTestReview(t *testing.T, reviewer, bookID, comment string) *domain.Review {
	t.Helper()

	review := &domain.Review{
		ReviewerEmail: reviewer,
		BookID:        bookID,
		Comment:       comment,
	}
	review.ID = id.MustGenerate("review")
	review.InitTimestamps()
	return review
}

func newTestUser(t *testing.T, email string) *domain.User {
	t.Helper()

	user := &domain.User{
		Email:        email,
		PasswordHash: "not-a-real-hash",
		DisplayName:  "Test User",
	}
	user.ID = id.MustGenerate("user")
	user.InitTimestamps()
	return user
}

// stamp gives each record a distinct creation time so ordering assertions
// are not at the mercy of clock resolution.
func stamp(r *domain.Record, offset time.Duration) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r.CreatedAt = base.Add(offset)
	r.UpdatedAt = r.CreatedAt
}
