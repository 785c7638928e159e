// Package domain contains the core business entities and domain logic for the BooksHouse catalog.
package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ReadingStatus tracks where the owner is with a book.
type ReadingStatus string

const (
	StatusRead       ReadingStatus = "Read"
	StatusReading    ReadingStatus = "Reading"
	StatusWantToRead ReadingStatus = "Want to Read"
)

// Valid checks if the status is one of the known values.
func (s ReadingStatus) Valid() bool {
	switch s {
	case StatusRead, StatusReading, StatusWantToRead:
		return true
	default:
		return false
	}
}

// PageCount is an integer page total that also accepts JSON string input.
// Clients submit total_page as either a number or a numeric string
// ("120" and 120 are both stored as 120).
type PageCount int

// UnmarshalJSON accepts both a JSON number and a quoted numeric string.
func (p *PageCount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if s == "" || s == "null" {
		*p = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid page count %q: %w", s, err)
	}
	if n < 0 {
		return fmt.Errorf("page count must not be negative, got %d", n)
	}
	*p = PageCount(n)
	return nil
}

// MarshalJSON always emits a JSON number.
func (p PageCount) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(int(p))), nil
}

// Book represents a cataloged book owned by a user.
//
// OwnerEmail is set at creation and is the sole authorization key for
// mutation and deletion. Upvotes is an append-only list of voter emails;
// the owner may never appear in it, other voters may appear more than once.
type Book struct {
	Record
	OwnerEmail    string        `json:"email"`
	Title         string        `json:"book_title"`
	Author        string        `json:"book_author"`
	Category      string        `json:"book_category"`
	TotalPages    PageCount     `json:"total_page"`
	ReadingStatus ReadingStatus `json:"reading_status"`
	CoverPhoto    string        `json:"cover_photo,omitempty"`
	Overview      string        `json:"book_overview,omitempty"`
	Upvotes       []string      `json:"upvote"`
}

// UpvoteCount returns the number of recorded upvotes.
func (b *Book) UpvoteCount() int {
	return len(b.Upvotes)
}

// IsOwnedBy reports whether the given email is the book's owner.
// Owner email is normalized at creation, so the comparison folds case.
func (b *Book) IsOwnedBy(email string) bool {
	return strings.EqualFold(b.OwnerEmail, strings.TrimSpace(email))
}

// AddUpvote appends a voter email to the upvote list.
// Returns false without mutating if the voter is the owner.
// Repeat votes from the same non-owner email are allowed.
func (b *Book) AddUpvote(voterEmail string) bool {
	if b.IsOwnedBy(voterEmail) {
		return false
	}
	b.Upvotes = append(b.Upvotes, voterEmail)
	return true
}
