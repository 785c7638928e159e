package domain

// Review is a user's comment on a book.
//
// BookID is a plain reference, not an enforced foreign key - the reviewed
// book may be deleted later without cascading to its reviews.
// At most one review exists per (reviewer email, book id) pair.
type Review struct {
	Record
	ReviewerEmail string `json:"reviewerEmail"`
	BookID        string `json:"reviewedBookId"`
	Comment       string `json:"comment"`
}
