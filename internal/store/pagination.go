package store

// PageParams contains offset-based pagination request parameters.
// Page numbering starts at 1; the window for page p is [(p-1)*Limit, p*Limit).
// There is no stable cursor - concurrent inserts can shift page boundaries,
// which is an accepted limitation of the public listing.
type PageParams struct {
	Page  int // 1-based page number (defaults to 1)
	Limit int // Items per page (defaults to 9, capped at 100)
}

// DefaultPageParams returns the defaults used by the public book listing.
func DefaultPageParams() PageParams {
	return PageParams{
		Page:  1,
		Limit: 9,
	}
}

// Validate checks and corrects pagination parameters.
func (p *PageParams) Validate() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = 9
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
}

// Offset returns the number of items to skip for this page.
func (p PageParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// totalPages computes the page count for a result set size.
func totalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
