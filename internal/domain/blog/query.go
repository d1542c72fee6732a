package blog

import "time"

// View selects one of the fixed listing shapes exposed by the API.
type View int

// Listing views.
const (
	// ViewAll lists every post, optionally filtered by Status.
	ViewAll View = iota
	// ViewPublished lists published posts whose publish date has passed.
	ViewPublished
	// ViewFeatured lists featured posts; published ones must be live.
	ViewFeatured
	// ViewScheduled lists published posts with a future publish date.
	ViewScheduled
	// ViewCategory lists one category's posts. Without an explicit Status
	// only live published posts are included.
	ViewCategory
)

// DefaultLimit caps unpaginated listings so that a large collection cannot
// time out a request.
const DefaultLimit = 100

// MaxLimit is the largest page size a caller may request.
const MaxLimit = 100

// Query describes a listing request. Zero values mean "unset".
type Query struct {
	View       View
	Status     Status
	Search     string
	CategoryID string
	AuthorID   string
	Page       int
	Limit      int
	Now        time.Time
}

// Paginated reports whether the caller asked for a specific page size.
func (q *Query) Paginated() bool {
	return q.Limit > 0
}

// Skip returns the number of documents to skip for the requested page.
func (q *Query) Skip() int64 {
	if !q.Paginated() || q.Page <= 1 {
		return 0
	}
	return int64(q.Page-1) * int64(q.Limit)
}

// EffectiveLimit returns the page size to apply to the store query.
func (q *Query) EffectiveLimit() int64 {
	if !q.Paginated() {
		return DefaultLimit
	}
	if q.Limit > MaxLimit {
		return MaxLimit
	}
	return int64(q.Limit)
}

// Page is a slice of posts plus counts for pagination.
type Page struct {
	Blogs       []Blog
	TotalCount  int64
	CurrentPage int
	TotalPages  int
	Paginated   bool
}

// NewPage computes pagination fields for a result set.
func NewPage(blogs []Blog, total int64, q Query) Page {
	p := Page{Blogs: blogs, TotalCount: total, Paginated: q.Paginated()}
	if !p.Paginated {
		return p
	}
	p.CurrentPage = max(q.Page, 1)
	limit := q.EffectiveLimit()
	p.TotalPages = int((total + limit - 1) / limit)
	return p
}
