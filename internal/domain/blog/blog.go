// Package blog defines the blog post aggregate and its listing queries.
package blog

import (
	"strings"
	"time"

	"github.com/jsamuelsen11/blog-platform-api/internal/domain"
)

// Status is the editorial state of a post.
type Status string

// Known statuses.
const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Ref is a lightweight reference to a related document, populated for
// responses (category name/slug, author name).
type Ref struct {
	ID   string
	Name string
	Slug string
}

// Blog is a single post.
type Blog struct {
	ID              string
	Title           string
	Slug            string
	Content         string
	Excerpt         string
	ImageURL        string
	ImageAlt        string
	MetaDescription string
	MetaKeywords    []string
	Tags            []string
	Status          Status
	IsFeatured      bool
	PublishDate     time.Time
	CategoryID      string
	AuthorID        string
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Populated on read; never persisted.
	Category *Ref
	Author   *Ref
}

// IsScheduled reports whether a published post goes live after now.
func (b *Blog) IsScheduled(now time.Time) bool {
	return b.Status == StatusPublished && b.PublishDate.After(now)
}

// Validate checks the fields every stored post must carry. ImageURL is
// checked separately because it is produced by the upload step.
func (b *Blog) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(b.Title) == "" {
		fields["title"] = "is required"
	}
	if strings.TrimSpace(b.Content) == "" {
		fields["content"] = "is required"
	}
	if strings.TrimSpace(b.Excerpt) == "" {
		fields["excerpt"] = "is required"
	}
	if strings.TrimSpace(b.ImageAlt) == "" {
		fields["imageAlt"] = "is required"
	}
	if b.CategoryID == "" {
		fields["categoryId"] = "is required"
	}
	if b.AuthorID == "" {
		fields["authorId"] = "is required"
	}
	if !b.Status.IsValid() {
		fields["status"] = "must be one of: draft, published"
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// SplitList turns a comma-separated value into trimmed, non-empty items.
func SplitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
