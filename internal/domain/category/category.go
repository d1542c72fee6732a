// Package category defines blog categories.
package category

import (
	"strings"
	"time"

	"github.com/jsamuelsen11/blog-platform-api/internal/domain"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/slug"
)

// Category groups blog posts; Slug is unique and URL-safe.
type Category struct {
	ID          string
	Name        string
	Slug        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Normalize fills Slug from Name when absent.
func (c *Category) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	if strings.TrimSpace(c.Slug) == "" {
		c.Slug = slug.Make(c.Name)
	} else {
		c.Slug = slug.Make(c.Slug)
	}
}

// Validate checks business rules for the Category entity.
func (c *Category) Validate() error {
	fields := make(map[string]string)

	if c.Name == "" {
		fields["name"] = "is required"
	}
	if c.Slug == "" {
		fields["slug"] = "must contain at least one letter or digit"
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}
