// Package author defines the byline shown on blog posts. Authors are
// editorial records, separate from login accounts.
package author

import (
	"strings"
	"time"

	"github.com/jsamuelsen11/blog-platform-api/internal/domain"
)

// Author is a named byline.
type Author struct {
	ID        string
	Name      string
	Bio       string
	AvatarURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks business rules for the Author entity.
func (a *Author) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return domain.NewValidationError("name", "is required")
	}
	return nil
}
