package ports

import (
	"context"

	"github.com/jsamuelsen11/blog-platform-api/internal/domain/author"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/blog"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/category"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/user"
)

// UserRepository persists accounts.
type UserRepository interface {
	// FindByEmail returns domain.ErrNotFound when no account uses email.
	FindByEmail(ctx context.Context, email string) (*user.User, error)

	// FindByID returns domain.ErrNotFound when the account does not exist.
	FindByID(ctx context.Context, id string) (*user.User, error)

	// Create stores u and returns it with ID and timestamps assigned.
	// Returns domain.ErrConflict when the email is taken.
	Create(ctx context.Context, u *user.User) (*user.User, error)

	// SetRole changes the role of an existing account.
	SetRole(ctx context.Context, id string, role user.Role) error

	// Count returns the number of accounts.
	Count(ctx context.Context) (int64, error)
}

// BlogRepository persists posts.
type BlogRepository interface {
	// List returns one page of posts for q, without their Content, and the
	// total number of matches.
	List(ctx context.Context, q blog.Query) ([]blog.Blog, int64, error)

	// FindByID returns domain.ErrNotFound when the post does not exist.
	FindByID(ctx context.Context, id string) (*blog.Blog, error)

	// FindBySlug returns domain.ErrNotFound when no post uses slug.
	FindBySlug(ctx context.Context, slug string) (*blog.Blog, error)

	// SlugExists reports whether a post other than exceptID uses slug.
	SlugExists(ctx context.Context, slug, exceptID string) (bool, error)

	// Create stores b and returns it with ID and timestamps assigned.
	Create(ctx context.Context, b *blog.Blog) (*blog.Blog, error)

	// Update replaces the stored post with the same ID.
	Update(ctx context.Context, b *blog.Blog) (*blog.Blog, error)

	// Delete removes a post. Returns domain.ErrNotFound when absent.
	Delete(ctx context.Context, id string) error
}

// CategoryRepository persists categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]category.Category, error)
	FindByID(ctx context.Context, id string) (*category.Category, error)
	FindBySlug(ctx context.Context, slug string) (*category.Category, error)
	Create(ctx context.Context, c *category.Category) (*category.Category, error)
}

// AuthorRepository persists authors.
type AuthorRepository interface {
	List(ctx context.Context) ([]author.Author, error)
	FindByID(ctx context.Context, id string) (*author.Author, error)
	Create(ctx context.Context, a *author.Author) (*author.Author, error)
}
