package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jsamuelsen11/blog-platform-api/internal/domain/author"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/blog"
	"github.com/jsamuelsen11/blog-platform-api/internal/ports"
)

var _ ports.AuthorService = (*AuthorService)(nil)

// AuthorService implements ports.AuthorService.
type AuthorService struct {
	authors ports.AuthorRepository
	blogs   ports.BlogRepository
	logger  *slog.Logger
	now     func() time.Time
}

// NewAuthorService creates an AuthorService.
func NewAuthorService(authors ports.AuthorRepository, blogs ports.BlogRepository, logger *slog.Logger) *AuthorService {
	return &AuthorService{authors: authors, blogs: blogs, logger: orDiscard(logger), now: time.Now}
}

// List returns every author.
func (s *AuthorService) List(ctx context.Context) ([]author.Author, error) {
	return s.authors.List(ctx)
}

// Get returns the author and their live published posts, newest first.
func (s *AuthorService) Get(ctx context.Context, id string) (*author.Author, []blog.Blog, error) {
	a, err := s.authors.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	posts, _, err := s.blogs.List(ctx, blog.Query{
		View:     blog.ViewPublished,
		AuthorID: a.ID,
		Now:      s.now(),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list author posts",
			slog.String("operation", "GetAuthor"),
			slog.String("author_id", id),
			slog.Any("error", err),
		)
		return nil, nil, err
	}
	return a, posts, nil
}

// Create stores an author.
func (s *AuthorService) Create(ctx context.Context, a *author.Author) (*author.Author, error) {
	a.Name = strings.TrimSpace(a.Name)
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return s.authors.Create(ctx, a)
}
