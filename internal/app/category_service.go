package app

import (
	"context"
	"log/slog"

	"github.com/jsamuelsen11/blog-platform-api/internal/domain/category"
	"github.com/jsamuelsen11/blog-platform-api/internal/ports"
)

var _ ports.CategoryService = (*CategoryService)(nil)

// CategoryService implements ports.CategoryService.
type CategoryService struct {
	categories ports.CategoryRepository
	logger     *slog.Logger
}

// NewCategoryService creates a CategoryService.
func NewCategoryService(categories ports.CategoryRepository, logger *slog.Logger) *CategoryService {
	return &CategoryService{categories: categories, logger: orDiscard(logger)}
}

// List returns every category sorted by name.
func (s *CategoryService) List(ctx context.Context) ([]category.Category, error) {
	return s.categories.List(ctx)
}

// GetBySlug returns the category with the given slug.
func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*category.Category, error) {
	return s.categories.FindBySlug(ctx, slug)
}

// Create normalizes and stores a category.
func (s *CategoryService) Create(ctx context.Context, c *category.Category) (*category.Category, error) {
	c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	created, err := s.categories.Create(ctx, c)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create category",
			slog.String("operation", "CreateCategory"),
			slog.String("slug", c.Slug),
			slog.Any("error", err),
		)
		return nil, err
	}
	return created, nil
}
