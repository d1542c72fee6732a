package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jsamuelsen11/blog-platform-api/internal/app/unitofwork"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/blog"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/category"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/slug"
	"github.com/jsamuelsen11/blog-platform-api/internal/platform/fanout"
	"github.com/jsamuelsen11/blog-platform-api/internal/ports"
)

var _ ports.BlogService = (*BlogService)(nil)

const (
	// latestConcurrency bounds the per-category queries of Latest.
	latestConcurrency = 4

	// DefaultLatestPerCategory applies when the caller gives no usable limit.
	DefaultLatestPerCategory = 5

	// maxSlugSuffix bounds the search for a free generated slug.
	maxSlugSuffix = 50
)

var publishDateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// BlogService implements ports.BlogService. Writes that upload an image run
// as a unit of work so a failed insert removes the uploaded asset again.
type BlogService struct {
	blogs      ports.BlogRepository
	categories ports.CategoryRepository
	authors    ports.AuthorRepository
	media      ports.MediaClient
	upload     ports.UploadOptions
	logger     *slog.Logger
	now        func() time.Time
}

// NewBlogService creates a BlogService. upload carries the folder and
// transformation applied to every image.
func NewBlogService(
	blogs ports.BlogRepository,
	categories ports.CategoryRepository,
	authors ports.AuthorRepository,
	media ports.MediaClient,
	upload ports.UploadOptions,
	logger *slog.Logger,
) *BlogService {
	return &BlogService{
		blogs:      blogs,
		categories: categories,
		authors:    authors,
		media:      media,
		upload:     upload,
		logger:     orDiscard(logger),
		now:        time.Now,
	}
}

// List returns one page of posts for q.
func (s *BlogService) List(ctx context.Context, q blog.Query) (blog.Page, error) {
	if q.Now.IsZero() {
		q.Now = s.now()
	}
	posts, total, err := s.blogs.List(ctx, q)
	if err != nil {
		return blog.Page{}, err
	}
	return blog.NewPage(posts, total, q), nil
}

// ListByCategorySlug resolves the category and lists its posts.
func (s *BlogService) ListByCategorySlug(ctx context.Context, categorySlug string, q blog.Query) (*category.Category, blog.Page, error) {
	c, err := s.categories.FindBySlug(ctx, categorySlug)
	if err != nil {
		return nil, blog.Page{}, err
	}
	q.View = blog.ViewCategory
	q.CategoryID = c.ID

	page, err := s.List(ctx, q)
	if err != nil {
		return nil, blog.Page{}, err
	}
	return c, page, nil
}

// Latest returns the newest live posts of every category. Categories
// without posts are included with an empty list.
func (s *BlogService) Latest(ctx context.Context, perCategory int) ([]ports.CategoryBlogs, error) {
	if perCategory <= 0 {
		perCategory = DefaultLatestPerCategory
	}
	perCategory = min(perCategory, blog.MaxLimit)

	cats, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	results := fanout.Run(ctx, latestConcurrency, cats, func(ctx context.Context, c category.Category) (ports.CategoryBlogs, error) {
		posts, _, err := s.blogs.List(ctx, blog.Query{
			View:       blog.ViewPublished,
			CategoryID: c.ID,
			Limit:      perCategory,
			Now:        now,
		})
		if err != nil {
			return ports.CategoryBlogs{}, fmt.Errorf("category %s: %w", c.Slug, err)
		}
		return ports.CategoryBlogs{Category: c, Blogs: posts}, nil
	})

	groups, err := fanout.Values(results)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list latest posts",
			slog.String("operation", "LatestBlogs"),
			slog.Any("error", err),
		)
		return nil, err
	}
	return groups, nil
}

// Get returns a post by ID.
func (s *BlogService) Get(ctx context.Context, id string) (*blog.Blog, error) {
	return s.blogs.FindByID(ctx, id)
}

// GetBySlug returns a post by slug.
func (s *BlogService) GetBySlug(ctx context.Context, postSlug string) (*blog.Blog, error) {
	return s.blogs.FindBySlug(ctx, postSlug)
}

// Create validates in, uploads its image and stores the post.
func (s *BlogService) Create(ctx context.Context, createdBy string, in ports.BlogInput) (*blog.Blog, error) {
	b := &blog.Blog{
		Title:           deref(in.Title),
		Content:         deref(in.Content),
		Excerpt:         deref(in.Excerpt),
		ImageAlt:        deref(in.ImageAlt),
		MetaDescription: deref(in.MetaDescription),
		MetaKeywords:    in.MetaKeywords,
		Tags:            in.Tags,
		Status:          blog.StatusPublished,
		CategoryID:      deref(in.CategoryID),
		AuthorID:        deref(in.AuthorID),
		CreatedBy:       createdBy,
	}
	if in.Status != nil {
		b.Status = *in.Status
	}
	if in.IsFeatured != nil {
		b.IsFeatured = *in.IsFeatured
	}

	publish, err := parsePublishDate(in.PublishDate)
	if err != nil {
		return nil, err
	}
	b.PublishDate = publish

	if err := b.Validate(); err != nil {
		return nil, err
	}
	if in.Image == nil && strings.TrimSpace(deref(in.ImageURL)) == "" {
		return nil, domain.NewValidationError("image", "Blog image is required (either upload a file or provide an imageUrl)")
	}
	b.ImageURL = strings.TrimSpace(deref(in.ImageURL))

	if err := s.checkRefs(ctx, b.CategoryID, b.AuthorID); err != nil {
		return nil, err
	}

	if custom := strings.TrimSpace(deref(in.Slug)); custom != "" {
		b.Slug, err = s.claimSlug(ctx, custom, "")
	} else {
		b.Slug, err = s.generateSlug(ctx, b.Title)
	}
	if err != nil {
		return nil, err
	}

	var created *blog.Blog
	uow := unitofwork.New()
	if in.Image != nil {
		if err := uow.Add(s.uploadAction(in.Image, b)); err != nil {
			return nil, err
		}
	}
	if err := uow.Add(domain.ActionFunc{
		Name: "insert post " + b.Slug,
		Run: func(ctx context.Context) error {
			var err error
			created, err = s.blogs.Create(ctx, b)
			return err
		},
	}); err != nil {
		return nil, err
	}

	if err := uow.Commit(ctx); err != nil {
		return nil, unwrapAction(err)
	}

	s.logger.InfoContext(ctx, "post created",
		slog.String("blog_id", created.ID),
		slog.String("slug", created.Slug),
	)
	return created, nil
}

// Update applies in to the stored post. A replaced image is deleted from
// the media host after the post is saved.
func (s *BlogService) Update(ctx context.Context, id string, in ports.BlogInput) (*blog.Blog, error) {
	b, err := s.blogs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldImage := b.ImageURL

	if err := applyInput(b, in); err != nil {
		return nil, err
	}

	if custom := strings.TrimSpace(deref(in.Slug)); custom != "" && slug.Make(custom) != b.Slug {
		if b.Slug, err = s.claimSlug(ctx, custom, b.ID); err != nil {
			return nil, err
		}
	}

	if in.CategoryID != nil || in.AuthorID != nil {
		if err := s.checkRefs(ctx, b.CategoryID, b.AuthorID); err != nil {
			return nil, err
		}
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}

	var updated *blog.Blog
	uow := unitofwork.New()
	if in.Image != nil {
		if err := uow.Add(s.uploadAction(in.Image, b)); err != nil {
			return nil, err
		}
	}
	if err := uow.Add(domain.ActionFunc{
		Name: "update post " + b.ID,
		Run: func(ctx context.Context) error {
			var err error
			updated, err = s.blogs.Update(ctx, b)
			return err
		},
	}); err != nil {
		return nil, err
	}

	if err := uow.Commit(ctx); err != nil {
		return nil, unwrapAction(err)
	}

	if oldImage != "" && oldImage != updated.ImageURL {
		s.deleteImage(ctx, oldImage)
	}
	return updated, nil
}

// Delete removes the post, then its hosted image. Failing to delete the
// image is logged and does not fail the request.
func (s *BlogService) Delete(ctx context.Context, id string) error {
	b, err := s.blogs.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.blogs.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "post deleted", slog.String("blog_id", id))
	if b.ImageURL != "" {
		s.deleteImage(ctx, b.ImageURL)
	}
	return nil
}

// uploadAction uploads img and points b at it. Rollback deletes the asset.
func (s *BlogService) uploadAction(img *ports.ImageUpload, b *blog.Blog) domain.Action {
	var publicID string
	return domain.ActionFunc{
		Name: "upload image " + img.Filename,
		Run: func(ctx context.Context) error {
			res, err := s.media.Upload(ctx, img.Data, s.upload)
			if err != nil {
				return err
			}
			publicID = res.PublicID
			b.ImageURL = res.SecureURL
			return nil
		},
		Revert: func(ctx context.Context) error {
			return s.media.Delete(ctx, publicID)
		},
	}
}

func (s *BlogService) deleteImage(ctx context.Context, imageURL string) {
	publicID := s.media.PublicIDFromURL(imageURL)
	if publicID == "" {
		return
	}
	if err := s.media.Delete(ctx, publicID); err != nil {
		s.logger.WarnContext(ctx, "failed to delete hosted image",
			slog.String("public_id", publicID),
			slog.Any("error", err),
		)
	}
}

// checkRefs verifies that the category and author exist, concurrently.
func (s *BlogService) checkRefs(ctx context.Context, categoryID, authorID string) error {
	type ref struct {
		field string
		find  func(context.Context) error
	}
	refs := []ref{
		{"categoryId", func(ctx context.Context) error {
			_, err := s.categories.FindByID(ctx, categoryID)
			return err
		}},
		{"authorId", func(ctx context.Context) error {
			_, err := s.authors.FindByID(ctx, authorID)
			return err
		}},
	}

	results := fanout.Run(ctx, len(refs), refs, func(ctx context.Context, r ref) (struct{}, error) {
		err := r.find(ctx)
		if errors.Is(err, domain.ErrNotFound) {
			return struct{}{}, domain.NewValidationError(r.field, "does not reference an existing record")
		}
		return struct{}{}, err
	})

	fields := make(map[string]string)
	for _, r := range results {
		var verr *domain.ValidationError
		switch {
		case r.Err == nil:
		case errors.As(r.Err, &verr):
			for k, v := range verr.Fields {
				fields[k] = v
			}
		default:
			return r.Err
		}
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// claimSlug normalizes a caller-chosen slug and rejects it when another
// post already uses it.
func (s *BlogService) claimSlug(ctx context.Context, raw, exceptID string) (string, error) {
	candidate := slug.Make(raw)
	if candidate == "" {
		return "", domain.NewValidationError("slug", "must contain at least one letter or digit")
	}
	taken, err := s.blogs.SlugExists(ctx, candidate, exceptID)
	if err != nil {
		return "", err
	}
	if taken {
		return "", domain.NewValidationError("slug", "A blog with this slug already exists. Please use a different slug.")
	}
	return candidate, nil
}

// generateSlug derives a free slug from the title, appending -2, -3, ...
// on collision.
func (s *BlogService) generateSlug(ctx context.Context, title string) (string, error) {
	base := slug.Make(title)
	if base == "" {
		base = "post"
	}
	for n := 1; n <= maxSlugSuffix; n++ {
		candidate := base
		if n > 1 {
			candidate = base + "-" + strconv.Itoa(n)
		}
		taken, err := s.blogs.SlugExists(ctx, candidate, "")
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: no free slug for %q", domain.ErrConflict, base)
}

// applyInput copies the set fields of in onto b. Required text fields may
// be omitted but not cleared.
func applyInput(b *blog.Blog, in ports.BlogInput) error {
	fields := make(map[string]string)
	required := []struct {
		name string
		src  *string
		dst  *string
	}{
		{"title", in.Title, &b.Title},
		{"content", in.Content, &b.Content},
		{"excerpt", in.Excerpt, &b.Excerpt},
		{"imageAlt", in.ImageAlt, &b.ImageAlt},
		{"categoryId", in.CategoryID, &b.CategoryID},
		{"authorId", in.AuthorID, &b.AuthorID},
	}
	for _, f := range required {
		if f.src == nil {
			continue
		}
		if strings.TrimSpace(*f.src) == "" {
			fields[f.name] = "cannot be empty"
			continue
		}
		*f.dst = *f.src
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}

	if in.MetaDescription != nil {
		b.MetaDescription = *in.MetaDescription
	}
	if in.MetaKeywords != nil {
		b.MetaKeywords = in.MetaKeywords
	}
	if in.Tags != nil {
		b.Tags = in.Tags
	}
	if in.Status != nil {
		b.Status = *in.Status
	}
	if in.IsFeatured != nil {
		b.IsFeatured = *in.IsFeatured
	}
	if in.PublishDate != nil && *in.PublishDate != "" {
		t, err := parsePublishDate(in.PublishDate)
		if err != nil {
			return err
		}
		b.PublishDate = t
	}
	if in.Image == nil && in.ImageURL != nil && strings.TrimSpace(*in.ImageURL) != "" {
		b.ImageURL = strings.TrimSpace(*in.ImageURL)
	}
	return nil
}

// parsePublishDate accepts RFC 3339, datetime-local and plain dates. An
// absent value yields the zero time, which the store replaces with now.
func parsePublishDate(raw *string) (time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return time.Time{}, nil
	}
	for _, layout := range publishDateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(*raw)); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, domain.NewValidationError("publishDate", "must be an RFC 3339 timestamp or YYYY-MM-DD date")
}

// unwrapAction strips the unit-of-work step name from validation errors so
// their field map reaches the client unchanged.
func unwrapAction(err error) error {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	return err
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
