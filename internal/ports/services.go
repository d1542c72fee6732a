package ports

import (
	"context"

	"github.com/jsamuelsen11/blog-platform-api/internal/domain/author"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/blog"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/category"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/user"
)

// AuthResult is returned by signup and login.
type AuthResult struct {
	User  *user.User
	Token string
}

// AuthService defines the service port for account operations.
type AuthService interface {
	// Signup creates an account. The first account ever created becomes an
	// admin. Returns domain.ErrConflict when the email is taken.
	Signup(ctx context.Context, reg user.Registration) (*AuthResult, error)

	// Login checks credentials. Returns domain.ErrUnauthorized on mismatch.
	Login(ctx context.Context, email, password string) (*AuthResult, error)

	// Authenticate resolves a bearer token to its account.
	Authenticate(ctx context.Context, token string) (*user.User, error)
}

// ImageUpload carries an uploaded image file.
type ImageUpload struct {
	Data        []byte
	Filename    string
	ContentType string
}

// BlogInput is the write model for create and update. Nil pointer fields
// leave the stored value unchanged on update.
type BlogInput struct {
	Title           *string
	Content         *string
	Excerpt         *string
	ImageAlt        *string
	ImageURL        *string
	MetaDescription *string
	MetaKeywords    []string
	Tags            []string
	Status          *blog.Status
	IsFeatured      *bool
	PublishDate     *string
	CategoryID      *string
	AuthorID        *string
	Slug            *string
	Image           *ImageUpload
}

// CategoryBlogs groups the newest live posts of one category.
type CategoryBlogs struct {
	Category category.Category
	Blogs    []blog.Blog
}

// BlogService defines the service port for post operations.
type BlogService interface {
	List(ctx context.Context, q blog.Query) (blog.Page, error)
	ListByCategorySlug(ctx context.Context, slug string, q blog.Query) (*category.Category, blog.Page, error)
	// Latest returns, for every category, its newest live posts.
	Latest(ctx context.Context, perCategory int) ([]CategoryBlogs, error)
	Get(ctx context.Context, id string) (*blog.Blog, error)
	GetBySlug(ctx context.Context, slug string) (*blog.Blog, error)

	// Create uploads the image (if any) and stores the post. If storing
	// fails the uploaded image is deleted again.
	Create(ctx context.Context, createdBy string, in BlogInput) (*blog.Blog, error)

	// Update applies in to the stored post, replacing its image when a new
	// one is uploaded.
	Update(ctx context.Context, id string, in BlogInput) (*blog.Blog, error)

	// Delete removes the post and its hosted image.
	Delete(ctx context.Context, id string) error
}

// CategoryService defines the service port for categories.
type CategoryService interface {
	List(ctx context.Context) ([]category.Category, error)
	GetBySlug(ctx context.Context, slug string) (*category.Category, error)
	Create(ctx context.Context, c *category.Category) (*category.Category, error)
}

// AuthorService defines the service port for authors.
type AuthorService interface {
	List(ctx context.Context) ([]author.Author, error)
	// Get returns the author and their live published posts.
	Get(ctx context.Context, id string) (*author.Author, []blog.Blog, error)
	Create(ctx context.Context, a *author.Author) (*author.Author, error)
}
