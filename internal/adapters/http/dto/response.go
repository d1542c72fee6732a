// Package dto provides HTTP request/response data transfer objects and
// RFC 9457 Problem Details error responses for the inbound HTTP adapter layer.
package dto

import (
	"time"

	"github.com/jsamuelsen11/blog-platform-api/internal/domain/author"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/blog"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/category"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/user"
	"github.com/jsamuelsen11/blog-platform-api/internal/ports"
)

// UserResponse is an account as returned to clients. The password hash is
// never included.
type UserResponse struct {
	ID        string `json:"_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
}

// ToUserResponse converts a domain User.
func ToUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: formatTime(u.CreatedAt),
	}
}

// AuthResponse answers signup and login.
type AuthResponse struct {
	Success bool         `json:"success"`
	User    UserResponse `json:"user"`
	Token   string       `json:"token"`
}

// ToAuthResponse converts a ports.AuthResult.
func ToAuthResponse(res *ports.AuthResult) AuthResponse {
	return AuthResponse{Success: true, User: ToUserResponse(res.User), Token: res.Token}
}

// CurrentUserResponse answers GET /api/users/me.
type CurrentUserResponse struct {
	Success bool         `json:"success"`
	User    UserResponse `json:"user"`
}

// RefResponse is a populated reference to a category or author.
type RefResponse struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

func toRef(r *blog.Ref) *RefResponse {
	if r == nil {
		return nil
	}
	return &RefResponse{ID: r.ID, Name: r.Name, Slug: r.Slug}
}

// BlogResponse is a single post.
type BlogResponse struct {
	ID              string       `json:"_id"`
	Title           string       `json:"title"`
	Slug            string       `json:"slug"`
	Content         string       `json:"content,omitempty"`
	Excerpt         string       `json:"excerpt"`
	ImageURL        string       `json:"imageUrl"`
	ImageAlt        string       `json:"imageAlt"`
	MetaDescription string       `json:"metaDescription,omitempty"`
	MetaKeywords    []string     `json:"metaKeywords"`
	Tags            []string     `json:"tags"`
	Status          string       `json:"status"`
	IsFeatured      bool         `json:"isFeatured"`
	PublishDate     string       `json:"publishDate"`
	CategoryID      string       `json:"categoryId"`
	AuthorID        string       `json:"authorId"`
	Category        *RefResponse `json:"category,omitempty"`
	Author          *RefResponse `json:"author,omitempty"`
	CreatedAt       string       `json:"createdAt"`
	UpdatedAt       string       `json:"updatedAt"`
}

// ToBlogResponse converts a domain Blog including its content.
func ToBlogResponse(b *blog.Blog) BlogResponse {
	return BlogResponse{
		ID:              b.ID,
		Title:           b.Title,
		Slug:            b.Slug,
		Content:         b.Content,
		Excerpt:         b.Excerpt,
		ImageURL:        b.ImageURL,
		ImageAlt:        b.ImageAlt,
		MetaDescription: b.MetaDescription,
		MetaKeywords:    orEmpty(b.MetaKeywords),
		Tags:            orEmpty(b.Tags),
		Status:          string(b.Status),
		IsFeatured:      b.IsFeatured,
		PublishDate:     formatTime(b.PublishDate),
		CategoryID:      b.CategoryID,
		AuthorID:        b.AuthorID,
		Category:        toRef(b.Category),
		Author:          toRef(b.Author),
		CreatedAt:       formatTime(b.CreatedAt),
		UpdatedAt:       formatTime(b.UpdatedAt),
	}
}

// BlogEnvelope wraps a single post.
type BlogEnvelope struct {
	Success bool         `json:"success"`
	Blog    BlogResponse `json:"blog"`
}

// ToBlogEnvelope converts a domain Blog.
func ToBlogEnvelope(b *blog.Blog) BlogEnvelope {
	return BlogEnvelope{Success: true, Blog: ToBlogResponse(b)}
}

// BlogListResponse is a page of posts. The pagination fields are present
// only when the caller asked for a page size.
type BlogListResponse struct {
	Success     bool           `json:"success"`
	Category    *RefResponse   `json:"category,omitempty"`
	Blogs       []BlogResponse `json:"blogs"`
	TotalCount  int64          `json:"totalCount"`
	CurrentPage *int           `json:"currentPage,omitempty"`
	TotalPages  *int           `json:"totalPages,omitempty"`
}

// ToBlogListResponse converts a blog.Page. Summaries drop the post body to
// keep listings small.
func ToBlogListResponse(p blog.Page, summaries bool) BlogListResponse {
	resp := BlogListResponse{
		Success:    true,
		Blogs:      toBlogResponses(p.Blogs, summaries),
		TotalCount: p.TotalCount,
	}
	if p.Paginated {
		current, total := p.CurrentPage, p.TotalPages
		resp.CurrentPage = &current
		resp.TotalPages = &total
	}
	return resp
}

// ToCategoryBlogsResponse converts the posts of one category.
func ToCategoryBlogsResponse(c *category.Category, p blog.Page) BlogListResponse {
	resp := ToBlogListResponse(p, false)
	resp.Category = &RefResponse{ID: c.ID, Name: c.Name, Slug: c.Slug}
	return resp
}

func toBlogResponses(blogs []blog.Blog, summaries bool) []BlogResponse {
	out := make([]BlogResponse, len(blogs))
	for i := range blogs {
		out[i] = ToBlogResponse(&blogs[i])
		if summaries {
			out[i].Content = ""
		}
	}
	return out
}

// LatestGroup is one category's newest posts.
type LatestGroup struct {
	Category CategoryResponse `json:"category"`
	Blogs    []BlogResponse   `json:"blogs"`
}

// LatestResponse answers GET /api/blogs/latest/{limit}.
type LatestResponse struct {
	Success    bool          `json:"success"`
	Categories []LatestGroup `json:"categories"`
}

// ToLatestResponse converts the grouped result of the blog service.
func ToLatestResponse(groups []ports.CategoryBlogs) LatestResponse {
	out := make([]LatestGroup, len(groups))
	for i := range groups {
		out[i] = LatestGroup{
			Category: ToCategoryResponse(&groups[i].Category),
			Blogs:    toBlogResponses(groups[i].Blogs, true),
		}
	}
	return LatestResponse{Success: true, Categories: out}
}

// CategoryResponse is a single category.
type CategoryResponse struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

// ToCategoryResponse converts a domain Category.
func ToCategoryResponse(c *category.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		CreatedAt:   formatTime(c.CreatedAt),
	}
}

// CategoryEnvelope wraps a single category.
type CategoryEnvelope struct {
	Success  bool             `json:"success"`
	Category CategoryResponse `json:"category"`
}

// CategoryListResponse lists categories.
type CategoryListResponse struct {
	Success    bool               `json:"success"`
	Categories []CategoryResponse `json:"categories"`
	Count      int                `json:"count"`
}

// ToCategoryListResponse converts a slice of domain categories.
func ToCategoryListResponse(cats []category.Category) CategoryListResponse {
	items := make([]CategoryResponse, len(cats))
	for i := range cats {
		items[i] = ToCategoryResponse(&cats[i])
	}
	return CategoryListResponse{Success: true, Categories: items, Count: len(items)}
}

// AuthorResponse is a single author.
type AuthorResponse struct {
	ID        string `json:"_id"`
	Name      string `json:"name"`
	Bio       string `json:"bio,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// ToAuthorResponse converts a domain Author.
func ToAuthorResponse(a *author.Author) AuthorResponse {
	return AuthorResponse{
		ID:        a.ID,
		Name:      a.Name,
		Bio:       a.Bio,
		Avatar:    a.AvatarURL,
		CreatedAt: formatTime(a.CreatedAt),
	}
}

// AuthorEnvelope wraps a single author and, on reads, their live posts.
// Blogs is a pointer so that an author without posts still encodes [].
type AuthorEnvelope struct {
	Success bool            `json:"success"`
	Author  AuthorResponse  `json:"author"`
	Blogs   *[]BlogResponse `json:"blogs,omitempty"`
}

// ToAuthorEnvelope converts an author and their posts. A nil blogs slice
// leaves the posts out entirely.
func ToAuthorEnvelope(a *author.Author, blogs []blog.Blog) AuthorEnvelope {
	env := AuthorEnvelope{Success: true, Author: ToAuthorResponse(a)}
	if blogs != nil {
		items := toBlogResponses(blogs, true)
		env.Blogs = &items
	}
	return env
}

// AuthorListResponse lists authors.
type AuthorListResponse struct {
	Success bool             `json:"success"`
	Authors []AuthorResponse `json:"authors"`
	Count   int              `json:"count"`
}

// ToAuthorListResponse converts a slice of domain authors.
func ToAuthorListResponse(authors []author.Author) AuthorListResponse {
	items := make([]AuthorResponse, len(authors))
	for i := range authors {
		items[i] = ToAuthorResponse(&authors[i])
	}
	return AuthorListResponse{Success: true, Authors: items, Count: len(items)}
}

// MessageResponse is a bare acknowledgement.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// orEmpty turns nil into an empty slice so lists encode as [] and a list
// that was sent empty clears the stored one.
func orEmpty(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
