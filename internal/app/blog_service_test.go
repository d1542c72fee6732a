package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen11/blog-platform-api/internal/domain"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/author"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/blog"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/category"
	"github.com/jsamuelsen11/blog-platform-api/internal/ports"
	"github.com/jsamuelsen11/blog-platform-api/mocks"
)

var (
	testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	upload  = ports.UploadOptions{Folder: "blog_images", Transformation: "q_auto:good"}
)

type blogFixture struct {
	blogs      *mocks.MockBlogRepository
	categories *mocks.MockCategoryRepository
	authors    *mocks.MockAuthorRepository
	media      *mocks.MockMediaClient
	svc        *BlogService
}

func newBlogFixture(t *testing.T) blogFixture {
	f := blogFixture{
		blogs:      mocks.NewMockBlogRepository(t),
		categories: mocks.NewMockCategoryRepository(t),
		authors:    mocks.NewMockAuthorRepository(t),
		media:      mocks.NewMockMediaClient(t),
	}
	f.svc = NewBlogService(f.blogs, f.categories, f.authors, f.media, upload, discardLogger())
	f.svc.now = func() time.Time { return testNow }
	return f
}

func (f blogFixture) refsExist() {
	f.categories.On("FindByID", mock.Anything, "c1").Return(&category.Category{ID: "c1", Name: "Go"}, nil)
	f.authors.On("FindByID", mock.Anything, "a1").Return(&author.Author{ID: "a1", Name: "Ada"}, nil)
}

func str(s string) *string { return &s }

func validInput() ports.BlogInput {
	return ports.BlogInput{
		Title:      str("Hello World"),
		Content:    str("body"),
		Excerpt:    str("short"),
		ImageAlt:   str("alt"),
		CategoryID: str("c1"),
		AuthorID:   str("a1"),
	}
}

func TestBlogService_Create_WithImageURL(t *testing.T) {
	t.Parallel()
	f := newBlogFixture(t)
	f.refsExist()

	in := validInput()
	in.ImageURL = str("https://img.example.com/a.png")
	in.Tags = []string{"go"}

	f.blogs.On("SlugExists", mock.Anything, "hello-world", "").Return(false, nil)
	f.blogs.On("Create", mock.Anything, mock.MatchedBy(func(b *blog.Blog) bool {
		return b.Slug == "hello-world" &&
			b.Status == blog.StatusPublished &&
			b.ImageURL == "https://img.example.com/a.png" &&
			b.CreatedBy == "u1"
	})).Return(&blog.Blog{ID: "b1", Slug: "hello-world"}, nil)

	got, err := f.svc.Create(context.Background(), "u1", in)
	require.NoError(t, err)
	assert.Equal(t, "b1", got.ID)
}

func TestBlogService_Create_UploadsImage(t *testing.T) {
	t.Parallel()
	f := newBlogFixture(t)
	f.refsExist()

	in := validInput()
	in.Image = &ports.ImageUpload{Data: []byte("png"), Filename: "a.png"}

	f.blogs.On("SlugExists", mock.Anything, "hello-world", "").Return(false, nil)
	f.media.On("Upload", mock.Anything, []byte("png"), upload).
		Return(&ports.UploadResult{SecureURL: "https://res.cloudinary.com/x.png", PublicID: "blog_images/x"}, nil)
	f.blogs.On("Create", mock.Anything, mock.MatchedBy(func(b *blog.Blog) bool {
		return b.ImageURL == "https://res.cloudinary.com/x.png"
	})).Return(&blog.Blog{ID: "b1"}, nil)

	_, err := f.svc.Create(context.Background(), "u1", in)
	require.NoError(t, err)
}

func TestBlogService_Create_InsertFailureRemovesUpload(t *testing.T) {
	t.Parallel()
	f := newBlogFixture(t)
	f.refsExist()

	in := validInput()
	in.Image = &ports.ImageUpload{Data: []byte("png"), Filename: "a.png"}
	unavailable := &domain.ConnectivityError{Attempts: 3, Err: errors.New("no reachable servers")}

	f.blogs.On("SlugExists", mock.Anything, "hello-world", "").Return(false, nil)
	f.media.On("Upload", mock.Anything, mock.Anything, mock.Anything).
		Return(&ports.UploadResult{SecureURL: "https://res.cloudinary.com/x.png", PublicID: "blog_images/x"}, nil)
	f.blogs.On("Create", mock.Anything, mock.Anything).Return(nil, unavailable)
	f.media.On("Delete", mock.Anything, "blog_images/x").Return(nil).Once()

	_, err := f.svc.Create(context.Background(), "u1", in)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestBlogService_Create_RequiresImage(t *testing.T) {
	t.Parallel()
	f := newBlogFixture(t)

	_, err := f.svc.Create(context.Background(), "u1", validInput())
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "image")
}

func TestBlogService_Create_MissingFields(t *testing.T) {
	t.Parallel()
	f := newBlogFixture(t)

	_, err := f.svc.Create(context.Background(), "u1", ports.BlogInput{})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	for _, field := range []string{"title", "content", "excerpt", "imageAlt", "categoryId", "authorId"} {
		assert.Contains(t, verr.Fields, field)
	}
}

func TestBlogService_Create_UnknownCategory(t *testing.T) {
	t.Parallel()
	f := newBlogFixture(t)

	in := validInput()
	in.ImageURL = str("https://img.example.com/a.png")
	f.categories.On("FindByID", mock.Anything, "c1").Return(nil, domain.ErrNotFound)
	f.authors.On("FindByID", mock.Anything, "a1").Return(&author.Author{ID: "a1"}, nil)

	_, err := f.svc.Create(context.Background(), "u1", in)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "categoryId")
	assert.NotContains(t, verr.Fields, "authorId")
}

func TestBlogService_Create_GeneratedSlugCollision(t *testing.T) {
	t.Parallel()
	f := newBlogFixture(t)
	f.refsExist()

	in := validInput()
	in.ImageURL = str("https://img.example.com/a.png")

	f.blogs.On("SlugExists", mock.Anything, "hello-world", "").Return(true, nil)
	f.blogs.On("SlugExists", mock.Anything, "hello-world-2", "").Return(false, nil)
	f.blogs.On("Create", mock.Anything, mock.MatchedBy(func(b *blog.Blog) bool {
		return b.Slug == "hello-world-2"
	})).Return(&blog.Blog{ID: "b1", Slug: "hello-world-2"}, nil)

	got, err := f.svc.Create(context.Background(), "u1", in)
	require.NoError(t, err)
	assert.Equal(t, "hello-world-2", got.Slug)
}

func TestBlogService_Create_CustomSlugTaken(t *testing.T) {
	t.Parallel()
	f := newBlogFixture(t)
	f.refsExist()

	in := validInput()
	in.ImageURL = str("https://img.example.com/a.png")
	in.Slug = str("My Post")

	f.blogs.On("SlugExists", mock.Anything, "my-post", "").Return(true, nil)

	_, err := f.svc.Create(context.Background(), "u1", in)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBlogService_Create_BadPublishDate(t *testing.T) {
	t.Parallel()
	f := newBlogFixture(t)

	in := validInput()
	in.PublishDate = str("next tuesday")

	_, err := f.svc.Create(context.Background(), "u1", in)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func existingPost() *blog.Blog {
	return &blog.Blog{
		ID: "b1", Title: "Old", Slug: "old", Content: "c", Excerpt: "e", ImageAlt: "alt",
		ImageURL: "https://res.cloudinary.com/demo/image/upload/v1/blog_images/old.png",
		Status:   blog.StatusDraft, CategoryID: "c1", AuthorID: "a1",
	}
}

func TestBlogService_Update_ReplacesImage(t *testing.T) {
	t.Parallel()
	f := newBlogFixture(t)

	old := existingPost()
	f.blogs.On("FindByID", mock.Anything, "b1").Return(old, nil)
	f.media.On("Upload", mock.Anything, []byte("new"), upload).
		Return(&ports.UploadResult{SecureURL: "https://res.cloudinary.com/new.png", PublicID: "blog_images/new"}, nil)
	f.blogs.On("Update", mock.Anything, mock.MatchedBy(func(b *blog.Blog) bool {
		return b.ImageURL == "https://res.cloudinary.com/new.png" && b.Title == "New"
	})).Return(&blog.Blog{ID: "b1", ImageURL: "https://res.cloudinary.com/new.png"}, nil)
	f.media.On("PublicIDFromURL", "https://res.cloudinary.com/demo/image/upload/v1/blog_images/old.png").Return("blog_images/old")
	f.media.On("Delete", mock.Anything, "blog_images/old").Return(nil)

	_, err := f.svc.Update(context.Background(), "b1", ports.BlogInput{
		Title: str("New"),
		Image: &ports.ImageUpload{Data: []byte("new")},
	})
	require.NoError(t, err)
}

func TestBlogService_Update_RejectsClearingRequiredField(t *testing.T) {
	t.Parallel()
	f := newBlogFixture(t)

	f.blogs.On("FindByID", mock.Anything, "b1").Return(existingPost(), nil)

	_, err := f.svc.Update(context.Background(), "b1", ports.BlogInput{Title: str("  ")})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "cannot be empty", verr.Fields["title"])
}

func TestBlogService_Update_SlugChangeChecksOthers(t *testing.T) {
	t.Parallel()
	f := newBlogFixture(t)

	f.blogs.On("FindByID", mock.Anything, "b1").Return(existingPost(), nil)
	f.blogs.On("SlugExists", mock.Anything, "fresh", "b1").Return(false, nil)
	f.blogs.On("Update", mock.Anything, mock.MatchedBy(func(b *blog.Blog) bool { return b.Slug == "fresh" })).
		Return(&blog.Blog{ID: "b1", Slug: "fresh", ImageURL: existingPost().ImageURL}, nil)

	got, err := f.svc.Update(context.Background(), "b1", ports.BlogInput{Slug: str("Fresh")})
	require.NoError(t, err)
	assert.Equal(t, "fresh", got.Slug)
}

func TestBlogService_Update_NotFound(t *testing.T) {
	t.Parallel()
	f := newBlogFixture(t)

	f.blogs.On("FindByID", mock.Anything, "nope").Return(nil, domain.ErrNotFound)

	_, err := f.svc.Update(context.Background(), "nope", ports.BlogInput{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBlogService_Delete_ImageFailureIsNotFatal(t *testing.T) {
	t.Parallel()
	f := newBlogFixture(t)

	post := existingPost()
	f.blogs.On("FindByID", mock.Anything, "b1").Return(post, nil)
	f.blogs.On("Delete", mock.Anything, "b1").Return(nil)
	f.media.On("PublicIDFromURL", post.ImageURL).Return("blog_images/old")
	f.media.On("Delete", mock.Anything, "blog_images/old").Return(domain.ErrUnavailable)

	assert.NoError(t, f.svc.Delete(context.Background(), "b1"))
}

func TestBlogService_Delete_ForeignImageSkipped(t *testing.T) {
	t.Parallel()
	f := newBlogFixture(t)

	post := existingPost()
	post.ImageURL = "https://img.example.com/a.png"
	f.blogs.On("FindByID", mock.Anything, "b1").Return(post, nil)
	f.blogs.On("Delete", mock.Anything, "b1").Return(nil)
	f.media.On("PublicIDFromURL", post.ImageURL).Return("")

	require.NoError(t, f.svc.Delete(context.Background(), "b1"))
	f.media.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestBlogService_List_FillsNowAndPages(t *testing.T) {
	t.Parallel()
	f := newBlogFixture(t)

	f.blogs.On("List", mock.Anything, mock.MatchedBy(func(q blog.Query) bool {
		return q.Now.Equal(testNow) && q.Limit == 2 && q.Page == 2
	})).Return([]blog.Blog{{ID: "b3"}}, int64(5), nil)

	page, err := f.svc.List(context.Background(), blog.Query{View: blog.ViewPublished, Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Len(t, page.Blogs, 1)
}

func TestBlogService_ListByCategorySlug(t *testing.T) {
	t.Parallel()
	f := newBlogFixture(t)

	f.categories.On("FindBySlug", mock.Anything, "go").Return(&category.Category{ID: "c1", Slug: "go"}, nil)
	f.blogs.On("List", mock.Anything, mock.MatchedBy(func(q blog.Query) bool {
		return q.View == blog.ViewCategory && q.CategoryID == "c1"
	})).Return([]blog.Blog{{ID: "b1"}}, int64(1), nil)

	c, page, err := f.svc.ListByCategorySlug(context.Background(), "go", blog.Query{})
	require.NoError(t, err)
	assert.Equal(t, "c1", c.ID)
	assert.Len(t, page.Blogs, 1)
}

func TestBlogService_ListByCategorySlug_UnknownCategory(t *testing.T) {
	t.Parallel()
	f := newBlogFixture(t)

	f.categories.On("FindBySlug", mock.Anything, "nope").Return(nil, domain.ErrNotFound)

	_, _, err := f.svc.ListByCategorySlug(context.Background(), "nope", blog.Query{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBlogService_Latest(t *testing.T) {
	t.Parallel()
	f := newBlogFixture(t)

	cats := []category.Category{{ID: "c1", Slug: "go"}, {ID: "c2", Slug: "rust"}, {ID: "c3", Slug: "empty"}}
	f.categories.On("List", mock.Anything).Return(cats, nil)
	for _, c := range cats {
		var posts []blog.Blog
		if c.ID != "c3" {
			posts = []blog.Blog{{ID: c.ID + "-post"}}
		}
		f.blogs.On("List", mock.Anything, blog.Query{
			View: blog.ViewPublished, CategoryID: c.ID, Limit: 3, Now: testNow,
		}).Return(posts, int64(len(posts)), nil)
	}

	groups, err := f.svc.Latest(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, "go", groups[0].Category.Slug)
	assert.Equal(t, "c1-post", groups[0].Blogs[0].ID)
	assert.Empty(t, groups[2].Blogs)
}

func TestBlogService_Latest_DefaultLimit(t *testing.T) {
	t.Parallel()
	f := newBlogFixture(t)

	f.categories.On("List", mock.Anything).Return([]category.Category{{ID: "c1"}}, nil)
	f.blogs.On("List", mock.Anything, mock.MatchedBy(func(q blog.Query) bool {
		return q.Limit == DefaultLatestPerCategory
	})).Return(nil, int64(0), nil)

	_, err := f.svc.Latest(context.Background(), 0)
	require.NoError(t, err)
}

func TestBlogService_Latest_PropagatesStoreFailure(t *testing.T) {
	t.Parallel()
	f := newBlogFixture(t)

	f.categories.On("List", mock.Anything).Return([]category.Category{{ID: "c1", Slug: "go"}}, nil)
	f.blogs.On("List", mock.Anything, mock.Anything).Return(nil, int64(0), &domain.OperationTimeoutError{Operation: "ListBlogs", Err: context.DeadlineExceeded})

	_, err := f.svc.Latest(context.Background(), 5)
	assert.ErrorIs(t, err, domain.ErrTimeout)
}
