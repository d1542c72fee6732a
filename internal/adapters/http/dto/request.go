package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/jsamuelsen11/blog-platform-api/internal/domain"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/author"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/blog"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/category"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/user"
	"github.com/jsamuelsen11/blog-platform-api/internal/ports"
)

const msgRequired = "is required"

// SignupRequest is the JSON body of POST /api/auth/signup.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks that required fields are present. Format rules are
// enforced by the account service.
func (r *SignupRequest) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(r.Name) == "" {
		fields["name"] = msgRequired
	}
	if strings.TrimSpace(r.Email) == "" {
		fields["email"] = msgRequired
	}
	if r.Password == "" {
		fields["password"] = msgRequired
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// ToRegistration converts the request to the domain signup input.
func (r *SignupRequest) ToRegistration() user.Registration {
	return user.Registration{Name: r.Name, Email: r.Email, Password: r.Password}
}

// LoginRequest is the JSON body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks that both credentials are present.
func (r *LoginRequest) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(r.Email) == "" {
		fields["email"] = msgRequired
	}
	if r.Password == "" {
		fields["password"] = msgRequired
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// CreateCategoryRequest is the JSON body of POST /api/categories.
type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
}

// Validate checks that the name is present.
func (r *CreateCategoryRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return domain.NewValidationError("name", msgRequired)
	}
	return nil
}

// ToCategory converts the request to a domain Category.
func (r *CreateCategoryRequest) ToCategory() *category.Category {
	return &category.Category{Name: r.Name, Slug: r.Slug, Description: r.Description}
}

// CreateAuthorRequest is the JSON body of POST /api/authors.
type CreateAuthorRequest struct {
	Name   string `json:"name"`
	Bio    string `json:"bio,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// Validate checks that the name is present.
func (r *CreateAuthorRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return domain.NewValidationError("name", msgRequired)
	}
	return nil
}

// ToAuthor converts the request to a domain Author.
func (r *CreateAuthorRequest) ToAuthor() *author.Author {
	return &author.Author{Name: r.Name, Bio: r.Bio, AvatarURL: r.Avatar}
}

// StringList accepts either a JSON array of strings or a single
// comma-separated string. Blank items are dropped.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*l = StringList(orEmpty(blog.SplitList(raw)))
		return nil
	}

	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return errors.New("must be a string or an array of strings")
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	*l = out
	return nil
}

// FlexBool accepts a JSON boolean or the strings "true" and "false", which
// is what HTML forms submit.
type FlexBool bool

// UnmarshalJSON implements json.Unmarshaler.
func (b *FlexBool) UnmarshalJSON(data []byte) error {
	switch strings.Trim(string(bytes.TrimSpace(data)), `"`) {
	case "true":
		*b = true
	case "false", "":
		*b = false
	default:
		return errors.New("must be true or false")
	}
	return nil
}

// BlogRequest is the write body for POST and PUT /api/blogs. It arrives
// either as JSON or as multipart form fields next to an "image" file.
// Nil fields were not sent.
type BlogRequest struct {
	Title           *string     `json:"title,omitempty"`
	Content         *string     `json:"content,omitempty"`
	Excerpt         *string     `json:"excerpt,omitempty"`
	ImageAlt        *string     `json:"imageAlt,omitempty"`
	ImageURL        *string     `json:"imageUrl,omitempty"`
	MetaDescription *string     `json:"metaDescription,omitempty"`
	MetaKeywords    *StringList `json:"metaKeywords,omitempty"`
	Tags            *StringList `json:"tags,omitempty"`
	Status          *string     `json:"status,omitempty"`
	IsFeatured      *FlexBool   `json:"isFeatured,omitempty"`
	PublishDate     *string     `json:"publishDate,omitempty"`
	CategoryID      *string     `json:"categoryId,omitempty"`
	AuthorID        *string     `json:"authorId,omitempty"`
	Slug            *string     `json:"slug,omitempty"`
}

// Validate checks the values that were sent. Whether a field is required
// depends on create versus update and is decided by the blog service.
func (r *BlogRequest) Validate() error {
	if r.Status != nil && *r.Status != "" && !blog.Status(*r.Status).IsValid() {
		return domain.NewValidationError("status", "must be one of: draft, published")
	}
	return nil
}

// FromForm fills the request from multipart form values. Keys that are
// absent stay nil so that updates leave those fields alone.
func (r *BlogRequest) FromForm(values map[string][]string) {
	str := func(key string) *string {
		v, ok := values[key]
		if !ok || len(v) == 0 {
			return nil
		}
		s := v[0]
		return &s
	}
	list := func(key string) *StringList {
		v, ok := values[key]
		if !ok {
			return nil
		}
		var items []string
		for _, raw := range v {
			items = append(items, blog.SplitList(raw)...)
		}
		l := StringList(orEmpty(items))
		return &l
	}

	r.Title = str("title")
	r.Content = str("content")
	r.Excerpt = str("excerpt")
	r.ImageAlt = str("imageAlt")
	r.ImageURL = str("imageUrl")
	r.MetaDescription = str("metaDescription")
	r.MetaKeywords = list("metaKeywords")
	r.Tags = list("tags")
	r.Status = str("status")
	r.PublishDate = str("publishDate")
	r.CategoryID = str("categoryId")
	r.AuthorID = str("authorId")
	r.Slug = str("slug")

	if s := str("isFeatured"); s != nil {
		b := FlexBool(*s == "true")
		r.IsFeatured = &b
	}
}

// ToInput converts the request to the service write model. image may be nil.
func (r *BlogRequest) ToInput(image *ports.ImageUpload) ports.BlogInput {
	in := ports.BlogInput{
		Title:           r.Title,
		Content:         r.Content,
		Excerpt:         r.Excerpt,
		ImageAlt:        r.ImageAlt,
		ImageURL:        r.ImageURL,
		MetaDescription: r.MetaDescription,
		PublishDate:     r.PublishDate,
		CategoryID:      r.CategoryID,
		AuthorID:        r.AuthorID,
		Image:           image,
	}
	if r.MetaKeywords != nil {
		in.MetaKeywords = orEmpty(*r.MetaKeywords)
	}
	if r.Tags != nil {
		in.Tags = orEmpty(*r.Tags)
	}
	if r.Status != nil && *r.Status != "" {
		st := blog.Status(*r.Status)
		in.Status = &st
	}
	if r.IsFeatured != nil {
		f := bool(*r.IsFeatured)
		in.IsFeatured = &f
	}
	// An empty slug keeps the stored one.
	if r.Slug != nil && strings.TrimSpace(*r.Slug) != "" {
		in.Slug = r.Slug
	}
	return in
}
