package mongostore

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/jsamuelsen11/blog-platform-api/internal/domain"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/blog"
	"github.com/jsamuelsen11/blog-platform-api/internal/platform/fanout"
	"github.com/jsamuelsen11/blog-platform-api/internal/ports"
)

var _ ports.BlogRepository = (*BlogRepository)(nil)

// minTextSearchLen is the shortest search term sent to the text index;
// shorter terms fall back to a case-insensitive regex.
const minTextSearchLen = 3

type blogDoc struct {
	ID              bson.ObjectID `bson:"_id,omitempty"`
	Title           string        `bson:"title"`
	Slug            string        `bson:"slug"`
	Content         string        `bson:"content,omitempty"`
	Excerpt         string        `bson:"excerpt"`
	ImageURL        string        `bson:"imageUrl"`
	ImageAlt        string        `bson:"imageAlt"`
	MetaDescription string        `bson:"metaDescription,omitempty"`
	MetaKeywords    []string      `bson:"metaKeywords,omitempty"`
	Tags            []string      `bson:"tags"`
	Status          string        `bson:"status"`
	IsFeatured      bool          `bson:"isFeatured"`
	PublishDate     time.Time     `bson:"publishDate"`
	CategoryID      bson.ObjectID `bson:"categoryId"`
	AuthorID        bson.ObjectID `bson:"authorId"`
	CreatedBy       bson.ObjectID `bson:"createdBy,omitempty"`
	CreatedAt       time.Time     `bson:"createdAt"`
	UpdatedAt       time.Time     `bson:"updatedAt"`
}

func (d *blogDoc) toDomain() blog.Blog {
	return blog.Blog{
		ID:              d.ID.Hex(),
		Title:           d.Title,
		Slug:            d.Slug,
		Content:         d.Content,
		Excerpt:         d.Excerpt,
		ImageURL:        d.ImageURL,
		ImageAlt:        d.ImageAlt,
		MetaDescription: d.MetaDescription,
		MetaKeywords:    d.MetaKeywords,
		Tags:            d.Tags,
		Status:          blog.Status(d.Status),
		IsFeatured:      d.IsFeatured,
		PublishDate:     d.PublishDate,
		CategoryID:      hexOrEmpty(d.CategoryID),
		AuthorID:        hexOrEmpty(d.AuthorID),
		CreatedBy:       hexOrEmpty(d.CreatedBy),
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func blogToDoc(b *blog.Blog) (blogDoc, error) {
	categoryID, err := refID("categoryId", b.CategoryID)
	if err != nil {
		return blogDoc{}, err
	}
	authorID, err := refID("authorId", b.AuthorID)
	if err != nil {
		return blogDoc{}, err
	}
	createdBy, err := optionalID("createdBy", b.CreatedBy)
	if err != nil {
		return blogDoc{}, err
	}

	tags := b.Tags
	if tags == nil {
		tags = []string{}
	}

	return blogDoc{
		Title:           b.Title,
		Slug:            b.Slug,
		Content:         b.Content,
		Excerpt:         b.Excerpt,
		ImageURL:        b.ImageURL,
		ImageAlt:        b.ImageAlt,
		MetaDescription: b.MetaDescription,
		MetaKeywords:    b.MetaKeywords,
		Tags:            tags,
		Status:          string(b.Status),
		IsFeatured:      b.IsFeatured,
		PublishDate:     b.PublishDate.UTC(),
		CategoryID:      categoryID,
		AuthorID:        authorID,
		CreatedBy:       createdBy,
		CreatedAt:       b.CreatedAt.UTC(),
		UpdatedAt:       b.UpdatedAt.UTC(),
	}, nil
}

// BlogRepository stores posts in the blogs collection and resolves their
// category and author references on read.
type BlogRepository struct {
	store *Store
}

// NewBlogRepository creates a BlogRepository.
func NewBlogRepository(store *Store) *BlogRepository {
	return &BlogRepository{store: store}
}

func (r *BlogRepository) List(ctx context.Context, q blog.Query) ([]blog.Blog, int64, error) {
	filter, err := blogFilter(q)
	if err != nil {
		return nil, 0, err
	}

	coll, err := r.store.collection(ctx, blogsCollection)
	if err != nil {
		return nil, 0, err
	}
	ctx, cancel := r.store.op(ctx)
	defer cancel()

	findOpts := options.Find().
		SetSort(blogSort(q.View)).
		SetSkip(q.Skip()).
		SetLimit(q.EffectiveLimit())
	if q.View == blog.ViewAll {
		findOpts.SetProjection(bson.D{{Key: "content", Value: 0}})
	}

	cur, err := coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, translate("ListBlogs", err)
	}
	var docs []blogDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, translate("ListBlogs", err)
	}

	var total int64
	if len(filter) == 0 {
		total, err = coll.EstimatedDocumentCount(ctx)
	} else {
		total, err = coll.CountDocuments(ctx, filter)
	}
	if err != nil {
		return nil, 0, translate("CountBlogs", err)
	}

	blogs := make([]blog.Blog, len(docs))
	for i := range docs {
		blogs[i] = docs[i].toDomain()
	}
	if err := r.populate(ctx, coll.Database(), blogs); err != nil {
		return nil, 0, err
	}
	return blogs, total, nil
}

func (r *BlogRepository) FindByID(ctx context.Context, id string) (*blog.Blog, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, "FindBlogByID", bson.D{{Key: "_id", Value: oid}})
}

func (r *BlogRepository) FindBySlug(ctx context.Context, slug string) (*blog.Blog, error) {
	return r.findOne(ctx, "FindBlogBySlug", bson.D{{Key: "slug", Value: slug}})
}

func (r *BlogRepository) findOne(ctx context.Context, op string, filter bson.D) (*blog.Blog, error) {
	coll, err := r.store.collection(ctx, blogsCollection)
	if err != nil {
		return nil, err
	}
	ctx, cancel := r.store.op(ctx)
	defer cancel()

	var doc blogDoc
	if err := coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate(op, err)
	}

	blogs := []blog.Blog{doc.toDomain()}
	if err := r.populate(ctx, coll.Database(), blogs); err != nil {
		return nil, err
	}
	return &blogs[0], nil
}

func (r *BlogRepository) SlugExists(ctx context.Context, slug, exceptID string) (bool, error) {
	filter := bson.D{{Key: "slug", Value: slug}}
	if exceptID != "" {
		oid, err := objectID(exceptID)
		if err != nil {
			return false, err
		}
		filter = append(filter, bson.E{Key: "_id", Value: bson.D{{Key: "$ne", Value: oid}}})
	}

	coll, err := r.store.collection(ctx, blogsCollection)
	if err != nil {
		return false, err
	}
	ctx, cancel := r.store.op(ctx)
	defer cancel()

	n, err := coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, translate("BlogSlugExists", err)
	}
	return n > 0, nil
}

func (r *BlogRepository) Create(ctx context.Context, b *blog.Blog) (*blog.Blog, error) {
	doc, err := blogToDoc(b)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	doc.ID = bson.NewObjectID()
	doc.CreatedAt, doc.UpdatedAt = now, now
	if doc.PublishDate.IsZero() {
		doc.PublishDate = now
	}

	coll, err := r.store.collection(ctx, blogsCollection)
	if err != nil {
		return nil, err
	}
	ctx, cancel := r.store.op(ctx)
	defer cancel()

	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return nil, translate("CreateBlog", err)
	}

	out := []blog.Blog{doc.toDomain()}
	if err := r.populate(ctx, coll.Database(), out); err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (r *BlogRepository) Update(ctx context.Context, b *blog.Blog) (*blog.Blog, error) {
	oid, err := objectID(b.ID)
	if err != nil {
		return nil, err
	}
	doc, err := blogToDoc(b)
	if err != nil {
		return nil, err
	}
	doc.ID = oid
	doc.UpdatedAt = time.Now().UTC()

	coll, err := r.store.collection(ctx, blogsCollection)
	if err != nil {
		return nil, err
	}
	ctx, cancel := r.store.op(ctx)
	defer cancel()

	res, err := coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: oid}}, doc)
	if err != nil {
		return nil, translate("UpdateBlog", err)
	}
	if res.MatchedCount == 0 {
		return nil, translate("UpdateBlog", domain.ErrNotFound)
	}

	out := []blog.Blog{doc.toDomain()}
	if err := r.populate(ctx, coll.Database(), out); err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (r *BlogRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	coll, err := r.store.collection(ctx, blogsCollection)
	if err != nil {
		return err
	}
	ctx, cancel := r.store.op(ctx)
	defer cancel()

	res, err := coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return translate("DeleteBlog", err)
	}
	if res.DeletedCount == 0 {
		return translate("DeleteBlog", domain.ErrNotFound)
	}
	return nil
}

// populate attaches category and author references. The two lookups run
// concurrently; references to deleted documents are left nil.
func (r *BlogRepository) populate(ctx context.Context, db *mongo.Database, blogs []blog.Blog) error {
	if len(blogs) == 0 {
		return nil
	}

	lookups := []refLookup{
		{collection: categoriesCollection, ids: collectIDs(blogs, func(b *blog.Blog) string { return b.CategoryID })},
		{collection: authorsCollection, ids: collectIDs(blogs, func(b *blog.Blog) string { return b.AuthorID })},
	}

	results := fanout.Run(ctx, len(lookups), lookups, func(ctx context.Context, l refLookup) (map[string]blog.Ref, error) {
		return l.fetch(ctx, db)
	})
	refs, err := fanout.Values(results)
	if err != nil {
		return translate("PopulateBlogs", err)
	}

	categories, authors := refs[0], refs[1]
	for i := range blogs {
		if ref, ok := categories[blogs[i].CategoryID]; ok {
			blogs[i].Category = &ref
		}
		if ref, ok := authors[blogs[i].AuthorID]; ok {
			blogs[i].Author = &ref
		}
	}
	return nil
}

type refLookup struct {
	collection string
	ids        []bson.ObjectID
}

func (l refLookup) fetch(ctx context.Context, db *mongo.Database) (map[string]blog.Ref, error) {
	out := make(map[string]blog.Ref, len(l.ids))
	if len(l.ids) == 0 {
		return out, nil
	}

	cur, err := db.Collection(l.collection).Find(ctx,
		bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: l.ids}}}},
		options.Find().SetProjection(bson.D{{Key: "name", Value: 1}, {Key: "slug", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}

	var docs []struct {
		ID   bson.ObjectID `bson:"_id"`
		Name string        `bson:"name"`
		Slug string        `bson:"slug"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	for _, d := range docs {
		out[d.ID.Hex()] = blog.Ref{ID: d.ID.Hex(), Name: d.Name, Slug: d.Slug}
	}
	return out, nil
}

func collectIDs(blogs []blog.Blog, field func(*blog.Blog) string) []bson.ObjectID {
	seen := make(map[string]bool, len(blogs))
	ids := make([]bson.ObjectID, 0, len(blogs))
	for i := range blogs {
		id := field(&blogs[i])
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if oid, err := bson.ObjectIDFromHex(id); err == nil {
			ids = append(ids, oid)
		}
	}
	return ids
}

// blogFilter builds the store filter for a listing query.
func blogFilter(q blog.Query) (bson.D, error) {
	filter := bson.D{}
	var and bson.A

	switch q.View {
	case blog.ViewAll:
		if q.Status != "" {
			filter = append(filter, bson.E{Key: "status", Value: string(q.Status)})
		}
		if q.Search != "" {
			if len(q.Search) >= minTextSearchLen {
				filter = append(filter, bson.E{Key: "$text", Value: bson.D{{Key: "$search", Value: q.Search}}})
			} else {
				filter = append(filter, bson.E{Key: "$or", Value: searchClauses(q.Search)})
			}
		}

	case blog.ViewPublished:
		filter = append(filter, bson.E{Key: "status", Value: string(blog.StatusPublished)})
		and = append(and, liveClause(q.Now))
		if q.Search != "" {
			and = append(and, bson.D{{Key: "$or", Value: searchClauses(q.Search)}})
		}

	case blog.ViewFeatured, blog.ViewCategory:
		if q.View == blog.ViewFeatured {
			filter = append(filter, bson.E{Key: "isFeatured", Value: true})
		}
		status := q.Status
		if status == "" {
			status = blog.StatusPublished
		}
		filter = append(filter, bson.E{Key: "status", Value: string(status)})
		if status == blog.StatusPublished {
			and = append(and, liveClause(q.Now))
		}
		if q.Search != "" {
			and = append(and, bson.D{{Key: "$or", Value: searchClauses(q.Search)}})
		}

	case blog.ViewScheduled:
		filter = append(filter,
			bson.E{Key: "status", Value: string(blog.StatusPublished)},
			bson.E{Key: "publishDate", Value: bson.D{{Key: "$gt", Value: q.Now}}},
		)
	}

	if q.CategoryID != "" {
		oid, err := refID("categoryId", q.CategoryID)
		if err != nil {
			return nil, err
		}
		filter = append(filter, bson.E{Key: "categoryId", Value: oid})
	}
	if q.AuthorID != "" {
		oid, err := refID("authorId", q.AuthorID)
		if err != nil {
			return nil, err
		}
		filter = append(filter, bson.E{Key: "authorId", Value: oid})
	}

	if len(and) > 0 {
		filter = append(filter, bson.E{Key: "$and", Value: and})
	}
	return filter, nil
}

func blogSort(v blog.View) bson.D {
	switch v {
	case blog.ViewAll:
		return bson.D{{Key: "createdAt", Value: -1}}
	case blog.ViewScheduled:
		return bson.D{{Key: "publishDate", Value: 1}}
	default:
		return bson.D{{Key: "publishDate", Value: -1}}
	}
}

// liveClause matches posts whose publish date has passed, including legacy
// posts stored without one.
func liveClause(now time.Time) bson.D {
	return bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "publishDate", Value: bson.D{{Key: "$lte", Value: now}}}},
		bson.D{{Key: "publishDate", Value: bson.D{{Key: "$exists", Value: false}}}},
	}}}
}

func searchClauses(term string) bson.A {
	pattern := bson.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	return bson.A{
		bson.D{{Key: "title", Value: pattern}},
		bson.D{{Key: "content", Value: pattern}},
	}
}
