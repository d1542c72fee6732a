package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/jsamuelsen11/blog-platform-api/internal/domain/category"
	"github.com/jsamuelsen11/blog-platform-api/internal/ports"
)

var _ ports.CategoryRepository = (*CategoryRepository)(nil)

type categoryDoc struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	Name        string        `bson:"name"`
	Slug        string        `bson:"slug"`
	Description string        `bson:"description,omitempty"`
	CreatedAt   time.Time     `bson:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt"`
}

func (d *categoryDoc) toDomain() category.Category {
	return category.Category{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Slug:        d.Slug,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// CategoryRepository stores categories in the categories collection.
type CategoryRepository struct {
	store *Store
}

// NewCategoryRepository creates a CategoryRepository.
func NewCategoryRepository(store *Store) *CategoryRepository {
	return &CategoryRepository{store: store}
}

func (r *CategoryRepository) List(ctx context.Context) ([]category.Category, error) {
	coll, err := r.store.collection(ctx, categoriesCollection)
	if err != nil {
		return nil, err
	}
	ctx, cancel := r.store.op(ctx)
	defer cancel()

	cur, err := coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, translate("ListCategories", err)
	}

	var docs []categoryDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, translate("ListCategories", err)
	}

	out := make([]category.Category, len(docs))
	for i := range docs {
		out[i] = docs[i].toDomain()
	}
	return out, nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*category.Category, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, "FindCategoryByID", bson.D{{Key: "_id", Value: oid}})
}

func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) (*category.Category, error) {
	return r.findOne(ctx, "FindCategoryBySlug", bson.D{{Key: "slug", Value: slug}})
}

func (r *CategoryRepository) findOne(ctx context.Context, op string, filter bson.D) (*category.Category, error) {
	coll, err := r.store.collection(ctx, categoriesCollection)
	if err != nil {
		return nil, err
	}
	ctx, cancel := r.store.op(ctx)
	defer cancel()

	var doc categoryDoc
	if err := coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate(op, err)
	}
	c := doc.toDomain()
	return &c, nil
}

func (r *CategoryRepository) Create(ctx context.Context, c *category.Category) (*category.Category, error) {
	coll, err := r.store.collection(ctx, categoriesCollection)
	if err != nil {
		return nil, err
	}
	ctx, cancel := r.store.op(ctx)
	defer cancel()

	now := time.Now().UTC()
	doc := categoryDoc{
		ID:          bson.NewObjectID(),
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return nil, translate("CreateCategory", err)
	}
	out := doc.toDomain()
	return &out, nil
}
