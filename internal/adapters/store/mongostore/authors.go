package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/jsamuelsen11/blog-platform-api/internal/domain/author"
	"github.com/jsamuelsen11/blog-platform-api/internal/ports"
)

var _ ports.AuthorRepository = (*AuthorRepository)(nil)

type authorDoc struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Name      string        `bson:"name"`
	Bio       string        `bson:"bio,omitempty"`
	Avatar    string        `bson:"avatar,omitempty"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

func (d *authorDoc) toDomain() author.Author {
	return author.Author{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Bio:       d.Bio,
		AvatarURL: d.Avatar,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// AuthorRepository stores authors in the authors collection.
type AuthorRepository struct {
	store *Store
}

// NewAuthorRepository creates an AuthorRepository.
func NewAuthorRepository(store *Store) *AuthorRepository {
	return &AuthorRepository{store: store}
}

func (r *AuthorRepository) List(ctx context.Context) ([]author.Author, error) {
	coll, err := r.store.collection(ctx, authorsCollection)
	if err != nil {
		return nil, err
	}
	ctx, cancel := r.store.op(ctx)
	defer cancel()

	cur, err := coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, translate("ListAuthors", err)
	}

	var docs []authorDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, translate("ListAuthors", err)
	}

	out := make([]author.Author, len(docs))
	for i := range docs {
		out[i] = docs[i].toDomain()
	}
	return out, nil
}

func (r *AuthorRepository) FindByID(ctx context.Context, id string) (*author.Author, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	coll, err := r.store.collection(ctx, authorsCollection)
	if err != nil {
		return nil, err
	}
	ctx, cancel := r.store.op(ctx)
	defer cancel()

	var doc authorDoc
	if err := coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return nil, translate("FindAuthorByID", err)
	}
	a := doc.toDomain()
	return &a, nil
}

func (r *AuthorRepository) Create(ctx context.Context, a *author.Author) (*author.Author, error) {
	coll, err := r.store.collection(ctx, authorsCollection)
	if err != nil {
		return nil, err
	}
	ctx, cancel := r.store.op(ctx)
	defer cancel()

	now := time.Now().UTC()
	doc := authorDoc{
		ID:        bson.NewObjectID(),
		Name:      a.Name,
		Bio:       a.Bio,
		Avatar:    a.AvatarURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return nil, translate("CreateAuthor", err)
	}
	out := doc.toDomain()
	return &out, nil
}
