package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jsamuelsen11/blog-platform-api/internal/domain"
	"github.com/jsamuelsen11/blog-platform-api/internal/domain/user"
	"github.com/jsamuelsen11/blog-platform-api/internal/ports"
)

var _ ports.UserRepository = (*UserRepository)(nil)

type userDoc struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Name      string        `bson:"name"`
	Email     string        `bson:"email"`
	Password  string        `bson:"password"`
	Role      string        `bson:"role"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

func (d *userDoc) toDomain() *user.User {
	return &user.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.Password,
		Role:         user.Role(d.Role),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// UserRepository stores accounts in the users collection.
type UserRepository struct {
	store *Store
}

// NewUserRepository creates a UserRepository.
func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.findOne(ctx, "FindUserByEmail", bson.D{{Key: "email", Value: email}})
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, "FindUserByID", bson.D{{Key: "_id", Value: oid}})
}

func (r *UserRepository) findOne(ctx context.Context, op string, filter bson.D) (*user.User, error) {
	coll, err := r.store.collection(ctx, usersCollection)
	if err != nil {
		return nil, err
	}
	ctx, cancel := r.store.op(ctx)
	defer cancel()

	var doc userDoc
	if err := coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate(op, err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) (*user.User, error) {
	coll, err := r.store.collection(ctx, usersCollection)
	if err != nil {
		return nil, err
	}
	ctx, cancel := r.store.op(ctx)
	defer cancel()

	now := time.Now().UTC()
	doc := userDoc{
		ID:        bson.NewObjectID(),
		Name:      u.Name,
		Email:     u.Email,
		Password:  u.PasswordHash,
		Role:      string(u.Role),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return nil, translate("CreateUser", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) SetRole(ctx context.Context, id string, role user.Role) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	coll, err := r.store.collection(ctx, usersCollection)
	if err != nil {
		return err
	}
	ctx, cancel := r.store.op(ctx)
	defer cancel()

	res, err := coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "role", Value: string(role)},
			{Key: "updatedAt", Value: time.Now().UTC()},
		}}},
	)
	if err != nil {
		return translate("SetUserRole", err)
	}
	if res.MatchedCount == 0 {
		return translate("SetUserRole", domain.ErrNotFound)
	}
	return nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	coll, err := r.store.collection(ctx, usersCollection)
	if err != nil {
		return 0, err
	}
	ctx, cancel := r.store.op(ctx)
	defer cancel()

	n, err := coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, translate("CountUsers", err)
	}
	return n, nil
}
