package mongostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/jsamuelsen11/blog-platform-api/internal/domain"
	"github.com/jsamuelsen11/blog-platform-api/internal/platform/logging"
)

// Collection names.
const (
	usersCollection      = "users"
	blogsCollection      = "blogs"
	categoriesCollection = "categories"
	authorsCollection    = "authors"
)

// DefaultQueryTimeout bounds a single store operation.
const DefaultQueryTimeout = 60 * time.Second

// ConnSource hands out the current live connection. The connection
// supervisor implements it.
type ConnSource interface {
	EnsureConnected(ctx context.Context) (*Conn, error)
}

// Store is shared by the repositories. It resolves the live connection on
// every operation, so a reconnect is picked up without rebuilding anything.
type Store struct {
	conns        ConnSource
	queryTimeout time.Duration
}

// New creates a Store. A non-positive queryTimeout selects
// DefaultQueryTimeout.
func New(conns ConnSource, queryTimeout time.Duration) *Store {
	if queryTimeout <= 0 {
		queryTimeout = DefaultQueryTimeout
	}
	return &Store{conns: conns, queryTimeout: queryTimeout}
}

func (s *Store) collection(ctx context.Context, name string) (*mongo.Collection, error) {
	c, err := s.conns.EnsureConnected(ctx)
	if err != nil {
		return nil, err
	}

	build := func(ctx context.Context) error { return ensureIndexes(ctx, c.db) }
	if err := c.indexes.ensure(ctx, s.queryTimeout, build); err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "creating indexes failed", slog.Any("error", err))
	}

	return c.db.Collection(name), nil
}

// op bounds ctx by the query timeout.
func (s *Store) op(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.queryTimeout)
}

// indexGuard runs an index build once per handle. A failed build is tried
// again by the next caller. The build runs detached from the caller's
// cancellation under its own timeout.
type indexGuard struct {
	built atomic.Bool
	mu    sync.Mutex
}

func (g *indexGuard) ensure(ctx context.Context, timeout time.Duration, build func(context.Context) error) error {
	if g.built.Load() {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.built.Load() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := build(ctx); err != nil {
		return err
	}
	g.built.Store(true)
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users.email: %w", err)
	}

	_, err = db.Collection(categoriesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("categories.slug: %w", err)
	}

	_, err = db.Collection(blogsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "publishDate", Value: -1}}},
		{Keys: bson.D{{Key: "categoryId", Value: 1}, {Key: "publishDate", Value: -1}}},
		{Keys: bson.D{{Key: "title", Value: "text"}, {Key: "content", Value: "text"}}},
	})
	if err != nil {
		return fmt.Errorf("blogs: %w", err)
	}
	return nil
}

// translate maps driver errors onto the domain taxonomy.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", op, domain.ErrConflict)
	case mongo.IsTimeout(err), errors.Is(err, context.DeadlineExceeded):
		return &domain.OperationTimeoutError{Operation: op, Err: err}
	case errors.Is(err, domain.ErrUnavailable), errors.Is(err, domain.ErrConfiguration):
		return err
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// objectID parses a stored document ID. Malformed IDs cannot match any
// document, so they read as not found.
func objectID(id string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.ObjectID{}, fmt.Errorf("id %q: %w", id, domain.ErrNotFound)
	}
	return oid, nil
}

// refID parses an ID supplied by a client as a reference to another document.
func refID(field, id string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.ObjectID{}, domain.NewValidationError(field, "is not a valid id")
	}
	return oid, nil
}

// optionalID is refID for references that may be empty.
func optionalID(field, id string) (bson.ObjectID, error) {
	if id == "" {
		return bson.ObjectID{}, nil
	}
	return refID(field, id)
}

func hexOrEmpty(oid bson.ObjectID) string {
	if oid.IsZero() {
		return ""
	}
	return oid.Hex()
}
