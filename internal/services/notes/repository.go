package notes

import (
	"context"

	"note-keep/internal/services/categories"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Toggleable boolean fields. Repository.Toggle rejects anything else.
const (
	FieldPinned   = "is_pinned"
	FieldArchived = "is_archived"
)

// Repository defines the interface for notes repository operations. Every
// method takes the owning user's id and applies it to the lookup filter, so
// owner scoping is enforced at the lowest level.
type Repository interface {
	Create(ctx context.Context, n *Note) error
	FindByID(ctx context.Context, userID, noteID bson.ObjectID) (*Note, error)
	List(ctx context.Context, userID bson.ObjectID, req ListNotesRequest) ([]*Note, int64, error)
	Update(ctx context.Context, userID, noteID bson.ObjectID, patch UpdateNote) (*Note, error)
	Delete(ctx context.Context, userID, noteID bson.ObjectID) error
	Toggle(ctx context.Context, userID, noteID bson.ObjectID, field string) (*Note, error)
	Counts(ctx context.Context, userID bson.ObjectID) (Counts, error)
}

// CategoryDirectory is the slice of the category store the query engine
// needs: ownership-checked lookups for write validation, the id->category
// map for denormalized list fields, and the per-user count for stats.
type CategoryDirectory interface {
	GetOwned(ctx context.Context, userID, id bson.ObjectID) (*categories.Category, error)
	MapByUser(ctx context.Context, userID bson.ObjectID) (map[bson.ObjectID]*categories.Category, error)
	CountByUser(ctx context.Context, userID bson.ObjectID) (int64, error)
}
