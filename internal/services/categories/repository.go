package categories

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Repository defines the interface for category repository operations.
// Get is deliberately unscoped so the service can tell "absent" apart from
// "owned by someone else"; every other lookup is owner-scoped.
type Repository interface {
	Create(ctx context.Context, c *Category) error
	Get(ctx context.Context, id bson.ObjectID) (*Category, error)
	GetOwned(ctx context.Context, userID, id bson.ObjectID) (*Category, error)
	List(ctx context.Context, userID bson.ObjectID, req ListCategoriesRequest) ([]*Category, error)
	MapByUser(ctx context.Context, userID bson.ObjectID) (map[bson.ObjectID]*Category, error)
	CountByUser(ctx context.Context, userID bson.ObjectID) (int64, error)
	Update(ctx context.Context, id bson.ObjectID, patch UpdateCategory) (*Category, error)
	Delete(ctx context.Context, id bson.ObjectID) error
}

// NotesMaintainer is the slice of the note store the category service needs:
// active-note counts for the list view and reference cleanup on delete.
type NotesMaintainer interface {
	CountActiveByCategory(ctx context.Context, userID bson.ObjectID) (map[bson.ObjectID]int64, error)
	ClearCategory(ctx context.Context, userID, categoryID bson.ObjectID) (int64, error)
}
