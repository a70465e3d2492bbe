package categories

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// DefaultColor is applied when a category is created without a color.
const DefaultColor = "#3B82F6"

// DefaultCategory is a category provisioned for every new user at sign-up.
type DefaultCategory struct {
	Name  string
	Color string
}

// DefaultCategories are auto-provisioned, in order, when a user signs up.
var DefaultCategories = []DefaultCategory{
	{Name: "Random Thoughts", Color: "#FF6B6B"},
	{Name: "School", Color: "#4ECDC4"},
	{Name: "Personal", Color: "#45B7D1"},
}

// Category represents a user-owned note category. The (user_id, name) pair is
// unique, enforced by a compound index.
type Category struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id,omitempty" example:"683cdb8aa96ad71e8e075bd1"`
	UserID    bson.ObjectID `bson:"user_id" json:"user_id" example:"683cdb8aa96ad71e8e075bd0"`
	Name      string        `bson:"name" json:"name" validate:"required" example:"Personal"`
	Color     string        `bson:"color" json:"color" example:"#45B7D1"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at" example:"2025-06-01T23:00:26.005703677Z"`
	UpdatedAt time.Time     `bson:"updated_at" json:"updated_at" example:"2025-06-01T23:00:26.005703677Z"`
}

// UpdateCategory represents the whitelist of fields that can be patched.
type UpdateCategory struct {
	Name  *string
	Color *string
}

// CategoryWithCount is the read model: the category plus the count of its
// non-archived notes.
type CategoryWithCount struct {
	Category
	NotesCount int64 `json:"notes_count"`
}
