package notes

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Priority levels a note can carry. Stored as plain strings; ordering by
// priority sorts the raw value, matching the historical behavior.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Note represents a note as persisted. Tags is the canonical
// comma-plus-space-joined string; the tag_list view is always derived from it.
type Note struct {
	ID         bson.ObjectID  `bson:"_id,omitempty" json:"id,omitempty" example:"683cdb8aa96ad71e8e075bd1"`
	UserID     bson.ObjectID  `bson:"user_id" json:"user_id" example:"683cdb8aa96ad71e8e075bd0"`
	Title      string         `bson:"title" json:"title" validate:"required" example:"Meeting Notes"`
	Content    string         `bson:"content" json:"content" example:"Remember to discuss the quarterly targets"`
	CategoryID *bson.ObjectID `bson:"category_id,omitempty" json:"category"`
	Priority   string         `bson:"priority" json:"priority" example:"medium"`
	IsPinned   bool           `bson:"is_pinned" json:"is_pinned"`
	IsArchived bool           `bson:"is_archived" json:"is_archived"`
	Tags       string         `bson:"tags" json:"tags" example:"work, errand"`
	CreatedAt  time.Time      `bson:"created_at" json:"created_at" example:"2025-06-01T23:00:26.005703677Z"`
	UpdatedAt  time.Time      `bson:"updated_at" json:"updated_at" example:"2025-06-01T23:00:26.005703677Z"`
}

// UpdateNote represents the whitelist of fields that can be patched on a note.
// Nil pointers mean "leave unchanged"; ClearCategory detaches the note from
// its category (CategoryID and ClearCategory are mutually exclusive).
type UpdateNote struct {
	Title         *string
	Content       *string
	CategoryID    *bson.ObjectID
	ClearCategory bool
	Priority      *string
	IsPinned      *bool
	IsArchived    *bool
	Tags          *string
}

// NoteDetail is the full read model: the stored note plus the derived tag
// list and the denormalized fields of the linked category (null when unset).
type NoteDetail struct {
	Note
	TagList       []string `json:"tag_list"`
	CategoryName  *string  `json:"category_name"`
	CategoryColor *string  `json:"category_color"`
}

// NoteSummary is the abbreviated list projection: no content body.
type NoteSummary struct {
	ID            bson.ObjectID  `json:"id"`
	Title         string         `json:"title"`
	CategoryID    *bson.ObjectID `json:"category"`
	CategoryName  *string        `json:"category_name"`
	CategoryColor *string        `json:"category_color"`
	Priority      string         `json:"priority"`
	IsPinned      bool           `json:"is_pinned"`
	IsArchived    bool           `json:"is_archived"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Counts holds the per-user stat counters computed by the repository.
type Counts struct {
	Total    int64
	Active   int64
	Pinned   int64
	Archived int64
}
