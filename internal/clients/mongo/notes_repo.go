package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"note-keep/internal/logger"
	"note-keep/internal/services/notes"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// NotesRepo implements the notes.Repository interface for MongoDB.
// It also implements categories.NotesMaintainer for the category store.
type NotesRepo struct {
	collection *mongo.Collection
}

// translateNotFound maps the driver ErrNoDocuments to the domain-level ErrNoteNotFound.
func translateNotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notes.ErrNoteNotFound
	}
	return err
}

// NewNotesRepo creates a new notes repository
func NewNotesRepo(parentCtx context.Context, db *mongo.Database) (*NotesRepo, error) {
	collection := db.Collection("notes")

	indexes := []mongo.IndexModel{
		// Default ordering: pinned first, then recency
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "is_pinned", Value: -1},
				{Key: "updated_at", Value: -1},
				{Key: "_id", Value: -1},
			},
		},
		// Archived/active listings
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "is_archived", Value: 1},
				{Key: "updated_at", Value: -1},
			},
		},
		// Category filter and per-category counts
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "category_id", Value: 1},
			},
		},
		// created_at ordering
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "created_at", Value: -1},
				{Key: "_id", Value: -1},
			},
		},
	}

	ctx, cancel := context.WithTimeout(parentCtx, OpTimeout)
	defer cancel()

	for _, indexModel := range indexes {
		_, err := collection.Indexes().CreateOne(ctx, indexModel)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				logger.L().Debug("index already exists, continuing", "collection", "notes")
			} else {
				logger.L().Error("failed to create index", "collection", "notes", "error", err)
				return nil, fmt.Errorf("%w: %w", notes.ErrCreateNotesRepo, err)
			}
		}
	}

	return &NotesRepo{
		collection: collection,
	}, nil
}

// Create creates a new note in the database
func (r *NotesRepo) Create(ctx context.Context, note *notes.Note) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, note)
	return err
}

// FindByID retrieves a single note in the user's scope. A note owned by
// someone else is indistinguishable from an absent one.
func (r *NotesRepo) FindByID(ctx context.Context, userID, noteID bson.ObjectID) (*notes.Note, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	filter := bson.M{
		"_id":     noteID,
		"user_id": userID,
	}

	var note notes.Note
	if err := r.collection.FindOne(ctx, filter).Decode(&note); err != nil {
		return nil, translateNotFound(err)
	}

	return &note, nil
}

// List retrieves notes for a user with filtering, search, sorting, and
// offset pagination. A non-positive limit disables pagination.
func (r *NotesRepo) List(ctx context.Context, userID bson.ObjectID, req notes.ListNotesRequest) ([]*notes.Note, int64, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	filter, err := buildListFilter(userID, req)
	if err != nil {
		return nil, 0, err
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(sortSpec(req.Ordering)).
		SetProjection(bson.M{"content": 0})
	if req.Offset > 0 {
		opts.SetSkip(int64(req.Offset))
	}
	if req.Limit > 0 {
		opts.SetLimit(int64(req.Limit))
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, total, err
	}
	defer func(ctxToClose context.Context) {
		if cerr := cursor.Close(ctxToClose); cerr != nil {
			logger.L().Error("failed to close cursor", "error", cerr)
		}
	}(ctx)

	var notesList []*notes.Note
	if err := cursor.All(ctx, &notesList); err != nil {
		return nil, total, err
	}

	return notesList, total, nil
}

// buildListFilter constructs the MongoDB filter for the List query. Search
// and tags conditions go through $and so they never collide on a bson key.
func buildListFilter(userID bson.ObjectID, req notes.ListNotesRequest) (bson.M, error) {
	filter := bson.M{"user_id": userID}

	if req.Category != "" {
		categoryID, err := bson.ObjectIDFromHex(req.Category)
		if err != nil {
			return nil, notes.ErrInvalidCategory
		}
		filter["category_id"] = categoryID
	}
	if req.Priority != "" {
		filter["priority"] = req.Priority
	}
	if req.IsPinned != nil {
		filter["is_pinned"] = *req.IsPinned
	}
	if req.IsArchived != nil {
		filter["is_archived"] = *req.IsArchived
	}

	var and bson.A

	if req.Search != "" {
		regex := bson.M{"$regex": regexp.QuoteMeta(req.Search), "$options": "i"}
		and = append(and, bson.M{"$or": bson.A{
			bson.M{"title": regex},
			bson.M{"content": regex},
			bson.M{"tags": regex},
		}})
	}

	for _, tag := range strings.Split(req.Tags, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		and = append(and, bson.M{"tags": bson.M{"$regex": regexp.QuoteMeta(tag), "$options": "i"}})
	}

	if len(and) > 0 {
		filter["$and"] = and
	}

	return filter, nil
}

// sortSpec maps the ordering token to a sort document. The default view
// floats pinned notes to the top, then most recently updated.
func sortSpec(ordering string) bson.D {
	if ordering == "" {
		return bson.D{
			{Key: "is_pinned", Value: -1},
			{Key: "updated_at", Value: -1},
			{Key: "_id", Value: -1},
		}
	}

	dir := 1
	key := ordering
	if strings.HasPrefix(ordering, "-") {
		dir = -1
		key = ordering[1:]
	}

	switch key {
	case "title", "created_at", "updated_at", "priority":
	default:
		key = "updated_at"
		dir = -1
	}

	return bson.D{
		{Key: key, Value: dir},
		{Key: "_id", Value: dir},
	}
}

// Update updates a note belonging to the specified user
func (r *NotesRepo) Update(ctx context.Context, userID, noteID bson.ObjectID, patch notes.UpdateNote) (*notes.Note, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	filter := bson.M{
		"_id":     noteID,
		"user_id": userID,
	}

	set := bson.M{
		"updated_at": time.Now().UTC(),
	}

	// Only update fields that are provided
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Content != nil {
		set["content"] = *patch.Content
	}
	if patch.CategoryID != nil {
		set["category_id"] = *patch.CategoryID
	}
	if patch.Priority != nil {
		set["priority"] = *patch.Priority
	}
	if patch.IsPinned != nil {
		set["is_pinned"] = *patch.IsPinned
	}
	if patch.IsArchived != nil {
		set["is_archived"] = *patch.IsArchived
	}
	if patch.Tags != nil {
		set["tags"] = *patch.Tags
	}

	// Skip the write if only updated_at would be set (micro-optimization)
	if len(set) == 1 && !patch.ClearCategory {
		var existingNote notes.Note
		err := r.collection.FindOne(ctx, filter).Decode(&existingNote)
		if err != nil {
			return nil, translateNotFound(err)
		}
		return &existingNote, nil
	}

	update := bson.M{"$set": set}
	if patch.ClearCategory {
		update["$unset"] = bson.M{"category_id": ""}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updatedNote notes.Note
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updatedNote)
	if err != nil {
		return nil, translateNotFound(err)
	}

	return &updatedNote, nil
}

// Delete deletes a note belonging to the specified user
func (r *NotesRepo) Delete(ctx context.Context, userID, noteID bson.ObjectID) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	filter := bson.M{
		"_id":     noteID,
		"user_id": userID,
	}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}

	if result.DeletedCount == 0 {
		return notes.ErrNoteNotFound
	}

	return nil
}

// Toggle atomically flips a boolean field with a pipeline update, so
// concurrent toggles never lose a flip.
func (r *NotesRepo) Toggle(ctx context.Context, userID, noteID bson.ObjectID, field string) (*notes.Note, error) {
	if field != notes.FieldPinned && field != notes.FieldArchived {
		return nil, fmt.Errorf("field %q is not toggleable", field)
	}

	ctx, cancel := repoCtx(ctx)
	defer cancel()

	filter := bson.M{
		"_id":     noteID,
		"user_id": userID,
	}

	pipeline := bson.A{
		bson.M{"$set": bson.M{
			field:        bson.M{"$not": "$" + field},
			"updated_at": time.Now().UTC(),
		}},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updatedNote notes.Note
	err := r.collection.FindOneAndUpdate(ctx, filter, pipeline, opts).Decode(&updatedNote)
	if err != nil {
		return nil, translateNotFound(err)
	}

	return &updatedNote, nil
}

// Counts computes the per-user stat counters
func (r *NotesRepo) Counts(ctx context.Context, userID bson.ObjectID) (notes.Counts, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	var counts notes.Counts
	var err error

	if counts.Total, err = r.collection.CountDocuments(ctx, bson.M{"user_id": userID}); err != nil {
		return notes.Counts{}, err
	}
	if counts.Active, err = r.collection.CountDocuments(ctx, bson.M{"user_id": userID, "is_archived": false}); err != nil {
		return notes.Counts{}, err
	}
	if counts.Pinned, err = r.collection.CountDocuments(ctx, bson.M{"user_id": userID, "is_pinned": true}); err != nil {
		return notes.Counts{}, err
	}
	if counts.Archived, err = r.collection.CountDocuments(ctx, bson.M{"user_id": userID, "is_archived": true}); err != nil {
		return notes.Counts{}, err
	}

	return counts, nil
}

// CountActiveByCategory groups the user's non-archived notes by category.
// Categories with no active notes are simply absent from the map.
func (r *NotesRepo) CountActiveByCategory(ctx context.Context, userID bson.ObjectID) (map[bson.ObjectID]int64, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"user_id":     userID,
			"is_archived": false,
			"category_id": bson.M{"$type": "objectId"},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$category_id",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer func(ctxToClose context.Context) {
		if cerr := cursor.Close(ctxToClose); cerr != nil {
			logger.L().Error("failed to close cursor", "error", cerr)
		}
	}(ctx)

	var rows []struct {
		CategoryID bson.ObjectID `bson:"_id"`
		Count      int64         `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	out := make(map[bson.ObjectID]int64, len(rows))
	for _, row := range rows {
		out[row.CategoryID] = row.Count
	}

	return out, nil
}

// ClearCategory detaches every note of the user that references the category.
// updated_at is left alone: the note's own content did not change.
func (r *NotesRepo) ClearCategory(ctx context.Context, userID, categoryID bson.ObjectID) (int64, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	filter := bson.M{
		"user_id":     userID,
		"category_id": categoryID,
	}
	update := bson.M{"$unset": bson.M{"category_id": ""}}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}

	return result.ModifiedCount, nil
}
