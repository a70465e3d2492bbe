package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"note-keep/internal/logger"
	"note-keep/internal/services/categories"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CategoriesRepo implements the categories.Repository interface for MongoDB
type CategoriesRepo struct {
	collection *mongo.Collection
}

func translateCategoryNotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return categories.ErrCategoryNotFound
	}
	return err
}

// NewCategoriesRepo creates a new categories repository. The unique
// (user_id, name) index backs the per-user name uniqueness invariant.
func NewCategoriesRepo(parentCtx context.Context, db *mongo.Database) (*CategoriesRepo, error) {
	collection := db.Collection("categories")

	indexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "name", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	}

	ctx, cancel := context.WithTimeout(parentCtx, OpTimeout)
	defer cancel()

	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			logger.L().Debug("index already exists, continuing", "collection", "categories")
		} else {
			logger.L().Error("failed to create index", "collection", "categories", "error", err)
			return nil, fmt.Errorf("%w: %w", categories.ErrCreateCategoriesRepo, err)
		}
	}

	return &CategoriesRepo{
		collection: collection,
	}, nil
}

// Create creates a new category in the database
func (r *CategoriesRepo) Create(ctx context.Context, category *categories.Category) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, category)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return categories.ErrDuplicateName
		}
		return err
	}

	return nil
}

// Get retrieves a category by id without owner scoping, so the service can
// distinguish an absent category from a foreign one.
func (r *CategoriesRepo) Get(ctx context.Context, id bson.ObjectID) (*categories.Category, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	var category categories.Category
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&category); err != nil {
		return nil, translateCategoryNotFound(err)
	}

	return &category, nil
}

// GetOwned retrieves a category in the user's scope
func (r *CategoriesRepo) GetOwned(ctx context.Context, userID, id bson.ObjectID) (*categories.Category, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	filter := bson.M{
		"_id":     id,
		"user_id": userID,
	}

	var category categories.Category
	if err := r.collection.FindOne(ctx, filter).Decode(&category); err != nil {
		return nil, translateCategoryNotFound(err)
	}

	return &category, nil
}

// List retrieves the user's categories with optional name search and ordering
func (r *CategoriesRepo) List(ctx context.Context, userID bson.ObjectID, req categories.ListCategoriesRequest) ([]*categories.Category, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	filter := bson.M{"user_id": userID}
	if req.Search != "" {
		filter["name"] = bson.M{"$regex": regexp.QuoteMeta(req.Search), "$options": "i"}
	}

	opts := options.Find().SetSort(categorySortSpec(req.Ordering))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func(ctxToClose context.Context) {
		if cerr := cursor.Close(ctxToClose); cerr != nil {
			logger.L().Error("failed to close cursor", "error", cerr)
		}
	}(ctx)

	var list []*categories.Category
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}

	return list, nil
}

func categorySortSpec(ordering string) bson.D {
	if ordering == "" {
		return bson.D{{Key: "name", Value: 1}}
	}

	dir := 1
	key := ordering
	if strings.HasPrefix(ordering, "-") {
		dir = -1
		key = ordering[1:]
	}

	switch key {
	case "name", "created_at":
	default:
		key = "name"
		dir = 1
	}

	return bson.D{{Key: key, Value: dir}}
}

// MapByUser loads all of the user's categories keyed by id, for decorating
// note listings without one lookup per note.
func (r *CategoriesRepo) MapByUser(ctx context.Context, userID bson.ObjectID) (map[bson.ObjectID]*categories.Category, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer func(ctxToClose context.Context) {
		if cerr := cursor.Close(ctxToClose); cerr != nil {
			logger.L().Error("failed to close cursor", "error", cerr)
		}
	}(ctx)

	var list []*categories.Category
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}

	out := make(map[bson.ObjectID]*categories.Category, len(list))
	for _, c := range list {
		out[c.ID] = c
	}

	return out, nil
}

// CountByUser returns the number of categories the user owns
func (r *CategoriesRepo) CountByUser(ctx context.Context, userID bson.ObjectID) (int64, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	return r.collection.CountDocuments(ctx, bson.M{"user_id": userID})
}

// Update applies a partial update to a category
func (r *CategoriesRepo) Update(ctx context.Context, id bson.ObjectID, patch categories.UpdateCategory) (*categories.Category, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	filter := bson.M{"_id": id}

	set := bson.M{
		"updated_at": time.Now().UTC(),
	}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Color != nil {
		set["color"] = *patch.Color
	}

	// Skip the write if only updated_at would be set
	if len(set) == 1 {
		var existing categories.Category
		if err := r.collection.FindOne(ctx, filter).Decode(&existing); err != nil {
			return nil, translateCategoryNotFound(err)
		}
		return &existing, nil
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated categories.Category
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, categories.ErrDuplicateName
		}
		return nil, translateCategoryNotFound(err)
	}

	return &updated, nil
}

// Delete removes a category by id
func (r *CategoriesRepo) Delete(ctx context.Context, id bson.ObjectID) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}

	if result.DeletedCount == 0 {
		return categories.ErrCategoryNotFound
	}

	return nil
}
