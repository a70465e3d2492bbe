package mongo

import (
	"context"
	"time"

	"note-keep/internal/logger"
	"note-keep/internal/services/auth"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// RefreshTokensRepo manages refresh token operations in MongoDB
type RefreshTokensRepo struct {
	collection *mongo.Collection
}

// NewRefreshTokensRepo creates a new RefreshTokensRepo instance. A TTL index
// on expires_at lets mongo garbage-collect long-dead tokens.
func NewRefreshTokensRepo(db *mongo.Database) *RefreshTokensRepo {
	collection := db.Collection("refresh_tokens")

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, indexModel := range indexes {
		// Ignore error if index already exists
		_, _ = collection.Indexes().CreateOne(ctx, indexModel)
	}

	return &RefreshTokensRepo{
		collection: collection,
	}
}

// Create creates a new refresh token record
func (r *RefreshTokensRepo) Create(ctx context.Context, token *auth.RefreshToken) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, token)
	if err != nil {
		logger.L().Error("failed to create refresh token", "error", err, "user_id", token.UserID.Hex())
		return err
	}

	return nil
}

// FindActive returns all non-revoked, non-expired refresh tokens
func (r *RefreshTokensRepo) FindActive(ctx context.Context) ([]*auth.RefreshToken, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	filter := bson.M{
		"revoked_at": bson.M{"$exists": false},
		"expires_at": bson.M{"$gt": time.Now().UTC()},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		logger.L().Error("failed to query refresh tokens", "error", err)
		return nil, err
	}
	defer func(ctxToClose context.Context) {
		if cerr := cursor.Close(ctxToClose); cerr != nil {
			logger.L().Error("failed to close cursor", "error", cerr)
		}
	}(ctx)

	var tokens []*auth.RefreshToken
	if err := cursor.All(ctx, &tokens); err != nil {
		return nil, err
	}

	return tokens, nil
}

// Revoke revokes a specific refresh token by setting revoked_at
func (r *RefreshTokensRepo) Revoke(ctx context.Context, id bson.ObjectID) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{
			"revoked_at": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		logger.L().Error("failed to revoke refresh token", "error", err, "token_id", id.Hex())
		return err
	}

	if result.MatchedCount == 0 {
		logger.L().Warn("refresh token not found for revocation", "token_id", id.Hex())
		return mongo.ErrNoDocuments
	}

	return nil
}

// RevokeAllForUser revokes all active refresh tokens for a specific user
func (r *RefreshTokensRepo) RevokeAllForUser(ctx context.Context, userID bson.ObjectID) (int64, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	filter := bson.M{
		"user_id":    userID,
		"revoked_at": bson.M{"$exists": false},
	}
	update := bson.M{
		"$set": bson.M{
			"revoked_at": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		logger.L().Error("failed to revoke all refresh tokens for user", "error", err, "user_id", userID.Hex())
		return 0, err
	}

	return result.ModifiedCount, nil
}
