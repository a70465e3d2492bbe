package auth

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ErrDuplicate is returned when trying to create a user with an email that already exists
var ErrDuplicate = errors.New("user with this email already exists")

// ErrUserNotFound is returned when no user matches the lookup
var ErrUserNotFound = errors.New("user not found")

// UsersRepo defines the interface for user repository operations
type UsersRepo interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*User, error)
}

// RefreshTokensRepo defines the interface for refresh token storage.
// FindActive returns every non-revoked, non-expired token; the service
// matches the presented plaintext against the stored hashes.
type RefreshTokensRepo interface {
	Create(ctx context.Context, token *RefreshToken) error
	FindActive(ctx context.Context) ([]*RefreshToken, error)
	Revoke(ctx context.Context, id bson.ObjectID) error
	RevokeAllForUser(ctx context.Context, userID bson.ObjectID) (int64, error)
}
