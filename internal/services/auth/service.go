package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"note-keep/internal/config"
	"note-keep/internal/utils/crypto"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// CategorySeeder provisions the starter categories for a new account.
type CategorySeeder interface {
	ProvisionDefaults(ctx context.Context, userID bson.ObjectID) error
}

// Service handles authentication business logic
type Service struct {
	users  UsersRepo
	tokens RefreshTokensRepo
	seeder CategorySeeder
	config config.Config
	log    *slog.Logger
}

// NewService creates a new auth service
func NewService(users UsersRepo, tokens RefreshTokensRepo, seeder CategorySeeder, cfg config.Config, log *slog.Logger) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		seeder: seeder,
		config: cfg,
		log:    log,
	}
}

// SignUpRequest represents a user registration request
type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email" example:"test@example.com"`
	Password string `json:"password" validate:"required,min=8" example:"longenough1"`
}

// SignInRequest represents a user login request
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email" example:"test@example.com"`
	Password string `json:"password" validate:"required" example:"longenough1"`
}

// RefreshRequest carries the opaque refresh token for rotation
type RefreshRequest struct {
	RefreshToken string `json:"refresh" validate:"required"`
}

// SignOutRequest revokes a single refresh token
type SignOutRequest struct {
	RefreshToken string `json:"refresh" validate:"required"`
}

// AuthResponse represents the response for successful authentication
type AuthResponse struct {
	User    *User  `json:"user"`
	Access  string `json:"access" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.e30.abc"`
	Refresh string `json:"refresh" example:"1f8c3a0e9b..."`
}

// SignUpResponse is an alias for AuthResponse
type SignUpResponse = AuthResponse

// SignInResponse is an alias for AuthResponse
type SignInResponse = AuthResponse

// SignUp registers a new user and provisions their default categories
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)

	hashedPassword, err := crypto.HashPassword(req.Password, s.config.BcryptCost)
	if err != nil {
		s.log.Error(ErrProcessPassword.Error(), "error", err)
		return nil, ErrProcessPassword
	}

	now := time.Now().UTC()
	user := &User{
		ID:           bson.NewObjectID(),
		Email:        email,
		PasswordHash: hashedPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, ErrDuplicate
		}
		s.log.Error(ErrCreateUser.Error(), "error", err)
		return nil, ErrCreateUser
	}

	if err := s.seeder.ProvisionDefaults(ctx, user.ID); err != nil {
		// Account exists; starter categories are a convenience, not a contract.
		s.log.Error("failed to provision default categories", "error", err, "user_id", user.ID.Hex())
	}

	return s.issuePair(ctx, user)
}

// SignIn authenticates a user
func (s *Service) SignIn(ctx context.Context, req SignInRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		s.log.Info("sign-in for unknown email", "email", email)
		return nil, ErrInvalidCredentials
	}

	if err := crypto.CheckPassword(req.Password, user.PasswordHash); err != nil {
		s.log.Info("sign-in with wrong password", "user_id", user.ID.Hex())
		return nil, ErrInvalidCredentials
	}

	return s.issuePair(ctx, user)
}

// Refresh exchanges a valid refresh token for a new access token. When
// rotation is enabled the presented token is revoked and replaced.
func (s *Service) Refresh(ctx context.Context, req RefreshRequest) (*AuthResponse, error) {
	stored, err := s.matchActiveToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, stored.UserID)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	if !s.config.RefreshTokenRotate {
		access, err := s.generateJWT(user)
		if err != nil {
			s.log.Error(ErrGenAccessToken.Error(), "error", err, "user_id", user.ID.Hex())
			return nil, ErrGenAccessToken
		}
		return &AuthResponse{User: user, Access: access, Refresh: req.RefreshToken}, nil
	}

	if err := s.tokens.Revoke(ctx, stored.ID); err != nil {
		s.log.Error("failed to revoke rotated refresh token", "error", err, "user_id", user.ID.Hex())
		return nil, ErrInvalidRefreshToken
	}

	return s.issuePair(ctx, user)
}

// SignOut revokes the presented refresh token. An unknown token, or one
// belonging to another user, is still a success for the caller.
func (s *Service) SignOut(ctx context.Context, userID bson.ObjectID, req SignOutRequest) error {
	stored, err := s.matchActiveToken(ctx, req.RefreshToken)
	if err != nil || stored.UserID != userID {
		return nil
	}
	if err := s.tokens.Revoke(ctx, stored.ID); err != nil {
		s.log.Error("failed to revoke refresh token", "error", err, "user_id", userID.Hex())
	}
	return nil
}

// SignOutAll revokes every active refresh token for the user
func (s *Service) SignOutAll(ctx context.Context, userID bson.ObjectID) (int64, error) {
	revoked, err := s.tokens.RevokeAllForUser(ctx, userID)
	if err != nil {
		s.log.Error("failed to revoke all refresh tokens", "error", err, "user_id", userID.Hex())
		return 0, err
	}
	s.log.Info("revoked all sessions", "user_id", userID.Hex(), "count", revoked)
	return revoked, nil
}

// matchActiveToken finds the stored active token whose bcrypt hash matches
// the presented plaintext.
func (s *Service) matchActiveToken(ctx context.Context, plaintext string) (*RefreshToken, error) {
	active, err := s.tokens.FindActive(ctx)
	if err != nil {
		s.log.Error("failed to load active refresh tokens", "error", err)
		return nil, ErrInvalidRefreshToken
	}
	for _, t := range active {
		if crypto.CheckPassword(plaintext, t.TokenHash) == nil {
			return t, nil
		}
	}
	return nil, ErrInvalidRefreshToken
}

// issuePair mints an access/refresh pair and persists the refresh token hash.
func (s *Service) issuePair(ctx context.Context, user *User) (*AuthResponse, error) {
	access, err := s.generateJWT(user)
	if err != nil {
		s.log.Error(ErrGenAccessToken.Error(), "error", err, "user_id", user.ID.Hex())
		return nil, ErrGenAccessToken
	}

	refresh, err := crypto.NewRefreshToken()
	if err != nil {
		s.log.Error(ErrGenRefreshToken.Error(), "error", err, "user_id", user.ID.Hex())
		return nil, ErrGenRefreshToken
	}

	// Hashing at MinCost keeps refresh verification cheap; the token itself
	// already carries 256 bits of entropy.
	hash, err := crypto.HashPassword(refresh, 4)
	if err != nil {
		s.log.Error(ErrGenRefreshToken.Error(), "error", err, "user_id", user.ID.Hex())
		return nil, ErrGenRefreshToken
	}

	now := time.Now().UTC()
	record := &RefreshToken{
		ID:        bson.NewObjectID(),
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: now.Add(time.Duration(s.config.RefreshTokenDays) * 24 * time.Hour),
		CreatedAt: now,
	}
	if err := s.tokens.Create(ctx, record); err != nil {
		s.log.Error(ErrGenRefreshToken.Error(), "error", err, "user_id", user.ID.Hex())
		return nil, ErrGenRefreshToken
	}

	return &AuthResponse{
		User:    user,
		Access:  access,
		Refresh: refresh,
	}, nil
}

func (s *Service) generateJWT(user *User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID.Hex(),
		"email":   user.Email,
		"exp":     now.Add(time.Duration(s.config.AccessTokenMinutes) * time.Minute).Unix(),
		"iat":     now.Unix(),
	}

	alg := strings.ToUpper(s.config.JWTAlgorithm)
	var method jwt.SigningMethod
	switch alg {
	case "HS256":
		method = jwt.SigningMethodHS256
	default:
		return "", errors.New("unsupported JWT algorithm")
	}

	token := jwt.NewWithClaims(method, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
