package auth

import (
	"context"
	"errors"

	"note-keep/cmd/server/handlers/httperr"
	"note-keep/internal/logger"
	"note-keep/internal/services/auth"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// AuthService defines the interface for auth service
type AuthService interface {
	SignUp(ctx context.Context, req auth.SignUpRequest) (*auth.AuthResponse, error)
	SignIn(ctx context.Context, req auth.SignInRequest) (*auth.AuthResponse, error)
	Refresh(ctx context.Context, req auth.RefreshRequest) (*auth.AuthResponse, error)
	SignOut(ctx context.Context, userID bson.ObjectID, req auth.SignOutRequest) error
	SignOutAll(ctx context.Context, userID bson.ObjectID) (int64, error)
}

// Handlers contains the auth HTTP handlers
type Handlers struct {
	authService AuthService
	validator   *validator.Validate
}

// NewHandlers creates new auth handlers
func NewHandlers(authService AuthService, validator *validator.Validate) *Handlers {
	return &Handlers{
		authService: authService,
		validator:   validator,
	}
}

// SignUp handles user registration
func (h *Handlers) SignUp(c *fiber.Ctx) error {
	var req auth.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		logger.L().Warn("failed to parse signup request body", "handler", "SignUp", "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}

	if err := h.validator.Struct(req); err != nil {
		logger.L().Warn("signup request validation failed", "handler", "SignUp", "error", err)
		return httperr.InvalidInput(err)
	}

	resp, err := h.authService.SignUp(c.Context(), req)
	if err != nil {
		logger.L().Warn("signup service failed", "handler", "SignUp", "email", req.Email, "error", err)
		return httperr.Fail(httperr.E{
			Status:  400,
			Message: err.Error(),
		})
	}

	return c.Status(201).JSON(resp)
}

// SignIn handles user authentication. Failures always read the same,
// regardless of which credential was wrong.
func (h *Handlers) SignIn(c *fiber.Ctx) error {
	var req auth.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		logger.L().Warn("failed to parse signin request body", "handler", "SignIn", "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}

	if err := h.validator.Struct(req); err != nil {
		logger.L().Warn("signin request validation failed", "handler", "SignIn", "error", err)
		return httperr.InvalidInput(err)
	}

	resp, err := h.authService.SignIn(c.Context(), req)
	if err != nil {
		return httperr.Fail(httperr.E{
			Status:  400,
			Message: auth.ErrInvalidCredentials.Error(),
		})
	}

	return c.JSON(resp)
}

// Refresh handles token refresh requests
func (h *Handlers) Refresh(c *fiber.Ctx) error {
	var req auth.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		logger.L().Warn("failed to parse refresh request body", "handler", "Refresh", "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.L().Warn("refresh request validation failed", "handler", "Refresh", "error", err)
		return httperr.InvalidInput(err)
	}

	resp, err := h.authService.Refresh(c.Context(), req)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidRefreshToken) {
			logger.L().Info("invalid refresh token presented", "remote", c.IP())
			return httperr.Fail(httperr.ErrUnauthorized)
		}
		logger.L().Error("refresh service failed", "handler", "Refresh", "error", err)
		return httperr.Fail(httperr.E{
			Status:  401,
			Message: err.Error(),
		})
	}

	return c.JSON(resp)
}

// SignOut handles user sign out requests
func (h *Handlers) SignOut(c *fiber.Ctx) error {
	userIDStr := c.Locals("userID")
	if userIDStr == nil {
		logger.L().Warn("missing user ID in token context", "handler", "SignOut")
		return httperr.Fail(httperr.ErrUserNotAuthenticated)
	}

	userID, err := bson.ObjectIDFromHex(userIDStr.(string))
	if err != nil {
		logger.L().Warn("invalid user ID format", "handler", "SignOut", "userID", userIDStr, "error", err)
		return httperr.Fail(httperr.ErrInvalidUserID)
	}

	var req auth.SignOutRequest
	if err := c.BodyParser(&req); err != nil {
		logger.L().Warn("failed to parse signout request body", "handler", "SignOut", "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.L().Warn("signout request validation failed", "handler", "SignOut", "error", err)
		return httperr.InvalidInput(err)
	}

	if err := h.authService.SignOut(c.Context(), userID, req); err != nil {
		logger.L().Error("signout service failed", "handler", "SignOut", "userID", userID.Hex(), "error", err)
		return httperr.Fail(httperr.ErrInternal)
	}

	return c.JSON(map[string]string{"message": "Successfully signed out"})
}

// SignOutAll handles user sign out from all devices
func (h *Handlers) SignOutAll(c *fiber.Ctx) error {
	userIDStr := c.Locals("userID")
	if userIDStr == nil {
		logger.L().Warn("missing user ID in token context", "handler", "SignOutAll")
		return httperr.Fail(httperr.ErrUserNotAuthenticated)
	}

	userID, err := bson.ObjectIDFromHex(userIDStr.(string))
	if err != nil {
		logger.L().Warn("invalid user ID format", "handler", "SignOutAll", "userID", userIDStr, "error", err)
		return httperr.Fail(httperr.ErrInvalidUserID)
	}

	revoked, err := h.authService.SignOutAll(c.Context(), userID)
	if err != nil {
		logger.L().Error("signout all service failed", "handler", "SignOutAll", "userID", userID.Hex(), "error", err)
		return httperr.Fail(httperr.InternalError(err.Error()))
	}

	return c.JSON(fiber.Map{
		"message":        "Signed out everywhere",
		"sessions_ended": revoked,
	})
}
