package categories

import (
	"context"
	"errors"

	"note-keep/cmd/server/handlers/handlerutil"
	"note-keep/cmd/server/handlers/httperr"
	"note-keep/internal/services/categories"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Service defines the interface for categories service
type Service interface {
	Create(ctx context.Context, userID bson.ObjectID, req categories.CreateCategoryRequest) (*categories.CategoryResponse, error)
	List(ctx context.Context, userID bson.ObjectID, req categories.ListCategoriesRequest) (*categories.ListCategoriesResponse, error)
	Get(ctx context.Context, userID, categoryID bson.ObjectID) (*categories.CategoryResponse, error)
	Update(ctx context.Context, userID, categoryID bson.ObjectID, req categories.UpdateCategoryRequest) (*categories.CategoryResponse, error)
	Delete(ctx context.Context, userID, categoryID bson.ObjectID) error
}

// Handlers contains the categories HTTP handlers
type Handlers struct {
	service   Service
	validator *validator.Validate
}

// NewHandlers creates new categories handlers
func NewHandlers(service Service, validator *validator.Validate) *Handlers {
	return &Handlers{
		service:   service,
		validator: validator,
	}
}

// mapMutationError translates category domain errors into HTTP responses.
// Ownership violations come back as 403, unlike notes where a foreign
// resource is indistinguishable from an absent one.
func mapMutationError(err error, handlerName string, userID bson.ObjectID, categoryID *bson.ObjectID) error {
	switch {
	case errors.Is(err, categories.ErrDuplicateName):
		return httperr.Fail(httperr.E{Status: 400, Message: err.Error()})
	case errors.Is(err, categories.ErrForbidden):
		return httperr.Forbidden(err)
	default:
		return handlerutil.HandleServiceError(err, handlerName, userID, categoryID, categories.ErrCategoryNotFound)
	}
}

// Create handles category creation
func (h *Handlers) Create(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	var req categories.CreateCategoryRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Create"); err != nil {
		return err
	}

	resp, err := h.service.Create(c.Context(), userID, req)
	if err != nil {
		return mapMutationError(err, "Create", userID, nil)
	}

	return c.Status(201).JSON(resp)
}

// List handles categories listing with search and ordering
func (h *Handlers) List(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	var req categories.ListCategoriesRequest
	if err := handlerutil.ParseAndValidateQuery(c, &req, h.validator, "List"); err != nil {
		return err
	}

	resp, err := h.service.List(c.Context(), userID, req)
	if err != nil {
		return handlerutil.HandleServiceError(err, "List", userID, nil, categories.ErrCategoryNotFound)
	}

	return c.JSON(resp)
}

// Get handles single category retrieval
func (h *Handlers) Get(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	categoryID, err := handlerutil.ExtractID(c, userID, "Get", categories.ErrCategoryNotFound)
	if err != nil {
		return err
	}

	resp, err := h.service.Get(c.Context(), userID, categoryID)
	if err != nil {
		return handlerutil.HandleServiceError(err, "Get", userID, &categoryID, categories.ErrCategoryNotFound)
	}

	return c.JSON(resp)
}

// Update handles category updates
func (h *Handlers) Update(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	categoryID, err := handlerutil.ExtractID(c, userID, "Update", categories.ErrCategoryNotFound)
	if err != nil {
		return err
	}

	var req categories.UpdateCategoryRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Update"); err != nil {
		return err
	}

	resp, err := h.service.Update(c.Context(), userID, categoryID, req)
	if err != nil {
		return mapMutationError(err, "Update", userID, &categoryID)
	}

	return c.JSON(resp)
}

// Delete handles category deletion
func (h *Handlers) Delete(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	categoryID, err := handlerutil.ExtractID(c, userID, "Delete", categories.ErrCategoryNotFound)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Context(), userID, categoryID); err != nil {
		return mapMutationError(err, "Delete", userID, &categoryID)
	}

	return c.SendStatus(204)
}
