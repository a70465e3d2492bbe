package notes

import (
	"context"
	"errors"

	"note-keep/cmd/server/handlers/handlerutil"
	"note-keep/cmd/server/handlers/httperr"
	"note-keep/internal/services/notes"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Service defines the interface for notes service
type Service interface {
	Create(ctx context.Context, userID bson.ObjectID, req notes.CreateNoteRequest) (*notes.NoteResponse, error)
	Get(ctx context.Context, userID, noteID bson.ObjectID) (*notes.NoteResponse, error)
	List(ctx context.Context, userID bson.ObjectID, req notes.ListNotesRequest) (*notes.ListNotesResponse, error)
	ListArchived(ctx context.Context, userID bson.ObjectID, req notes.ListNotesRequest) (*notes.ListNotesResponse, error)
	ListPinned(ctx context.Context, userID bson.ObjectID, req notes.ListNotesRequest) (*notes.ListNotesResponse, error)
	Update(ctx context.Context, userID, noteID bson.ObjectID, req notes.UpdateNoteRequest) (*notes.NoteResponse, error)
	Delete(ctx context.Context, userID, noteID bson.ObjectID) error
	TogglePin(ctx context.Context, userID, noteID bson.ObjectID) (*notes.ToggleResponse, error)
	ToggleArchive(ctx context.Context, userID, noteID bson.ObjectID) (*notes.ToggleResponse, error)
	Stats(ctx context.Context, userID bson.ObjectID) (*notes.StatsResponse, error)
}

// Handlers contains the notes HTTP handlers
type Handlers struct {
	service   Service
	validator *validator.Validate
}

// NewHandlers creates new notes handlers
func NewHandlers(service Service, validator *validator.Validate) *Handlers {
	return &Handlers{
		service:   service,
		validator: validator,
	}
}

// Create handles note creation
func (h *Handlers) Create(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	var req notes.CreateNoteRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Create"); err != nil {
		return err
	}

	resp, err := h.service.Create(c.Context(), userID, req)
	if err != nil {
		if errors.Is(err, notes.ErrInvalidCategory) {
			return httperr.InvalidInput(err)
		}
		return handlerutil.HandleServiceError(err, "Create", userID, nil, notes.ErrNoteNotFound)
	}

	return c.Status(201).JSON(resp)
}

// Get handles single note retrieval
func (h *Handlers) Get(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	noteID, err := handlerutil.ExtractID(c, userID, "Get", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	resp, err := h.service.Get(c.Context(), userID, noteID)
	if err != nil {
		return handlerutil.HandleServiceError(err, "Get", userID, &noteID, notes.ErrNoteNotFound)
	}

	return c.JSON(resp)
}

// List handles notes listing with filtering, search, sorting and pagination
func (h *Handlers) List(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	var req notes.ListNotesRequest
	if err := handlerutil.ParseAndValidateQuery(c, &req, h.validator, "List"); err != nil {
		return err
	}

	resp, err := h.service.List(c.Context(), userID, req)
	if err != nil {
		if errors.Is(err, notes.ErrInvalidCategory) {
			return httperr.InvalidInput(err)
		}
		return handlerutil.HandleServiceError(err, "List", userID, nil, notes.ErrNoteNotFound)
	}

	return c.JSON(resp)
}

// ListArchived handles the archived notes listing
func (h *Handlers) ListArchived(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	var req notes.ListNotesRequest
	if err := handlerutil.ParseAndValidateQuery(c, &req, h.validator, "ListArchived"); err != nil {
		return err
	}

	resp, err := h.service.ListArchived(c.Context(), userID, req)
	if err != nil {
		return handlerutil.HandleServiceError(err, "ListArchived", userID, nil, notes.ErrNoteNotFound)
	}

	return c.JSON(resp)
}

// ListPinned handles the pinned notes listing
func (h *Handlers) ListPinned(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	var req notes.ListNotesRequest
	if err := handlerutil.ParseAndValidateQuery(c, &req, h.validator, "ListPinned"); err != nil {
		return err
	}

	resp, err := h.service.ListPinned(c.Context(), userID, req)
	if err != nil {
		return handlerutil.HandleServiceError(err, "ListPinned", userID, nil, notes.ErrNoteNotFound)
	}

	return c.JSON(resp)
}

// Update handles note updates
func (h *Handlers) Update(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	noteID, err := handlerutil.ExtractID(c, userID, "Update", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	var req notes.UpdateNoteRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Update"); err != nil {
		return err
	}

	resp, err := h.service.Update(c.Context(), userID, noteID, req)
	if err != nil {
		if errors.Is(err, notes.ErrInvalidCategory) {
			return httperr.InvalidInput(err)
		}
		return handlerutil.HandleServiceError(err, "Update", userID, &noteID, notes.ErrNoteNotFound)
	}

	return c.JSON(resp)
}

// Delete handles note deletion
func (h *Handlers) Delete(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	noteID, err := handlerutil.ExtractID(c, userID, "Delete", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	err = h.service.Delete(c.Context(), userID, noteID)
	if err != nil {
		return handlerutil.HandleServiceError(err, "Delete", userID, &noteID, notes.ErrNoteNotFound)
	}

	return c.SendStatus(204)
}

// TogglePin handles atomic pin flips
func (h *Handlers) TogglePin(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	noteID, err := handlerutil.ExtractID(c, userID, "TogglePin", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	resp, err := h.service.TogglePin(c.Context(), userID, noteID)
	if err != nil {
		return handlerutil.HandleServiceError(err, "TogglePin", userID, &noteID, notes.ErrNoteNotFound)
	}

	return c.JSON(resp)
}

// ToggleArchive handles atomic archive flips
func (h *Handlers) ToggleArchive(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	noteID, err := handlerutil.ExtractID(c, userID, "ToggleArchive", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	resp, err := h.service.ToggleArchive(c.Context(), userID, noteID)
	if err != nil {
		return handlerutil.HandleServiceError(err, "ToggleArchive", userID, &noteID, notes.ErrNoteNotFound)
	}

	return c.JSON(resp)
}

// Stats handles the per-user counters endpoint
func (h *Handlers) Stats(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	resp, err := h.service.Stats(c.Context(), userID)
	if err != nil {
		return handlerutil.HandleServiceError(err, "Stats", userID, nil, notes.ErrNoteNotFound)
	}

	return c.JSON(resp)
}
