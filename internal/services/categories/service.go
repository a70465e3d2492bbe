package categories

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"note-keep/internal/utils/sanitize"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Service handles category business logic
type Service struct {
	repo  Repository
	notes NotesMaintainer
	log   *slog.Logger
}

// NewService creates a new categories service
func NewService(repo Repository, notes NotesMaintainer, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		notes: notes,
		log:   log,
	}
}

// CreateCategoryRequest represents a category creation request
type CreateCategoryRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=100" example:"Work"`
	Color string `json:"color" validate:"omitempty,hexcolor,len=7" example:"#3B82F6"`
}

// UpdateCategoryRequest represents a category update request
type UpdateCategoryRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=1,max=100" example:"Work"`
	Color *string `json:"color,omitempty" validate:"omitempty,hexcolor,len=7" example:"#FF6B6B"`
}

// ListCategoriesRequest represents a list categories request
type ListCategoriesRequest struct {
	Search   string `query:"search" validate:"omitempty,max=100" example:"work"`
	Ordering string `query:"ordering" validate:"omitempty,oneof=name -name created_at -created_at" example:"name"`
}

// CategoryResponse represents a single category response
type CategoryResponse struct {
	Category *CategoryWithCount `json:"category"`
}

// ListCategoriesResponse represents a list of categories response
type ListCategoriesResponse struct {
	Categories []*CategoryWithCount `json:"categories"`
}

// Create creates a new category owned by the user
func (s *Service) Create(ctx context.Context, userID bson.ObjectID, req CreateCategoryRequest) (*CategoryResponse, error) {
	color := req.Color
	if color == "" {
		color = DefaultColor
	}

	now := time.Now().UTC()
	category := &Category{
		ID:        bson.NewObjectID(),
		UserID:    userID,
		Name:      sanitize.Clean(req.Name),
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, category); err != nil {
		if errors.Is(err, ErrDuplicateName) {
			return nil, ErrDuplicateName
		}
		s.log.Error(ErrCreateCategory.Error(), "error", err, "user_id", userID.Hex())
		return nil, ErrCreateCategory
	}

	return &CategoryResponse{Category: &CategoryWithCount{Category: *category}}, nil
}

// List retrieves the user's categories with their non-archived note counts
func (s *Service) List(ctx context.Context, userID bson.ObjectID, req ListCategoriesRequest) (*ListCategoriesResponse, error) {
	cats, err := s.repo.List(ctx, userID, req)
	if err != nil {
		s.log.Error(ErrListCategories.Error(), "error", err, "user_id", userID.Hex())
		return nil, ErrListCategories
	}

	counts, err := s.notes.CountActiveByCategory(ctx, userID)
	if err != nil {
		s.log.Error(ErrListCategories.Error(), "error", err, "user_id", userID.Hex())
		return nil, ErrListCategories
	}

	out := make([]*CategoryWithCount, 0, len(cats))
	for _, c := range cats {
		out = append(out, &CategoryWithCount{Category: *c, NotesCount: counts[c.ID]})
	}

	return &ListCategoriesResponse{Categories: out}, nil
}

// Get retrieves a single category owned by the user. Lookup is owner-scoped,
// so another user's category reads as not found.
func (s *Service) Get(ctx context.Context, userID, categoryID bson.ObjectID) (*CategoryResponse, error) {
	category, err := s.repo.GetOwned(ctx, userID, categoryID)
	if err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		s.log.Error(ErrListCategories.Error(), "error", err, "user_id", userID.Hex(), "category_id", categoryID.Hex())
		return nil, ErrListCategories
	}

	counts, err := s.notes.CountActiveByCategory(ctx, userID)
	if err != nil {
		s.log.Error(ErrListCategories.Error(), "error", err, "user_id", userID.Hex())
		return nil, ErrListCategories
	}

	return &CategoryResponse{Category: &CategoryWithCount{Category: *category, NotesCount: counts[category.ID]}}, nil
}

// requireOwned fetches a category without owner scoping and checks ownership,
// so the mutation paths can distinguish not-found from forbidden.
func (s *Service) requireOwned(ctx context.Context, userID, categoryID bson.ObjectID) (*Category, error) {
	category, err := s.repo.Get(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if category.UserID != userID {
		return nil, ErrForbidden
	}
	return category, nil
}

// Update applies a partial update to a category owned by the user and
// re-checks the (user, name) uniqueness invariant.
func (s *Service) Update(ctx context.Context, userID, categoryID bson.ObjectID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	if _, err := s.requireOwned(ctx, userID, categoryID); err != nil {
		if errors.Is(err, ErrCategoryNotFound) || errors.Is(err, ErrForbidden) {
			return nil, err
		}
		s.log.Error(ErrUpdateCategory.Error(), "error", err, "user_id", userID.Hex(), "category_id", categoryID.Hex())
		return nil, ErrUpdateCategory
	}

	patch := UpdateCategory{Color: req.Color}
	if req.Name != nil {
		cleaned := sanitize.Clean(*req.Name)
		patch.Name = &cleaned
	}

	updated, err := s.repo.Update(ctx, categoryID, patch)
	if err != nil {
		if errors.Is(err, ErrDuplicateName) || errors.Is(err, ErrCategoryNotFound) {
			return nil, err
		}
		s.log.Error(ErrUpdateCategory.Error(), "error", err, "user_id", userID.Hex(), "category_id", categoryID.Hex())
		return nil, ErrUpdateCategory
	}

	counts, err := s.notes.CountActiveByCategory(ctx, userID)
	if err != nil {
		s.log.Error(ErrUpdateCategory.Error(), "error", err, "user_id", userID.Hex())
		return nil, ErrUpdateCategory
	}

	return &CategoryResponse{Category: &CategoryWithCount{Category: *updated, NotesCount: counts[updated.ID]}}, nil
}

// Delete removes a category owned by the user. Notes referencing it are kept
// and detached (category set to null), never deleted.
func (s *Service) Delete(ctx context.Context, userID, categoryID bson.ObjectID) error {
	if _, err := s.requireOwned(ctx, userID, categoryID); err != nil {
		if errors.Is(err, ErrCategoryNotFound) || errors.Is(err, ErrForbidden) {
			return err
		}
		s.log.Error(ErrDeleteCategory.Error(), "error", err, "user_id", userID.Hex(), "category_id", categoryID.Hex())
		return ErrDeleteCategory
	}

	// Unlink before delete so no note is left pointing at a missing category.
	cleared, err := s.notes.ClearCategory(ctx, userID, categoryID)
	if err != nil {
		s.log.Error(ErrDeleteCategory.Error(), "error", err, "user_id", userID.Hex(), "category_id", categoryID.Hex())
		return ErrDeleteCategory
	}

	if err := s.repo.Delete(ctx, categoryID); err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return ErrCategoryNotFound
		}
		s.log.Error(ErrDeleteCategory.Error(), "error", err, "user_id", userID.Hex(), "category_id", categoryID.Hex())
		return ErrDeleteCategory
	}

	s.log.Info("category deleted", "user_id", userID.Hex(), "category_id", categoryID.Hex(), "notes_detached", cleared)

	return nil
}

// ProvisionDefaults creates the default categories for a freshly signed-up
// user. Duplicates are skipped so a retried sign-up stays idempotent.
func (s *Service) ProvisionDefaults(ctx context.Context, userID bson.ObjectID) error {
	now := time.Now().UTC()
	for _, def := range DefaultCategories {
		category := &Category{
			ID:        bson.NewObjectID(),
			UserID:    userID,
			Name:      def.Name,
			Color:     def.Color,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.Create(ctx, category); err != nil {
			if errors.Is(err, ErrDuplicateName) {
				continue
			}
			s.log.Error(ErrCreateCategory.Error(), "error", err, "user_id", userID.Hex(), "name", def.Name)
			return ErrCreateCategory
		}
	}
	return nil
}
