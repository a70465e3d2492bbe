package notes

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"note-keep/internal/services/categories"
	"note-keep/internal/utils/sanitize"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// DefaultLimit and MaxLimit bound list pagination. A limit of UnlimitedLimit
// disables pagination (the pinned listing returns the full matching set).
const (
	DefaultLimit   = 50
	MaxLimit       = 100
	UnlimitedLimit = -1
)

// Service implements the note query engine: it builds the authorized,
// filtered, ordered, paginated view of a user's notes and the derived
// actions on top of it.
type Service struct {
	repo    Repository
	catalog CategoryDirectory
	log     *slog.Logger
}

// NewService creates a new notes service
func NewService(repo Repository, catalog CategoryDirectory, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		catalog: catalog,
		log:     log,
	}
}

// CreateNoteRequest represents a note creation request. TagList is a
// convenience input canonicalized into the stored tags string; when present
// it wins over Tags.
type CreateNoteRequest struct {
	Title      string   `json:"title" validate:"required,min=1,max=255" example:"Groceries"`
	Content    string   `json:"content" example:"buy milk"`
	Category   string   `json:"category" validate:"omitempty,len=24,hexadecimal" example:"683cdb8aa96ad71e8e075bd2"`
	Priority   string   `json:"priority" validate:"omitempty,oneof=low medium high" example:"medium"`
	IsPinned   bool     `json:"is_pinned"`
	IsArchived bool     `json:"is_archived"`
	Tags       string   `json:"tags" validate:"omitempty,max=255" example:"errand, home"`
	TagList    []string `json:"tag_list" validate:"omitempty,dive,min=1,max=50"`
}

// UpdateNoteRequest represents a partial note update. Nil means unchanged;
// an empty Category string detaches the note from its category.
type UpdateNoteRequest struct {
	Title      *string  `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Content    *string  `json:"content,omitempty"`
	Category   *string  `json:"category,omitempty" validate:"omitempty,len=24,hexadecimal"`
	Priority   *string  `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	IsPinned   *bool    `json:"is_pinned,omitempty"`
	IsArchived *bool    `json:"is_archived,omitempty"`
	Tags       *string  `json:"tags,omitempty" validate:"omitempty,max=255"`
	TagList    []string `json:"tag_list,omitempty" validate:"omitempty,dive,min=1,max=50"`
}

// ListNotesRequest represents a list notes request. All filters combine
// conjunctively; Search is a disjunction over title/content/tags.
type ListNotesRequest struct {
	Category   string `query:"category" validate:"omitempty,len=24,hexadecimal" example:"683cdb8aa96ad71e8e075bd2"`
	Priority   string `query:"priority" validate:"omitempty,oneof=low medium high" example:"high"`
	IsPinned   *bool  `query:"is_pinned"`
	IsArchived *bool  `query:"is_archived"`
	Search     string `query:"search" validate:"omitempty,max=256" example:"milk"`
	Tags       string `query:"tags" validate:"omitempty,max=256" example:"work, errand"`
	Ordering   string `query:"ordering" validate:"omitempty,oneof=title -title created_at -created_at updated_at -updated_at priority -priority" example:"-updated_at"`
	Limit      int    `query:"limit" validate:"omitempty,min=0,max=100" example:"50"`
	Offset     int    `query:"offset" validate:"omitempty,min=0" example:"0"`
}

// NoteResponse represents a single full note response
type NoteResponse struct {
	Note *NoteDetail `json:"note"`
}

// ListNotesResponse represents a list of note summaries
type ListNotesResponse struct {
	Notes      []*NoteSummary `json:"notes"`
	TotalCount int64          `json:"total_count" example:"125"`
	HasMore    bool           `json:"has_more" example:"true"`
	Limit      int            `json:"limit" example:"50"`
	Offset     int            `json:"offset" example:"0"`
}

// ToggleResponse reports the new state of a flipped boolean field
type ToggleResponse struct {
	ID         bson.ObjectID `json:"id"`
	IsPinned   *bool         `json:"is_pinned,omitempty"`
	IsArchived *bool         `json:"is_archived,omitempty"`
	Message    string        `json:"message"`
}

// StatsResponse holds the per-user aggregate counters
type StatsResponse struct {
	TotalNotes      int64 `json:"total_notes"`
	ActiveNotes     int64 `json:"active_notes"`
	PinnedNotes     int64 `json:"pinned_notes"`
	ArchivedNotes   int64 `json:"archived_notes"`
	CategoriesCount int64 `json:"categories_count"`
}

// resolveCategory validates that a category id supplied on a write references
// a category owned by the same user. Any failure collapses to
// ErrInvalidCategory so foreign categories do not leak existence.
func (s *Service) resolveCategory(ctx context.Context, userID bson.ObjectID, raw string) (*categories.Category, error) {
	categoryID, err := bson.ObjectIDFromHex(raw)
	if err != nil {
		return nil, ErrInvalidCategory
	}
	category, err := s.catalog.GetOwned(ctx, userID, categoryID)
	if err != nil {
		return nil, ErrInvalidCategory
	}
	return category, nil
}

// detail assembles the full read model from a note and its (optional) category.
func detail(n *Note, category *categories.Category) *NoteDetail {
	d := &NoteDetail{
		Note:    *n,
		TagList: SplitTags(n.Tags),
	}
	if category != nil {
		d.CategoryName = &category.Name
		d.CategoryColor = &category.Color
	}
	return d
}

// lookupCategory fetches the note's category for denormalized detail fields.
// A missing category (deleted in between) degrades to null fields.
func (s *Service) lookupCategory(ctx context.Context, n *Note) *categories.Category {
	if n.CategoryID == nil {
		return nil
	}
	category, err := s.catalog.GetOwned(ctx, n.UserID, *n.CategoryID)
	if err != nil {
		s.log.Warn("note references unresolvable category", "note_id", n.ID.Hex(), "category_id", n.CategoryID.Hex())
		return nil
	}
	return category
}

// Create creates a new note owned by the user
func (s *Service) Create(ctx context.Context, userID bson.ObjectID, req CreateNoteRequest) (*NoteResponse, error) {
	var category *categories.Category
	var categoryID *bson.ObjectID
	if req.Category != "" {
		var err error
		category, err = s.resolveCategory(ctx, userID, req.Category)
		if err != nil {
			return nil, err
		}
		categoryID = &category.ID
	}

	priority := req.Priority
	if priority == "" {
		priority = PriorityMedium
	}

	tags := sanitize.Clean(req.Tags)
	if req.TagList != nil {
		tags = JoinTags(req.TagList)
	}

	now := time.Now().UTC()
	note := &Note{
		ID:         bson.NewObjectID(),
		UserID:     userID,
		Title:      sanitize.Clean(req.Title),
		Content:    sanitize.Clean(req.Content),
		CategoryID: categoryID,
		Priority:   priority,
		IsPinned:   req.IsPinned,
		IsArchived: req.IsArchived,
		Tags:       tags,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, note); err != nil {
		s.log.Error(ErrCreateNote.Error(), "error", err, "user_id", userID.Hex())
		return nil, ErrCreateNote
	}

	return &NoteResponse{Note: detail(note, category)}, nil
}

// Get retrieves a single note in the user's scoped set
func (s *Service) Get(ctx context.Context, userID, noteID bson.ObjectID) (*NoteResponse, error) {
	note, err := s.repo.FindByID(ctx, userID, noteID)
	if err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			return nil, ErrNoteNotFound
		}
		s.log.Error(ErrGetNote.Error(), "error", err, "user_id", userID.Hex(), "note_id", noteID.Hex())
		return nil, ErrGetNote
	}

	return &NoteResponse{Note: detail(note, s.lookupCategory(ctx, note))}, nil
}

// normalizeListRequest applies pagination defaults
func normalizeListRequest(req *ListNotesRequest) {
	if req.Limit == 0 {
		req.Limit = DefaultLimit
	}
}

// list runs the scoped query and decorates summaries with category fields
func (s *Service) list(ctx context.Context, userID bson.ObjectID, req ListNotesRequest) (*ListNotesResponse, error) {
	normalizeListRequest(&req)

	found, total, err := s.repo.List(ctx, userID, req)
	if err != nil {
		if errors.Is(err, ErrInvalidCategory) {
			return nil, ErrInvalidCategory
		}
		s.log.Error(ErrListNotes.Error(), "error", err, "user_id", userID.Hex())
		return nil, ErrListNotes
	}

	catalog, err := s.catalog.MapByUser(ctx, userID)
	if err != nil {
		s.log.Error(ErrListNotes.Error(), "error", err, "user_id", userID.Hex())
		return nil, ErrListNotes
	}

	summaries := make([]*NoteSummary, 0, len(found))
	for _, n := range found {
		summary := &NoteSummary{
			ID:         n.ID,
			Title:      n.Title,
			CategoryID: n.CategoryID,
			Priority:   n.Priority,
			IsPinned:   n.IsPinned,
			IsArchived: n.IsArchived,
			CreatedAt:  n.CreatedAt,
			UpdatedAt:  n.UpdatedAt,
		}
		if n.CategoryID != nil {
			if category, ok := catalog[*n.CategoryID]; ok {
				summary.CategoryName = &category.Name
				summary.CategoryColor = &category.Color
			}
		}
		summaries = append(summaries, summary)
	}

	hasMore := req.Limit != UnlimitedLimit && int64(req.Offset+len(summaries)) < total

	return &ListNotesResponse{
		Notes:      summaries,
		TotalCount: total,
		HasMore:    hasMore,
		Limit:      req.Limit,
		Offset:     req.Offset,
	}, nil
}

// List retrieves the filtered, ordered, paginated view of the user's notes
func (s *Service) List(ctx context.Context, userID bson.ObjectID, req ListNotesRequest) (*ListNotesResponse, error) {
	return s.list(ctx, userID, req)
}

// ListArchived retrieves the user's archived notes, paginated. Other filters
// still apply on top of the forced archived flag.
func (s *Service) ListArchived(ctx context.Context, userID bson.ObjectID, req ListNotesRequest) (*ListNotesResponse, error) {
	archived := true
	req.IsArchived = &archived
	return s.list(ctx, userID, req)
}

// ListPinned retrieves the user's pinned notes. Unlike the archived listing
// this returns the full matching set, unpaginated (preserved asymmetry).
func (s *Service) ListPinned(ctx context.Context, userID bson.ObjectID, req ListNotesRequest) (*ListNotesResponse, error) {
	pinned := true
	req.IsPinned = &pinned
	req.Limit = UnlimitedLimit
	req.Offset = 0
	return s.list(ctx, userID, req)
}

// buildPatch converts an update request into the whitelist patch, validating
// any category reference against the caller's ownership.
func (s *Service) buildPatch(ctx context.Context, userID bson.ObjectID, req UpdateNoteRequest) (UpdateNote, error) {
	patch := UpdateNote{
		Priority:   req.Priority,
		IsPinned:   req.IsPinned,
		IsArchived: req.IsArchived,
	}

	if req.Title != nil {
		cleaned := sanitize.Clean(*req.Title)
		patch.Title = &cleaned
	}
	if req.Content != nil {
		cleaned := sanitize.Clean(*req.Content)
		patch.Content = &cleaned
	}

	if req.Category != nil {
		if *req.Category == "" {
			patch.ClearCategory = true
		} else {
			category, err := s.resolveCategory(ctx, userID, *req.Category)
			if err != nil {
				return UpdateNote{}, err
			}
			patch.CategoryID = &category.ID
		}
	}

	if req.TagList != nil {
		tags := JoinTags(req.TagList)
		patch.Tags = &tags
	} else if req.Tags != nil {
		tags := sanitize.Clean(*req.Tags)
		patch.Tags = &tags
	}

	return patch, nil
}

// Update applies a partial update to a note in the user's scoped set
func (s *Service) Update(ctx context.Context, userID, noteID bson.ObjectID, req UpdateNoteRequest) (*NoteResponse, error) {
	patch, err := s.buildPatch(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, userID, noteID, patch)
	if err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			s.log.Info("note not found for update", "user_id", userID.Hex(), "note_id", noteID.Hex())
			return nil, ErrNoteNotFound
		}
		s.log.Error(ErrUpdateNote.Error(), "error", err, "user_id", userID.Hex(), "note_id", noteID.Hex())
		return nil, ErrUpdateNote
	}

	return &NoteResponse{Note: detail(updated, s.lookupCategory(ctx, updated))}, nil
}

// Delete deletes a note in the user's scoped set
func (s *Service) Delete(ctx context.Context, userID, noteID bson.ObjectID) error {
	if err := s.repo.Delete(ctx, userID, noteID); err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			s.log.Info("note not found for delete", "user_id", userID.Hex(), "note_id", noteID.Hex())
			return ErrNoteNotFound
		}
		s.log.Error(ErrDeleteNote.Error(), "error", err, "user_id", userID.Hex(), "note_id", noteID.Hex())
		return ErrDeleteNote
	}
	return nil
}

// TogglePin atomically flips is_pinned and returns the new state
func (s *Service) TogglePin(ctx context.Context, userID, noteID bson.ObjectID) (*ToggleResponse, error) {
	note, err := s.toggle(ctx, userID, noteID, FieldPinned)
	if err != nil {
		return nil, err
	}

	message := "Note unpinned successfully"
	if note.IsPinned {
		message = "Note pinned successfully"
	}

	return &ToggleResponse{ID: note.ID, IsPinned: &note.IsPinned, Message: message}, nil
}

// ToggleArchive atomically flips is_archived and returns the new state
func (s *Service) ToggleArchive(ctx context.Context, userID, noteID bson.ObjectID) (*ToggleResponse, error) {
	note, err := s.toggle(ctx, userID, noteID, FieldArchived)
	if err != nil {
		return nil, err
	}

	message := "Note unarchived successfully"
	if note.IsArchived {
		message = "Note archived successfully"
	}

	return &ToggleResponse{ID: note.ID, IsArchived: &note.IsArchived, Message: message}, nil
}

func (s *Service) toggle(ctx context.Context, userID, noteID bson.ObjectID, field string) (*Note, error) {
	note, err := s.repo.Toggle(ctx, userID, noteID, field)
	if err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			s.log.Info("note not found for toggle", "user_id", userID.Hex(), "note_id", noteID.Hex(), "field", field)
			return nil, ErrNoteNotFound
		}
		s.log.Error(ErrToggleNote.Error(), "error", err, "user_id", userID.Hex(), "note_id", noteID.Hex(), "field", field)
		return nil, ErrToggleNote
	}
	return note, nil
}

// Stats returns the user-scoped aggregate counters
func (s *Service) Stats(ctx context.Context, userID bson.ObjectID) (*StatsResponse, error) {
	counts, err := s.repo.Counts(ctx, userID)
	if err != nil {
		s.log.Error(ErrStats.Error(), "error", err, "user_id", userID.Hex())
		return nil, ErrStats
	}

	categoriesCount, err := s.catalog.CountByUser(ctx, userID)
	if err != nil {
		s.log.Error(ErrStats.Error(), "error", err, "user_id", userID.Hex())
		return nil, ErrStats
	}

	return &StatsResponse{
		TotalNotes:      counts.Total,
		ActiveNotes:     counts.Active,
		PinnedNotes:     counts.Pinned,
		ArchivedNotes:   counts.Archived,
		CategoriesCount: categoriesCount,
	}, nil
}
