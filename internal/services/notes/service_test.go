package notes

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"note-keep/internal/services/categories"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var silentLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

var (
	ErrRepositoryMsg = "repository error"
	ErrDBMsg         = "db error"
	UpdateNoteMsg    = "notes.UpdateNote"
	mockNote         = mock.AnythingOfType("*notes.Note")
	mockListReq      = mock.AnythingOfType("notes.ListNotesRequest")
)

// MockNotesRepo is a mock implementation of Repository
type MockNotesRepo struct {
	mock.Mock
}

func (m *MockNotesRepo) Create(ctx context.Context, note *Note) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockNotesRepo) FindByID(ctx context.Context, userID, noteID bson.ObjectID) (*Note, error) {
	args := m.Called(ctx, userID, noteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Note), args.Error(1)
}

func (m *MockNotesRepo) List(ctx context.Context, userID bson.ObjectID, req ListNotesRequest) ([]*Note, int64, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*Note), args.Get(1).(int64), args.Error(2)
}

func (m *MockNotesRepo) Update(ctx context.Context, userID, noteID bson.ObjectID, patch UpdateNote) (*Note, error) {
	args := m.Called(ctx, userID, noteID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Note), args.Error(1)
}

func (m *MockNotesRepo) Delete(ctx context.Context, userID, noteID bson.ObjectID) error {
	args := m.Called(ctx, userID, noteID)
	return args.Error(0)
}

func (m *MockNotesRepo) Toggle(ctx context.Context, userID, noteID bson.ObjectID, field string) (*Note, error) {
	args := m.Called(ctx, userID, noteID, field)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Note), args.Error(1)
}

func (m *MockNotesRepo) Counts(ctx context.Context, userID bson.ObjectID) (Counts, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(Counts), args.Error(1)
}

// MockCatalog is a mock implementation of CategoryDirectory
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) GetOwned(ctx context.Context, userID, id bson.ObjectID) (*categories.Category, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*categories.Category), args.Error(1)
}

func (m *MockCatalog) MapByUser(ctx context.Context, userID bson.ObjectID) (map[bson.ObjectID]*categories.Category, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[bson.ObjectID]*categories.Category), args.Error(1)
}

func (m *MockCatalog) CountByUser(ctx context.Context, userID bson.ObjectID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// newServiceWithMocks wires together a Service + fresh mocks and lets the
// caller register expectations before the test starts.
func newServiceWithMocks(
	t *testing.T,
	setup func(repo *MockNotesRepo, catalog *MockCatalog),
) (*Service, *MockNotesRepo, *MockCatalog) {
	t.Helper()

	repo := new(MockNotesRepo)
	catalog := new(MockCatalog)

	if setup != nil {
		setup(repo, catalog)
	}

	svc := NewService(repo, catalog, silentLogger)
	return svc, repo, catalog
}

func emptyCatalog(catalog *MockCatalog, userID bson.ObjectID) {
	catalog.On("MapByUser", mock.Anything, userID).
		Return(map[bson.ObjectID]*categories.Category{}, nil)
}

func TestServiceCreate(t *testing.T) {
	userID := bson.NewObjectID()
	categoryID := bson.NewObjectID()

	category := &categories.Category{
		ID:     categoryID,
		UserID: userID,
		Name:   "Personal",
		Color:  "#45B7D1",
	}

	tests := []struct {
		name    string
		req     CreateNoteRequest
		setup   func(*MockNotesRepo, *MockCatalog)
		wantErr bool
		errMsg  string
		check   func(*testing.T, *NoteResponse)
	}{
		{
			name: "successful creation with defaults",
			req: CreateNoteRequest{
				Title:   "Test Note",
				Content: "Test content",
			},
			setup: func(repo *MockNotesRepo, catalog *MockCatalog) {
				repo.On("Create", mock.Anything, mockNote).Return(nil)
			},
			check: func(t *testing.T, resp *NoteResponse) {
				assert.Equal(t, PriorityMedium, resp.Note.Priority)
				assert.False(t, resp.Note.IsPinned)
				assert.False(t, resp.Note.IsArchived)
				assert.Nil(t, resp.Note.CategoryID)
				assert.Nil(t, resp.Note.CategoryName)
				assert.Equal(t, []string{}, resp.Note.TagList)
			},
		},
		{
			name: "tag list wins over tags string",
			req: CreateNoteRequest{
				Title:   "Tagged",
				Tags:    "ignored",
				TagList: []string{" work ", "", "errand"},
			},
			setup: func(repo *MockNotesRepo, catalog *MockCatalog) {
				repo.On("Create", mock.Anything, mockNote).Return(nil)
			},
			check: func(t *testing.T, resp *NoteResponse) {
				assert.Equal(t, "work, errand", resp.Note.Tags)
				assert.Equal(t, []string{"work", "errand"}, resp.Note.TagList)
			},
		},
		{
			name: "owned category is linked and denormalized",
			req: CreateNoteRequest{
				Title:    "Categorized",
				Category: categoryID.Hex(),
				Priority: PriorityHigh,
			},
			setup: func(repo *MockNotesRepo, catalog *MockCatalog) {
				catalog.On("GetOwned", mock.Anything, userID, categoryID).Return(category, nil)
				repo.On("Create", mock.Anything, mockNote).Return(nil)
			},
			check: func(t *testing.T, resp *NoteResponse) {
				assert.Equal(t, PriorityHigh, resp.Note.Priority)
				assert.Equal(t, categoryID, *resp.Note.CategoryID)
				assert.Equal(t, "Personal", *resp.Note.CategoryName)
				assert.Equal(t, "#45B7D1", *resp.Note.CategoryColor)
			},
		},
		{
			name: "foreign category reads as invalid",
			req: CreateNoteRequest{
				Title:    "Stolen",
				Category: categoryID.Hex(),
			},
			setup: func(repo *MockNotesRepo, catalog *MockCatalog) {
				catalog.On("GetOwned", mock.Anything, userID, categoryID).
					Return(nil, categories.ErrCategoryNotFound)
			},
			wantErr: true,
			errMsg:  ErrInvalidCategory.Error(),
		},
		{
			name: ErrRepositoryMsg,
			req: CreateNoteRequest{
				Title: "Test Note",
			},
			setup: func(repo *MockNotesRepo, catalog *MockCatalog) {
				repo.On("Create", mock.Anything, mockNote).Return(errors.New(ErrDBMsg))
			},
			wantErr: true,
			errMsg:  ErrCreateNote.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, catalog := newServiceWithMocks(t, tt.setup)

			resp, err := svc.Create(context.Background(), userID, tt.req)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.Nil(t, resp)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, resp)
				assert.NotNil(t, resp.Note)
				assert.Equal(t, userID, resp.Note.UserID)
				assert.False(t, resp.Note.ID.IsZero())
				assert.False(t, resp.Note.CreatedAt.IsZero())
				if tt.check != nil {
					tt.check(t, resp)
				}
			}

			repo.AssertExpectations(t)
			catalog.AssertExpectations(t)
		})
	}
}

func TestServiceList(t *testing.T) {
	userID := bson.NewObjectID()
	categoryID := bson.NewObjectID()
	now := time.Now().UTC()

	category := &categories.Category{
		ID:     categoryID,
		UserID: userID,
		Name:   "School",
		Color:  "#4ECDC4",
	}

	mockNotes := []*Note{
		{
			ID:         bson.NewObjectID(),
			UserID:     userID,
			Title:      "Note 1",
			CategoryID: &categoryID,
			Priority:   PriorityHigh,
			IsPinned:   true,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		{
			ID:        bson.NewObjectID(),
			UserID:    userID,
			Title:     "Note 2",
			Priority:  PriorityLow,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	tests := []struct {
		name    string
		req     ListNotesRequest
		setup   func(*MockNotesRepo, *MockCatalog)
		wantErr bool
		errMsg  string
		check   func(*testing.T, *ListNotesResponse)
	}{
		{
			name: "default limit applied and category fields decorated",
			req:  ListNotesRequest{},
			setup: func(repo *MockNotesRepo, catalog *MockCatalog) {
				expectedReq := ListNotesRequest{Limit: DefaultLimit}
				repo.On("List", mock.Anything, userID, expectedReq).Return(mockNotes, int64(2), nil)
				catalog.On("MapByUser", mock.Anything, userID).
					Return(map[bson.ObjectID]*categories.Category{categoryID: category}, nil)
			},
			check: func(t *testing.T, resp *ListNotesResponse) {
				assert.Len(t, resp.Notes, 2)
				assert.Equal(t, int64(2), resp.TotalCount)
				assert.False(t, resp.HasMore)
				assert.Equal(t, DefaultLimit, resp.Limit)
				assert.Equal(t, "School", *resp.Notes[0].CategoryName)
				assert.Nil(t, resp.Notes[1].CategoryName)
			},
		},
		{
			name: "has_more when a page remains",
			req:  ListNotesRequest{Limit: 2},
			setup: func(repo *MockNotesRepo, catalog *MockCatalog) {
				expectedReq := ListNotesRequest{Limit: 2}
				repo.On("List", mock.Anything, userID, expectedReq).Return(mockNotes, int64(5), nil)
				emptyCatalog(catalog, userID)
			},
			check: func(t *testing.T, resp *ListNotesResponse) {
				assert.True(t, resp.HasMore)
				assert.Equal(t, int64(5), resp.TotalCount)
			},
		},
		{
			name: "offset counts toward has_more",
			req:  ListNotesRequest{Limit: 2, Offset: 3},
			setup: func(repo *MockNotesRepo, catalog *MockCatalog) {
				expectedReq := ListNotesRequest{Limit: 2, Offset: 3}
				repo.On("List", mock.Anything, userID, expectedReq).Return(mockNotes, int64(5), nil)
				emptyCatalog(catalog, userID)
			},
			check: func(t *testing.T, resp *ListNotesResponse) {
				assert.False(t, resp.HasMore) // 3 + 2 == 5
				assert.Equal(t, 3, resp.Offset)
			},
		},
		{
			name: "invalid category filter surfaces as such",
			req:  ListNotesRequest{Category: "ffffffffffffffffffffffff"},
			setup: func(repo *MockNotesRepo, catalog *MockCatalog) {
				repo.On("List", mock.Anything, userID, mockListReq).Return(nil, int64(0), ErrInvalidCategory)
			},
			wantErr: true,
			errMsg:  ErrInvalidCategory.Error(),
		},
		{
			name: ErrRepositoryMsg,
			req:  ListNotesRequest{},
			setup: func(repo *MockNotesRepo, catalog *MockCatalog) {
				repo.On("List", mock.Anything, userID, mockListReq).Return(nil, int64(0), errors.New(ErrDBMsg))
			},
			wantErr: true,
			errMsg:  ErrListNotes.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, catalog := newServiceWithMocks(t, tt.setup)

			resp, err := svc.List(context.Background(), userID, tt.req)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.Nil(t, resp)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, resp)
				if tt.check != nil {
					tt.check(t, resp)
				}
			}

			repo.AssertExpectations(t)
			catalog.AssertExpectations(t)
		})
	}
}

func TestServiceListArchivedForcesFlag(t *testing.T) {
	userID := bson.NewObjectID()

	svc, repo, catalog := newServiceWithMocks(t, func(r *MockNotesRepo, c *MockCatalog) {
		r.On("List", mock.Anything, userID, mock.MatchedBy(func(req ListNotesRequest) bool {
			return req.IsArchived != nil && *req.IsArchived && req.Limit == DefaultLimit
		})).Return([]*Note{}, int64(0), nil)
		emptyCatalog(c, userID)
	})

	// A caller-supplied is_archived=false must not leak through.
	no := false
	resp, err := svc.ListArchived(context.Background(), userID, ListNotesRequest{IsArchived: &no})

	assert.NoError(t, err)
	assert.NotNil(t, resp)
	repo.AssertExpectations(t)
	catalog.AssertExpectations(t)
}

func TestServiceListPinnedIsUnpaginated(t *testing.T) {
	userID := bson.NewObjectID()
	now := time.Now().UTC()

	pinned := make([]*Note, 0, 150)
	for i := 0; i < 150; i++ {
		pinned = append(pinned, &Note{
			ID:        bson.NewObjectID(),
			UserID:    userID,
			Title:     "Pinned",
			IsPinned:  true,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	svc, repo, catalog := newServiceWithMocks(t, func(r *MockNotesRepo, c *MockCatalog) {
		r.On("List", mock.Anything, userID, mock.MatchedBy(func(req ListNotesRequest) bool {
			return req.IsPinned != nil && *req.IsPinned && req.Limit == UnlimitedLimit && req.Offset == 0
		})).Return(pinned, int64(150), nil)
		emptyCatalog(c, userID)
	})

	resp, err := svc.ListPinned(context.Background(), userID, ListNotesRequest{Limit: 10, Offset: 40})

	assert.NoError(t, err)
	assert.Len(t, resp.Notes, 150)
	assert.False(t, resp.HasMore)
	repo.AssertExpectations(t)
	catalog.AssertExpectations(t)
}

func TestListNotesRequestLimitBounds(t *testing.T) {
	v := validator.New()

	tests := []struct {
		name    string
		limit   int
		wantErr bool
	}{
		{"zero falls back to the default", 0, false},
		{"one accepted", 1, false},
		{"max accepted", MaxLimit, false},
		{"negative rejected at the boundary", -1, true},
		{"above max rejected", MaxLimit + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(ListNotesRequest{Limit: tt.limit})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestServiceUpdate(t *testing.T) {
	userID := bson.NewObjectID()
	noteID := bson.NewObjectID()
	categoryID := bson.NewObjectID()
	title := "Updated Title"
	now := time.Now().UTC()

	category := &categories.Category{
		ID:     categoryID,
		UserID: userID,
		Name:   "Personal",
		Color:  "#45B7D1",
	}

	updatedNote := &Note{
		ID:        noteID,
		UserID:    userID,
		Title:     title,
		Priority:  PriorityMedium,
		CreatedAt: now.Add(-time.Hour),
		UpdatedAt: now,
	}

	tests := []struct {
		name    string
		req     UpdateNoteRequest
		setup   func(*MockNotesRepo, *MockCatalog)
		wantErr bool
		errMsg  string
	}{
		{
			name: "successful update",
			req: UpdateNoteRequest{
				Title: &title,
			},
			setup: func(repo *MockNotesRepo, catalog *MockCatalog) {
				repo.On("Update", mock.Anything, userID, noteID, mock.MatchedBy(func(patch UpdateNote) bool {
					return patch.Title != nil && *patch.Title == title
				})).Return(updatedNote, nil)
			},
		},
		{
			name: "empty category string clears the link",
			req: UpdateNoteRequest{
				Category: strPtr(""),
			},
			setup: func(repo *MockNotesRepo, catalog *MockCatalog) {
				repo.On("Update", mock.Anything, userID, noteID, mock.MatchedBy(func(patch UpdateNote) bool {
					return patch.ClearCategory && patch.CategoryID == nil
				})).Return(updatedNote, nil)
			},
		},
		{
			name: "category ownership checked on update",
			req: UpdateNoteRequest{
				Category: strPtr(categoryID.Hex()),
			},
			setup: func(repo *MockNotesRepo, catalog *MockCatalog) {
				catalog.On("GetOwned", mock.Anything, userID, categoryID).Return(category, nil)
				repo.On("Update", mock.Anything, userID, noteID, mock.MatchedBy(func(patch UpdateNote) bool {
					return patch.CategoryID != nil && *patch.CategoryID == categoryID
				})).Return(updatedNote, nil)
			},
		},
		{
			name: "tag list canonicalized into patch",
			req: UpdateNoteRequest{
				TagList: []string{"a", " b "},
			},
			setup: func(repo *MockNotesRepo, catalog *MockCatalog) {
				repo.On("Update", mock.Anything, userID, noteID, mock.MatchedBy(func(patch UpdateNote) bool {
					return patch.Tags != nil && *patch.Tags == "a, b"
				})).Return(updatedNote, nil)
			},
		},
		{
			name: ErrNoteNotFound.Error(),
			req: UpdateNoteRequest{
				Title: &title,
			},
			setup: func(repo *MockNotesRepo, catalog *MockCatalog) {
				repo.On("Update", mock.Anything, userID, noteID, mock.AnythingOfType(UpdateNoteMsg)).Return(nil, ErrNoteNotFound)
			},
			wantErr: true,
			errMsg:  ErrNoteNotFound.Error(),
		},
		{
			name: ErrRepositoryMsg,
			req: UpdateNoteRequest{
				Title: &title,
			},
			setup: func(repo *MockNotesRepo, catalog *MockCatalog) {
				repo.On("Update", mock.Anything, userID, noteID, mock.AnythingOfType(UpdateNoteMsg)).Return(nil, errors.New(ErrDBMsg))
			},
			wantErr: true,
			errMsg:  ErrUpdateNote.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, catalog := newServiceWithMocks(t, tt.setup)

			resp, err := svc.Update(context.Background(), userID, noteID, tt.req)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.Nil(t, resp)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, resp)
				assert.NotNil(t, resp.Note)
			}

			repo.AssertExpectations(t)
			catalog.AssertExpectations(t)
		})
	}
}

func strPtr(s string) *string { return &s }

func TestServiceDelete(t *testing.T) {
	userID := bson.NewObjectID()
	noteID := bson.NewObjectID()

	tests := []struct {
		name    string
		setup   func(*MockNotesRepo, *MockCatalog)
		wantErr bool
		errMsg  string
	}{
		{
			name: "successful deletion",
			setup: func(repo *MockNotesRepo, catalog *MockCatalog) {
				repo.On("Delete", mock.Anything, userID, noteID).Return(nil)
			},
		},
		{
			name: ErrNoteNotFound.Error(),
			setup: func(repo *MockNotesRepo, catalog *MockCatalog) {
				repo.On("Delete", mock.Anything, userID, noteID).Return(ErrNoteNotFound)
			},
			wantErr: true,
			errMsg:  ErrNoteNotFound.Error(),
		},
		{
			name: ErrRepositoryMsg,
			setup: func(repo *MockNotesRepo, catalog *MockCatalog) {
				repo.On("Delete", mock.Anything, userID, noteID).Return(errors.New(ErrDBMsg))
			},
			wantErr: true,
			errMsg:  ErrDeleteNote.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, catalog := newServiceWithMocks(t, tt.setup)

			err := svc.Delete(context.Background(), userID, noteID)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}

			repo.AssertExpectations(t)
			catalog.AssertExpectations(t)
		})
	}
}

func TestServiceToggles(t *testing.T) {
	userID := bson.NewObjectID()
	noteID := bson.NewObjectID()
	now := time.Now().UTC()

	makeToggled := func(pinned, archived bool) *Note {
		return &Note{
			ID:         noteID,
			UserID:     userID,
			Title:      "Note",
			IsPinned:   pinned,
			IsArchived: archived,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	}

	t.Run("pin on", func(t *testing.T) {
		svc, repo, _ := newServiceWithMocks(t, func(r *MockNotesRepo, _ *MockCatalog) {
			r.On("Toggle", mock.Anything, userID, noteID, FieldPinned).Return(makeToggled(true, false), nil)
		})

		resp, err := svc.TogglePin(context.Background(), userID, noteID)

		assert.NoError(t, err)
		assert.True(t, *resp.IsPinned)
		assert.Nil(t, resp.IsArchived)
		assert.Equal(t, "Note pinned successfully", resp.Message)
		repo.AssertExpectations(t)
	})

	t.Run("pin off", func(t *testing.T) {
		svc, repo, _ := newServiceWithMocks(t, func(r *MockNotesRepo, _ *MockCatalog) {
			r.On("Toggle", mock.Anything, userID, noteID, FieldPinned).Return(makeToggled(false, false), nil)
		})

		resp, err := svc.TogglePin(context.Background(), userID, noteID)

		assert.NoError(t, err)
		assert.False(t, *resp.IsPinned)
		assert.Equal(t, "Note unpinned successfully", resp.Message)
		repo.AssertExpectations(t)
	})

	t.Run("archive on", func(t *testing.T) {
		svc, repo, _ := newServiceWithMocks(t, func(r *MockNotesRepo, _ *MockCatalog) {
			r.On("Toggle", mock.Anything, userID, noteID, FieldArchived).Return(makeToggled(false, true), nil)
		})

		resp, err := svc.ToggleArchive(context.Background(), userID, noteID)

		assert.NoError(t, err)
		assert.True(t, *resp.IsArchived)
		assert.Nil(t, resp.IsPinned)
		assert.Equal(t, "Note archived successfully", resp.Message)
		repo.AssertExpectations(t)
	})

	t.Run("toggle missing note", func(t *testing.T) {
		svc, repo, _ := newServiceWithMocks(t, func(r *MockNotesRepo, _ *MockCatalog) {
			r.On("Toggle", mock.Anything, userID, noteID, FieldPinned).Return(nil, ErrNoteNotFound)
		})

		resp, err := svc.TogglePin(context.Background(), userID, noteID)

		assert.ErrorIs(t, err, ErrNoteNotFound)
		assert.Nil(t, resp)
		repo.AssertExpectations(t)
	})
}

func TestServiceCrossUserSafety(t *testing.T) {
	user2 := bson.NewObjectID()
	noteID := bson.NewObjectID()

	// The repo scopes every lookup by user, so a foreign note surfaces as
	// not-found on every operation, never as forbidden.
	t.Run("get", func(t *testing.T) {
		svc, repo, _ := newServiceWithMocks(t, func(r *MockNotesRepo, _ *MockCatalog) {
			r.On("FindByID", mock.Anything, user2, noteID).Return(nil, ErrNoteNotFound)
		})

		resp, err := svc.Get(context.Background(), user2, noteID)
		assert.ErrorIs(t, err, ErrNoteNotFound)
		assert.Nil(t, resp)
		repo.AssertExpectations(t)
	})

	t.Run("update", func(t *testing.T) {
		svc, repo, _ := newServiceWithMocks(t, func(r *MockNotesRepo, _ *MockCatalog) {
			r.On("Update", mock.Anything, user2, noteID, mock.AnythingOfType(UpdateNoteMsg)).Return(nil, ErrNoteNotFound)
		})

		title := "Hacked"
		resp, err := svc.Update(context.Background(), user2, noteID, UpdateNoteRequest{Title: &title})
		assert.ErrorIs(t, err, ErrNoteNotFound)
		assert.Nil(t, resp)
		repo.AssertExpectations(t)
	})

	t.Run("delete", func(t *testing.T) {
		svc, repo, _ := newServiceWithMocks(t, func(r *MockNotesRepo, _ *MockCatalog) {
			r.On("Delete", mock.Anything, user2, noteID).Return(ErrNoteNotFound)
		})

		err := svc.Delete(context.Background(), user2, noteID)
		assert.ErrorIs(t, err, ErrNoteNotFound)
		repo.AssertExpectations(t)
	})
}

func TestServiceStats(t *testing.T) {
	userID := bson.NewObjectID()

	t.Run("aggregates repo counts and category count", func(t *testing.T) {
		svc, repo, catalog := newServiceWithMocks(t, func(r *MockNotesRepo, c *MockCatalog) {
			r.On("Counts", mock.Anything, userID).Return(Counts{Total: 10, Active: 7, Pinned: 2, Archived: 3}, nil)
			c.On("CountByUser", mock.Anything, userID).Return(int64(4), nil)
		})

		resp, err := svc.Stats(context.Background(), userID)

		assert.NoError(t, err)
		assert.Equal(t, int64(10), resp.TotalNotes)
		assert.Equal(t, int64(7), resp.ActiveNotes)
		assert.Equal(t, int64(2), resp.PinnedNotes)
		assert.Equal(t, int64(3), resp.ArchivedNotes)
		assert.Equal(t, int64(4), resp.CategoriesCount)
		repo.AssertExpectations(t)
		catalog.AssertExpectations(t)
	})

	t.Run(ErrRepositoryMsg, func(t *testing.T) {
		svc, repo, _ := newServiceWithMocks(t, func(r *MockNotesRepo, _ *MockCatalog) {
			r.On("Counts", mock.Anything, userID).Return(Counts{}, errors.New(ErrDBMsg))
		})

		resp, err := svc.Stats(context.Background(), userID)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), ErrStats.Error())
		assert.Nil(t, resp)
		repo.AssertExpectations(t)
	})
}

func TestServiceHTMLSanitization(t *testing.T) {
	userID := bson.NewObjectID()

	tests := []struct {
		name       string
		dirtyTitle string
		cleanTitle string
	}{
		{
			name:       "strips script tags",
			dirtyTitle: `<script>alert('xss')</script>Meeting Notes`,
			cleanTitle: "Meeting Notes",
		},
		{
			name:       "strips all HTML tags but preserves text",
			dirtyTitle: `<div><p>Hello <b>world</b></p></div>`,
			cleanTitle: "Hello world",
		},
		{
			name:       "preserves markdown-like syntax",
			dirtyTitle: `# Heading with **bold** text`,
			cleanTitle: "# Heading with **bold** text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var capturedNote *Note
			svc, repo, _ := newServiceWithMocks(t, func(r *MockNotesRepo, _ *MockCatalog) {
				r.On("Create", mock.Anything, mockNote).Run(func(args mock.Arguments) {
					capturedNote = args.Get(1).(*Note)
				}).Return(nil)
			})

			resp, err := svc.Create(context.Background(), userID, CreateNoteRequest{Title: tt.dirtyTitle})

			assert.NoError(t, err)
			assert.NotNil(t, resp)
			assert.NotNil(t, capturedNote)
			assert.Equal(t, tt.cleanTitle, capturedNote.Title)
			repo.AssertExpectations(t)
		})
	}
}
