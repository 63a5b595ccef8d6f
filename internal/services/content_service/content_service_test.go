package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"recanto_moriah/internal/domain/models"
	"recanto_moriah/internal/transport/http/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockContentRepository struct {
	mock.Mock
}

func (m *MockContentRepository) List(ctx context.Context, res models.Resource) ([]models.Row, error) {
	args := m.Called(ctx, res)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Row), args.Error(1)
}

func (m *MockContentRepository) ListPublished(ctx context.Context, res models.Resource, extended bool) ([]models.Row, error) {
	args := m.Called(ctx, res, extended)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Row), args.Error(1)
}

func (m *MockContentRepository) LatestPublished(ctx context.Context, res models.Resource) (*models.Row, error) {
	args := m.Called(ctx, res)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Row), args.Error(1)
}

func (m *MockContentRepository) Latest(ctx context.Context, res models.Resource) (*models.Row, error) {
	args := m.Called(ctx, res)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Row), args.Error(1)
}

func (m *MockContentRepository) GetByID(ctx context.Context, res models.Resource, id uuid.UUID) (models.Row, error) {
	args := m.Called(ctx, res, id)
	return args.Get(0).(models.Row), args.Error(1)
}

func (m *MockContentRepository) Insert(ctx context.Context, res models.Resource, values map[string]interface{}) (models.Row, error) {
	args := m.Called(ctx, res, values)
	return args.Get(0).(models.Row), args.Error(1)
}

func (m *MockContentRepository) UpdateFields(ctx context.Context, res models.Resource, id uuid.UUID, updates map[string]interface{}) (models.Row, error) {
	args := m.Called(ctx, res, id, updates)
	return args.Get(0).(models.Row), args.Error(1)
}

func (m *MockContentRepository) SoftDelete(ctx context.Context, res models.Resource, id uuid.UUID) (models.Row, error) {
	args := m.Called(ctx, res, id)
	return args.Get(0).(models.Row), args.Error(1)
}

func (m *MockContentRepository) SoftDeleteAlbumImages(ctx context.Context, albumID uuid.UUID) (int64, error) {
	args := m.Called(ctx, albumID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockContentRepository) SetPublished(ctx context.Context, res models.Resource, id *uuid.UUID, publish bool) ([]uuid.UUID, error) {
	args := m.Called(ctx, res, id, publish)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func TestContentService_Create(t *testing.T) {
	ctx := context.Background()
	log := slog.Default()

	rowID := uuid.MustParse("f9e4a2c1-7b0d-4f7e-9f36-6f2a0c5d8e11")

	tests := []struct {
		name      string
		res       models.Resource
		payload   map[string]interface{}
		mockSetup func(repo *MockContentRepository)
		wantErr   bool
		errField  string
	}{
		{
			name: "hero slide created as draft, publish state in payload ignored",
			res:  models.ResourceHeroSlides,
			payload: map[string]interface{}{
				"image_url":    "https://cdn.example.com/hero.jpg",
				"title":        "Welcome",
				"is_published": true,
			},
			mockSetup: func(repo *MockContentRepository) {
				repo.On("Insert", ctx, models.ResourceHeroSlides, mock.MatchedBy(func(values map[string]interface{}) bool {
					_, hasPublish := values["is_published"]
					return !hasPublish && values["image_url"] == "https://cdn.example.com/hero.jpg"
				})).Return(models.Row{ID: rowID}, nil).Once()
			},
		},
		{
			name:    "missing required field is rejected",
			res:     models.ResourceHeroSlides,
			payload: map[string]interface{}{"title": "no image"},
			mockSetup: func(repo *MockContentRepository) {
			},
			wantErr:  true,
			errField: "image_url",
		},
		{
			name: "unknown field is rejected",
			res:  models.ResourceBenefitCards,
			payload: map[string]interface{}{
				"icon_key": "leaf",
				"title":    "Nature",
				"color":    "green",
			},
			mockSetup: func(repo *MockContentRepository) {
			},
			wantErr:  true,
			errField: "color",
		},
		{
			name: "order must be a non-negative integer",
			res:  models.ResourceBenefitCards,
			payload: map[string]interface{}{
				"icon_key": "leaf",
				"title":    "Nature",
				"order":    float64(-1),
			},
			mockSetup: func(repo *MockContentRepository) {
			},
			wantErr:  true,
			errField: "order",
		},
		{
			name: "order rejected on unordered resource",
			res:  models.ResourceContacts,
			payload: map[string]interface{}{
				"name":  "Maria",
				"order": float64(3),
			},
			mockSetup: func(repo *MockContentRepository) {
			},
			wantErr:  true,
			errField: "order",
		},
		{
			name: "malformed album uuid is rejected",
			res:  models.ResourceGalleryImages,
			payload: map[string]interface{}{
				"album_id": "not-a-uuid",
				"url":      "https://cdn.example.com/a.jpg",
				"alt":      "a",
			},
			mockSetup: func(repo *MockContentRepository) {
			},
			wantErr:  true,
			errField: "album_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockContentRepository)
			tt.mockSetup(repo)
			service := NewContentService(log, repo)

			row, err := service.Create(ctx, tt.res, tt.payload)

			if tt.wantErr {
				var vErr *ValidationError
				require.ErrorAs(t, err, &vErr)
				found := false
				for _, f := range vErr.Fields {
					if f.Field == tt.errField {
						found = true
					}
				}
				assert.True(t, found, "expected a validation error on %q, got %v", tt.errField, vErr.Fields)
			} else {
				require.NoError(t, err)
				assert.Equal(t, rowID, row.ID)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestContentService_Create_SingletonUpsert(t *testing.T) {
	ctx := context.Background()
	repo := new(MockContentRepository)
	service := NewContentService(slog.Default(), repo)

	existingID := uuid.New()
	existing := &models.Row{ID: existingID}

	repo.On("Latest", ctx, models.ResourceSiteSettings).Return(existing, nil).Once()
	repo.On("UpdateFields", ctx, models.ResourceSiteSettings, existingID, mock.MatchedBy(func(values map[string]interface{}) bool {
		return values["primary_color"] == "#2f4f2f"
	})).Return(models.Row{ID: existingID}, nil).Once()

	row, err := service.Create(ctx, models.ResourceSiteSettings, map[string]interface{}{
		"primary_color": "#2f4f2f",
	})

	require.NoError(t, err)
	assert.Equal(t, existingID, row.ID)
	repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestContentService_Create_SingletonFirstRow(t *testing.T) {
	ctx := context.Background()
	repo := new(MockContentRepository)
	service := NewContentService(slog.Default(), repo)

	newID := uuid.New()
	repo.On("Latest", ctx, models.ResourceContactInfo).Return(nil, nil).Once()
	repo.On("Insert", ctx, models.ResourceContactInfo, mock.Anything).Return(models.Row{ID: newID}, nil).Once()

	row, err := service.Create(ctx, models.ResourceContactInfo, map[string]interface{}{
		"phone": "+55 11 99999-0000",
	})

	require.NoError(t, err)
	assert.Equal(t, newID, row.ID)
	repo.AssertExpectations(t)
}

func TestContentService_Update(t *testing.T) {
	ctx := context.Background()
	rowID := uuid.New()

	t.Run("patches only provided fields", func(t *testing.T) {
		repo := new(MockContentRepository)
		service := NewContentService(slog.Default(), repo)

		repo.On("UpdateFields", ctx, models.ResourceTestimonials, rowID, mock.MatchedBy(func(updates map[string]interface{}) bool {
			_, hasName := updates["name"]
			return len(updates) == 1 && !hasName && updates["rating"] == 5
		})).Return(models.Row{ID: rowID}, nil).Once()

		_, err := service.Update(ctx, models.ResourceTestimonials, rowID, map[string]interface{}{
			"rating": float64(5),
		})

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("payload of only readonly keys is rejected", func(t *testing.T) {
		repo := new(MockContentRepository)
		service := NewContentService(slog.Default(), repo)

		_, err := service.Update(ctx, models.ResourceTestimonials, rowID, map[string]interface{}{
			"is_published": true,
			"created_at":   "2026-01-01T00:00:00Z",
		})

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		repo.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestContentService_Delete_AlbumCascade(t *testing.T) {
	ctx := context.Background()
	repo := new(MockContentRepository)
	service := NewContentService(slog.Default(), repo)

	albumID := uuid.New()
	repo.On("SoftDelete", ctx, models.ResourceGalleryAlbums, albumID).
		Return(models.Row{ID: albumID}, nil).Once()
	repo.On("SoftDeleteAlbumImages", ctx, albumID).
		Return(int64(4), nil).Once()

	resp, err := service.Delete(ctx, models.ResourceGalleryAlbums, albumID)

	require.NoError(t, err)
	assert.Equal(t, albumID, resp.ID)
	assert.Equal(t, int64(4), resp.CascadedImages)
	repo.AssertExpectations(t)
}

func TestContentService_Delete_CascadeFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	repo := new(MockContentRepository)
	service := NewContentService(slog.Default(), repo)

	albumID := uuid.New()
	repo.On("SoftDelete", ctx, models.ResourceGalleryAlbums, albumID).
		Return(models.Row{ID: albumID}, nil).Once()
	repo.On("SoftDeleteAlbumImages", ctx, albumID).
		Return(int64(0), errors.New("connection reset")).Once()

	resp, err := service.Delete(ctx, models.ResourceGalleryAlbums, albumID)

	require.NoError(t, err)
	assert.Equal(t, albumID, resp.ID)
	assert.Zero(t, resp.CascadedImages)
	repo.AssertExpectations(t)
}

func TestContentService_SetPublished(t *testing.T) {
	ctx := context.Background()
	repo := new(MockContentRepository)
	service := NewContentService(slog.Default(), repo)

	rowID := uuid.New()
	repo.On("SetPublished", ctx, models.ResourceHeroSlides, &rowID, true).
		Return([]uuid.UUID{rowID}, nil).Once()

	resp, err := service.SetPublished(ctx, models.ResourceHeroSlides, &rowID, dto.ActionPublish)

	require.NoError(t, err)
	assert.Equal(t, "hero-slides", resp.Resource)
	assert.Equal(t, dto.ActionPublish, resp.Action)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, []uuid.UUID{rowID}, resp.IDs)
	repo.AssertExpectations(t)
}

func TestContentService_PublishAll_FailSoft(t *testing.T) {
	ctx := context.Background()
	repo := new(MockContentRepository)
	service := NewContentService(slog.Default(), repo)

	for _, res := range models.PublishAllResources {
		res := res
		if res == models.ResourceTestimonials {
			repo.On("SetPublished", ctx, res, (*uuid.UUID)(nil), true).
				Return(nil, errors.New("relation is locked")).Once()
			continue
		}
		repo.On("SetPublished", ctx, res, (*uuid.UUID)(nil), true).
			Return([]uuid.UUID{uuid.New(), uuid.New()}, nil).Once()
	}

	report := service.PublishAll(ctx)

	require.Len(t, report.Results, len(models.PublishAllResources))
	assert.Equal(t, len(models.PublishAllResources), report.Summary.TotalResources)
	assert.Equal(t, len(models.PublishAllResources)-1, report.Summary.SuccessfulResources)
	assert.Equal(t, 2*(len(models.PublishAllResources)-1), report.Summary.TotalItems)

	for _, res := range report.Results {
		if res.Resource == string(models.ResourceTestimonials) {
			assert.False(t, res.Success)
			assert.Equal(t, "publish failed", res.Error)
			assert.NotContains(t, res.Error, "locked", "store detail must not leak into the report")
		} else {
			assert.True(t, res.Success)
			assert.Equal(t, 2, res.Count)
		}
	}
	repo.AssertExpectations(t)
}

func TestContentService_PublishAll_SkipsModeratedKinds(t *testing.T) {
	for _, res := range models.PublishAllResources {
		assert.NotEqual(t, models.ResourceContacts, res)
		assert.NotEqual(t, models.ResourceSchedules, res)
	}
}
