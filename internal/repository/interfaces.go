package repository

import (
	"context"

	"recanto_moriah/internal/domain/models"

	"github.com/google/uuid"
)

// ContentRepository is the storage contract shared by every content kind.
type ContentRepository interface {
	List(ctx context.Context, res models.Resource) ([]models.Row, error)
	ListPublished(ctx context.Context, res models.Resource, extended bool) ([]models.Row, error)
	LatestPublished(ctx context.Context, res models.Resource) (*models.Row, error)
	Latest(ctx context.Context, res models.Resource) (*models.Row, error)
	GetByID(ctx context.Context, res models.Resource, id uuid.UUID) (models.Row, error)
	Insert(ctx context.Context, res models.Resource, values map[string]interface{}) (models.Row, error)
	UpdateFields(ctx context.Context, res models.Resource, id uuid.UUID, updates map[string]interface{}) (models.Row, error)
	SoftDelete(ctx context.Context, res models.Resource, id uuid.UUID) (models.Row, error)
	SoftDeleteAlbumImages(ctx context.Context, albumID uuid.UUID) (int64, error)
	SetPublished(ctx context.Context, res models.Resource, id *uuid.UUID, publish bool) ([]uuid.UUID, error)
}
