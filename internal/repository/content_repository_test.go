package repository

import (
	"errors"
	"testing"
	"time"

	"recanto_moriah/internal/domain/models"
	"recanto_moriah/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSpec(t *testing.T, res models.Resource) models.ResourceSpec {
	t.Helper()
	spec, ok := models.Spec(res)
	require.True(t, ok)
	return spec
}

func TestSelectColumns(t *testing.T) {
	t.Run("ordered kind carries the quoted order column", func(t *testing.T) {
		cols := selectColumns(mustSpec(t, models.ResourceHeroSlides), false)

		assert.Equal(t, []string{
			"id", `"order"`, "is_published", "published_at", "created_at", "updated_at", "deleted_at",
			"image_url", "title", "subtitle", "cta_text", "cta_link",
		}, cols)
	})

	t.Run("unordered kind has no order column", func(t *testing.T) {
		cols := selectColumns(mustSpec(t, models.ResourceContacts), false)

		assert.NotContains(t, cols, `"order"`)
	})

	t.Run("extended selects the optional gallery columns last", func(t *testing.T) {
		spec := mustSpec(t, models.ResourceGalleryImages)

		base := selectColumns(spec, false)
		ext := selectColumns(spec, true)

		assert.NotContains(t, base, "video_url")
		assert.Equal(t, append(base, "video_url", "video_id", "is_video"), ext)
	})
}

func TestListOrder(t *testing.T) {
	assert.Equal(t,
		[]string{`"order" ASC`, "created_at ASC", "id ASC"},
		listOrder(mustSpec(t, models.ResourceBenefitCards)),
	)
	assert.Equal(t,
		[]string{"created_at DESC", "id DESC"},
		listOrder(mustSpec(t, models.ResourceContacts)),
	)
}

func TestOrderDefaultExpr(t *testing.T) {
	t.Run("scopes to the kind's table", func(t *testing.T) {
		spec := mustSpec(t, models.ResourceHeroSlides)

		query, args, err := orderDefaultExpr(spec, nil).ToSql()

		require.NoError(t, err)
		assert.Equal(t, `(SELECT COALESCE(MAX("order"), -1) + 1 FROM hero_slides WHERE deleted_at IS NULL)`, query)
		assert.Empty(t, args)
	})

	t.Run("gallery images scope to their album", func(t *testing.T) {
		spec := mustSpec(t, models.ResourceGalleryImages)
		albumID := uuid.New()

		query, args, err := orderDefaultExpr(spec, map[string]interface{}{"album_id": albumID}).ToSql()

		require.NoError(t, err)
		assert.Contains(t, query, "AND album_id = ?")
		assert.Equal(t, []interface{}{albumID}, args)
	})
}

func TestScanContentRow(t *testing.T) {
	spec := mustSpec(t, models.ResourceTestimonials)
	rowID := uuid.New()
	now := time.Now().UTC()

	t.Run("null rating scans as nil field", func(t *testing.T) {
		// id, "order", is_published, published_at, created_at, updated_at,
		// deleted_at, name, role, text, rating
		scan := fakeScan(rowID, int64(2), true, &now, now, now, nil, "Ana", nil, "Adorei", nil)

		row, err := scanContentRow(spec, false, scan)

		require.NoError(t, err)
		assert.Equal(t, rowID, row.ID)
		require.NotNil(t, row.Order)
		assert.Equal(t, 2, *row.Order)
		assert.True(t, row.IsPublished)
		assert.Equal(t, "Ana", row.Fields["name"])
		assert.Nil(t, row.Fields["role"])
		assert.Nil(t, row.Fields["rating"])
	})

	t.Run("scan failure propagates", func(t *testing.T) {
		wantErr := errors.New("conn closed")
		_, err := scanContentRow(spec, false, func(...interface{}) error { return wantErr })

		require.ErrorIs(t, err, wantErr)
	})
}

// fakeScan feeds canned column values through the same destinations the pgx
// row scan would fill.
func fakeScan(values ...interface{}) func(...interface{}) error {
	return func(dests ...interface{}) error {
		if len(dests) != len(values) {
			return errors.New("destination count mismatch")
		}
		for i, v := range values {
			switch d := dests[i].(type) {
			case *uuid.UUID:
				*d = v.(uuid.UUID)
			case *bool:
				*d = v.(bool)
			case *time.Time:
				*d = v.(time.Time)
			case **time.Time:
				if v != nil {
					*d = v.(*time.Time)
				}
			default:
				if err := scanNullable(d, v); err != nil {
					return err
				}
			}
		}
		return nil
	}
}

func scanNullable(dest, v interface{}) error {
	type scanner interface{ Scan(interface{}) error }
	s, ok := dest.(scanner)
	if !ok {
		return errors.New("unsupported destination")
	}
	switch tv := v.(type) {
	case nil:
		return s.Scan(nil)
	case int64:
		return s.Scan(tv)
	case string:
		return s.Scan(tv)
	case bool:
		return s.Scan(tv)
	case uuid.UUID:
		return s.Scan(tv.String())
	default:
		return errors.New("unsupported value type")
	}
}

func TestAsStorageErr(t *testing.T) {
	t.Run("undefined column maps to the sentinel", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: pgUndefinedColumn, Message: `column "video_url" does not exist`}

		err := asStorageErr(pgErr)

		assert.ErrorIs(t, err, storage.ErrUndefinedColumn)
	})

	t.Run("other store errors pass through unchanged", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23505", Message: "duplicate key"}

		assert.Equal(t, error(pgErr), asStorageErr(pgErr))
	})
}
