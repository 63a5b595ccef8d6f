package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"recanto_moriah/internal/domain/models"
	"recanto_moriah/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// pgUndefinedColumn is the SQLSTATE the store raises when a query selects a
// column the deployed schema does not have.
const pgUndefinedColumn = "42703"

type ContentRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewContentRepo(db *pgxpool.Pool) *ContentRepo {
	return &ContentRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// selectColumns builds the column list for a kind: common publication columns
// first, then the resource-specific ones.
func selectColumns(spec models.ResourceSpec, extended bool) []string {
	cols := []string{"id"}
	if spec.Ordered {
		cols = append(cols, `"order"`)
	}
	cols = append(cols, "is_published", "published_at", "created_at", "updated_at", "deleted_at")
	return append(cols, spec.FieldNames(extended)...)
}

// listOrder is the deterministic listing order: display order first, then
// created_at and id as tie-breakers; recency for unordered kinds.
func listOrder(spec models.ResourceSpec) []string {
	if spec.Ordered {
		return []string{`"order" ASC`, "created_at ASC", "id ASC"}
	}
	return []string{"created_at DESC", "id DESC"}
}

// scanContentRow scans one result row into a models.Row, allocating nullable
// holders per field kind.
func scanContentRow(spec models.ResourceSpec, extended bool, scan func(...interface{}) error) (models.Row, error) {
	row := models.Row{Fields: make(map[string]interface{})}

	dests := []interface{}{&row.ID}
	var ord sql.NullInt64
	if spec.Ordered {
		dests = append(dests, &ord)
	}
	dests = append(dests, &row.IsPublished, &row.PublishedAt, &row.CreatedAt, &row.UpdatedAt, &row.DeletedAt)

	fields := spec.AllFields(extended)
	holders := make([]interface{}, len(fields))
	for i, f := range fields {
		switch f.Kind {
		case models.FieldInt:
			holders[i] = new(sql.NullInt64)
		case models.FieldBool:
			holders[i] = new(sql.NullBool)
		case models.FieldUUID:
			holders[i] = new(uuid.NullUUID)
		default:
			holders[i] = new(sql.NullString)
		}
		dests = append(dests, holders[i])
	}

	if err := scan(dests...); err != nil {
		return models.Row{}, err
	}

	if spec.Ordered && ord.Valid {
		v := int(ord.Int64)
		row.Order = &v
	}
	for i, f := range fields {
		switch h := holders[i].(type) {
		case *sql.NullInt64:
			if h.Valid {
				row.Fields[f.Name] = int(h.Int64)
			} else {
				row.Fields[f.Name] = nil
			}
		case *sql.NullBool:
			if h.Valid {
				row.Fields[f.Name] = h.Bool
			} else {
				row.Fields[f.Name] = nil
			}
		case *uuid.NullUUID:
			if h.Valid {
				row.Fields[f.Name] = h.UUID
			} else {
				row.Fields[f.Name] = nil
			}
		case *sql.NullString:
			if h.Valid {
				row.Fields[f.Name] = h.String
			} else {
				row.Fields[f.Name] = nil
			}
		}
	}

	return row, nil
}

func resolveSpec(res models.Resource) (models.ResourceSpec, error) {
	spec, ok := models.Spec(res)
	if !ok {
		return models.ResourceSpec{}, storage.ErrUnknownResource
	}
	return spec, nil
}

// asStorageErr maps store-specific failures onto the package sentinels.
func asStorageErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUndefinedColumn {
		return fmt.Errorf("%s: %w", pgErr.Message, storage.ErrUndefinedColumn)
	}
	return err
}

func (r *ContentRepo) queryRows(ctx context.Context, op string, spec models.ResourceSpec, extended bool, qb sq.SelectBuilder) ([]models.Row, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, asStorageErr(err))
	}
	defer rows.Close()

	out := []models.Row{}
	for rows.Next() {
		row, err := scanContentRow(spec, extended, rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, asStorageErr(err))
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, asStorageErr(err))
	}

	return out, nil
}

// List returns every non-deleted row of a kind in its listing order.
func (r *ContentRepo) List(ctx context.Context, res models.Resource) ([]models.Row, error) {
	const op = "repository.ContentRepo.List"

	spec, err := resolveSpec(res)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	qb := r.sb.Select(selectColumns(spec, false)...).
		From(spec.Table).
		Where(sq.Eq{"deleted_at": nil}).
		OrderBy(listOrder(spec)...)

	return r.queryRows(ctx, op, spec, false, qb)
}

// ListPublished returns the publicly visible rows of a kind. With extended
// set it selects the optional schema columns as well; an undefined-column
// failure surfaces as storage.ErrUndefinedColumn so the caller can retry
// with the base set.
func (r *ContentRepo) ListPublished(ctx context.Context, res models.Resource, extended bool) ([]models.Row, error) {
	const op = "repository.ContentRepo.ListPublished"

	spec, err := resolveSpec(res)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(spec.ExtendedFields) == 0 {
		extended = false
	}

	qb := r.sb.Select(selectColumns(spec, extended)...).
		From(spec.Table).
		Where(sq.Eq{"is_published": true}).
		Where(sq.Eq{"deleted_at": nil}).
		OrderBy(listOrder(spec)...)

	return r.queryRows(ctx, op, spec, extended, qb)
}

// LatestPublished returns the most recently published non-deleted row of a
// singleton kind, or nil when none exists.
func (r *ContentRepo) LatestPublished(ctx context.Context, res models.Resource) (*models.Row, error) {
	const op = "repository.ContentRepo.LatestPublished"

	spec, err := resolveSpec(res)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	qb := r.sb.Select(selectColumns(spec, false)...).
		From(spec.Table).
		Where(sq.Eq{"is_published": true}).
		Where(sq.Eq{"deleted_at": nil}).
		OrderBy("published_at DESC NULLS LAST", "created_at DESC").
		Limit(1)

	rows, err := r.queryRows(ctx, op, spec, false, qb)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// Latest returns the newest non-deleted row of a kind regardless of publish
// state. The singleton upsert path uses it to find the row to update.
func (r *ContentRepo) Latest(ctx context.Context, res models.Resource) (*models.Row, error) {
	const op = "repository.ContentRepo.Latest"

	spec, err := resolveSpec(res)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	qb := r.sb.Select(selectColumns(spec, false)...).
		From(spec.Table).
		Where(sq.Eq{"deleted_at": nil}).
		OrderBy("created_at DESC", "id DESC").
		Limit(1)

	rows, err := r.queryRows(ctx, op, spec, false, qb)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// GetByID returns one non-deleted row.
func (r *ContentRepo) GetByID(ctx context.Context, res models.Resource, id uuid.UUID) (models.Row, error) {
	const op = "repository.ContentRepo.GetByID"

	spec, err := resolveSpec(res)
	if err != nil {
		return models.Row{}, fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := r.sb.Select(selectColumns(spec, false)...).
		From(spec.Table).
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"deleted_at": nil}).
		ToSql()
	if err != nil {
		return models.Row{}, fmt.Errorf("%s: %w", op, err)
	}

	row, err := scanContentRow(spec, false, r.db.QueryRow(ctx, query, args...).Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Row{}, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return models.Row{}, fmt.Errorf("%s: %w", op, asStorageErr(err))
	}

	return row, nil
}

// orderDefaultExpr computes the create-time display order in the INSERT
// itself, so concurrent creates cannot race a separate max-order read.
// Siblings are the non-deleted rows of the kind, scoped to the album for
// gallery images.
func orderDefaultExpr(spec models.ResourceSpec, values map[string]interface{}) sq.Sqlizer {
	if albumID, ok := values["album_id"]; ok && spec.Resource == models.ResourceGalleryImages {
		return sq.Expr(
			`(SELECT COALESCE(MAX("order"), -1) + 1 FROM `+spec.Table+` WHERE deleted_at IS NULL AND album_id = ?)`,
			albumID,
		)
	}
	return sq.Expr(`(SELECT COALESCE(MAX("order"), -1) + 1 FROM ` + spec.Table + ` WHERE deleted_at IS NULL)`)
}

// Insert creates a row in draft state. The "order" key in values, when
// present, is used verbatim; otherwise ordered kinds get max+1 atomically.
func (r *ContentRepo) Insert(ctx context.Context, res models.Resource, values map[string]interface{}) (models.Row, error) {
	const op = "repository.ContentRepo.Insert"

	spec, err := resolveSpec(res)
	if err != nil {
		return models.Row{}, fmt.Errorf("%s: %w", op, err)
	}

	extended := false
	for _, f := range spec.ExtendedFields {
		if _, ok := values[f.Name]; ok {
			extended = true
			break
		}
	}

	cols := []string{}
	vals := []interface{}{}
	for _, f := range spec.AllFields(extended) {
		if v, ok := values[f.Name]; ok {
			cols = append(cols, f.Name)
			vals = append(vals, v)
		}
	}
	if spec.Ordered {
		cols = append(cols, `"order"`)
		if v, ok := values["order"]; ok {
			vals = append(vals, v)
		} else {
			vals = append(vals, orderDefaultExpr(spec, values))
		}
	}
	// New rows always start as drafts, whatever the payload said.
	cols = append(cols, "is_published")
	vals = append(vals, false)

	query, args, err := r.sb.Insert(spec.Table).
		Columns(cols...).
		Values(vals...).
		Suffix("RETURNING " + strings.Join(selectColumns(spec, extended), ", ")).
		ToSql()
	if err != nil {
		return models.Row{}, fmt.Errorf("%s: %w", op, err)
	}

	row, err := scanContentRow(spec, extended, r.db.QueryRow(ctx, query, args...).Scan)
	if err != nil {
		return models.Row{}, fmt.Errorf("%s: %w", op, asStorageErr(err))
	}

	return row, nil
}

// UpdateFields patches only the given columns on a non-deleted row and
// stamps updated_at. Absent fields stay untouched.
func (r *ContentRepo) UpdateFields(ctx context.Context, res models.Resource, id uuid.UUID, updates map[string]interface{}) (models.Row, error) {
	const op = "repository.ContentRepo.UpdateFields"

	spec, err := resolveSpec(res)
	if err != nil {
		return models.Row{}, fmt.Errorf("%s: %w", op, err)
	}
	if len(updates) == 0 {
		return models.Row{}, fmt.Errorf("%s: no fields to update", op)
	}

	ub := r.sb.Update(spec.Table).
		Set("updated_at", time.Now().UTC())
	for field, value := range updates {
		if field == "order" {
			field = `"order"`
		}
		ub = ub.Set(field, value)
	}

	query, args, err := ub.
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"deleted_at": nil}).
		Suffix("RETURNING " + strings.Join(selectColumns(spec, false), ", ")).
		ToSql()
	if err != nil {
		return models.Row{}, fmt.Errorf("%s: %w", op, err)
	}

	row, err := scanContentRow(spec, false, r.db.QueryRow(ctx, query, args...).Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Row{}, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return models.Row{}, fmt.Errorf("%s: %w", op, asStorageErr(err))
	}

	return row, nil
}

// SoftDelete stamps deleted_at on a row. The publish flag is left as is;
// visibility is governed by deleted_at alone from here on.
func (r *ContentRepo) SoftDelete(ctx context.Context, res models.Resource, id uuid.UUID) (models.Row, error) {
	const op = "repository.ContentRepo.SoftDelete"

	spec, err := resolveSpec(res)
	if err != nil {
		return models.Row{}, fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := r.sb.Update(spec.Table).
		Set("deleted_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"deleted_at": nil}).
		Suffix("RETURNING " + strings.Join(selectColumns(spec, false), ", ")).
		ToSql()
	if err != nil {
		return models.Row{}, fmt.Errorf("%s: %w", op, err)
	}

	row, err := scanContentRow(spec, false, r.db.QueryRow(ctx, query, args...).Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Row{}, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return models.Row{}, fmt.Errorf("%s: %w", op, asStorageErr(err))
	}

	return row, nil
}

// SoftDeleteAlbumImages cascades an album soft-delete to its images and
// returns how many were stamped.
func (r *ContentRepo) SoftDeleteAlbumImages(ctx context.Context, albumID uuid.UUID) (int64, error) {
	const op = "repository.ContentRepo.SoftDeleteAlbumImages"

	query, args, err := r.sb.Update("gallery_images").
		Set("deleted_at", time.Now().UTC()).
		Where(sq.Eq{"album_id": albumID}).
		Where(sq.Eq{"deleted_at": nil}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, asStorageErr(err))
	}

	return tag.RowsAffected(), nil
}

// SetPublished flips the publish flag for one row (id given) or every
// non-deleted row of the kind (id nil), returning the affected ids.
// Publishing stamps published_at; unpublishing leaves it as a record of the
// last time the row was live.
func (r *ContentRepo) SetPublished(ctx context.Context, res models.Resource, id *uuid.UUID, publish bool) ([]uuid.UUID, error) {
	const op = "repository.ContentRepo.SetPublished"

	spec, err := resolveSpec(res)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ub := r.sb.Update(spec.Table).
		Set("is_published", publish).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"deleted_at": nil})
	if publish {
		ub = ub.Set("published_at", time.Now().UTC())
	}
	if id != nil {
		ub = ub.Where(sq.Eq{"id": *id})
	}

	query, args, err := ub.Suffix("RETURNING id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, asStorageErr(err))
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var rowID uuid.UUID
		if err := rows.Scan(&rowID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ids = append(ids, rowID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, asStorageErr(err))
	}

	if id != nil && len(ids) == 0 {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return ids, nil
}
