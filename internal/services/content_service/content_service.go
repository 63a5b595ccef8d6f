package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"recanto_moriah/internal/domain/models"
	"recanto_moriah/internal/lib/logger/sl"
	"recanto_moriah/internal/metrics"
	"recanto_moriah/internal/repository"
	"recanto_moriah/internal/transport/http/dto"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// FieldError pinpoints one rejected payload field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError carries field-level detail for a rejected payload. It is
// raised before anything reaches the store.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Reason
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// readonlyKeys are server-owned columns silently dropped from payloads.
// is_published is among them: publish state only changes through the
// publish endpoints.
var readonlyKeys = map[string]bool{
	"id":           true,
	"is_published": true,
	"published_at": true,
	"created_at":   true,
	"updated_at":   true,
	"deleted_at":   true,
}

type ContentService struct {
	log      *slog.Logger
	repo     repository.ContentRepository
	validate *validator.Validate
}

func NewContentService(log *slog.Logger, repo repository.ContentRepository) *ContentService {
	return &ContentService{
		log:      log,
		repo:     repo,
		validate: validator.New(),
	}
}

// coerceField checks a single payload value against its field spec and
// returns the typed value to store.
func (s *ContentService) coerceField(f models.Field, raw interface{}) (interface{}, *FieldError) {
	if raw == nil {
		if f.Required {
			return nil, &FieldError{Field: f.Name, Reason: "required"}
		}
		return nil, nil
	}

	switch f.Kind {
	case models.FieldInt:
		switch v := raw.(type) {
		case float64:
			if v != float64(int(v)) {
				return nil, &FieldError{Field: f.Name, Reason: "must be an integer"}
			}
			return int(v), nil
		case int:
			return v, nil
		default:
			return nil, &FieldError{Field: f.Name, Reason: "must be an integer"}
		}
	case models.FieldBool:
		v, ok := raw.(bool)
		if !ok {
			return nil, &FieldError{Field: f.Name, Reason: "must be a boolean"}
		}
		return v, nil
	case models.FieldUUID:
		str, ok := raw.(string)
		if !ok {
			return nil, &FieldError{Field: f.Name, Reason: "must be a uuid string"}
		}
		id, err := uuid.Parse(str)
		if err != nil {
			return nil, &FieldError{Field: f.Name, Reason: "malformed uuid"}
		}
		return id, nil
	case models.FieldURL:
		str, ok := raw.(string)
		if !ok {
			return nil, &FieldError{Field: f.Name, Reason: "must be a string"}
		}
		if f.Required && str == "" {
			return nil, &FieldError{Field: f.Name, Reason: "required"}
		}
		if str != "" {
			if err := s.validate.Var(str, "url"); err != nil {
				return nil, &FieldError{Field: f.Name, Reason: "malformed url"}
			}
		}
		return str, nil
	case models.FieldEmail:
		str, ok := raw.(string)
		if !ok {
			return nil, &FieldError{Field: f.Name, Reason: "must be a string"}
		}
		if f.Required && str == "" {
			return nil, &FieldError{Field: f.Name, Reason: "required"}
		}
		if str != "" {
			if err := s.validate.Var(str, "email"); err != nil {
				return nil, &FieldError{Field: f.Name, Reason: "malformed email"}
			}
		}
		return str, nil
	default:
		str, ok := raw.(string)
		if !ok {
			return nil, &FieldError{Field: f.Name, Reason: "must be a string"}
		}
		if f.Required && strings.TrimSpace(str) == "" {
			return nil, &FieldError{Field: f.Name, Reason: "required"}
		}
		return str, nil
	}
}

// validatePayload turns a raw JSON payload into typed column values. With
// requireAll set (create) every required field must be present; otherwise
// (partial update) absent fields are simply left out.
func (s *ContentService) validatePayload(spec models.ResourceSpec, payload map[string]interface{}, requireAll bool) (map[string]interface{}, error) {
	values := make(map[string]interface{}, len(payload))
	var fieldErrs []FieldError

	known := make(map[string]models.Field, len(spec.Fields)+len(spec.ExtendedFields))
	for _, f := range spec.AllFields(true) {
		known[f.Name] = f
	}

	for key, raw := range payload {
		if readonlyKeys[key] {
			continue
		}
		if key == "order" {
			if !spec.Ordered {
				fieldErrs = append(fieldErrs, FieldError{Field: "order", Reason: "resource is not ordered"})
				continue
			}
			v, ferr := s.coerceField(models.Field{Name: "order", Kind: models.FieldInt}, raw)
			if ferr != nil {
				fieldErrs = append(fieldErrs, *ferr)
				continue
			}
			if n, ok := v.(int); !ok || n < 0 {
				fieldErrs = append(fieldErrs, FieldError{Field: "order", Reason: "must be a non-negative integer"})
				continue
			}
			values["order"] = v
			continue
		}

		f, ok := known[key]
		if !ok {
			fieldErrs = append(fieldErrs, FieldError{Field: key, Reason: "unknown field"})
			continue
		}
		v, ferr := s.coerceField(f, raw)
		if ferr != nil {
			fieldErrs = append(fieldErrs, *ferr)
			continue
		}
		values[f.Name] = v
	}

	if requireAll {
		for _, f := range spec.Fields {
			if !f.Required {
				continue
			}
			if _, ok := values[f.Name]; !ok {
				fieldErrs = append(fieldErrs, FieldError{Field: f.Name, Reason: "required"})
			}
		}
	}

	if len(fieldErrs) > 0 {
		return nil, &ValidationError{Fields: fieldErrs}
	}
	return values, nil
}

// List returns the admin view of a kind: every non-deleted row, drafts
// included, in listing order.
func (s *ContentService) List(ctx context.Context, res models.Resource) ([]models.Row, error) {
	const op = "content_service.List"

	rows, err := s.repo.List(ctx, res)
	if err != nil {
		s.log.Error("failed to list resource", slog.String("op", op), slog.String("resource", string(res)), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rows, nil
}

// Get returns one non-deleted row of a kind.
func (s *ContentService) Get(ctx context.Context, res models.Resource, id uuid.UUID) (models.Row, error) {
	const op = "content_service.Get"

	row, err := s.repo.GetByID(ctx, res, id)
	if err != nil {
		s.log.Error("failed to get row", slog.String("op", op), slog.String("resource", string(res)), sl.Err(err))
		return models.Row{}, fmt.Errorf("%s: %w", op, err)
	}
	return row, nil
}

// Create validates the payload and stores a new draft row. Singleton kinds
// upsert instead: when a row already exists its fields are patched in place,
// so the table keeps one logical record.
func (s *ContentService) Create(ctx context.Context, res models.Resource, payload map[string]interface{}) (models.Row, error) {
	const op = "content_service.Create"
	log := s.log.With(slog.String("op", op), slog.String("resource", string(res)))

	spec, ok := models.Spec(res)
	if !ok {
		return models.Row{}, fmt.Errorf("%s: unknown resource %q", op, res)
	}

	values, err := s.validatePayload(spec, payload, true)
	if err != nil {
		log.Warn("payload rejected", sl.Err(err))
		return models.Row{}, err
	}

	if spec.Singleton {
		existing, err := s.repo.Latest(ctx, res)
		if err != nil {
			log.Error("failed to resolve singleton row", sl.Err(err))
			return models.Row{}, fmt.Errorf("%s: %w", op, err)
		}
		if existing != nil {
			row, err := s.repo.UpdateFields(ctx, res, existing.ID, values)
			if err != nil {
				log.Error("failed to upsert singleton row", sl.Err(err))
				return models.Row{}, fmt.Errorf("%s: %w", op, err)
			}
			metrics.ContentMutationsTotal.WithLabelValues(string(res), "upsert").Inc()
			log.Info("singleton row upserted", slog.String("id", row.ID.String()))
			return row, nil
		}
	}

	row, err := s.repo.Insert(ctx, res, values)
	if err != nil {
		log.Error("failed to create row", sl.Err(err))
		return models.Row{}, fmt.Errorf("%s: %w", op, err)
	}

	metrics.ContentMutationsTotal.WithLabelValues(string(res), "create").Inc()
	log.Info("row created", slog.String("id", row.ID.String()))
	return row, nil
}

// Update patches only the fields present in the payload; everything absent
// stays untouched.
func (s *ContentService) Update(ctx context.Context, res models.Resource, id uuid.UUID, payload map[string]interface{}) (models.Row, error) {
	const op = "content_service.Update"
	log := s.log.With(slog.String("op", op), slog.String("resource", string(res)), slog.String("id", id.String()))

	spec, ok := models.Spec(res)
	if !ok {
		return models.Row{}, fmt.Errorf("%s: unknown resource %q", op, res)
	}

	updates, err := s.validatePayload(spec, payload, false)
	if err != nil {
		log.Warn("payload rejected", sl.Err(err))
		return models.Row{}, err
	}
	if len(updates) == 0 {
		return models.Row{}, &ValidationError{Fields: []FieldError{{Field: "payload", Reason: "no updatable fields"}}}
	}

	row, err := s.repo.UpdateFields(ctx, res, id, updates)
	if err != nil {
		log.Error("failed to update row", sl.Err(err))
		return models.Row{}, fmt.Errorf("%s: %w", op, err)
	}

	metrics.ContentMutationsTotal.WithLabelValues(string(res), "update").Inc()
	log.Info("row updated")
	return row, nil
}

// Delete soft-deletes a row. Albums cascade to their images so the gallery
// never shows pictures of a removed album.
func (s *ContentService) Delete(ctx context.Context, res models.Resource, id uuid.UUID) (dto.DeleteResponse, error) {
	const op = "content_service.Delete"
	log := s.log.With(slog.String("op", op), slog.String("resource", string(res)), slog.String("id", id.String()))

	row, err := s.repo.SoftDelete(ctx, res, id)
	if err != nil {
		log.Error("failed to soft delete row", sl.Err(err))
		return dto.DeleteResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	resp := dto.DeleteResponse{ID: row.ID}
	if res == models.ResourceGalleryAlbums {
		cascaded, err := s.repo.SoftDeleteAlbumImages(ctx, id)
		if err != nil {
			// The album itself is gone already; report the partial cascade
			// instead of failing the whole call.
			log.Error("album image cascade failed", sl.Err(err))
		} else {
			resp.CascadedImages = cascaded
			log.Info("album images cascaded", slog.Int64("count", cascaded))
		}
	}

	metrics.ContentMutationsTotal.WithLabelValues(string(res), "delete").Inc()
	log.Info("row soft deleted")
	return resp, nil
}

// SetPublished publishes or unpublishes one row (id given) or every
// non-deleted row of the kind (id nil).
func (s *ContentService) SetPublished(ctx context.Context, res models.Resource, id *uuid.UUID, action dto.PublishAction) (dto.PublishResponse, error) {
	const op = "content_service.SetPublished"
	log := s.log.With(slog.String("op", op), slog.String("resource", string(res)), slog.String("action", string(action)))

	publish := action == dto.ActionPublish
	ids, err := s.repo.SetPublished(ctx, res, id, publish)
	if err != nil {
		log.Error("failed to change publish state", sl.Err(err))
		return dto.PublishResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	metrics.PublishedRowsTotal.WithLabelValues(string(res), string(action)).Add(float64(len(ids)))
	log.Info("publish state changed", slog.Int("count", len(ids)))

	if ids == nil {
		ids = []uuid.UUID{}
	}
	return dto.PublishResponse{
		Resource: string(res),
		Action:   action,
		ID:       id,
		Count:    len(ids),
		IDs:      ids,
	}, nil
}

// PublishAll publishes every non-deleted row across the fixed resource set.
// Each kind is attempted regardless of earlier failures; the report carries
// one entry per kind plus the aggregate summary. Unlike the public page
// read, this path is deliberately fail-soft.
func (s *ContentService) PublishAll(ctx context.Context) dto.PublishAllReport {
	const op = "content_service.PublishAll"
	log := s.log.With(slog.String("op", op))

	publishedAt := nowUTC()
	results := make([]dto.PublishResult, 0, len(models.PublishAllResources))
	totalItems := 0
	successful := 0

	for _, res := range models.PublishAllResources {
		ids, err := s.repo.SetPublished(ctx, res, nil, true)
		if err != nil {
			log.Error("publish failed for resource", slog.String("resource", string(res)), sl.Err(err))
			results = append(results, dto.PublishResult{Resource: string(res), Success: false, Error: publishErrMessage})
			continue
		}

		metrics.PublishedRowsTotal.WithLabelValues(string(res), string(dto.ActionPublish)).Add(float64(len(ids)))
		results = append(results, dto.PublishResult{Resource: string(res), Success: true, Count: len(ids)})
		totalItems += len(ids)
		successful++
	}

	log.Info("publish-all finished",
		slog.Int("total_items", totalItems),
		slog.Int("successful_resources", successful),
		slog.Int("total_resources", len(models.PublishAllResources)),
	)

	return dto.PublishAllReport{
		Results: results,
		Summary: dto.PublishAllSummary{
			TotalItems:          totalItems,
			SuccessfulResources: successful,
			TotalResources:      len(models.PublishAllResources),
			PublishedAt:         publishedAt,
		},
	}
}

// publishErrMessage is what the batch report exposes for a failed kind;
// store detail stays in the server log.
const publishErrMessage = "publish failed"

func nowUTC() time.Time {
	return time.Now().UTC()
}
