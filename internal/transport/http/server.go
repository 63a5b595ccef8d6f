package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"recanto_moriah/internal/domain/models"
	"recanto_moriah/internal/lib/logger/sl"
	"recanto_moriah/internal/metrics"
	authsvc "recanto_moriah/internal/services/auth_service"
	contentsvc "recanto_moriah/internal/services/content_service"
	"recanto_moriah/internal/storage"
	"recanto_moriah/internal/storage/pagecache"
	"recanto_moriah/internal/transport/http/dto"
	"recanto_moriah/internal/transport/http/dto/request"
	"recanto_moriah/internal/transport/http/dto/response"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	_ "recanto_moriah/docs"
)

// pageCacheKey is where the rendered public payload is memoized.
const pageCacheKey = "public_page:v1"

// pageCacheControl mirrors the CDN directive the public payload ships with.
const pageCacheControl = "s-maxage=60, stale-while-revalidate=600"

type ContentService interface {
	List(ctx context.Context, res models.Resource) ([]models.Row, error)
	Get(ctx context.Context, res models.Resource, id uuid.UUID) (models.Row, error)
	Create(ctx context.Context, res models.Resource, payload map[string]interface{}) (models.Row, error)
	Update(ctx context.Context, res models.Resource, id uuid.UUID, payload map[string]interface{}) (models.Row, error)
	Delete(ctx context.Context, res models.Resource, id uuid.UUID) (dto.DeleteResponse, error)
	SetPublished(ctx context.Context, res models.Resource, id *uuid.UUID, action dto.PublishAction) (dto.PublishResponse, error)
	PublishAll(ctx context.Context) dto.PublishAllReport
}

type PageService interface {
	BuildPage(ctx context.Context) (*models.PagePayload, error)
}

type MediaService interface {
	Upload(ctx context.Context, file *multipart.FileHeader) (*models.Upload, error)
	UploadBatch(ctx context.Context, files []*multipart.FileHeader) ([]models.UploadResult, error)
}

type AuthService interface {
	Login(ctx context.Context, password string) error
}

// Pinger reports a dependency's liveness for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Routers struct {
	log            *slog.Logger
	ContentService ContentService
	PageService    PageService
	MediaService   MediaService
	AuthService    AuthService

	pageCache    pagecache.Cache
	pageCacheTTL time.Duration

	dbPinger    Pinger
	redisPinger Pinger
}

func NewRouter(
	log *slog.Logger,
	contentService ContentService,
	pageService PageService,
	mediaService MediaService,
	authService AuthService,
	pageCache pagecache.Cache,
	pageCacheTTL time.Duration,
	dbPinger Pinger,
	redisPinger Pinger,
) *Routers {
	return &Routers{
		log:            log,
		ContentService: contentService,
		PageService:    pageService,
		MediaService:   mediaService,
		AuthService:    authService,
		pageCache:      pageCache,
		pageCacheTTL:   pageCacheTTL,
		dbPinger:       dbPinger,
		redisPinger:    redisPinger,
	}
}

// resolveResource maps the :resource path segment to a registered kind.
func resolveResource(c echo.Context) (models.ResourceSpec, bool) {
	return models.ParseResource(c.Param("resource"))
}

func (r *Routers) handleContentError(c echo.Context, log *slog.Logger, err error) error {
	var vErr *contentsvc.ValidationError
	switch {
	case errors.As(err, &vErr):
		return c.JSON(http.StatusUnprocessableEntity, response.ValidationErrorResponse(vErr.Fields))
	case errors.Is(err, storage.ErrNotFound):
		return c.JSON(http.StatusNotFound, response.ErrRowNotFound)
	default:
		log.Error("content operation failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}
}

// ListResource godoc
// @Summary List rows of one content kind
// @Description Returns every non-deleted row, drafts included, in display order.
// @Tags admin
// @Produce json
// @Param resource path string true "Resource slug (e.g. hero-slides)"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/admin/{resource} [get]
func (r *Routers) ListResource(c echo.Context) error {
	const op = "http.routers.ListResource"
	log := r.log.With(slog.String("op", op))

	spec, ok := resolveResource(c)
	if !ok {
		return c.JSON(http.StatusNotFound, response.ErrResourceNotFound)
	}

	rows, err := r.ContentService.List(c.Request().Context(), spec.Resource)
	if err != nil {
		return r.handleContentError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(rows))
}

// GetResource godoc
// @Summary Fetch one content row
// @Tags admin
// @Produce json
// @Param resource path string true "Resource slug"
// @Param id path string true "Row id" format(uuid)
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/admin/{resource}/{id} [get]
func (r *Routers) GetResource(c echo.Context) error {
	const op = "http.routers.GetResource"
	log := r.log.With(slog.String("op", op))

	spec, ok := resolveResource(c)
	if !ok {
		return c.JSON(http.StatusNotFound, response.ErrResourceNotFound)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_id", "id must be a uuid"))
	}

	row, err := r.ContentService.Get(c.Request().Context(), spec.Resource, id)
	if err != nil {
		return r.handleContentError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(row))
}

// CreateResource godoc
// @Summary Create a content row
// @Description Validates the payload field by field and stores a new draft row. Publish state in the payload is ignored.
// @Tags admin
// @Accept json
// @Produce json
// @Param resource path string true "Resource slug"
// @Success 201 {object} response.Response
// @Failure 422 {object} response.ErrorResponse
// @Router /api/v1/admin/{resource} [post]
func (r *Routers) CreateResource(c echo.Context) error {
	const op = "http.routers.CreateResource"
	log := r.log.With(slog.String("op", op))

	spec, ok := resolveResource(c)
	if !ok {
		return c.JSON(http.StatusNotFound, response.ErrResourceNotFound)
	}

	var payload map[string]interface{}
	if err := c.Bind(&payload); err != nil {
		log.Warn("failed to bind payload", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	row, err := r.ContentService.Create(c.Request().Context(), spec.Resource, payload)
	if err != nil {
		return r.handleContentError(c, log, err)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(row))
}

// UpdateResource godoc
// @Summary Partially update a content row
// @Description Writes only the fields present in the payload; absent fields keep their values.
// @Tags admin
// @Accept json
// @Produce json
// @Param resource path string true "Resource slug"
// @Param id path string true "Row id" format(uuid)
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /api/v1/admin/{resource}/{id} [put]
func (r *Routers) UpdateResource(c echo.Context) error {
	const op = "http.routers.UpdateResource"
	log := r.log.With(slog.String("op", op))

	spec, ok := resolveResource(c)
	if !ok {
		return c.JSON(http.StatusNotFound, response.ErrResourceNotFound)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_id", "id must be a uuid"))
	}

	var payload map[string]interface{}
	if err := c.Bind(&payload); err != nil {
		log.Warn("failed to bind payload", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	row, err := r.ContentService.Update(c.Request().Context(), spec.Resource, id, payload)
	if err != nil {
		return r.handleContentError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(row))
}

// DeleteResource godoc
// @Summary Soft-delete a content row
// @Description Stamps deleted_at; the row disappears from every listing but is never removed. Album deletes cascade to their images.
// @Tags admin
// @Produce json
// @Param resource path string true "Resource slug"
// @Param id path string true "Row id" format(uuid)
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/admin/{resource}/{id} [delete]
func (r *Routers) DeleteResource(c echo.Context) error {
	const op = "http.routers.DeleteResource"
	log := r.log.With(slog.String("op", op))

	spec, ok := resolveResource(c)
	if !ok {
		return c.JSON(http.StatusNotFound, response.ErrResourceNotFound)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_id", "id must be a uuid"))
	}

	res, err := r.ContentService.Delete(c.Request().Context(), spec.Resource, id)
	if err != nil {
		return r.handleContentError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(res))
}

// PublishResource godoc
// @Summary Publish rows of one content kind
// @Description With an id in the body publishes that row; without one publishes every non-deleted row of the kind.
// @Tags admin
// @Accept json
// @Produce json
// @Param resource path string true "Resource slug"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/admin/{resource}/publish [post]
func (r *Routers) PublishResource(c echo.Context) error {
	const op = "http.routers.PublishResource"
	log := r.log.With(slog.String("op", op))

	spec, ok := resolveResource(c)
	if !ok {
		return c.JSON(http.StatusNotFound, response.ErrResourceNotFound)
	}

	var req dto.PublishByIDRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			log.Warn("failed to bind payload", sl.Err(err))
			return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
		}
	}

	res, err := r.ContentService.SetPublished(c.Request().Context(), spec.Resource, req.ID, dto.ActionPublish)
	if err != nil {
		return r.handleContentError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(res))
}

// Publish godoc
// @Summary Publish or unpublish rows of any content kind
// @Tags admin
// @Accept json
// @Produce json
// @Param request body dto.PublishRequest true "Target resource, optional row id, action"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/admin/publish [post]
func (r *Routers) Publish(c echo.Context) error {
	const op = "http.routers.Publish"
	log := r.log.With(slog.String("op", op))

	var req dto.PublishRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("failed to bind payload", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	spec, ok := models.ParseResource(req.Resource)
	if !ok {
		return c.JSON(http.StatusNotFound, response.ErrResourceNotFound)
	}

	res, err := r.ContentService.SetPublished(c.Request().Context(), spec.Resource, req.ID, req.Action)
	if err != nil {
		return r.handleContentError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(res))
}

// PublishAll godoc
// @Summary Publish every content kind in one batch
// @Description Fail-soft: each kind is attempted independently and reported separately; the call always returns 200 with the per-kind outcomes.
// @Tags admin
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/admin/publish-all [post]
func (r *Routers) PublishAll(c echo.Context) error {
	report := r.ContentService.PublishAll(c.Request().Context())
	return c.JSON(http.StatusOK, response.SuccessResponse(report))
}

// Upload godoc
// @Summary Upload one image
// @Description Accepts multipart form data under "file"; images only, 10 MiB cap.
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Success 200 {object} response.Response
// @Failure 422 {object} response.ErrorResponse
// @Router /api/v1/admin/upload [post]
func (r *Routers) Upload(c echo.Context) error {
	const op = "http.routers.Upload"
	log := r.log.With(slog.String("op", op))

	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", "multipart field \"file\" is required"))
	}

	upload, err := r.MediaService.Upload(c.Request().Context(), file)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidFileType) || errors.Is(err, storage.ErrFileTooLarge) {
			return c.JSON(http.StatusUnprocessableEntity, response.ErrorResponseWithDetails("invalid_file", err.Error()))
		}
		log.Error("upload failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(upload))
}

// UploadMultiple godoc
// @Summary Upload a batch of images
// @Description Up to 10 files under "files"; each file succeeds or fails on its own and the response lists every outcome.
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Success 200 {object} response.Response
// @Failure 422 {object} response.ErrorResponse
// @Router /api/v1/admin/upload-multiple [post]
func (r *Routers) UploadMultiple(c echo.Context) error {
	const op = "http.routers.UploadMultiple"
	log := r.log.With(slog.String("op", op))

	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", "multipart form is required"))
	}

	files := form.File["files"]
	results, err := r.MediaService.UploadBatch(c.Request().Context(), files)
	if err != nil {
		if errors.Is(err, storage.ErrTooManyFiles) {
			return c.JSON(http.StatusUnprocessableEntity, response.ErrorResponseWithDetails("too_many_files", err.Error()))
		}
		log.Warn("batch upload rejected", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	succeeded := 0
	for _, res := range results {
		if res.Success {
			succeeded++
		}
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(map[string]interface{}{
		"results":   results,
		"count":     len(results),
		"succeeded": succeeded,
	}))
}

// PublicPage godoc
// @Summary Aggregated public page payload
// @Description Published, non-deleted content only, one key per section. Fails as a whole if any section cannot be loaded.
// @Tags public
// @Produce json
// @Success 200 {object} models.PagePayload
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/public/page [get]
func (r *Routers) PublicPage(c echo.Context) error {
	const op = "http.routers.PublicPage"
	log := r.log.With(slog.String("op", op))

	ctx := c.Request().Context()
	c.Response().Header().Set("Cache-Control", pageCacheControl)

	if cached, ok := r.pageCache.Get(ctx, pageCacheKey); ok {
		metrics.PageCacheHitsTotal.WithLabelValues("hit").Inc()
		return c.JSONBlob(http.StatusOK, cached)
	}
	metrics.PageCacheHitsTotal.WithLabelValues("miss").Inc()

	payload, err := r.PageService.BuildPage(ctx)
	if err != nil {
		log.Error("failed to load public content", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("internal_error", "Failed to load public content"))
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Error("failed to encode public content", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	r.pageCache.Set(ctx, pageCacheKey, body, r.pageCacheTTL)
	return c.JSONBlob(http.StatusOK, body)
}

// SubmitContact godoc
// @Summary Store a visitor contact submission
// @Description Submissions start unpublished and only appear publicly after moderation.
// @Tags public
// @Accept json
// @Produce json
// @Success 201 {object} response.Response
// @Failure 422 {object} response.ErrorResponse
// @Router /api/v1/public/contact [post]
func (r *Routers) SubmitContact(c echo.Context) error {
	const op = "http.routers.SubmitContact"
	log := r.log.With(slog.String("op", op))

	var payload map[string]interface{}
	if err := c.Bind(&payload); err != nil {
		log.Warn("failed to bind payload", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	row, err := r.ContentService.Create(c.Request().Context(), models.ResourceContacts, payload)
	if err != nil {
		return r.handleContentError(c, log, err)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(map[string]interface{}{"id": row.ID}))
}

// Login godoc
// @Summary Admin dashboard login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.LoginRequest true "Dashboard password"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Router /api/v1/admin/auth/login [post]
func (r *Routers) Login(c echo.Context) error {
	const op = "http.routers.Login"
	log := r.log.With(slog.String("op", op))

	var req request.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	if err := r.AuthService.Login(c.Request().Context(), req.Password); err != nil {
		if errors.Is(err, authsvc.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
		}
		log.Error("login failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	sess, err := session.Get("session", c)
	if err != nil {
		log.Error("failed to open session", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}
	sess.Values["admin"] = true
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		log.Error("failed to save session", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.Response{Status: "success", Message: "logged in"})
}

// Logout clears the admin session.
func (r *Routers) Logout(c echo.Context) error {
	sess, err := session.Get("session", c)
	if err == nil {
		delete(sess.Values, "admin")
		sess.Options.MaxAge = -1
		_ = sess.Save(c.Request(), c.Response())
	}
	return c.JSON(http.StatusOK, response.Response{Status: "success", Message: "logged out"})
}

// Health reports liveness of the service and its collaborators.
func (r *Routers) Health(c echo.Context) error {
	ctx := c.Request().Context()
	out := map[string]string{"status": "ok", "db": "ok", "redis": "disabled"}

	if r.dbPinger != nil {
		if err := r.dbPinger.Ping(ctx); err != nil {
			out["status"] = "degraded"
			out["db"] = "unreachable"
		}
	}
	if r.redisPinger != nil {
		out["redis"] = "ok"
		if err := r.redisPinger.Ping(ctx); err != nil {
			out["status"] = "degraded"
			out["redis"] = "unreachable"
		}
	}

	code := http.StatusOK
	if out["status"] != "ok" {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, out)
}
