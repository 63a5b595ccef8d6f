package services

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path"
	"regexp"
	"strings"
	"time"

	"recanto_moriah/internal/domain/models"
	"recanto_moriah/internal/lib/logger/sl"
	"recanto_moriah/internal/metrics"
	"recanto_moriah/internal/storage"
	filestorage "recanto_moriah/internal/storage/filestorage"

	"github.com/google/uuid"
)

// MaxBatchFiles bounds one multi-upload request.
const MaxBatchFiles = 10

// allowedMimeTypes is the image allow-list for admin uploads.
var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

type MediaService struct {
	log         *slog.Logger
	fileStorage filestorage.FileStorage
	maxSize     int64
}

func NewMediaService(log *slog.Logger, fs filestorage.FileStorage, maxSize int64) *MediaService {
	return &MediaService{
		log:         log,
		fileStorage: fs,
		maxSize:     maxSize,
	}
}

// validateFile rejects files outside the image allow-list or over the size
// cap before anything is written.
func (s *MediaService) validateFile(file *multipart.FileHeader) error {
	mimeType := file.Header.Get("Content-Type")
	if !allowedMimeTypes[mimeType] {
		return fmt.Errorf("unsupported type %q: %w", mimeType, storage.ErrInvalidFileType)
	}
	if file.Size > s.maxSize {
		return fmt.Errorf("file is %d bytes, limit is %d: %w", file.Size, s.maxSize, storage.ErrFileTooLarge)
	}
	return nil
}

// storageKey builds the object path: timestamp, short random id and the
// sanitized original name, so keys never collide and stay readable.
func storageKey(originalName string) string {
	name := unsafeFilenameChars.ReplaceAllString(path.Base(originalName), "-")
	name = strings.Trim(name, "-.")
	if name == "" {
		name = "file"
	}
	return fmt.Sprintf("media/%d-%s-%s", time.Now().UnixMilli(), uuid.NewString()[:8], name)
}

// Upload validates and stores one file, returning its public URL.
func (s *MediaService) Upload(ctx context.Context, file *multipart.FileHeader) (*models.Upload, error) {
	const op = "media_service.Upload"
	log := s.log.With(slog.String("op", op), slog.String("filename", file.Filename))

	if err := s.validateFile(file); err != nil {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		log.Warn("upload rejected", sl.Err(err))
		return nil, err
	}

	key := storageKey(file.Filename)
	size, err := s.fileStorage.Save(ctx, file, key)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("failed").Inc()
		log.Error("failed to store file", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.UploadsTotal.WithLabelValues("ok").Inc()
	log.Info("file stored", slog.String("path", key), slog.Int64("size", size))

	return &models.Upload{
		URL:              s.fileStorage.PublicURL(key),
		Path:             key,
		OriginalFilename: file.Filename,
		Size:             size,
		MimeType:         file.Header.Get("Content-Type"),
	}, nil
}

// UploadBatch stores up to MaxBatchFiles files. Each file runs its own
// validate-and-store pipeline; one failure is recorded in its result entry
// and never aborts the siblings.
func (s *MediaService) UploadBatch(ctx context.Context, files []*multipart.FileHeader) ([]models.UploadResult, error) {
	const op = "media_service.UploadBatch"

	if len(files) == 0 {
		return nil, fmt.Errorf("%s: no files in request", op)
	}
	if len(files) > MaxBatchFiles {
		return nil, fmt.Errorf("%s: %d files, limit is %d: %w", op, len(files), MaxBatchFiles, storage.ErrTooManyFiles)
	}

	results := make([]models.UploadResult, 0, len(files))
	for _, file := range files {
		upload, err := s.Upload(ctx, file)
		if err != nil {
			results = append(results, models.UploadResult{
				Filename: file.Filename,
				Success:  false,
				Error:    err.Error(),
			})
			continue
		}
		results = append(results, models.UploadResult{
			Filename: file.Filename,
			Success:  true,
			Upload:   upload,
		})
	}

	return results, nil
}
