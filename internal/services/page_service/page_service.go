package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"recanto_moriah/internal/domain/models"
	"recanto_moriah/internal/lib/logger/sl"
	"recanto_moriah/internal/metrics"
	"recanto_moriah/internal/repository"
	"recanto_moriah/internal/storage"

	"golang.org/x/sync/errgroup"
)

type PageService struct {
	log  *slog.Logger
	repo repository.ContentRepository
}

func NewPageService(log *slog.Logger, repo repository.ContentRepository) *PageService {
	return &PageService{log: log, repo: repo}
}

// BuildPage assembles the public payload: one published-only query per
// resource kind, fanned out concurrently and joined after all return. Any
// single failure aborts the whole build — the public page is never served
// with missing sections.
func (s *PageService) BuildPage(ctx context.Context) (*models.PagePayload, error) {
	const op = "page_service.BuildPage"
	log := s.log.With(slog.String("op", op))

	start := time.Now()
	payload := &models.PagePayload{}
	var albums []models.Row

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		payload.SiteSettings, err = s.repo.LatestPublished(gctx, models.ResourceSiteSettings)
		return err
	})
	g.Go(func() error {
		var err error
		payload.HeroSlides, err = s.repo.ListPublished(gctx, models.ResourceHeroSlides, false)
		return err
	})
	g.Go(func() error {
		var err error
		payload.BenefitCards, err = s.repo.ListPublished(gctx, models.ResourceBenefitCards, false)
		return err
	})
	g.Go(func() error {
		var err error
		albums, err = s.repo.ListPublished(gctx, models.ResourceGalleryAlbums, false)
		return err
	})
	g.Go(func() error {
		var err error
		payload.GalleryImages, err = s.listGalleryImages(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		payload.Testimonials, err = s.repo.ListPublished(gctx, models.ResourceTestimonials, false)
		return err
	})
	g.Go(func() error {
		var err error
		payload.InfoCards, err = s.repo.ListPublished(gctx, models.ResourceInfoCards, false)
		return err
	})
	g.Go(func() error {
		var err error
		payload.Contacts, err = s.repo.ListPublished(gctx, models.ResourceContacts, false)
		return err
	})
	g.Go(func() error {
		var err error
		payload.Schedules, err = s.repo.ListPublished(gctx, models.ResourceSchedules, false)
		return err
	})
	g.Go(func() error {
		var err error
		payload.FooterLinks, err = s.repo.ListPublished(gctx, models.ResourceFooterLinks, false)
		return err
	})
	g.Go(func() error {
		var err error
		payload.ContactInfo, err = s.repo.LatestPublished(gctx, models.ResourceContactInfo)
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error("page assembly failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	payload.GalleryAlbums = joinAlbums(albums, payload.GalleryImages)

	metrics.PageBuildDuration.Observe(time.Since(start).Seconds())
	log.Info("page assembled",
		slog.Int("hero_slides", len(payload.HeroSlides)),
		slog.Int("gallery_albums", len(payload.GalleryAlbums)),
		slog.Int("gallery_images", len(payload.GalleryImages)),
	)

	return payload, nil
}

// listGalleryImages asks for the extended (video/link) columns first and
// falls back to the base set when the deployed schema predates them. Only an
// undefined-column failure triggers the retry; anything else is fatal.
func (s *PageService) listGalleryImages(ctx context.Context) ([]models.Row, error) {
	rows, err := s.repo.ListPublished(ctx, models.ResourceGalleryImages, true)
	if err == nil {
		return rows, nil
	}
	if !errors.Is(err, storage.ErrUndefinedColumn) {
		return nil, err
	}

	s.log.Warn("gallery schema lacks extended columns, retrying with base set", sl.Err(err))
	return s.repo.ListPublished(ctx, models.ResourceGalleryImages, false)
}

// joinAlbums nests each published image under its album in memory. Images
// whose album is unpublished or deleted stay only in the flat list.
func joinAlbums(albums, images []models.Row) []models.Album {
	out := make([]models.Album, len(albums))
	for i, a := range albums {
		album := models.Album{Row: a, Images: []models.Row{}}
		for _, img := range images {
			if albumID, ok := img.AlbumID(); ok && albumID == a.ID {
				album.Images = append(album.Images, img)
			}
		}
		out[i] = album
	}
	return out
}
