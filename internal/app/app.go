package app

import (
	"context"
	"log/slog"

	httpapp "recanto_moriah/internal/app/http"
	"recanto_moriah/internal/config"
	"recanto_moriah/internal/lib/logger/sl"
	"recanto_moriah/internal/repository"
	authsvc "recanto_moriah/internal/services/auth_service"
	contentsvc "recanto_moriah/internal/services/content_service"
	mediasvc "recanto_moriah/internal/services/media_service"
	pagesvc "recanto_moriah/internal/services/page_service"
	filestorage "recanto_moriah/internal/storage/filestorage"
	"recanto_moriah/internal/storage/pagecache"
	"recanto_moriah/internal/storage/postgresql"
	redisapp "recanto_moriah/internal/storage/redis"
	httprouters "recanto_moriah/internal/transport/http"
)

type App struct {
	HTTPServer *httpapp.Server

	repo  *repository.Repository
	redis *redisapp.Client
}

// redisPinger adapts the redis client to the health endpoint.
type redisPinger struct {
	c *redisapp.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.c.HealthCheck(ctx)
}

func New(log *slog.Logger, cfg *config.Config) *App {
	db, err := postgresql.New(context.Background(), cfg.DSN)
	if err != nil {
		panic(err)
	}

	repo := repository.NewRepository(db)

	fs, err := filestorage.NewLocalFileStorage(cfg.FileStorage.BaseDir, cfg.FileStorage.BaseURL)
	if err != nil {
		panic(err)
	}

	contentService := contentsvc.NewContentService(log, repo.Content)
	pageService := pagesvc.NewPageService(log, repo.Content)
	mediaService := mediasvc.NewMediaService(log, fs, cfg.FileStorage.MaxSize)
	authService := authsvc.NewAuthService(log, cfg.Admin.PasswordHash)

	var (
		cache       pagecache.Cache
		redisClient *redisapp.Client
		redisHealth httprouters.Pinger
	)
	if cfg.Redis.Enabled {
		redisClient = redisapp.NewClient(cfg.Redis.RedisAddr, cfg.Redis.RedisPassword, cfg.Redis.RedisDB)
		if err := redisClient.HealthCheck(context.Background()); err != nil {
			log.Warn("redis unreachable, falling back to in-process page cache", sl.Err(err))
			redisClient.Close()
			redisClient = nil
			cache = pagecache.NewMemoryCache(cfg.PageCache.TTL)
		} else {
			cache = pagecache.NewRedisCache(redisClient)
			redisHealth = redisPinger{c: redisClient}
		}
	} else {
		cache = pagecache.NewMemoryCache(cfg.PageCache.TTL)
	}

	routers := httprouters.NewRouter(
		log,
		contentService,
		pageService,
		mediaService,
		authService,
		cache,
		cfg.PageCache.TTL,
		db,
		redisHealth,
	)

	server := httpapp.New(log, cfg.Admin.SessionSecret, cfg.HTTP.Host, cfg.HTTP.Port, cfg.FileStorage.BaseDir, routers)

	return &App{
		HTTPServer: server,
		repo:       repo,
		redis:      redisClient,
	}
}

func (a *App) Stop() {
	if err := a.HTTPServer.Stop(); err != nil {
		panic(err)
	}
	if a.redis != nil {
		a.redis.Close()
	}
	a.repo.Close()
}
