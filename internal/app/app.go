package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Weskio/ai-task-whisperer/internal/cache"
	"github.com/Weskio/ai-task-whisperer/internal/config"
	"github.com/Weskio/ai-task-whisperer/internal/export"
	"github.com/Weskio/ai-task-whisperer/internal/notify"
	"github.com/Weskio/ai-task-whisperer/internal/repo"
	"github.com/Weskio/ai-task-whisperer/internal/service"
	"github.com/Weskio/ai-task-whisperer/internal/suggest"
	"github.com/Weskio/ai-task-whisperer/migrations"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
)

// App wires the board to its storage backend and exposes it to the HTTP
// router and the CLI.
type App struct {
	cfg   config.Config
	db    *pgxpool.Pool
	redis *redis.Client

	kv       repo.KV
	creds    *repo.CredentialRepo
	cache    *cache.SuggestionCache
	feed     *notify.Feed
	board    *service.BoardService
	exporter *export.Exporter
	router   *gin.Engine
}

func New(cfg config.Config) (*App, error) {
	a := &App{cfg: cfg}

	if cfg.Redis.Enabled() {
		rdb, err := newRedis(cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.redis = rdb
	}

	kv, err := a.newKV()
	if err != nil {
		_ = a.Close(context.Background())
		return nil, err
	}
	a.kv = kv

	a.creds = repo.NewCredentialRepo(kv)
	a.feed = notify.NewFeed(0)

	provider := suggest.NewProvider(a.creds, suggest.NewOpenAIClient(cfg.Suggest.BaseURL, cfg.Suggest.Model, cfg.Suggest.Timeout.Duration()))
	if a.redis != nil && cfg.Suggest.CacheTTL.Duration() > 0 {
		a.cache = cache.NewSuggestionCache(a.redis, cfg.Suggest.CacheTTL.Duration(), cfg.Store.KeyPrefix)
		provider.WithCache(a.cache)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.board = service.NewBoardService(ctx, repo.NewKVTaskRepo(kv), provider, a.feed)
	a.exporter = export.NewExporter(a.board)

	a.router = newRouter(a)
	return a, nil
}

// newKV opens the backend named by STORE_BACKEND.
func (a *App) newKV() (repo.KV, error) {
	switch a.cfg.Store.Backend {
	case config.BackendMemory:
		return repo.NewMemoryKV(), nil
	case config.BackendFile:
		return repo.NewFileKV(a.cfg.Store.Path)
	case config.BackendRedis:
		return repo.NewRedisKV(a.redis, a.cfg.Store.KeyPrefix), nil
	case config.BackendPostgres:
		db, err := newPostgres(a.cfg.PG.DSN)
		if err != nil {
			return nil, err
		}
		a.db = db
		if err := runMigrations(a.cfg.PG.DSN); err != nil {
			return nil, err
		}
		return repo.NewPGKV(db), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", a.cfg.Store.Backend)
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Board() *service.BoardService {
	return a.board
}

func (a *App) Credentials() *repo.CredentialRepo {
	return a.creds
}

func (a *App) Exporter() *export.Exporter {
	return a.exporter
}

func (a *App) Notifications() *notify.Feed {
	return a.feed
}

// SuggestionCache is nil unless Redis is configured.
func (a *App) SuggestionCache() *cache.SuggestionCache {
	return a.cache
}

func (a *App) Close(ctx context.Context) error {
	_ = ctx
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
	return nil
}

func newPostgres(dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	cfg.MaxConns = 4
	cfg.MinConns = 1
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}

	return pool, nil
}

func newRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

func runMigrations(dsn string) error {
	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("goose open db: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	log.Printf("migrations applied")
	return nil
}

func newRouter(a *App) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "Cookie"},
		ExposeHeaders: []string{"Content-Length", "Content-Type", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}))

	Setup(r, a)
	return r
}
