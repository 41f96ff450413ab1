package container

import (
	"context"
	"errors"
	"fmt"

	"bookmarks/popup/internal/client"
	"bookmarks/popup/internal/config"
	"bookmarks/popup/internal/defaultpath"
	"bookmarks/popup/internal/domain"
	"bookmarks/popup/internal/metadata"
	"bookmarks/popup/internal/navigator"
	"bookmarks/popup/internal/provider"
	"bookmarks/popup/internal/proxy"
	"bookmarks/popup/internal/service"
	"bookmarks/popup/internal/store"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config    *config.Config
	Store     store.Store
	Provider  provider.TreeProvider
	Client    client.PageClient
	Marker    *defaultpath.Marker
	Navigator *navigator.Navigator
	Engine    *metadata.Engine

	Service *service.Service

	db    *pgxpool.Pool
	redis *redis.Client
}

// New creates a new container with all dependencies initialized. The
// default-path preference is created here exactly once and shared by every
// consumer.
func New(ctx context.Context, cfg *config.Config, opener navigator.Opener) (*Container, error) {
	c := &Container{
		Config: cfg,
	}

	if err := c.initStore(ctx); err != nil {
		c.Close()
		return nil, err
	}

	treeProvider, err := newTreeProvider(cfg.Tree)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Provider = treeProvider

	proxySupplier := proxy.NewSupplier(ctx, cfg.Metadata.Proxies, cfg.Metadata.ProxyTestURL)
	c.Client = client.NewPageClient(cfg.Metadata, proxySupplier)

	c.Marker = defaultpath.NewMarker(defaultpath.NewIDs(c.Store, cfg.Store.DefaultPathKey))
	c.Navigator = navigator.New(c.Provider, c.Marker, opener)
	c.Engine = metadata.NewEngine(c.Store, c.Client, cfg.Metadata)

	c.Service = service.NewService(
		c.Navigator,
		c.Marker,
		c.Engine,
		cfg.Metadata.MaxWorkers,
		cfg.Metadata.ViewWait,
	)

	return c, nil
}

func (c *Container) initStore(ctx context.Context) error {
	cfg := c.Config
	if err := store.ValidateBackend(cfg.Store.Backend); err != nil {
		return err
	}

	switch cfg.Store.Backend {
	case store.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.Database,
		})

		if _, err := rdb.Ping(ctx).Result(); err != nil {
			_ = rdb.Close()
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info("✅ Connected to Redis successfully")

		c.redis = rdb
		c.Store = store.NewRedisStore(rdb, cfg.Redis.KeyPrefix)

	case store.BackendPostgres:
		db, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("failed to create Postgres pool: %w", err)
		}
		c.db = db

		s, err := store.NewPostgresStore(ctx, db)
		if err != nil {
			return err
		}
		log.Info("✅ Connected to Postgres successfully")
		c.Store = s

	case store.BackendFile:
		s, err := store.NewFileStore(cfg.Store.FilePath)
		if err != nil {
			return err
		}
		log.Debugf("Using file store at %s", s.Path())
		c.Store = s

	default:
		log.Warn("⚠️ Using in-memory store, default folder and metadata cache will not survive restarts")
		c.Store = store.NewMemoryStore()
	}

	return nil
}

var errNoBookmarksFile = errors.New("tree.bookmarks_file is not configured")

// unconfiguredProvider lets commands that never read the tree run without a
// bookmarks file; reading the tree through it fails.
type unconfiguredProvider struct{}

func (unconfiguredProvider) GetTree(context.Context) ([]*domain.BookmarkNode, error) {
	return nil, errNoBookmarksFile
}

func newTreeProvider(cfg config.TreeConfig) (provider.TreeProvider, error) {
	if cfg.BookmarksFile == "" {
		return unconfiguredProvider{}, nil
	}

	p, err := provider.NewChromeFileProvider(cfg.BookmarksFile, cfg.RootSelectors)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tree provider: %w", err)
	}
	return p, nil
}

// Close performs cleanup when shutting down
func (c *Container) Close() {
	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			log.Warnf("Failed to close Redis client: %v", err)
		}
	}
}
