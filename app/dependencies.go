package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/upb/hotel-listing/config"
	"github.com/upb/hotel-listing/identity"
	"github.com/upb/hotel-listing/internal/memstore"
	"github.com/upb/hotel-listing/middleware"
	"github.com/upb/hotel-listing/repositories"
	"github.com/upb/hotel-listing/repositories/postgres"
	"github.com/upb/hotel-listing/repositories/redisstore"
	"github.com/upb/hotel-listing/services/audit"
	"github.com/upb/hotel-listing/services/auth"
	"github.com/upb/hotel-listing/services/catalog"
	"github.com/upb/hotel-listing/token"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// auditStopTimeout bounds how long Close waits for queued audit entries
const auditStopTimeout = 5 * time.Second

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Redis  *redis.Client
	Logger *zap.Logger

	// Repositories
	RepoFactory *postgres.RepositoryFactory
	Repos       *repositories.Repositories
	TokenStore  repositories.TokenStore
	TxManager   repositories.TransactionManager

	// Auth
	Codec          *token.Codec
	Identity       *identity.Manager
	Audit          *audit.AuditService
	Auth           *auth.Manager
	AuthMiddleware *middleware.AuthMiddleware

	// Catalog
	Countries *catalog.CountryService
	Hotels    *catalog.HotelService
}

// NewDependencies connects to Postgres (and Redis when configured) and wires
// every component.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	factory, err := postgres.NewRepositoryFactory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := factory.GetDB().Migrate(ctx, postgres.MigrateUp); err != nil {
			_ = factory.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	var client *redis.Client
	if cfg.Redis.Enabled() {
		client, err = redisstore.NewClient(ctx, cfg.Redis)
		if err != nil {
			_ = factory.Close()
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		logger.Info("redis connection established", zap.String("addr", cfg.Redis.Addr))
	}

	deps, err := Build(cfg, factory, client, logger)
	if err != nil {
		closeErr := factory.Close()
		if client != nil {
			closeErr = multierr.Append(closeErr, client.Close())
		}
		return nil, multierr.Append(err, closeErr)
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// Build wires the components around already opened connections. client may be
// nil unless the redis token store is selected.
func Build(cfg *config.Config, factory *postgres.RepositoryFactory, client *redis.Client, logger *zap.Logger) (*Dependencies, error) {
	d := &Dependencies{
		Config:      cfg,
		DB:          factory.GetDB(),
		Redis:       client,
		Logger:      logger,
		RepoFactory: factory,
		Repos:       factory.NewRepositories(),
		TxManager:   factory.GetTransactionManager(),
	}

	if err := d.initTokenStore(); err != nil {
		return nil, err
	}
	if err := d.initAuth(); err != nil {
		return nil, err
	}
	d.initCatalog()

	return d, nil
}

func (d *Dependencies) initTokenStore() error {
	switch d.Config.Auth.TokenStore {
	case config.TokenStorePostgres:
		d.TokenStore = d.Repos.Tokens
	case config.TokenStoreRedis:
		if d.Redis == nil {
			return fmt.Errorf("redis token store selected but redis is not configured")
		}
		d.TokenStore = redisstore.NewTokenStore(d.Redis, d.Config.Redis.KeyPrefix, d.Config.Auth.RefreshTokenTTL, d.Logger)
	case config.TokenStoreMemory:
		d.Logger.Warn("refresh tokens are held in memory; run a single instance only")
		d.TokenStore = memstore.New().Tokens()
	default:
		return fmt.Errorf("unknown token store %q", d.Config.Auth.TokenStore)
	}

	d.Logger.Info("token store selected", zap.String("backend", d.Config.Auth.TokenStore))
	return nil
}

func (d *Dependencies) initAuth() error {
	codec, err := token.NewCodec(token.Config{
		SigningKey: d.Config.JWT.Key,
		Issuer:     d.Config.JWT.Issuer,
		Audience:   d.Config.JWT.Audience,
		Duration:   d.Config.JWT.TokenDuration(),
	})
	if err != nil {
		return fmt.Errorf("failed to create token codec: %w", err)
	}
	d.Codec = codec

	hasher, err := identity.NewArgon2Hasher(identity.DefaultArgon2Params)
	if err != nil {
		return fmt.Errorf("failed to create password hasher: %w", err)
	}

	pw := d.Config.Auth.Password
	policy := identity.PasswordPolicy{
		MinLength:              pw.MinLength,
		RequireDigit:           pw.RequireDigit,
		RequireLowercase:       pw.RequireLowercase,
		RequireUppercase:       pw.RequireUppercase,
		RequireNonAlphanumeric: pw.RequireNonAlphanumeric,
	}
	d.Identity, err = identity.NewManager(d.Repos, d.TokenStore, hasher, policy, d.Logger.Named("identity"))
	if err != nil {
		return fmt.Errorf("failed to create identity manager: %w", err)
	}

	var recorder audit.Recorder
	if d.Config.Audit.Enabled {
		d.Audit = audit.NewAuditService(d.Repos.AuditLogs, d.Logger.Named("audit"), audit.Config{
			BufferSize:  d.Config.Audit.BufferSize,
			WorkerCount: d.Config.Audit.Workers,
		}, audit.WithRequestMeta(middleware.RequestMeta))
		if err := d.Audit.Start(); err != nil {
			return fmt.Errorf("failed to start audit service: %w", err)
		}
		recorder = d.Audit
	}

	d.Auth = auth.NewManager(d.Identity, d.Codec, recorder, auth.Config{
		LoginProvider:    d.Config.Auth.LoginProvider,
		RefreshTokenName: d.Config.Auth.RefreshTokenName,
		AtomicRotation:   d.Config.Auth.AtomicRefreshRotation,
	}, d.Logger.Named("auth"))

	d.AuthMiddleware = middleware.NewAuthMiddleware(middleware.NewCodecValidator(d.Codec), d.Logger)
	return nil
}

func (d *Dependencies) initCatalog() {
	d.Countries = catalog.NewCountryService(d.Repos.Countries, d.Logger.Named("countries"))
	d.Hotels = catalog.NewHotelService(d.Repos.Hotels, d.Repos.Countries, d.TxManager, d.Logger.Named("hotels"))
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var err error

	if d.Audit != nil {
		timeout := auditStopTimeout
		if deadline, ok := ctx.Deadline(); ok {
			timeout = time.Until(deadline)
		}
		if stopErr := d.Audit.Stop(timeout); stopErr != nil {
			err = multierr.Append(err, fmt.Errorf("failed to stop audit service: %w", stopErr))
		}
	}

	if d.Redis != nil {
		if closeErr := d.Redis.Close(); closeErr != nil {
			err = multierr.Append(err, fmt.Errorf("failed to close redis: %w", closeErr))
		}
	}

	if d.RepoFactory != nil {
		if closeErr := d.RepoFactory.Close(); closeErr != nil {
			err = multierr.Append(err, fmt.Errorf("failed to close database: %w", closeErr))
		}
	}

	_ = d.Logger.Sync()
	return err
}
