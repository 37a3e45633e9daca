package app

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/hotel-listing/config"
	"github.com/upb/hotel-listing/repositories/postgres"
	"github.com/upb/hotel-listing/repositories/redisstore"
	"go.uber.org/zap/zaptest"
)

func TestNewDependencies(t *testing.T) {
	t.Run("database connection failure", func(t *testing.T) {
		cfg := testConfig()
		cfg.Database.Host = "127.0.0.1"
		cfg.Database.Port = 1

		deps, err := NewDependencies(context.Background(), cfg, zaptest.NewLogger(t))
		assert.Error(t, err)
		assert.Nil(t, deps)
		assert.Contains(t, err.Error(), "failed to initialize database")
	})
}

func TestBuild(t *testing.T) {
	t.Run("postgres token store wires every component", func(t *testing.T) {
		factory, mock := mockFactory(t)
		mock.ExpectClose()

		deps, err := Build(testConfig(), factory, nil, zaptest.NewLogger(t))
		require.NoError(t, err)

		assert.NotNil(t, deps.DB)
		assert.NotNil(t, deps.Repos)
		assert.NotNil(t, deps.TxManager)
		assert.Same(t, deps.Repos.Tokens, deps.TokenStore)
		assert.NotNil(t, deps.Codec)
		assert.NotNil(t, deps.Identity)
		assert.NotNil(t, deps.Auth)
		assert.NotNil(t, deps.AuthMiddleware)
		assert.NotNil(t, deps.Countries)
		assert.NotNil(t, deps.Hotels)
		assert.Nil(t, deps.Audit)

		require.NoError(t, deps.Close(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("memory token store", func(t *testing.T) {
		factory, _ := mockFactory(t)
		cfg := testConfig()
		cfg.Auth.TokenStore = config.TokenStoreMemory

		deps, err := Build(cfg, factory, nil, zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.NotSame(t, deps.Repos.Tokens, deps.TokenStore)
	})

	t.Run("redis token store", func(t *testing.T) {
		factory, mock := mockFactory(t)
		mock.ExpectClose()
		server := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: server.Addr()})

		cfg := testConfig()
		cfg.Auth.TokenStore = config.TokenStoreRedis
		cfg.Redis.Addr = server.Addr()

		deps, err := Build(cfg, factory, client, zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.IsType(t, &redisstore.TokenStore{}, deps.TokenStore)

		require.NoError(t, deps.Close(context.Background()))
		assert.Error(t, client.Ping(context.Background()).Err())
	})

	t.Run("redis token store without a client", func(t *testing.T) {
		factory, _ := mockFactory(t)
		cfg := testConfig()
		cfg.Auth.TokenStore = config.TokenStoreRedis

		deps, err := Build(cfg, factory, nil, zaptest.NewLogger(t))
		assert.Error(t, err)
		assert.Nil(t, deps)
		assert.Contains(t, err.Error(), "redis is not configured")
	})

	t.Run("unknown token store", func(t *testing.T) {
		factory, _ := mockFactory(t)
		cfg := testConfig()
		cfg.Auth.TokenStore = "memcached"

		_, err := Build(cfg, factory, nil, zaptest.NewLogger(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown token store")
	})

	t.Run("short signing key", func(t *testing.T) {
		factory, _ := mockFactory(t)
		cfg := testConfig()
		cfg.JWT.Key = "short"

		_, err := Build(cfg, factory, nil, zaptest.NewLogger(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create token codec")
	})
}

func TestDependenciesClose(t *testing.T) {
	t.Run("audit service is drained", func(t *testing.T) {
		factory, mock := mockFactory(t)
		mock.ExpectClose()

		cfg := testConfig()
		cfg.Audit = config.AuditConfig{Enabled: true, Workers: 1, BufferSize: 8}

		deps, err := Build(cfg, factory, nil, zaptest.NewLogger(t))
		require.NoError(t, err)
		require.NotNil(t, deps.Audit)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		assert.NoError(t, deps.Close(ctx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// Test helpers

func mockFactory(t *testing.T) (*postgres.RepositoryFactory, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	logger := zaptest.NewLogger(t)
	return postgres.NewRepositoryFactoryFromDB(postgres.WrapDB(sqlDB, logger), logger), mock
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Server: config.ServerConfig{
			Host:            "localhost",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: config.DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "hotels",
			Password:        "hotels",
			Database:        "hotels_test",
			SSLMode:         "disable",
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		JWT: config.JWTConfig{
			Key:               "dependencies-test-signing-key-0123456789",
			Issuer:            "HotelListingAPI",
			Audience:          "HotelListingAPIClient",
			DurationInMinutes: 10,
		},
		Auth: config.AuthConfig{
			LoginProvider:    "HotelListingApi",
			RefreshTokenName: "RefreshToken",
			TokenStore:       config.TokenStorePostgres,
			RefreshTokenTTL:  24 * time.Hour,
			Password:         config.PasswordPolicyConfig{MinLength: 6, RequireDigit: true},
		},
		Observability: config.ObservabilityConfig{
			LogLevel:  "debug",
			LogFormat: "json",
		},
	}
}
