package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Token store backends selectable with AUTH_TOKEN_STORE.
const (
	TokenStorePostgres = "postgres"
	TokenStoreRedis    = "redis"
	TokenStoreMemory   = "memory" // single instance only
)

// MinSigningKeyLength mirrors the HS256 key requirement of the token codec.
const MinSigningKeyLength = 32

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Auth          AuthConfig
	Audit         AuditConfig
	CORS          CORSConfig
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	TLS             struct {
		Enabled  bool
		CertFile string
		KeyFile  string
	}
}

// DatabaseConfig holds PostgreSQL database configuration.
// When ConnectionString (from DATABASE_URL) is set, it takes precedence over individual fields.
type DatabaseConfig struct {
	ConnectionString string // From DATABASE_URL when set
	Host             string
	Port             int
	User             string
	Password         string
	Database         string
	SSLMode          string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	AutoMigrate      bool
}

// RedisConfig holds the optional Redis connection used for token slots.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration
	KeyPrefix   string
}

// JWTConfig holds access token signing settings
type JWTConfig struct {
	Key               string
	Issuer            string
	Audience          string
	DurationInMinutes int
}

// AuthConfig holds refresh token and password policy settings
type AuthConfig struct {
	LoginProvider         string
	RefreshTokenName      string
	TokenStore            string // postgres, redis or memory
	RefreshTokenTTL       time.Duration
	AtomicRefreshRotation bool
	Password              PasswordPolicyConfig
}

// PasswordPolicyConfig mirrors the password rules enforced at registration
type PasswordPolicyConfig struct {
	MinLength              int
	RequireDigit           bool
	RequireLowercase       bool
	RequireUppercase       bool
	RequireNonAlphanumeric bool
}

// AuditConfig controls the asynchronous audit writer
type AuditConfig struct {
	Enabled    bool
	Workers    int
	BufferSize int
}

// CORSConfig holds cross-origin settings
type CORSConfig struct {
	AllowedOrigins []string
	MaxAge         int
}

// ObservabilityConfig holds logging configuration
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string // json or console
}

// New creates a new Config instance by loading environment variables
func New(ctx context.Context) (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getPort(),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			TLS: struct {
				Enabled  bool
				CertFile string
				KeyFile  string
			}{
				Enabled:  getEnvAsBool("TLS_ENABLED", false),
				CertFile: getEnv("TLS_CERT_FILE", "certs/cert.pem"),
				KeyFile:  getEnv("TLS_KEY_FILE", "certs/key.pem"),
			},
		},
		Database: loadDatabaseConfig(),
		Redis: RedisConfig{
			Addr:        getEnv("REDIS_ADDR", ""),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          getEnvAsInt("REDIS_DB", 0),
			DialTimeout: getEnvAsDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			KeyPrefix:   getEnv("REDIS_KEY_PREFIX", "hotel-listing"),
		},
		JWT: JWTConfig{
			Key:               getEnv("JWT_KEY", ""),
			Issuer:            getEnv("JWT_ISSUER", "HotelListingAPI"),
			Audience:          getEnv("JWT_AUDIENCE", "HotelListingAPIClient"),
			DurationInMinutes: getEnvAsInt("JWT_DURATION_IN_MINUTES", 10),
		},
		Auth: AuthConfig{
			LoginProvider:         getEnv("AUTH_LOGIN_PROVIDER", "HotelListingApi"),
			RefreshTokenName:      getEnv("AUTH_REFRESH_TOKEN_NAME", "RefreshToken"),
			TokenStore:            strings.ToLower(getEnv("AUTH_TOKEN_STORE", TokenStorePostgres)),
			RefreshTokenTTL:       getEnvAsDuration("AUTH_REFRESH_TOKEN_TTL", 0),
			AtomicRefreshRotation: getEnvAsBool("AUTH_ATOMIC_REFRESH_ROTATION", false),
			Password: PasswordPolicyConfig{
				MinLength:              getEnvAsInt("PASSWORD_MIN_LENGTH", 6),
				RequireDigit:           getEnvAsBool("PASSWORD_REQUIRE_DIGIT", true),
				RequireLowercase:       getEnvAsBool("PASSWORD_REQUIRE_LOWERCASE", true),
				RequireUppercase:       getEnvAsBool("PASSWORD_REQUIRE_UPPERCASE", true),
				RequireNonAlphanumeric: getEnvAsBool("PASSWORD_REQUIRE_NON_ALPHANUMERIC", false),
			},
		},
		Audit: AuditConfig{
			Enabled:    getEnvAsBool("AUDIT_ENABLED", true),
			Workers:    getEnvAsInt("AUDIT_WORKERS", 2),
			BufferSize: getEnvAsInt("AUDIT_BUFFER_SIZE", 256),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			MaxAge:         getEnvAsInt("CORS_MAX_AGE", 300),
		},
		Observability: ObservabilityConfig{
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	// Database validation (DATABASE_URL or DB_* vars)
	if c.Database.ConnectionString == "" && c.Database.Host == "" {
		return fmt.Errorf("database configuration required: set DATABASE_URL or DB_HOST")
	}
	if c.Database.ConnectionString == "" {
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
	}

	// JWT validation
	if len(c.JWT.Key) < MinSigningKeyLength {
		return fmt.Errorf("JWT_KEY must be at least %d characters", MinSigningKeyLength)
	}
	if c.JWT.Issuer == "" || c.JWT.Audience == "" {
		return fmt.Errorf("JWT issuer and audience are required")
	}
	if c.JWT.DurationInMinutes <= 0 {
		return fmt.Errorf("JWT duration must be a positive number of minutes")
	}

	// Token store validation
	switch c.Auth.TokenStore {
	case TokenStorePostgres, TokenStoreMemory:
	case TokenStoreRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required when AUTH_TOKEN_STORE=redis")
		}
	default:
		return fmt.Errorf("unknown token store %q", c.Auth.TokenStore)
	}
	if c.Auth.LoginProvider == "" || c.Auth.RefreshTokenName == "" {
		return fmt.Errorf("auth login provider and refresh token name are required")
	}
	if c.Auth.Password.MinLength < 1 {
		return fmt.Errorf("password minimum length must be at least 1")
	}

	// Observability validation
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// TokenDuration returns the access token lifetime.
func (c *JWTConfig) TokenDuration() time.Duration {
	return time.Duration(c.DurationInMinutes) * time.Minute
}

// Enabled reports whether a Redis address was configured.
func (c *RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// DSN returns the PostgreSQL connection string.
// Uses ConnectionString (from DATABASE_URL) when set; otherwise builds from individual fields.
func (c *DatabaseConfig) DSN() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// LogString returns a safe string for logging (no password). Parses ConnectionString when set.
func (c *DatabaseConfig) LogString() string {
	if c.ConnectionString != "" {
		u, err := url.Parse(c.ConnectionString)
		if err == nil {
			host := u.Hostname()
			port := u.Port()
			if port == "" {
				port = "5432"
			}
			db := strings.TrimPrefix(u.Path, "/")
			return fmt.Sprintf("host=%s port=%s database=%s", host, port, db)
		}
		return "host=<from DATABASE_URL>"
	}
	return fmt.Sprintf("host=%s port=%d database=%s", c.Host, c.Port, c.Database)
}

// loadDatabaseConfig loads database config from DATABASE_URL or DB_* env vars
func loadDatabaseConfig() DatabaseConfig {
	cfg := DatabaseConfig{
		MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		AutoMigrate:     getEnvAsBool("DB_AUTO_MIGRATE", false),
	}
	if dbURL := getEnv("DATABASE_URL", ""); dbURL != "" {
		cfg.ConnectionString = dbURL
		return cfg
	}
	cfg.Host = getEnv("DB_HOST", "localhost")
	cfg.Port = getEnvAsInt("DB_PORT", 5432)
	cfg.User = getEnv("DB_USER", "hotel")
	cfg.Password = getEnv("DB_PASSWORD", "")
	cfg.Database = getEnv("DB_NAME", "hotel_listing")
	cfg.SSLMode = getEnv("DB_SSLMODE", "disable")
	return cfg
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions

// getPort returns the server port from PORT or SERVER_PORT env vars (default: 8080)
func getPort() int {
	if value := os.Getenv("PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	if value := os.Getenv("SERVER_PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	return 8080
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
