// Package redisstore keeps authentication token slots in Redis hashes.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/upb/hotel-listing/config"
	"github.com/upb/hotel-listing/models"
	"github.com/upb/hotel-listing/repositories"
	"go.uber.org/zap"
)

const (
	fieldValue     = "value"
	fieldStamp     = "stamp"
	fieldCreatedAt = "created_at"
)

// replaceTokenScript swaps the slot only when its value and stamp still equal
// ARGV[1] and ARGV[2].
const replaceTokenScript = `
local current = redis.call("HMGET", KEYS[1], "value", "stamp")
if not current[1] or current[1] ~= ARGV[1] or current[2] ~= ARGV[2] then
  return 0
end
redis.call("HSET", KEYS[1], "value", ARGV[3], "stamp", ARGV[4], "created_at", ARGV[5])
local ttl = tonumber(ARGV[6])
if ttl > 0 then
  redis.call("PEXPIRE", KEYS[1], ttl)
end
return 1
`

var replaceTokenLua = redis.NewScript(replaceTokenScript)

// TokenStore implements repositories.TokenStore on Redis.
type TokenStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewClient opens a client for cfg and verifies it answers PING.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// NewTokenStore creates a token store. A zero ttl keeps slots until they are
// removed or overwritten.
func NewTokenStore(client redis.UniversalClient, prefix string, ttl time.Duration, logger *zap.Logger) *TokenStore {
	return &TokenStore{client: client, prefix: prefix, ttl: ttl, logger: logger}
}

var _ repositories.TokenStore = (*TokenStore)(nil)

func (s *TokenStore) key(k models.TokenKey) string {
	return s.prefix + ":token:" + k.UserID + ":" + k.LoginProvider + ":" + k.Name
}

// GetToken returns the slot contents or repositories.ErrNotFound
func (s *TokenStore) GetToken(ctx context.Context, key models.TokenKey) (*models.UserToken, error) {
	fields, err := s.client.HGetAll(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("get token: %w", repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	value, ok := fields[fieldValue]
	if !ok {
		return nil, fmt.Errorf("get token: %w", repositories.ErrNotFound)
	}

	tok := &models.UserToken{
		UserID:        key.UserID,
		LoginProvider: key.LoginProvider,
		Name:          key.Name,
		Value:         value,
		SecurityStamp: fields[fieldStamp],
	}
	if raw := fields[fieldCreatedAt]; raw != "" {
		createdAt, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("corrupt token slot %s: %w", s.key(key), err)
		}
		tok.CreatedAt = createdAt
	}
	return tok, nil
}

// SetToken overwrites the slot
func (s *TokenStore) SetToken(ctx context.Context, tok *models.UserToken) error {
	redisKey := s.key(tok.Key())

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, redisKey)
		pipe.HSet(ctx, redisKey,
			fieldValue, tok.Value,
			fieldStamp, tok.SecurityStamp,
			fieldCreatedAt, tok.CreatedAt.UTC().Format(time.RFC3339Nano),
		)
		if s.ttl > 0 {
			pipe.PExpire(ctx, redisKey, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set token: %w", err)
	}

	s.logger.Debug("token stored",
		zap.String("user_id", tok.UserID),
		zap.String("provider", tok.LoginProvider),
		zap.String("name", tok.Name))
	return nil
}

// RemoveToken empties the slot
func (s *TokenStore) RemoveToken(ctx context.Context, key models.TokenKey) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}

// ReplaceToken swaps the slot value only when it still holds expectedValue
// under expectedStamp
func (s *TokenStore) ReplaceToken(ctx context.Context, key models.TokenKey, expectedValue, expectedStamp string, next *models.UserToken) (bool, error) {
	swapped, err := replaceTokenLua.Run(ctx, s.client, []string{s.key(key)},
		expectedValue,
		expectedStamp,
		next.Value,
		next.SecurityStamp,
		next.CreatedAt.UTC().Format(time.RFC3339Nano),
		s.ttl.Milliseconds(),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to replace token: %w", err)
	}
	return swapped == 1, nil
}

// Ping reports Redis availability and round-trip latency.
func (s *TokenStore) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.client.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("redis unavailable: %w", err)
	}
	return time.Since(start), nil
}
