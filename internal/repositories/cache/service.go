package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"eventflex/internal/models"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func NewRedisClient(cfg *RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// SessionState is the slice of a user consulted on every authenticated request.
type SessionState struct {
	TokenVersion int    `json:"token_version"`
	Status       string `json:"status"`
	Role         string `json:"role"`
}

// Cache is what services need from the cache layer. A miss returns (nil, nil).
type Cache interface {
	GetSession(ctx context.Context, userID uint) (*SessionState, error)
	CacheSession(ctx context.Context, userID uint, state *SessionState) error
	InvalidateSession(ctx context.Context, userID uint) error

	GetWallet(ctx context.Context, userID uint) (*models.Wallet, error)
	CacheWallet(ctx context.Context, wallet *models.Wallet) error
	InvalidateWallet(ctx context.Context, userID uint) error

	// MarkOnce records key and reports whether this call was the first to do so.
	MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Forget drops a key set by MarkOnce so the next caller is first again.
	Forget(ctx context.Context, key string) error
}

type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

// Base operations
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

// Session caching
func (s *CacheService) GetSession(ctx context.Context, userID uint) (*SessionState, error) {
	var state SessionState
	found, err := s.Get(ctx, GenerateKey(EntityUser, KeySession, userID), &state)
	if err != nil || !found {
		return nil, err
	}
	return &state, nil
}

func (s *CacheService) CacheSession(ctx context.Context, userID uint, state *SessionState) error {
	if state == nil {
		return errors.New("cannot cache nil session")
	}
	return s.SetWithTTL(ctx, GenerateKey(EntityUser, KeySession, userID), state, 15*time.Minute)
}

func (s *CacheService) InvalidateSession(ctx context.Context, userID uint) error {
	return s.Delete(ctx, GenerateKey(EntityUser, KeySession, userID))
}

// Wallet caching
func (s *CacheService) CacheWallet(ctx context.Context, wallet *models.Wallet) error {
	key := GenerateKey(EntityWallet, KeyUser, wallet.UserID)
	return s.Set(ctx, key, wallet)
}

func (s *CacheService) GetWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	key := GenerateKey(EntityWallet, KeyUser, userID)
	var wallet models.Wallet
	found, err := s.Get(ctx, key, &wallet)
	if err != nil || !found {
		return nil, err
	}
	return &wallet, nil
}

func (s *CacheService) InvalidateWallet(ctx context.Context, userID uint) error {
	return s.Delete(ctx, GenerateKey(EntityWallet, KeyUser, userID))
}

func (s *CacheService) MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, key, 1, ttl).Result()
}

func (s *CacheService) Forget(ctx context.Context, key string) error {
	return s.Delete(ctx, key)
}

// HealthCheck pings Redis.
func (s *CacheService) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	return nil
}

// GetStats exposes the client's connection pool counters.
func (s *CacheService) GetStats() *redis.PoolStats {
	return s.client.PoolStats()
}

// Close closes the Redis client connection
func (s *CacheService) Close() error {
	return s.client.Close()
}
