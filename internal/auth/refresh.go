package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const refreshTokenTTL = 7 * 24 * time.Hour

var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// RefreshStore maps opaque refresh tokens to the email of the account
// they were issued to.
type RefreshStore interface {
	Set(ctx context.Context, token, email string) error
	Get(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}

// NewRefreshToken returns a random opaque token.
func NewRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// RedisRefreshStore keeps refresh tokens in redis so they survive
// restarts and expire on their own.
type RedisRefreshStore struct {
	client *redis.Client
}

func NewRedisRefreshStore(client *redis.Client) *RedisRefreshStore {
	return &RedisRefreshStore{client: client}
}

func refreshKey(token string) string { return "refresh:" + token }

func (s *RedisRefreshStore) Set(ctx context.Context, token, email string) error {
	return s.client.Set(ctx, refreshKey(token), email, refreshTokenTTL).Err()
}

func (s *RedisRefreshStore) Get(ctx context.Context, token string) (string, error) {
	email, err := s.client.Get(ctx, refreshKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrRefreshTokenNotFound
	}
	return email, err
}

func (s *RedisRefreshStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, refreshKey(token)).Err()
}

// MemoryRefreshStore is the test double for RefreshStore.
type MemoryRefreshStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

func NewMemoryRefreshStore() *MemoryRefreshStore {
	return &MemoryRefreshStore{tokens: map[string]string{}}
}

func (s *MemoryRefreshStore) Set(_ context.Context, token, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = email
	return nil
}

func (s *MemoryRefreshStore) Get(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.tokens[token]
	if !ok {
		return "", ErrRefreshTokenNotFound
	}
	return email, nil
}

func (s *MemoryRefreshStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}
