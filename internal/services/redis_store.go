package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"yourresumescanner/resume-scanner/internal/models"
)

const defaultRedisPrefix = "resumeAnalysis_"

// RedisStore shares results between API instances. Keys are written with
// SETNX so a scan id can only be stored once.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Put implements ResultStore.
func (s *RedisStore) Put(ctx context.Context, id string, data *models.AnalysisData) error {
	if err := validScanID(id); err != nil {
		return err
	}

	raw, err := encodeAnalysis(data)
	if err != nil {
		return err
	}

	ok, err := s.client.SetNX(ctx, s.key(id), raw, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	if !ok {
		return ErrScanExists
	}
	return nil
}

// Get implements ResultStore.
func (s *RedisStore) Get(ctx context.Context, id string) (*models.AnalysisData, error) {
	if err := validScanID(id); err != nil {
		return nil, err
	}

	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoDataFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return decodeAnalysis(raw)
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}
