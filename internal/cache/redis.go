// Package cache stores finished scan results in Redis so identical images
// skip the OCR and extraction pipeline entirely. The cache is optional:
// every function degrades to a miss or a no-op when Init was never called
// or failed.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/couponTracker/coupon-ocr-service/internal/models"
)

var Client *redis.Client

// ErrCacheMiss indicates the digest has not been scanned before
var ErrCacheMiss = errors.New("cache miss")

const (
	keyPrefix = "couponscan:"

	recentLimit = 50                  // scans kept per client
	recentTTL   = 30 * 24 * time.Hour // history expires with inactivity
)

func Init() error {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	password := os.Getenv("REDIS_PASSWORD")

	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		fmt.Sscanf(v, "%d", &db)
	}

	Client = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Client.Ping(ctx).Err(); err != nil {
		Client = nil
		return fmt.Errorf("redis ping failed: %w", err)
	}

	return nil
}

// GetScan returns the cached result for an image digest
func GetScan(ctx context.Context, digest string) (*models.ScanResult, error) {
	if Client == nil {
		return nil, ErrCacheMiss
	}

	data, err := Client.Get(ctx, keyPrefix+"scan:"+digest).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var result models.ScanResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("corrupt cache entry: %w", err)
	}
	return &result, nil
}

// SetScan caches a finished result under the image digest
func SetScan(ctx context.Context, digest string, result *models.ScanResult, ttl time.Duration) error {
	if Client == nil {
		return nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	if err := Client.Set(ctx, keyPrefix+"scan:"+digest, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// PushRecent prepends a result to the client's scan history
func PushRecent(ctx context.Context, clientID string, result *models.ScanResult) error {
	if Client == nil {
		return nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	key := keyPrefix + "recent:" + clientID
	pipe := Client.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, recentLimit-1)
	pipe.Expire(ctx, key, recentTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis push recent: %w", err)
	}
	return nil
}

// Recent returns the client's latest scan results, newest first
func Recent(ctx context.Context, clientID string, limit int) ([]models.ScanResult, error) {
	if Client == nil {
		return nil, nil
	}
	if limit <= 0 || limit > recentLimit {
		limit = recentLimit
	}

	entries, err := Client.LRange(ctx, keyPrefix+"recent:"+clientID, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis range: %w", err)
	}

	results := make([]models.ScanResult, 0, len(entries))
	for _, entry := range entries {
		var r models.ScanResult
		if err := json.Unmarshal([]byte(entry), &r); err != nil {
			continue // skip entries written by older versions
		}
		results = append(results, r)
	}
	return results, nil
}

func Close() error {
	if Client == nil {
		return nil
	}
	return Client.Close()
}
