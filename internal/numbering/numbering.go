// Package numbering allocates request numbers of the form
// {PREFIX}-{YEAR}-{5-digit-sequence}. Sequences are per kind and year.
package numbering

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/request-service/internal/registry"
)

// Allocator hands out the next unique number for a kind.
type Allocator interface {
	Next(ctx context.Context, desc registry.Descriptor) (string, error)
}

// RedisAllocator backs sequences with Redis INCR, which is atomic across
// service instances.
type RedisAllocator struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisAllocator creates the allocator.
func NewRedisAllocator(client *redis.Client) *RedisAllocator {
	return &RedisAllocator{client: client, now: time.Now}
}

// Next increments the kind/year sequence and formats the number.
func (a *RedisAllocator) Next(ctx context.Context, desc registry.Descriptor) (string, error) {
	year := a.now().Year()
	key := fmt.Sprintf("seq:%s:%d", desc.Kind, year)
	n, err := a.client.Incr(ctx, key).Result()
	if err != nil {
		return "", fmt.Errorf("allocate %s number: %w", desc.Kind, err)
	}
	return Format(desc.NumberPrefix, year, n), nil
}

// Format renders a request number.
func Format(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%05d", prefix, year, seq)
}
