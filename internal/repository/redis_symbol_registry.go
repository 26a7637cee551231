package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	domrepo "TrendPull/internal/domain/repository"
)

// RedisSymbolRegistry holds the active subscription set in a Redis set.
// The collector reads it fresh on every reconnect cycle, so additions and
// removals take effect on the next cycle without a restart.
type RedisSymbolRegistry struct {
	client *redis.Client
	key    string
}

// NewRedisSymbolRegistry creates a registry under prefix ("<prefix>:symbols").
func NewRedisSymbolRegistry(client *redis.Client, prefix string) *RedisSymbolRegistry {
	if prefix == "" {
		prefix = "trendpull"
	}
	return &RedisSymbolRegistry{client: client, key: prefix + ":symbols"}
}

func (r *RedisSymbolRegistry) List(ctx context.Context) ([]string, error) {
	members, err := r.client.SMembers(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}
	out := make([]string, 0, len(members))
	for _, m := range members {
		if m = strings.ToUpper(strings.TrimSpace(m)); m != "" {
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *RedisSymbolRegistry) Add(ctx context.Context, symbol string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return fmt.Errorf("empty symbol")
	}
	if err := r.client.SAdd(ctx, r.key, symbol).Err(); err != nil {
		return fmt.Errorf("add symbol: %w", err)
	}
	return nil
}

func (r *RedisSymbolRegistry) Remove(ctx context.Context, symbol string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if err := r.client.SRem(ctx, r.key, symbol).Err(); err != nil {
		return fmt.Errorf("remove symbol: %w", err)
	}
	return nil
}

var _ domrepo.SymbolRegistry = (*RedisSymbolRegistry)(nil)
