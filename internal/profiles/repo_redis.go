package profiles

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "profile:"

// hashClient is the subset of the go-redis client used by RedisRepo.
type hashClient interface {
	HGetAll(ctx context.Context, key string) *goredis.MapStringStringCmd
	HSet(ctx context.Context, key string, values ...interface{}) *goredis.IntCmd
	Close() error
}

// RedisRepo stores each profile as a hash at profile:<customer id>.
type RedisRepo struct {
	client hashClient
}

// NewRedisRepo connects to Redis and verifies the connection.
func NewRedisRepo(ctx context.Context, addr, password string, database int) (*RedisRepo, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DB:          database,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisRepo{client: rdb}, nil
}

func redisKey(customerID string) string {
	return redisKeyPrefix + customerID
}

func (r *RedisRepo) Get(ctx context.Context, customerID string) (Profile, error) {
	fields, err := r.client.HGetAll(ctx, redisKey(customerID)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	summary, ok := fields["summary"]
	if !ok {
		return Profile{}, ErrNotFound
	}
	profile := Profile{CustomerID: customerID, Summary: summary}
	if raw := fields["last_updated"]; raw != "" {
		if ts, perr := time.Parse(time.RFC3339Nano, raw); perr == nil {
			profile.UpdatedAt = ts
		}
	}
	return profile, nil
}

func (r *RedisRepo) Upsert(ctx context.Context, profile Profile) error {
	updated := profile.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}
	return r.client.HSet(ctx, redisKey(profile.CustomerID),
		"summary", profile.Summary,
		"last_updated", updated.UTC().Format(time.RFC3339Nano),
	).Err()
}

func (r *RedisRepo) Close() error {
	return r.client.Close()
}
