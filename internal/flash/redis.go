package flash

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient はRedisStoreが使用するコマンドの部分集合。
// *redis.Client が満たす。
type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	GetDel(ctx context.Context, key string) *redis.StringCmd
}

// RedisStore はRedisに保存するStore。複数インスタンス間でメッセージを共有できる。
type RedisStore struct {
	client RedisClient
	ttl    time.Duration
}

// NewRedisStore はRedisStoreを生成する。
func NewRedisStore(client RedisClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// NewRedisClient はURLからクライアントを生成し、疎通を確認する。
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// Set はSET EXでメッセージを保存する。
func (s *RedisStore) Set(ctx context.Context, key, msg string) error {
	if err := s.client.Set(ctx, key, msg, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set flash message: %w", err)
	}
	return nil
}

// Pop はGETDELでメッセージを取り出す。読み出しと削除は原子的に行われる。
func (s *RedisStore) Pop(ctx context.Context, key string) (string, bool, error) {
	msg, err := s.client.GetDel(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to pop flash message: %w", err)
	}
	return msg, true, nil
}
