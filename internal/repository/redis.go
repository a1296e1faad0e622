package repository

import (
	"context"
	"errors"
	"fmt"

	"pethotel/internal/config"
	"pethotel/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisDocumentStore stores every document as a string key and announces
// writes on a per-document channel.
type RedisDocumentStore struct {
	client *redis.Client
}

// NewRedisClient creates a Redis client from the config section.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

func NewRedisDocumentStore(client *redis.Client) *RedisDocumentStore {
	return &RedisDocumentStore{client: client}
}

func documentKey(key models.DocumentKey) string {
	return "document:" + key.String()
}

func changesChannel(key models.DocumentKey) string {
	return "document_changes:" + key.String()
}

func (r *RedisDocumentStore) GetDocument(ctx context.Context, key models.DocumentKey) ([]byte, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, documentKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s from redis: %w", key, err)
	}
	return val, nil
}

func (r *RedisDocumentStore) SetDocument(ctx context.Context, key models.DocumentKey, data []byte) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, documentKey(key), data, 0)
		pipe.Publish(ctx, changesChannel(key), data)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set document %s in redis: %w", key, err)
	}
	return nil
}

// WatchDocument subscribes to writes of key made by any process, this one
// included. fn runs on a dedicated goroutine until cancel is called or ctx
// is done.
func (r *RedisDocumentStore) WatchDocument(ctx context.Context, key models.DocumentKey, fn func([]byte)) (func(), error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	pubsub := r.client.Subscribe(ctx, changesChannel(key))
	// wait for the subscription so that no write after return is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", key, err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	ch := pubsub.Channel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-watchCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				fn([]byte(msg.Payload))
			}
		}
	}()

	return func() {
		cancel()
		pubsub.Close()
		<-done
	}, nil
}

// Ping checks the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
