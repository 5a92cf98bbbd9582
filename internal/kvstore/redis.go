package kvstore

import (
	"context"
	"encoding/json"

	"github.com/wonny/memestock/pkg/redis"
)

// Redis keeps each namespace under its own key prefix with no expiry
type Redis struct {
	client *redis.Client
}

// NewRedis wraps a connected client
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) cache(namespace string) *redis.Cache {
	return redis.NewCache(r.client, "memestock:"+namespace)
}

func (r *Redis) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	var raw json.RawMessage
	found, err := r.cache(namespace).Get(ctx, key, &raw)
	if err != nil || !found {
		return nil, false, err
	}
	return raw, true, nil
}

func (r *Redis) Set(ctx context.Context, namespace, key string, value []byte) error {
	return r.cache(namespace).Set(ctx, key, json.RawMessage(value), 0)
}

func (r *Redis) SetIfAbsent(ctx context.Context, namespace, key string, value []byte) (bool, error) {
	return r.cache(namespace).SetIfAbsent(ctx, key, json.RawMessage(value), 0)
}

func (r *Redis) Close() error {
	return r.client.Close()
}
