package kv

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/bryanwahyu/genefit/internal/domain/session"
)

// Redis stores entries as plain keys "<prefix><namespace>:<key>" without TTL.
type Redis struct {
	client redis.UniversalClient // works with both single and cluster
	prefix string
}

// NewRedis connects to a single node, or to a cluster when more than one
// address is given and useCluster is set.
func NewRedis(addrs []string, password string, db int, useCluster bool, prefix string) *Redis {
	var rdb redis.UniversalClient
	if useCluster && len(addrs) > 1 {
		rdb = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:    addrs,
			Password: password,
		})
	} else {
		rdb = redis.NewClient(&redis.Options{
			Addr:     addrs[0],
			Password: password,
			DB:       db,
		})
	}
	return NewRedisWithClient(rdb, prefix)
}

func NewRedisWithClient(client redis.UniversalClient, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(namespace, key string) string {
	return r.prefix + namespace + ":" + key
}

func (r *Redis) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	v, err := r.client.Get(ctx, r.key(namespace, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, session.ErrNoEntry
	}
	return v, err
}

func (r *Redis) Set(ctx context.Context, namespace, key string, value []byte) error {
	return r.client.Set(ctx, r.key(namespace, key), value, 0).Err()
}

func (r *Redis) Delete(ctx context.Context, namespace, key string) error {
	return r.client.Del(ctx, r.key(namespace, key)).Err()
}

// Ping backs the /readyz check.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
