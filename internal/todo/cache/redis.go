package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gogotex/todo-service/internal/todo"
	"github.com/redis/go-redis/v9"
)

const (
	listKey       = "todo:list"
	generationKey = "todo:list:gen"
)

// RedisCache keeps a JSON snapshot of the full todo list under a single key.
//
// Every Invalidate bumps a generation counter. A reader takes the generation
// before it loads the list from the store and hands it back to SetList; the
// snapshot is written only if no writer invalidated in between, so a slow
// reader can never put back a list older than a committed write.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache namespaces its keys under prefix (CACHE_KEY_PREFIX).
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) key() string {
	return c.prefix + listKey
}

func (c *RedisCache) genKey() string {
	return c.prefix + generationKey
}

// GetList reports ok=false on a miss.
func (c *RedisCache) GetList(ctx context.Context) ([]todo.Todo, bool, error) {
	b, err := c.client.Get(ctx, c.key()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	out := []todo.Todo{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// Generation returns the current invalidation counter (0 before the first write).
func (c *RedisCache) Generation(ctx context.Context) (int64, error) {
	return generation(c.client.Get(ctx, c.genKey()))
}

func generation(cmd *redis.StringCmd) (int64, error) {
	gen, err := cmd.Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// SetList stores list if the generation is still gen. It reports whether
// the snapshot was written; false means a writer invalidated meanwhile.
func (c *RedisCache) SetList(ctx context.Context, gen int64, list []todo.Todo) (bool, error) {
	b, err := json.Marshal(list)
	if err != nil {
		return false, err
	}

	stored := false
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := generation(tx.Get(ctx, c.genKey()))
		if err != nil {
			return err
		}
		if cur != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key(), b, c.ttl)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, c.genKey())
	if errors.Is(err, redis.TxFailedErr) {
		// the generation moved between WATCH and EXEC
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return stored, nil
}

// Invalidate bumps the generation and drops the snapshot.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.genKey())
		pipe.Del(ctx, c.key())
		return nil
	})
	return err
}
