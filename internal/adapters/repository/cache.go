package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/squad/internal/domain/model"
	"github.com/okian/squad/pkg/logger"
	"github.com/okian/squad/pkg/metrics"
)

const (
	playerCachePrefix      = "squad:player:"
	playerGenerationPrefix = "squad:player-gen:"

	// generationTTL outlives any read that could race a write.
	generationTTL = 24 * time.Hour
)

var errStaleRead = errors.New("player changed during cache fill")

// DefaultPlayerCacheTTL applies when WithCacheTTL is not given.
const DefaultPlayerCacheTTL = 5 * time.Minute

// CachedStore serves player reads from redis and falls back to the wrapped
// store on a miss. Writes go to the wrapped store first, then bump the
// player's generation and evict. A miss only fills the cache when the
// generation it saw before reading the store is still current, so a read
// that raced a write never caches the old row.
type CachedStore struct {
	Store
	redis *redis.Client
	ttl   time.Duration
	log   logger.Logger
}

var _ Store = (*CachedStore)(nil)

// CacheOption configures a CachedStore.
type CacheOption func(*CachedStore)

// WithCacheTTL sets how long a player stays cached.
func WithCacheTTL(ttl time.Duration) CacheOption {
	return func(c *CachedStore) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCacheLogger sets the logger used for cache failures.
func WithCacheLogger(l logger.Logger) CacheOption {
	return func(c *CachedStore) {
		if l != nil {
			c.log = l
		}
	}
}

// NewCachedStore wraps next with a redis cache.
func NewCachedStore(next Store, client *redis.Client, opts ...CacheOption) *CachedStore {
	c := &CachedStore{Store: next, redis: client, ttl: DefaultPlayerCacheTTL}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func playerKey(id string) string { return playerCachePrefix + id }

func generationKey(id string) string { return playerGenerationPrefix + id }

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func generationOf(ctx context.Context, r getter, id string) (int64, error) {
	gen, err := r.Get(ctx, generationKey(id)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *CachedStore) GetPlayer(ctx context.Context, id string) (model.Player, error) {
	raw, err := c.redis.Get(ctx, playerKey(id)).Bytes()
	if err == nil {
		var p model.Player
		if jerr := json.Unmarshal(raw, &p); jerr == nil {
			metrics.RecordCacheHit()
			return p, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.warn(ctx, "player cache read failed", id, err)
	}
	metrics.RecordCacheMiss()

	gen, genErr := generationOf(ctx, c.redis, id)
	if genErr != nil {
		c.warn(ctx, "player cache generation read failed", id, genErr)
	}
	p, err := c.Store.GetPlayer(ctx, id)
	if err != nil {
		return model.Player{}, err
	}
	if genErr == nil {
		c.put(ctx, p, gen)
	}
	return p, nil
}

func (c *CachedStore) UpdatePlayer(ctx context.Context, p model.Player) (model.Player, error) {
	out, err := c.Store.UpdatePlayer(ctx, p)
	c.evict(ctx, p.ID)
	return out, err
}

func (c *CachedStore) UpdateSkills(ctx context.Context, id string, skills model.Skills, at time.Time) (model.Player, error) {
	out, err := c.Store.UpdateSkills(ctx, id, skills, at)
	c.evict(ctx, id)
	return out, err
}

func (c *CachedStore) DeletePlayer(ctx context.Context, id string) error {
	err := c.Store.DeletePlayer(ctx, id)
	c.evict(ctx, id)
	return err
}

// Close closes the redis client and the wrapped store.
func (c *CachedStore) Close() error {
	return errors.Join(c.redis.Close(), c.Store.Close())
}

// put caches p unless the player was written after gen was read.
func (c *CachedStore) put(ctx context.Context, p model.Player, gen int64) {
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	err = c.redis.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := generationOf(ctx, tx, p.ID)
		if err != nil {
			return err
		}
		if cur != gen {
			return errStaleRead
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, playerKey(p.ID), raw, c.ttl)
			return nil
		})
		return err
	}, generationKey(p.ID))
	switch {
	case err == nil:
	case errors.Is(err, errStaleRead), errors.Is(err, redis.TxFailedErr):
		if c.log != nil {
			c.log.Debug(ctx, "player cache fill skipped", logger.String("player_id", p.ID))
		}
	default:
		c.warn(ctx, "player cache write failed", p.ID, err)
	}
}

func (c *CachedStore) evict(ctx context.Context, id string) {
	_, err := c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(id))
		pipe.Expire(ctx, generationKey(id), generationTTL)
		pipe.Del(ctx, playerKey(id))
		return nil
	})
	if err != nil {
		c.warn(ctx, "player cache evict failed", id, err)
	}
}

func (c *CachedStore) warn(ctx context.Context, msg, id string, err error) {
	metrics.RecordErrorByComponent("cache", "redis")
	if c.log != nil {
		c.log.Warn(ctx, msg, logger.String("player_id", id), logger.Error(err))
	}
}

// NewRedisClient builds a client and pings it.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		MaxRetries:   3,
		PoolSize:     20,
		MinIdleConns: 2,
		PoolTimeout:  30 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
