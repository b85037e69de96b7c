package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"log/slog"
	"strings"
	"time"

	"github.com/Raisondetr3/taskflow-service/internal/model"
	"github.com/Raisondetr3/taskflow-service/pkg/logger"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var (
	ErrCacheMiss     = errors.New("cache miss")
	ErrCacheDisabled = errors.New("cache disabled")
	errNoClient      = errors.New("no Redis client available")
)

type FlowCache interface {
	SetFlow(ctx context.Context, flow *model.Flow, ttl time.Duration) error
	GetFlow(ctx context.Context, id uuid.UUID) (*model.Flow, error)
	DeleteFlow(ctx context.Context, id uuid.UUID) error
	SetFlowList(ctx context.Context, flows []*model.Flow, ttl time.Duration) error
	GetFlowList(ctx context.Context) ([]*model.Flow, error)
	InvalidateFlowList(ctx context.Context) error

	Ping(ctx context.Context) error
	Close() error
}

type redisCache struct {
	clients []redis.Cmdable
	enabled bool
}

func NewRedisCache(urls []string, password string, db int, enabled bool) (FlowCache, error) {
	ctx := context.Background()

	if !enabled {
		logger.LogCacheStatus(ctx, false, 0)
		return &redisCache{enabled: false}, nil
	}

	if len(urls) == 0 {
		return nil, errors.New("redis URLs cannot be empty when Redis is enabled")
	}

	clients := make([]redis.Cmdable, len(urls))
	for i, url := range urls {
		client := redis.NewClient(&redis.Options{
			Addr:     url,
			Password: password,
			DB:       db,
		})

		connCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := client.Ping(connCtx).Err()
		cancel()

		logger.LogRedisShardConnection(ctx, i, url, err)
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		clients[i] = client
	}

	logger.LogCacheStatus(ctx, true, len(urls))
	return &redisCache{clients: clients, enabled: true}, nil
}

// NewShardedCache wraps already connected clients, one per shard.
func NewShardedCache(clients ...redis.Cmdable) FlowCache {
	return &redisCache{clients: clients, enabled: len(clients) > 0}
}

func (r *redisCache) shardIndex(key string) int {
	if len(r.clients) == 1 {
		return 0
	}
	return int(crc32.ChecksumIEEE([]byte(key)) % uint32(len(r.clients)))
}

func (r *redisCache) set(ctx context.Context, op, key string, v any, ttl time.Duration) error {
	if !r.enabled {
		return nil
	}
	if len(r.clients) == 0 {
		return errNoClient
	}

	shard := r.shardIndex(key)
	start := time.Now()
	logger.LogRedisShardSelection(ctx, key, shard, op)

	data, err := json.Marshal(v)
	if err == nil {
		err = r.clients[shard].Set(ctx, key, data, ttl).Err()
	}
	logger.LogCacheOperation(ctx, op, key, shard, time.Since(start), err)
	return err
}

func (r *redisCache) get(ctx context.Context, op, key string, dst any) error {
	if !r.enabled {
		return ErrCacheDisabled
	}
	if len(r.clients) == 0 {
		return errNoClient
	}

	shard := r.shardIndex(key)
	start := time.Now()
	logger.LogRedisShardSelection(ctx, key, shard, op)

	data, err := r.clients[shard].Get(ctx, key).Bytes()
	duration := time.Since(start)
	if errors.Is(err, redis.Nil) {
		logger.LogRedisCacheHit(ctx, key, false, duration)
		return ErrCacheMiss
	}
	if err != nil {
		logger.LogCacheOperation(ctx, op, key, shard, duration, err)
		return err
	}

	logger.LogRedisCacheHit(ctx, key, true, duration)
	if err := json.Unmarshal(data, dst); err != nil {
		logger.LogCacheOperation(ctx, op, key, shard, duration, err)
		return err
	}
	return nil
}

func (r *redisCache) del(ctx context.Context, op, key string) error {
	if !r.enabled {
		return nil
	}
	if len(r.clients) == 0 {
		return errNoClient
	}

	shard := r.shardIndex(key)
	start := time.Now()
	err := r.clients[shard].Del(ctx, key).Err()
	logger.LogCacheOperation(ctx, op, key, shard, time.Since(start), err)
	return err
}

func (r *redisCache) SetFlow(ctx context.Context, flow *model.Flow, ttl time.Duration) error {
	return r.set(ctx, "SET", flowKey(flow.ID), flow, ttl)
}

func (r *redisCache) GetFlow(ctx context.Context, id uuid.UUID) (*model.Flow, error) {
	var flow model.Flow
	if err := r.get(ctx, "GET", flowKey(id), &flow); err != nil {
		return nil, err
	}
	if flow.Tasks == nil {
		flow.Tasks = []model.Task{}
	}
	return &flow, nil
}

func (r *redisCache) DeleteFlow(ctx context.Context, id uuid.UUID) error {
	return r.del(ctx, "DELETE", flowKey(id))
}

func (r *redisCache) SetFlowList(ctx context.Context, flows []*model.Flow, ttl time.Duration) error {
	return r.set(ctx, "SET_LIST", flowListKey, flows, ttl)
}

func (r *redisCache) GetFlowList(ctx context.Context) ([]*model.Flow, error) {
	var flows []*model.Flow
	if err := r.get(ctx, "GET_LIST", flowListKey, &flows); err != nil {
		return nil, err
	}
	return flows, nil
}

func (r *redisCache) InvalidateFlowList(ctx context.Context) error {
	err := r.del(ctx, "DELETE_LIST", flowListKey)
	if r.enabled {
		logger.LogCacheInvalidation(ctx, flowListKey, "flow_list_changed", err)
	}
	return err
}

func (r *redisCache) Ping(ctx context.Context) error {
	if !r.enabled {
		return nil
	}

	for i, client := range r.clients {
		start := time.Now()
		err := client.Ping(ctx).Err()
		logger.LogCacheOperation(ctx, "PING", "health_check", i, time.Since(start), err)
		if err != nil {
			return fmt.Errorf("redis shard %d: %w", i, err)
		}
	}
	return nil
}

func (r *redisCache) Close() error {
	if !r.enabled {
		return nil
	}

	ctx := context.Background()
	var lastErr error
	for i, client := range r.clients {
		if rc, ok := client.(*redis.Client); ok {
			if err := rc.Close(); err != nil {
				logger.LogError(ctx, err, "close_redis_shard", slog.Int("shard_index", i))
				lastErr = err
			}
		}
	}
	return lastErr
}

const flowListKey = "flows:list"

func flowKey(id uuid.UUID) string {
	return "flow:" + id.String()
}

func ParseRedisURLs(urls string) []string {
	result := []string{}
	for _, url := range strings.Split(urls, ",") {
		if trimmed := strings.TrimSpace(url); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
