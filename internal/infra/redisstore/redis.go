// Package redisstore implements the shared response store of the API cache on Redis.
package redisstore

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"agency/config"
	"agency/internal/apicache"
	"agency/internal/domain/lifecycle"
	"agency/internal/errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

const (
	defaultTTL    = 5 * time.Minute
	defaultPrefix = "agency:"

	poolMonitorInterval = 5 * time.Second
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New provides the cache's shared response store. Without a redis section in
// the config it returns a store that keeps nothing.
func New(params Params) (apicache.ResponseStore, error) {
	cfg := params.Config.Cache.Redis
	if cfg == nil || cfg.Addr == "" {
		params.Logger.Info("Shared response store disabled")

		return apicache.NoopStore{}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	store := NewStore(client, cfg.TTL, cfg.Prefix, params.Logger)

	monitorCtx, cancelMonitor := context.WithCancel(context.Background())

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := client.Ping(ctx).Err(); err != nil {
				return errors.Wrap(err, "failed to ping Redis")
			}
			params.Logger.Info("Shared response store connected", slog.String("addr", cfg.Addr))

			go monitorPool(monitorCtx, params.Logger, client, poolMonitorInterval)

			return nil
		},
		OnStop: func(_ context.Context) error {
			cancelMonitor()

			return client.Close()
		},
	})

	return store, nil
}

// Store saves fulfilled payloads under "<prefix>resp:<key>" and indexes them
// in one set per tag at "<prefix>tag:<tag>".
type Store struct {
	client redis.UniversalClient
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

var _ apicache.ResponseStore = (*Store)(nil)

// NewStore wraps an existing client.
func NewStore(client redis.UniversalClient, ttl time.Duration, prefix string, logger *slog.Logger) *Store {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if prefix == "" {
		prefix = defaultPrefix
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		client: client,
		ttl:    ttl,
		prefix: prefix,
		logger: logger,
	}
}

func (s *Store) payloadKey(key apicache.Key) string {
	return s.prefix + "resp:" + key.String()
}

func (s *Store) tagKey(tag apicache.Tag) string {
	return s.prefix + "tag:" + string(tag)
}

func (s *Store) Load(ctx context.Context, key apicache.Key) (json.RawMessage, bool, error) {
	raw, err := s.client.Get(ctx, s.payloadKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to load cached response")
	}

	return json.RawMessage(raw), true, nil
}

func (s *Store) Save(ctx context.Context, key apicache.Key, tags []apicache.Tag, payload json.RawMessage) error {
	payloadKey := s.payloadKey(key)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, payloadKey, []byte(payload), s.ttl)
		for _, tag := range tags {
			tagKey := s.tagKey(tag)
			pipe.SAdd(ctx, tagKey, payloadKey)
			pipe.Expire(ctx, tagKey, s.ttl)
		}

		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to save cached response")
	}

	return nil
}

func (s *Store) Invalidate(ctx context.Context, tags []apicache.Tag) error {
	for _, tag := range tags {
		tagKey := s.tagKey(tag)

		members, err := s.client.SMembers(ctx, tagKey).Result()
		if err != nil {
			return errors.Wrapf(err, "failed to read tag %s", tag)
		}

		keys := append(members, tagKey)
		if err := s.client.Del(ctx, keys...).Err(); err != nil {
			return errors.Wrapf(err, "failed to drop responses for tag %s", tag)
		}

		s.logger.Debug("Dropped shared responses", slog.String("tag", string(tag)), slog.Int("count", len(members)))
	}

	return nil
}

func monitorPool(ctx context.Context, logger *slog.Logger, client *redis.Client, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	prev := client.PoolStats()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur := client.PoolStats()
			timeoutDelta := cur.Timeouts - prev.Timeouts

			if timeoutDelta > 0 {
				logger.LogAttrs(ctx, slog.LevelWarn, "Redis pool timeouts detected",
					slog.Uint64("timeoutDelta", uint64(timeoutDelta)),
					slog.Uint64("totalConns", uint64(cur.TotalConns)),
					slog.Uint64("idleConns", uint64(cur.IdleConns)),
					slog.Uint64("staleConns", uint64(cur.StaleConns)),
				)
			}

			prev = cur
		}
	}
}
