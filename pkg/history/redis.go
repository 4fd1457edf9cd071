package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kart-io/feishu-notifier/pkg/logger"
)

// RedisOptions configures the redis-backed recorder
type RedisOptions struct {
	Addr         string
	Password     string
	DB           int
	Key          string
	Size         int
	TTL          time.Duration
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RedisRecorder keeps entries as JSON in a capped redis list.
type RedisRecorder struct {
	client *redis.Client
	key    string
	size   int
	ttl    time.Duration
	logger logger.Logger
}

// NewRedisRecorder connects to redis and verifies the connection.
func NewRedisRecorder(opts *RedisOptions, log logger.Logger) (*RedisRecorder, error) {
	if log == nil {
		log = logger.Discard
	}
	if opts == nil {
		return nil, errors.New("redis options cannot be nil")
	}

	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 3 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 3 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), opts.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		log.Error("Failed to connect to Redis", "addr", opts.Addr, "error", err)
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	r := NewRedisRecorderWithClient(client, opts.Key, opts.Size, opts.TTL, log)
	log.Info("Redis history recorder created", "addr", opts.Addr, "key", r.key, "size", r.size)
	return r, nil
}

// NewRedisRecorderWithClient uses an existing client without pinging it.
func NewRedisRecorderWithClient(client *redis.Client, key string, size int, ttl time.Duration, log logger.Logger) *RedisRecorder {
	if log == nil {
		log = logger.Discard
	}
	if key == "" {
		key = "feishu:notifications"
	}
	if size <= 0 {
		size = DefaultSize
	}
	return &RedisRecorder{client: client, key: key, size: size, ttl: ttl, logger: log}
}

// Record pushes entry to the head of the list and trims it to size.
func (r *RedisRecorder) Record(ctx context.Context, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal history entry: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, r.key, data)
	pipe.LTrim(ctx, r.key, 0, int64(r.size-1))
	if r.ttl > 0 {
		pipe.Expire(ctx, r.key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record history entry: %w", err)
	}
	return nil
}

func (r *RedisRecorder) Recent(ctx context.Context, n int) ([]Entry, error) {
	stop := int64(-1)
	if n > 0 {
		stop = int64(n - 1)
	}

	raw, err := r.client.LRange(ctx, r.key, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	entries := make([]Entry, 0, len(raw))
	for _, item := range raw {
		var e Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			r.logger.Warn("Skipping malformed history entry", "key", r.key, "error", err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (r *RedisRecorder) Close() error {
	return r.client.Close()
}
