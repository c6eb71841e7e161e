package chatlock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/roadbuddy/quizbot/core/logger"
)

const (
	defaultTTL  = 2 * time.Minute
	defaultWait = 30 * time.Second
	defaultPoll = 50 * time.Millisecond
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`

// renewScript extends the lease only while the key still holds our token.
var renewScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
end
return 0`

// RedisClient is the subset of go-redis used by the lock.
type RedisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// RedisOptions tunes the Redis lock.
type RedisOptions struct {
	Prefix string
	// TTL bounds how long a crashed holder can block a chat.
	// A live holder renews it every TTL/3 until release.
	TTL  time.Duration
	Wait time.Duration
	Poll time.Duration
}

// Redis is a lock shared by all bot replicas using SET NX PX with a random token.
type Redis struct {
	client RedisClient
	opts   RedisOptions
}

// NewRedis builds a Redis lock with defaults for zero options.
func NewRedis(client RedisClient, opts RedisOptions) *Redis {
	if opts.Prefix == "" {
		opts.Prefix = "quizbot:chatlock:"
	}
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.Wait <= 0 {
		opts.Wait = defaultWait
	}
	if opts.Poll <= 0 {
		opts.Poll = defaultPoll
	}
	return &Redis{client: client, opts: opts}
}

// Lock polls until the key is acquired, the wait budget is spent or ctx is done.
func (r *Redis) Lock(ctx context.Context, chatID int64) (func(), error) {
	key := fmt.Sprintf("%s%d", r.opts.Prefix, chatID)
	token := uuid.NewString()

	waitCtx, cancel := context.WithTimeout(ctx, r.opts.Wait)
	defer cancel()

	ticker := time.NewTicker(r.opts.Poll)
	defer ticker.Stop()

	for {
		ok, err := r.client.SetNX(waitCtx, key, token, r.opts.TTL).Result()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("chatlock: acquire %s: %w", key, err)
		}
		if ok {
			return r.hold(key, token), nil
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("chatlock: %s: %w", key, ErrTimeout)
		case <-ticker.C:
		}
	}
}

// hold keeps the lease alive until the returned release func is called.
func (r *Redis) hold(key, token string) func() {
	stop := make(chan struct{})
	done := make(chan struct{})
	go r.renew(key, token, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			r.release(key, token)
		})
	}
}

func (r *Redis) renew(key, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	interval := r.opts.TTL / 3
	if interval < time.Millisecond {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), interval)
		n, err := r.client.Eval(ctx, renewScript, []string{key}, token, r.opts.TTL.Milliseconds()).Int64()
		cancel()
		switch {
		case err != nil:
			logger.Warn(ctx, logger.CompLock, "lock.renew_failed",
				slog.String("key", key),
				logger.Err(err),
			)
		case n == 0:
			logger.Warn(ctx, logger.CompLock, "lock.lost", slog.String("key", key))
			return
		}
	}
}

func (r *Redis) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.client.Eval(ctx, releaseScript, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		logger.Warn(ctx, logger.CompLock, "lock.release_failed",
			slog.String("key", key),
			logger.Err(err),
		)
	}
}
