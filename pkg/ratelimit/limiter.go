// Package ratelimit keeps outgoing webhook calls under the limits Feishu
// enforces for custom bots (5 requests per second, 100 per minute).
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kart-io/feishu-notifier/pkg/config"
)

// ErrLimitExceeded is returned when a wait could never be satisfied.
var ErrLimitExceeded = errors.New("rate limit exceeded")

// Rate is a number of tokens per second.
type Rate float64

// PerSecond returns a rate of n per second
func PerSecond(n float64) Rate { return Rate(n) }

// PerMinute returns a rate of n per minute
func PerMinute(n float64) Rate { return Rate(n / 60) }

// Limiter blocks callers until a request may proceed.
type Limiter interface {
	// Allow consumes a token if one is available now.
	Allow() bool
	// Wait blocks until a token is available or ctx is done.
	Wait(ctx context.Context) error
}

// TokenBucket is a token bucket refilled continuously at rate.
type TokenBucket struct {
	mu       sync.Mutex
	rate     Rate
	burst    int
	tokens   float64
	lastTick time.Time
	now      func() time.Time
}

// NewTokenBucket creates a bucket that starts full.
func NewTokenBucket(rate Rate, burst int) *TokenBucket {
	return NewTokenBucketWithClock(rate, burst, time.Now)
}

// NewTokenBucketWithClock creates a bucket that reads time from now.
func NewTokenBucketWithClock(rate Rate, burst int, now func() time.Time) *TokenBucket {
	if rate < 0 {
		rate = 0
	}
	if burst <= 0 {
		burst = 1
	}
	return &TokenBucket{
		rate:     rate,
		burst:    burst,
		tokens:   float64(burst),
		lastTick: now(),
		now:      now,
	}
}

// Allow reports whether a token was taken.
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.advance(tb.now())
	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// Wait takes a token, sleeping until it has been refilled if necessary.
// On cancellation the token is handed back.
func (tb *TokenBucket) Wait(ctx context.Context) error {
	delay, err := tb.reserve()
	if err != nil || delay == 0 {
		return err
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		tb.release()
		return ctx.Err()
	}
}

// Available returns the tokens currently in the bucket.
func (tb *TokenBucket) Available() float64 {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.advance(tb.now())
	return tb.tokens
}

// release hands back one token taken by Allow or Wait.
func (tb *TokenBucket) release() {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.tokens++
	if tb.tokens > float64(tb.burst) {
		tb.tokens = float64(tb.burst)
	}
}

func (tb *TokenBucket) reserve() (time.Duration, error) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.advance(tb.now())

	var wait time.Duration
	if tb.tokens < 1 {
		if tb.rate == 0 {
			return 0, ErrLimitExceeded
		}
		deficit := 1 - tb.tokens
		wait = time.Duration(deficit/float64(tb.rate)*float64(time.Second) + 0.5)
	}
	tb.tokens--
	return wait, nil
}

// advance refills tokens for the time elapsed since the last call.
// Must be called with mu held.
func (tb *TokenBucket) advance(now time.Time) {
	elapsed := now.Sub(tb.lastTick)
	if elapsed <= 0 {
		return
	}
	tb.tokens += elapsed.Seconds() * float64(tb.rate)
	if tb.tokens > float64(tb.burst) {
		tb.tokens = float64(tb.burst)
	}
	tb.lastTick = now
}

// Chain requires a token from every limiter, in order.
type Chain []Limiter

// releaser is implemented by limiters that can take back a token.
type releaser interface {
	release()
}

// Allow takes a token from each limiter. On a refusal the tokens already
// taken from earlier limiters are handed back.
func (c Chain) Allow() bool {
	for i, l := range c {
		if !l.Allow() {
			c[:i].release()
			return false
		}
	}
	return true
}

// Wait waits on each limiter in turn. If a later wait fails, the tokens
// taken from earlier limiters are handed back.
func (c Chain) Wait(ctx context.Context) error {
	for i, l := range c {
		if err := l.Wait(ctx); err != nil {
			c[:i].release()
			return err
		}
	}
	return nil
}

func (c Chain) release() {
	for _, l := range c {
		if r, ok := l.(releaser); ok {
			r.release()
		}
	}
}

// New builds the limiter described by cfg, or nil when it is disabled.
func New(cfg config.RateLimitConfig) Limiter {
	if !cfg.Enabled {
		return nil
	}

	var chain Chain
	if cfg.PerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = cfg.PerSecond
		}
		chain = append(chain, NewTokenBucket(PerSecond(float64(cfg.PerSecond)), burst))
	}
	if cfg.PerMinute > 0 {
		chain = append(chain, NewTokenBucket(PerMinute(float64(cfg.PerMinute)), cfg.PerMinute))
	}

	switch len(chain) {
	case 0:
		return nil
	case 1:
		return chain[0]
	default:
		return chain
	}
}
