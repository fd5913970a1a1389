package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"property-api/internal/logger"
	"property-api/internal/metrics"
)

// TokenBucket: per-process limiter refilled to capacity at each wall-clock second.
// Constraint: no queueing; excess requests get 429.
type TokenBucket struct {
	capacity int
	tokens   int
	lastSec  int64
	now      func() time.Time
	mu       sync.Mutex
}

func NewTokenBucket(qps int) *TokenBucket {
	return &TokenBucket{capacity: qps, tokens: qps, lastSec: time.Now().Unix(), now: time.Now}
}

func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	nowSec := tb.now().Unix()
	if tb.lastSec != nowSec {
		tb.lastSec = nowSec
		tb.tokens = tb.capacity
	}
	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// RedisWindow: per-visitor fixed one-second window counted with INCR in Redis, shared across replicas.
// Redis errors fail open.
type RedisWindow struct {
	rc     *redis.Client
	limit  int
	prefix string
	now    func() time.Time
}

func NewRedisWindow(rc *redis.Client, limit int) *RedisWindow {
	return &RedisWindow{rc: rc, limit: limit, prefix: "property-api:rl:", now: time.Now}
}

func (w *RedisWindow) Allow(ctx context.Context, visitor string) bool {
	key := w.prefix + visitor + ":" + strconv.FormatInt(w.now().Unix(), 10)
	pipe := w.rc.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, 2*time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.L().Warn("ratelimit_redis_error", "err", err)
		return true
	}
	return incr.Val() <= int64(w.limit)
}

// RateLimit: wrap next with the Redis window when rc is non-nil, otherwise with a process-local token bucket.
// trustProxy selects whether forwarding headers may name the visitor.
func RateLimit(next http.Handler, rc *redis.Client, qps int, trustProxy bool) http.Handler {
	reject := func(w http.ResponseWriter) {
		metrics.RateLimitedTotal.Inc()
		w.WriteHeader(http.StatusTooManyRequests)
	}
	if rc != nil {
		win := NewRedisWindow(rc, qps)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !win.Allow(r.Context(), visitorIP(r, trustProxy)) {
				reject(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
	tb := NewTokenBucket(qps)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !tb.Allow() {
			reject(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// visitorIP: remote address host; with trustProxy the first X-Forwarded-For hop or X-Real-IP wins
func visitorIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if x := r.Header.Get("x-forwarded-for"); x != "" {
			return strings.TrimSpace(strings.Split(x, ",")[0])
		}
		if x := r.Header.Get("x-real-ip"); x != "" {
			return strings.TrimSpace(x)
		}
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		return host[:i]
	}
	return host
}
