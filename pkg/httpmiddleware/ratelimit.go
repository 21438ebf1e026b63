package httpmiddleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures the per-client token bucket limiter.
type RateLimitConfig struct {
	// Max is the bucket size and the number of tokens refilled per Window.
	Max int
	// Window is the time a drained bucket takes to refill completely.
	Window time.Duration
	// WriteMax, when positive, gives mutating requests (POST, PUT, PATCH,
	// DELETE) their own smaller bucket so order placement cannot starve
	// reads.
	WriteMax int
	// KeyFunc extracts the client key from a request. If nil, the client IP
	// address is used.
	KeyFunc func(*http.Request) string
}

type bucketClass uint8

const (
	classRead bucketClass = iota
	classWrite
)

type bucketKey struct {
	client string
	class  bucketClass
}

type bucket struct {
	limiter *rate.Limiter
	size    int
	seen    time.Time
}

// verdict is the outcome of one admission check.
type verdict struct {
	limit      int
	remaining  int
	resetAt    time.Time
	retryAfter time.Duration
	allowed    bool
}

type rateLimiter struct {
	cfg     RateLimitConfig
	mu      sync.Mutex
	buckets map[bucketKey]*bucket
}

func newRateLimiter(cfg RateLimitConfig) *rateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = defaultKeyFunc
	}
	return &rateLimiter{
		cfg:     cfg,
		buckets: make(map[bucketKey]*bucket),
	}
}

func (rl *rateLimiter) classOf(r *http.Request) bucketClass {
	if rl.cfg.WriteMax <= 0 {
		return classRead
	}
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return classWrite
	default:
		return classRead
	}
}

func (rl *rateLimiter) bucketFor(k bucketKey, now time.Time) *bucket {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[k]
	if !ok {
		size := rl.cfg.Max
		if k.class == classWrite {
			size = rl.cfg.WriteMax
		}
		b = &bucket{
			limiter: rate.NewLimiter(rate.Every(rl.cfg.Window/time.Duration(size)), size),
			size:    size,
		}
		rl.buckets[k] = b
	}
	b.seen = now
	return b
}

// allow takes one token from the client's bucket.
func (rl *rateLimiter) allow(k bucketKey, now time.Time) verdict {
	b := rl.bucketFor(k, now)
	v := verdict{limit: b.size}

	if b.limiter.AllowN(now, 1) {
		v.allowed = true
	} else {
		res := b.limiter.ReserveN(now, 1)
		v.retryAfter = res.DelayFrom(now)
		res.CancelAt(now)
	}

	tokens := b.limiter.TokensAt(now)
	v.remaining = max(int(math.Floor(tokens)), 0)
	missing := float64(b.size) - tokens
	v.resetAt = now.Add(time.Duration(missing / float64(b.limiter.Limit()) * float64(time.Second)))
	return v
}

// cleanup drops buckets idle for a whole window. Such a bucket is full again,
// so recreating it on the next request is equivalent.
func (rl *rateLimiter) cleanup(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for k, b := range rl.buckets {
		if now.Sub(b.seen) >= rl.cfg.Window {
			delete(rl.buckets, k)
		}
	}
}

// startCleanup evicts idle buckets every other window until ctx is
// cancelled.
func (rl *rateLimiter) startCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(2 * rl.cfg.Window)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				rl.cleanup(now)
			}
		}
	}()
}

// RateLimit returns a middleware enforcing a per-client token bucket. A
// rejected request gets 429 Too Many Requests with the API error body and a
// Retry-After header. Every response carries X-RateLimit-Limit,
// X-RateLimit-Remaining and X-RateLimit-Reset for the bucket it drew from.
//
// Buckets are never evicted; use RateLimitWithCleanup for long-running
// servers.
func RateLimit(cfg RateLimitConfig) Middleware {
	return rateLimitMiddleware(newRateLimiter(cfg))
}

// RateLimitWithCleanup is RateLimit with a background goroutine evicting
// idle buckets. The goroutine stops when ctx is cancelled.
func RateLimitWithCleanup(ctx context.Context, cfg RateLimitConfig) Middleware {
	rl := newRateLimiter(cfg)
	rl.startCleanup(ctx)
	return rateLimitMiddleware(rl)
}

func rateLimitMiddleware(rl *rateLimiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := bucketKey{client: rl.cfg.KeyFunc(r), class: rl.classOf(r)}
			v := rl.allow(k, time.Now())

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(v.limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(v.remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(v.resetAt.Unix(), 10))

			if !v.allowed {
				h.Set("Retry-After", strconv.Itoa(int(math.Ceil(v.retryAfter.Seconds()))))
				writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// defaultKeyFunc returns the client IP: the first X-Forwarded-For hop, then
// X-Real-IP, then the RemoteAddr host.
func defaultKeyFunc(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
