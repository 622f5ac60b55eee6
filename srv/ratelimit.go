package srv

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per key.
// Keys are an IP for the public API and a Discord user id for interactions.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	trusted  []netip.Prefix
	now      func() time.Time
	stop     context.CancelFunc
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a rate limiter that allows `n` requests per `interval`
// with a burst capacity of `burst`. Close stops its cleanup goroutine.
func NewRateLimiter(n int, interval time.Duration, burst int) *RateLimiter {
	ctx, cancel := context.WithCancel(context.Background())
	rl := newRateLimiter(n, interval, burst)
	rl.stop = cancel
	// Cleanup stale entries every minute
	go rl.cleanup(ctx, time.Minute)
	return rl
}

func newRateLimiter(n int, interval time.Duration, burst int) *RateLimiter {
	limit := rate.Inf
	if n > 0 && interval > 0 {
		limit = rate.Every(interval / time.Duration(n))
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		burst:    burst,
		now:      time.Now,
	}
}

// SetTrustedProxies lists the proxies whose X-Forwarded-For header is
// believed. Requests from anywhere else are keyed by their peer address.
func (rl *RateLimiter) SetTrustedProxies(prefixes []netip.Prefix) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.trusted = prefixes
}

// ParseTrustedProxies accepts CIDRs or bare addresses.
func ParseTrustedProxies(values []string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if p, err := netip.ParsePrefix(v); err == nil {
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(v)
		if err != nil {
			return nil, ValidationError{Field: "TRUSTED_PROXIES", Message: fmt.Sprintf("invalid address %q", v)}
		}
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

// Close stops the cleanup goroutine.
func (rl *RateLimiter) Close() {
	if rl.stop != nil {
		rl.stop()
	}
}

func (rl *RateLimiter) cleanup(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.prune(5 * time.Minute)
		}
	}
}

// prune drops visitors idle for longer than idle.
func (rl *RateLimiter) prune(idle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > idle {
			delete(rl.visitors, key)
		}
	}
}

// Allow checks if a request for the given key should be allowed.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, exists := rl.visitors[key]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// AllowUser rate limits a Discord user across every interaction they send.
func (rl *RateLimiter) AllowUser(userID string) bool {
	return rl.Allow("user:" + userID)
}

// clientIP is the peer address, or the right-most untrusted
// X-Forwarded-For hop when the peer is a trusted proxy.
func (rl *RateLimiter) clientIP(r *http.Request) string {
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		host = h
	}
	peer, err := netip.ParseAddr(host)
	if err != nil || !rl.isTrusted(peer) {
		return host
	}

	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		addr, err := netip.ParseAddr(hop)
		if err != nil {
			break
		}
		if !rl.isTrusted(addr) {
			return addr.String()
		}
	}
	return host
}

func (rl *RateLimiter) isTrusted(addr netip.Addr) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	addr = addr.Unmap()
	for _, p := range rl.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// rateLimitKey returns the limiter key for an HTTP request and its kind.
func (rl *RateLimiter) rateLimitKey(r *http.Request) (string, string) {
	return "ip:" + rl.clientIP(r), "ip"
}

// Middleware wraps an http.Handler with rate limiting.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, keyType := rl.rateLimitKey(r)

		if !rl.Allow(key) {
			span := trace.SpanFromContext(r.Context())
			span.SetAttributes(
				attribute.Bool("ratelimit.exceeded", true),
				attribute.String("ratelimit.key_type", keyType),
			)
			slog.Warn("rate limit exceeded", "key", key, "path", r.URL.Path)
			http.Error(w, "Rate limit exceeded. Try again later.", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
