package auth

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	apperrors "github.com/crmkit/crm-authz/pkg/util/errorutil"
)

const (
	limiterCacheSize = 10000
	limiterIdleTTL   = 10 * time.Minute
)

// RateLimiter throttles a route per authenticated user, or per client IP
// when no principal is present. Idle limiters age out of an LRU.
type RateLimiter struct {
	mu        sync.Mutex
	limiters  *lru.LRU[string, *rate.Limiter]
	limit     rate.Limit
	burst     int
	perMinute int
}

// NewRateLimiter allows perMinute requests with the given burst. A
// non-positive perMinute disables limiting.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limiters:  lru.NewLRU[string, *rate.Limiter](limiterCacheSize, nil, limiterIdleTTL),
		limit:     rate.Limit(float64(perMinute) / 60),
		burst:     burst,
		perMinute: perMinute,
	}
}

// Allow reports whether key is within its rate limit.
func (rl *RateLimiter) Allow(key string) bool {
	if rl == nil || rl.limit <= 0 {
		return true
	}
	rl.mu.Lock()
	l, ok := rl.limiters.Get(key)
	if !ok {
		l = rate.NewLimiter(rl.limit, rl.burst)
	}
	// re-adding refreshes the idle TTL
	rl.limiters.Add(key, l)
	rl.mu.Unlock()
	return l.Allow()
}

// Handle is the fiber middleware form of Allow.
func (rl *RateLimiter) Handle(c *fiber.Ctx) error {
	key := "ip:" + c.IP()
	if p, ok := PrincipalFromContext(c); ok && p.User != nil {
		key = "user:" + p.User.ID
	}
	if !rl.Allow(key) {
		// seconds until one more token accrues
		retry := (60 + rl.perMinute - 1) / rl.perMinute
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retry))
		return apperrors.NewDomainError("RATE_LIMITED", "rate limit exceeded", http.StatusTooManyRequests, nil)
	}
	return c.Next()
}
