// middleware/rate_limiter.go
package middleware

import (
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type RateLimiter struct {
	ips            map[string]*rate.Limiter
	blockedIPs     map[string]time.Time
	mu             *sync.RWMutex
	defaultLimit   rate.Limit
	defaultBurst   int
	blockDuration  time.Duration
	endpointLimits map[string]struct {
		limit rate.Limit
		burst int
	}
}

func NewRateLimiter() *RateLimiter {
	limiter := &RateLimiter{
		ips:           make(map[string]*rate.Limiter),
		blockedIPs:    make(map[string]time.Time),
		mu:            &sync.RWMutex{},
		defaultLimit:  rate.Every(100 * time.Millisecond), // 10 requests per second
		defaultBurst:  20,                                 // Allow bursts of 20 requests
		blockDuration: 5 * time.Minute,
		endpointLimits: make(map[string]struct {
			limit rate.Limit
			burst int
		}),
	}

	// Strict limits on credential endpoints to slow brute force attempts
	limiter.endpointLimits["/api/auth/login"] = struct {
		limit rate.Limit
		burst int
	}{
		limit: rate.Every(2 * time.Second),
		burst: 5,
	}

	limiter.endpointLimits["/api/admin/login"] = struct {
		limit rate.Limit
		burst int
	}{
		limit: rate.Every(2 * time.Second),
		burst: 5,
	}

	limiter.endpointLimits["/api/users/register"] = struct {
		limit rate.Limit
		burst int
	}{
		limit: rate.Every(500 * time.Millisecond), // 2 requests per second
		burst: 5,
	}

	// Start cleanup routine
	go limiter.cleanupBlockedIPs()

	return limiter
}

func (rl *RateLimiter) cleanupBlockedIPs() {
	for {
		time.Sleep(1 * time.Minute)
		rl.mu.Lock()
		now := time.Now()
		for ip, blockedUntil := range rl.blockedIPs {
			if now.After(blockedUntil) {
				delete(rl.blockedIPs, ip)
				delete(rl.ips, ip)
			}
		}
		rl.mu.Unlock()
	}
}

func (rl *RateLimiter) getLimiter(ip, path string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	key := ip
	limit := rl.defaultLimit
	burst := rl.defaultBurst

	// Endpoint-specific limits get their own bucket per IP
	for endpoint, cfg := range rl.endpointLimits {
		if strings.HasPrefix(path, endpoint) {
			key = ip + ":" + endpoint
			limit = cfg.limit
			burst = cfg.burst
			break
		}
	}

	limiter, exists := rl.ips[key]
	if !exists {
		limiter = rate.NewLimiter(limit, burst)
		rl.ips[key] = limiter
	}

	return limiter
}

// RateLimit returns the echo middleware enforcing per-IP limits
func (rl *RateLimiter) RateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()

			rl.mu.RLock()
			blockedUntil, blocked := rl.blockedIPs[ip]
			rl.mu.RUnlock()

			if blocked && time.Now().Before(blockedUntil) {
				return echo.NewHTTPError(429, "Too many requests. Try again later.")
			}

			limiter := rl.getLimiter(ip, c.Request().URL.Path)
			if !limiter.Allow() {
				rl.mu.Lock()
				rl.blockedIPs[ip] = time.Now().Add(rl.blockDuration)
				rl.mu.Unlock()
				return echo.NewHTTPError(429, "Too many requests. Try again later.")
			}

			return next(c)
		}
	}
}
