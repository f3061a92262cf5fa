package middleware

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter stores per-client token buckets
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	lastSeen map[string]time.Time
	mutex    sync.Mutex

	limit rate.Limit
	burst int
}

// NewRateLimiter creates a rate limiter handing out buckets with the given
// refill rate and burst.
func NewRateLimiter(limit rate.Limit, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		limit:    limit,
		burst:    burst,
	}
}

// GetLimiter returns the limiter for the given key, creating it on first use
func (rl *RateLimiter) GetLimiter(key string) *rate.Limiter {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	limiter, exists := rl.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(rl.limit, rl.burst)
		rl.limiters[key] = limiter
	}
	rl.lastSeen[key] = time.Now()
	return limiter
}

// Cleanup removes limiters idle for more than an hour
func (rl *RateLimiter) Cleanup() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := time.Now()
	for key, t := range rl.lastSeen {
		if now.Sub(t) > time.Hour {
			delete(rl.limiters, key)
			delete(rl.lastSeen, key)
		}
	}
}

// StartCleanup runs Cleanup periodically until stop is closed
func (rl *RateLimiter) StartCleanup(stop <-chan struct{}) {
	ticker := time.NewTicker(10 * time.Minute)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.Cleanup()
			case <-stop:
				return
			}
		}
	}()
}

// 120 requests/min per IP for the general API
var apiRateLimiter = NewRateLimiter(rate.Every(time.Minute/120), 40)

// 10 attempts/min per IP for login and password reset
var authRateLimiter = NewRateLimiter(rate.Every(time.Minute/10), 10)

// StartRateLimiterCleanup evicts idle per-IP buckets until stop is closed
func StartRateLimiterCleanup(stop <-chan struct{}) {
	apiRateLimiter.StartCleanup(stop)
	authRateLimiter.StartCleanup(stop)
}

// RateLimitMiddleware applies the general per-IP rate limit
func RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := apiRateLimiter.GetLimiter(c.ClientIP())
		if !limiter.Allow() {
			log.Printf("Rate limit exceeded for %s %s from %s", c.Request.Method, c.Request.URL.Path, c.ClientIP())
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Too many requests. Please try again later.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// AuthRateLimitMiddleware applies a stricter limit to credential endpoints
func AuthRateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := authRateLimiter.GetLimiter(c.ClientIP())
		if !limiter.Allow() {
			log.Printf("Auth rate limit exceeded from %s", c.ClientIP())
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Too many authentication attempts. Please try again later.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// SecurityHeadersMiddleware adds standard security headers
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		c.Header("Server", "")
		c.Next()
	}
}
