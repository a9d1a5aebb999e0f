// Package ratelimit provides per-IP rate limiting middleware for the public
// contact endpoint.
package ratelimit

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/azalea-web/contact-service/pkg/apiresponses"
	"github.com/azalea-web/contact-service/pkg/metrics"
)

// Config holds rate limiter configuration.
type Config struct {
	// Rate is the number of requests allowed per second.
	Rate float64
	// Burst is the maximum number of requests allowed in a burst.
	Burst int
	// CleanupInterval is how often to clean up stale entries.
	CleanupInterval time.Duration
	// MaxAge is how long to keep an entry after last access.
	MaxAge time.Duration
}

// DefaultContactConfig returns the default config for the contact form.
// Humans submit forms rarely; anything past a small burst is abuse.
func DefaultContactConfig() Config {
	return Config{
		Rate:            1,
		Burst:           5,
		CleanupInterval: time.Minute,
		MaxAge:          10 * time.Minute,
	}
}

type entry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// Limiter implements per-IP rate limiting with automatic cleanup of idle
// entries.
type Limiter struct {
	mu      sync.RWMutex
	entries map[string]*entry
	config  Config
	done    chan struct{}
}

// New creates a per-IP limiter and starts its cleanup goroutine.
func New(cfg Config) *Limiter {
	if cfg.CleanupInterval == 0 {
		cfg.CleanupInterval = time.Minute
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 10 * time.Minute
	}

	l := &Limiter{
		entries: make(map[string]*entry),
		config:  cfg,
		done:    make(chan struct{}),
	}
	go l.cleanup()
	return l
}

// Allow checks whether a request from the given IP should be allowed.
func (l *Limiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, exists := l.entries[ip]
	if !exists {
		e = &entry{limiter: rate.NewLimiter(rate.Limit(l.config.Rate), l.config.Burst)}
		l.entries[ip] = e
	}
	e.lastAccess = time.Now()
	return e.limiter.Allow()
}

// Middleware returns a gin middleware applying the per-IP limit.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			metrics.RateLimited.Inc()
			apiresponses.RespondTooManyRequests(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Stop stops the cleanup goroutine.
func (l *Limiter) Stop() {
	close(l.done)
}

func (l *Limiter) cleanup() {
	ticker := time.NewTicker(l.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			l.cleanupStaleEntries()
		}
	}
}

func (l *Limiter) cleanupStaleEntries() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for ip, e := range l.entries {
		if now.Sub(e.lastAccess) > l.config.MaxAge {
			delete(l.entries, ip)
		}
	}
}

// Len returns the current number of tracked IPs (for testing/metrics).
func (l *Limiter) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
