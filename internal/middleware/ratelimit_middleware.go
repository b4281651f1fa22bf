package middleware

import (
	"context"
	"sync"
	"time"
)

// InvalidAuthRateLimiter limits failed authentication attempts per IP.
type InvalidAuthRateLimiter struct {
	mu       sync.Mutex
	attempts map[string]*attemptInfo
	limit    int
	window   time.Duration
	now      func() time.Time
}

type attemptInfo struct {
	count   int
	firstAt time.Time
}

// NewInvalidAuthRateLimiter allows limit failures per IP within window.
func NewInvalidAuthRateLimiter(limit int, window time.Duration) *InvalidAuthRateLimiter {
	return &InvalidAuthRateLimiter{
		attempts: make(map[string]*attemptInfo),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

// Allow records a failed attempt and reports whether ip is still under the limit.
func (r *InvalidAuthRateLimiter) Allow(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	info, exists := r.attempts[ip]
	if !exists || now.Sub(info.firstAt) > r.window {
		r.attempts[ip] = &attemptInfo{count: 1, firstAt: now}
		return true
	}

	if info.count >= r.limit {
		return false
	}
	info.count++
	return true
}

// Run evicts expired windows until ctx is cancelled.
func (r *InvalidAuthRateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(5 * r.window)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.evict()
		}
	}
}

func (r *InvalidAuthRateLimiter) evict() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for ip, info := range r.attempts {
		if now.Sub(info.firstAt) > r.window {
			delete(r.attempts, ip)
		}
	}
}
