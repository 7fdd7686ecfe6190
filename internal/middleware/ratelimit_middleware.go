package middleware

import (
	"sync"
	"time"
)

// InvalidAuthRateLimiter limits failed admin authentication attempts per IP.
type InvalidAuthRateLimiter struct {
	mu       sync.Mutex
	attempts map[string]*attemptInfo
	limit    int
	window   time.Duration

	stop     chan struct{}
	stopOnce sync.Once
	stopped  chan struct{}
}

type attemptInfo struct {
	count   int
	firstAt time.Time
}

// NewInvalidAuthRateLimiter allows limit failures per window for each IP.
func NewInvalidAuthRateLimiter(limit int, window time.Duration) *InvalidAuthRateLimiter {
	rl := &InvalidAuthRateLimiter{
		attempts: make(map[string]*attemptInfo),
		limit:    limit,
		window:   window,
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Allow records a failed attempt from ip and reports whether it is still
// under the limit.
func (r *InvalidAuthRateLimiter) Allow(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
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

// Stop ends the background cleanup. It is safe to call more than once.
func (r *InvalidAuthRateLimiter) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
	<-r.stopped
}

func (r *InvalidAuthRateLimiter) cleanup() {
	defer close(r.stopped)

	ticker := time.NewTicker(5 * r.window)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.evictExpired(time.Now())
		}
	}
}

func (r *InvalidAuthRateLimiter) evictExpired(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for ip, info := range r.attempts {
		if now.Sub(info.firstAt) > r.window {
			delete(r.attempts, ip)
		}
	}
}
