package server

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// GlobalViewerLimiter caps total concurrent viewer connections per instance.
// Uses atomic operations for lock-free counting.
type GlobalViewerLimiter struct {
	current atomic.Int64
	max     int64
}

func NewGlobalViewerLimiter(max int64) *GlobalViewerLimiter {
	return &GlobalViewerLimiter{max: max}
}

// Acquire attempts to take a viewer slot. Returns false at capacity.
func (l *GlobalViewerLimiter) Acquire() bool {
	for {
		current := l.current.Load()
		if current >= l.max {
			return false
		}
		if l.current.CompareAndSwap(current, current+1) {
			return true
		}
	}
}

func (l *GlobalViewerLimiter) Release() {
	l.current.Add(-1)
}

func (l *GlobalViewerLimiter) Current() int64 {
	return l.current.Load()
}

// HasCapacity reports whether a new viewer could still be admitted.
func (l *GlobalViewerLimiter) HasCapacity() bool {
	return l.current.Load() < l.max
}

// IPViewerLimiter caps concurrent viewer connections per IP address.
type IPViewerLimiter struct {
	mu     sync.RWMutex
	ips    map[string]int
	maxPer int
}

func NewIPViewerLimiter(maxPer int) *IPViewerLimiter {
	return &IPViewerLimiter{
		ips:    make(map[string]int),
		maxPer: maxPer,
	}
}

func (l *IPViewerLimiter) Acquire(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ips[ip] >= l.maxPer {
		return false
	}
	l.ips[ip]++
	return true
}

func (l *IPViewerLimiter) Release(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if count := l.ips[ip]; count > 0 {
		l.ips[ip] = count - 1
		if l.ips[ip] == 0 {
			delete(l.ips, ip)
		}
	}
}

func (l *IPViewerLimiter) Count(ip string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ips[ip]
}

// ConnectRateLimiter caps the rate of new viewer connections per IP using
// token buckets from golang.org/x/time/rate. Idle buckets are dropped
// periodically so the map cannot grow without bound.
type ConnectRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*rateLimiterEntry
	rate      rate.Limit
	burst     int
	cleanupAt time.Time
}

type rateLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const limiterCleanupInterval = 5 * time.Minute

func NewConnectRateLimiter(connectionsPerSecond float64, burst int) *ConnectRateLimiter {
	return &ConnectRateLimiter{
		limiters:  make(map[string]*rateLimiterEntry),
		rate:      rate.Limit(connectionsPerSecond),
		burst:     burst,
		cleanupAt: time.Now().Add(limiterCleanupInterval),
	}
}

// Allow checks whether a new connection from ip is within its rate budget.
func (l *ConnectRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if time.Now().After(l.cleanupAt) {
		l.cleanup()
		l.cleanupAt = time.Now().Add(limiterCleanupInterval)
	}

	entry, exists := l.limiters[ip]
	if !exists {
		entry = &rateLimiterEntry{
			limiter: rate.NewLimiter(l.rate, l.burst),
		}
		l.limiters[ip] = entry
	}

	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

// cleanup removes limiters idle for two cleanup intervals. Caller holds mu.
func (l *ConnectRateLimiter) cleanup() {
	cutoff := time.Now().Add(-2 * limiterCleanupInterval)
	for ip, entry := range l.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(l.limiters, ip)
		}
	}
}

// LimitReason describes why a viewer connection was rejected.
type LimitReason string

const (
	LimitReasonGlobal LimitReason = "global_limit"
	LimitReasonPerIP  LimitReason = "per_ip_limit"
	LimitReasonRate   LimitReason = "rate_limit"
)

// ViewerLimits combines the three limiters guarding the viewer endpoint.
type ViewerLimits struct {
	global *GlobalViewerLimiter
	perIP  *IPViewerLimiter
	rate   *ConnectRateLimiter
}

func NewViewerLimits(globalMax int64, perIPMax int, connectionsPerSecond float64, burst int) *ViewerLimits {
	return &ViewerLimits{
		global: NewGlobalViewerLimiter(globalMax),
		perIP:  NewIPViewerLimiter(perIPMax),
		rate:   NewConnectRateLimiter(connectionsPerSecond, burst),
	}
}

// Acquire attempts to admit a viewer from ip. On rejection the reason
// names the limit that was hit.
func (l *ViewerLimits) Acquire(ip string) (bool, LimitReason) {
	// Rate limit first: cheapest check
	if !l.rate.Allow(ip) {
		return false, LimitReasonRate
	}

	if !l.global.Acquire() {
		return false, LimitReasonGlobal
	}

	if !l.perIP.Acquire(ip) {
		l.global.Release() // rollback
		return false, LimitReasonPerIP
	}

	return true, ""
}

// Release returns the slots taken by a viewer from ip.
func (l *ViewerLimits) Release(ip string) {
	l.perIP.Release(ip)
	l.global.Release()
}

func (l *ViewerLimits) Global() *GlobalViewerLimiter {
	return l.global
}

func (l *ViewerLimits) PerIP() *IPViewerLimiter {
	return l.perIP
}
