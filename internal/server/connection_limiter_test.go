package server

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGlobalViewerLimiter_AcquireRelease(t *testing.T) {
	limiter := NewGlobalViewerLimiter(3)

	assert.True(t, limiter.Acquire())
	assert.True(t, limiter.Acquire())
	assert.True(t, limiter.Acquire())
	assert.Equal(t, int64(3), limiter.Current())

	// At capacity: next acquire fails
	assert.False(t, limiter.Acquire())
	assert.False(t, limiter.HasCapacity())

	limiter.Release()
	assert.Equal(t, int64(2), limiter.Current())
	assert.True(t, limiter.Acquire())
}

func TestGlobalViewerLimiter_Concurrent(t *testing.T) {
	limiter := NewGlobalViewerLimiter(100)
	var successCount, failCount int64

	start := make(chan struct{})
	var wg sync.WaitGroup

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if limiter.Acquire() {
				atomic.AddInt64(&successCount, 1)
			} else {
				atomic.AddInt64(&failCount, 1)
			}
		}()
	}

	close(start)
	wg.Wait()

	assert.Equal(t, int64(100), successCount)
	assert.Equal(t, int64(100), failCount)
	assert.Equal(t, int64(100), limiter.Current())
}

func TestIPViewerLimiter_AcquireRelease(t *testing.T) {
	limiter := NewIPViewerLimiter(2)

	assert.True(t, limiter.Acquire("1.2.3.4"))
	assert.True(t, limiter.Acquire("1.2.3.4"))
	assert.False(t, limiter.Acquire("1.2.3.4"))

	// A different IP has its own budget
	assert.True(t, limiter.Acquire("5.6.7.8"))

	limiter.Release("1.2.3.4")
	assert.Equal(t, 1, limiter.Count("1.2.3.4"))
	assert.True(t, limiter.Acquire("1.2.3.4"))
}

func TestIPViewerLimiter_ReleaseUnknownIP(t *testing.T) {
	limiter := NewIPViewerLimiter(2)
	limiter.Release("9.9.9.9")
	assert.Equal(t, 0, limiter.Count("9.9.9.9"))
}

func TestConnectRateLimiter_BurstThenDeny(t *testing.T) {
	limiter := NewConnectRateLimiter(0.001, 2)

	assert.True(t, limiter.Allow("1.2.3.4"))
	assert.True(t, limiter.Allow("1.2.3.4"))
	assert.False(t, limiter.Allow("1.2.3.4"))

	// Independent bucket per IP
	assert.True(t, limiter.Allow("5.6.7.8"))
}

func TestViewerLimits_RollbackOnPerIPRejection(t *testing.T) {
	limits := NewViewerLimits(10, 1, 1000, 1000)

	ok, reason := limits.Acquire("1.2.3.4")
	assert.True(t, ok)
	assert.Empty(t, reason)

	ok, reason = limits.Acquire("1.2.3.4")
	assert.False(t, ok)
	assert.Equal(t, LimitReasonPerIP, reason)

	// The global slot taken during the failed attempt was rolled back.
	assert.Equal(t, int64(1), limits.Global().Current())
}

func TestViewerLimits_GlobalExhaustion(t *testing.T) {
	limits := NewViewerLimits(1, 10, 1000, 1000)

	ok, _ := limits.Acquire("1.2.3.4")
	assert.True(t, ok)

	ok, reason := limits.Acquire("5.6.7.8")
	assert.False(t, ok)
	assert.Equal(t, LimitReasonGlobal, reason)
}

func TestViewerLimits_RateExhaustion(t *testing.T) {
	limits := NewViewerLimits(10, 10, 0.001, 1)

	ok, _ := limits.Acquire("1.2.3.4")
	assert.True(t, ok)

	ok, reason := limits.Acquire("1.2.3.4")
	assert.False(t, ok)
	assert.Equal(t, LimitReasonRate, reason)
}

func TestViewerLimits_ReleaseRestoresCapacity(t *testing.T) {
	limits := NewViewerLimits(1, 1, 1000, 1000)

	ok, _ := limits.Acquire("1.2.3.4")
	assert.True(t, ok)

	limits.Release("1.2.3.4")

	ok, _ = limits.Acquire("1.2.3.4")
	assert.True(t, ok)
}
