package logger

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/time/rate"
)

// Throttle rate-limits data-quality warnings. A noisy dataset can produce
// one warning per window; past the burst, warnings are counted instead of
// written and reported once by Flush.
type Throttle struct {
	log        *slog.Logger
	limiter    *rate.Limiter
	suppressed atomic.Int64

	mu      sync.Mutex
	byTopic map[string]int64
}

// NewThrottle allows perSecond warnings per second with the given burst.
// perSecond <= 0 disables limiting.
func NewThrottle(log *slog.Logger, perSecond float64, burst int) *Throttle {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &Throttle{
		log:     log,
		limiter: rate.NewLimiter(limit, burst),
		byTopic: make(map[string]int64),
	}
}

// Warn logs msg at warn level unless the rate is exceeded.
func (t *Throttle) Warn(msg string, args ...any) {
	if t.limiter.Allow() {
		t.log.Warn(msg, args...)
		return
	}
	t.suppressed.Add(1)
	t.mu.Lock()
	t.byTopic[msg]++
	t.mu.Unlock()
}

// Suppressed returns how many warnings were dropped so far.
func (t *Throttle) Suppressed() int64 {
	return t.suppressed.Load()
}

// Flush logs a summary of suppressed warnings and resets the counters.
func (t *Throttle) Flush() {
	n := t.suppressed.Swap(0)
	if n == 0 {
		return
	}

	t.mu.Lock()
	topics := t.byTopic
	t.byTopic = make(map[string]int64)
	t.mu.Unlock()

	for msg, count := range topics {
		t.log.Warn("warnings suppressed", "message", msg, "count", count)
	}
	t.log.Warn("rate limit dropped warnings", "total", n)
}
