package rate

import (
	"context"
	"sync"
	"time"
)

// LocalLimiter: fixed window en memoria del proceso. Misma semántica que
// RedisLimiter pero sin estado compartido; suficiente para single-node y
// para los drivers memory/postgres.
type LocalLimiter struct {
	Max    int64
	Window time.Duration

	mu      sync.Mutex
	start   time.Time
	windows map[string]int64
}

func NewLocalLimiter(max int, window time.Duration) *LocalLimiter {
	return &LocalLimiter{
		Max:     int64(max),
		Window:  window,
		windows: make(map[string]int64),
	}
}

func (l *LocalLimiter) Allow(ctx context.Context, key string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	now := time.Now().UTC()
	winStart := now.Truncate(l.Window)

	l.mu.Lock()
	defer l.mu.Unlock()

	// Nueva ventana: se descartan todos los contadores de la anterior.
	if !winStart.Equal(l.start) {
		l.start = winStart
		l.windows = make(map[string]int64)
	}

	l.windows[key]++
	hits := l.windows[key]

	allowed := hits <= l.Max
	remaining := l.Max - hits
	if remaining < 0 {
		remaining = 0
	}

	res := Result{
		Allowed:     allowed,
		Remaining:   remaining,
		CurrentHits: hits,
	}
	if !allowed {
		res.RetryAfter = time.Until(winStart.Add(l.Window))
	}
	return res, nil
}
