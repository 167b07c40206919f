// Package rate keeps a token bucket per client so one caller cannot
// starve the API for everyone else.
package rate

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Limiter struct {
	burst  int
	rps    float64
	expiry time.Duration

	mu       sync.Mutex
	visitors map[string]*visitor
}

type visitor struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// NewLimiter builds a limiter allowing rps requests per second with the
// given burst per client. Buckets idle for expiryMins are swept.
func NewLimiter(burst int, expiryMins int, rps float64) *Limiter {
	l := &Limiter{
		burst:    burst,
		rps:      rps,
		expiry:   time.Duration(expiryMins) * time.Minute,
		visitors: make(map[string]*visitor),
	}
	go l.sweep()
	return l
}

// Check reports whether the client identified by id may proceed.
func (l *Limiter) Check(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[id]
	if !ok {
		v = &visitor{bucket: rate.NewLimiter(rate.Limit(l.rps), l.burst)}
		l.visitors[id] = v
	}

	v.lastSeen = time.Now()
	return v.bucket.Allow()
}

func (l *Limiter) sweep() {
	for {
		time.Sleep(time.Minute)

		l.mu.Lock()
		for id, v := range l.visitors {
			if time.Since(v.lastSeen) > l.expiry {
				delete(l.visitors, id)
			}
		}
		l.mu.Unlock()
	}
}

// Every converts a per-event interval into the rps value NewLimiter
// expects.
func Every(interval time.Duration) float64 {
	return float64(rate.Every(interval))
}
