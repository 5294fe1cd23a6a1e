package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientLimiter keeps one token bucket per client IP. Buckets untouched for
// longer than idle are evicted by Run.
type ClientLimiter struct {
	rps   int
	idle  time.Duration
	clock clockwork.Clock

	mu      sync.Mutex
	clients map[string]*clientEntry
}

func NewClientLimiter(rps int, idle time.Duration, clock clockwork.Clock) *ClientLimiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ClientLimiter{
		rps:     rps,
		idle:    idle,
		clock:   clock,
		clients: make(map[string]*clientEntry),
	}
}

func (l *ClientLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.clients[ip]
	if !ok {
		e = &clientEntry{limiter: rate.NewLimiter(rate.Limit(l.rps), l.rps)}
		l.clients[ip] = e
	}
	e.lastSeen = l.clock.Now()
	return e.limiter.Allow()
}

// Middleware limits each client IP to rps requests per second.
func (l *ClientLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}

// Evict drops clients idle for longer than the configured window and
// returns how many were removed.
func (l *ClientLimiter) Evict() int {
	cutoff := l.clock.Now().Add(-l.idle)
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for ip, e := range l.clients {
		if e.lastSeen.Before(cutoff) {
			delete(l.clients, ip)
			n++
		}
	}
	return n
}

func (l *ClientLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Run evicts idle clients every interval until ctx is cancelled.
func (l *ClientLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := l.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if n := l.Evict(); n > 0 {
				slog.Debug("evicted idle rate limiters", "count", n)
			}
		}
	}
}
