package auth

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ClientLimiter keeps one token bucket per client IP.
type ClientLimiter struct {
	mu      sync.Mutex
	every   rate.Limit
	burst   int
	clients map[string]*clientEntry
}

type clientEntry struct {
	limiter *rate.Limiter
	seen    time.Time
}

// NewClientLimiter allows burst requests and then one per interval.
func NewClientLimiter(interval time.Duration, burst int) *ClientLimiter {
	return &ClientLimiter{
		every:   rate.Every(interval),
		burst:   burst,
		clients: make(map[string]*clientEntry),
	}
}

func (l *ClientLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	e, ok := l.clients[key]
	if !ok {
		e = &clientEntry{limiter: rate.NewLimiter(l.every, l.burst)}
		l.clients[key] = e
	}
	e.seen = now

	if len(l.clients) > 10000 {
		for k, v := range l.clients {
			if now.Sub(v.seen) > 10*time.Minute {
				delete(l.clients, k)
			}
		}
	}
	return e.limiter.AllowN(now, 1)
}

func (l *ClientLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many attempts"})
			return
		}
		c.Next()
	}
}
