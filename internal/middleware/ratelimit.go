package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/Beliver-cell/Fantasy-luxe-store/internal/dto"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter *rate.Limiter
	last    time.Time
}

// RateLimiter: лимит запросов на клиента (пользователь, иначе IP).
type RateLimiter struct {
	rps   rate.Limit
	burst int
	idle  time.Duration

	mu      sync.Mutex
	clients map[string]*clientLimiter
	now     func() time.Time
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		idle:    30 * time.Minute,
		clients: map[string]*clientLimiter{},
		now:     time.Now,
	}
}

func (l *RateLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	cl, ok := l.clients[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.clients[key] = cl
	}
	cl.last = l.now()
	return cl.limiter
}

// Cleanup удаляет лимитеры клиентов, не приходивших дольше idle.
func (l *RateLimiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	removed := 0
	for k, cl := range l.clients {
		if now.Sub(cl.last) > l.idle {
			delete(l.clients, k)
			removed++
		}
	}
	return removed
}

// RunCleanup периодически вызывает Cleanup до закрытия stop.
func (l *RateLimiter) RunCleanup(every time.Duration, stop <-chan struct{}) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			l.Cleanup()
		case <-stop:
			return
		}
	}
}

func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString(CtxUserID)
		if key == "" {
			key = "ip:" + c.ClientIP()
		}
		if !l.get(key).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewRateLimitedError("too many requests, try again later"))
			return
		}
		c.Next()
	}
}
