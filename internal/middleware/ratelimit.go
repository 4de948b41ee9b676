package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"compsec/internal/metrics"
)

// RateLimiter keeps a token bucket per client IP.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	log   *zap.Logger

	mu       sync.Mutex
	limiters map[string]*visitor
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const visitorIdle = 10 * time.Minute

func NewRateLimiter(rps float64, burst int, log *zap.Logger) *RateLimiter {
	return &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		log:      log,
		limiters: map[string]*visitor{},
	}
}

func (l *RateLimiter) limiter(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.limiters[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.limiters[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

// Sweep drops buckets idle for longer than ten minutes.
func (l *RateLimiter) Sweep(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, v := range l.limiters {
		if now.Sub(v.lastSeen) > visitorIdle {
			delete(l.limiters, k)
		}
	}
}

func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.rps <= 0 {
			c.Next()
			return
		}
		ip := c.ClientIP()
		if !l.limiter(ip, time.Now()).Allow() {
			metrics.RateLimited.Inc()
			l.log.Warn("request blocked by rate limit",
				zap.String("client_ip", ip),
				zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    "RATE_LIMITED",
				"message": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
