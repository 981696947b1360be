package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/auth"
	"github.com/gin-gonic/gin"
)

// TokenBucket in-memory ограничитель запросов по клиенту
type TokenBucket struct {
	capacity  int
	rate      int
	idle      time.Duration
	mu        sync.Mutex
	state     map[string]*bucket
	lastSweep time.Time
	now       func() time.Time
}

type bucket struct {
	tokens int
	last   time.Time
}

// NewTokenBucket создаёт ограничитель с ёмкостью capacity и пополнением perMinute в минуту
func NewTokenBucket(capacity, perMinute int) *TokenBucket {
	if capacity <= 0 {
		capacity = perMinute
	}
	// за idle корзина успевает наполниться, поэтому её можно забыть
	idle := time.Minute
	if perMinute > 0 {
		if full := time.Duration(capacity) * time.Minute / time.Duration(perMinute); full > idle {
			idle = full
		}
	}
	return &TokenBucket{
		capacity: capacity,
		rate:     perMinute,
		idle:     idle,
		state:    make(map[string]*bucket),
		now:      time.Now,
	}
}

// GinMiddleware ограничивает запросы по subject токена, а без токена по IP
func (l *TokenBucket) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.rate <= 0 {
			c.Next()
			return
		}

		key := c.ClientIP()
		if claims, ok := auth.ClaimsFrom(c); ok {
			key = "sub:" + claims.Subject
		}
		if key == "" {
			key = "unknown"
		}

		if !l.allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit"})
			return
		}
		c.Next()
	}
}

func (l *TokenBucket) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idle {
		l.sweep(now)
	}

	b, ok := l.state[key]
	if !ok {
		l.state[key] = &bucket{tokens: l.capacity - 1, last: now}
		return true
	}

	refill := int(now.Sub(b.last).Minutes() * float64(l.rate))
	if refill > 0 {
		b.tokens += refill
		if b.tokens > l.capacity {
			b.tokens = l.capacity
		}
		b.last = now
	}
	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// sweep удаляет корзины, которые не трогали дольше idle. Вызывается под мьютексом
func (l *TokenBucket) sweep(now time.Time) {
	for key, b := range l.state {
		if now.Sub(b.last) >= l.idle {
			delete(l.state, key)
		}
	}
	l.lastSweep = now
}
