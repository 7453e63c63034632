package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// LimiterStore keeps one token bucket per client key and forgets keys that
// stay idle longer than idleTTL.
type LimiterStore struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	rps     rate.Limit
	burst   int
	idleTTL time.Duration
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func NewLimiterStore(rps float64, burst int, idleTTL time.Duration) *LimiterStore {
	return &LimiterStore{
		entries: make(map[string]*limiterEntry),
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
	}
}

func (s *LimiterStore) Get(key string) *rate.Limiter {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.entries[key]; ok {
		ent.lastSeen = now
		return ent.lim
	}
	lim := rate.NewLimiter(s.rps, s.burst)
	s.entries[key] = &limiterEntry{lim: lim, lastSeen: now}
	return lim
}

func (s *LimiterStore) Cleanup() {
	cutoff := time.Now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, k)
		}
	}
}

func (s *LimiterStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// StartJanitor runs Cleanup every interval until ctx is done.
func (s *LimiterStore) StartJanitor(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}

// RateLimit rejects requests over the per-IP budget with 429 and Retry-After.
func RateLimit(store *LimiterStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		lim := store.Get(ip)

		r := lim.Reserve()
		if !r.OK() {
			abortTooMany(c, log, ip, time.Second)
			return
		}
		if delay := r.Delay(); delay > 0 {
			r.Cancel()
			abortTooMany(c, log, ip, delay)
			return
		}
		c.Next()
	}
}

func abortTooMany(c *gin.Context, log *zap.Logger, ip string, retryAfter time.Duration) {
	secs := int(math.Ceil(retryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	log.Warn("rate limit exceeded", zap.String("ip", ip), zap.String("path", c.Request.URL.Path))
	c.Header("Retry-After", strconv.Itoa(secs))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"status":  "TOO_MANY_REQUESTS",
		"reason":  "Rate limit exceeded",
		"message": "Too many requests from " + ip,
	})
}
