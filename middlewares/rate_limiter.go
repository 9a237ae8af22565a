package middlewares

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/venue-booking/utils"
	"golang.org/x/time/rate"
)

var errTooManyRequests = errors.New("Terlalu banyak percobaan, silakan tunggu beberapa saat")

// RateLimiter is a sliding window of request times per client IP.
type RateLimiter struct {
	limit    int
	interval time.Duration
	ips      map[string][]time.Time
	mu       sync.Mutex
}

func NewRateLimiter(limit int, intervalSeconds int) *RateLimiter {
	return &RateLimiter{
		limit:    limit,
		interval: time.Duration(intervalSeconds) * time.Second,
		ips:      make(map[string][]time.Time),
	}
}

// allow records a request from ip at now. When the window is full it returns
// how long until the oldest request leaves it.
func (rl *RateLimiter) allow(ip string, now time.Time) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := now.Add(-rl.interval)
	valid := rl.ips[ip][:0]
	for _, t := range rl.ips[ip] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= rl.limit {
		rl.ips[ip] = valid
		return false, valid[0].Sub(cutoff)
	}
	rl.ips[ip] = append(valid, now)
	return true, 0
}

// prune drops IPs with no request inside the window.
func (rl *RateLimiter) prune(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := now.Add(-rl.interval)
	for ip, times := range rl.ips {
		if len(times) == 0 || !times[len(times)-1].After(cutoff) {
			delete(rl.ips, ip)
		}
	}
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	var lastPrune time.Time
	var pruneMu sync.Mutex

	return func(c *gin.Context) {
		now := time.Now()

		pruneMu.Lock()
		if now.Sub(lastPrune) > rl.interval {
			lastPrune = now
			rl.prune(now)
		}
		pruneMu.Unlock()

		ok, wait := rl.allow(c.ClientIP(), now)
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(wait.Seconds())+1))
			utils.AbortWithError(c, http.StatusTooManyRequests, errTooManyRequests)
			return
		}
		c.Next()
	}
}

// NewStrictRateLimiter limits login/register to 5 attempts per minute per IP.
func NewStrictRateLimiter() gin.HandlerFunc {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)
	limiterFor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[ip]
		if !ok {
			l = rate.NewLimiter(rate.Every(time.Minute/5), 5)
			limiters[ip] = l
		}
		return l
	}

	return func(c *gin.Context) {
		if !limiterFor(c.ClientIP()).Allow() {
			c.Header("Retry-After", "12")
			utils.AbortWithError(c, http.StatusTooManyRequests, errTooManyRequests)
			return
		}
		c.Next()
	}
}
