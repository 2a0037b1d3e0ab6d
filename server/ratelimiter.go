package server

import (
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConf configures the global and per-IP token buckets.
type RateLimiterConf struct {
	GlobalRate rate.Limit
	IPRate     rate.Limit
	TTL        time.Duration
	MaxClients int
}

// DefaultRateLimit returns a configuration suitable for a local dev proxy.
func DefaultRateLimit() RateLimiterConf {
	return RateLimiterConf{
		GlobalRate: 10000,
		IPRate:     50,
		TTL:        time.Minute,
		MaxClients: 1000,
	}
}

// A RateLimiter tracks a global token bucket and one bucket per remote IP.
// IPs not seen for the configured TTL are pruned when the tracked set grows
// beyond MaxClients.
type RateLimiter struct {
	mu   sync.Mutex
	conf RateLimiterConf

	globalLimit *rate.Limiter
	ipLimiters  map[string]*rate.Limiter
	ipLastSeen  map[string]time.Time
}

// NewRateLimiter constructs a new RateLimiter with the given configuration.
func NewRateLimiter(conf RateLimiterConf) *RateLimiter {
	if conf.GlobalRate == 0 {
		conf = DefaultRateLimit()
	}
	return &RateLimiter{
		conf:        conf,
		globalLimit: rate.NewLimiter(conf.GlobalRate, int(conf.GlobalRate)),
		ipLimiters:  make(map[string]*rate.Limiter),
		ipLastSeen:  make(map[string]time.Time),
	}
}

// Allow reports whether the given IP has an available token, consuming one if
// so.
func (limiter *RateLimiter) Allow(ip net.IP) bool {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	if len(limiter.ipLimiters) > limiter.conf.MaxClients {
		limiter.prune()
	}

	if !limiter.globalLimit.Allow() {
		return false
	}

	key := ip.String()
	limiter.ipLastSeen[key] = time.Now()

	limit, ok := limiter.ipLimiters[key]
	if !ok {
		limiter.ipLimiters[key] = rate.NewLimiter(limiter.conf.IPRate, int(limiter.conf.IPRate))
		return true
	}
	return limit.Allow()
}

// prune drops IPs that have not been seen for the TTL. Callers must hold the
// mutex.
func (limiter *RateLimiter) prune() int {
	pruned := 0
	for ip, lastSeen := range limiter.ipLastSeen {
		if time.Since(lastSeen) > limiter.conf.TTL {
			delete(limiter.ipLimiters, ip)
			delete(limiter.ipLastSeen, ip)
			pruned++
		}
	}
	return pruned
}
