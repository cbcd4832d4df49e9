package utility

import (
	"errors"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

var ErrRateLimited = errors.New("too many attempts, please try again later")

// RateLimiter is a sliding-window limiter keyed by client IP. Idle IPs expire
// after one window and the number of tracked IPs is bounded.
type RateLimiter struct {
	mu          sync.Mutex
	window      time.Duration
	maxAttempts int
	attempts    *expirable.LRU[string, []time.Time]
	now         func() time.Time
}

func NewRateLimiter(window time.Duration, maxAttempts, maxClients int) *RateLimiter {
	return &RateLimiter{
		window:      window,
		maxAttempts: maxAttempts,
		attempts:    expirable.NewLRU[string, []time.Time](maxClients, nil, window),
		now:         time.Now,
	}
}

// Check records an attempt for ip, or returns ErrRateLimited when ip already
// used up its attempts in the current window.
func (r *RateLimiter) Check(ip string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	attempts, _ := r.attempts.Get(ip)

	// Remove old attempts
	var recent []time.Time
	for _, t := range attempts {
		if now.Sub(t) < r.window {
			recent = append(recent, t)
		}
	}

	if len(recent) >= r.maxAttempts {
		return ErrRateLimited
	}

	recent = append(recent, now)
	r.attempts.Add(ip, recent)
	return nil
}
