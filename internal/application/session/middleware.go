package session

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/cosmicverge/tickengine/internal/application/common"
)

// flyRateLimit and flyRateBurst bound how often one session may submit Fly
// requests: the tick that consumes pilot_actions only runs once a second,
// so anything faster than that is wasted and worth rejecting early.
const (
	flyRateLimit = rate.Limit(2)
	flyRateBurst = 4
)

// RateLimiter is a mediator middleware that throttles Fly requests per
// session, lazily allocating one rate.Limiter per installation id the first
// time it sees that session submit a Fly request.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewRateLimiter builds an empty per-session rate limiter set.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{limiters: make(map[string]*rate.Limiter)}
}

// Middleware is a common.Middleware that throttles Fly requests per
// session; every other request type passes straight through.
func (r *RateLimiter) Middleware(ctx context.Context, request common.Request, next common.HandlerFunc) (common.Response, error) {
	if _, ok := request.(FlyRequest); !ok {
		return next(ctx, request)
	}

	sess, err := SessionFromContext(ctx)
	if err != nil {
		return next(ctx, request)
	}

	if !r.limiterFor(string(sess.InstallationID)).Allow() {
		return nil, fmt.Errorf("session: fly request rate limit exceeded")
	}
	return next(ctx, request)
}

func (r *RateLimiter) limiterFor(installationID string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.limiters[installationID]
	if !ok {
		l = rate.NewLimiter(flyRateLimit, flyRateBurst)
		r.limiters[installationID] = l
	}
	return l
}
