package ai

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/pagegen/internal/core/domain"
	"github.com/custodia-labs/pagegen/internal/core/ports/driven"
)

// Ensure RateLimitedLLM implements the interface.
var _ driven.LLMService = (*RateLimitedLLM)(nil)

// rateLimitBackoff is how long calls pause after the provider reports a quota error.
const rateLimitBackoff = 30 * time.Second

// RateLimitedLLM throttles calls to an LLM service with a token bucket.
// After a provider reports domain.ErrRateLimited, further calls wait for a
// backoff period before consuming a token.
type RateLimitedLLM struct {
	next    driven.LLMService
	limiter *rate.Limiter
	backoff time.Duration

	mu      sync.Mutex
	retryAt time.Time
}

// NewRateLimitedLLM wraps next with a limit of rps requests per second.
// The burst is one request per whole second of rate, minimum one.
func NewRateLimitedLLM(next driven.LLMService, rps float64) *RateLimitedLLM {
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedLLM{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		backoff: rateLimitBackoff,
	}
}

// Generate waits for capacity, then delegates.
func (r *RateLimitedLLM) Generate(ctx context.Context, req driven.GenerateRequest) (string, error) {
	if err := r.wait(ctx); err != nil {
		return "", err
	}
	text, err := r.next.Generate(ctx, req)
	if errors.Is(err, domain.ErrRateLimited) {
		r.recordRateLimit()
	}
	return text, err
}

func (r *RateLimitedLLM) wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if d := time.Until(retryAt); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return r.limiter.Wait(ctx)
}

func (r *RateLimitedLLM) recordRateLimit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retryAt = time.Now().Add(r.backoff)
}

// ModelName returns the wrapped service's model.
func (r *RateLimitedLLM) ModelName() string {
	return r.next.ModelName()
}

// Ping is not rate limited.
func (r *RateLimitedLLM) Ping(ctx context.Context) error {
	return r.next.Ping(ctx)
}

// Close closes the wrapped service.
func (r *RateLimitedLLM) Close() error {
	return r.next.Close()
}
