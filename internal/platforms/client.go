package platforms

import (
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// DefaultTimeout bounds every outbound platform call; a timed-out call is
// reported as that platform's failure.
const DefaultTimeout = 15 * time.Second

// NewHTTPClient builds the outbound client shared by adapters: a fixed
// per-call timeout and a token-bucket limiter in front of the transport so a
// burst of broadcasts cannot hammer a platform API.
func NewHTTPClient(timeout time.Duration, rps float64, burst int) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &throttledTransport{
			base:    http.DefaultTransport,
			limiter: limiter,
		},
	}
}

// throttledTransport waits for limiter clearance before delegating to the
// base round tripper.
type throttledTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (t *throttledTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}
	return t.base.RoundTrip(req)
}
