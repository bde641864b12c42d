package upstream

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/medvane/wardboard/internal/domain/model"
)

// ClientOption applies a configuration option to the plan client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client used for plan fetches.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithDefaultDensity sets the fallback suggestion density applied when a
// plan names no recognizable density.
func WithDefaultDensity(d model.Density) ClientOption {
	return func(c *Client) {
		switch d {
		case model.DensityLow, model.DensityMedium, model.DensityHigh:
			c.defaultDensity = d
		}
	}
}

// WithBreakerMaxRequests sets how many probe requests the half-open breaker allows.
func WithBreakerMaxRequests(n uint32) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.breakerMaxRequests = n
		}
	}
}

// WithBreakerInterval sets the breaker's counting window.
func WithBreakerInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.breakerInterval = d
		}
	}
}

// WithBreakerTimeout sets how long an open breaker waits before half-opening.
func WithBreakerTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.breakerTimeout = d
		}
	}
}

// EmitterOption applies a configuration option to the feedback emitter.
type EmitterOption func(*Emitter)

// WithEmitterHTTPClient sets the HTTP client used for emits.
func WithEmitterHTTPClient(hc *http.Client) EmitterOption {
	return func(e *Emitter) {
		if hc != nil {
			e.httpClient = hc
		}
	}
}

// WithEmitRate sets the sustained emit rate and burst allowance.
func WithEmitRate(perSecond float64, burst int) EmitterOption {
	return func(e *Emitter) {
		if perSecond > 0 && burst > 0 {
			e.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}
