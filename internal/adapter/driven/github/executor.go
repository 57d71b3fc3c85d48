package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"syscall"
	"time"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit/github_primary_ratelimit"

	"github.com/ericfisherdev/prstudy/internal/domain/port/driven"
)

// ErrRetriesExhausted is returned when a bounded RetryPolicy runs out of
// attempts. The default policy is unbounded and never returns it.
var ErrRetriesExhausted = errors.New("retries exhausted")

// Clock abstracts time so retry waits can be observed in tests.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done, returning ctx.Err() in the
	// latter case.
	Sleep(ctx context.Context, d time.Duration) error
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }

// Sleep waits for d or until ctx is canceled.
func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RetryPolicy is the delay table applied by Executor.
type RetryPolicy struct {
	RateLimitMargin      time.Duration // Added to the reset time of a 403.
	DefaultRateLimitWait time.Duration // Used when the reset header is missing.
	StatusDelay          time.Duration // Any other non-200 status.
	TimeoutDelay         time.Duration
	ConnectionDelay      time.Duration
	TransportDelay       time.Duration // Any other transport fault.
	MaxAttempts          int           // 0 retries until the context ends.
}

// DefaultRetryPolicy returns the unattended-collection policy: every failure
// except 422 is retried indefinitely.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		RateLimitMargin:      30 * time.Second,
		DefaultRateLimitWait: time.Hour,
		StatusDelay:          30 * time.Second,
		TimeoutDelay:         30 * time.Second,
		ConnectionDelay:      60 * time.Second,
		TransportDelay:       30 * time.Second,
	}
}

// IsTerminal reports whether a status ends the request without retrying.
func (p RetryPolicy) IsTerminal(status int) bool {
	return status == http.StatusUnprocessableEntity
}

func (p RetryPolicy) allows(attempt int) bool {
	return p.MaxAttempts <= 0 || attempt <= p.MaxAttempts
}

type action int

const (
	actionReturn action = iota
	actionNoData
	actionRetry
)

type decision struct {
	action      action
	wait        time.Duration
	reason      string
	rateLimited bool
}

// decide maps one attempt's outcome to the next step.
func (p RetryPolicy) decide(resp *Response, err error, now time.Time) decision {
	if err != nil {
		var limitErr *github_primary_ratelimit.RateLimitReachedError
		switch {
		case errors.As(err, &limitErr):
			return decision{
				action:      actionRetry,
				wait:        p.resetWait(limitErr.ResetTime, now),
				reason:      "rate limited",
				rateLimited: true,
			}
		case isTimeout(err):
			return decision{action: actionRetry, wait: p.TimeoutDelay, reason: "timeout"}
		case isConnectionFailure(err):
			return decision{action: actionRetry, wait: p.ConnectionDelay, reason: "connection failure"}
		default:
			return decision{action: actionRetry, wait: p.TransportDelay, reason: "transport error"}
		}
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return decision{action: actionReturn}
	case p.IsTerminal(resp.StatusCode):
		return decision{action: actionNoData}
	case resp.StatusCode == http.StatusForbidden:
		return decision{
			action:      actionRetry,
			wait:        p.rateLimitWait(resp.Header, now),
			reason:      "rate limited",
			rateLimited: true,
		}
	default:
		return decision{action: actionRetry, wait: p.StatusDelay, reason: "status " + strconv.Itoa(resp.StatusCode)}
	}
}

// rateLimitWait returns the time until the X-RateLimit-Reset epoch plus the
// safety margin. A reset already in the past waits only the margin.
func (p RetryPolicy) rateLimitWait(h http.Header, now time.Time) time.Duration {
	var reset *time.Time
	if v := h.Get("X-RateLimit-Reset"); v != "" {
		if epoch, err := strconv.ParseInt(v, 10, 64); err == nil {
			t := time.Unix(epoch, 0)
			reset = &t
		}
	}
	return p.resetWait(reset, now)
}

// resetWait is the wait until reset plus the margin. A nil reset falls back
// to DefaultRateLimitWait.
func (p RetryPolicy) resetWait(reset *time.Time, now time.Time) time.Duration {
	until := now.Add(p.DefaultRateLimitWait)
	if reset != nil {
		until = *reset
	}

	wait := until.Sub(now)
	if wait < 0 {
		wait = 0
	}
	return wait + p.RateLimitMargin
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isConnectionFailure(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

// Executor issues GET requests through a Transport and applies a RetryPolicy
// until a 200 body or a terminal no-data status is obtained.
type Executor struct {
	transport Transport
	policy    RetryPolicy
	clock     Clock
	logger    *slog.Logger
}

// NewExecutor creates an Executor. A nil clock uses SystemClock and a nil
// logger uses slog.Default().
func NewExecutor(transport Transport, policy RetryPolicy, clock Clock, logger *slog.Logger) *Executor {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		transport: transport,
		policy:    policy,
		clock:     clock,
		logger:    logger,
	}
}

// Get returns the body of a successful response. It returns driven.ErrNoData
// on HTTP 422, the context error once ctx is done, and ErrRetriesExhausted
// when a bounded policy gives up. Every other failure is retried.
func (e *Executor) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	for attempt := 1; e.policy.allows(attempt); attempt++ {
		resp, err := e.transport.Get(ctx, path, query)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		d := e.policy.decide(resp, err, e.clock.Now())
		switch d.action {
		case actionReturn:
			return resp.Body, nil
		case actionNoData:
			e.logger.Info("github resource has no data", "path", path)
			return nil, fmt.Errorf("GET %s: %w", path, driven.ErrNoData)
		}

		if d.rateLimited {
			e.logger.Warn("github rate limit reached",
				"path", path,
				"resume_at", e.clock.Now().Add(d.wait).UTC().Format(time.RFC3339),
				"wait", d.wait.Round(time.Second),
			)
		} else {
			e.logger.Warn("github request failed, retrying",
				"path", path,
				"reason", d.reason,
				"error", err,
				"attempt", attempt,
				"wait", d.wait,
			)
		}

		if !e.policy.allows(attempt + 1) {
			break
		}
		if err := e.clock.Sleep(ctx, d.wait); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("GET %s after %d attempts: %w", path, e.policy.MaxAttempts, ErrRetriesExhausted)
}
