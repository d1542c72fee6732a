package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff"

	"github.com/jsamuelsen11/blog-platform-api/internal/platform/config"
	"github.com/jsamuelsen11/blog-platform-api/internal/platform/logging"
)

// retryPolicy holds the exponential backoff parameters for one client.
type retryPolicy struct {
	maxAttempts     int
	initialInterval time.Duration
	maxInterval     time.Duration
	multiplier      float64
}

func newRetryPolicy(cfg config.RetryConfig) retryPolicy {
	return retryPolicy{
		maxAttempts:     max(cfg.MaxAttempts, 1),
		initialInterval: cfg.InitialInterval,
		maxInterval:     cfg.MaxInterval,
		multiplier:      cfg.Multiplier,
	}
}

// schedule returns a fresh backoff sequence that stops after the retry
// budget is spent. Elapsed-time capping is left to the request context.
func (p retryPolicy) schedule() backoff.BackOff {
	if p.maxAttempts <= 1 {
		// WithMaxRetries treats zero as unlimited.
		return &backoff.StopBackOff{}
	}
	b := backoff.NewExponentialBackOff()
	if p.initialInterval > 0 {
		b.InitialInterval = p.initialInterval
	}
	if p.maxInterval > 0 {
		b.MaxInterval = p.maxInterval
	}
	if p.multiplier >= 1 {
		b.Multiplier = p.multiplier
	}
	b.RandomizationFactor = 0.25
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithMaxRetries(b, uint64(p.maxAttempts-1))
}

type noRetryKey struct{}

// NoRetry marks requests sent with the returned context as unsafe to repeat.
// They are sent once, so a response lost in transit is not replayed.
func NoRetry(ctx context.Context) context.Context {
	return context.WithValue(ctx, noRetryKey{}, true)
}

func retryAllowed(ctx context.Context) bool {
	once, _ := ctx.Value(noRetryKey{}).(bool)
	return !once
}

// doWithRetry sends req until it gets a non-retryable answer, a
// non-retryable error, or the schedule stops. The body is buffered so it can
// be replayed. Requests marked with NoRetry get one attempt. A final
// retryable answer is returned together with errPeerStatus.
func (c *Client) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	body, err := bufferRequestBody(req)
	if err != nil {
		return nil, err
	}

	maxAttempts := c.retry.maxAttempts
	if !retryAllowed(ctx) {
		maxAttempts = 1
	}

	sched := c.retry.schedule()
	for attempt := 1; ; attempt++ {
		resetRequestBody(req, body)

		resp, err := c.httpClient.Do(req)

		var lastErr error
		switch {
		case err != nil:
			if !isRetryable(err) {
				return nil, err
			}
			lastErr = err
		case isRetryableStatus(resp.StatusCode):
			lastErr = fmt.Errorf("%w: HTTP %d from %s", errPeerStatus, resp.StatusCode, c.peer)
		default:
			return resp, nil
		}

		wait := sched.NextBackOff()
		if wait == backoff.Stop || attempt >= maxAttempts {
			return resp, lastErr
		}
		if resp != nil {
			drainResponseBody(resp)
		}

		logging.FromContext(ctx).WarnContext(ctx, "retrying HTTP request",
			slog.String("peer_service", c.peer),
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", maxAttempts),
			slog.Duration("backoff", wait),
			slog.Any("error", lastErr),
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func bufferRequestBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	b, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("reading request body: %w", err)
	}
	_ = req.Body.Close()
	return b, nil
}

func resetRequestBody(req *http.Request, body []byte) {
	if body == nil {
		return
	}
	req.Body = io.NopCloser(bytes.NewReader(body))
	req.ContentLength = int64(len(body))
}

func drainResponseBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// isRetryable reports whether a transport error may succeed on retry.
// Cancellation and deadlines are final.
func isRetryable(err error) bool {
	return err != nil &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

// isRetryableStatus reports whether the peer asked us to try again.
func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
