package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	slerrors "github.com/matzehuels/slipmap/pkg/errors"
)

// Default retry settings used by [RetryWithBackoff].
const (
	DefaultAttempts = 3
	DefaultDelay    = time.Second
)

// RetryableError marks a transient failure that [Retry] should attempt
// again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry executes fn up to attempts times. The delay doubles after each
// retryable failure. Non-retryable errors return immediately; a cancelled
// context returns ctx.Err().
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !IsRetryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
			delay *= 2
		}
	}
	return lastErr
}

// RetryWithBackoff calls [Retry] with [DefaultAttempts] and [DefaultDelay].
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, DefaultAttempts, DefaultDelay, fn)
}

// IsRetryable reports whether err is wrapped in a [RetryableError].
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// CheckStatus maps a non-2xx response to an error. It reads at most 512
// bytes of the body into the message.
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := fmt.Sprintf("%s %s: %s", resp.Request.Method, redactURL(resp.Request), resp.Status)
	if len(snippet) > 0 {
		msg += ": " + string(snippet)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return slerrors.New(slerrors.ErrCodeNotFound, "%s", msg)
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return slerrors.New(slerrors.ErrCodeUnauthorized, "%s", msg)
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
		return &RetryableError{Err: slerrors.New(slerrors.ErrCodeNetwork, "%s", msg)}
	default:
		return slerrors.New(slerrors.ErrCodeNetwork, "%s", msg)
	}
}

// redactURL drops the query string, which may carry an API token.
func redactURL(req *http.Request) string {
	if req == nil || req.URL == nil {
		return ""
	}
	u := *req.URL
	u.RawQuery = ""
	return u.String()
}
