package httputil

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	slerrors "github.com/matzehuels/slipmap/pkg/errors"
)

func TestRetryStopsOnSuccess(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 5, time.Millisecond, func() error {
		calls++
		if calls == 2 {
			return nil
		}
		return &RetryableError{Err: errors.New("flaky")}
	})
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestRetryNonRetryable(t *testing.T) {
	calls := 0
	want := errors.New("permanent")
	err := Retry(context.Background(), 5, time.Millisecond, func() error {
		calls++
		return want
	})
	if !errors.Is(err, want) {
		t.Errorf("err = %v, want %v", err, want)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryExhausted(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return &RetryableError{Err: errors.New("down")}
	})
	if !IsRetryable(err) {
		t.Errorf("err = %v, want the last retryable error", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_ = Retry(context.Background(), 0, time.Millisecond, func() error {
		calls++
		return nil
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, time.Hour, func() error {
		return &RetryableError{Err: errors.New("down")}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func response(code int, body string) *http.Response {
	return &http.Response{
		StatusCode: code,
		Status:     http.StatusText(code),
		Body:       io.NopCloser(strings.NewReader(body)),
		Request: &http.Request{
			Method: http.MethodGet,
			URL:    &url.URL{Scheme: "http", Host: "localhost:41184", Path: "/search", RawQuery: "token=secret"},
		},
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		code      int
		wantCode  slerrors.Code
		retryable bool
	}{
		{http.StatusOK, "", false},
		{http.StatusNoContent, "", false},
		{http.StatusNotFound, slerrors.ErrCodeNotFound, false},
		{http.StatusUnauthorized, slerrors.ErrCodeUnauthorized, false},
		{http.StatusForbidden, slerrors.ErrCodeUnauthorized, false},
		{http.StatusTooManyRequests, slerrors.ErrCodeNetwork, true},
		{http.StatusBadGateway, slerrors.ErrCodeNetwork, true},
		{http.StatusBadRequest, slerrors.ErrCodeNetwork, false},
	}
	for _, tt := range tests {
		err := CheckStatus(response(tt.code, "nope"))
		if tt.wantCode == "" {
			if err != nil {
				t.Errorf("CheckStatus(%d) = %v, want nil", tt.code, err)
			}
			continue
		}
		if got := slerrors.GetCode(err); got != tt.wantCode {
			t.Errorf("CheckStatus(%d) code = %q, want %q", tt.code, got, tt.wantCode)
		}
		if IsRetryable(err) != tt.retryable {
			t.Errorf("CheckStatus(%d) retryable = %v, want %v", tt.code, IsRetryable(err), tt.retryable)
		}
		if strings.Contains(err.Error(), "secret") {
			t.Errorf("CheckStatus(%d) leaked the token: %v", tt.code, err)
		}
	}
}
