package integrations

import (
	"net/http"
	"time"
)

const httpTimeout = 10 * time.Second

// NewHTTPClient creates an HTTP client with the standard request timeout.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}
