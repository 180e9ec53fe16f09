// Package httputil provides retry helpers for the HTTP clients that fetch
// time slips from remote note services.
//
// [Retry] runs an operation up to a fixed number of attempts, doubling the
// delay after each failure. Only errors wrapped in [RetryableError] are
// retried; everything else (bad credentials, missing notes, decode errors)
// returns on the first attempt:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    defer resp.Body.Close()
//	    return httputil.CheckStatus(resp)
//	})
//
// [CheckStatus] classifies a response: 5xx and 429 become retryable,
// 404 maps to a NOT_FOUND error and 401/403 to UNAUTHORIZED.
package httputil
