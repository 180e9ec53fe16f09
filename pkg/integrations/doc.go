// Package integrations provides the shared HTTP client used by remote note
// services that hold time slips.
//
// [Client] wraps net/http with default headers, a request timeout, retry on
// transient failures (see [httputil.Retry]) and response caching through a
// [cache.Cache] namespace. Service clients embed it:
//
//	type Client struct {
//	    *integrations.Client
//	    baseURL string
//	}
//
// The only service today is Joplin's Data API, in [joplin].
//
// [joplin]: github.com/matzehuels/slipmap/pkg/integrations/joplin
package integrations
