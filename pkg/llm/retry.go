package llm

import (
	"bytes"
	"context"
	"io"
	"math"
	"net/http"
	"time"
)

// RetryBaseDelay is the first backoff after an HTTP 429. Tests shrink it.
var RetryBaseDelay = time.Second

// doWithRetry sends req and retries on HTTP 429 with exponential backoff.
// After maxRetries the last 429 response is returned to the caller.
func doWithRetry(ctx context.Context, client *http.Client, req *http.Request, body []byte, maxRetries int) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		clone := req.Clone(ctx)
		if body != nil {
			clone.Body = io.NopCloser(bytes.NewReader(body))
			clone.ContentLength = int64(len(body))
		}
		resp, err := client.Do(clone)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests || attempt >= maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		resp.Body.Close()              //nolint:errcheck

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}
