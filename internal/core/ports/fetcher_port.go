package ports

import "context"

// PageFetcherPort performs one HTTP round trip against a remote endpoint
// and returns the raw response body. Implementations own timeouts; the
// pipeline never retries.
type PageFetcherPort interface {
	FetchText(ctx context.Context, url string) (string, error)
}
