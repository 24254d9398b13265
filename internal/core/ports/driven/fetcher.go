package driven

import "context"

// WebFetcher retrieves the visible text of one web page.
type WebFetcher interface {
	// FetchOne returns the page text and true, or "" and false when the
	// URL is rejected, the request fails or the page has no visible text.
	FetchOne(ctx context.Context, url string) (string, bool)
}
