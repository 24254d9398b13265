// Package web fetches the visible text of a single web page.
package web

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/html"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/plaintext"
)

// Ensure Fetcher implements the interface.
var _ driven.WebFetcher = (*Fetcher)(nil)

// Request headers of a desktop browser; some sites refuse unknown agents.
const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
	acceptHeader = "text/html,application/xhtml+xml,application/xml;" +
		"q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8"
	acceptLanguage = "en-US,en;q=0.9"
)

// binaryPath matches URL paths that name media, archives or office files.
var binaryPath = regexp.MustCompile(`(?i)\.(?:zip|rar|7z|gz|tar|tgz|bz2|` +
	`png|jpe?g|gif|webp|svg|ico|` +
	`mp4|mpe?g|mov|avi|webm|` +
	`mp3|wav|flac|ogg|` +
	`pdf|docx?|pptx?|xlsx?)$`)

// acceptedContentTypes are the response types treated as pages.
var acceptedContentTypes = []string{
	"text/html",
	"application/xhtml+xml",
	"text/plain",
}

// Config bounds a fetch.
type Config struct {
	// TotalBudget caps the wall-clock time of one FetchOne call.
	TotalBudget time.Duration

	// RequestTimeout caps a single HTTP request including the body read.
	RequestTimeout time.Duration

	// MaxBytes caps the response body read before decoding.
	MaxBytes int64

	// RequestsPerSecond paces outbound requests. Zero disables pacing.
	RequestsPerSecond float64
}

// ConfigFromSettings converts fetch settings.
func ConfigFromSettings(s domain.FetchSettings) Config {
	return Config{
		TotalBudget:       s.TotalBudget,
		RequestTimeout:    s.RequestTimeout,
		MaxBytes:          s.MaxBytes,
		RequestsPerSecond: s.RequestsPerSecond,
	}
}

// Fetcher implements driven.WebFetcher over net/http.
type Fetcher struct {
	client  *http.Client
	config  Config
	limiter *rate.Limiter
}

// New creates a fetcher. A nil client uses http.DefaultClient.
func New(cfg Config, client *http.Client) *Fetcher {
	if cfg.TotalBudget <= 0 {
		cfg.TotalBudget = domain.DefaultFetchBudget
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = domain.DefaultFetchTimeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = domain.DefaultFetchMaxBytes
	}
	if client == nil {
		client = http.DefaultClient
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Fetcher{
		client:  client,
		config:  cfg,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// FetchOne fetches one page and returns its visible text.
// Every failure is logged and reported as ("", false).
func (f *Fetcher) FetchOne(ctx context.Context, rawURL string) (string, bool) {
	start := time.Now()
	target := NormalizeURL(rawURL)

	u, err := url.Parse(target)
	if err != nil || u.Host == "" {
		logger.Warn("web: invalid URL %q", rawURL)
		return "", false
	}
	if IsBinaryURL(u) {
		logger.Info("web: skip binary-looking URL %s", target)
		return "", false
	}

	ctx, cancel := context.WithTimeout(ctx, f.config.TotalBudget)
	defer cancel()

	if err := f.limiter.Wait(ctx); err != nil {
		logger.Warn("web: time budget exceeded before request for %s", target)
		return "", false
	}

	text, ok := f.get(ctx, target)
	if !ok {
		return "", false
	}

	logger.Info("web: fetched %s (%d chars, %s)", target, len(text), time.Since(start).Round(time.Millisecond))
	return text, true
}

func (f *Fetcher) get(ctx context.Context, target string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, f.config.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		logger.Warn("web: build request %s: %v", target, err)
		return "", false
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Language", acceptLanguage)

	resp, err := f.client.Do(req)
	if err != nil {
		logger.Warn("web: GET failed %s: %v", target, err)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		logger.Warn("web: GET failed %s: status %d", target, resp.StatusCode)
		return "", false
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if !isAcceptedContentType(contentType) {
		logger.Info("web: skip %s (content-type %q)", target, contentType)
		return "", false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBytes))
	if err != nil {
		logger.Warn("web: read body %s: %v", target, err)
		return "", false
	}

	text, err := html.VisibleText(decode(body, contentType))
	if err != nil {
		logger.Warn("web: decode %s: %v", target, err)
		return "", false
	}
	if text == "" {
		logger.Info("web: no visible text for %s", target)
		return "", false
	}
	return text, true
}

// decode converts body to UTF-8 using the declared or sniffed charset.
// Unknown charsets fall back to UTF-8 with invalid bytes dropped.
func decode(body []byte, contentType string) io.Reader {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return strings.NewReader(plaintext.Decode(body))
	}
	return r
}

// NormalizeURL trims the URL and adds https:// when no scheme is given.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return raw
	}
	return "https://" + raw
}

// IsBinaryURL reports whether the URL path has a media, archive or
// document extension.
func IsBinaryURL(u *url.URL) bool {
	return binaryPath.MatchString(u.Path)
}

func isAcceptedContentType(contentType string) bool {
	for _, accepted := range acceptedContentTypes {
		if strings.Contains(contentType, accepted) {
			return true
		}
	}
	return false
}
