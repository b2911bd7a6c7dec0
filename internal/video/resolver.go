// Package video resolves and downloads externally hosted swing clips.
package video

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/swordfinder/pkg/logger"
	"github.com/user/swordfinder/pkg/metrics"
)

const resolverTimeout = 15 * time.Second

// pageVariants is the fixed probe order for source-page variants. The
// variant-less page form is the final fallback.
var pageVariants = []string{"HOME", "AWAY", "NETWORK"}

// ResolverOption applies a configuration option to the Resolver.
type ResolverOption func(*Resolver)

// WithResolverHTTPClient sets a custom HTTP client.
func WithResolverHTTPClient(hc *http.Client) ResolverOption {
	return func(r *Resolver) {
		if hc != nil {
			r.http = hc
		}
	}
}

// WithResolverPolicy sets the retry policy for page fetches.
func WithResolverPolicy(p Policy) ResolverOption {
	return func(r *Resolver) {
		r.policy = p
	}
}

// WithResolverLogger sets a custom logger.
func WithResolverLogger(l logger.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// Resolver locates the hosting page and direct media URL for an identifier.
type Resolver struct {
	base   string
	http   *http.Client
	policy Policy
	logger logger.Logger
}

// NewResolver creates a resolver against the given page base URL.
func NewResolver(base string, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		base:   base,
		http:   &http.Client{Timeout: resolverTimeout},
		policy: NewPolicy(defaultMaxAttempts, defaultDelay),
		logger: logger.Get().Named("resolver"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// PageURL builds the hosting page URL for an identifier and variant. An
// empty variant yields the variant-less form.
func (r *Resolver) PageURL(identifier, variant string) string {
	q := url.Values{}
	q.Set("playId", identifier)
	if variant != "" {
		q.Set("videoType", variant)
	}
	return fmt.Sprintf("%s/sporty-videos?%s", r.base, q.Encode())
}

// ResolvePage probes the page variants in order and returns the first URL
// whose existence check succeeds. A probe that fails for any reason, network
// errors included, just moves on to the next variant; when every probe
// fails the variant-less page URL is returned. This method never errors.
func (r *Resolver) ResolvePage(ctx context.Context, identifier string) string {
	for _, variant := range pageVariants {
		pageURL := r.PageURL(identifier, variant)
		if r.pageExists(ctx, pageURL) {
			metrics.RecordResolverProbe(variant, "hit")
			return pageURL
		}
		metrics.RecordResolverProbe(variant, "miss")
	}
	return r.PageURL(identifier, "")
}

func (r *Resolver) pageExists(ctx context.Context, pageURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, pageURL, nil)
	if err != nil {
		return false
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// MediaURL fetches the hosting page and extracts the direct media URL from
// the video-box container. A page without the expected structure yields
// ErrNoMedia; transient fetch failures are retried per the policy first.
func (r *Resolver) MediaURL(ctx context.Context, pageURL string) (string, error) {
	var mediaURL string
	err := r.policy.Retry(ctx, func() error {
		u, err := r.extractMediaURL(ctx, pageURL)
		if err != nil {
			return err
		}
		mediaURL = u
		return nil
	})
	if err != nil {
		return "", err
	}
	return mediaURL, nil
}

func (r *Resolver) extractMediaURL(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build page request: %w", err)
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}

	src, ok := doc.Find(`div.video-box video source[type="video/mp4"]`).First().Attr("src")
	if !ok || src == "" {
		return "", ErrNoMedia
	}
	return src, nil
}

// Resolve runs the full resolution for an identifier: pick the hosting page,
// then extract the direct media URL. Returns ErrNoMedia when the page
// carries no playable source.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (pageURL, mediaURL string, err error) {
	pageURL = r.ResolvePage(ctx, identifier)
	mediaURL, err = r.MediaURL(ctx, pageURL)
	if err != nil {
		metrics.RecordResolverNotFound()
		r.logger.Warn(ctx, "no media url resolved",
			logger.String("identifier", identifier),
			logger.String("page", pageURL),
			logger.Error(err),
		)
		return pageURL, "", err
	}
	return pageURL, mediaURL, nil
}
