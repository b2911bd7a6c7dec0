package video

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/user/swordfinder/internal/domain/model"
	"github.com/user/swordfinder/pkg/logger"
	"github.com/user/swordfinder/pkg/metrics"
)

const downloadTimeout = 30 * time.Second

// DownloaderOption applies a configuration option to the Downloader.
type DownloaderOption func(*Downloader)

// WithDownloaderHTTPClient sets a custom HTTP client.
func WithDownloaderHTTPClient(hc *http.Client) DownloaderOption {
	return func(d *Downloader) {
		if hc != nil {
			d.http = hc
		}
	}
}

// WithDownloaderPolicy sets the retry policy for download attempts.
func WithDownloaderPolicy(p Policy) DownloaderOption {
	return func(d *Downloader) {
		d.policy = p
	}
}

// WithDownloaderLogger sets a custom logger.
func WithDownloaderLogger(l logger.Logger) DownloaderOption {
	return func(d *Downloader) {
		if l != nil {
			d.logger = l
		}
	}
}

// Downloader fetches clips and persists them under the media directory.
// Downloads are idempotent by file presence: an existing local file short
// circuits without any network call.
type Downloader struct {
	dir    string
	http   *http.Client
	policy Policy
	logger logger.Logger
}

// NewDownloader creates a downloader writing into dir.
func NewDownloader(dir string, opts ...DownloaderOption) *Downloader {
	d := &Downloader{
		dir:    dir,
		http:   &http.Client{Timeout: downloadTimeout},
		policy: NewPolicy(defaultMaxAttempts, defaultDelay),
		logger: logger.Get().Named("downloader"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// LocalPath returns the deterministic file path for an identifier.
func (d *Downloader) LocalPath(identifier string) string {
	return filepath.Join(d.dir, identifier+".mp4")
}

// Download fetches the clip for identifier from mediaURL. The returned asset
// is Downloaded on success and Failed when retries are exhausted; exhaustion
// leaves no partial file behind. Failure is a state, not an error: the only
// error returned is for missing input.
func (d *Downloader) Download(ctx context.Context, identifier, mediaURL string) (*model.VideoAsset, error) {
	if identifier == "" || mediaURL == "" {
		return nil, ErrEmptyInput
	}

	asset := &model.VideoAsset{
		Identifier: identifier,
		MediaURL:   mediaURL,
	}

	path := d.LocalPath(identifier)
	if info, err := os.Stat(path); err == nil {
		// Already on disk: report the existing file, zero network calls.
		metrics.RecordDownloadSkip()
		asset.LocalPath = path
		asset.ByteSize = info.Size()
		asset.State = model.VideoDownloaded
		return asset, nil
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		d.logger.Error(ctx, "create media dir failed", logger.Error(err))
		asset.State = model.VideoFailed
		return asset, nil
	}

	start := time.Now()
	var size int64
	err := d.policy.Retry(ctx, func() error {
		metrics.RecordDownloadAttempt()
		n, err := d.fetchToFile(ctx, mediaURL, path)
		if err != nil {
			// Never leave a partial file behind a failed attempt.
			os.Remove(path)
			d.logger.Warn(ctx, "download attempt failed",
				logger.String("identifier", identifier),
				logger.Error(err),
			)
			return err
		}
		size = n
		return nil
	})
	if err != nil {
		metrics.RecordDownloadFailure()
		asset.State = model.VideoFailed
		return asset, nil
	}

	metrics.RecordDownloadBytes(size)
	metrics.RecordDownloadDuration(float64(time.Since(start).Milliseconds()))
	d.logger.Info(ctx, "clip downloaded",
		logger.String("identifier", identifier),
		logger.String("path", path),
		logger.Int64("bytes", size),
	)

	asset.LocalPath = path
	asset.ByteSize = size
	asset.State = model.VideoDownloaded
	return asset, nil
}

func (d *Downloader) fetchToFile(ctx context.Context, mediaURL, path string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return 0, fmt.Errorf("build download request: %w", err)
	}
	resp, err := d.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: status %d", ErrDownload, resp.StatusCode)
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}

	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("%w: write: %w", ErrDownload, err)
	}
	if resp.ContentLength > 0 && n != resp.ContentLength {
		return 0, fmt.Errorf("%w: truncated body (%d of %d bytes)", ErrDownload, n, resp.ContentLength)
	}
	return n, nil
}
