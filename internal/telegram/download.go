package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MaxDownloadBytes is the Bot API limit for files a bot may download.
const MaxDownloadBytes = 20 << 20

// ErrTooLarge is returned when a download exceeds the size limit.
var ErrTooLarge = errors.New("telegram: file too large")

// HTTPDownloader fetches attachment bytes from a resolved download link.
type HTTPDownloader struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTPDownloader returns a downloader with the given client timeout (30s when zero).
func NewHTTPDownloader(timeout time.Duration) *HTTPDownloader {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPDownloader{client: &http.Client{Timeout: timeout}, maxBytes: MaxDownloadBytes}
}

// Fetch downloads url. Errors never include the URL, which carries the bot token.
func (d *HTTPDownloader) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.New("telegram: invalid download link")
	}
	resp, err := d.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.New("telegram: download failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram: download returned %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, d.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("telegram: read download: %w", err)
	}
	if int64(len(data)) > d.maxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}
