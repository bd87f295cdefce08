package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"resultscrawler/internal/ports"
)

// ErrHTMLPayload marks a download that came back as an HTML page: a broken
// link serving the listing instead of the binary document.
var ErrHTMLPayload = errors.New("payload is an html page")

// ErrEmptyPayload marks a 200 response with no body.
var ErrEmptyPayload = errors.New("payload is empty")

// Fetcher downloads entry payloads. In the default lenient mode a rejected
// payload is reported as (nil, nil) so callers can skip the entry; strict mode
// propagates the rejection as an error instead.
type Fetcher struct {
	client *resty.Client
	strict bool
	logger *slog.Logger
}

var _ ports.PayloadFetcher = (*Fetcher)(nil)

// NewFetcher builds a fetcher; a nil client gets a 60s-timeout default.
func NewFetcher(client *resty.Client, strict bool, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = resty.New().SetTimeout(60 * time.Second)
	}
	return &Fetcher{client: client, strict: strict, logger: logger}
}

// Fetch downloads url and returns its bytes. The payload is accepted only when
// the response has status 200, a non-empty body, and a non-HTML content type.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	data, err := f.download(ctx, url)
	if err != nil {
		if f.strict {
			return nil, err
		}
		f.debug("payload rejected", "url", url, "reason", err)
		return nil, nil
	}
	return data, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("download %s: unexpected status %s", url, resp.Status())
	}

	body := resp.Body()
	if len(body) == 0 {
		return nil, fmt.Errorf("download %s: %w", url, ErrEmptyPayload)
	}
	if strings.Contains(resp.Header().Get("Content-Type"), "text/html") {
		return nil, fmt.Errorf("download %s: %w", url, ErrHTMLPayload)
	}

	return body, nil
}

func (f *Fetcher) debug(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}
