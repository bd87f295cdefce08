package listing

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"resultscrawler/internal/domain"
	"resultscrawler/internal/ports"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/89.0.3945.16 Safari/537.36"

	// The "older results" navigation cell carries this class on the listing
	// pages; regular result rows never do.
	olderPageCell = "td.auto-style1"
)

// Walker crawls the results listing and extracts downloadable entries.
type Walker struct {
	client *resty.Client
	logger *slog.Logger
}

var _ ports.ListingSource = (*Walker)(nil)

// NewWalker wires an HTTP client; a nil client gets a 20s-timeout default.
func NewWalker(client *resty.Client, logger *slog.Logger) *Walker {
	if client == nil {
		client = resty.New().SetTimeout(20 * time.Second)
	}
	client.SetHeader("User-Agent", userAgent)
	return &Walker{client: client, logger: logger}
}

// Walk fetches the page at pageURL and, while depth > 0, follows the single
// "older page" link, appending each older page's entries after the current
// one's. Entries come back newest-first. Depth strictly decreases, so an
// adversarial page pointing at itself cannot recurse forever.
func (w *Walker) Walk(ctx context.Context, pageURL string, depth int) ([]domain.Entry, error) {
	w.debug("scraping listing page", "url", pageURL, "depth", depth)

	doc, err := w.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	entries := extractEntries(doc, pageURL)

	if depth > 0 {
		if olderURL, ok := findOlderPageURL(doc, pageURL); ok {
			older, err := w.Walk(ctx, olderURL, depth-1)
			if err != nil {
				return nil, err
			}
			entries = append(entries, older...)
		}
	}

	return entries, nil
}

func (w *Walker) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	resp, err := w.client.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch listing %s: %w", pageURL, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("fetch listing %s: unexpected status %s", pageURL, resp.Status())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse listing %s: %w", pageURL, err)
	}
	return doc, nil
}

// extractEntries walks every table row and keeps the ones shaped like a
// result announcement: exactly two cells, an anchor with text and href in the
// first, a date in the second. Anything else is a routine non-result row and
// is skipped silently.
func extractEntries(doc *goquery.Document, pageURL string) []domain.Entry {
	var entries []domain.Entry

	doc.Find("tbody > tr").Each(func(_ int, tr *goquery.Selection) {
		tds := tr.Find("td")
		if tds.Length() != 2 {
			return
		}
		// Header rows mark themselves with <strong>.
		if tds.Eq(0).Find("strong").Length() > 0 {
			return
		}

		anchor := tds.Eq(0).Find("a").First()
		if anchor.Length() == 0 {
			return
		}

		title := collapseWhitespace(anchor.Text())
		href, _ := anchor.Attr("href")
		date := strings.TrimSpace(tds.Eq(1).Text())
		if title == "" || strings.TrimSpace(href) == "" || date == "" {
			return
		}

		entries = append(entries, domain.Entry{
			Date:  date,
			Title: title,
			URL:   resolveURL(pageURL, strings.TrimSpace(href)),
		})
	})

	return entries
}

func findOlderPageURL(doc *goquery.Document, pageURL string) (string, bool) {
	anchor := doc.Find(olderPageCell).First().Find("a").First()
	href, ok := anchor.Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return "", false
	}
	return resolveURL(pageURL, strings.TrimSpace(href)), true
}

func resolveURL(base, ref string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func (w *Walker) debug(msg string, args ...any) {
	if w.logger != nil {
		w.logger.Debug(msg, args...)
	}
}
