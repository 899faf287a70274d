// Package collyfetcher implements the page fetcher using gocolly.
package collyfetcher

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/ligain/ycrawler/internal/archive"
	"github.com/ligain/ycrawler/internal/metrics"
)

// Request headers sent with every fetch.
const (
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_9_5) " +
		"AppleWebKit 537.36 (KHTML, like Gecko) Chrome"
	DefaultAccept = "text/html,application/xhtml+xml," +
		"application/xml;q=0.9,image/webp,*/*;q=0.8"
)

// Config controls fetch behavior.
type Config struct {
	UserAgent string
	Accept    string
	// Retry bounds the internal retry loop for transport errors and
	// HTTP >= 400 responses.
	Retry archive.RetryPolicy
	// Timeout is the overall budget for one Fetch call, retries included.
	Timeout time.Duration
}

// Fetcher performs single-page GETs with bounded retries via a Colly
// collector. All failure modes collapse into an empty Document; callers
// only ever see content-or-absence. Safe for concurrent use: every fetch
// runs on its own collector clone.
type Fetcher struct {
	cfg           Config
	baseCollector *colly.Collector
	logger        *zap.Logger
}

// New builds a Fetcher.
func New(cfg Config, logger *zap.Logger) *Fetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Accept == "" {
		cfg.Accept = DefaultAccept
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry.MaxAttempts = 5
	}
	if cfg.Retry.Delay <= 0 {
		cfg.Retry.Delay = 2 * time.Second
	}

	c := colly.NewCollector(colly.UserAgent(cfg.UserAgent))
	// Retries revisit the same URL, so the revisit guard must be off.
	c.AllowURLRevisit = true
	c.IgnoreRobotsTxt = true
	c.SetRequestTimeout(cfg.Timeout)
	c.WithTransport(newHTTPTransport())

	return &Fetcher{
		cfg:           cfg,
		baseCollector: c,
		logger:        logger,
	}
}

// Fetch issues an HTTP GET for rawURL and returns the parsed page. Failed
// attempts (connection errors, HTTP >= 400) are retried with a fixed delay
// until the retry budget or the overall timeout runs out; a 200 response
// with a non-HTML content type is terminal. Fetch never returns an error.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) *archive.Document {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	for attempt := 1; ; attempt++ {
		doc, retry := f.attempt(ctx, rawURL)
		if !retry {
			return doc
		}
		if attempt >= f.cfg.Retry.MaxAttempts {
			break
		}
		metrics.FetchRetries.Inc()
		if err := archive.Sleep(ctx, f.cfg.Retry.Delay); err != nil {
			f.logInterrupted(rawURL, ctx.Err())
			return archive.EmptyDocument()
		}
	}
	metrics.FetchFailures.Inc()
	f.logger.Error("fetch retries exhausted",
		zap.String("url", rawURL),
		zap.Int("attempts", f.cfg.Retry.MaxAttempts))
	return archive.EmptyDocument()
}

// attempt performs one GET. retry reports whether the failure is worth
// another attempt; a returned document (possibly empty) is final.
func (f *Fetcher) attempt(ctx context.Context, rawURL string) (doc *archive.Document, retry bool) {
	var (
		status      int
		contentType string
		body        []byte
		fetchErr    error
	)

	collector := f.baseCollector.Clone()
	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", f.cfg.Accept)
	})
	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		if r.Headers != nil {
			contentType = r.Headers.Get("Content-Type")
		}
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(rawURL)
	}()

	select {
	case <-ctx.Done():
		f.logInterrupted(rawURL, ctx.Err())
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			metrics.FetchFailures.Inc()
		}
		return archive.EmptyDocument(), false
	case err := <-done:
		if err == nil {
			err = fetchErr
		}
		if err != nil {
			if status >= http.StatusBadRequest {
				f.logger.Error("received error status, retrying",
					zap.String("url", rawURL),
					zap.Int("status", status))
			} else {
				f.logger.Error("error while getting url, retrying",
					zap.String("url", rawURL),
					zap.Error(err))
			}
			return nil, true
		}
	}

	if status == http.StatusOK && strings.Contains(contentType, "text/html") {
		return f.parse(rawURL, body), false
	}
	if status == http.StatusOK {
		f.logger.Error("unsupported content type",
			zap.String("url", rawURL),
			zap.String("content_type", contentType))
		metrics.FetchFailures.Inc()
	}
	return archive.EmptyDocument(), false
}

func (f *Fetcher) parse(rawURL string, body []byte) *archive.Document {
	// Lossy decode: invalid UTF-8 sequences become U+FFFD instead of
	// failing the whole page.
	text := strings.ToValidUTF8(string(body), "�")
	doc, err := archive.ParseDocument(strings.NewReader(text))
	if err != nil {
		f.logger.Error("parse fetched page", zap.String("url", rawURL), zap.Error(err))
		return archive.EmptyDocument()
	}
	return doc
}

// logInterrupted distinguishes a blown deadline from an external
// cancellation; neither may crash the owning role.
func (f *Fetcher) logInterrupted(rawURL string, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		f.logger.Error("timeout reached for url", zap.String("url", rawURL))
		return
	}
	f.logger.Error("fetching url was canceled", zap.String("url", rawURL))
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
