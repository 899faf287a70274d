// Package metrics exposes Prometheus collectors for the archiver.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CyclesTotal counts front-page polling cycles.
	CyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ycrawler_cycles_total",
		Help: "The total number of front page polling cycles.",
	})
	// StoriesDiscovered counts stories dispatched for discovery.
	StoriesDiscovered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ycrawler_stories_discovered_total",
		Help: "The total number of new stories dispatched for discovery.",
	})
	// StoriesSkipped counts stories skipped because their folder existed.
	StoriesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ycrawler_stories_skipped_total",
		Help: "The total number of stories skipped as already archived.",
	})
	// FetchRetries counts individual fetch retry attempts.
	FetchRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ycrawler_fetch_retries_total",
		Help: "The total number of fetch retry attempts.",
	})
	// FetchFailures counts fetches that returned no content.
	FetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ycrawler_fetch_failures_total",
		Help: "The total number of fetches that produced no content.",
	})
	// PagesSaved counts files written to the archive.
	PagesSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ycrawler_pages_saved_total",
		Help: "The total number of pages saved to disk.",
	})
	// SaveFailures counts file writes that failed.
	SaveFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ycrawler_save_failures_total",
		Help: "The total number of failed page saves.",
	})
	// EmptySkips counts dequeued work items dropped for empty content.
	EmptySkips = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ycrawler_empty_skips_total",
		Help: "The total number of work items dropped because the fetch returned no content.",
	})
)

// Handler returns an http.Handler exposing the collectors.
func Handler() http.Handler {
	return promhttp.Handler()
}
