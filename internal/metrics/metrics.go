// Package metrics exposes Prometheus collectors for the scraper.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pagesTotal    *prometheus.CounterVec
	commentsTotal prometheus.Counter
	jobsTotal     *prometheus.CounterVec
	exportsTotal  *prometheus.CounterVec

	once sync.Once
)

// Init registers the collectors with the default registry. It is safe
// to call multiple times.
func Init() {
	once.Do(func() {
		pagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_comment_pages_total",
				Help: "Total comment pages fetched, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		commentsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "scraper_comments_total",
				Help: "Total raw comment records retrieved.",
			},
		)

		jobsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_jobs_total",
				Help: "Total scrape jobs executed, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		exportsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_exports_total",
				Help: "Total export attempts, labeled by format and outcome.",
			},
			[]string{"format", "outcome"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePage counts one fetched comment page by outcome.
func ObservePage(outcome string) {
	if pagesTotal != nil {
		pagesTotal.WithLabelValues(outcome).Inc()
	}
}

// AddComments counts raw comment records retrieved.
func AddComments(n int) {
	if commentsTotal != nil {
		commentsTotal.Add(float64(n))
	}
}

// ObserveJob counts one completed job by outcome.
func ObserveJob(outcome string) {
	if jobsTotal != nil {
		jobsTotal.WithLabelValues(outcome).Inc()
	}
}

// ObserveExport counts one export attempt by format and outcome.
func ObserveExport(format, outcome string) {
	if exportsTotal != nil {
		exportsTotal.WithLabelValues(format, outcome).Inc()
	}
}
