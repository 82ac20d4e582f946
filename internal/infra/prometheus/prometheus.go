package prometheus

import (
	"fmt"
	"net/http"
	"time"

	"github.com/exploitz3r0/xq/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	readHeaderTimeout = 5 * time.Second
	writeTimeout      = 10 * time.Second
	defaultPort       = 9090
)

// Application-level counters. HTTP request metrics live in the middleware.
var (
	LinksCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "xq_links_created_total",
		Help: "Total number of short links created",
	})

	Redirects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "xq_redirects_total",
		Help: "Total number of short-link redirects served",
	})

	Previews = promauto.NewCounter(prometheus.CounterOpts{
		Name: "xq_previews_total",
		Help: "Total number of link previews served",
	})

	SweptLinks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "xq_swept_links_total",
		Help: "Total number of expired links removed by the sweeper",
	})
)

// NewServer builds a basic HTTP server that exposes /metrics for Prometheus scraping.
func NewServer(cfg config.PrometheusConfig) *http.Server {
	port := cfg.Port
	if port == 0 {
		port = defaultPort
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}
}
