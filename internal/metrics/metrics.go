package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	SearchPagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsbrief_search_pages_total",
			Help: "Search result pages requested, by outcome",
		},
		[]string{"outcome"},
	)

	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "newsbrief_fetch_duration_seconds",
			Help:    "Duration of search page fetches in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
	)

	FetchBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newsbrief_fetch_bytes_total",
			Help: "Total bytes downloaded from the search endpoint",
		},
	)

	RecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsbrief_records_total",
			Help: "Result items seen during collection, by outcome",
		},
		[]string{"outcome"},
	)

	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsbrief_generations_total",
			Help: "Digest analyses produced, by result kind",
		},
		[]string{"kind"},
	)
)

// ObserveFetch records one completed HTTP exchange with the search endpoint.
func ObserveFetch(d time.Duration, bytes int) {
	FetchDuration.Observe(d.Seconds())
	FetchBytesTotal.Add(float64(bytes))
}

func RecordPage(outcome string) {
	SearchPagesTotal.WithLabelValues(outcome).Inc()
}

func RecordItems(outcome string, n int) {
	if n <= 0 {
		return
	}
	RecordsTotal.WithLabelValues(outcome).Add(float64(n))
}

func RecordGeneration(kind string) {
	GenerationsTotal.WithLabelValues(kind).Inc()
}

// Handler exposes the default registry on /metrics.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Serve listens on port until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Run executes fn, serving /metrics next to it when port > 0. The server
// stops once fn returns. A server that fails to start is logged and does
// not affect fn.
func Run(ctx context.Context, port int, logger *zap.Logger, fn func(ctx context.Context) error) error {
	if port <= 0 {
		return fn(ctx)
	}

	g, gctx := errgroup.WithContext(ctx)
	serveCtx, stop := context.WithCancel(gctx)

	g.Go(func() error {
		defer stop()
		return fn(gctx)
	})

	g.Go(func() error {
		logger.Info("metrics server listening", zap.Int("port", port))
		if err := Serve(serveCtx, port); err != nil {
			logger.Warn("metrics server stopped", zap.Error(err))
		}
		return nil
	})

	return g.Wait()
}
