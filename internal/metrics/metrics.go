package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "baymap",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "baymap",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	// Bay lifecycle metrics
	BayMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "baymap",
		Subsystem: "bays",
		Name:      "mutations_total",
		Help:      "Bay create/update/delete calls by result",
	}, []string{"op", "result"})

	StoreDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "baymap",
		Subsystem: "store",
		Name:      "call_duration_seconds",
		Help:      "Latency of persistence calls",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"op"})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "baymap",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "baymap",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "baymap",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Bay change events published, by kind and result",
	}, []string{"kind", "result"})

	// Editor metrics
	OverlayPasses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "baymap",
		Subsystem: "overlay",
		Name:      "passes_total",
		Help:      "Overlay reconciliation attempts by outcome",
	}, []string{"outcome"})

	UndoDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "baymap",
		Subsystem: "editor",
		Name:      "undo_depth",
		Help:      "Current number of undo snapshots",
	})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "baymap",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "baymap",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "baymap",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})
)

// ObserveStore records the latency of a persistence call started at start.
func ObserveStore(op string, start time.Time) {
	StoreDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// Result maps an error to a metric label.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())

		return err
	}
}

// Handler returns a Fiber handler serving the Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	}
}

// PoolStat is the subset of pgxpool.Stat exported as gauges.
type PoolStat interface {
	AcquiredConns() int32
	IdleConns() int32
	TotalConns() int32
}

// UpdateDBPool copies pool statistics into the db gauges.
func UpdateDBPool(s PoolStat) {
	DBPoolConnsAcquired.Set(float64(s.AcquiredConns()))
	DBPoolConnsIdle.Set(float64(s.IdleConns()))
	DBPoolConnsOpen.Set(float64(s.TotalConns()))
}

// Listen serves /metrics on addr until the app is shut down. The editor
// uses it when metrics.addr is set; the API server mounts Handler instead.
func Listen(addr string) (*fiber.App, <-chan error) {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/metrics", Handler())
	errc := make(chan error, 1)
	go func() { errc <- app.Listen(addr) }()
	return app, errc
}
