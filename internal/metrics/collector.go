package metrics

import (
	"math"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	LatencyService       = "service"
	LatencyPizzaCreation = "pizzaCreation"
)

// Sink receives telemetry events. Nothing in the request path reads them back.
type Sink interface {
	Request(method string)
	Latency(kind string, d time.Duration)
	AuthAttempt(success bool)
	UserLoggedIn()
	UserLoggedOut()
	PizzaSold(price float64)
	PizzaFailed()
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Requests       map[string]int64
	RequestsTotal  int64
	AuthSuccessful int64
	AuthFailed     int64
	ActiveUsers    int64
	PizzasSold     int64
	PizzaFailures  int64
	Revenue        float64
	ServiceLatency time.Duration
	PizzaLatency   time.Duration
}

// Collector keeps running totals for the pusher and mirrors every event into
// Prometheus collectors on its own registry.
type Collector struct {
	mu       sync.Mutex
	requests map[string]int64

	requestsTotal  atomic.Int64
	authSuccessful atomic.Int64
	authFailed     atomic.Int64
	activeUsers    atomic.Int64
	pizzasSold     atomic.Int64
	pizzaFailures  atomic.Int64
	revenueBits    atomic.Uint64
	serviceLatency atomic.Int64
	pizzaLatency   atomic.Int64

	registry        *prometheus.Registry
	promRequests    *prometheus.CounterVec
	promAuth        *prometheus.CounterVec
	promActiveUsers prometheus.Gauge
	promPizzas      *prometheus.CounterVec
	promRevenue     prometheus.Counter
	promLatency     *prometheus.HistogramVec
}

var _ Sink = (*Collector)(nil)

func NewCollector(namespace string) *Collector {
	c := &Collector{
		requests: map[string]int64{},
		registry: prometheus.NewRegistry(),
		promRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method"}),
		promAuth: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "attempts_total",
			Help:      "Authentication attempts by result.",
		}, []string{"result"}),
		promActiveUsers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "users",
			Name:      "active",
			Help:      "Users holding a session issued by this process.",
		}),
		promPizzas: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pizza",
			Name:      "orders_total",
			Help:      "Pizzas by outcome.",
		}, []string{"outcome"}),
		promRevenue: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pizza",
			Name:      "revenue_total",
			Help:      "Revenue of sold pizzas.",
		}),
		promLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "latency_seconds",
			Help:      "Service and pizza creation latency.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		}, []string{"kind"}),
	}
	c.registry.MustRegister(
		c.promRequests,
		c.promAuth,
		c.promActiveUsers,
		c.promPizzas,
		c.promRevenue,
		c.promLatency,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return c
}

// Handler exposes the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) Request(method string) {
	c.mu.Lock()
	c.requests[method]++
	c.mu.Unlock()
	c.requestsTotal.Add(1)
	c.promRequests.WithLabelValues(method).Inc()
}

// Latency keeps the most recent sample per kind for the pusher.
func (c *Collector) Latency(kind string, d time.Duration) {
	switch kind {
	case LatencyService:
		c.serviceLatency.Store(int64(d))
	case LatencyPizzaCreation:
		c.pizzaLatency.Store(int64(d))
	default:
		return
	}
	c.promLatency.WithLabelValues(kind).Observe(d.Seconds())
}

func (c *Collector) AuthAttempt(success bool) {
	if success {
		c.authSuccessful.Add(1)
		c.promAuth.WithLabelValues("successful").Inc()
		return
	}
	c.authFailed.Add(1)
	c.promAuth.WithLabelValues("failed").Inc()
}

func (c *Collector) UserLoggedIn() {
	c.activeUsers.Add(1)
	c.promActiveUsers.Inc()
}

// UserLoggedOut never takes the active count below zero.
func (c *Collector) UserLoggedOut() {
	for {
		n := c.activeUsers.Load()
		if n <= 0 {
			return
		}
		if c.activeUsers.CompareAndSwap(n, n-1) {
			c.promActiveUsers.Dec()
			return
		}
	}
}

func (c *Collector) PizzaSold(price float64) {
	c.pizzasSold.Add(1)
	for {
		old := c.revenueBits.Load()
		next := math.Float64bits(math.Float64frombits(old) + price)
		if c.revenueBits.CompareAndSwap(old, next) {
			break
		}
	}
	c.promPizzas.WithLabelValues("sold").Inc()
	c.promRevenue.Add(price)
}

func (c *Collector) PizzaFailed() {
	c.pizzaFailures.Add(1)
	c.promPizzas.WithLabelValues("failed").Inc()
}

func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	requests := make(map[string]int64, len(c.requests))
	for k, v := range c.requests {
		requests[k] = v
	}
	c.mu.Unlock()

	return Snapshot{
		Requests:       requests,
		RequestsTotal:  c.requestsTotal.Load(),
		AuthSuccessful: c.authSuccessful.Load(),
		AuthFailed:     c.authFailed.Load(),
		ActiveUsers:    c.activeUsers.Load(),
		PizzasSold:     c.pizzasSold.Load(),
		PizzaFailures:  c.pizzaFailures.Load(),
		Revenue:        math.Float64frombits(c.revenueBits.Load()),
		ServiceLatency: time.Duration(c.serviceLatency.Load()),
		PizzaLatency:   time.Duration(c.pizzaLatency.Load()),
	}
}
