// Package promobs implements observability.Metrics with Prometheus counters and
// histograms, so the client's request counts and latencies can be scraped.
//
//	registry := prometheus.NewRegistry()
//	client := openai.New("").WithMetrics(promobs.New(registry))
package promobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/leofalp/openai-go/observability"
)

// Labels is the fixed label set every instrument is created with. Attribute
// keys are matched against it; missing labels are recorded as "".
var Labels = []string{"operation", "endpoint", "status"}

var labelAttributes = map[string]string{
	observability.AttrOperation: "operation",
	observability.AttrEndpoint:  "endpoint",
	observability.AttrStatus:    "status",
}

// DefaultBuckets spans typical API latencies from 100ms to 2 minutes.
var DefaultBuckets = []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120}

// Metrics hands out Prometheus-backed instruments registered on a single
// Registerer.
type Metrics struct {
	registerer prometheus.Registerer
	namespace  string
	buckets    []float64

	mu         sync.Mutex
	counters   map[string]*counter
	histograms map[string]*histogram
}

// Option configures Metrics.
type Option func(*Metrics)

// WithNamespace prefixes every metric name.
func WithNamespace(namespace string) Option {
	return func(m *Metrics) {
		m.namespace = namespace
	}
}

// WithBuckets overrides DefaultBuckets for histograms.
func WithBuckets(buckets []float64) Option {
	return func(m *Metrics) {
		m.buckets = buckets
	}
}

// New creates Metrics registering on registerer, or on
// prometheus.DefaultRegisterer when nil.
func New(registerer prometheus.Registerer, opts ...Option) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		registerer: registerer,
		buckets:    DefaultBuckets,
		counters:   make(map[string]*counter),
		histograms: make(map[string]*histogram),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var _ observability.Metrics = (*Metrics)(nil)

// Counter returns the counter for name, registering it on first use. Dotted
// names are converted to Prometheus form, with a _total suffix.
func (m *Metrics) Counter(name string) observability.Counter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.counters[name]; ok {
		return c
	}

	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      counterName(name),
		Help:      fmt.Sprintf("Total %s.", name),
	}, Labels)
	c := &counter{vec: register(m.registerer, vec)}
	m.counters[name] = c
	return c
}

// Histogram returns the histogram for name, registering it on first use.
func (m *Metrics) Histogram(name string) observability.Histogram {
	m.mu.Lock()
	defer m.mu.Unlock()

	if h, ok := m.histograms[name]; ok {
		return h
	}

	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      metricName(name),
		Help:      fmt.Sprintf("Distribution of %s.", name),
		Buckets:   m.buckets,
	}, Labels)
	h := &histogram{vec: register(m.registerer, vec)}
	m.histograms[name] = h
	return h
}

// register adds collector to registerer, reusing an identical collector that
// was registered earlier (for example by another client sharing the registry).
func register[T prometheus.Collector](registerer prometheus.Registerer, collector T) T {
	if err := registerer.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(fmt.Sprintf("promobs: registering collector: %v", err))
	}
	return collector
}

type counter struct {
	vec *prometheus.CounterVec
}

func (c *counter) Add(_ context.Context, value int64, attrs ...observability.Attribute) {
	c.vec.With(labelsFromAttributes(attrs)).Add(float64(value))
}

type histogram struct {
	vec *prometheus.HistogramVec
}

func (h *histogram) Record(_ context.Context, value float64, attrs ...observability.Attribute) {
	h.vec.With(labelsFromAttributes(attrs)).Observe(value)
}

func labelsFromAttributes(attrs []observability.Attribute) prometheus.Labels {
	labels := make(prometheus.Labels, len(Labels))
	for _, label := range Labels {
		labels[label] = ""
	}
	for _, attr := range attrs {
		label, ok := labelAttributes[attr.Key]
		if !ok {
			continue
		}
		labels[label] = fmt.Sprint(attr.Value)
	}
	return labels
}

func metricName(name string) string {
	return strings.NewReplacer(".", "_", "-", "_", " ", "_").Replace(name)
}

func counterName(name string) string {
	n := metricName(name)
	if !strings.HasSuffix(n, "_total") {
		n += "_total"
	}
	return n
}
