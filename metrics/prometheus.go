package metrics

import (
	"log"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "trivia_token"

// Prometheus sink backed by a private registry. Vectors are created on first use with the
// label names of that call; later calls with a different label set are dropped and logged.
type Prometheus struct {
	registry *prometheus.Registry

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
}

// NewPrometheus create sink with Go runtime and process collectors registered
func NewPrometheus() *Prometheus {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Prometheus{
		registry:   reg,
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

func labelNames(labels Labels) []string {
	names := make([]string, 0, len(labels))
	for k := range labels {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (p *Prometheus) counter(name string, labels Labels) *prometheus.CounterVec {
	p.mu.Lock()
	defer p.mu.Unlock()
	if vec, ok := p.counters[name]; ok {
		return vec
	}
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
		Help:      name,
	}, labelNames(labels))
	p.registry.MustRegister(vec)
	p.counters[name] = vec
	return vec
}

func (p *Prometheus) histogram(name string, labels Labels) *prometheus.HistogramVec {
	p.mu.Lock()
	defer p.mu.Unlock()
	if vec, ok := p.histograms[name]; ok {
		return vec
	}
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      name,
		Help:      name,
		Buckets:   prometheus.DefBuckets,
	}, labelNames(labels))
	p.registry.MustRegister(vec)
	p.histograms[name] = vec
	return vec
}

func (p *Prometheus) IncCounter(name string, labels Labels) {
	c, err := p.counter(name, labels).GetMetricWith(prometheus.Labels(labels))
	if err != nil {
		log.Printf("metrics: drop counter %s: %v", name, err)
		return
	}
	c.Inc()
}

func (p *Prometheus) ObserveDuration(name string, d time.Duration, labels Labels) {
	h, err := p.histogram(name, labels).GetMetricWith(prometheus.Labels(labels))
	if err != nil {
		log.Printf("metrics: drop histogram %s: %v", name, err)
		return
	}
	h.Observe(d.Seconds())
}

// Handler exposition endpoint for the registry
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
