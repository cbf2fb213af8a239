package prom

import (
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	SystemQueries = "queries"
)
const (
	MetricQueryDuration = "duration_seconds"
	MetricQueryFailures = "failures_total"
)

// Metrics collects per-operation query timings on a private registry so
// several connections (or tests) never collide on the default one.
type Metrics struct {
	registry *prometheus.Registry
	duration *prometheus.HistogramVec
	failures *prometheus.CounterVec

	lock       sync.Mutex
	operations map[string]struct{}
}

// QueryStat is the aggregated view of one SQL operation.
type QueryStat struct {
	Operation string
	Count     uint64
	Total     time.Duration
	Failures  uint64
}

func Create(env string, namespace string) (*Metrics, error) {
	defaultLabels := prometheus.Labels{"env": env}

	m := &Metrics{
		registry:   prometheus.NewRegistry(),
		operations: make(map[string]struct{}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   SystemQueries,
			Name:        MetricQueryDuration,
			Help:        "Duration of SQL statements issued through the ORM.",
			ConstLabels: defaultLabels,
			Buckets:     prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   SystemQueries,
			Name:        MetricQueryFailures,
			Help:        "SQL statements that returned an error.",
			ConstLabels: defaultLabels,
		}, []string{"operation"}),
	}

	var err error
	hasError := func(e error) {
		if err == nil && e != nil {
			err = e
		}
	}
	hasError(m.registry.Register(m.duration))
	hasError(m.registry.Register(m.failures))

	return m, err
}

func (m *Metrics) ObserveQuery(operation string, elapsed time.Duration, err error) {
	m.lock.Lock()
	m.operations[operation] = struct{}{}
	m.lock.Unlock()

	m.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
	if err != nil {
		m.failures.WithLabelValues(operation).Inc()
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Summary gathers the registry and returns one entry per observed operation,
// sorted by name.
func (m *Metrics) Summary() ([]QueryStat, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, err
	}

	stats := make(map[string]*QueryStat)
	get := func(op string) *QueryStat {
		s, ok := stats[op]
		if !ok {
			s = &QueryStat{Operation: op}
			stats[op] = s
		}
		return s
	}

	for _, family := range families {
		for _, metric := range family.GetMetric() {
			op := ""
			for _, label := range metric.GetLabel() {
				if label.GetName() == "operation" {
					op = label.GetValue()
				}
			}
			if op == "" {
				continue
			}
			if h := metric.GetHistogram(); h != nil {
				s := get(op)
				s.Count = h.GetSampleCount()
				s.Total = time.Duration(h.GetSampleSum() * float64(time.Second))
			}
			if c := metric.GetCounter(); c != nil {
				get(op).Failures = uint64(c.GetValue())
			}
		}
	}

	out := make([]QueryStat, 0, len(stats))
	for _, s := range stats {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Operation < out[j].Operation })
	return out, nil
}

// Operations lists every operation observed so far.
func (m *Metrics) Operations() []string {
	m.lock.Lock()
	defer m.lock.Unlock()
	ops := make([]string, 0, len(m.operations))
	for op := range m.operations {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}
