package persistence

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the storage collectors.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cabinet",
			Subsystem: "storage",
			Name:      "operations_total",
			Help:      "Storage operations by operation, collection and result.",
		}, []string{"op", "collection", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cabinet",
			Subsystem: "storage",
			Name:      "operation_duration_seconds",
			Help:      "Storage operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}
	if reg != nil {
		reg.MustRegister(m.operations, m.duration)
	}
	return m
}

// MetricsBackend records every call made to the wrapped backend.
type MetricsBackend struct {
	next    Backend
	metrics *Metrics
}

func WithMetrics(next Backend, m *Metrics) *MetricsBackend {
	return &MetricsBackend{next: next, metrics: m}
}

func (m *MetricsBackend) ReadAll(ctx context.Context, collection string) ([]Document, error) {
	start := time.Now()
	docs, err := m.next.ReadAll(ctx, collection)
	m.observe("read", collection, start, err)
	return docs, err
}

func (m *MetricsBackend) Write(ctx context.Context, collection, id string, data []byte) error {
	start := time.Now()
	err := m.next.Write(ctx, collection, id, data)
	m.observe("write", collection, start, err)
	return err
}

func (m *MetricsBackend) Delete(ctx context.Context, collection, id string) error {
	start := time.Now()
	err := m.next.Delete(ctx, collection, id)
	m.observe("delete", collection, start, err)
	return err
}

func (m *MetricsBackend) Apply(ctx context.Context, ops []Op) error {
	batcher, ok := m.next.(Batcher)
	if !ok {
		return ErrBatchUnsupported
	}
	start := time.Now()
	err := batcher.Apply(ctx, ops)
	m.observe("batch", "", start, err)
	return err
}

func (m *MetricsBackend) observe(op, collection string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.metrics.operations.WithLabelValues(op, collection, result).Inc()
	m.metrics.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
