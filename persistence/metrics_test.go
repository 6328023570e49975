package persistence

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsBackendCountsOperations(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	flaky := &flakyBackend{MemoryBackend: NewMemoryBackend(), failures: 1}
	b := WithMetrics(flaky, m)
	ctx := context.Background()

	assert.Error(t, b.Write(ctx, CollectionPatients, "p1", []byte(`{}`)))
	require.NoError(t, b.Write(ctx, CollectionPatients, "p1", []byte(`{}`)))
	_, err := b.ReadAll(ctx, CollectionPatients)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("write", CollectionPatients, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("write", CollectionPatients, "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("read", CollectionPatients, "ok")))
}

func TestMetricsBackendApply(t *testing.T) {
	m := NewMetrics(nil)
	b := WithMetrics(NewMemoryBackend(), m)
	require.NoError(t, b.Apply(context.Background(), []Op{
		{Kind: OpWrite, Collection: CollectionUsers, ID: "u1", Data: []byte(`{}`)},
	}))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("batch", "", "ok")))

	plain := WithMetrics(plainBackend{NewMemoryBackend()}, m)
	assert.ErrorIs(t, plain.Apply(context.Background(), nil), ErrBatchUnsupported)
}
