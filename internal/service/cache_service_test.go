package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheServiceRoundTrip(t *testing.T) {
	repo := newCacheRepoStub()
	metrics := NewMetricsService()
	svc := NewCacheService(repo, metrics, 0, nil, true)
	ctx := context.Background()

	var dest []string
	assert.False(t, svc.Get(ctx, "k", &dest))

	svc.Set(ctx, "k", []string{"a", "b"}, 0)
	require.True(t, svc.Get(ctx, "k", &dest))
	assert.Equal(t, []string{"a", "b"}, dest)

	svc.Invalidate(ctx, "k")
	assert.False(t, svc.Get(ctx, "k", &dest))
	assert.Equal(t, []string{"k"}, repo.deleted)

	assert.Equal(t, 1.0, counterValue(t, metrics, "cache_lookups_total", "hit"))
	assert.Equal(t, 2.0, counterValue(t, metrics, "cache_lookups_total", "miss"))
}

// counterValue reads a counter from the registry by name and first label value.
func counterValue(t *testing.T, metrics *MetricsService, name, label string) float64 {
	t.Helper()
	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := metric.GetLabel()
			if label == "" || (len(labels) > 0 && labels[0].GetValue() == label) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestCacheServiceSoftFailure(t *testing.T) {
	repo := newCacheRepoStub()
	repo.getErr = errors.New("connection refused")
	svc := NewCacheService(repo, nil, time.Minute, nil, true)

	var dest map[string]int
	assert.False(t, svc.Get(context.Background(), "k", &dest))
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := newCacheRepoStub()
	svc := NewCacheService(repo, nil, time.Minute, nil, false)
	ctx := context.Background()

	svc.Set(ctx, "k", 1, 0)
	assert.Empty(t, repo.items)
	var dest int
	assert.False(t, svc.Get(ctx, "k", &dest))

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
	nilSvc.Invalidate(ctx, "k")
	assert.False(t, NewCacheService(nil, nil, 0, nil, true).Enabled())
}
