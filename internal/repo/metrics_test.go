package repo_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/journeylog/internal/domain"
	"github.com/pkordes/journeylog/internal/repo"
)

func TestInstrument_CountsOutcomes(t *testing.T) {
	m := repo.NewStoreMetrics(prometheus.NewRegistry())
	s := repo.Instrument(repo.NewMemoryStore[domain.Journey](), "journeys", m)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, journeyFixture(1, "a")))
	_, err := s.GetByID(ctx, 1)
	require.NoError(t, err)
	_, err = s.GetByID(ctx, 2)
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.ErrorIs(t, s.Insert(ctx, journeyFixture(1, "dup")), domain.ErrConflict)

	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.Ops("journeys", "insert", domain.OutcomeOK)))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.Ops("journeys", "insert", domain.OutcomeConflict)))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.Ops("journeys", "get_by_id", domain.OutcomeOK)))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.Ops("journeys", "get_by_id", domain.OutcomeNotFound)))
}

func TestInstrument_NilMetricsIsPassthrough(t *testing.T) {
	inner := repo.NewMemoryStore[domain.Journey]()

	assert.Same(t, inner, repo.Instrument(inner, "journeys", nil))
}
