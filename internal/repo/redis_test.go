package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/journeylog/internal/domain"
	"github.com/pkordes/journeylog/internal/repo"
	"github.com/pkordes/journeylog/testutil"
)

func TestRedisStore_KeyLayout(t *testing.T) {
	rdb, srv := testutil.NewRedis(t)
	s := repo.NewRedisStore[domain.Journey](rdb, "jl", "journeys")
	ctx := context.Background()

	id, err := s.NextID(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Insert(ctx, journeyFixture(id, "Coast")))

	order, err := srv.List("jl:journeys:order")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, order)
	assert.Contains(t, srv.HGet("jl:journeys:records", "1"), `"name":"Coast"`)

	next, err := srv.Get("jl:journeys:next_id")
	require.NoError(t, err)
	assert.Equal(t, "1", next)
}

func TestRedisStore_DeleteRemovesFromOrder(t *testing.T) {
	rdb, srv := testutil.NewRedis(t)
	s := repo.NewRedisStore[domain.Journey](rdb, "jl", "journeys")
	ctx := context.Background()
	require.NoError(t, s.InsertAll(ctx, []domain.Journey{journeyFixture(1, "a"), journeyFixture(2, "b")}))

	require.NoError(t, s.Delete(ctx, 1))

	order, err := srv.List("jl:journeys:order")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, order)
}

func TestRedisStore_CollectionsAreIsolated(t *testing.T) {
	rdb, _ := testutil.NewRedis(t)
	a := repo.NewRedisStore[domain.Journey](rdb, "jl", "journeys")
	b := repo.NewRedisStore[domain.Journey](rdb, "jl", "archive")
	ctx := context.Background()

	require.NoError(t, a.Insert(ctx, journeyFixture(1, "a")))

	all, err := b.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
