package catalog_service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"trivia-token-service/database"
	"trivia-token-service/metrics"
	model "trivia-token-service/models"
	"trivia-token-service/registry"
	"trivia-token-service/service/common_service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(t *testing.T, window time.Duration) (*CatalogService, database.Database, *clock, *metrics.Memory) {
	t.Helper()
	db, err := database.NewPebbleDatabase(&database.PebbleConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clk := &clock{now: time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)}
	sink := metrics.NewMemory()
	svc := NewCatalogService(db, window, common_service.Options{Metrics: sink, Now: clk.Now})
	return svc, db, clk, sink
}

func seed(t *testing.T, svc *CatalogService, category string, n int) {
	t.Helper()
	items := make([]*model.CatalogItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, &model.CatalogItem{ID: fmt.Sprintf("%s-%d", category, i), CategoryID: category})
	}
	require.NoError(t, svc.Seed(context.Background(), items))
}

func TestReserveConcurrentPoolSmallerThanCallers(t *testing.T) {
	svc, _, _, sink := newTestService(t, 0)
	const pool, callers = 7, 32
	seed(t, svc, "geography", pool)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		seen      = map[string]bool{}
		exhausted int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			item, err := svc.Reserve(context.Background(), "geography")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				assert.ErrorIs(t, err, ErrCategoryExhausted)
				exhausted++
				return
			}
			assert.False(t, seen[item.ID], "item %s returned twice", item.ID)
			seen[item.ID] = true
		}()
	}
	wg.Wait()

	assert.Len(t, seen, pool)
	assert.Equal(t, callers-pool, exhausted)
	assert.Equal(t, pool, sink.Count(metrics.CatalogReservations, metrics.Labels{"category": "geography", "result": "reserved"}))
	assert.Equal(t, callers-pool, sink.Count(metrics.CatalogReservations, metrics.Labels{"category": "geography", "result": "exhausted"}))
}

func TestReserveUnknownCategory(t *testing.T) {
	svc, _, _, _ := newTestService(t, 0)
	_, err := svc.Reserve(context.Background(), "cooking")
	assert.ErrorIs(t, err, registry.ErrUnknownCode)

	err = svc.Seed(context.Background(), []*model.CatalogItem{{CategoryID: "cooking"}})
	assert.ErrorIs(t, err, registry.ErrUnknownCode)
}

func TestReleaseAndMarkMinted(t *testing.T) {
	svc, _, _, _ := newTestService(t, 0)
	ctx := context.Background()
	seed(t, svc, "music", 1)

	item, err := svc.Reserve(ctx, "music")
	require.NoError(t, err)
	require.NoError(t, svc.Release(ctx, item.ID))
	assert.ErrorIs(t, svc.Release(ctx, item.ID), database.ErrInvalidState)

	n, err := svc.Availability(ctx, "music")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	item, err = svc.Reserve(ctx, "music")
	require.NoError(t, err)
	require.NoError(t, svc.MarkMinted(ctx, item.ID))
	assert.ErrorIs(t, svc.Release(ctx, item.ID), database.ErrInvalidState)

	got, err := svc.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CatalogMinted, got.State())
	assert.NotNil(t, got.MintedAt)
}

func TestReleaseStaleSkipsInFlightMints(t *testing.T) {
	svc, db, clk, _ := newTestService(t, 30*time.Minute)
	ctx := context.Background()
	seed(t, svc, "nature", 3)

	a, err := svc.Reserve(ctx, "nature")
	require.NoError(t, err)
	b, err := svc.Reserve(ctx, "nature")
	require.NoError(t, err)
	require.NoError(t, db.CreateMintOperation(&model.MintOperation{
		ID: "m1", EligibilityID: "e1", CatalogItemID: b.ID, Status: model.MintSubmitted, CreatedAt: clk.Now(),
	}))

	n, err := svc.ReleaseStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "nothing is older than the window yet")

	clk.Advance(31 * time.Minute)
	c, err := svc.Reserve(ctx, "nature")
	require.NoError(t, err)

	n, err = svc.ReleaseStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	for id, want := range map[string]string{a.ID: model.CatalogAvailable, b.ID: model.CatalogReserved, c.ID: model.CatalogReserved} {
		item, err := svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, item.State(), id)
	}
}

func TestReleaseStaleDisabled(t *testing.T) {
	svc, _, clk, _ := newTestService(t, 0)
	seed(t, svc, "art", 1)
	_, err := svc.Reserve(context.Background(), "art")
	require.NoError(t, err)
	clk.Advance(24 * time.Hour)

	n, err := svc.ReleaseStale(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
