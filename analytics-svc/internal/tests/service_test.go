package tests

import (
	"context"
	"testing"
	"time"

	"friendlyeats/analytics-svc/internal/domain"
	"friendlyeats/analytics-svc/internal/service"
	"friendlyeats/internal/docstore"
	shared "friendlyeats/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	mr    *miniredis.Miniredis
	rdb   *redis.Client
	store *docstore.MemoryStore
	svc   *service.AnalyticsService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	store := docstore.NewMemoryStore(docstore.Options{})
	return fixture{mr: mr, rdb: rdb, store: store, svc: service.NewAnalyticsService(store, rdb)}
}

func (f fixture) restaurant(t *testing.T, id, name string, count int, avg float64) {
	t.Helper()
	restaurant := shared.Restaurant{ID: id, Name: name, City: "SF", Price: 2, ReviewCount: count, AverageRating: avg}
	require.NoError(t, f.store.Set(context.Background(), shared.RestaurantRef(id), restaurant.Fields()))
}

func (f fixture) review(t *testing.T, id, restaurantID string, rating int) {
	t.Helper()
	review := shared.Review{
		ID:           id,
		RestaurantID: restaurantID,
		Rating:       rating,
		UserInfo:     shared.UserInfo{UserID: "u-" + id, Name: "User " + id},
		Date:         time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.store.Set(context.Background(), shared.ReviewRef(id), review.Fields()))
}

func TestAnalyticsService_Stats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.restaurant(t, "r1", "Deli", 2, 3.5)

	stats, err := f.svc.Stats(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.RestaurantStats{RestaurantID: "r1", AverageRating: 3.5, ReviewCount: 2, Source: domain.SourceStore}, stats)

	require.NoError(t, f.rdb.HSet(ctx, shared.StatsKey("r1"),
		shared.StatsAvgRating, "4", shared.StatsReviewCount, "3", shared.StatsUpdatedAt, "1700000000").Err())

	stats, err = f.svc.Stats(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.RestaurantStats{
		RestaurantID: "r1", AverageRating: 4, ReviewCount: 3, LastUpdated: 1700000000, Source: domain.SourceCache,
	}, stats)

	_, err = f.svc.Stats(ctx, "ghost")
	assert.ErrorIs(t, err, service.ErrRestaurantNotFound)
}

func TestAnalyticsService_StatsFallbacks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.restaurant(t, "r1", "Deli", 1, 5)

	// Unparseable hashes are treated as a cache miss.
	require.NoError(t, f.rdb.HSet(ctx, shared.StatsKey("r1"), shared.StatsAvgRating, "abc", shared.StatsReviewCount, "1").Err())
	stats, err := f.svc.Stats(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.SourceStore, stats.Source)

	f.mr.Close()
	stats, err = f.svc.Stats(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.SourceStore, stats.Source)
	assert.Equal(t, 5.0, stats.AverageRating)
}

func TestAnalyticsService_TopRated(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.restaurant(t, "r1", "Deli", 2, 4.5)
	f.restaurant(t, "r2", "Diner", 1, 3)
	f.restaurant(t, "r3", "Bistro", 4, 5)
	require.NoError(t, f.rdb.ZAdd(ctx, shared.TopRatedKey,
		redis.Z{Score: 4.5, Member: "r1"},
		redis.Z{Score: 3, Member: "r2"},
		redis.Z{Score: 5, Member: "r3"},
		redis.Z{Score: 4.9, Member: "deleted"},
	).Err())

	ranked, err := f.svc.TopRated(ctx, 3)
	require.NoError(t, err)
	require.Len(t, ranked, 2, "entries without a restaurant are dropped")
	assert.Equal(t, domain.RankedRestaurant{RestaurantID: "r3", Name: "Bistro", City: "SF", AverageRating: 5, ReviewCount: 4}, ranked[0])
	assert.Equal(t, "r1", ranked[1].RestaurantID)

	ranked, err = f.svc.TopRated(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, ranked, 3)
}

func TestAnalyticsService_TopRatedFromStore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.restaurant(t, "r1", "Deli", 2, 4.5)
	f.restaurant(t, "r2", "Diner", 1, 4.5)
	f.restaurant(t, "r3", "Bistro", 4, 5)
	f.restaurant(t, "r4", "Empty", 0, 0)

	// Empty leaderboard.
	ranked, err := f.svc.TopRated(ctx, 10)
	require.NoError(t, err)
	require.Len(t, ranked, 3, "unreviewed restaurants are not ranked")
	assert.Equal(t, []string{"r3", "r1", "r2"}, []string{ranked[0].RestaurantID, ranked[1].RestaurantID, ranked[2].RestaurantID})

	f.mr.Close()
	ranked, err = f.svc.TopRated(ctx, 1)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "r3", ranked[0].RestaurantID)
}

func TestAnalyticsService_RatingDistribution(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.restaurant(t, "r1", "Deli", 3, 4)
	f.restaurant(t, "r2", "Diner", 1, 1)
	f.review(t, "v1", "r1", 5)
	f.review(t, "v2", "r1", 5)
	f.review(t, "v3", "r1", 2)
	f.review(t, "v4", "r2", 1)
	require.NoError(t, f.store.Set(ctx, shared.ReviewRef("bad"), map[string]interface{}{
		shared.FieldRestaurantID: "r1", shared.FieldRating: 9,
	}))

	dist, err := f.svc.RatingDistribution(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"1": 0, "2": 1, "3": 0, "4": 0, "5": 2}, dist)

	dist, err = f.svc.GlobalRatingDistribution(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"1": 1, "2": 1, "3": 0, "4": 0, "5": 2}, dist)

	_, err = f.svc.RatingDistribution(ctx, "ghost")
	assert.ErrorIs(t, err, service.ErrRestaurantNotFound)
}

func TestAnalyticsService_Audit(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		count      int
		avg        float64
		ratings    []int
		consistent bool
	}{
		{name: "no reviews", count: 0, avg: 0, consistent: true},
		{name: "matching", count: 3, avg: 7.0 / 3, ratings: []int{1, 2, 4}, consistent: true},
		{name: "within tolerance", count: 3, avg: 7.0/3 + 1e-12, ratings: []int{1, 2, 4}, consistent: true},
		{name: "count drift", count: 4, avg: 7.0 / 3, ratings: []int{1, 2, 4}, consistent: false},
		{name: "average drift", count: 2, avg: 4, ratings: []int{3, 4}, consistent: false},
	}
	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			f := newFixture(t)
			f.restaurant(t, "r1", "Deli", testCase.count, testCase.avg)
			for i, rating := range testCase.ratings {
				f.review(t, string(rune('a'+i)), "r1", rating)
			}

			report, err := f.svc.Audit(ctx, "r1")
			require.NoError(t, err)
			assert.Equal(t, testCase.consistent, report.Consistent)
			assert.Equal(t, testCase.count, report.StoredCount)
			assert.Equal(t, len(testCase.ratings), report.ActualCount)
		})
	}
}

func TestAnalyticsService_AuditSkipsMalformed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.restaurant(t, "r1", "Deli", 1, 4)
	f.review(t, "v1", "r1", 4)
	require.NoError(t, f.store.Set(ctx, shared.ReviewRef("bad"), map[string]interface{}{shared.FieldRestaurantID: "r1"}))

	report, err := f.svc.Audit(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, report.Consistent)
	assert.Equal(t, 1, report.SkippedReviews)
	assert.Equal(t, 4.0, report.ActualAverage)

	_, err = f.svc.Audit(ctx, "ghost")
	assert.ErrorIs(t, err, service.ErrRestaurantNotFound)
}
