package tests

import (
	"context"
	"sync"
	"testing"

	"friendlyeats/agg-svc/internal/service"
	"friendlyeats/internal/docstore"
	"friendlyeats/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// triggerSink plays the platform trigger runtime: every committed change is
// dispatched synchronously, including the changes the updaters cause.
type triggerSink struct {
	dispatcher service.ChangeDispatcher
	mu         sync.Mutex
	errs       []error
	seen       int
}

func (s *triggerSink) Publish(ctx context.Context, changes []docstore.Change) error {
	for _, change := range changes {
		s.mu.Lock()
		s.seen++
		s.mu.Unlock()
		if err := s.dispatcher.Dispatch(ctx, change); err != nil {
			s.mu.Lock()
			s.errs = append(s.errs, err)
			s.mu.Unlock()
		}
	}
	return nil
}

func newPipeline(t *testing.T) (*docstore.MemoryStore, *triggerSink) {
	t.Helper()
	sink := &triggerSink{}
	store := docstore.NewMemoryStore(docstore.Options{MaxAttempts: 200, Sink: sink})
	sink.dispatcher = service.NewDispatcher(
		service.NewRatingAggregator(store, nil),
		service.NewRenamePropagator(store),
		service.NewYumDeduplicator(store),
	)
	return store, sink
}

func TestPipeline_EndToEnd(t *testing.T) {
	ctx := context.Background()
	store, sink := newPipeline(t)
	seedRestaurant(t, store, domain.Restaurant{ID: "r1", Name: "A", Price: 2})

	ratings := []int{3, 3, 5}
	for i, rating := range ratings {
		review := newReview(string(rune('1'+i)), "r1", rating)
		review.RestaurantName = "A"
		seedReview(t, store, review)
	}
	restaurant := loadRestaurant(t, store, "r1")
	assert.Equal(t, 3, restaurant.ReviewCount)
	assert.InDelta(t, 11.0/3, restaurant.AverageRating, 1e-9)

	// Owner edit of the name fans out to every review, and the aggregate
	// survives the review updates it causes.
	require.NoError(t, store.Update(ctx, domain.RestaurantRef("r1"), map[string]interface{}{domain.FieldName: "B"}))
	for _, id := range []string{"1", "2", "3"} {
		assert.Equal(t, "B", loadReview(t, store, id).RestaurantName)
	}
	restaurant = loadRestaurant(t, store, "r1")
	assert.Equal(t, "B", restaurant.Name)
	assert.Equal(t, 3, restaurant.ReviewCount)

	// The same user liking twice counts once.
	for _, id := range []string{"p1", "p2"} {
		pending := domain.PendingYum{ID: id, ReviewID: "1", UserID: "u9", UserName: "Zed"}
		require.NoError(t, store.Set(ctx, domain.PendingYumRef(id), pending.Fields()))
	}
	assert.Equal(t, 1, loadReview(t, store, "1").YumCount)
	pendings, err := store.Query(ctx, domain.PendingYumsCollection)
	require.NoError(t, err)
	assert.Empty(t, pendings)

	// A client rating edit followed by a delete.
	require.NoError(t, store.Update(ctx, domain.ReviewRef("3"), map[string]interface{}{domain.FieldRating: 1}))
	restaurant = loadRestaurant(t, store, "r1")
	assert.InDelta(t, 7.0/3, restaurant.AverageRating, 1e-9)

	require.NoError(t, store.Delete(ctx, domain.ReviewRef("2")))
	restaurant = loadRestaurant(t, store, "r1")
	assert.Equal(t, 2, restaurant.ReviewCount)
	assert.InDelta(t, 2.0, restaurant.AverageRating, 1e-9)

	assertInvariant(t, store, "r1")
	assert.Empty(t, sink.errs)
}

func TestPipeline_PendingYumForMissingReview(t *testing.T) {
	ctx := context.Background()
	store, sink := newPipeline(t)

	pending := domain.PendingYum{ID: "p1", ReviewID: "ghost", UserID: "u1"}
	require.NoError(t, store.Set(ctx, domain.PendingYumRef("p1"), pending.Fields()))

	_, err := store.Get(ctx, domain.PendingYumRef("p1"))
	assert.ErrorIs(t, err, docstore.ErrNotFound)
	require.Len(t, sink.errs, 1)
	assert.ErrorIs(t, sink.errs[0], service.ErrReviewMissing)
}

func TestPipeline_ConcurrentClients(t *testing.T) {
	ctx := context.Background()
	store, sink := newPipeline(t)
	seedRestaurant(t, store, domain.Restaurant{ID: "r1", Name: "A"})

	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		review := newReview(string(rune('a'+i)), "r1", i%5+1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Set(ctx, domain.ReviewRef(review.ID), review.Fields()))
		}()
	}
	wg.Wait()

	assertInvariant(t, store, "r1")
	assert.Empty(t, sink.errs)
	assert.Equal(t, 12, loadRestaurant(t, store, "r1").ReviewCount)
}

func assertInvariant(t *testing.T, store docstore.Store, restaurantID string) {
	t.Helper()
	docs, err := store.Query(context.Background(), domain.ReviewsCollection, docstore.Where(domain.FieldRestaurantID, restaurantID))
	require.NoError(t, err)
	sum := 0
	for _, doc := range docs {
		review, err := domain.DecodeReview(doc.Ref.ID, doc.Data)
		require.NoError(t, err)
		sum += review.Rating
	}
	restaurant := loadRestaurant(t, store, restaurantID)
	assert.Equal(t, len(docs), restaurant.ReviewCount)
	assert.InDelta(t, float64(sum), restaurant.AverageRating*float64(restaurant.ReviewCount), 1e-9)
}
