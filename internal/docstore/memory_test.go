package docstore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu      sync.Mutex
	changes []Change
	err     error
}

func (r *recordingSink) Publish(_ context.Context, changes []Change) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, changes...)
	return r.err
}

func TestMemoryStore_GetSetUpdateDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(Options{})
	ref := Ref{Collection: "restaurants", ID: "r1"}

	_, err := store.Get(ctx, ref)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, ref, map[string]interface{}{"name": "A", "price": 2}))
	require.NoError(t, store.Update(ctx, ref, map[string]interface{}{"name": "B"}))

	doc, err := store.Get(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "B", doc.Data["name"])
	assert.Equal(t, 2, doc.Data["price"])
	assert.Positive(t, doc.Version)

	require.NoError(t, store.Delete(ctx, ref))
	_, err = store.Get(ctx, ref)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.Update(ctx, ref, map[string]interface{}{"name": "C"}), ErrNotFound)
	assert.NoError(t, store.Delete(ctx, ref), "deleting a missing document is a no-op")
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(Options{})
	ref := Ref{Collection: "reviews", ID: "v1"}
	data := map[string]interface{}{"userInfo": map[string]interface{}{"name": "Ann"}}
	require.NoError(t, store.Set(ctx, ref, data))

	data["userInfo"].(map[string]interface{})["name"] = "Mutated"
	doc, err := store.Get(ctx, ref)
	require.NoError(t, err)
	doc.Data["extra"] = true

	again, err := store.Get(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "Ann", again.Data["userInfo"].(map[string]interface{})["name"])
	assert.NotContains(t, again.Data, "extra")
}

func TestMemoryStore_Query(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(Options{})
	require.NoError(t, store.Set(ctx, Ref{"reviews", "b"}, map[string]interface{}{"restaurantID": "r1", "rating": 4}))
	require.NoError(t, store.Set(ctx, Ref{"reviews", "a"}, map[string]interface{}{"restaurantID": "r1", "rating": 5}))
	require.NoError(t, store.Set(ctx, Ref{"reviews", "c"}, map[string]interface{}{"restaurantID": "r2", "rating": 4}))
	require.NoError(t, store.Set(ctx, Ref{"reviews/a/yums", "u1"}, map[string]interface{}{"restaurantID": "r1"}))

	docs, err := store.Query(ctx, "reviews", Where("restaurantID", "r1"))
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].Ref.ID)
	assert.Equal(t, "b", docs[1].Ref.ID)

	docs, err = store.Query(ctx, "reviews", Where("rating", 4.0))
	require.NoError(t, err)
	assert.Len(t, docs, 2, "numeric filters match across int and float64")
}

func TestMemoryStore_TransactionRetriesOnConflict(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(Options{MaxAttempts: 3})
	ref := Ref{Collection: "counters", ID: "c1"}
	require.NoError(t, store.Set(ctx, ref, map[string]interface{}{"n": 0}))

	attempts := 0
	err := store.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
		attempts++
		doc, err := tx.Get(ref)
		if err != nil {
			return err
		}
		if attempts == 1 {
			// A competing writer commits between the read and our commit.
			require.NoError(t, store.Set(ctx, ref, map[string]interface{}{"n": 10}))
		}
		return tx.Update(ref, map[string]interface{}{"n": doc.Data["n"].(int) + 1})
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)

	doc, err := store.Get(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, 11, doc.Data["n"])
}

func TestMemoryStore_TransactionConflictOnCreation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(Options{MaxAttempts: 2})
	ref := Ref{Collection: "markers", ID: "m1"}

	attempts := 0
	err := store.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
		attempts++
		_, err := tx.Get(ref)
		if !errors.Is(err, ErrNotFound) {
			return nil
		}
		if attempts == 1 {
			require.NoError(t, store.Set(ctx, ref, map[string]interface{}{"by": "other"}))
		}
		return tx.Set(ref, map[string]interface{}{"by": "tx"})
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)

	doc, err := store.Get(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "other", doc.Data["by"])
}

func TestMemoryStore_TransactionBudgetExhausted(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(Options{MaxAttempts: 3})
	ref := Ref{Collection: "counters", ID: "c1"}
	require.NoError(t, store.Set(ctx, ref, map[string]interface{}{"n": 0}))

	attempts := 0
	err := store.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
		attempts++
		if _, err := tx.Get(ref); err != nil {
			return err
		}
		require.NoError(t, store.Update(ctx, ref, map[string]interface{}{"n": attempts}))
		return tx.Update(ref, map[string]interface{}{"n": -1})
	})
	assert.ErrorIs(t, err, ErrTooManyAttempts)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 3, attempts)

	doc, err := store.Get(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, 3, doc.Data["n"], "no transactional write is applied")
}

func TestMemoryStore_TransactionAbortsOnFunctionError(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(Options{})
	ref := Ref{Collection: "counters", ID: "c1"}
	boom := errors.New("boom")

	attempts := 0
	err := store.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
		attempts++
		require.NoError(t, tx.Set(ref, map[string]interface{}{"n": 1}))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, attempts)
	_, err = store.Get(ctx, ref)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_TransactionUpdateMissingAborts(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(Options{})
	other := Ref{Collection: "counters", ID: "other"}

	err := store.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
		require.NoError(t, tx.Set(other, map[string]interface{}{"n": 1}))
		return tx.Update(Ref{Collection: "counters", ID: "missing"}, map[string]interface{}{"n": 1})
	})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(ctx, other)
	assert.ErrorIs(t, err, ErrNotFound, "commit is all or nothing")
}

func TestMemoryStore_ConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(Options{MaxAttempts: 100})
	ref := Ref{Collection: "counters", ID: "c1"}
	require.NoError(t, store.Set(ctx, ref, map[string]interface{}{"n": 0}))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
				doc, err := tx.Get(ref)
				if err != nil {
					return err
				}
				return tx.Update(ref, map[string]interface{}{"n": doc.Data["n"].(int) + 1})
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	doc, err := store.Get(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, 20, doc.Data["n"])
}

func TestMemoryStore_BatchAndChanges(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{}
	store := NewMemoryStore(Options{Sink: sink})
	a := Ref{Collection: "reviews", ID: "a"}
	b := Ref{Collection: "reviews", ID: "b"}
	require.NoError(t, store.Set(ctx, a, map[string]interface{}{"restaurantName": "Old"}))

	batch := store.Batch()
	batch.Update(a, map[string]interface{}{"restaurantName": "New"})
	batch.Set(b, map[string]interface{}{"restaurantName": "New"})
	batch.Delete(Ref{Collection: "reviews", ID: "ghost"})
	assert.Equal(t, 3, batch.Len())
	require.NoError(t, batch.Commit(ctx))

	// The initial Set, then one change per document touched by the batch;
	// deleting a missing document emits nothing.
	require.Len(t, sink.changes, 3)
	assert.Equal(t, ChangeCreated, sink.changes[0].Kind())
	assert.Equal(t, ChangeUpdated, sink.changes[1].Kind())
	assert.Equal(t, "Old", sink.changes[1].Before["restaurantName"])
	assert.Equal(t, "New", sink.changes[1].After["restaurantName"])
	assert.Equal(t, ChangeCreated, sink.changes[2].Kind())
	assert.Equal(t, "b", sink.changes[2].ID)
}

func TestMemoryStore_SinkErrorDoesNotFailWrite(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(Options{Sink: &recordingSink{err: errors.New("broker down")}})
	ref := Ref{Collection: "restaurants", ID: "r1"}
	require.NoError(t, store.Set(ctx, ref, map[string]interface{}{"name": "A"}))
	_, err := store.Get(ctx, ref)
	assert.NoError(t, err)
}

func TestMemoryStore_BatchLimit(t *testing.T) {
	store := NewMemoryStore(Options{})
	batch := store.Batch()
	for i := 0; i <= MaxBatchWrites; i++ {
		batch.Delete(Ref{Collection: "reviews", ID: "x"})
	}
	assert.ErrorIs(t, batch.Commit(context.Background()), ErrBatchTooLarge)
}

func TestRef_Validate(t *testing.T) {
	tests := []struct {
		name  string
		ref   Ref
		valid bool
	}{
		{name: "top level", ref: Ref{"reviews", "a"}, valid: true},
		{name: "subcollection", ref: Ref{"reviews/a/yums", "u1"}, valid: true},
		{name: "document as collection", ref: Ref{"reviews/a", "u1"}},
		{name: "empty id", ref: Ref{"reviews", ""}},
		{name: "slash in id", ref: Ref{"reviews", "a/b"}},
	}
	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			err := testCase.ref.Validate()
			if testCase.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidRef)
			}
		})
	}

	ref, err := ParsePath("reviews/a/yums/u1")
	require.NoError(t, err)
	assert.Equal(t, Ref{Collection: "reviews/a/yums", ID: "u1"}, ref)
}
