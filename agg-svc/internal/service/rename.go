package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"friendlyeats/internal/docstore"
	"friendlyeats/internal/domain"
)

// RenamePropagator copies a restaurant's name onto its reviews. The copies
// converge eventually; two renames racing on the same restaurant may leave
// either name behind.
type RenamePropagator struct {
	Store docstore.Store
}

func NewRenamePropagator(store docstore.Store) *RenamePropagator {
	return &RenamePropagator{Store: store}
}

// HandleRestaurantUpdate returns how many reviews were rewritten. On a
// failed batch the count covers the batches committed before it.
func (p *RenamePropagator) HandleRestaurantUpdate(ctx context.Context, restaurantID string, before, after map[string]interface{}) (int, error) {
	if before == nil || after == nil {
		return 0, nil
	}
	prev, err := domain.DecodeRestaurant(restaurantID, before)
	if err != nil {
		return 0, err
	}
	next, err := domain.DecodeRestaurant(restaurantID, after)
	if err != nil {
		return 0, err
	}
	if prev.Name == next.Name {
		return 0, nil
	}

	docs, err := p.Store.Query(ctx, domain.ReviewsCollection, docstore.Where(domain.FieldRestaurantID, restaurantID))
	if err != nil {
		return 0, fmt.Errorf("failed to list reviews of restaurant %s: %w", restaurantID, err)
	}

	updated := 0
	pending := make([]docstore.Ref, 0, docstore.MaxBatchWrites)
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		n, err := p.renameChunk(ctx, restaurantID, pending, next.Name)
		updated += n
		pending = pending[:0]
		return err
	}

	for _, doc := range docs {
		review, err := domain.DecodeReview(doc.Ref.ID, doc.Data)
		if err != nil {
			log.Printf("Skipping review during rename of restaurant %s: %v", restaurantID, err)
			continue
		}
		if review.RestaurantName == next.Name {
			continue
		}
		pending = append(pending, doc.Ref)
		if len(pending) >= docstore.MaxBatchWrites {
			if err := flush(); err != nil {
				return updated, err
			}
		}
	}
	if err := flush(); err != nil {
		return updated, err
	}

	log.Printf("Renamed restaurant %s from %q to %q on %d reviews", restaurantID, prev.Name, next.Name, updated)
	return updated, nil
}

// renameChunk commits one batch of renames. A review deleted since the
// query fails the whole batch, so the chunk is retried once without the
// reviews that are gone.
func (p *RenamePropagator) renameChunk(ctx context.Context, restaurantID string, refs []docstore.Ref, name string) (int, error) {
	err := p.commitRenames(ctx, refs, name)
	if errors.Is(err, docstore.ErrNotFound) {
		remaining := make([]docstore.Ref, 0, len(refs))
		for _, ref := range refs {
			_, getErr := p.Store.Get(ctx, ref)
			if errors.Is(getErr, docstore.ErrNotFound) {
				continue
			}
			if getErr != nil {
				return 0, fmt.Errorf("failed to recheck review %s: %w", ref.ID, getErr)
			}
			remaining = append(remaining, ref)
		}
		log.Printf("Retrying rename of restaurant %s without %d deleted reviews", restaurantID, len(refs)-len(remaining))
		refs = remaining
		err = p.commitRenames(ctx, refs, name)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to rename reviews of restaurant %s: %w", restaurantID, err)
	}
	return len(refs), nil
}

func (p *RenamePropagator) commitRenames(ctx context.Context, refs []docstore.Ref, name string) error {
	if len(refs) == 0 {
		return nil
	}
	batch := p.Store.Batch()
	for _, ref := range refs {
		batch.Update(ref, map[string]interface{}{domain.FieldRestaurantName: name})
	}
	return batch.Commit(ctx)
}
