package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"friendlyeats/internal/docstore"
	"friendlyeats/internal/domain"
)

// Aggregate is the derived rating state held on a restaurant document.
type Aggregate struct {
	AverageRating float64
	ReviewCount   int
}

// RatingTransition describes one review write as seen by its restaurant.
// Added is the rating entering the aggregate and Removed the one leaving
// it; zero means none.
type RatingTransition struct {
	RestaurantID string
	Added        int
	Removed      int
}

// NextAggregate folds a transition into the current aggregate without
// rescanning reviews.
func NextAggregate(current Aggregate, t RatingTransition) (Aggregate, error) {
	sum := current.AverageRating * float64(current.ReviewCount)

	switch {
	case t.Added != 0 && t.Removed == 0:
		count := current.ReviewCount + 1
		return Aggregate{AverageRating: (sum + float64(t.Added)) / float64(count), ReviewCount: count}, nil

	case t.Added != 0 && t.Removed != 0:
		if current.ReviewCount == 0 {
			return Aggregate{}, fmt.Errorf("%w: replacing a rating on restaurant %s with no reviews",
				ErrInvalidAggregate, t.RestaurantID)
		}
		delta := float64(t.Removed - t.Added)
		return Aggregate{AverageRating: (sum - delta) / float64(current.ReviewCount), ReviewCount: current.ReviewCount}, nil

	case t.Removed != 0:
		if current.ReviewCount == 0 {
			return Aggregate{}, fmt.Errorf("%w: removing a rating from restaurant %s with no reviews",
				ErrInvalidAggregate, t.RestaurantID)
		}
		count := current.ReviewCount - 1
		if count == 0 {
			return Aggregate{}, nil
		}
		return Aggregate{AverageRating: (sum - float64(t.Removed)) / float64(count), ReviewCount: count}, nil

	default:
		return current, nil
	}
}

type RatingAggregator struct {
	Store docstore.Store
	Stats StatsPublisher
}

func NewRatingAggregator(store docstore.Store, stats StatsPublisher) *RatingAggregator {
	return &RatingAggregator{Store: store, Stats: stats}
}

// HandleReviewWrite keeps a restaurant's averageRating and reviewCount in
// step with a write to one of its reviews. before is nil for a create and
// after is nil for a delete.
func (a *RatingAggregator) HandleReviewWrite(ctx context.Context, reviewID string, before, after map[string]interface{}) error {
	transition, ok, err := reviewTransition(reviewID, before, after)
	if err != nil || !ok {
		return err
	}

	ref := domain.RestaurantRef(transition.RestaurantID)
	var next Aggregate
	// Version of the restaurant the committed attempt read. Transactions on
	// one restaurant are serialized, so it orders their mirror writes.
	var version int64
	err = a.Store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		doc, err := tx.Get(ref)
		if errors.Is(err, docstore.ErrNotFound) {
			return fmt.Errorf("%w: %s referenced by review %s", ErrRestaurantMissing, transition.RestaurantID, reviewID)
		}
		if err != nil {
			return err
		}

		restaurant, err := domain.DecodeRestaurant(ref.ID, doc.Data)
		if err != nil {
			return err
		}
		version = doc.Version

		next, err = NextAggregate(Aggregate{
			AverageRating: restaurant.AverageRating,
			ReviewCount:   restaurant.ReviewCount,
		}, transition)
		if err != nil {
			return err
		}

		return tx.Update(ref, map[string]interface{}{
			domain.FieldAverageRating: next.AverageRating,
			domain.FieldReviewCount:   next.ReviewCount,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to update rating of restaurant %s from review %s: %w", transition.RestaurantID, reviewID, err)
	}

	log.Printf("Restaurant %s now has %d reviews averaging %.3f", transition.RestaurantID, next.ReviewCount, next.AverageRating)

	if a.Stats != nil {
		if err := a.Stats.PublishStats(ctx, transition.RestaurantID, next.AverageRating, next.ReviewCount, version); err != nil {
			log.Printf("Error mirroring stats for restaurant %s: %v", transition.RestaurantID, err)
		}
	}
	return nil
}

// reviewTransition reports ok=false when the write leaves the aggregate
// untouched.
func reviewTransition(reviewID string, before, after map[string]interface{}) (RatingTransition, bool, error) {
	var prev, next *domain.Review
	if before != nil {
		review, err := domain.DecodeReview(reviewID, before)
		if err != nil {
			return RatingTransition{}, false, err
		}
		prev = &review
	}
	if after != nil {
		review, err := domain.DecodeReview(reviewID, after)
		if err != nil {
			return RatingTransition{}, false, err
		}
		next = &review
	}

	switch {
	case prev == nil && next == nil:
		return RatingTransition{}, false, nil
	case prev == nil:
		return RatingTransition{RestaurantID: next.RestaurantID, Added: next.Rating}, true, nil
	case next == nil:
		return RatingTransition{RestaurantID: prev.RestaurantID, Removed: prev.Rating}, true, nil
	case prev.RestaurantID != next.RestaurantID:
		return RatingTransition{}, false, fmt.Errorf("%w: review %s moved from %s to %s",
			ErrRestaurantChanged, reviewID, prev.RestaurantID, next.RestaurantID)
	case prev.Rating == next.Rating:
		return RatingTransition{}, false, nil
	default:
		return RatingTransition{RestaurantID: next.RestaurantID, Added: next.Rating, Removed: prev.Rating}, true, nil
	}
}
