package service

import (
	"context"

	"friendlyeats/internal/docstore"
	"friendlyeats/internal/domain"
)

// Dispatcher routes document changes to the updater owning them:
//
//	reviews/{id}      any write  -> Ratings
//	restaurants/{id}  update     -> Renames
//	pendingYums/{id}  create     -> Yums
//
// Everything else, the yum markers under reviews included, is ignored.
type Dispatcher struct {
	Ratings RatingHandler
	Renames RenameHandler
	Yums    YumHandler
}

func NewDispatcher(ratings RatingHandler, renames RenameHandler, yums YumHandler) *Dispatcher {
	return &Dispatcher{Ratings: ratings, Renames: renames, Yums: yums}
}

func (d *Dispatcher) Dispatch(ctx context.Context, change docstore.Change) error {
	switch {
	case change.Collection == domain.ReviewsCollection:
		return d.Ratings.HandleReviewWrite(ctx, change.ID, change.Before, change.After)

	case change.Collection == domain.RestaurantsCollection && change.Kind() == docstore.ChangeUpdated:
		_, err := d.Renames.HandleRestaurantUpdate(ctx, change.ID, change.Before, change.After)
		return err

	case change.Collection == domain.PendingYumsCollection && change.Kind() == docstore.ChangeCreated:
		_, err := d.Yums.HandlePendingYum(ctx, change.ID, change.After)
		return err

	default:
		return nil
	}
}
