package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"friendlyeats/internal/docstore"
	"friendlyeats/internal/domain"
)

type YumOutcome int

const (
	YumApplied YumOutcome = iota + 1
	YumDuplicate
	YumRejected
)

func (o YumOutcome) String() string {
	switch o {
	case YumApplied:
		return "applied"
	case YumDuplicate:
		return "duplicate"
	case YumRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// YumDeduplicator applies queued likes. The marker document at
// reviews/{reviewId}/yums/{userId} is the only record of who liked what.
type YumDeduplicator struct {
	Store docstore.Store
}

func NewYumDeduplicator(store docstore.Store) *YumDeduplicator {
	return &YumDeduplicator{Store: store}
}

// HandlePendingYum consumes one pending yum. The pending document is deleted
// on every path except a transaction failure, including when the review it
// names is missing.
func (d *YumDeduplicator) HandlePendingYum(ctx context.Context, pendingID string, data map[string]interface{}) (YumOutcome, error) {
	pendingRef := domain.PendingYumRef(pendingID)

	pending, err := domain.DecodePendingYum(pendingID, data)
	if err != nil {
		if delErr := d.Store.Delete(ctx, pendingRef); delErr != nil {
			return YumRejected, errors.Join(err, fmt.Errorf("failed to delete %s: %w", pendingRef, delErr))
		}
		return YumRejected, err
	}

	markerRef := domain.YumRef(pending.ReviewID, pending.UserID)
	reviewRef := domain.ReviewRef(pending.ReviewID)

	var (
		outcome   YumOutcome
		rejection error
	)
	err = d.Store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		rejection = nil

		_, err := tx.Get(markerRef)
		liked := err == nil
		if err != nil && !errors.Is(err, docstore.ErrNotFound) {
			return err
		}

		doc, err := tx.Get(reviewRef)
		if errors.Is(err, docstore.ErrNotFound) {
			outcome = YumRejected
			rejection = fmt.Errorf("%w: %s requested by pending yum %s for user %s",
				ErrReviewMissing, pending.ReviewID, pendingID, pending.UserID)
			return tx.Delete(pendingRef)
		}
		if err != nil {
			return err
		}

		if liked {
			outcome = YumDuplicate
			return tx.Delete(pendingRef)
		}

		review, err := domain.DecodeReview(reviewRef.ID, doc.Data)
		if err != nil {
			return err
		}

		outcome = YumApplied
		if err := tx.Update(reviewRef, map[string]interface{}{domain.FieldYumCount: review.YumCount + 1}); err != nil {
			return err
		}
		yum := domain.Yum{UserID: pending.UserID, Username: pending.UserName}
		if err := tx.Set(markerRef, yum.Fields()); err != nil {
			return err
		}
		return tx.Delete(pendingRef)
	})
	if err != nil {
		return YumRejected, fmt.Errorf("failed to apply pending yum %s: %w", pendingID, err)
	}
	if rejection != nil {
		return outcome, rejection
	}

	log.Printf("Pending yum %s by user %s on review %s: %s", pendingID, pending.UserID, pending.ReviewID, outcome)
	return outcome, nil
}
