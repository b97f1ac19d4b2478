package service

import (
	"context"

	"friendlyeats/agg-svc/internal/storage"
	"friendlyeats/internal/docstore"

	"github.com/segmentio/kafka-go"
)

type RatingHandler interface {
	HandleReviewWrite(ctx context.Context, reviewID string, before, after map[string]interface{}) error
}

type RenameHandler interface {
	HandleRestaurantUpdate(ctx context.Context, restaurantID string, before, after map[string]interface{}) (int, error)
}

type YumHandler interface {
	HandlePendingYum(ctx context.Context, pendingID string, data map[string]interface{}) (YumOutcome, error)
}

type ChangeDispatcher interface {
	Dispatch(ctx context.Context, change docstore.Change) error
}

// StatsPublisher mirrors committed aggregates to the read side.
type StatsPublisher interface {
	PublishStats(ctx context.Context, restaurantID string, averageRating float64, reviewCount int, version int64) error
}

type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var (
	_ RatingHandler    = (*RatingAggregator)(nil)
	_ RenameHandler    = (*RenamePropagator)(nil)
	_ YumHandler       = (*YumDeduplicator)(nil)
	_ ChangeDispatcher = (*Dispatcher)(nil)
	_ StatsPublisher   = (*storage.StatsCache)(nil)
	_ MessageReader    = (*kafka.Reader)(nil)
)
