package service

import (
	"context"

	"friendlyeats/analytics-svc/internal/domain"
)

type AnalyticsInterface interface {
	Stats(ctx context.Context, restaurantID string) (domain.RestaurantStats, error)
	TopRated(ctx context.Context, limit int) ([]domain.RankedRestaurant, error)
	RatingDistribution(ctx context.Context, restaurantID string) (map[string]int, error)
	GlobalRatingDistribution(ctx context.Context) (map[string]int, error)
	Audit(ctx context.Context, restaurantID string) (domain.AuditReport, error)
}

var _ AnalyticsInterface = (*AnalyticsService)(nil)
