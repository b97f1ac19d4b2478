package service

import (
	"context"

	"friendlyeats/internal/domain"
	ratedomain "friendlyeats/rate-svc/internal/domain"
)

type RestaurantServiceInterface interface {
	Create(ctx context.Context, req ratedomain.RestaurantRequest) (domain.Restaurant, error)
	Get(ctx context.Context, id string) (domain.Restaurant, error)
	Update(ctx context.Context, id string, req ratedomain.RestaurantRequest) (domain.Restaurant, error)
}

type ReviewServiceInterface interface {
	Create(ctx context.Context, restaurantID string, req ratedomain.CreateReviewRequest) (domain.Review, error)
	ListForRestaurant(ctx context.Context, restaurantID string) ([]domain.Review, error)
	Update(ctx context.Context, id string, req ratedomain.UpdateReviewRequest) (domain.Review, error)
	Delete(ctx context.Context, id string) error
	RequestYum(ctx context.Context, reviewID string, req ratedomain.YumRequest) (domain.PendingYum, error)
}

type QRGenerator interface {
	Generate(restaurantID string) ([]byte, error)
}

var (
	_ RestaurantServiceInterface = (*RestaurantService)(nil)
	_ ReviewServiceInterface     = (*ReviewService)(nil)
	_ QRGenerator                = DefaultQRGenerator{}
)
