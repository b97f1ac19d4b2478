package service

import (
	"context"
	"errors"
	"fmt"

	"friendlyeats/internal/docstore"
	"friendlyeats/internal/domain"
	ratedomain "friendlyeats/rate-svc/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrReviewNotFound     = errors.New("review not found")
)

type RestaurantService struct {
	store docstore.Store
	newID func() string
}

func NewRestaurantService(store docstore.Store) *RestaurantService {
	return &RestaurantService{store: store, newID: uuid.NewString}
}

// Create starts the restaurant with an empty aggregate; agg-svc owns
// averageRating and reviewCount from then on.
func (s *RestaurantService) Create(ctx context.Context, req ratedomain.RestaurantRequest) (domain.Restaurant, error) {
	if err := ratedomain.Validate.Struct(req); err != nil {
		return domain.Restaurant{}, err
	}
	restaurant := domain.Restaurant{
		ID:       s.newID(),
		OwnerID:  req.OwnerID,
		Name:     req.Name,
		Category: req.Category,
		City:     req.City,
		Price:    req.Price,
		PhotoURL: req.PhotoURL,
	}
	if err := s.store.Set(ctx, domain.RestaurantRef(restaurant.ID), restaurant.Fields()); err != nil {
		return domain.Restaurant{}, fmt.Errorf("failed to create restaurant: %w", err)
	}
	return restaurant, nil
}

func (s *RestaurantService) Get(ctx context.Context, id string) (domain.Restaurant, error) {
	doc, err := s.store.Get(ctx, domain.RestaurantRef(id))
	if errors.Is(err, docstore.ErrNotFound) {
		return domain.Restaurant{}, ErrRestaurantNotFound
	}
	if err != nil {
		return domain.Restaurant{}, err
	}
	return domain.DecodeRestaurant(id, doc.Data)
}

// Update writes only the owner-editable fields, leaving the aggregate
// untouched.
func (s *RestaurantService) Update(ctx context.Context, id string, req ratedomain.RestaurantRequest) (domain.Restaurant, error) {
	if err := ratedomain.Validate.Struct(req); err != nil {
		return domain.Restaurant{}, err
	}
	err := s.store.Update(ctx, domain.RestaurantRef(id), map[string]interface{}{
		domain.FieldName:     req.Name,
		domain.FieldCategory: req.Category,
		domain.FieldCity:     req.City,
		domain.FieldPrice:    req.Price,
		domain.FieldPhotoURL: req.PhotoURL,
	})
	if errors.Is(err, docstore.ErrNotFound) {
		return domain.Restaurant{}, ErrRestaurantNotFound
	}
	if err != nil {
		return domain.Restaurant{}, fmt.Errorf("failed to update restaurant %s: %w", id, err)
	}
	return s.Get(ctx, id)
}
