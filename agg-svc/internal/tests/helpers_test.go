package tests

import (
	"context"
	"testing"
	"time"

	"friendlyeats/internal/docstore"
	"friendlyeats/internal/domain"

	"github.com/stretchr/testify/require"
)

func seedRestaurant(t *testing.T, store docstore.Store, restaurant domain.Restaurant) {
	t.Helper()
	require.NoError(t, store.Set(context.Background(), domain.RestaurantRef(restaurant.ID), restaurant.Fields()))
}

func seedReview(t *testing.T, store docstore.Store, review domain.Review) {
	t.Helper()
	require.NoError(t, store.Set(context.Background(), domain.ReviewRef(review.ID), review.Fields()))
}

func loadRestaurant(t *testing.T, store docstore.Store, id string) domain.Restaurant {
	t.Helper()
	doc, err := store.Get(context.Background(), domain.RestaurantRef(id))
	require.NoError(t, err)
	restaurant, err := domain.DecodeRestaurant(id, doc.Data)
	require.NoError(t, err)
	return restaurant
}

func loadReview(t *testing.T, store docstore.Store, id string) domain.Review {
	t.Helper()
	doc, err := store.Get(context.Background(), domain.ReviewRef(id))
	require.NoError(t, err)
	review, err := domain.DecodeReview(id, doc.Data)
	require.NoError(t, err)
	return review
}

func newReview(id, restaurantID string, rating int) domain.Review {
	return domain.Review{
		ID:             id,
		RestaurantID:   restaurantID,
		RestaurantName: "Deli",
		Rating:         rating,
		UserInfo:       domain.UserInfo{UserID: "u-" + id, Name: "User " + id},
		Text:           "review " + id,
		Date:           time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}
