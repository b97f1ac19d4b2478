package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"friendlyeats/internal/docstore"
	"friendlyeats/internal/domain"
	ratedomain "friendlyeats/rate-svc/internal/domain"

	"github.com/google/uuid"
)

type ReviewService struct {
	store docstore.Store
	newID func() string
	now   func() time.Time
}

func NewReviewService(store docstore.Store) *ReviewService {
	return &ReviewService{store: store, newID: uuid.NewString, now: time.Now}
}

// NewReviewServiceWithClock is NewReviewService with fixed id and time
// sources.
func NewReviewServiceWithClock(store docstore.Store, newID func() string, now func() time.Time) *ReviewService {
	return &ReviewService{store: store, newID: newID, now: now}
}

// Create writes a review carrying the restaurant's current name. The
// restaurant's aggregate is updated asynchronously by agg-svc.
func (s *ReviewService) Create(ctx context.Context, restaurantID string, req ratedomain.CreateReviewRequest) (domain.Review, error) {
	if err := ratedomain.Validate.Struct(req); err != nil {
		return domain.Review{}, err
	}

	doc, err := s.store.Get(ctx, domain.RestaurantRef(restaurantID))
	if errors.Is(err, docstore.ErrNotFound) {
		return domain.Review{}, ErrRestaurantNotFound
	}
	if err != nil {
		return domain.Review{}, err
	}
	restaurant, err := domain.DecodeRestaurant(restaurantID, doc.Data)
	if err != nil {
		return domain.Review{}, err
	}

	review := domain.Review{
		ID:             s.newID(),
		RestaurantID:   restaurantID,
		RestaurantName: restaurant.Name,
		Rating:         req.Rating,
		UserInfo: domain.UserInfo{
			UserID:   req.UserInfo.UserID,
			Name:     req.UserInfo.Name,
			PhotoURL: req.UserInfo.PhotoURL,
		},
		Text: req.Text,
		Date: s.now().UTC(),
	}
	if err := s.store.Set(ctx, domain.ReviewRef(review.ID), review.Fields()); err != nil {
		return domain.Review{}, fmt.Errorf("failed to create review: %w", err)
	}

	log.Printf("Created review %s for restaurant %s", review.ID, restaurantID)
	return review, nil
}

// ListForRestaurant returns reviews newest first, skipping documents that
// do not decode.
func (s *ReviewService) ListForRestaurant(ctx context.Context, restaurantID string) ([]domain.Review, error) {
	docs, err := s.store.Query(ctx, domain.ReviewsCollection, docstore.Where(domain.FieldRestaurantID, restaurantID))
	if err != nil {
		return nil, err
	}
	reviews := make([]domain.Review, 0, len(docs))
	for _, doc := range docs {
		review, err := domain.DecodeReview(doc.Ref.ID, doc.Data)
		if err != nil {
			log.Printf("Skipping review: %v", err)
			continue
		}
		reviews = append(reviews, review)
	}
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].Date.After(reviews[j].Date)
	})
	return reviews, nil
}

func (s *ReviewService) Update(ctx context.Context, id string, req ratedomain.UpdateReviewRequest) (domain.Review, error) {
	if err := ratedomain.Validate.Struct(req); err != nil {
		return domain.Review{}, err
	}
	ref := domain.ReviewRef(id)
	err := s.store.Update(ctx, ref, map[string]interface{}{
		domain.FieldRating: req.Rating,
		domain.FieldText:   req.Text,
	})
	if errors.Is(err, docstore.ErrNotFound) {
		return domain.Review{}, ErrReviewNotFound
	}
	if err != nil {
		return domain.Review{}, fmt.Errorf("failed to update review %s: %w", id, err)
	}

	doc, err := s.store.Get(ctx, ref)
	if err != nil {
		return domain.Review{}, err
	}
	return domain.DecodeReview(id, doc.Data)
}

func (s *ReviewService) Delete(ctx context.Context, id string) error {
	ref := domain.ReviewRef(id)
	if _, err := s.store.Get(ctx, ref); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrReviewNotFound
		}
		return err
	}
	return s.store.Delete(ctx, ref)
}

// RequestYum queues a like for agg-svc to apply. Duplicates are accepted
// here and collapsed there.
func (s *ReviewService) RequestYum(ctx context.Context, reviewID string, req ratedomain.YumRequest) (domain.PendingYum, error) {
	if err := ratedomain.Validate.Struct(req); err != nil {
		return domain.PendingYum{}, err
	}
	if _, err := s.store.Get(ctx, domain.ReviewRef(reviewID)); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return domain.PendingYum{}, ErrReviewNotFound
		}
		return domain.PendingYum{}, err
	}

	pending := domain.PendingYum{
		ID:       s.newID(),
		ReviewID: reviewID,
		UserID:   req.UserID,
		UserName: req.UserName,
	}
	if err := s.store.Set(ctx, domain.PendingYumRef(pending.ID), pending.Fields()); err != nil {
		return domain.PendingYum{}, fmt.Errorf("failed to queue yum: %w", err)
	}
	return pending, nil
}
