package service

import (
	"context"
	"errors"
	"log"
	"math"
	"sort"
	"strconv"

	"friendlyeats/analytics-svc/internal/domain"
	"friendlyeats/internal/docstore"
	shared "friendlyeats/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultTopRatedLimit = 10
	MaxTopRatedLimit     = 100

	auditTolerance = 1e-9
)

var ErrRestaurantNotFound = errors.New("restaurant not found")

type AnalyticsService struct {
	store docstore.Store
	rdb   *redis.Client
}

func NewAnalyticsService(store docstore.Store, rdb *redis.Client) *AnalyticsService {
	return &AnalyticsService{store: store, rdb: rdb}
}

// Stats prefers the Redis mirror written by agg-svc and falls back to the
// restaurant document when the hash is missing or unreadable.
func (s *AnalyticsService) Stats(ctx context.Context, restaurantID string) (domain.RestaurantStats, error) {
	values, err := s.rdb.HGetAll(ctx, shared.StatsKey(restaurantID)).Result()
	if err != nil {
		log.Printf("Error reading stats cache for restaurant %s: %v", restaurantID, err)
	} else if stats, ok := statsFromHash(restaurantID, values); ok {
		return stats, nil
	}

	restaurant, err := s.restaurant(ctx, restaurantID)
	if err != nil {
		return domain.RestaurantStats{}, err
	}
	return domain.RestaurantStats{
		RestaurantID:  restaurantID,
		AverageRating: restaurant.AverageRating,
		ReviewCount:   restaurant.ReviewCount,
		Source:        domain.SourceStore,
	}, nil
}

func statsFromHash(restaurantID string, values map[string]string) (domain.RestaurantStats, bool) {
	if len(values) == 0 {
		return domain.RestaurantStats{}, false
	}
	avg, err := strconv.ParseFloat(values[shared.StatsAvgRating], 64)
	if err != nil {
		return domain.RestaurantStats{}, false
	}
	count, err := strconv.Atoi(values[shared.StatsReviewCount])
	if err != nil {
		return domain.RestaurantStats{}, false
	}
	updated, _ := strconv.ParseInt(values[shared.StatsUpdatedAt], 10, 64)
	return domain.RestaurantStats{
		RestaurantID:  restaurantID,
		AverageRating: avg,
		ReviewCount:   count,
		LastUpdated:   updated,
		Source:        domain.SourceCache,
	}, true
}

// TopRated reads the leaderboard, resolving names from the store. Entries
// whose restaurant no longer exists are dropped. An empty or unreachable
// leaderboard falls back to scanning restaurants.
func (s *AnalyticsService) TopRated(ctx context.Context, limit int) ([]domain.RankedRestaurant, error) {
	limit = clampLimit(limit)

	members, err := s.rdb.ZRevRangeWithScores(ctx, shared.TopRatedKey, 0, int64(limit-1)).Result()
	if err != nil || len(members) == 0 {
		if err != nil {
			log.Printf("Error reading leaderboard: %v", err)
		}
		return s.topRatedFromStore(ctx, limit)
	}

	ranked := make([]domain.RankedRestaurant, 0, len(members))
	for _, member := range members {
		id, ok := member.Member.(string)
		if !ok {
			continue
		}
		restaurant, err := s.restaurant(ctx, id)
		if err != nil {
			log.Printf("Skipping leaderboard entry %s: %v", id, err)
			continue
		}
		ranked = append(ranked, domain.RankedRestaurant{
			RestaurantID:  id,
			Name:          restaurant.Name,
			City:          restaurant.City,
			AverageRating: member.Score,
			ReviewCount:   restaurant.ReviewCount,
		})
	}
	return ranked, nil
}

func (s *AnalyticsService) topRatedFromStore(ctx context.Context, limit int) ([]domain.RankedRestaurant, error) {
	docs, err := s.store.Query(ctx, shared.RestaurantsCollection)
	if err != nil {
		return nil, err
	}
	ranked := make([]domain.RankedRestaurant, 0, len(docs))
	for _, doc := range docs {
		restaurant, err := shared.DecodeRestaurant(doc.Ref.ID, doc.Data)
		if err != nil || restaurant.ReviewCount == 0 {
			continue
		}
		ranked = append(ranked, domain.RankedRestaurant{
			RestaurantID:  restaurant.ID,
			Name:          restaurant.Name,
			City:          restaurant.City,
			AverageRating: restaurant.AverageRating,
			ReviewCount:   restaurant.ReviewCount,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].AverageRating != ranked[j].AverageRating {
			return ranked[i].AverageRating > ranked[j].AverageRating
		}
		return ranked[i].RestaurantID < ranked[j].RestaurantID
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultTopRatedLimit
	}
	if limit > MaxTopRatedLimit {
		return MaxTopRatedLimit
	}
	return limit
}

// RatingDistribution counts a restaurant's reviews by star, keyed "1" to
// "5". Malformed reviews are not counted.
func (s *AnalyticsService) RatingDistribution(ctx context.Context, restaurantID string) (map[string]int, error) {
	if _, err := s.restaurant(ctx, restaurantID); err != nil {
		return nil, err
	}
	reviews, _, err := s.reviews(ctx, docstore.Where(shared.FieldRestaurantID, restaurantID))
	if err != nil {
		return nil, err
	}
	return distribution(reviews), nil
}

func (s *AnalyticsService) GlobalRatingDistribution(ctx context.Context) (map[string]int, error) {
	reviews, _, err := s.reviews(ctx)
	if err != nil {
		return nil, err
	}
	return distribution(reviews), nil
}

func distribution(reviews []shared.Review) map[string]int {
	dist := make(map[string]int, shared.MaxRating)
	for star := shared.MinRating; star <= shared.MaxRating; star++ {
		dist[strconv.Itoa(star)] = 0
	}
	for _, review := range reviews {
		dist[strconv.Itoa(review.Rating)]++
	}
	return dist
}

// Audit recomputes the aggregate from the reviews collection. A restaurant
// is consistent once every review write has been applied exactly once.
func (s *AnalyticsService) Audit(ctx context.Context, restaurantID string) (domain.AuditReport, error) {
	restaurant, err := s.restaurant(ctx, restaurantID)
	if err != nil {
		return domain.AuditReport{}, err
	}
	reviews, skipped, err := s.reviews(ctx, docstore.Where(shared.FieldRestaurantID, restaurantID))
	if err != nil {
		return domain.AuditReport{}, err
	}

	var sum float64
	for _, review := range reviews {
		sum += float64(review.Rating)
	}
	report := domain.AuditReport{
		RestaurantID:   restaurantID,
		StoredCount:    restaurant.ReviewCount,
		StoredAverage:  restaurant.AverageRating,
		ActualCount:    len(reviews),
		SkippedReviews: skipped,
	}
	if len(reviews) > 0 {
		report.ActualAverage = sum / float64(len(reviews))
	}
	report.Consistent = report.StoredCount == report.ActualCount &&
		math.Abs(report.StoredAverage-report.ActualAverage) <= auditTolerance
	if !report.Consistent {
		log.Printf("Aggregate drift for restaurant %s: stored %d/%.4f, actual %d/%.4f",
			restaurantID, report.StoredCount, report.StoredAverage, report.ActualCount, report.ActualAverage)
	}
	return report, nil
}

func (s *AnalyticsService) restaurant(ctx context.Context, id string) (shared.Restaurant, error) {
	doc, err := s.store.Get(ctx, shared.RestaurantRef(id))
	if errors.Is(err, docstore.ErrNotFound) {
		return shared.Restaurant{}, ErrRestaurantNotFound
	}
	if err != nil {
		return shared.Restaurant{}, err
	}
	return shared.DecodeRestaurant(id, doc.Data)
}

func (s *AnalyticsService) reviews(ctx context.Context, filters ...docstore.Filter) ([]shared.Review, int, error) {
	docs, err := s.store.Query(ctx, shared.ReviewsCollection, filters...)
	if err != nil {
		return nil, 0, err
	}
	reviews := make([]shared.Review, 0, len(docs))
	skipped := 0
	for _, doc := range docs {
		review, err := shared.DecodeReview(doc.Ref.ID, doc.Data)
		if err != nil {
			skipped++
			continue
		}
		reviews = append(reviews, review)
	}
	return reviews, skipped, nil
}
