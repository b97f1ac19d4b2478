package domain

const (
	SourceCache = "cache"
	SourceStore = "store"
)

type RestaurantStats struct {
	RestaurantID  string  `json:"restaurant_id"`
	AverageRating float64 `json:"avg_rating"`
	ReviewCount   int     `json:"review_count"`
	LastUpdated   int64   `json:"last_updated,omitempty"`
	Source        string  `json:"source"`
}

type RankedRestaurant struct {
	RestaurantID  string  `json:"restaurant_id"`
	Name          string  `json:"name"`
	City          string  `json:"city,omitempty"`
	AverageRating float64 `json:"avg_rating"`
	ReviewCount   int     `json:"review_count"`
}

// AuditReport compares a restaurant's stored aggregate with the one
// recomputed from its reviews.
type AuditReport struct {
	RestaurantID   string  `json:"restaurant_id"`
	StoredCount    int     `json:"stored_count"`
	StoredAverage  float64 `json:"stored_average"`
	ActualCount    int     `json:"actual_count"`
	ActualAverage  float64 `json:"actual_average"`
	SkippedReviews int     `json:"skipped_reviews"`
	Consistent     bool    `json:"consistent"`
}
