package domain

import (
	"time"

	"friendlyeats/internal/docstore"
)

const (
	RestaurantsCollection = "restaurants"
	ReviewsCollection     = "reviews"
	PendingYumsCollection = "pendingYums"
	yumsSubcollection     = "yums"
)

// Document field names as stored by the clients.
const (
	FieldOwnerID        = "ownerID"
	FieldName           = "name"
	FieldCategory       = "category"
	FieldCity           = "city"
	FieldPrice          = "price"
	FieldPhotoURL       = "photoURL"
	FieldReviewCount    = "reviewCount"
	FieldAverageRating  = "averageRating"
	FieldRestaurantID   = "restaurantID"
	FieldRestaurantName = "restaurantName"
	FieldRating         = "rating"
	FieldUserInfo       = "userInfo"
	FieldUserID         = "userID"
	FieldText           = "text"
	FieldDate           = "date"
	FieldYumCount       = "yumCount"
	FieldUsername       = "username"
	FieldReviewIDRef    = "reviewId"
	FieldUserIDRef      = "userId"
	FieldUserNameRef    = "userName"
)

const (
	MinRating = 1
	MaxRating = 5
	MinPrice  = 1
	MaxPrice  = 3
)

type Restaurant struct {
	ID            string  `json:"id"`
	OwnerID       string  `json:"ownerID"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	City          string  `json:"city"`
	Price         int     `json:"price"`
	ReviewCount   int     `json:"reviewCount"`
	AverageRating float64 `json:"averageRating"`
	PhotoURL      string  `json:"photoURL"`
}

type UserInfo struct {
	UserID   string `json:"userID"`
	Name     string `json:"name"`
	PhotoURL string `json:"photoURL"`
}

type Review struct {
	ID             string    `json:"id"`
	RestaurantID   string    `json:"restaurantID"`
	RestaurantName string    `json:"restaurantName"`
	Rating         int       `json:"rating"`
	UserInfo       UserInfo  `json:"userInfo"`
	Text           string    `json:"text"`
	Date           time.Time `json:"date"`
	YumCount       int       `json:"yumCount"`
}

// Yum is the per-user like marker stored at reviews/{reviewID}/yums/{userID}.
// Its existence is what makes a user's like count only once.
type Yum struct {
	UserID   string `json:"userID"`
	Username string `json:"username"`
}

// PendingYum is a like request queued by a client that cannot run the
// counter transaction itself.
type PendingYum struct {
	ID       string `json:"id"`
	ReviewID string `json:"reviewId"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

func RestaurantRef(id string) docstore.Ref {
	return docstore.Ref{Collection: RestaurantsCollection, ID: id}
}

func ReviewRef(id string) docstore.Ref {
	return docstore.Ref{Collection: ReviewsCollection, ID: id}
}

func YumsCollection(reviewID string) string {
	return ReviewsCollection + "/" + reviewID + "/" + yumsSubcollection
}

func YumRef(reviewID, userID string) docstore.Ref {
	return docstore.Ref{Collection: YumsCollection(reviewID), ID: userID}
}

func PendingYumRef(id string) docstore.Ref {
	return docstore.Ref{Collection: PendingYumsCollection, ID: id}
}

func (r Restaurant) Fields() map[string]interface{} {
	return map[string]interface{}{
		FieldOwnerID:       r.OwnerID,
		FieldName:          r.Name,
		FieldCategory:      r.Category,
		FieldCity:          r.City,
		FieldPrice:         r.Price,
		FieldReviewCount:   r.ReviewCount,
		FieldAverageRating: r.AverageRating,
		FieldPhotoURL:      r.PhotoURL,
	}
}

func (u UserInfo) Fields() map[string]interface{} {
	return map[string]interface{}{
		FieldUserID:   u.UserID,
		FieldName:     u.Name,
		FieldPhotoURL: u.PhotoURL,
	}
}

func (r Review) Fields() map[string]interface{} {
	return map[string]interface{}{
		FieldRestaurantID:   r.RestaurantID,
		FieldRestaurantName: r.RestaurantName,
		FieldRating:         r.Rating,
		FieldUserInfo:       r.UserInfo.Fields(),
		FieldText:           r.Text,
		FieldDate:           r.Date.UTC().Format(time.RFC3339Nano),
		FieldYumCount:       r.YumCount,
	}
}

func (y Yum) Fields() map[string]interface{} {
	return map[string]interface{}{FieldUsername: y.Username}
}

func (p PendingYum) Fields() map[string]interface{} {
	return map[string]interface{}{
		FieldReviewIDRef: p.ReviewID,
		FieldUserIDRef:   p.UserID,
		FieldUserNameRef: p.UserName,
	}
}

// Redis keys of the read-side mirror kept by agg-svc.
const (
	TopRatedKey      = "restaurants:top-rated"
	StatsAvgRating   = "avg_rating"
	StatsReviewCount = "review_count"
	StatsUpdatedAt   = "last_updated"
	StatsVersion     = "version"
)

func StatsKey(restaurantID string) string {
	return "restaurant:" + restaurantID + ":stats"
}
