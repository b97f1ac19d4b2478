package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// DecodeError reports a document that is missing a required field or holds
// a value of the wrong type or range.
type DecodeError struct {
	Kind   string
	ID     string
	Field  string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed %s %q: field %q %s", e.Kind, e.ID, e.Field, e.Reason)
}

type fieldReader struct {
	kind string
	id   string
	data map[string]interface{}
	err  *DecodeError
}

func newFieldReader(kind, id string, data map[string]interface{}) *fieldReader {
	r := &fieldReader{kind: kind, id: id, data: data}
	if data == nil {
		r.fail("", "document has no data")
	}
	return r
}

func (r *fieldReader) fail(field, reason string) {
	if r.err == nil {
		r.err = &DecodeError{Kind: r.kind, ID: r.id, Field: field, Reason: reason}
	}
}

func (r *fieldReader) lookup(field string) (interface{}, bool) {
	if r.err != nil {
		return nil, false
	}
	v, ok := r.data[field]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (r *fieldReader) requiredString(field string) string {
	v, ok := r.lookup(field)
	if !ok {
		r.fail(field, "is missing")
		return ""
	}
	s, ok := v.(string)
	if !ok || s == "" {
		r.fail(field, "must be a non-empty string")
	}
	return s
}

func (r *fieldReader) optionalString(field string) string {
	v, ok := r.lookup(field)
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		r.fail(field, "must be a string")
	}
	return s
}

func (r *fieldReader) requiredInt(field string) int {
	if _, ok := r.lookup(field); !ok {
		r.fail(field, "is missing")
		return 0
	}
	return r.optionalInt(field)
}

func (r *fieldReader) optionalInt(field string) int {
	v, ok := r.lookup(field)
	if !ok {
		return 0
	}
	n, ok := asInt(v)
	if !ok {
		r.fail(field, "must be an integer")
	}
	return n
}

func (r *fieldReader) optionalFloat(field string) float64 {
	v, ok := r.lookup(field)
	if !ok {
		return 0
	}
	f, ok := asFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		r.fail(field, "must be a finite number")
	}
	return f
}

func (r *fieldReader) optionalTime(field string) time.Time {
	v, ok := r.lookup(field)
	if !ok {
		return time.Time{}
	}
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			r.fail(field, "must be an RFC 3339 timestamp")
		}
		return parsed
	default:
		r.fail(field, "must be a timestamp")
		return time.Time{}
	}
}

func (r *fieldReader) optionalMap(field string) map[string]interface{} {
	v, ok := r.lookup(field)
	if !ok {
		return nil
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		r.fail(field, "must be a map")
	}
	return m
}

func (r *fieldReader) check(cond bool, field, reason string) {
	if r.err == nil && !cond {
		r.fail(field, reason)
	}
}

func (r *fieldReader) result() error {
	if r.err != nil {
		return r.err
	}
	return nil
}

func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	default:
		return 0, false
	}
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Averages are recomputed incrementally, so allow a little float drift
// around the rating bounds.
const ratingTolerance = 1e-9

func DecodeRestaurant(id string, data map[string]interface{}) (Restaurant, error) {
	r := newFieldReader("restaurant", id, data)
	restaurant := Restaurant{
		ID:            id,
		OwnerID:       r.optionalString(FieldOwnerID),
		Name:          r.requiredString(FieldName),
		Category:      r.optionalString(FieldCategory),
		City:          r.optionalString(FieldCity),
		Price:         r.optionalInt(FieldPrice),
		ReviewCount:   r.optionalInt(FieldReviewCount),
		AverageRating: r.optionalFloat(FieldAverageRating),
		PhotoURL:      r.optionalString(FieldPhotoURL),
	}
	r.check(restaurant.Price == 0 || (restaurant.Price >= MinPrice && restaurant.Price <= MaxPrice),
		FieldPrice, "must be between 1 and 3")
	r.check(restaurant.ReviewCount >= 0, FieldReviewCount, "must not be negative")
	r.check(restaurant.AverageRating >= -ratingTolerance && restaurant.AverageRating <= MaxRating+ratingTolerance,
		FieldAverageRating, "must be between 0 and 5")
	if err := r.result(); err != nil {
		return Restaurant{}, err
	}
	return restaurant, nil
}

func DecodeUserInfo(id string, data map[string]interface{}) (UserInfo, error) {
	r := newFieldReader("user", id, data)
	user := UserInfo{
		UserID:   r.optionalString(FieldUserID),
		Name:     r.optionalString(FieldName),
		PhotoURL: r.optionalString(FieldPhotoURL),
	}
	if err := r.result(); err != nil {
		return UserInfo{}, err
	}
	return user, nil
}

func DecodeReview(id string, data map[string]interface{}) (Review, error) {
	r := newFieldReader("review", id, data)
	review := Review{
		ID:             id,
		RestaurantID:   r.requiredString(FieldRestaurantID),
		RestaurantName: r.optionalString(FieldRestaurantName),
		Rating:         r.requiredInt(FieldRating),
		Text:           r.optionalString(FieldText),
		Date:           r.optionalTime(FieldDate),
		YumCount:       r.optionalInt(FieldYumCount),
	}
	userInfo := r.optionalMap(FieldUserInfo)
	r.check(review.Rating >= MinRating && review.Rating <= MaxRating, FieldRating, "must be between 1 and 5")
	r.check(review.YumCount >= 0, FieldYumCount, "must not be negative")
	if err := r.result(); err != nil {
		return Review{}, err
	}
	if userInfo != nil {
		user, err := DecodeUserInfo(id, userInfo)
		if err != nil {
			return Review{}, &DecodeError{Kind: "review", ID: id, Field: FieldUserInfo, Reason: err.Error()}
		}
		review.UserInfo = user
	}
	return review, nil
}

func DecodeYum(userID string, data map[string]interface{}) (Yum, error) {
	r := newFieldReader("yum", userID, data)
	yum := Yum{UserID: userID, Username: r.optionalString(FieldUsername)}
	if err := r.result(); err != nil {
		return Yum{}, err
	}
	return yum, nil
}

func DecodePendingYum(id string, data map[string]interface{}) (PendingYum, error) {
	r := newFieldReader("pending yum", id, data)
	pending := PendingYum{
		ID:       id,
		ReviewID: r.requiredString(FieldReviewIDRef),
		UserID:   r.requiredString(FieldUserIDRef),
		UserName: r.optionalString(FieldUserNameRef),
	}
	r.check(!strings.Contains(pending.ReviewID, "/"), FieldReviewIDRef, "must not contain a slash")
	r.check(!strings.Contains(pending.UserID, "/"), FieldUserIDRef, "must not contain a slash")
	if err := r.result(); err != nil {
		return PendingYum{}, err
	}
	return pending, nil
}
