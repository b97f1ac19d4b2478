package service

import "errors"

var (
	ErrRestaurantMissing = errors.New("restaurant does not exist")
	ErrReviewMissing     = errors.New("review does not exist")
	ErrInvalidAggregate  = errors.New("restaurant aggregate is inconsistent")
	ErrRestaurantChanged = errors.New("review restaurantID changed")
)
