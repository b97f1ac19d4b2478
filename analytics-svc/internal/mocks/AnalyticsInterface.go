package mocks

import (
	context "context"

	domain "friendlyeats/analytics-svc/internal/domain"

	mock "github.com/stretchr/testify/mock"
)

type AnalyticsInterface struct {
	mock.Mock
}

func (_m *AnalyticsInterface) Stats(ctx context.Context, restaurantID string) (domain.RestaurantStats, error) {
	ret := _m.Called(ctx, restaurantID)

	if len(ret) == 0 {
		panic("no return value specified for Stats")
	}

	return ret.Get(0).(domain.RestaurantStats), ret.Error(1)
}

func (_m *AnalyticsInterface) TopRated(ctx context.Context, limit int) ([]domain.RankedRestaurant, error) {
	ret := _m.Called(ctx, limit)

	if len(ret) == 0 {
		panic("no return value specified for TopRated")
	}

	var r0 []domain.RankedRestaurant
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.RankedRestaurant)
	}
	return r0, ret.Error(1)
}

func (_m *AnalyticsInterface) RatingDistribution(ctx context.Context, restaurantID string) (map[string]int, error) {
	ret := _m.Called(ctx, restaurantID)

	if len(ret) == 0 {
		panic("no return value specified for RatingDistribution")
	}

	var r0 map[string]int
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(map[string]int)
	}
	return r0, ret.Error(1)
}

func (_m *AnalyticsInterface) GlobalRatingDistribution(ctx context.Context) (map[string]int, error) {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for GlobalRatingDistribution")
	}

	var r0 map[string]int
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(map[string]int)
	}
	return r0, ret.Error(1)
}

func (_m *AnalyticsInterface) Audit(ctx context.Context, restaurantID string) (domain.AuditReport, error) {
	ret := _m.Called(ctx, restaurantID)

	if len(ret) == 0 {
		panic("no return value specified for Audit")
	}

	return ret.Get(0).(domain.AuditReport), ret.Error(1)
}

func NewAnalyticsInterface(t interface {
	mock.TestingT
	Cleanup(func())
}) *AnalyticsInterface {
	mock := &AnalyticsInterface{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
