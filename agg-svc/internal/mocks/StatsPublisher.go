package mocks

import (
	context "context"

	mock "github.com/stretchr/testify/mock"
)

type StatsPublisher struct {
	mock.Mock
}

func (_m *StatsPublisher) PublishStats(ctx context.Context, restaurantID string, averageRating float64, reviewCount int, version int64) error {
	ret := _m.Called(ctx, restaurantID, averageRating, reviewCount, version)

	if len(ret) == 0 {
		panic("no return value specified for PublishStats")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, float64, int, int64) error); ok {
		r0 = rf(ctx, restaurantID, averageRating, reviewCount, version)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

func NewStatsPublisher(t interface {
	mock.TestingT
	Cleanup(func())
}) *StatsPublisher {
	mock := &StatsPublisher{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
