package mocks

import (
	context "context"

	domain "friendlyeats/internal/domain"
	ratedomain "friendlyeats/rate-svc/internal/domain"

	mock "github.com/stretchr/testify/mock"
)

type ReviewServiceInterface struct {
	mock.Mock
}

func (_m *ReviewServiceInterface) Create(ctx context.Context, restaurantID string, req ratedomain.CreateReviewRequest) (domain.Review, error) {
	ret := _m.Called(ctx, restaurantID, req)

	if len(ret) == 0 {
		panic("no return value specified for Create")
	}

	if rf, ok := ret.Get(0).(func(context.Context, string, ratedomain.CreateReviewRequest) (domain.Review, error)); ok {
		return rf(ctx, restaurantID, req)
	}
	return ret.Get(0).(domain.Review), ret.Error(1)
}

func (_m *ReviewServiceInterface) Delete(ctx context.Context, id string) error {
	ret := _m.Called(ctx, id)

	if len(ret) == 0 {
		panic("no return value specified for Delete")
	}

	return ret.Error(0)
}

func (_m *ReviewServiceInterface) ListForRestaurant(ctx context.Context, restaurantID string) ([]domain.Review, error) {
	ret := _m.Called(ctx, restaurantID)

	if len(ret) == 0 {
		panic("no return value specified for ListForRestaurant")
	}

	var r0 []domain.Review
	if rf, ok := ret.Get(0).(func(context.Context, string) ([]domain.Review, error)); ok {
		return rf(ctx, restaurantID)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.Review)
	}
	return r0, ret.Error(1)
}

func (_m *ReviewServiceInterface) RequestYum(ctx context.Context, reviewID string, req ratedomain.YumRequest) (domain.PendingYum, error) {
	ret := _m.Called(ctx, reviewID, req)

	if len(ret) == 0 {
		panic("no return value specified for RequestYum")
	}

	if rf, ok := ret.Get(0).(func(context.Context, string, ratedomain.YumRequest) (domain.PendingYum, error)); ok {
		return rf(ctx, reviewID, req)
	}
	return ret.Get(0).(domain.PendingYum), ret.Error(1)
}

func (_m *ReviewServiceInterface) Update(ctx context.Context, id string, req ratedomain.UpdateReviewRequest) (domain.Review, error) {
	ret := _m.Called(ctx, id, req)

	if len(ret) == 0 {
		panic("no return value specified for Update")
	}

	if rf, ok := ret.Get(0).(func(context.Context, string, ratedomain.UpdateReviewRequest) (domain.Review, error)); ok {
		return rf(ctx, id, req)
	}
	return ret.Get(0).(domain.Review), ret.Error(1)
}

func NewReviewServiceInterface(t interface {
	mock.TestingT
	Cleanup(func())
}) *ReviewServiceInterface {
	mock := &ReviewServiceInterface{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
