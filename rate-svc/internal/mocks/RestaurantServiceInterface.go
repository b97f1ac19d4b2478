package mocks

import (
	context "context"

	domain "friendlyeats/internal/domain"
	ratedomain "friendlyeats/rate-svc/internal/domain"

	mock "github.com/stretchr/testify/mock"
)

type RestaurantServiceInterface struct {
	mock.Mock
}

func (_m *RestaurantServiceInterface) Create(ctx context.Context, req ratedomain.RestaurantRequest) (domain.Restaurant, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for Create")
	}

	if rf, ok := ret.Get(0).(func(context.Context, ratedomain.RestaurantRequest) (domain.Restaurant, error)); ok {
		return rf(ctx, req)
	}
	return ret.Get(0).(domain.Restaurant), ret.Error(1)
}

func (_m *RestaurantServiceInterface) Get(ctx context.Context, id string) (domain.Restaurant, error) {
	ret := _m.Called(ctx, id)

	if len(ret) == 0 {
		panic("no return value specified for Get")
	}

	if rf, ok := ret.Get(0).(func(context.Context, string) (domain.Restaurant, error)); ok {
		return rf(ctx, id)
	}
	return ret.Get(0).(domain.Restaurant), ret.Error(1)
}

func (_m *RestaurantServiceInterface) Update(ctx context.Context, id string, req ratedomain.RestaurantRequest) (domain.Restaurant, error) {
	ret := _m.Called(ctx, id, req)

	if len(ret) == 0 {
		panic("no return value specified for Update")
	}

	if rf, ok := ret.Get(0).(func(context.Context, string, ratedomain.RestaurantRequest) (domain.Restaurant, error)); ok {
		return rf(ctx, id, req)
	}
	return ret.Get(0).(domain.Restaurant), ret.Error(1)
}

func NewRestaurantServiceInterface(t interface {
	mock.TestingT
	Cleanup(func())
}) *RestaurantServiceInterface {
	mock := &RestaurantServiceInterface{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
