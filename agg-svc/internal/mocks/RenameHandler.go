package mocks

import (
	context "context"

	mock "github.com/stretchr/testify/mock"
)

type RenameHandler struct {
	mock.Mock
}

func (_m *RenameHandler) HandleRestaurantUpdate(ctx context.Context, restaurantID string, before map[string]interface{}, after map[string]interface{}) (int, error) {
	ret := _m.Called(ctx, restaurantID, before, after)

	if len(ret) == 0 {
		panic("no return value specified for HandleRestaurantUpdate")
	}

	var r0 int
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, map[string]interface{}, map[string]interface{}) (int, error)); ok {
		return rf(ctx, restaurantID, before, after)
	}
	r0 = ret.Get(0).(int)
	r1 = ret.Error(1)

	return r0, r1
}

func NewRenameHandler(t interface {
	mock.TestingT
	Cleanup(func())
}) *RenameHandler {
	mock := &RenameHandler{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
