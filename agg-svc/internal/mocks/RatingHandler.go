package mocks

import (
	context "context"

	mock "github.com/stretchr/testify/mock"
)

type RatingHandler struct {
	mock.Mock
}

func (_m *RatingHandler) HandleReviewWrite(ctx context.Context, reviewID string, before map[string]interface{}, after map[string]interface{}) error {
	ret := _m.Called(ctx, reviewID, before, after)

	if len(ret) == 0 {
		panic("no return value specified for HandleReviewWrite")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, map[string]interface{}, map[string]interface{}) error); ok {
		r0 = rf(ctx, reviewID, before, after)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

func NewRatingHandler(t interface {
	mock.TestingT
	Cleanup(func())
}) *RatingHandler {
	mock := &RatingHandler{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
