package mocks

import (
	context "context"

	service "friendlyeats/agg-svc/internal/service"

	mock "github.com/stretchr/testify/mock"
)

type YumHandler struct {
	mock.Mock
}

func (_m *YumHandler) HandlePendingYum(ctx context.Context, pendingID string, data map[string]interface{}) (service.YumOutcome, error) {
	ret := _m.Called(ctx, pendingID, data)

	if len(ret) == 0 {
		panic("no return value specified for HandlePendingYum")
	}

	var r0 service.YumOutcome
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, map[string]interface{}) (service.YumOutcome, error)); ok {
		return rf(ctx, pendingID, data)
	}
	r0 = ret.Get(0).(service.YumOutcome)
	r1 = ret.Error(1)

	return r0, r1
}

func NewYumHandler(t interface {
	mock.TestingT
	Cleanup(func())
}) *YumHandler {
	mock := &YumHandler{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
