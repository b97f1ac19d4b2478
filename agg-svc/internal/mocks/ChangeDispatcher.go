package mocks

import (
	context "context"

	docstore "friendlyeats/internal/docstore"

	mock "github.com/stretchr/testify/mock"
)

type ChangeDispatcher struct {
	mock.Mock
}

func (_m *ChangeDispatcher) Dispatch(ctx context.Context, change docstore.Change) error {
	ret := _m.Called(ctx, change)

	if len(ret) == 0 {
		panic("no return value specified for Dispatch")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, docstore.Change) error); ok {
		r0 = rf(ctx, change)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

func NewChangeDispatcher(t interface {
	mock.TestingT
	Cleanup(func())
}) *ChangeDispatcher {
	mock := &ChangeDispatcher{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
