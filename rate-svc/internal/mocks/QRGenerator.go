package mocks

import mock "github.com/stretchr/testify/mock"

type QRGenerator struct {
	mock.Mock
}

func (_m *QRGenerator) Generate(restaurantID string) ([]byte, error) {
	ret := _m.Called(restaurantID)

	if len(ret) == 0 {
		panic("no return value specified for Generate")
	}

	var r0 []byte
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}
	return r0, ret.Error(1)
}

func NewQRGenerator(t interface {
	mock.TestingT
	Cleanup(func())
}) *QRGenerator {
	mock := &QRGenerator{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
