// Package mocks provides test doubles for the FIRST API client.
package mocks

import (
	"context"

	firstapi "github.com/frcmap/season-map/pkg/firstapi"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// EventDetails provides a mock function with given fields: ctx, year, code
func (_m *MockClient) EventDetails(ctx context.Context, year int, code string) (*firstapi.EventDetails, error) {
	ret := _m.Called(ctx, year, code)

	if len(ret) == 0 {
		panic("no return value specified for EventDetails")
	}

	var r0 *firstapi.EventDetails
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, int, string) (*firstapi.EventDetails, error)); ok {
		return rf(ctx, year, code)
	}
	if rf, ok := ret.Get(0).(func(context.Context, int, string) *firstapi.EventDetails); ok {
		r0 = rf(ctx, year, code)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*firstapi.EventDetails)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, int, string) error); ok {
		r1 = rf(ctx, year, code)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockClient creates a new instance of MockClient.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	m := &MockClient{}
	m.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
