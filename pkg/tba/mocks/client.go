// Package mocks provides test doubles for the TBA client.
package mocks

import (
	"context"

	model "github.com/frcmap/season-map/internal/model"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// Teams provides a mock function with given fields: ctx
func (_m *MockClient) Teams(ctx context.Context) (map[string]*model.Team, error) {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for Teams")
	}

	var r0 map[string]*model.Team
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(map[string]*model.Team)
	}
	return r0, ret.Error(1)
}

// Events provides a mock function with given fields: ctx, year
func (_m *MockClient) Events(ctx context.Context, year int) (map[string]*model.Event, error) {
	ret := _m.Called(ctx, year)

	if len(ret) == 0 {
		panic("no return value specified for Events")
	}

	var r0 map[string]*model.Event
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(map[string]*model.Event)
	}
	return r0, ret.Error(1)
}

// EventKeys provides a mock function with given fields: ctx, year
func (_m *MockClient) EventKeys(ctx context.Context, year int) ([]string, error) {
	ret := _m.Called(ctx, year)

	if len(ret) == 0 {
		panic("no return value specified for EventKeys")
	}

	var r0 []string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]string)
	}
	return r0, ret.Error(1)
}

// EventTeamKeys provides a mock function with given fields: ctx, eventKey
func (_m *MockClient) EventTeamKeys(ctx context.Context, eventKey string) ([]string, error) {
	ret := _m.Called(ctx, eventKey)

	if len(ret) == 0 {
		panic("no return value specified for EventTeamKeys")
	}

	var r0 []string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]string)
	}
	return r0, ret.Error(1)
}

// ActiveTeamKeys provides a mock function with given fields: ctx, year
func (_m *MockClient) ActiveTeamKeys(ctx context.Context, year int) ([]string, error) {
	ret := _m.Called(ctx, year)

	if len(ret) == 0 {
		panic("no return value specified for ActiveTeamKeys")
	}

	var r0 []string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]string)
	}
	return r0, ret.Error(1)
}

// TeamEventMap provides a mock function with given fields: ctx, year
func (_m *MockClient) TeamEventMap(ctx context.Context, year int) (map[string][]string, error) {
	ret := _m.Called(ctx, year)

	if len(ret) == 0 {
		panic("no return value specified for TeamEventMap")
	}

	var r0 map[string][]string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(map[string][]string)
	}
	return r0, ret.Error(1)
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
