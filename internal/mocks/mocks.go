// internal/mocks/mocks.go
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/damon-houk/fxconv/internal/domain/entity"
	"github.com/damon-houk/fxconv/internal/domain/service"
	"github.com/damon-houk/fxconv/internal/infrastructure/logger"
)

// MockRateAPI mocks the RateAPI interface
type MockRateAPI struct {
	mock.Mock
}

func (m *MockRateAPI) Configured() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockRateAPI) Latest(ctx context.Context) (*service.LatestRates, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LatestRates), args.Error(1)
}

func (m *MockRateAPI) TimeSeries(ctx context.Context, start, end time.Time, symbols []string) (*service.TimeSeries, error) {
	args := m.Called(ctx, start, end, symbols)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TimeSeries), args.Error(1)
}

// MockRateSnapshotRepository mocks the RateSnapshotRepository interface
type MockRateSnapshotRepository struct {
	mock.Mock
}

func (m *MockRateSnapshotRepository) Load(ctx context.Context) (*entity.RateSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RateSnapshot), args.Error(1)
}

func (m *MockRateSnapshotRepository) Save(ctx context.Context, snapshot *entity.RateSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

// MockPreferencesRepository mocks the PreferencesRepository interface
type MockPreferencesRepository struct {
	mock.Mock
}

func (m *MockPreferencesRepository) Load(ctx context.Context) (*entity.UserPreferences, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UserPreferences), args.Error(1)
}

func (m *MockPreferencesRepository) Save(ctx context.Context, prefs *entity.UserPreferences) error {
	args := m.Called(ctx, prefs)
	return args.Error(0)
}

// MockLogger mocks the logger interface
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Info(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Warn(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Error(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Fatal(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) WithField(key string, value interface{}) logger.Logger {
	m.Called(key, value)
	return m
}

func (m *MockLogger) WithFields(fields map[string]interface{}) logger.Logger {
	m.Called(fields)
	return m
}
