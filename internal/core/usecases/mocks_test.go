package usecases_test

import (
	"context"
	"errors"
	"sync"

	"github.com/samirrijal/safetyfan/internal/core/domain"
)

// --- Mock FanRepository ---

type mockFanRepo struct {
	insertFn  func(ctx context.Context, f *domain.Fan) error
	getByIDFn func(ctx context.Context, id string) (*domain.Fan, error)
	listFn    func(ctx context.Context, offset, limit int) ([]domain.Fan, error)
	countFn   func(ctx context.Context) (int, error)
	deleteFn  func(ctx context.Context, id string) error

	inserted []*domain.Fan
}

func (m *mockFanRepo) Insert(ctx context.Context, f *domain.Fan) error {
	m.inserted = append(m.inserted, f)
	if m.insertFn != nil {
		return m.insertFn(ctx, f)
	}
	return nil
}

func (m *mockFanRepo) GetByID(ctx context.Context, id string) (*domain.Fan, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockFanRepo) List(ctx context.Context, offset, limit int) ([]domain.Fan, error) {
	if m.listFn != nil {
		return m.listFn(ctx, offset, limit)
	}
	return nil, nil
}

func (m *mockFanRepo) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

func (m *mockFanRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// --- Mock CacheService ---

var errMiss = errors.New("miss")

type mockCache struct {
	mu     sync.Mutex
	data   map[string][]byte
	setErr error
	sets   int
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.data[key]; ok {
		return b, nil
	}
	return nil, errMiss
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	computed []*domain.FanComputedEvent
	archived []*domain.FanArchivedEvent
	err      error
}

func (m *mockPublisher) PublishFanComputed(ctx context.Context, e *domain.FanComputedEvent) error {
	m.computed = append(m.computed, e)
	return m.err
}

func (m *mockPublisher) PublishFanArchived(ctx context.Context, e *domain.FanArchivedEvent) error {
	m.archived = append(m.archived, e)
	return m.err
}

// --- Mock WeatherProvider ---

type mockWeather struct {
	currentFn func(ctx context.Context, lat, lon float64) (*domain.WeatherObservation, error)
	calls     int
}

func (m *mockWeather) Current(ctx context.Context, lat, lon float64) (*domain.WeatherObservation, error) {
	m.calls++
	if m.currentFn != nil {
		return m.currentFn(ctx, lat, lon)
	}
	return &domain.WeatherObservation{Location: domain.GeoPoint{Lat: lat, Lon: lon}}, nil
}

func ptr(v float64) *float64 { return &v }
