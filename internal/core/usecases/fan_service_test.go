package usecases_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/samirrijal/safetyfan/internal/core/domain"
	"github.com/samirrijal/safetyfan/internal/core/fan"
	"github.com/samirrijal/safetyfan/internal/core/usecases"
)

func solution() domain.FiringSolution {
	return domain.FiringSolution{
		Origin:         domain.GeoPoint{Lat: 0, Lon: 0},
		AzimuthDeg:     0,
		LeftOffsetDeg:  10,
		RightOffsetDeg: 10,
		MinRangeM:      0,
		MaxRangeM:      1000,
		Mode:           domain.ModeLowAngle,
	}
}

func TestFanService_Compute(t *testing.T) {
	repo := &mockFanRepo{}
	pub := &mockPublisher{}
	svc := usecases.NewFanService(repo, nil, pub, usecases.FanOptions{})

	f, err := svc.Compute(context.Background(), solution())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uuid.Parse(f.ID); err != nil {
		t.Errorf("expected uuid id, got %q", f.ID)
	}
	if got := len(f.Polygon.Ring); got != 61 {
		t.Errorf("expected 61 points, got %d", got)
	}
	if f.Policy != "fixed" {
		t.Errorf("expected fixed policy, got %q", f.Policy)
	}
	if f.Polygon.Label != fan.DefaultLabel {
		t.Errorf("expected default label, got %q", f.Polygon.Label)
	}
	if math.Abs(f.ReachM-1000) > 5 {
		t.Errorf("expected reach ~1000 m, got %.1f", f.ReachM)
	}
	if f.Bounds.MaxLat <= 0 || f.Bounds.MinLon >= 0 || f.Bounds.MaxLon <= 0 {
		t.Errorf("unexpected bounds %+v", f.Bounds)
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("expected 1 insert, got %d", len(repo.inserted))
	}
	if len(pub.computed) != 1 {
		t.Fatalf("expected 1 event, got %d", len(pub.computed))
	}
	if ev := pub.computed[0]; ev.FanID != f.ID || ev.PointCount != 61 || ev.Mode != domain.ModeLowAngle {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestFanService_Compute_AdaptivePolicy(t *testing.T) {
	svc := usecases.NewFanService(&mockFanRepo{}, nil, nil, usecases.FanOptions{Policy: fan.AdaptivePolicy{}})

	f, err := svc.Compute(context.Background(), solution())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Policy != "adaptive" {
		t.Errorf("expected adaptive policy, got %q", f.Policy)
	}
	if svc.Policy() != "adaptive" {
		t.Errorf("Policy() = %q", svc.Policy())
	}
}

func TestFanService_Compute_CacheHitSkipsPersist(t *testing.T) {
	repo := &mockFanRepo{}
	pub := &mockPublisher{}
	cache := newMockCache()
	svc := usecases.NewFanService(repo, cache, pub, usecases.FanOptions{})

	first, err := svc.Compute(context.Background(), solution())
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Compute(context.Background(), solution())
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID {
		t.Errorf("expected cached fan %s, got %s", first.ID, second.ID)
	}
	if len(repo.inserted) != 1 || len(pub.computed) != 1 {
		t.Errorf("expected one insert and one event, got %d and %d", len(repo.inserted), len(pub.computed))
	}

	other := solution()
	other.AzimuthDeg = 90
	third, err := svc.Compute(context.Background(), other)
	if err != nil {
		t.Fatal(err)
	}
	if third.ID == first.ID {
		t.Error("different solutions must not share a cache entry")
	}
}

func TestFanService_Compute_SideEffectFailuresAreBestEffort(t *testing.T) {
	cache := newMockCache()
	cache.setErr = errors.New("valkey down")
	pub := &mockPublisher{err: errors.New("nats down")}
	svc := usecases.NewFanService(&mockFanRepo{}, cache, pub, usecases.FanOptions{})

	if _, err := svc.Compute(context.Background(), solution()); err != nil {
		t.Fatalf("cache/publish failures must not fail compute: %v", err)
	}
}

func TestFanService_Compute_PersistError(t *testing.T) {
	repo := &mockFanRepo{insertFn: func(ctx context.Context, f *domain.Fan) error {
		return errors.New("connection refused")
	}}
	pub := &mockPublisher{}
	svc := usecases.NewFanService(repo, nil, pub, usecases.FanOptions{})

	_, err := svc.Compute(context.Background(), solution())
	if err == nil || !strings.Contains(err.Error(), "persist fan") {
		t.Fatalf("expected persist error, got %v", err)
	}
	if len(pub.computed) != 0 {
		t.Error("no event may be published for an unsaved fan")
	}
}

func TestFanService_Compute_InvalidInput(t *testing.T) {
	svc := usecases.NewFanService(&mockFanRepo{}, nil, nil, usecases.FanOptions{})

	tests := []struct {
		name   string
		mutate func(*domain.FiringSolution)
		want   error
	}{
		{"nan azimuth", func(s *domain.FiringSolution) { s.AzimuthDeg = math.NaN() }, domain.ErrInvalidInput},
		{"near pole", func(s *domain.FiringSolution) { s.Origin.Lat = 89.95 }, domain.ErrSingularProjection},
		{"nan wind", func(s *domain.FiringSolution) { s.Wind.Speed = math.NaN() }, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := solution()
			tt.mutate(&s)
			if _, err := svc.Compute(context.Background(), s); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestFanService_Get(t *testing.T) {
	id := uuid.NewString()
	calls := 0
	repo := &mockFanRepo{getByIDFn: func(ctx context.Context, got string) (*domain.Fan, error) {
		calls++
		if got != id {
			return nil, domain.ErrNotFound
		}
		return &domain.Fan{ID: id, Policy: "fixed"}, nil
	}}
	svc := usecases.NewFanService(repo, newMockCache(), nil, usecases.FanOptions{})

	for i := 0; i < 2; i++ {
		f, err := svc.Get(context.Background(), id)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.ID != id {
			t.Errorf("expected %s, got %s", id, f.ID)
		}
	}
	if calls != 1 {
		t.Errorf("expected second Get to be served from cache, repo called %d times", calls)
	}

	if _, err := svc.Get(context.Background(), uuid.NewString()); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Get(context.Background(), "not-a-uuid"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for malformed id, got %v", err)
	}
}

func TestFanService_List(t *testing.T) {
	var gotOffset, gotLimit int
	repo := &mockFanRepo{
		countFn: func(ctx context.Context) (int, error) { return 3, nil },
		listFn: func(ctx context.Context, offset, limit int) ([]domain.Fan, error) {
			gotOffset, gotLimit = offset, limit
			return []domain.Fan{{ID: "a"}, {ID: "b"}}, nil
		},
	}
	svc := usecases.NewFanService(repo, nil, nil, usecases.FanOptions{})

	fans, total, err := svc.List(context.Background(), -5, 999)
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || len(fans) != 2 {
		t.Errorf("expected 2 of 3, got %d of %d", len(fans), total)
	}
	if gotOffset != 0 || gotLimit != 50 {
		t.Errorf("expected offset 0 limit 50, got %d %d", gotOffset, gotLimit)
	}

	fans, _, err = svc.List(context.Background(), 10, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(fans) != 0 {
		t.Errorf("expected empty page past the end, got %d", len(fans))
	}
}

func TestFanService_Delete(t *testing.T) {
	id := uuid.NewString()
	cache := newMockCache()
	_ = cache.Set(context.Background(), "fans:id:"+id, []byte(`{}`), 0)

	svc := usecases.NewFanService(&mockFanRepo{}, cache, nil, usecases.FanOptions{})
	if err := svc.Delete(context.Background(), id); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.Get(context.Background(), "fans:id:"+id); err == nil {
		t.Error("expected cached fan to be evicted")
	}

	repo := &mockFanRepo{deleteFn: func(ctx context.Context, id string) error { return domain.ErrNotFound }}
	svc = usecases.NewFanService(repo, nil, nil, usecases.FanOptions{})
	if err := svc.Delete(context.Background(), uuid.NewString()); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFanService_Delete_RecomputeBuildsNewFan(t *testing.T) {
	stored := map[string]*domain.Fan{}
	repo := &mockFanRepo{
		insertFn: func(ctx context.Context, f *domain.Fan) error {
			stored[f.ID] = f
			return nil
		},
		getByIDFn: func(ctx context.Context, id string) (*domain.Fan, error) {
			if f, ok := stored[id]; ok {
				return f, nil
			}
			return nil, domain.ErrNotFound
		},
		deleteFn: func(ctx context.Context, id string) error {
			if _, ok := stored[id]; !ok {
				return domain.ErrNotFound
			}
			delete(stored, id)
			return nil
		},
	}
	cache := newMockCache()
	svc := usecases.NewFanService(repo, cache, nil, usecases.FanOptions{})
	ctx := context.Background()

	first, err := svc.Compute(ctx, solution())
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, first.ID); err != nil {
		t.Fatal(err)
	}
	if len(cache.data) != 0 {
		t.Errorf("expected every cache entry evicted, %d left", len(cache.data))
	}

	second, err := svc.Compute(ctx, solution())
	if err != nil {
		t.Fatal(err)
	}
	if second.ID == first.ID {
		t.Fatalf("recompute returned deleted fan %s", first.ID)
	}
	if len(repo.inserted) != 2 {
		t.Errorf("expected 2 inserts, got %d", len(repo.inserted))
	}
	if _, err := svc.Get(ctx, second.ID); err != nil {
		t.Errorf("recomputed fan not retrievable: %v", err)
	}
	if _, err := svc.Get(ctx, first.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected deleted fan to stay gone, got %v", err)
	}
}

func TestFanService_Corrections(t *testing.T) {
	svc := usecases.NewFanService(&mockFanRepo{}, nil, nil, usecases.FanOptions{})

	c := svc.Corrections(0, domain.Wind{DirectionDeg: 90, Speed: 5, MetScale: 1})
	if math.Abs(c.DRangeM) > 1e-9 {
		t.Errorf("crosswind should not change range, got %v", c.DRangeM)
	}
	if math.Abs(math.Abs(c.DBearingDeg)-2) > 1e-9 {
		t.Errorf("expected |dBearing| = 2, got %v", c.DBearingDeg)
	}
}

func TestFanService_Export(t *testing.T) {
	repo := &mockFanRepo{}
	svc := usecases.NewFanService(repo, nil, nil, usecases.FanOptions{})
	f, err := svc.Compute(context.Background(), solution())
	if err != nil {
		t.Fatal(err)
	}
	repo.getByIDFn = func(ctx context.Context, id string) (*domain.Fan, error) { return f, nil }

	body, ct, err := svc.Export(context.Background(), f.ID, "geojson")
	if err != nil {
		t.Fatal(err)
	}
	if ct != "application/geo+json" {
		t.Errorf("content type = %q", ct)
	}
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil || doc["type"] != "FeatureCollection" {
		t.Errorf("unexpected geojson: %s", body)
	}

	body, _, err = svc.Export(context.Background(), f.ID, "KML")
	if err != nil || !strings.Contains(string(body), "<coordinates>") {
		t.Errorf("unexpected kml (%v): %s", err, body)
	}

	body, _, err = svc.Export(context.Background(), f.ID, "csv")
	if err != nil || !strings.Contains(string(body), f.ID) {
		t.Errorf("unexpected csv (%v): %s", err, body)
	}

	if _, _, err := svc.Export(context.Background(), f.ID, "shapefile"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for unknown format, got %v", err)
	}
}
