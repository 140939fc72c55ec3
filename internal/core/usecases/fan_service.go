package usecases

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/safetyfan/internal/core/domain"
	"github.com/samirrijal/safetyfan/internal/core/fan"
	"github.com/samirrijal/safetyfan/internal/core/met"
	"github.com/samirrijal/safetyfan/internal/core/ports"
	"github.com/samirrijal/safetyfan/internal/pkg/export"
	"github.com/samirrijal/safetyfan/internal/pkg/geospatial"
	"github.com/samirrijal/safetyfan/internal/pkg/metrics"
	"github.com/samirrijal/safetyfan/internal/pkg/telemetry"
)

// DefaultFanCacheTTL is how long computed fans stay cached, in seconds.
const DefaultFanCacheTTL = 600

// Export formats accepted by FanService.Export.
const (
	FormatGeoJSON = "geojson"
	FormatKML     = "kml"
	FormatCSV     = "csv"
)

// FanOptions tunes a FanService.
type FanOptions struct {
	Model    met.Model // zero value selects met.Default()
	Policy   fan.ResolutionPolicy
	CacheTTL int // seconds; 0 selects DefaultFanCacheTTL
}

// FanService computes, stores and exports safety fans.
type FanService struct {
	fans      ports.FanRepository
	cache     ports.CacheService
	publisher ports.EventPublisher
	model     met.Model
	policy    fan.ResolutionPolicy
	cacheTTL  int
	tracer    trace.Tracer

	now   func() time.Time
	newID func() string
}

// NewFanService creates a new FanService. cache and publisher may be nil.
func NewFanService(fans ports.FanRepository, cache ports.CacheService, publisher ports.EventPublisher, opts FanOptions) *FanService {
	if opts.Policy == nil {
		opts.Policy = fan.DefaultFixed()
	}
	if opts.Model == (met.Model{}) {
		opts.Model = met.Default()
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultFanCacheTTL
	}
	return &FanService{
		fans:      fans,
		cache:     cache,
		publisher: publisher,
		model:     opts.Model,
		policy:    opts.Policy,
		cacheTTL:  opts.CacheTTL,
		tracer:    telemetry.Tracer("safetyfan/usecases"),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Policy returns the name of the resolution policy in use.
func (s *FanService) Policy() string {
	return s.policy.Name()
}

// Compute builds the fan for a firing solution, stores it and announces it.
// Identical solutions within the cache TTL return the stored fan instead of a new one.
func (s *FanService) Compute(ctx context.Context, sol domain.FiringSolution) (*domain.Fan, error) {
	ctx, span := s.tracer.Start(ctx, "FanService.Compute", trace.WithAttributes(
		telemetry.AttrFanMode.String(string(sol.Mode)),
		telemetry.AttrFanPolicy.String(s.policy.Name()),
		telemetry.AttrFanAzimuth.Float64(sol.AzimuthDeg),
	))
	defer span.End()

	mode := metrics.ModeLabel(string(sol.Mode))

	// Stored fans are JSON; a NaN wind would yield a ring that cannot be persisted.
	if !finite(sol.Wind.DirectionDeg, sol.Wind.Speed, sol.Wind.MetScale) {
		metrics.FanComputations.WithLabelValues(mode, "rejected").Inc()
		return nil, fmt.Errorf("wind is not finite: %w", domain.ErrInvalidInput)
	}

	cacheKey := s.computeKey(sol)
	if cached := s.cachedFan(ctx, "fan_compute", cacheKey); cached != nil {
		span.SetAttributes(telemetry.AttrFanCacheHit.Bool(true), telemetry.AttrFanID.String(cached.ID))
		metrics.FanComputations.WithLabelValues(mode, "cached").Inc()
		return cached, nil
	}

	start := time.Now()
	poly, err := fan.Compute(sol, s.model, s.policy)
	metrics.FanComputeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		metrics.FanComputations.WithLabelValues(mode, "rejected").Inc()
		return nil, err
	}

	f := &domain.Fan{
		ID:        s.newID(),
		Solution:  sol,
		Polygon:   *poly,
		Bounds:    domain.BoundsOf(poly.Ring),
		ReachM:    reach(sol.Origin, poly.Ring),
		Policy:    s.policy.Name(),
		CreatedAt: s.now().UTC(),
	}
	span.SetAttributes(telemetry.AttrFanID.String(f.ID), telemetry.AttrFanVertices.Int(len(poly.Ring)))

	if err := s.fans.Insert(ctx, f); err != nil {
		span.SetStatus(codes.Error, err.Error())
		metrics.FanComputations.WithLabelValues(mode, "error").Inc()
		return nil, fmt.Errorf("persist fan: %w", err)
	}

	s.cacheFan(ctx, cacheKey, f)
	s.cacheFan(ctx, fanIDKey(f.ID), f)
	s.cacheComputeKey(ctx, f.ID, cacheKey)

	if s.publisher != nil {
		event := &domain.FanComputedEvent{
			FanID:      f.ID,
			Label:      poly.Label,
			Mode:       poly.Mode,
			PointCount: len(poly.Ring),
			Bounds:     f.Bounds,
			ComputedAt: f.CreatedAt,
		}
		if err := s.publisher.PublishFanComputed(ctx, event); err != nil {
			slog.WarnContext(ctx, "publish fan computed", "fan_id", f.ID, "error", err)
		}
	}

	metrics.FanComputations.WithLabelValues(mode, "ok").Inc()
	metrics.FanVertices.Observe(float64(len(poly.Ring)))
	slog.InfoContext(ctx, "fan computed",
		"fan_id", f.ID,
		"points", len(poly.Ring),
		"arc_steps", poly.ArcSteps,
		"radial_steps", poly.RadialSteps,
		"policy", f.Policy,
	)
	return f, nil
}

// Get returns a stored fan, or domain.ErrNotFound.
func (s *FanService) Get(ctx context.Context, id string) (*domain.Fan, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("fan id %q: %w", id, domain.ErrNotFound)
	}

	key := fanIDKey(id)
	if cached := s.cachedFan(ctx, "fan_get", key); cached != nil {
		return cached, nil
	}

	f, err := s.fans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheFan(ctx, key, f)
	return f, nil
}

// List returns a page of fans, newest first, and the total count.
func (s *FanService) List(ctx context.Context, offset, limit int) ([]domain.Fan, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	total, err := s.fans.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count fans: %w", err)
	}
	if offset >= total {
		return []domain.Fan{}, total, nil
	}

	fans, err := s.fans.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list fans: %w", err)
	}
	return fans, total, nil
}

// Delete removes a stored fan and every cache entry that points at it,
// so recomputing the same solution builds a new fan.
func (s *FanService) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("fan id %q: %w", id, domain.ErrNotFound)
	}
	if err := s.fans.Delete(ctx, id); err != nil {
		return err
	}
	if s.cache == nil {
		return nil
	}

	keys := []string{fanIDKey(id), computeRefKey(id)}
	if ref, err := s.cache.Get(ctx, computeRefKey(id)); err == nil && len(ref) > 0 {
		keys = append(keys, string(ref))
	}
	for _, key := range keys {
		if err := s.cache.Delete(ctx, key); err != nil {
			slog.WarnContext(ctx, "evict fan", "fan_id", id, "key", key, "error", err)
		}
	}
	return nil
}

// Corrections previews the MET correction for an azimuth and wind.
func (s *FanService) Corrections(azimuthDeg float64, w domain.Wind) domain.Correction {
	return s.model.Correct(azimuthDeg, w)
}

// Export renders a stored fan as geojson, kml or csv. It returns the body and its content type.
func (s *FanService) Export(ctx context.Context, id, format string) ([]byte, string, error) {
	ctx, span := s.tracer.Start(ctx, "FanService.Export", trace.WithAttributes(
		telemetry.AttrFanID.String(id),
		telemetry.AttrExportFormat.String(format),
	))
	defer span.End()

	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return Render(f, format, s.now())
}

// Render encodes a fan in one of the export formats. generatedAt stamps the CSV report.
func Render(f *domain.Fan, format string, generatedAt time.Time) ([]byte, string, error) {
	switch strings.ToLower(format) {
	case FormatGeoJSON:
		b, err := export.GeoJSON(&f.Polygon)
		return b, export.ContentTypeGeoJSON, err
	case FormatKML:
		b, err := export.KML(&f.Polygon)
		return b, export.ContentTypeKML, err
	case FormatCSV:
		b, err := export.Report(f, generatedAt)
		return b, export.ContentTypeCSV, err
	default:
		return nil, "", fmt.Errorf("export format %q: %w", format, domain.ErrInvalidInput)
	}
}

func (s *FanService) cachedFan(ctx context.Context, op, key string) *domain.Fan {
	if s.cache == nil || key == "" {
		return nil
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		metrics.CacheMisses.WithLabelValues(op).Inc()
		return nil
	}
	var f domain.Fan
	if err := json.Unmarshal(data, &f); err != nil {
		metrics.CacheMisses.WithLabelValues(op).Inc()
		return nil
	}
	metrics.CacheHits.WithLabelValues(op).Inc()
	return &f
}

func (s *FanService) cacheFan(ctx context.Context, key string, f *domain.Fan) {
	if s.cache == nil || key == "" {
		return
	}
	data, err := json.Marshal(f)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		slog.WarnContext(ctx, "cache fan", "key", key, "error", err)
	}
}

// cacheComputeKey remembers which compute entry holds a fan so Delete can evict it.
func (s *FanService) cacheComputeKey(ctx context.Context, id, key string) {
	if s.cache == nil || key == "" {
		return
	}
	if err := s.cache.Set(ctx, computeRefKey(id), []byte(key), s.cacheTTL); err != nil {
		slog.WarnContext(ctx, "cache compute ref", "fan_id", id, "error", err)
	}
}

// computeKey hashes everything that determines the polygon: the solution,
// the correction model and the resolution policy.
func (s *FanService) computeKey(sol domain.FiringSolution) string {
	data, err := json.Marshal(struct {
		Solution domain.FiringSolution `json:"s"`
		Model    met.Model             `json:"m"`
		Policy   string                `json:"p"`
		Steps    fan.ResolutionPolicy  `json:"st"`
	}{sol, s.model, s.policy.Name(), s.policy})
	if err != nil {
		// Non-finite geometry; fan.Compute will reject it.
		return ""
	}
	sum := sha256.Sum256(data)
	return "fans:compute:" + hex.EncodeToString(sum[:16])
}

func fanIDKey(id string) string {
	return "fans:id:" + id
}

func computeRefKey(id string) string {
	return "fans:ckey:" + id
}

// reach is the great-circle distance from the origin to the farthest vertex.
func reach(origin domain.GeoPoint, ring []domain.GeoPoint) float64 {
	var maxD float64
	for _, p := range ring {
		if d := geospatial.Haversine(origin.Lat, origin.Lon, p.Lat, p.Lon); d > maxD {
			maxD = d
		}
	}
	return maxD
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
