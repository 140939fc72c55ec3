package fan

import (
	"fmt"
	"math"

	"github.com/samirrijal/safetyfan/internal/core/domain"
	"github.com/samirrijal/safetyfan/internal/core/met"
)

// DefaultLabel names fans submitted without a label.
const DefaultLabel = "Safety Fan"

// MaxOriginLatDeg is the highest origin latitude the flat-Earth projection accepts.
// At 89.9 degrees a meter east is already ~570 times longer in degrees than at the equator.
const MaxOriginLatDeg = 89.9

// Validate checks the parts of a solution the geometry cannot repair.
// Ranges are not ordered here: Plan clamps them.
func Validate(s domain.FiringSolution) error {
	if !s.Origin.Valid() {
		return fmt.Errorf("origin (%v, %v): %w", s.Origin.Lat, s.Origin.Lon, domain.ErrInvalidInput)
	}
	if math.Abs(s.Origin.Lat) > MaxOriginLatDeg {
		return fmt.Errorf("origin latitude %v beyond ±%v: %w", s.Origin.Lat, MaxOriginLatDeg, domain.ErrSingularProjection)
	}

	scalars := []struct {
		name string
		v    float64
	}{
		{"azimuth", s.AzimuthDeg},
		{"left offset", s.LeftOffsetDeg},
		{"right offset", s.RightOffsetDeg},
		{"min range", s.MinRangeM},
		{"max range", s.MaxRangeM},
	}
	for _, sc := range scalars {
		if math.IsNaN(sc.v) || math.IsInf(sc.v, 0) {
			return fmt.Errorf("%s is not finite: %w", sc.name, domain.ErrInvalidInput)
		}
	}
	if s.LeftOffsetDeg < 0 || s.RightOffsetDeg < 0 {
		return fmt.Errorf("angular offsets must be non-negative: %w", domain.ErrInvalidInput)
	}
	if !s.Mode.Valid() {
		return fmt.Errorf("trajectory mode %q: %w", s.Mode, domain.ErrInvalidInput)
	}
	return nil
}

// Compute validates a firing solution, applies the MET correction and builds its polygon.
func Compute(s domain.FiringSolution, model met.Model, policy ResolutionPolicy) (*domain.FanPolygon, error) {
	if err := Validate(s); err != nil {
		return nil, err
	}

	corr := model.Correct(s.AzimuthDeg, s.Wind)
	g := Plan(s.AzimuthDeg, s.LeftOffsetDeg, s.RightOffsetDeg, s.MaxRangeM, s.MinRangeM, corr, policy)

	label := s.Label
	if label == "" {
		label = DefaultLabel
	}

	return &domain.FanPolygon{
		Ring:            g.Trace(s.Origin),
		Correction:      corr,
		InnerRadiusM:    g.InnerR,
		OuterRadiusM:    g.OuterR,
		LeftBearingDeg:  g.LeftDeg,
		RightBearingDeg: g.RightDeg,
		ArcSteps:        g.ArcSteps,
		RadialSteps:     g.RadialSteps,
		Label:           label,
		Mode:            s.Mode,
	}, nil
}
