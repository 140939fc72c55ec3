package fan

import (
	"fmt"
	"math"
	"strings"
)

const (
	MinArcSteps    = 8
	MinRadialSteps = 2

	// maxSteps bounds the work per edge for ranges far outside the projection's domain.
	maxSteps = 4096
)

// ResolutionPolicy picks the sampling density of a fan boundary: degrees per
// segment along the arcs and meters per segment along the radial edges.
type ResolutionPolicy interface {
	Resolve(widthDeg, depthM float64) (arcStepDeg, radialStepM float64)
	Name() string
}

// FixedPolicy samples every fan at the same density regardless of its size.
type FixedPolicy struct {
	ArcStepDeg  float64
	RadialStepM float64
}

// DefaultFixed returns 1.5 degrees per arc segment and 75 m per radial segment.
func DefaultFixed() FixedPolicy {
	return FixedPolicy{ArcStepDeg: 1.5, RadialStepM: 75}
}

func (p FixedPolicy) Resolve(_, _ float64) (float64, float64) {
	return p.ArcStepDeg, p.RadialStepM
}

func (FixedPolicy) Name() string { return "fixed" }

// AdaptivePolicy coarsens sampling for wide and deep fans so the vertex count
// stays bounded, and keeps a smoothness floor for small ones.
type AdaptivePolicy struct{}

func (AdaptivePolicy) Resolve(widthDeg, depthM float64) (float64, float64) {
	arc := clamp(60/math.Sqrt(widthDeg+1), 0.5, 3)
	radial := clamp(depthM/60, 10, 200)
	return arc, radial
}

func (AdaptivePolicy) Name() string { return "adaptive" }

// PolicyByName resolves a configured policy name.
func PolicyByName(name string) (ResolutionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "fixed":
		return DefaultFixed(), nil
	case "adaptive":
		return AdaptivePolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown resolution policy %q", name)
	}
}

// StepCounts converts the policy's step sizes into segment counts for an arc
// of arcSpanDeg and a radial edge of radialSpanM. The floors hold for any input.
func StepCounts(p ResolutionPolicy, arcSpanDeg, radialSpanM float64) (arcSteps, radialSteps int) {
	arcStep, radialStep := p.Resolve(arcSpanDeg, radialSpanM)
	return segments(arcSpanDeg, arcStep, MinArcSteps), segments(radialSpanM, radialStep, MinRadialSteps)
}

func segments(span, step float64, floor int) int {
	if !(step > 0) || math.IsInf(step, 0) {
		return floor
	}
	n := math.Ceil(span / step)
	if math.IsNaN(n) || n < float64(floor) {
		return floor
	}
	if n > maxSteps {
		return maxSteps
	}
	return int(n)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
