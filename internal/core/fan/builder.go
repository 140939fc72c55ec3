// Package fan builds safety-fan polygons: annular sectors around a firing
// point, corrected for wind and sampled by a pluggable resolution policy.
package fan

import (
	"math"

	"github.com/samirrijal/safetyfan/internal/core/domain"
	"github.com/samirrijal/safetyfan/internal/pkg/geospatial"
)

// minArcSpanDeg keeps the arc span strictly positive.
const minArcSpanDeg = 1e-6

// Geometry is the corrected sector a boundary is traced from.
type Geometry struct {
	LeftDeg     float64
	RightDeg    float64
	InnerR      float64
	OuterR      float64
	ArcSpan     float64
	RadialSpan  float64
	ArcSteps    int
	RadialSteps int
}

// Plan applies the correction to the sector and resolves its step counts.
// Ill-ordered ranges are clamped: the inner radius never goes below zero and
// the outer never below the inner.
func Plan(azimuth, leftOffset, rightOffset, maxRange, minRange float64, corr domain.Correction, policy ResolutionPolicy) Geometry {
	g := Geometry{
		LeftDeg:  azimuth - leftOffset + corr.DBearingDeg,
		RightDeg: azimuth + rightOffset + corr.DBearingDeg,
	}
	g.InnerR = math.Max(0, minRange+corr.DRangeM)
	g.OuterR = math.Max(g.InnerR, maxRange+corr.DRangeM)

	g.ArcSpan = math.Max(minArcSpanDeg, math.Abs(g.RightDeg-g.LeftDeg))
	g.RadialSpan = math.Max(0, g.OuterR-g.InnerR)
	g.ArcSteps, g.RadialSteps = StepCounts(policy, g.ArcSpan, g.RadialSpan)
	return g
}

// PointCount is the number of vertices Trace emits, closing point included.
func (g Geometry) PointCount() int {
	return 2*(g.ArcSteps+1) + 2*(g.RadialSteps+1) + 1
}

// Trace walks the boundary around origin: left radial outwards, outer arc
// left to right, right radial inwards, inner arc right to left, then repeats
// the first point to close the ring. If the correction leaves RightDeg below
// LeftDeg the arcs run the other way; that case is not detected.
func (g Geometry) Trace(origin domain.GeoPoint) []domain.GeoPoint {
	pts := make([]domain.GeoPoint, 0, g.PointCount())
	at := func(bearing, r float64) {
		lat, lon := geospatial.Project(origin.Lat, origin.Lon, bearing, r)
		pts = append(pts, domain.GeoPoint{Lat: lat, Lon: lon})
	}

	nr := float64(g.RadialSteps)
	na := float64(g.ArcSteps)

	for i := 0; i <= g.RadialSteps; i++ {
		at(g.LeftDeg, g.InnerR+g.RadialSpan*float64(i)/nr)
	}
	for i := 0; i <= g.ArcSteps; i++ {
		at(g.LeftDeg+g.ArcSpan*float64(i)/na, g.OuterR)
	}
	for i := 0; i <= g.RadialSteps; i++ {
		at(g.RightDeg, g.OuterR-g.RadialSpan*float64(i)/nr)
	}
	for i := 0; i <= g.ArcSteps; i++ {
		at(g.RightDeg-g.ArcSpan*float64(i)/na, g.InnerR)
	}

	pts = append(pts, pts[0])
	return pts
}

// Build returns the closed boundary ring of a corrected fan.
func Build(origin domain.GeoPoint, azimuth, leftOffset, rightOffset, maxRange, minRange float64, corr domain.Correction, policy ResolutionPolicy) []domain.GeoPoint {
	return Plan(azimuth, leftOffset, rightOffset, maxRange, minRange, corr, policy).Trace(origin)
}
