// Package geospatial holds the local tangent-plane projection used to turn
// bearing/range pairs around a reference point into latitude/longitude.
//
// The projection is equirectangular: it treats a small neighbourhood of the
// origin as flat. It is accurate to a fraction of a percent for spans under
// ~50 km at mid-latitudes and degrades towards the poles, where cos(lat0)
// approaches zero.
package geospatial

import "math"

// EarthRadiusM is the mean Earth radius used by the spherical approximation.
const EarthRadiusM = 6_371_000.0

// PolarToOffset converts a compass bearing (degrees clockwise from north) and a
// range in meters into an east/north offset. Note sin gives easting and cos
// gives northing, the reverse of the mathematical convention.
func PolarToOffset(bearingDeg, rangeM float64) (dx, dy float64) {
	th := toRad(bearingDeg)
	return rangeM * math.Sin(th), rangeM * math.Cos(th)
}

// OffsetToPolar is the inverse of PolarToOffset. The bearing is in [0, 360).
func OffsetToPolar(dx, dy float64) (bearingDeg, rangeM float64) {
	rangeM = math.Hypot(dx, dy)
	if rangeM == 0 {
		return 0, 0
	}
	bearingDeg = math.Mod(toDeg(math.Atan2(dx, dy))+360, 360)
	return bearingDeg, rangeM
}

// OffsetToGeo shifts (lat0, lon0) by dx meters east and dy meters north.
// No guard against the pole singularity: callers validate the origin.
func OffsetToGeo(lat0, lon0, dx, dy float64) (lat, lon float64) {
	dLat := dy / EarthRadiusM
	dLon := dx / (EarthRadiusM * math.Cos(toRad(lat0)))
	return lat0 + toDeg(dLat), lon0 + toDeg(dLon)
}

// GeoToOffset is the inverse of OffsetToGeo for the same origin.
func GeoToOffset(lat0, lon0, lat, lon float64) (dx, dy float64) {
	dy = toRad(lat-lat0) * EarthRadiusM
	dx = toRad(lon-lon0) * EarthRadiusM * math.Cos(toRad(lat0))
	return dx, dy
}

// Project maps a bearing/range pair around (lat0, lon0) straight to geographic coordinates.
func Project(lat0, lon0, bearingDeg, rangeM float64) (lat, lon float64) {
	dx, dy := PolarToOffset(bearingDeg, rangeM)
	return OffsetToGeo(lat0, lon0, dx, dy)
}
