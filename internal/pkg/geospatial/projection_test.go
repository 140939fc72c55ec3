package geospatial

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// Bearing 90 must move east, not north. Swapping sin/cos rotates every fan by 90 degrees.
func TestPolarToOffset_CompassConvention(t *testing.T) {
	tests := []struct {
		bearing, rng float64
		dx, dy       float64
	}{
		{0, 1000, 0, 1000},
		{90, 1000, 1000, 0},
		{180, 1000, 0, -1000},
		{270, 1000, -1000, 0},
		{45, math.Sqrt2 * 1000, 1000, 1000},
	}
	for _, tt := range tests {
		dx, dy := PolarToOffset(tt.bearing, tt.rng)
		if !almostEqual(dx, tt.dx, 1e-9) || !almostEqual(dy, tt.dy, 1e-9) {
			t.Errorf("PolarToOffset(%v, %v) = (%v, %v), want (%v, %v)", tt.bearing, tt.rng, dx, dy, tt.dx, tt.dy)
		}
	}
}

func TestPolarToOffset_NegativeRangeMirrors(t *testing.T) {
	dx, dy := PolarToOffset(0, -500)
	if !almostEqual(dx, 0, 1e-9) || !almostEqual(dy, -500, 1e-9) {
		t.Errorf("expected mirrored point (0, -500), got (%v, %v)", dx, dy)
	}
}

func TestOffsetToGeo_KnownValues(t *testing.T) {
	lat, lon := OffsetToGeo(0, 0, 0, EarthRadiusM*math.Pi/180)
	if !almostEqual(lat, 1, 1e-12) || !almostEqual(lon, 0, 1e-12) {
		t.Errorf("one degree north: got (%v, %v)", lat, lon)
	}

	// At 60 degrees latitude a degree of longitude is half as long.
	lat, lon = OffsetToGeo(60, 10, EarthRadiusM*math.Pi/180/2, 0)
	if !almostEqual(lat, 60, 1e-12) || !almostEqual(lon, 11, 1e-9) {
		t.Errorf("half degree east at 60N: got (%v, %v)", lat, lon)
	}
}

func TestProjection_RoundTrip(t *testing.T) {
	origins := [][2]float64{{0, 0}, {43.263, -2.935}, {-33.9, 151.2}, {60, 25}}
	for _, o := range origins {
		for bearing := 0.0; bearing < 360; bearing += 17.5 {
			for _, rng := range []float64{25, 1000, 9999} {
				lat, lon := Project(o[0], o[1], bearing, rng)
				dx, dy := GeoToOffset(o[0], o[1], lat, lon)
				gotBearing, gotRange := OffsetToPolar(dx, dy)

				if math.Abs(gotRange-rng)/rng > 1e-3 {
					t.Errorf("origin %v bearing %v: range %v -> %v", o, bearing, rng, gotRange)
				}
				diff := math.Abs(math.Mod(gotBearing-bearing+540, 360) - 180)
				if diff > 1e-3*360 {
					t.Errorf("origin %v range %v: bearing %v -> %v", o, rng, bearing, gotBearing)
				}
			}
		}
	}
}

func TestProject_DistanceMatchesHaversine(t *testing.T) {
	lat, lon := Project(43.263, -2.935, 33, 5000)
	d := Haversine(43.263, -2.935, lat, lon)
	if math.Abs(d-5000)/5000 > 1e-3 {
		t.Errorf("expected ~5000 m, got %.3f", d)
	}
}

func TestOffsetToPolar_Zero(t *testing.T) {
	b, r := OffsetToPolar(0, 0)
	if b != 0 || r != 0 {
		t.Errorf("expected (0, 0), got (%v, %v)", b, r)
	}
}

func TestBoundingBox_ContainsRadius(t *testing.T) {
	minLat, minLon, maxLat, maxLon := BoundingBox(43.26, -2.93, 1000)
	if !(minLat < 43.26 && maxLat > 43.26 && minLon < -2.93 && maxLon > -2.93) {
		t.Fatalf("box does not contain centre: %v %v %v %v", minLat, minLon, maxLat, maxLon)
	}
	north := Haversine(43.26, -2.93, maxLat, -2.93)
	if math.Abs(north-1000) > 1 {
		t.Errorf("expected north edge ~1000 m away, got %.2f", north)
	}
}
