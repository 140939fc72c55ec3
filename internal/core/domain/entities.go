package domain

import (
	"time"
)

// TrajectoryMode tags a fan with the trajectory it was computed for.
// It is carried through for display only.
type TrajectoryMode string

const (
	ModeLowAngle  TrajectoryMode = "LA"
	ModeHighAngle TrajectoryMode = "HA"
)

// Valid reports whether m is empty or one of the known modes.
func (m TrajectoryMode) Valid() bool {
	switch m {
	case "", ModeLowAngle, ModeHighAngle:
		return true
	}
	return false
}

// Wind is the surface wind used for the MET correction.
type Wind struct {
	DirectionDeg float64 `json:"direction_deg"` // direction the wind blows from
	Speed        float64 `json:"speed"`         // m/s
	MetScale     float64 `json:"met_scale"`     // dimensionless tuning factor
}

// Weapon identifies the ammunition profile (e.g. HE charge 3). Metadata only.
type Weapon struct {
	Nature string `json:"nature,omitempty"` // HE, IM
	Charge int    `json:"charge,omitempty"` // 1-7
}

// FiringSolution is the immutable input of one fan computation.
type FiringSolution struct {
	Origin         GeoPoint       `json:"origin"`
	AzimuthDeg     float64        `json:"azimuth_deg"`
	LeftOffsetDeg  float64        `json:"left_offset_deg"`
	RightOffsetDeg float64        `json:"right_offset_deg"`
	MinRangeM      float64        `json:"min_range_m"`
	MaxRangeM      float64        `json:"max_range_m"`
	Wind           Wind           `json:"wind"`
	Label          string         `json:"label,omitempty"`
	Mode           TrajectoryMode `json:"mode,omitempty"`
	Weapon         *Weapon        `json:"weapon,omitempty"`
}

// Correction is the additive MET adjustment applied to both radii and both bearings.
type Correction struct {
	DRangeM     float64 `json:"d_range_m"`
	DBearingDeg float64 `json:"d_bearing_deg"`
}

// FanPolygon is the closed boundary of a safety fan.
type FanPolygon struct {
	Ring            []GeoPoint     `json:"ring"`
	Correction      Correction     `json:"correction"`
	InnerRadiusM    float64        `json:"inner_radius_m"`
	OuterRadiusM    float64        `json:"outer_radius_m"`
	LeftBearingDeg  float64        `json:"left_bearing_deg"`
	RightBearingDeg float64        `json:"right_bearing_deg"`
	ArcSteps        int            `json:"arc_steps"`
	RadialSteps     int            `json:"radial_steps"`
	Label           string         `json:"label"`
	Mode            TrajectoryMode `json:"mode,omitempty"`
}

// Coordinates returns the ring as (lon, lat) pairs, the order GeoJSON and KML expect.
func (p *FanPolygon) Coordinates() [][2]float64 {
	out := make([][2]float64, len(p.Ring))
	for i, pt := range p.Ring {
		out[i] = [2]float64{pt.Lon, pt.Lat}
	}
	return out
}

// Closed reports whether the ring ends on its first point.
func (p *FanPolygon) Closed() bool {
	n := len(p.Ring)
	return n > 1 && p.Ring[0] == p.Ring[n-1]
}

// Fan is a computed polygon together with the solution that produced it.
type Fan struct {
	ID        string         `json:"id"`
	Solution  FiringSolution `json:"solution"`
	Polygon   FanPolygon     `json:"polygon"`
	Bounds    Bounds         `json:"bounds"`
	ReachM    float64        `json:"reach_m"` // great-circle distance to the farthest vertex
	Policy    string         `json:"policy"`
	CreatedAt time.Time      `json:"created_at"`
}

// FanComputedEvent is published after a fan is persisted.
type FanComputedEvent struct {
	FanID      string         `json:"fan_id"`
	Label      string         `json:"label"`
	Mode       TrajectoryMode `json:"mode,omitempty"`
	PointCount int            `json:"point_count"`
	Bounds     Bounds         `json:"bounds"`
	ComputedAt time.Time      `json:"computed_at"`
}

// FanArchivedEvent is published once a fan's export artifacts are stored.
type FanArchivedEvent struct {
	FanID      string    `json:"fan_id"`
	Objects    []string  `json:"objects"`
	ArchivedAt time.Time `json:"archived_at"`
}

// WeatherObservation is the current surface weather at a point.
type WeatherObservation struct {
	Location         GeoPoint  `json:"location"`
	TemperatureC     *float64  `json:"temperature_c,omitempty"`
	PressureHPa      *float64  `json:"pressure_hpa,omitempty"`
	WindSpeed        *float64  `json:"wind_speed,omitempty"`
	WindDirectionDeg *float64  `json:"wind_direction_deg,omitempty"`
	ObservedAt       time.Time `json:"observed_at"`
}
