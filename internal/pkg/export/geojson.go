// Package export renders computed fans into the formats map tools consume:
// GeoJSON, KML and a flat CSV report.
package export

import (
	"encoding/json"
	"fmt"

	"github.com/samirrijal/safetyfan/internal/core/domain"
)

const (
	ContentTypeGeoJSON = "application/geo+json"
	ContentTypeKML     = "application/vnd.google-earth.kml+xml"
	ContentTypeCSV     = "text/csv; charset=utf-8"
)

// FeatureCollection is a GeoJSON feature collection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is a GeoJSON feature.
type Feature struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Geometry   Geometry       `json:"geometry"`
}

// Geometry is a GeoJSON polygon geometry. Coordinates are [lon, lat].
type Geometry struct {
	Type        string         `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}

// NewFeatureCollection wraps a polygon as a single-feature collection with one linear ring.
func NewFeatureCollection(p *domain.FanPolygon) FeatureCollection {
	props := map[string]any{"name": p.Label}
	if p.Mode != "" {
		props["mode"] = string(p.Mode)
	}
	return FeatureCollection{
		Type: "FeatureCollection",
		Features: []Feature{{
			Type:       "Feature",
			Properties: props,
			Geometry: Geometry{
				Type:        "Polygon",
				Coordinates: [][][2]float64{p.Coordinates()},
			},
		}},
	}
}

// GeoJSON encodes a polygon as a GeoJSON FeatureCollection.
func GeoJSON(p *domain.FanPolygon) ([]byte, error) {
	return json.Marshal(NewFeatureCollection(p))
}

// ParseGeoJSON returns the outer ring of the first polygon feature.
func ParseGeoJSON(data []byte) ([]domain.GeoPoint, error) {
	var fc FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	for _, f := range fc.Features {
		if f.Geometry.Type != "Polygon" || len(f.Geometry.Coordinates) == 0 {
			continue
		}
		ring := f.Geometry.Coordinates[0]
		pts := make([]domain.GeoPoint, len(ring))
		for i, c := range ring {
			pts[i] = domain.GeoPoint{Lon: c[0], Lat: c[1]}
		}
		return pts, nil
	}
	return nil, fmt.Errorf("no polygon feature in collection")
}
