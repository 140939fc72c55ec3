package export

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/samirrijal/safetyfan/internal/core/domain"
)

// KMLCoordinates formats a ring as "lon,lat,0 lon,lat,0 ...". Altitude is always 0.
func KMLCoordinates(ring []domain.GeoPoint) string {
	parts := make([]string, len(ring))
	for i, p := range ring {
		parts[i] = formatFloat(p.Lon) + "," + formatFloat(p.Lat) + ",0"
	}
	return strings.Join(parts, " ")
}

// KML renders a polygon as a KML document with one placemark.
func KML(p *domain.FanPolygon) ([]byte, error) {
	var name bytes.Buffer
	if err := xml.EscapeText(&name, []byte(p.Label)); err != nil {
		return nil, fmt.Errorf("escape label: %w", err)
	}

	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&b, `<kml xmlns="http://www.opengis.net/kml/2.2"><Document><name>%s</name><Placemark><name>%s</name>`+"\n", name.String(), name.String())
	b.WriteString(`<Style><LineStyle><width>2</width></LineStyle><PolyStyle><fill>1</fill><outline>1</outline></PolyStyle></Style>` + "\n")
	fmt.Fprintf(&b, `<Polygon><outerBoundaryIs><LinearRing><coordinates>%s</coordinates></LinearRing></outerBoundaryIs></Polygon>`+"\n", KMLCoordinates(p.Ring))
	b.WriteString(`</Placemark></Document></kml>`)
	return b.Bytes(), nil
}

// ParseKMLCoordinates reads a KML coordinate string back into points. Altitude is ignored.
func ParseKMLCoordinates(s string) ([]domain.GeoPoint, error) {
	fields := strings.Fields(s)
	pts := make([]domain.GeoPoint, 0, len(fields))
	for _, f := range fields {
		parts := strings.Split(f, ",")
		if len(parts) < 2 {
			return nil, fmt.Errorf("malformed coordinate %q", f)
		}
		lon, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, fmt.Errorf("longitude %q: %w", parts[0], err)
		}
		lat, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("latitude %q: %w", parts[1], err)
		}
		pts = append(pts, domain.GeoPoint{Lat: lat, Lon: lon})
	}
	return pts, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
