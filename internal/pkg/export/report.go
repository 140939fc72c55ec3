package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/samirrijal/safetyfan/internal/core/domain"
)

// reportVertexLimit caps how many vertices the CSV report lists.
const reportVertexLimit = 20

// Report writes a flat key/value CSV summary of a fan: inputs, correction,
// point count and the first vertices of the ring.
func Report(f *domain.Fan, generatedAt time.Time) ([]byte, error) {
	s := f.Solution
	num := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

	weapon := ""
	if s.Weapon != nil {
		weapon = fmt.Sprintf("%s C%d", s.Weapon.Nature, s.Weapon.Charge)
	}

	rows := [][]string{
		{"SAFETY FAN export"},
		{"Datetime (UTC)", generatedAt.UTC().Format(time.RFC3339)},
		{"Fan ID", f.ID},
		{"Label", s.Label},
		{},
		{"Lat", num(s.Origin.Lat)},
		{"Lon", num(s.Origin.Lon)},
		{"Az", num(s.AzimuthDeg)},
		{"Left", num(s.LeftOffsetDeg)},
		{"Right", num(s.RightOffsetDeg)},
		{"MinR", num(s.MinRangeM)},
		{"MaxR", num(s.MaxRangeM)},
		{"Weapon", weapon},
		{"Mode", string(s.Mode)},
		{"WindFrom", num(s.Wind.DirectionDeg)},
		{"WindSpd", num(s.Wind.Speed)},
		{"MetScale", num(s.Wind.MetScale)},
		{},
		{"dRange", strconv.FormatFloat(f.Polygon.Correction.DRangeM, 'f', 1, 64)},
		{"dBearing", strconv.FormatFloat(f.Polygon.Correction.DBearingDeg, 'f', 2, 64)},
		{"Policy", f.Policy},
		{"Fan points", strconv.Itoa(len(f.Polygon.Ring))},
		{},
		{"lon", "lat"},
	}
	for i, p := range f.Polygon.Ring {
		if i == reportVertexLimit {
			break
		}
		rows = append(rows, []string{num(p.Lon), num(p.Lat)})
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	return buf.Bytes(), nil
}
