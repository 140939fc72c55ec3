// Package met converts surface wind into range and bearing corrections for a safety fan.
//
// The model is a linear placeholder: it does not depend on range, ammunition
// or air density. RangeFactor and BearingFactor are calibration constants.
package met

import (
	"math"

	"github.com/samirrijal/safetyfan/internal/core/domain"
)

const (
	DefaultRangeFactor   = 10.0 // meters per (m/s) of head/tail wind
	DefaultBearingFactor = 2.0  // degrees at full crosswind
)

// Model holds the calibration constants of the correction.
type Model struct {
	RangeFactor   float64
	BearingFactor float64
}

// Default returns the model with the stock constants.
func Default() Model {
	return Model{RangeFactor: DefaultRangeFactor, BearingFactor: DefaultBearingFactor}
}

// RelativeBearing returns the wind direction relative to the firing azimuth,
// shifted into [-180, 180) for inputs in the usual ranges. The +540 keeps the
// dividend positive before the modulo.
func RelativeBearing(windDirDeg, azimuthDeg float64) float64 {
	return math.Mod(windDirDeg-azimuthDeg+540, 360) - 180
}

// Correct computes the range and bearing adjustment for a wind relative to azimuthDeg.
// Non-finite inputs propagate into the result.
func (m Model) Correct(azimuthDeg float64, w domain.Wind) domain.Correction {
	rel := RelativeBearing(w.DirectionDeg, azimuthDeg) * math.Pi / 180
	headTail := math.Cos(rel)
	cross := math.Sin(rel)
	return domain.Correction{
		DRangeM:     w.MetScale * w.Speed * m.RangeFactor * headTail,
		DBearingDeg: w.MetScale * cross * m.BearingFactor,
	}
}

// Correct applies the default model.
func Correct(azimuthDeg float64, w domain.Wind) domain.Correction {
	return Default().Correct(azimuthDeg, w)
}
