package http

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/safetyfan/internal/core/domain"
	"github.com/samirrijal/safetyfan/internal/core/met"
	"github.com/samirrijal/safetyfan/internal/core/usecases"
	"github.com/samirrijal/safetyfan/internal/pkg/schema"
)

// defaultMetScale applies when a request carries wind without a met_scale.
const defaultMetScale = 1.0

type windRequest struct {
	DirectionDeg float64  `json:"direction_deg"`
	Speed        float64  `json:"speed"`
	MetScale     *float64 `json:"met_scale"`
}

func (w *windRequest) wind() domain.Wind {
	if w == nil {
		return domain.Wind{MetScale: defaultMetScale}
	}
	scale := defaultMetScale
	if w.MetScale != nil {
		scale = *w.MetScale
	}
	return domain.Wind{DirectionDeg: w.DirectionDeg, Speed: w.Speed, MetScale: scale}
}

// fanRequest is the body of POST /v1/fans.
type fanRequest struct {
	Origin         domain.GeoPoint       `json:"origin"`
	AzimuthDeg     float64               `json:"azimuth_deg"`
	LeftOffsetDeg  float64               `json:"left_offset_deg"`
	RightOffsetDeg float64               `json:"right_offset_deg"`
	MinRangeM      float64               `json:"min_range_m"`
	MaxRangeM      float64               `json:"max_range_m"`
	Wind           *windRequest          `json:"wind"`
	Label          string                `json:"label"`
	Mode           domain.TrajectoryMode `json:"mode"`
	Weapon         *domain.Weapon        `json:"weapon"`
	SyncWeather    bool                  `json:"sync_weather"`
}

func (r fanRequest) solution() domain.FiringSolution {
	return domain.FiringSolution{
		Origin:         r.Origin,
		AzimuthDeg:     r.AzimuthDeg,
		LeftOffsetDeg:  r.LeftOffsetDeg,
		RightOffsetDeg: r.RightOffsetDeg,
		MinRangeM:      r.MinRangeM,
		MaxRangeM:      r.MaxRangeM,
		Wind:           r.Wind.wind(),
		Label:          r.Label,
		Mode:           r.Mode,
		Weapon:         r.Weapon,
	}
}

// correctionRequest is the body of POST /v1/met/corrections.
type correctionRequest struct {
	AzimuthDeg float64      `json:"azimuth_deg"`
	Wind       *windRequest `json:"wind"`
}

// CorrectionResponse previews the MET correction for a firing azimuth.
type CorrectionResponse struct {
	domain.Correction
	RelativeBearingDeg float64 `json:"relative_bearing_deg"`
}

// ComputeFanResponse is a computed fan, plus the weather used when it was synced.
type ComputeFanResponse struct {
	*domain.Fan
	Weather *domain.WeatherObservation `json:"weather,omitempty"`
}

func validator(deps *Dependencies) *schema.Validator {
	if deps.Validator != nil {
		return deps.Validator
	}
	return schema.MustFanRequest()
}

// ComputeFanHandler validates a firing solution and computes its safety fan.
func ComputeFanHandler(deps *Dependencies) fiber.Handler {
	v := validator(deps)

	return func(c *fiber.Ctx) error {
		body := c.Body()
		if err := v.ValidateBytes(body); err != nil {
			return errFromDomain(c, err)
		}

		var req fanRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		sol := req.solution()
		ctx := c.UserContext()

		var obs *domain.WeatherObservation
		if req.SyncWeather {
			if deps.Weather == nil {
				return errUnavailable(c, "weather sync is not configured")
			}
			var err error
			if obs, err = deps.Weather.ApplyTo(ctx, &sol); err != nil {
				LoggerFromCtx(ctx).Warn("weather sync failed", "error", err)
				return errBadGateway(c, "weather sync failed")
			}
		}

		f, err := deps.Fans.Compute(ctx, sol)
		if err != nil {
			return errFromDomain(c, err)
		}

		c.Location("/v1/fans/" + f.ID)
		return c.Status(fiber.StatusCreated).JSON(ComputeFanResponse{Fan: f, Weather: obs})
	}
}

// ListFansHandler returns stored fans, newest first.
func ListFansHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset, limit := pageParams(c, 50, 200)

		fans, total, err := deps.Fans.List(c.UserContext(), offset, limit)
		if err != nil {
			return errFromDomain(c, err)
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: fans, Pagination: pg})
	}
}

// GetFanHandler returns a single fan by ID.
func GetFanHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := deps.Fans.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(f)
	}
}

// DeleteFanHandler removes a stored fan.
func DeleteFanHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Fans.Delete(c.UserContext(), c.Params("id")); err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ExportFanHandler serves a fan as a downloadable geojson, kml or csv file.
func ExportFanHandler(deps *Dependencies, format, filename string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		body, contentType, err := deps.Fans.Export(c.UserContext(), id, format)
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Set(fiber.HeaderContentType, contentType)
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+id+"-"+filename+`"`)
		return c.Send(body)
	}
}

// METCorrectionHandler previews the range and bearing correction for a wind.
func METCorrectionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req correctionRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		w := req.Wind.wind()
		return c.JSON(CorrectionResponse{
			Correction:         deps.Fans.Corrections(req.AzimuthDeg, w),
			RelativeBearingDeg: met.RelativeBearing(w.DirectionDeg, req.AzimuthDeg),
		})
	}
}

// WeatherHandler returns the current surface weather at lat/lon.
func WeatherHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Weather == nil {
			return errUnavailable(c, "weather is not configured")
		}
		lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
		lon, err2 := strconv.ParseFloat(c.Query("lon"), 64)
		if err1 != nil || err2 != nil {
			return errBadRequest(c, "lat and lon are required")
		}

		obs, err := deps.Weather.Current(c.UserContext(), lat, lon)
		if err != nil {
			if isDomainError(err) {
				return errFromDomain(c, err)
			}
			LoggerFromCtx(c.UserContext()).Warn("weather fetch failed", "error", err)
			return errBadGateway(c, "weather provider unavailable")
		}
		return c.JSON(obs)
	}
}

// exportRoutes maps export path suffixes to formats and download names.
var exportRoutes = []struct {
	suffix, format, filename string
}{
	{"geojson", usecases.FormatGeoJSON, "fan.geojson"},
	{"kml", usecases.FormatKML, "fan.kml"},
	{"report.csv", usecases.FormatCSV, "report.csv"},
}
