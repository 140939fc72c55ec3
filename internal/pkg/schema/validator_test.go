package schema

import (
	"errors"
	"testing"
)

func TestFanRequest_Valid(t *testing.T) {
	v := MustFanRequest()
	body := `{
		"origin": {"lat": 43.26, "lon": -2.93},
		"azimuth_deg": 45,
		"left_offset_deg": 10,
		"right_offset_deg": 15,
		"min_range_m": 500,
		"max_range_m": 8000,
		"wind": {"direction_deg": 270, "speed": 6, "met_scale": 1},
		"mode": "LA",
		"weapon": {"nature": "HE", "charge": 4}
	}`
	if err := v.ValidateBytes([]byte(body)); err != nil {
		t.Fatalf("expected valid body, got %v", err)
	}
}

func TestFanRequest_Invalid(t *testing.T) {
	v := MustFanRequest()
	tests := map[string]string{
		"missing origin":   `{"azimuth_deg": 1, "left_offset_deg": 1, "right_offset_deg": 1, "max_range_m": 1}`,
		"latitude too big": `{"origin": {"lat": 95, "lon": 0}, "azimuth_deg": 1, "left_offset_deg": 1, "right_offset_deg": 1, "max_range_m": 1}`,
		"negative offset":  `{"origin": {"lat": 0, "lon": 0}, "azimuth_deg": 1, "left_offset_deg": -1, "right_offset_deg": 1, "max_range_m": 1}`,
		"unknown mode":     `{"origin": {"lat": 0, "lon": 0}, "azimuth_deg": 1, "left_offset_deg": 1, "right_offset_deg": 1, "max_range_m": 1, "mode": "XX"}`,
		"string azimuth":   `{"origin": {"lat": 0, "lon": 0}, "azimuth_deg": "north", "left_offset_deg": 1, "right_offset_deg": 1, "max_range_m": 1}`,
		"not json":         `{"origin":`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			err := v.ValidateBytes([]byte(body))
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(verr.Details) == 0 {
				t.Error("expected at least one detail")
			}
		})
	}
}

func TestValidate_GoValue(t *testing.T) {
	v := MustFanRequest()
	doc := map[string]interface{}{
		"origin":           map[string]interface{}{"lat": 1.0, "lon": 2.0},
		"azimuth_deg":      0.0,
		"left_offset_deg":  5.0,
		"right_offset_deg": 5.0,
		"max_range_m":      1000.0,
	}
	if err := v.Validate(doc); err != nil {
		t.Fatalf("expected valid document, got %v", err)
	}
}

func TestNewValidator_BadSchema(t *testing.T) {
	if _, err := NewValidator([]byte(`{"type": "nonsense"}`)); err == nil {
		t.Error("expected compile error")
	}
}
