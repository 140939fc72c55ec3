package schema

// FanRequestSchema describes the body of POST /v1/fans.
// Ranges are capped at 100 km: beyond that the flat-Earth projection is meaningless.
const FanRequestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["origin", "azimuth_deg", "left_offset_deg", "right_offset_deg", "max_range_m"],
  "properties": {
    "origin": {
      "type": "object",
      "required": ["lat", "lon"],
      "properties": {
        "lat": {"type": "number", "minimum": -90, "maximum": 90},
        "lon": {"type": "number", "minimum": -180, "maximum": 180}
      }
    },
    "azimuth_deg":      {"type": "number"},
    "left_offset_deg":  {"type": "number", "minimum": 0, "maximum": 180},
    "right_offset_deg": {"type": "number", "minimum": 0, "maximum": 180},
    "min_range_m":      {"type": "number", "minimum": 0, "maximum": 100000},
    "max_range_m":      {"type": "number", "minimum": 0, "maximum": 100000},
    "wind": {
      "type": "object",
      "properties": {
        "direction_deg": {"type": "number"},
        "speed":         {"type": "number", "minimum": 0},
        "met_scale":     {"type": "number"}
      }
    },
    "label": {"type": "string", "maxLength": 200},
    "mode":  {"type": "string", "enum": ["", "LA", "HA"]},
    "weapon": {
      "type": "object",
      "properties": {
        "nature": {"type": "string", "enum": ["HE", "IM"]},
        "charge": {"type": "integer", "minimum": 1, "maximum": 7}
      }
    },
    "sync_weather": {"type": "boolean"}
  }
}`
