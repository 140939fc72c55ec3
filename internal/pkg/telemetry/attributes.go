package telemetry

import "go.opentelemetry.io/otel/attribute"

// Span attribute keys for fan instrumentation.
const (
	AttrFanID        = attribute.Key("fan.id")
	AttrFanMode      = attribute.Key("fan.mode")
	AttrFanPolicy    = attribute.Key("fan.policy")
	AttrFanVertices  = attribute.Key("fan.vertices")
	AttrFanCacheHit  = attribute.Key("fan.cache_hit")
	AttrFanAzimuth   = attribute.Key("fan.azimuth_deg")
	AttrExportFormat = attribute.Key("fan.export_format")
)
