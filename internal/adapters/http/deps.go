package http

import (
	"github.com/nats-io/nats.go"
	"github.com/samirrijal/safetyfan/internal/adapters/postgres"
	"github.com/samirrijal/safetyfan/internal/adapters/valkey"
	"github.com/samirrijal/safetyfan/internal/core/usecases"
	"github.com/samirrijal/safetyfan/internal/pkg/schema"
)

// Dependencies holds all services needed by HTTP handlers.
// Weather, NATS, DB and Cache are optional; Validator defaults to the fan request schema.
type Dependencies struct {
	Fans      *usecases.FanService
	Weather   *usecases.WeatherService
	Validator *schema.Validator
	NATS      *nats.Conn
	DB        *postgres.DB
	Cache     *valkey.Cache
}
