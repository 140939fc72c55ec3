package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

type fakePool struct{ acquired, idle, total int32 }

func (f fakePool) AcquiredConns() int32 { return f.acquired }
func (f fakePool) IdleConns() int32     { return f.idle }
func (f fakePool) TotalConns() int32    { return f.total }

func scrape(t *testing.T) string {
	t.Helper()
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/metrics", Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	return string(body)
}

func TestUpdateDBPoolMetrics(t *testing.T) {
	UpdateDBPoolMetrics(fakePool{acquired: 3, idle: 7, total: 10})

	body := scrape(t)
	for _, want := range []string{
		"safetyfan_db_pool_conns_acquired 3",
		"safetyfan_db_pool_conns_idle 7",
		"safetyfan_db_pool_conns_open 10",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %q", want)
		}
	}
}

func TestModeLabel(t *testing.T) {
	if ModeLabel("") != "any" || ModeLabel("HA") != "HA" {
		t.Error("unexpected mode label")
	}
}

func TestHandler_ExposesFanMetrics(t *testing.T) {
	FanComputations.WithLabelValues("LA", "ok").Inc()

	if !strings.Contains(scrape(t), `safetyfan_fan_computations_total{mode="LA",outcome="ok"}`) {
		t.Errorf("fan counter missing from exposition")
	}
}
