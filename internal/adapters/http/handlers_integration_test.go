//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/samirrijal/safetyfan/internal/adapters/http"
	"github.com/samirrijal/safetyfan/internal/adapters/postgres"
	"github.com/samirrijal/safetyfan/internal/core/domain"
	"github.com/samirrijal/safetyfan/internal/core/usecases"
	"github.com/samirrijal/safetyfan/internal/pkg/config"
)

// setupTestDB connects to the test database. The fans table must already be migrated.
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("safetyfan-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := postgres.New(ctx, cfg.Database.DSN(), 4)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return db
}

// setupTestDeps creates dependencies with the real fan repo, no cache or broker.
func setupTestDeps(db *postgres.DB) *http.Dependencies {
	return &http.Dependencies{
		Fans: usecases.NewFanService(postgres.NewFanRepo(db), nil, nil, usecases.FanOptions{}),
		DB:   db,
	}
}

func TestFanLifecycle_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()
	app := setupApp(setupTestDeps(db))

	label := "integ-" + time.Now().Format("20060102150405")
	body := strings.Replace(validFanBody, `"Gun 1"`, `"`+label+`"`, 1)
	created := postJSON(t, app, "/v1/fans", body)
	if created.Status != 201 {
		t.Fatalf("create: expected 201, got %d: %s", created.Status, created.Body)
	}
	var f domain.Fan
	if err := json.Unmarshal(created.Body, &f); err != nil {
		t.Fatalf("decode: %v", err)
	}

	fetched := get(t, app, "/v1/fans/"+f.ID)
	if fetched.Status != 200 {
		t.Fatalf("get: expected 200, got %d", fetched.Status)
	}
	var got domain.Fan
	if err := json.Unmarshal(fetched.Body, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Solution.Label != label || len(got.Polygon.Ring) != len(f.Polygon.Ring) {
		t.Errorf("round trip mismatch: label %q, %d points", got.Solution.Label, len(got.Polygon.Ring))
	}
	if got.Bounds != f.Bounds {
		t.Errorf("bounds %+v, want %+v", got.Bounds, f.Bounds)
	}

	list := get(t, app, "/v1/fans?limit=1")
	if list.Status != 200 {
		t.Fatalf("list: expected 200, got %d", list.Status)
	}
	var page struct {
		Data       []domain.Fan `json:"data"`
		Pagination struct{ Total int } `json:"pagination"`
	}
	if err := json.Unmarshal(list.Body, &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Pagination.Total < 1 || len(page.Data) != 1 || page.Data[0].ID != f.ID {
		t.Errorf("newest fan should head the list, got %+v", page.Pagination)
	}

	resp, err := app.Test(httptest.NewRequest("DELETE", "/v1/fans/"+f.ID, nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 204 {
		t.Fatalf("delete: expected 204, got %d", resp.StatusCode)
	}
	if gone := get(t, app, "/v1/fans/"+f.ID); gone.Status != 404 {
		t.Errorf("after delete: expected 404, got %d", gone.Status)
	}
}

func TestReady_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()

	if resp := get(t, setupApp(setupTestDeps(db)), "/v1/ready"); resp.Status != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.Status, resp.Body)
	}
}
