package main

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/samirrijal/safetyfan/internal/core/domain"
	"github.com/samirrijal/safetyfan/internal/pkg/export"
)

func TestRun_GeoJSON(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"-lat", "43.26", "-lon", "-2.93", "-az", "90", "-max", "1000"}, &out, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	ring, err := export.ParseGeoJSON(out.Bytes())
	if err != nil {
		t.Fatalf("output is not a fan polygon: %v", err)
	}
	if len(ring) != 61 {
		t.Errorf("expected 61 points, got %d", len(ring))
	}
}

func TestRun_KML(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"-lat", "10", "-lon", "20", "-format", "kml", "-label", "Battery A"}, &out, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "<coordinates>") || !strings.Contains(out.String(), "Battery A") {
		t.Errorf("unexpected KML:\n%s", out.String())
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"polar origin", []string{"-lat", "90"}, domain.ErrSingularProjection},
		{"unknown format", []string{"-format", "shp"}, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(tt.args, io.Discard, io.Discard)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if err := run([]string{"-policy", "dense"}, io.Discard, io.Discard); err == nil {
		t.Error("expected error for unknown policy")
	}
}
