// Command fancalc computes a safety fan offline and writes it to stdout.
//
//	fancalc -lat 43.26 -lon -2.93 -az 90 -left 10 -right 10 -max 1000 -format kml > fan.kml
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/samirrijal/safetyfan/internal/core/domain"
	"github.com/samirrijal/safetyfan/internal/core/fan"
	"github.com/samirrijal/safetyfan/internal/core/met"
	"github.com/samirrijal/safetyfan/internal/core/usecases"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "fancalc: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("fancalc", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var sol domain.FiringSolution
	var mode string
	fs.Float64Var(&sol.Origin.Lat, "lat", 0, "origin latitude, degrees")
	fs.Float64Var(&sol.Origin.Lon, "lon", 0, "origin longitude, degrees")
	fs.Float64Var(&sol.AzimuthDeg, "az", 0, "firing azimuth, degrees clockwise from north")
	fs.Float64Var(&sol.LeftOffsetDeg, "left", 10, "left sector limit, degrees")
	fs.Float64Var(&sol.RightOffsetDeg, "right", 10, "right sector limit, degrees")
	fs.Float64Var(&sol.MinRangeM, "min", 0, "minimum range, meters")
	fs.Float64Var(&sol.MaxRangeM, "max", 1000, "maximum range, meters")
	fs.Float64Var(&sol.Wind.DirectionDeg, "wind-dir", 0, "direction the wind blows from, degrees")
	fs.Float64Var(&sol.Wind.Speed, "wind-speed", 0, "wind speed, m/s")
	fs.Float64Var(&sol.Wind.MetScale, "met-scale", 1, "MET correction scale")
	fs.StringVar(&sol.Label, "label", "", "fan label")
	fs.StringVar(&mode, "mode", "", "trajectory mode: LA or HA")
	policyName := fs.String("policy", "fixed", "resolution policy: fixed or adaptive")
	format := fs.String("format", usecases.FormatGeoJSON, "output format: geojson, kml or csv")
	if err := fs.Parse(args); err != nil {
		return err
	}
	sol.Mode = domain.TrajectoryMode(mode)

	policy, err := fan.PolicyByName(*policyName)
	if err != nil {
		return err
	}
	poly, err := fan.Compute(sol, met.Default(), policy)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	f := &domain.Fan{
		ID:        "offline",
		Solution:  sol,
		Polygon:   *poly,
		Bounds:    domain.BoundsOf(poly.Ring),
		Policy:    policy.Name(),
		CreatedAt: now,
	}
	body, _, err := usecases.Render(f, *format, now)
	if err != nil {
		return err
	}
	_, err = stdout.Write(body)
	return err
}
