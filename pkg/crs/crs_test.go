package crs

import (
	"math"
	"testing"

	"github.com/mrhoney81/routethink/pkg/track"
)

func TestEquirectangularScale(t *testing.T) {
	proj := NewEquirectangular(0)
	x1, y1, _ := proj.Forward(0, 0)
	x2, y2, _ := proj.Forward(0, 0.001)
	d := math.Hypot(x2-x1, y2-y1)
	// 0.001 degrees of latitude is roughly 111.2 m everywhere
	if d < 110 || d > 112 {
		t.Fatalf("unexpected meridian distance: %v", d)
	}
}

func TestEquirectangularLongitudeShrinks(t *testing.T) {
	equator := NewEquirectangular(0)
	alpine := NewEquirectangular(47)
	xe, _, _ := equator.Forward(0.01, 0)
	xa, _, _ := alpine.Forward(0.01, 47)
	if xa >= xe {
		t.Fatalf("longitude step should shrink with latitude: %v >= %v", xa, xe)
	}
	ratio := xa / xe
	want := math.Cos(47 * math.Pi / 180)
	if math.Abs(ratio-want) > 1e-9 {
		t.Fatalf("expected ratio %v, got %v", want, ratio)
	}
}

func TestForTrackOutsideGB(t *testing.T) {
	points := []track.Point{
		{Lat: 47.00, Lon: 8.00},
		{Lat: 47.01, Lon: 8.00},
	}
	proj, err := ForTrack(points)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proj.Name() != "equirectangular" {
		t.Fatalf("expected equirectangular projection, got %s", proj.Name())
	}
}

func TestForTrackInsideGB(t *testing.T) {
	points := []track.Point{
		{Lat: 52.20, Lon: 0.12},
		{Lat: 52.21, Lon: 0.13},
	}
	proj, err := ForTrack(points)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proj.Name() != "osgb36" {
		t.Fatalf("expected osgb36 projection, got %s", proj.Name())
	}
	x, y, err := proj.Forward(0.12, 52.20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Cambridge is roughly easting 545000, northing 258000
	if x < 500000 || x > 600000 || y < 200000 || y > 300000 {
		t.Fatalf("unexpected grid coordinates: (%v, %v)", x, y)
	}
}

func TestForTrackEmpty(t *testing.T) {
	if _, err := ForTrack(nil); err == nil {
		t.Fatal("expected an error for an empty track")
	}
}
