// Package crs provides planar projections so that Euclidean distance on
// projected coordinates approximates ground distance in metres.
package crs

import (
	"fmt"
	"math"

	"github.com/fofanov/go-osgb"

	"github.com/mrhoney81/routethink/pkg/track"
)

// WGS84 mean Earth radius in metres.
const earthRadius = 6371000.0

// Approximate coverage of the OSTN15 transform.
const (
	gbMinLat = 49.8
	gbMaxLat = 60.9
	gbMinLon = -8.2
	gbMaxLon = 1.8
)

// Projector converts geographic coordinates (degrees) to planar metric
// coordinates. Implementations are safe for concurrent use.
type Projector interface {
	Name() string
	Forward(lon, lat float64) (x, y float64, err error)
}

// NationalGrid projects to OSGB36 easting/northing via the OSTN15
// transform. Only valid for coordinates within Great Britain.
type NationalGrid struct {
	trans osgb.CoordinateTransformer
}

func NewNationalGrid() (*NationalGrid, error) {
	trans, err := osgb.NewOSTN15Transformer()
	if err != nil {
		return nil, fmt.Errorf("error constructing coordinate transformer: %v", err)
	}
	return &NationalGrid{trans: trans}, nil
}

func (g *NationalGrid) Name() string { return "osgb36" }

func (g *NationalGrid) Forward(lon, lat float64) (float64, float64, error) {
	coord, err := g.trans.ToNationalGrid(osgb.NewETRS89Coord(lon, lat, 0))
	if err != nil {
		return 0, 0, err
	}
	return coord.Easting, coord.Northing, nil
}

// Equirectangular is a local flat-earth approximation centred on a
// reference latitude. Accurate to well under 1% for the latitude spans of
// recorded routes.
type Equirectangular struct {
	cosRef float64
}

func NewEquirectangular(refLat float64) *Equirectangular {
	return &Equirectangular{cosRef: math.Cos(refLat * math.Pi / 180)}
}

func (e *Equirectangular) Name() string { return "equirectangular" }

func (e *Equirectangular) Forward(lon, lat float64) (float64, float64, error) {
	x := earthRadius * e.cosRef * lon * math.Pi / 180
	y := earthRadius * lat * math.Pi / 180
	return x, y, nil
}

// ForTrack picks a projector appropriate for the track's location: the OS
// National Grid when every point lies within Great Britain, otherwise a
// local equirectangular projection centred on the track's mean latitude.
func ForTrack(points []track.Point) (Projector, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("cannot choose a projection for an empty track")
	}
	var latSum float64
	gb := true
	for _, p := range points {
		latSum += p.Lat
		if p.Lat < gbMinLat || p.Lat > gbMaxLat || p.Lon < gbMinLon || p.Lon > gbMaxLon {
			gb = false
		}
	}
	if gb {
		return NewNationalGrid()
	}
	return NewEquirectangular(latSum / float64(len(points))), nil
}
