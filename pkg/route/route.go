// Package route builds a planar polyline with a cumulative-distance index
// from a track point sequence, and projects arbitrary points onto it.
package route

import (
	"errors"
	"fmt"
	"math"

	"github.com/twpayne/go-geom"

	"github.com/mrhoney81/routethink/pkg/crs"
	"github.com/mrhoney81/routethink/pkg/track"
)

// ErrDegenerateRoute is returned when fewer than two distinct vertices
// remain after collapsing duplicates; no along-route distance can be
// defined for such a track.
var ErrDegenerateRoute = errors.New("route has fewer than two distinct points")

// Route is an immutable planar polyline. The cumulative-distance index is
// aligned with the vertices, with cumulative[0] = 0. Safe for concurrent
// reads after construction.
type Route struct {
	line       *geom.LineString
	geo        [][2]float64 // (lat, lon) per kept vertex
	cumulative []float64
	proj       crs.Projector
}

// Build projects the track points with proj and assembles the polyline.
// Consecutive vertices with identical projected coordinates are collapsed
// so that every segment has positive length.
func Build(points []track.Point, proj crs.Projector) (*Route, error) {
	coords := make([]geom.Coord, 0, len(points))
	geo := make([][2]float64, 0, len(points))
	for _, p := range points {
		x, y, err := proj.Forward(p.Lon, p.Lat)
		if err != nil {
			return nil, fmt.Errorf("error projecting point %d (%f, %f): %v", p.Seq, p.Lat, p.Lon, err)
		}
		if n := len(coords); n > 0 && coords[n-1][0] == x && coords[n-1][1] == y {
			continue
		}
		coords = append(coords, geom.Coord{x, y})
		geo = append(geo, [2]float64{p.Lat, p.Lon})
	}
	if len(coords) < 2 {
		return nil, ErrDegenerateRoute
	}
	line, err := geom.NewLineString(geom.XY).SetCoords(coords)
	if err != nil {
		return nil, fmt.Errorf("error building route geometry: %v", err)
	}
	cumulative := make([]float64, len(coords))
	for i := 1; i < len(coords); i++ {
		cumulative[i] = cumulative[i-1] + euclidean(coords[i-1], coords[i])
	}
	return &Route{line: line, geo: geo, cumulative: cumulative, proj: proj}, nil
}

func euclidean(a, b geom.Coord) float64 {
	return math.Hypot(b[0]-a[0], b[1]-a[1])
}

// Projector returns the projection the route was built with.
func (r *Route) Projector() crs.Projector { return r.proj }

// Length returns the total planar length of the route in metres.
func (r *Route) Length() float64 { return r.cumulative[len(r.cumulative)-1] }

func (r *Route) NumVertices() int { return r.line.NumCoords() }

func (r *Route) Vertex(i int) geom.Coord { return r.line.Coord(i) }

// CumulativeAt returns the along-route distance in metres at vertex i.
func (r *Route) CumulativeAt(i int) float64 { return r.cumulative[i] }

// Project finds the closest point on the route to the planar coordinate c.
// It returns the along-route distance to that point and the perpendicular
// offset, both in metres. When two segments are equally close (for example
// either side of a shared vertex, or where the route crosses itself) the
// earlier segment wins, so the along-route distance always refers to the
// first occurrence in the direction of travel.
func (r *Route) Project(c geom.Coord) (alongM, offsetM float64) {
	best := math.Inf(1)
	var bestAlong float64
	n := r.line.NumCoords()
	for i := 0; i < n-1; i++ {
		a := r.line.Coord(i)
		b := r.line.Coord(i + 1)
		dx, dy := b[0]-a[0], b[1]-a[1]
		segLen2 := dx*dx + dy*dy
		t := ((c[0]-a[0])*dx + (c[1]-a[1])*dy) / segLen2
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
		off := math.Hypot(c[0]-(a[0]+t*dx), c[1]-(a[1]+t*dy))
		if off < best {
			best = off
			bestAlong = r.cumulative[i] + t*math.Sqrt(segLen2)
		}
	}
	return bestAlong, best
}

// Corridor returns the route's geographic vertices as (lat, lon) pairs,
// downsampled so consecutive points are at least minSpacing metres apart
// along the route. Both endpoints are always included. This is the shape
// handed to the spatial catalog as the query corridor centreline.
func (r *Route) Corridor(minSpacing float64) [][2]float64 {
	out := [][2]float64{r.geo[0]}
	last := 0.0
	for i := 1; i < len(r.geo)-1; i++ {
		if r.cumulative[i]-last >= minSpacing {
			out = append(out, r.geo[i])
			last = r.cumulative[i]
		}
	}
	return append(out, r.geo[len(r.geo)-1])
}
