// Package track loads recorded route tracks from GPX files into an ordered
// point sequence.
package track

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/twpayne/go-gpx"
)

var (
	// ErrMalformedTrack is returned when the input cannot be parsed as GPX.
	ErrMalformedTrack = errors.New("malformed track")
	// ErrEmptyRoute is returned when the input parses but contains no points.
	ErrEmptyRoute = errors.New("track contains no points")
)

// Point is a single recorded track point in WGS84 coordinates. Points are
// immutable once loaded; Seq preserves the file order.
type Point struct {
	Lat       float64
	Lon       float64
	Elevation *float64 // metres; nil when the track carries no elevation
	Seq       int
}

// Load reads an ordered point sequence from a GPX file.
func Load(filename string) ([]Point, error) {
	r, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("error opening %s for reading: %v", filename, err)
	}
	defer r.Close()
	points, err := Read(r)
	if err != nil {
		return nil, fmt.Errorf("error reading track %s: %w", filename, err)
	}
	return points, nil
}

// Read parses GPX data into an ordered point sequence. Track points are
// taken in file order; route points are accepted for GPX files that carry
// a <rte> instead of a <trk>.
func Read(r io.Reader) ([]Point, error) {
	g, err := gpx.Read(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTrack, err)
	}
	var points []Point
	add := func(p *gpx.WptType) {
		pt := Point{Lat: p.Lat, Lon: p.Lon, Seq: len(points)}
		if p.Ele != 0 {
			ele := p.Ele
			pt.Elevation = &ele
		}
		points = append(points, pt)
	}
	for _, trk := range g.Trk {
		for _, seg := range trk.TrkSeg {
			for _, p := range seg.TrkPt {
				add(p)
			}
		}
	}
	for _, rte := range g.Rte {
		for _, p := range rte.RtePt {
			add(p)
		}
	}
	if len(points) == 0 {
		return nil, ErrEmptyRoute
	}
	return points, nil
}
