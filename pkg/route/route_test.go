package route

import (
	"errors"
	"math"
	"testing"

	"github.com/twpayne/go-geom"

	"github.com/mrhoney81/routethink/pkg/track"
)

// planar treats longitude and latitude as planar metres, so tests can work
// in exact coordinates.
type planar struct{}

func (planar) Name() string { return "planar" }

func (planar) Forward(lon, lat float64) (float64, float64, error) {
	return lon, lat, nil
}

func pts(coords ...[2]float64) []track.Point {
	points := make([]track.Point, len(coords))
	for i, c := range coords {
		points[i] = track.Point{Lon: c[0], Lat: c[1], Seq: i}
	}
	return points
}

func TestCumulativeDistance(t *testing.T) {
	r, err := Build(pts([2]float64{0, 0}, [2]float64{0, 1000}, [2]float64{1000, 1000}), planar{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.NumVertices() != 3 {
		t.Fatalf("expected 3 vertices, got %d", r.NumVertices())
	}
	if r.CumulativeAt(0) != 0 {
		t.Errorf("cumulative[0] = %v, want 0", r.CumulativeAt(0))
	}
	for i := 1; i < r.NumVertices(); i++ {
		if r.CumulativeAt(i) < r.CumulativeAt(i-1) {
			t.Errorf("cumulative distance decreases at vertex %d", i)
		}
	}
	if math.Abs(r.Length()-2000) > 1e-9 {
		t.Errorf("length = %v, want 2000", r.Length())
	}
}

func TestDuplicateVerticesCollapsed(t *testing.T) {
	r, err := Build(pts(
		[2]float64{0, 0},
		[2]float64{0, 0},
		[2]float64{0, 1000},
		[2]float64{0, 1000},
		[2]float64{1000, 1000},
	), planar{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.NumVertices() != 3 {
		t.Fatalf("expected 3 vertices after collapsing, got %d", r.NumVertices())
	}
	if math.Abs(r.Length()-2000) > 1e-9 {
		t.Errorf("length = %v, want 2000", r.Length())
	}
}

func TestDegenerateRoute(t *testing.T) {
	if _, err := Build(pts([2]float64{10, 20}), planar{}); !errors.Is(err, ErrDegenerateRoute) {
		t.Fatalf("expected ErrDegenerateRoute, got %v", err)
	}
	if _, err := Build(pts([2]float64{10, 20}, [2]float64{10, 20}), planar{}); !errors.Is(err, ErrDegenerateRoute) {
		t.Fatalf("expected ErrDegenerateRoute for coincident points, got %v", err)
	}
}

func TestProjectOntoVertex(t *testing.T) {
	r, err := Build(pts([2]float64{0, 0}, [2]float64{0, 1000}, [2]float64{1000, 1000}), planar{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	along, offset := r.Project(geom.Coord{0, 1000})
	if offset > 1e-9 {
		t.Errorf("offset = %v, want 0", offset)
	}
	if math.Abs(along-1000) > 1e-9 {
		t.Errorf("along = %v, want 1000", along)
	}
}

func TestProjectWorkedExample(t *testing.T) {
	// Route (0,0) -> (0,1000) -> (1000,1000) with a POI at (5, 500):
	// the closest point is (0, 500), so offset 5 m and 500 m along.
	r, err := Build(pts([2]float64{0, 0}, [2]float64{0, 1000}, [2]float64{1000, 1000}), planar{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	along, offset := r.Project(geom.Coord{5, 500})
	if math.Abs(offset-5) > 1e-9 {
		t.Errorf("offset = %v, want 5", offset)
	}
	if math.Abs(along-500) > 1e-9 {
		t.Errorf("along = %v, want 500", along)
	}
}

func TestProjectClampsToSegmentEnds(t *testing.T) {
	r, err := Build(pts([2]float64{0, 0}, [2]float64{0, 1000}), planar{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	along, offset := r.Project(geom.Coord{30, -40})
	if math.Abs(offset-50) > 1e-9 {
		t.Errorf("offset = %v, want 50", offset)
	}
	if along != 0 {
		t.Errorf("along = %v, want 0", along)
	}
}

func TestSelfIntersectionPrefersFirstPass(t *testing.T) {
	// The last segment crosses the first at (0, 500). A POI on the
	// crossing is equally close to both passes; the along-route distance
	// must refer to the first.
	r, err := Build(pts(
		[2]float64{0, 0},
		[2]float64{0, 1000},
		[2]float64{1000, 1000},
		[2]float64{1000, 500},
		[2]float64{-1000, 500},
	), planar{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	along, offset := r.Project(geom.Coord{0, 500})
	if offset > 1e-9 {
		t.Errorf("offset = %v, want 0", offset)
	}
	if math.Abs(along-500) > 1e-9 {
		t.Errorf("along = %v, want 500 (first pass)", along)
	}
}

func TestCorridorDownsampling(t *testing.T) {
	points := make([][2]float64, 11)
	for i := range points {
		points[i] = [2]float64{0, float64(i) * 100} // 100 m spacing
	}
	r, err := Build(pts(points...), planar{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	corridor := r.Corridor(250)
	if len(corridor) >= r.NumVertices() {
		t.Fatalf("corridor not downsampled: %d points", len(corridor))
	}
	first := corridor[0]
	last := corridor[len(corridor)-1]
	if first[0] != 0 || first[1] != 0 {
		t.Errorf("corridor must start at the route start, got %v", first)
	}
	if last[0] != 1000 || last[1] != 0 {
		t.Errorf("corridor must end at the route end, got %v", last)
	}
}
