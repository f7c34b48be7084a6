package enrich

import (
	"github.com/dhconnelly/rtreego"
)

// Size (in metres) of the bounding box around an indexed settlement.
const settlementRectSize = 100

// Settlement is a named populated place indexed for nearest-neighbour
// lookup. X and Y are planar coordinates in the route's projection.
type Settlement struct {
	Name  string
	Place string // city, town, village, hamlet
	X     float64
	Y     float64
}

func (s *Settlement) Bounds() *rtreego.Rect {
	p := rtreego.Point{s.X, s.Y}
	return p.ToRect(settlementRectSize)
}

// SettlementIndex answers nearest-settlement queries from an R-tree. A nil
// or empty index resolves every query to "".
type SettlementIndex struct {
	rt *rtreego.Rtree
}

func NewSettlementIndex(settlements []*Settlement) *SettlementIndex {
	objs := make([]rtreego.Spatial, len(settlements))
	for i, s := range settlements {
		objs[i] = s
	}
	return &SettlementIndex{rt: rtreego.NewTree(2, 25, 50, objs...)}
}

func (ix *SettlementIndex) Size() int {
	if ix == nil {
		return 0
	}
	return ix.rt.Size()
}

// Nearest returns the name of the settlement closest to the planar point,
// or "" when none is indexed.
func (ix *SettlementIndex) Nearest(x, y float64) string {
	if ix == nil || ix.rt.Size() == 0 {
		return ""
	}
	s, ok := ix.rt.NearestNeighbor(rtreego.Point{x, y}).(*Settlement)
	if !ok {
		return ""
	}
	return s.Name
}
