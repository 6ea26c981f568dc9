package schematic

import (
	"math"

	"github.com/df-mc/dragonfly/server/block/cube"
)

// BoundingBox is an axis-aligned box with inclusive Min and Max corners.
type BoundingBox struct {
	Min, Max cube.Pos
}

// NewBoundingBox creates a box spanning both corners, normalised so that Min <= Max.
func NewBoundingBox(a, b cube.Pos) BoundingBox {
	return BoundingBox{
		Min: cube.Pos{min(a[0], b[0]), min(a[1], b[1]), min(a[2], b[2])},
		Max: cube.Pos{max(a[0], b[0]), max(a[1], b[1]), max(a[2], b[2])},
	}
}

// EmptyBox returns the sentinel box: it contains nothing and is the identity of Union.
func EmptyBox() BoundingBox {
	return BoundingBox{
		Min: cube.Pos{math.MaxInt32, math.MaxInt32, math.MaxInt32},
		Max: cube.Pos{math.MinInt32, math.MinInt32, math.MinInt32},
	}
}

// Empty reports whether the box has no cells, which is the case for EmptyBox.
func (b BoundingBox) Empty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Union returns the smallest box covering both boxes.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	return BoundingBox{
		Min: cube.Pos{min(b.Min[0], o.Min[0]), min(b.Min[1], o.Min[1]), min(b.Min[2], o.Min[2])},
		Max: cube.Pos{max(b.Max[0], o.Max[0]), max(b.Max[1], o.Max[1]), max(b.Max[2], o.Max[2])},
	}
}

// Contains reports whether p lies inside the box. All faces are inclusive.
func (b BoundingBox) Contains(p cube.Pos) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

// Dimensions returns the width, height and length of the box.
func (b BoundingBox) Dimensions() (width, height, length int) {
	n := NewBoundingBox(b.Min, b.Max)
	return n.Max[0] - n.Min[0] + 1, n.Max[1] - n.Min[1] + 1, n.Max[2] - n.Min[2] + 1
}

// Volume returns the number of cells in the box.
func (b BoundingBox) Volume() int {
	if b.Empty() {
		return 0
	}
	w, h, l := b.Dimensions()
	return w * h * l
}

// index returns the flattened offset of p inside the box in x, z, y order.
func (b BoundingBox) index(p cube.Pos) int {
	w, _, l := b.Dimensions()
	return ((p[1]-b.Min[1])*l+(p[2]-b.Min[2]))*w + (p[0] - b.Min[0])
}
