package schematic

import (
	"github.com/df-mc/dragonfly/server/block/cube"
)

// MergedRegionName is the name of the region produced by MergeRegions.
const MergedRegionName = "Merged"

// MergeRegions flattens every region into one new region covering the union of their
// boxes, for formats that hold a single palette.
//
// The result carries its own dense palette: air is id 0 and every other state gets the
// next id the first time it is met scanning x, then z, then y. Cells outside every
// region are air. Ownership of overlapping cells follows region order, and on a block
// entity position collision the earlier region's block entity is kept. The schematic
// itself is not modified. With no regions the result is a 1x1x1 air region at the origin.
func (s *Schematic) MergeRegions() *Region {
	box := s.BoundingBox()
	if box.Empty() {
		return NewRegionWithPalette(MergedRegionName, cube.Pos{}, cube.Pos{1, 1, 1}, NewPalette())
	}
	w, h, l := box.Dimensions()
	palette := NewPalette()
	merged := NewRegionWithPalette(MergedRegionName, box.Min, cube.Pos{w, h, l}, palette)

	regions := s.Regions()
	boxes := make([]BoundingBox, len(regions))
	for i, r := range regions {
		boxes[i] = r.BoundingBox()
	}

	// Source id -> merged id per region, so each state is keyed only once.
	remap := make([]map[int]int, len(regions))
	for i := range remap {
		remap[i] = make(map[int]int)
	}

	idx := 0
	for y := box.Min[1]; y <= box.Max[1]; y++ {
		for z := box.Min[2]; z <= box.Max[2]; z++ {
			for x := box.Min[0]; x <= box.Max[0]; x++ {
				merged.blocks[idx] = s.mergedID(regions, boxes, remap, palette, cube.Pos{x, y, z})
				idx++
			}
		}
	}

	for _, r := range regions {
		for pos, be := range r.blockEntities {
			if _, taken := merged.blockEntities[pos]; !taken {
				merged.blockEntities[pos] = be.Clone()
			}
		}
		for _, e := range r.entities {
			merged.entities = append(merged.entities, e.Clone())
		}
	}
	return merged
}

func (s *Schematic) mergedID(regions []*Region, boxes []BoundingBox, remap []map[int]int, palette *Palette, p cube.Pos) int {
	for i, r := range regions {
		if !boxes[i].Contains(p) {
			continue
		}
		src, ok := r.BlockIndex(p[0], p[1], p[2])
		if !ok {
			continue
		}
		if id, ok := remap[i][src]; ok {
			return id
		}
		state, ok := s.paletteFor(r).Get(src)
		if !ok {
			state = Air()
		}
		id := palette.GetOrInsert(state)
		remap[i][src] = id
		return id
	}
	return 0
}
