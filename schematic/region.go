package schematic

import (
	"slices"

	"github.com/df-mc/dragonfly/server/block/cube"
)

// Region is a named cuboid of palette ids with the block entities and entities inside it.
//
// Ids are stored densely in x, then z, then y order. A region either resolves its ids
// through the palette of the schematic it belongs to, or carries a self-contained
// palette of its own (see NewRegionWithPalette); HasLocalPalette tells which.
type Region struct {
	Name     string
	Position cube.Pos
	// Size is the extent per axis. A negative component extends towards negative
	// coordinates from Position.
	Size cube.Pos

	blocks        []int
	blockEntities map[cube.Pos]BlockEntity
	entities      []Entity
	palette       *Palette
}

// NewRegion creates an air-filled region. Zero size components are treated as 1.
func NewRegion(name string, position, size cube.Pos) *Region {
	for i := range size {
		if size[i] == 0 {
			size[i] = 1
		}
	}
	r := &Region{
		Name:          name,
		Position:      position,
		Size:          size,
		blockEntities: make(map[cube.Pos]BlockEntity),
	}
	r.blocks = make([]int, r.BoundingBox().Volume())
	return r
}

// NewRegionWithPalette creates an air-filled region whose ids resolve through p rather
// than through the schematic-wide palette.
func NewRegionWithPalette(name string, position, size cube.Pos, p *Palette) *Region {
	r := NewRegion(name, position, size)
	r.palette = p
	return r
}

// HasLocalPalette reports whether the region carries its own palette.
func (r *Region) HasLocalPalette() bool {
	return r.palette != nil
}

// LocalPalette returns the region's own palette, or nil if it uses the schematic palette.
func (r *Region) LocalPalette() *Palette {
	return r.palette
}

// BoundingBox returns the inclusive box covered by the region, with Min <= Max even
// for negative sizes.
func (r *Region) BoundingBox() BoundingBox {
	var lo, hi cube.Pos
	for i := range 3 {
		if r.Size[i] >= 0 {
			lo[i], hi[i] = r.Position[i], r.Position[i]+r.Size[i]-1
		} else {
			lo[i], hi[i] = r.Position[i]+r.Size[i]+1, r.Position[i]
		}
	}
	return NewBoundingBox(lo, hi)
}

// Volume returns the number of cells covered by the region.
func (r *Region) Volume() int {
	return r.BoundingBox().Volume()
}

// Blocks returns the raw id array. It is shorter or longer than Volume only for a
// region decoded from a file whose block data did not match its dimensions.
func (r *Region) Blocks() []int {
	return r.blocks
}

// SetBlocks replaces the raw id array without checking its length against the volume.
func (r *Region) SetBlocks(ids []int) {
	r.blocks = ids
}

// SetBlockIndex stores id at the absolute position. It returns false, without mutating
// the region, if the position is outside the current bounds; use ExpandToFit first.
func (r *Region) SetBlockIndex(x, y, z, id int) bool {
	box := r.BoundingBox()
	p := cube.Pos{x, y, z}
	if !box.Contains(p) {
		return false
	}
	idx := box.index(p)
	if idx >= len(r.blocks) {
		return false
	}
	r.blocks[idx] = id
	return true
}

// BlockIndex returns the id stored at the absolute position.
func (r *Region) BlockIndex(x, y, z int) (int, bool) {
	box := r.BoundingBox()
	p := cube.Pos{x, y, z}
	if !box.Contains(p) {
		return 0, false
	}
	idx := box.index(p)
	if idx >= len(r.blocks) {
		return 0, false
	}
	return r.blocks[idx], true
}

// ExpandToFit grows the region to the union of its box and the point. Existing ids keep
// their absolute positions; new cells are air.
func (r *Region) ExpandToFit(x, y, z int) {
	old := r.BoundingBox()
	p := cube.Pos{x, y, z}
	if old.Contains(p) {
		return
	}
	grown := old.Union(NewBoundingBox(p, p))
	blocks := make([]int, grown.Volume())

	w, h, l := old.Dimensions()
	for ly := range h {
		for lz := range l {
			for lx := range w {
				src := (ly*l+lz)*w + lx
				if src >= len(r.blocks) {
					continue
				}
				abs := cube.Pos{old.Min[0] + lx, old.Min[1] + ly, old.Min[2] + lz}
				blocks[grown.index(abs)] = r.blocks[src]
			}
		}
	}

	gw, gh, gl := grown.Dimensions()
	r.Position = grown.Min
	r.Size = cube.Pos{gw, gh, gl}
	r.blocks = blocks
}

// AddBlockEntity stores be at be.Pos, replacing any block entity already there.
func (r *Region) AddBlockEntity(be BlockEntity) {
	r.blockEntities[be.Pos] = be
}

// RemoveBlockEntity removes and returns the block entity at pos.
func (r *Region) RemoveBlockEntity(pos cube.Pos) (BlockEntity, bool) {
	be, ok := r.blockEntities[pos]
	if ok {
		delete(r.blockEntities, pos)
	}
	return be, ok
}

// BlockEntity returns the block entity at pos.
func (r *Region) BlockEntity(pos cube.Pos) (BlockEntity, bool) {
	be, ok := r.blockEntities[pos]
	return be, ok
}

// BlockEntities returns the region's block entities sorted in y, z, x order.
func (r *Region) BlockEntities() []BlockEntity {
	out := make([]BlockEntity, 0, len(r.blockEntities))
	for _, be := range r.blockEntities {
		out = append(out, be)
	}
	slices.SortFunc(out, func(a, b BlockEntity) int {
		for _, axis := range [3]int{1, 2, 0} {
			if a.Pos[axis] != b.Pos[axis] {
				return a.Pos[axis] - b.Pos[axis]
			}
		}
		return 0
	})
	return out
}

// AddEntity appends an entity.
func (r *Region) AddEntity(e Entity) {
	r.entities = append(r.entities, e)
}

// RemoveEntity removes and returns the entity at index. Later entities shift down by
// one, so indices are list positions and not stable identifiers.
func (r *Region) RemoveEntity(index int) (Entity, bool) {
	if index < 0 || index >= len(r.entities) {
		return Entity{}, false
	}
	e := r.entities[index]
	r.entities = slices.Delete(r.entities, index, index+1)
	return e, true
}

// Entities returns a copy of the region's entity list.
func (r *Region) Entities() []Entity {
	return slices.Clone(r.entities)
}

// Clone creates a deep copy of the region.
func (r *Region) Clone() *Region {
	c := &Region{
		Name:          r.Name,
		Position:      r.Position,
		Size:          r.Size,
		blocks:        slices.Clone(r.blocks),
		blockEntities: make(map[cube.Pos]BlockEntity, len(r.blockEntities)),
		entities:      make([]Entity, len(r.entities)),
	}
	for pos, be := range r.blockEntities {
		c.blockEntities[pos] = be.Clone()
	}
	for i, e := range r.entities {
		c.entities[i] = e.Clone()
	}
	if r.palette != nil {
		c.palette = r.palette.Clone()
	}
	return c
}
