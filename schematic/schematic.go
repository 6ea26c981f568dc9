// Package schematic implements the format-agnostic block structure model: block states,
// palettes, regions and the universal schematic aggregating them.
//
// A Schematic is not safe for concurrent mutation. Independent schematics share no
// state and may be used from different goroutines freely.
package schematic

import (
	"slices"

	"github.com/df-mc/dragonfly/server/block/cube"
)

// DefaultRegionName is the region used by the accessors that take no region name.
const DefaultRegionName = "Main"

// Schematic is a set of named regions sharing one schematic-wide palette.
//
// Regions are kept in insertion order. When regions overlap, the first region in that
// order whose bounding box contains a position owns it, for Block as well as for
// MergeRegions.
type Schematic struct {
	Metadata Metadata

	regions       map[string]*Region
	order         []string
	palette       *Palette
	defaultRegion string
	format        string
}

// New creates an empty schematic with the given display name.
func New(name string) *Schematic {
	return &Schematic{
		Metadata:      Metadata{Name: name},
		regions:       make(map[string]*Region),
		palette:       NewPalette(),
		defaultRegion: DefaultRegionName,
	}
}

// Palette returns the schematic-wide palette used by regions without a local palette.
func (s *Schematic) Palette() *Palette {
	return s.palette
}

// SetPalette replaces the schematic-wide palette. Ids already stored in regions that
// use it are not remapped.
func (s *Schematic) SetPalette(p *Palette) {
	s.palette = p
}

// DefaultRegion returns the name of the region used by name-less accessors.
func (s *Schematic) DefaultRegion() string {
	return s.defaultRegion
}

// SetDefaultRegion changes the name of the region used by name-less accessors.
func (s *Schematic) SetDefaultRegion(name string) {
	s.defaultRegion = name
}

// Format returns the identifier of the format the schematic was read from, if any.
func (s *Schematic) Format() string {
	return s.format
}

// SetFormat records the identifier of the format the schematic was read from.
func (s *Schematic) SetFormat(id string) {
	s.format = id
}

// paletteFor returns the palette that ids of r resolve through.
func (s *Schematic) paletteFor(r *Region) *Palette {
	if r.palette != nil {
		return r.palette
	}
	return s.palette
}

// RegionOrCreate returns the named region, creating a 1x1x1 region at the given
// position if there is none yet.
func (s *Schematic) RegionOrCreate(name string, at cube.Pos) *Region {
	if r, ok := s.regions[name]; ok {
		return r
	}
	r := NewRegion(name, at, cube.Pos{1, 1, 1})
	s.regions[name] = r
	s.order = append(s.order, name)
	return r
}

// SetBlock sets a block in the default region, creating and growing it as needed.
func (s *Schematic) SetBlock(x, y, z int, state BlockState) bool {
	return s.SetBlockInRegion(s.defaultRegion, x, y, z, state)
}

// SetBlockInRegion sets a block in the named region, creating and growing it as needed.
func (s *Schematic) SetBlockInRegion(name string, x, y, z int, state BlockState) bool {
	r := s.RegionOrCreate(name, cube.Pos{x, y, z})
	r.ExpandToFit(x, y, z)
	return r.SetBlockIndex(x, y, z, s.paletteFor(r).GetOrInsert(state))
}

// Block returns the block at an absolute position from the first region containing it.
// Positions covered by a region but never written are air.
func (s *Schematic) Block(x, y, z int) (BlockState, bool) {
	p := cube.Pos{x, y, z}
	for _, name := range s.order {
		r := s.regions[name]
		if !r.BoundingBox().Contains(p) {
			continue
		}
		if state, ok := s.blockFrom(r, x, y, z); ok {
			return state, true
		}
	}
	return BlockState{}, false
}

// BlockFromRegion returns the block at an absolute position in the named region.
func (s *Schematic) BlockFromRegion(name string, x, y, z int) (BlockState, bool) {
	r, ok := s.regions[name]
	if !ok {
		return BlockState{}, false
	}
	return s.blockFrom(r, x, y, z)
}

func (s *Schematic) blockFrom(r *Region, x, y, z int) (BlockState, bool) {
	id, ok := r.BlockIndex(x, y, z)
	if !ok {
		return BlockState{}, false
	}
	return s.paletteFor(r).Get(id)
}

// AddRegion adds a region. It returns false and leaves the schematic unchanged if a
// region with the same name already exists.
func (s *Schematic) AddRegion(r *Region) bool {
	if _, ok := s.regions[r.Name]; ok {
		return false
	}
	s.regions[r.Name] = r
	s.order = append(s.order, r.Name)
	return true
}

// RemoveRegion removes and returns the named region.
func (s *Schematic) RemoveRegion(name string) (*Region, bool) {
	r, ok := s.regions[name]
	if !ok {
		return nil, false
	}
	delete(s.regions, name)
	s.order = slices.DeleteFunc(s.order, func(n string) bool { return n == name })
	return r, true
}

// Region returns the named region. The region may be mutated in place.
func (s *Schematic) Region(name string) (*Region, bool) {
	r, ok := s.regions[name]
	return r, ok
}

// Regions returns all regions in insertion order.
func (s *Schematic) Regions() []*Region {
	out := make([]*Region, len(s.order))
	for i, name := range s.order {
		out[i] = s.regions[name]
	}
	return out
}

// RegionCount returns the number of regions.
func (s *Schematic) RegionCount() int {
	return len(s.order)
}

// RegionBoundingBox returns the bounding box of the named region.
func (s *Schematic) RegionBoundingBox(name string) (BoundingBox, bool) {
	r, ok := s.regions[name]
	if !ok {
		return BoundingBox{}, false
	}
	return r.BoundingBox(), true
}

// BoundingBox returns the union of all region boxes. With no regions it returns
// EmptyBox, so callers must check Empty before using the result.
func (s *Schematic) BoundingBox() BoundingBox {
	box := EmptyBox()
	for _, name := range s.order {
		box = box.Union(s.regions[name].BoundingBox())
	}
	return box
}

// AddBlockEntity adds a block entity to the default region, creating it at the block
// entity's position if needed.
func (s *Schematic) AddBlockEntity(be BlockEntity) {
	s.AddBlockEntityInRegion(s.defaultRegion, be)
}

// AddBlockEntityInRegion adds a block entity to the named region, creating it at the
// block entity's position if needed.
func (s *Schematic) AddBlockEntityInRegion(name string, be BlockEntity) {
	s.RegionOrCreate(name, be.Pos).AddBlockEntity(be)
}

// RemoveBlockEntity removes the block entity at pos from the default region.
func (s *Schematic) RemoveBlockEntity(pos cube.Pos) (BlockEntity, bool) {
	return s.RemoveBlockEntityInRegion(s.defaultRegion, pos)
}

// RemoveBlockEntityInRegion removes the block entity at pos from the named region.
func (s *Schematic) RemoveBlockEntityInRegion(name string, pos cube.Pos) (BlockEntity, bool) {
	r, ok := s.regions[name]
	if !ok {
		return BlockEntity{}, false
	}
	return r.RemoveBlockEntity(pos)
}

// AddEntity adds an entity to the default region, creating it at the entity's rounded
// position if needed.
func (s *Schematic) AddEntity(e Entity) {
	s.AddEntityInRegion(s.defaultRegion, e)
}

// AddEntityInRegion adds an entity to the named region, creating it at the entity's
// rounded position if needed.
func (s *Schematic) AddEntityInRegion(name string, e Entity) {
	s.RegionOrCreate(name, e.BlockPos()).AddEntity(e)
}

// RemoveEntity removes the entity at index from the default region.
func (s *Schematic) RemoveEntity(index int) (Entity, bool) {
	return s.RemoveEntityInRegion(s.defaultRegion, index)
}

// RemoveEntityInRegion removes the entity at index from the named region.
func (s *Schematic) RemoveEntityInRegion(name string, index int) (Entity, bool) {
	r, ok := s.regions[name]
	if !ok {
		return Entity{}, false
	}
	return r.RemoveEntity(index)
}

// BlockEntities returns the block entities of all regions, region by region.
func (s *Schematic) BlockEntities() []BlockEntity {
	var out []BlockEntity
	for _, name := range s.order {
		out = append(out, s.regions[name].BlockEntities()...)
	}
	return out
}

// Entities returns the entities of all regions, region by region.
func (s *Schematic) Entities() []Entity {
	var out []Entity
	for _, name := range s.order {
		out = append(out, s.regions[name].entities...)
	}
	return out
}

// CountBlockTypes counts the cells of every region per palette key, air included.
func (s *Schematic) CountBlockTypes() map[string]int {
	counts := make(map[string]int)
	for _, name := range s.order {
		r := s.regions[name]
		p := s.paletteFor(r)
		for _, id := range r.blocks {
			if state, ok := p.Get(id); ok {
				counts[state.String()]++
			}
		}
	}
	return counts
}

// BlockEntityAt returns the block entity at pos from the first region holding one there.
func (s *Schematic) BlockEntityAt(pos cube.Pos) (BlockEntity, bool) {
	for _, name := range s.order {
		if be, ok := s.regions[name].BlockEntity(pos); ok {
			return be, true
		}
	}
	return BlockEntity{}, false
}
