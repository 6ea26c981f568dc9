// Package universal implements a lossless dump of schematic.Schematic: every region
// keeps its name, position, size, ids and palette scope.
package universal

import (
	"fmt"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/oriumgames/pile/unischem/internal/tag"
	"github.com/oriumgames/pile/unischem/schematic"
)

// FormatID identifies the universal dump format.
const FormatID = "universal"

const formatVersion = 1

type rootNBT struct {
	UniversalVersion int32                `nbt:"UniversalVersion"`
	DataVersion      int32                `nbt:"DataVersion"`
	Metadata         map[string]any       `nbt:"Metadata"`
	Regions          map[string]regionNBT `nbt:"Regions"`
	RegionOrder      []string             `nbt:"RegionOrder"`
	Palette          []string             `nbt:"Palette"`
	DefaultRegion    string               `nbt:"DefaultRegion"`
}

type regionNBT struct {
	Position      []int32          `nbt:"Position,array"`
	Size          []int32          `nbt:"Size,array"`
	Blocks        []int32          `nbt:"Blocks,array"`
	Palette       []string         `nbt:"Palette,omitempty"`
	BlockEntities []map[string]any `nbt:"BlockEntities,omitempty"`
	Entities      []map[string]any `nbt:"Entities,omitempty"`
}

// Codec reads and writes the universal dump format.
type Codec struct{}

// ID implements format.Codec.
func (Codec) ID() string {
	return FormatID
}

// Sniff reports whether data is a universal dump. It never fails.
func (Codec) Sniff(data []byte) bool {
	root, err := tag.Decode(data)
	if err != nil {
		return false
	}
	_, verErr := root.Int("UniversalVersion")
	_, regErr := root.Compound("Regions")
	_, defErr := root.String("DefaultRegion")
	return verErr == nil && regErr == nil && defErr == nil
}

// Encode writes every region of s without merging.
func (Codec) Encode(s *schematic.Schematic) ([]byte, error) {
	data := rootNBT{
		UniversalVersion: formatVersion,
		DataVersion:      int32(s.Metadata.DataVersion),
		Metadata:         s.Metadata.ToNBT(),
		Regions:          make(map[string]regionNBT, s.RegionCount()),
		Palette:          paletteKeys(s.Palette()),
		DefaultRegion:    s.DefaultRegion(),
	}

	for _, r := range s.Regions() {
		reg := regionNBT{
			Position: posInts(r.Position),
			Size:     posInts(r.Size),
			Blocks:   make([]int32, len(r.Blocks())),
		}
		for i, id := range r.Blocks() {
			reg.Blocks[i] = int32(id)
		}
		if r.HasLocalPalette() {
			reg.Palette = paletteKeys(r.LocalPalette())
		}
		for _, be := range r.BlockEntities() {
			reg.BlockEntities = append(reg.BlockEntities, be.ToNBT(be.Pos))
		}
		for _, e := range r.Entities() {
			reg.Entities = append(reg.Entities, e.ToNBT(e.Pos))
		}
		data.Regions[r.Name] = reg
		data.RegionOrder = append(data.RegionOrder, r.Name)
	}

	out, err := tag.Encode(data)
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", FormatID, err)
	}
	return out, nil
}

// Decode reads a universal dump.
func (Codec) Decode(data []byte) (*schematic.Schematic, error) {
	root, err := tag.Decode(data)
	if err != nil {
		return nil, err
	}
	if _, err := root.Int("UniversalVersion"); err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}
	regions, err := root.Compound("Regions")
	if err != nil {
		return nil, fmt.Errorf("read regions: %w", err)
	}
	defaultRegion, err := root.String("DefaultRegion")
	if err != nil {
		return nil, fmt.Errorf("read default region: %w", err)
	}
	keys, err := root.Strings("Palette")
	if err != nil {
		return nil, fmt.Errorf("read palette: %w", err)
	}

	var meta schematic.Metadata
	if m, err := root.Compound("Metadata"); err == nil {
		meta = schematic.MetadataFromNBT(m)
	}
	if dv, err := root.Int("DataVersion"); err == nil {
		meta.DataVersion = int(dv)
	}

	s := schematic.New(meta.Name)
	s.Metadata = meta
	s.SetDefaultRegion(defaultRegion)
	s.SetPalette(paletteFromKeys(keys))
	s.SetFormat(FormatID)

	order, _ := root.Strings("RegionOrder")
	for _, name := range regionNames(regions, order) {
		rc, err := regions.Compound(name)
		if err != nil {
			return nil, fmt.Errorf("region %q: %w", name, err)
		}
		r, err := decodeRegion(name, rc)
		if err != nil {
			return nil, fmt.Errorf("region %q: %w", name, err)
		}
		s.AddRegion(r)
	}
	return s, nil
}

// regionNames returns the names listed in order that exist, followed by any regions
// the order does not mention.
func regionNames(regions tag.Compound, order []string) []string {
	seen := make(map[string]bool, len(regions))
	names := make([]string, 0, len(regions))
	for _, name := range order {
		if regions.Has(name) && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for name := range regions {
		if !seen[name] {
			names = append(names, name)
		}
	}
	return names
}

func decodeRegion(name string, rc tag.Compound) (*schematic.Region, error) {
	pos, err := rc.IntArray("Position")
	if err != nil {
		return nil, err
	}
	size, err := rc.IntArray("Size")
	if err != nil {
		return nil, err
	}
	if len(pos) != 3 || len(size) != 3 {
		return nil, fmt.Errorf("%w: position or size is not 3 components", tag.ErrMalformed)
	}
	blocks, err := rc.IntArray("Blocks")
	if err != nil {
		return nil, err
	}

	var r *schematic.Region
	if rc.Has("Palette") {
		keys, err := rc.Strings("Palette")
		if err != nil {
			return nil, err
		}
		r = schematic.NewRegionWithPalette(name, intsPos(pos), intsPos(size), paletteFromKeys(keys))
	} else {
		r = schematic.NewRegion(name, intsPos(pos), intsPos(size))
	}
	if len(blocks) != r.Volume() {
		return nil, fmt.Errorf("%w: %d block ids for volume %d", tag.ErrMalformed, len(blocks), r.Volume())
	}
	ids := make([]int, len(blocks))
	for i, id := range blocks {
		if id < 0 {
			return nil, fmt.Errorf("%w: negative block id %d", tag.ErrMalformed, id)
		}
		ids[i] = int(id)
	}
	r.SetBlocks(ids)

	if rc.Has("BlockEntities") {
		list, err := rc.Compounds("BlockEntities")
		if err != nil {
			return nil, err
		}
		for _, c := range list {
			be, err := schematic.BlockEntityFromNBT(c)
			if err != nil {
				return nil, err
			}
			r.AddBlockEntity(be)
		}
	}
	if rc.Has("Entities") {
		list, err := rc.Compounds("Entities")
		if err != nil {
			return nil, err
		}
		for _, c := range list {
			e, err := schematic.EntityFromNBT(c)
			if err != nil {
				return nil, err
			}
			r.AddEntity(e)
		}
	}
	return r, nil
}

func paletteKeys(p *schematic.Palette) []string {
	keys := make([]string, p.Len())
	for i, state := range p.States() {
		keys[i] = state.String()
	}
	return keys
}

func paletteFromKeys(keys []string) *schematic.Palette {
	states := make([]schematic.BlockState, len(keys))
	for i, key := range keys {
		states[i] = schematic.ParseBlockState(key)
	}
	if len(states) == 0 {
		return schematic.NewPalette()
	}
	return schematic.PaletteFromStates(states)
}

func posInts(p cube.Pos) []int32 {
	return []int32{int32(p[0]), int32(p[1]), int32(p[2])}
}

func intsPos(v []int32) cube.Pos {
	return cube.Pos{int(v[0]), int(v[1]), int(v[2])}
}
