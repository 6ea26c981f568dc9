// Package sponge implements the Sponge Schematic formats (versions 2 and 3).
//
// Both versions store a single cuboid: one palette, one varint block array in x, z, y
// order, and block entity and entity positions relative to the cuboid's minimum corner.
// Schematics with several regions are merged before encoding.
package sponge

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oriumgames/pile/unischem/format/internal/varint"
	"github.com/oriumgames/pile/unischem/internal/tag"
	"github.com/oriumgames/pile/unischem/schematic"
)

const (
	// DefaultDataVersion is written when the schematic does not record one (1.12.2).
	DefaultDataVersion = 1343

	// UnnamedSchematic is the name given to decoded schematics without a name.
	UnnamedSchematic = "Unnamed"

	// maxPaletteID bounds the palette slice allocated from PaletteMax on decode.
	maxPaletteID = 1 << 20
)

// LengthMismatchError reports block data that decoded to a different number of ids
// than Width*Height*Length.
type LengthMismatchError struct {
	Got, Want int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("block data length mismatch: got %d ids, want %d", e.Got, e.Want)
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}

// readDimensions reads Width, Height and Length as unsigned shorts, rejecting zero.
func readDimensions(root tag.Compound) (cube.Pos, error) {
	var size cube.Pos
	for i, key := range [3]string{"Width", "Height", "Length"} {
		v, err := root.Short(key)
		if err != nil {
			return cube.Pos{}, fmt.Errorf("read dimensions: %w", err)
		}
		size[i] = int(uint16(v))
		if size[i] == 0 {
			return cube.Pos{}, fmt.Errorf("%w: %s is zero", tag.ErrMalformed, key)
		}
	}
	return size, nil
}

// parsePalette builds the positional palette, sized maxID+1 or the highest id plus one,
// whichever is larger. Pass -1 when the file has no PaletteMax. Ids missing from the
// palette are air.
func parsePalette(entries tag.Compound, maxID int) (*schematic.Palette, error) {
	parsed := make(map[int]schematic.BlockState, len(entries))
	for key, v := range entries {
		id, ok := v.(int32)
		if !ok {
			continue
		}
		if id < 0 {
			return nil, fmt.Errorf("%w: palette id %d for %q", tag.ErrMalformed, id, key)
		}
		parsed[int(id)] = schematic.ParseBlockState(key)
		maxID = max(maxID, int(id))
	}
	if maxID >= maxPaletteID {
		return nil, fmt.Errorf("%w: palette max %d", tag.ErrMalformed, maxID)
	}

	states := make([]schematic.BlockState, maxID+1)
	for i := range states {
		if state, ok := parsed[i]; ok {
			states[i] = state
		} else {
			states[i] = schematic.Air()
		}
	}
	return schematic.PaletteFromStates(states), nil
}

// blockDecoder holds the leniency settings shared by the codec versions.
type blockDecoder struct {
	format string
	strict bool
	log    *slog.Logger
}

// ids decodes the varint block array. A count different from volume is returned as a
// diagnostic, or as the error when strict.
func (d blockDecoder) ids(data []byte, volume int) ([]int, []error, error) {
	ids, err := varint.DecodeAll(data, volume)
	if err != nil {
		return nil, nil, fmt.Errorf("decode block data: %w", err)
	}
	if len(ids) == volume {
		return ids, nil, nil
	}
	mismatch := &LengthMismatchError{Got: len(ids), Want: volume}
	if d.strict {
		return nil, nil, mismatch
	}
	loggerOrDefault(d.log).Warn("block data length mismatch", "format", d.format, "got", len(ids), "want", volume)
	return ids, []error{mismatch}, nil
}

// readMetadata reads the optional Metadata compound of c.
func readMetadata(c tag.Compound, dataVersion int32) schematic.Metadata {
	var meta schematic.Metadata
	if m, err := c.Compound("Metadata"); err == nil {
		meta = schematic.MetadataFromNBT(m)
	}
	if meta.Name == "" {
		meta.Name = UnnamedSchematic
	}
	meta.DataVersion = int(dataVersion)
	return meta
}

// readBlockEntities adds the block entities listed under key, if present, to r.
func readBlockEntities(c tag.Compound, key string, r *schematic.Region) error {
	if !c.Has(key) {
		return nil
	}
	list, err := c.Compounds(key)
	if err != nil {
		return fmt.Errorf("read block entities: %w", err)
	}
	for i, beData := range list {
		be, err := schematic.BlockEntityFromNBT(beData)
		if err != nil {
			return fmt.Errorf("block entity %d: %w", i, err)
		}
		r.AddBlockEntity(be)
	}
	return nil
}

// readEntities adds the entities listed under Entities, if present, to r.
func readEntities(c tag.Compound, r *schematic.Region) error {
	if !c.Has("Entities") {
		return nil
	}
	list, err := c.Compounds("Entities")
	if err != nil {
		return fmt.Errorf("read entities: %w", err)
	}
	for i, entData := range list {
		ent, err := schematic.EntityFromNBT(entData)
		if err != nil {
			return fmt.Errorf("entity %d: %w", i, err)
		}
		r.AddEntity(ent)
	}
	return nil
}

// newSchematic wraps a decoded region in a schematic reporting format as its source.
func newSchematic(meta schematic.Metadata, format string, r *schematic.Region) *schematic.Schematic {
	s := schematic.New(meta.Name)
	s.Metadata = meta
	s.SetFormat(format)
	s.AddRegion(r)
	return s
}

// flat is a schematic merged into the single cuboid the Sponge formats store.
type flat struct {
	size          cube.Pos
	dataVersion   int32
	palette       map[string]int32
	paletteMax    int32
	blockData     []byte
	blockEntities []map[string]any
	entities      []map[string]any
}

// flatten merges the regions of s. The merged box minimum becomes the origin every
// stored position is relative to.
func flatten(s *schematic.Schematic) (flat, error) {
	merged := s.MergeRegions()
	box := merged.BoundingBox()
	width, height, length := box.Dimensions()
	if width > math.MaxUint16 || height > math.MaxUint16 || length > math.MaxUint16 {
		return flat{}, fmt.Errorf("dimensions %dx%dx%d exceed %d", width, height, length, math.MaxUint16)
	}

	f := flat{
		size:        cube.Pos{width, height, length},
		dataVersion: int32(s.Metadata.DataVersion),
	}
	if f.dataVersion == 0 {
		f.dataVersion = DefaultDataVersion
	}
	f.palette, f.paletteMax = convertPalette(merged.LocalPalette())

	ids := merged.Blocks()
	f.blockData = make([]byte, 0, len(ids))
	for _, id := range ids {
		f.blockData = varint.Append(f.blockData, uint32(id))
	}

	for _, be := range merged.BlockEntities() {
		rel := cube.Pos{be.Pos[0] - box.Min[0], be.Pos[1] - box.Min[1], be.Pos[2] - box.Min[2]}
		f.blockEntities = append(f.blockEntities, be.ToNBT(rel))
	}
	origin := mgl64.Vec3{float64(box.Min[0]), float64(box.Min[1]), float64(box.Min[2])}
	for _, ent := range merged.Entities() {
		f.entities = append(f.entities, ent.ToNBT(ent.Pos.Sub(origin)))
	}
	return f, nil
}

// convertPalette maps each palette state to its key. Air is always key id 0.
func convertPalette(p *schematic.Palette) (map[string]int32, int32) {
	out := make(map[string]int32, p.Len())
	out[schematic.AirName] = 0
	var maxID int32
	for id, state := range p.States() {
		if id == 0 {
			continue
		}
		out[state.String()] = int32(id)
		maxID = max(maxID, int32(id))
	}
	return out, maxID
}
