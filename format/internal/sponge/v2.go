package sponge

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/oriumgames/pile/unischem/internal/tag"
	"github.com/oriumgames/pile/unischem/schematic"
)

// FormatID identifies the Sponge Schematic v2 format.
const FormatID = "sponge_v2"

// v2NBT is the NBT structure for Sponge Schematic Version 2
type v2NBT struct {
	Version       int32            `nbt:"Version"`
	DataVersion   int32            `nbt:"DataVersion"`
	Width         int16            `nbt:"Width"`
	Height        int16            `nbt:"Height"`
	Length        int16            `nbt:"Length"`
	Size          []int32          `nbt:"Size,array"`
	Offset        []int32          `nbt:"Offset,array"`
	Metadata      map[string]any   `nbt:"Metadata"`
	PaletteMax    int32            `nbt:"PaletteMax"`
	Palette       map[string]int32 `nbt:"Palette"`
	BlockData     []byte           `nbt:"BlockData,array"`
	BlockEntities []map[string]any `nbt:"BlockEntities,omitempty"`
	Entities      []map[string]any `nbt:"Entities,omitempty"`
}

// Codec reads and writes Sponge Schematic v2 files.
//
// By default a block data length mismatch is a diagnostic: the region is returned with
// the ids that were decoded, which may be fewer or more than its volume. Strict makes
// the mismatch an error instead.
type Codec struct {
	Strict bool
	// Logger receives diagnostics. slog.Default is used when nil.
	Logger *slog.Logger
}

// ID implements format.Codec.
func (Codec) ID() string {
	return FormatID
}

// Sniff reports whether data looks like a Sponge v2 schematic. It never fails.
func (Codec) Sniff(data []byte) bool {
	root, err := tag.Decode(data)
	if err != nil {
		return false
	}
	_, verErr := root.Int("Version")
	_, dvErr := root.Int("DataVersion")
	_, wErr := root.Short("Width")
	_, hErr := root.Short("Height")
	_, lErr := root.Short("Length")
	_, bdErr := root.ByteArray("BlockData")
	return errors.Join(verErr, dvErr, wErr, hErr, lErr, bdErr) == nil
}

// Decode reads a Sponge v2 schematic. Diagnostics are logged and otherwise dropped.
func (c Codec) Decode(data []byte) (*schematic.Schematic, error) {
	s, _, err := c.DecodeDiagnostics(data)
	return s, err
}

// DecodeDiagnostics reads a Sponge v2 schematic and also returns the non-fatal problems
// found, such as *LengthMismatchError.
func (c Codec) DecodeDiagnostics(data []byte) (*schematic.Schematic, []error, error) {
	root, err := tag.Decode(data)
	if err != nil {
		return nil, nil, err
	}

	size, err := readDimensions(root)
	if err != nil {
		return nil, nil, err
	}
	dataVersion, err := root.Int("DataVersion")
	if err != nil {
		return nil, nil, fmt.Errorf("read data version: %w", err)
	}

	entries, err := root.Compound("Palette")
	if err != nil {
		return nil, nil, fmt.Errorf("read palette: %w", err)
	}
	maxID := -1
	if paletteMax, err := root.Int("PaletteMax"); err == nil {
		maxID = int(paletteMax)
	}
	palette, err := parsePalette(entries, maxID)
	if err != nil {
		return nil, nil, err
	}

	blockData, err := root.ByteArray("BlockData")
	if err != nil {
		return nil, nil, fmt.Errorf("read block data: %w", err)
	}
	dec := blockDecoder{format: FormatID, strict: c.Strict, log: c.Logger}
	ids, diags, err := dec.ids(blockData, size[0]*size[1]*size[2])
	if err != nil {
		return nil, nil, err
	}

	region := schematic.NewRegionWithPalette(schematic.DefaultRegionName, cube.Pos{}, size, palette)
	region.SetBlocks(ids)

	// Version 1 files call block entities TileEntities.
	for _, key := range []string{"BlockEntities", "TileEntities"} {
		if err := readBlockEntities(root, key, region); err != nil {
			return nil, nil, err
		}
	}
	if err := readEntities(root, region); err != nil {
		return nil, nil, err
	}

	return newSchematic(readMetadata(root, dataVersion), FormatID, region), diags, nil
}

// Encode writes the schematic as Sponge v2. All regions are merged into one; the
// merged box minimum becomes the file origin and Offset is always zero.
func (Codec) Encode(s *schematic.Schematic) ([]byte, error) {
	f, err := flatten(s)
	if err != nil {
		return nil, err
	}

	data := v2NBT{
		Version:       2,
		DataVersion:   f.dataVersion,
		Width:         int16(uint16(f.size[0])),
		Height:        int16(uint16(f.size[1])),
		Length:        int16(uint16(f.size[2])),
		Size:          []int32{int32(f.size[0]), int32(f.size[1]), int32(f.size[2])},
		Offset:        []int32{0, 0, 0},
		Metadata:      s.Metadata.ToNBT(),
		PaletteMax:    f.paletteMax,
		Palette:       f.palette,
		BlockData:     f.blockData,
		BlockEntities: f.blockEntities,
		Entities:      f.entities,
	}

	out, err := tag.Encode(data)
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", FormatID, err)
	}
	return out, nil
}
