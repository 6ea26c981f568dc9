package sponge

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/oriumgames/pile/unischem/internal/tag"
	"github.com/oriumgames/pile/unischem/schematic"
)

// FormatIDV3 identifies the Sponge Schematic v3 format.
const FormatIDV3 = "sponge_v3"

// v3NBT is the NBT structure for Sponge Schematic Version 3. It is stored under a
// "Schematic" compound in the root.
type v3NBT struct {
	Version     int32            `nbt:"Version"`
	DataVersion int32            `nbt:"DataVersion"`
	Metadata    map[string]any   `nbt:"Metadata"`
	Width       int16            `nbt:"Width"`
	Height      int16            `nbt:"Height"`
	Length      int16            `nbt:"Length"`
	Offset      []int32          `nbt:"Offset,array"`
	Blocks      v3Blocks         `nbt:"Blocks"`
	Entities    []map[string]any `nbt:"Entities,omitempty"`
}

type v3Blocks struct {
	Palette       map[string]int32 `nbt:"Palette"`
	Data          []byte           `nbt:"Data,array"`
	BlockEntities []map[string]any `nbt:"BlockEntities,omitempty"`
}

// CodecV3 reads and writes Sponge Schematic v3 files. Biome data is ignored on read.
// Strict and Logger behave as for Codec.
type CodecV3 struct {
	Strict bool
	Logger *slog.Logger
}

// ID implements format.Codec.
func (CodecV3) ID() string {
	return FormatIDV3
}

// Sniff reports whether data looks like a Sponge v3 schematic. It never fails.
func (CodecV3) Sniff(data []byte) bool {
	root, err := tag.Decode(data)
	if err != nil {
		return false
	}
	body, err := root.Compound("Schematic")
	if err != nil {
		return false
	}
	version, verErr := body.Int("Version")
	blocks, blErr := body.Compound("Blocks")
	if errors.Join(verErr, blErr) != nil || version != 3 {
		return false
	}
	_, dataErr := blocks.ByteArray("Data")
	return dataErr == nil
}

// Decode reads a Sponge v3 schematic. Diagnostics are logged and otherwise dropped.
func (c CodecV3) Decode(data []byte) (*schematic.Schematic, error) {
	s, _, err := c.DecodeDiagnostics(data)
	return s, err
}

// DecodeDiagnostics reads a Sponge v3 schematic and also returns the non-fatal problems
// found.
func (c CodecV3) DecodeDiagnostics(data []byte) (*schematic.Schematic, []error, error) {
	root, err := tag.Decode(data)
	if err != nil {
		return nil, nil, err
	}
	body, err := root.Compound("Schematic")
	if err != nil {
		return nil, nil, fmt.Errorf("read schematic: %w", err)
	}

	size, err := readDimensions(body)
	if err != nil {
		return nil, nil, err
	}
	dataVersion, err := body.Int("DataVersion")
	if err != nil {
		return nil, nil, fmt.Errorf("read data version: %w", err)
	}

	blocks, err := body.Compound("Blocks")
	if err != nil {
		return nil, nil, fmt.Errorf("read blocks: %w", err)
	}
	entries, err := blocks.Compound("Palette")
	if err != nil {
		return nil, nil, fmt.Errorf("read palette: %w", err)
	}
	palette, err := parsePalette(entries, -1)
	if err != nil {
		return nil, nil, err
	}
	blockData, err := blocks.ByteArray("Data")
	if err != nil {
		return nil, nil, fmt.Errorf("read block data: %w", err)
	}
	dec := blockDecoder{format: FormatIDV3, strict: c.Strict, log: c.Logger}
	ids, diags, err := dec.ids(blockData, size[0]*size[1]*size[2])
	if err != nil {
		return nil, nil, err
	}

	region := schematic.NewRegionWithPalette(schematic.DefaultRegionName, cube.Pos{}, size, palette)
	region.SetBlocks(ids)
	if err := readBlockEntities(blocks, "BlockEntities", region); err != nil {
		return nil, nil, err
	}
	if err := readEntities(body, region); err != nil {
		return nil, nil, err
	}

	return newSchematic(readMetadata(body, dataVersion), FormatIDV3, region), diags, nil
}

// Encode writes the schematic as Sponge v3, merging all regions like Codec.Encode.
func (CodecV3) Encode(s *schematic.Schematic) ([]byte, error) {
	f, err := flatten(s)
	if err != nil {
		return nil, err
	}

	root := struct {
		Schematic v3NBT `nbt:"Schematic"`
	}{Schematic: v3NBT{
		Version:     3,
		DataVersion: f.dataVersion,
		Metadata:    s.Metadata.ToNBT(),
		Width:       int16(uint16(f.size[0])),
		Height:      int16(uint16(f.size[1])),
		Length:      int16(uint16(f.size[2])),
		Offset:      []int32{0, 0, 0},
		Blocks: v3Blocks{
			Palette:       f.palette,
			Data:          f.blockData,
			BlockEntities: f.blockEntities,
		},
		Entities: f.entities,
	}}

	out, err := tag.Encode(root)
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", FormatIDV3, err)
	}
	return out, nil
}
