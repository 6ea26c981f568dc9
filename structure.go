// Package unischem reads and writes block structures in several schematic formats and
// places them in Dragonfly worlds.
package unischem

import (
	"strconv"

	"github.com/df-mc/dragonfly/server/block"
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/oriumgames/pile/unischem/schematic"
)

// Structure wraps a schematic.Schematic and implements world.Structure.
// It can be placed in a Dragonfly world using world.BuildStructure.
//
// Blocks are looked up by their stored name and properties as-is: names that do not
// exist in Dragonfly's registry are placed as air.
type Structure struct {
	schem *schematic.Schematic
	box   schematic.BoundingBox
}

// NewStructure creates a new Structure from a schematic. Later changes to the
// schematic's regions are not reflected in Dimensions.
func NewStructure(s *schematic.Schematic) *Structure {
	return &Structure{schem: s, box: s.BoundingBox()}
}

// Dimensions implements world.Structure.
func (s *Structure) Dimensions() [3]int {
	if s.box.Empty() {
		return [3]int{}
	}
	w, h, l := s.box.Dimensions()
	return [3]int{w, h, l}
}

// At implements world.Structure. x, y and z are relative to the schematic's minimum corner.
func (s *Structure) At(x, y, z int, _ func(x, y, z int) world.Block) (world.Block, world.Liquid) {
	if s.box.Empty() {
		return block.Air{}, nil
	}
	pos := cube.Pos{x + s.box.Min[0], y + s.box.Min[1], z + s.box.Min[2]}
	state, ok := s.schem.Block(pos[0], pos[1], pos[2])
	if !ok || state.IsAir() {
		return block.Air{}, nil
	}

	ret, ok := world.BlockByName(state.Name, blockProperties(state))
	if !ok {
		return block.Air{}, nil
	}

	// Handle block entity data if present
	if nbter, ok := ret.(world.NBTer); ok {
		data := map[string]any{}
		if be, ok := s.schem.BlockEntityAt(pos); ok {
			data = be.Clone().Data
			data["id"] = be.ID
		}
		if b, ok := nbter.DecodeNBT(data).(world.Block); ok {
			ret = b
		}
	}

	// Handle waterlogged blocks
	var liquid world.Liquid
	if v, ok := state.Property("waterlogged"); ok && v == "true" {
		liquid = block.Water{Still: true, Depth: 8}
	}
	return ret, liquid
}

// Schematic returns the underlying schematic.
func (s *Structure) Schematic() *schematic.Schematic {
	return s.schem
}

// blockProperties converts string properties to the bool, int32 and string values
// Dragonfly's block registry is keyed by.
func blockProperties(state schematic.BlockState) map[string]any {
	props := make(map[string]any, len(state.Properties))
	for k, v := range state.Properties {
		switch v {
		case "true":
			props[k] = true
		case "false":
			props[k] = false
		default:
			if i, err := strconv.ParseInt(v, 10, 32); err == nil {
				props[k] = int32(i)
			} else {
				props[k] = v
			}
		}
	}
	return props
}
