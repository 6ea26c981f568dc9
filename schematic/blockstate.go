package schematic

import (
	"maps"
	"slices"
	"strings"
)

// AirName is the identifier of the default block.
const AirName = "minecraft:air"

// BlockState represents a block with its properties.
// Two states are equal when their Name and Properties are equal; property order is irrelevant.
type BlockState struct {
	Name       string            // e.g., "minecraft:oak_stairs"
	Properties map[string]string // e.g., {"facing": "north", "half": "bottom"}
}

// NewBlockState creates a block state without properties.
func NewBlockState(name string) BlockState {
	return BlockState{Name: name}
}

// Air returns the canonical default block state.
func Air() BlockState {
	return BlockState{Name: AirName}
}

// WithProperty returns a copy of the state with key set to value.
func (b BlockState) WithProperty(key, value string) BlockState {
	c := b.Clone()
	if c.Properties == nil {
		c.Properties = make(map[string]string, 1)
	}
	c.Properties[key] = value
	return c
}

// Property returns the value of a property and whether it is set.
func (b BlockState) Property(key string) (string, bool) {
	v, ok := b.Properties[key]
	return v, ok
}

// Clone creates a deep copy of the BlockState.
func (b BlockState) Clone() BlockState {
	if len(b.Properties) == 0 {
		return BlockState{Name: b.Name}
	}
	return BlockState{Name: b.Name, Properties: maps.Clone(b.Properties)}
}

// Equal reports whether both states have the same name and property mapping.
func (b BlockState) Equal(o BlockState) bool {
	if b.Name != o.Name || len(b.Properties) != len(o.Properties) {
		return false
	}
	return maps.Equal(b.Properties, o.Properties)
}

// IsAir reports whether the state is an air variant.
func (b BlockState) IsAir() bool {
	switch b.Name {
	case "", AirName, "minecraft:void_air", "minecraft:cave_air":
		return true
	default:
		return false
	}
}

// String returns the palette key of the state: name, optionally followed by
// [key=value,...] with keys in sorted order.
func (b BlockState) String() string {
	if len(b.Properties) == 0 {
		return b.Name
	}
	keys := slices.Sorted(maps.Keys(b.Properties))

	var buf strings.Builder
	buf.WriteString(b.Name)
	buf.WriteByte('[')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(k)
		buf.WriteByte('=')
		buf.WriteString(b.Properties[k])
	}
	buf.WriteByte(']')
	return buf.String()
}

// ParseBlockState parses a palette key such as "minecraft:stairs[facing=north,half=top]".
// Malformed property pairs are skipped.
func ParseBlockState(s string) BlockState {
	name, props, ok := strings.Cut(s, "[")
	if !ok {
		return BlockState{Name: s}
	}
	props = strings.TrimSuffix(props, "]")

	state := BlockState{Name: name}
	for part := range strings.SplitSeq(props, ",") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		if state.Properties == nil {
			state.Properties = make(map[string]string)
		}
		state.Properties[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return state
}
