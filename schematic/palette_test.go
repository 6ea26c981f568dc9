package schematic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaletteOperations(t *testing.T) {
	p := NewPalette()

	stone := NewBlockState("minecraft:stone")
	dirt := NewBlockState("minecraft:dirt")

	assert.Equal(t, 1, p.GetOrInsert(stone))
	assert.Equal(t, 2, p.GetOrInsert(dirt))
	assert.Equal(t, 1, p.GetOrInsert(stone))

	air, ok := p.Get(0)
	require.True(t, ok)
	assert.True(t, air.Equal(Air()))

	got, ok := p.Get(2)
	require.True(t, ok)
	assert.True(t, got.Equal(dirt))

	_, ok = p.Get(3)
	assert.False(t, ok)
	_, ok = p.Get(-1)
	assert.False(t, ok)

	assert.Equal(t, 3, p.Len())
}

func TestPaletteAirInEmptyPalette(t *testing.T) {
	p := NewPalette()
	require.Equal(t, 1, p.Len())
	assert.Equal(t, 0, p.Index(Air()))
	assert.Equal(t, 0, p.GetOrInsert(NewBlockState(AirName)))
	assert.Equal(t, 1, p.Len())
}

func TestPaletteValueEquality(t *testing.T) {
	p := NewPalette()
	a := BlockState{Name: "minecraft:oak_stairs", Properties: map[string]string{"facing": "north", "half": "top"}}
	b := BlockState{Name: "minecraft:oak_stairs", Properties: map[string]string{"half": "top", "facing": "north"}}

	id := p.GetOrInsert(a)
	assert.Equal(t, id, p.GetOrInsert(b))
	assert.Equal(t, id, p.GetOrInsert(a.Clone()))
	assert.NotEqual(t, id, p.GetOrInsert(a.WithProperty("half", "bottom")))
}

func TestPaletteCopiesInsertedState(t *testing.T) {
	p := NewPalette()
	props := map[string]string{"axis": "y"}
	id := p.GetOrInsert(BlockState{Name: "minecraft:oak_log", Properties: props})
	props["axis"] = "x"

	got, _ := p.Get(id)
	assert.Equal(t, "y", got.Properties["axis"])
}

func TestPaletteFromStatesKeepsPositions(t *testing.T) {
	stone := NewBlockState("minecraft:stone")
	p := PaletteFromStates([]BlockState{stone, Air(), Air(), NewBlockState("minecraft:dirt")})

	require.Equal(t, 4, p.Len())
	got, _ := p.Get(0)
	assert.True(t, got.Equal(stone))
	got, _ = p.Get(2)
	assert.True(t, got.IsAir())
	assert.Equal(t, 1, p.GetOrInsert(Air()))
	assert.Equal(t, 4, p.GetOrInsert(NewBlockState("minecraft:glass")))
}
