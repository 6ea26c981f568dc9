package schematic

import (
	"testing"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeRegionsEmpty(t *testing.T) {
	m := New("empty").MergeRegions()
	assert.Equal(t, MergedRegionName, m.Name)
	assert.Equal(t, cube.Pos{1, 1, 1}, m.Size)
	assert.Equal(t, []int{0}, m.Blocks())
	assert.True(t, m.HasLocalPalette())
}

func TestMergeRegionsDenseFirstOccurrence(t *testing.T) {
	s := New("test")
	s.SetBlock(0, 0, 0, dirt)
	s.SetBlock(1, 0, 0, stone)
	s.SetBlock(0, 1, 0, dirt)

	m := s.MergeRegions()
	p := m.LocalPalette()
	require.Equal(t, 3, p.Len())
	assert.Equal(t, 1, p.Index(dirt))
	assert.Equal(t, 2, p.Index(stone))
	assert.Equal(t, []int{1, 2, 1, 0}, m.Blocks())
}

func TestMergeRegionsOverlapAndGaps(t *testing.T) {
	s := New("test")
	s.SetBlockInRegion("first", 0, 0, 0, stone)
	s.SetBlockInRegion("first", 1, 0, 0, stone)
	s.SetBlockInRegion("second", 1, 0, 0, dirt)
	s.SetBlockInRegion("second", 2, 0, 0, dirt)
	s.SetBlockInRegion("far", 5, 0, 0, dirt)

	m := s.MergeRegions()
	assert.Equal(t, cube.Pos{0, 0, 0}, m.Position)
	assert.Equal(t, cube.Pos{6, 1, 1}, m.Size)
	assert.Equal(t, []int{1, 1, 2, 0, 0, 2}, m.Blocks())

	// Merging leaves the source untouched.
	assert.Equal(t, 3, s.RegionCount())
}

func TestMergeRegionsMixedPalettes(t *testing.T) {
	s := New("test")
	s.SetBlock(0, 0, 0, stone)

	local := PaletteFromStates([]BlockState{dirt, Air()})
	r := NewRegionWithPalette("local", cube.Pos{0, 1, 0}, cube.Pos{1, 1, 1}, local)
	r.SetBlocks([]int{0})
	s.AddRegion(r)

	m := s.MergeRegions()
	got, ok := m.LocalPalette().Get(m.Blocks()[1])
	require.True(t, ok)
	assert.True(t, got.Equal(dirt))
}

func TestMergeRegionsEntities(t *testing.T) {
	s := New("test")
	s.AddBlockEntityInRegion("a", NewBlockEntity("minecraft:chest", cube.Pos{1, 1, 1}))
	s.AddBlockEntityInRegion("b", NewBlockEntity("minecraft:barrel", cube.Pos{1, 1, 1}))
	s.AddBlockEntityInRegion("b", NewBlockEntity("minecraft:furnace", cube.Pos{1, 2, 1}))
	s.AddEntityInRegion("a", NewEntity("minecraft:pig", mgl64.Vec3{1, 1, 1}))
	s.AddEntityInRegion("b", NewEntity("minecraft:cow", mgl64.Vec3{1, 1, 1}))

	m := s.MergeRegions()
	be, ok := m.BlockEntity(cube.Pos{1, 1, 1})
	require.True(t, ok)
	assert.Equal(t, "minecraft:chest", be.ID)
	assert.Len(t, m.BlockEntities(), 2)
	assert.Len(t, m.Entities(), 2)
}
