package universal

import (
	"testing"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oriumgames/pile/unischem/internal/tag"
	"github.com/oriumgames/pile/unischem/schematic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTripKeepsRegions(t *testing.T) {
	stone := schematic.NewBlockState("minecraft:stone")
	glass := schematic.NewBlockState("minecraft:stained_glass").WithProperty("color", "red")

	s := schematic.New("multi")
	s.Metadata.Description = "two parts"
	s.Metadata.DataVersion = 3700
	s.SetDefaultRegion("tower")
	s.SetBlockInRegion("tower", 0, 0, 0, stone)
	s.SetBlockInRegion("tower", 0, 3, 0, glass)

	local := schematic.NewPalette()
	annex := schematic.NewRegionWithPalette("annex", cube.Pos{5, 0, 5}, cube.Pos{-2, 1, 1}, local)
	annex.SetBlockIndex(4, 0, 5, local.GetOrInsert(glass))
	s.AddRegion(annex)

	s.AddBlockEntityInRegion("tower", schematic.NewBlockEntity("minecraft:barrel", cube.Pos{0, 1, 0}))
	s.AddEntityInRegion("annex", schematic.NewEntity("minecraft:cat", mgl64.Vec3{4.5, 0, 5.5}))

	c := Codec{}
	data, err := c.Encode(s)
	require.NoError(t, err)
	require.True(t, c.Sniff(data))

	got, err := c.Decode(data)
	require.NoError(t, err)

	assert.Equal(t, "multi", got.Metadata.Name)
	assert.Equal(t, "two parts", got.Metadata.Description)
	assert.Equal(t, 3700, got.Metadata.DataVersion)
	assert.Equal(t, "tower", got.DefaultRegion())
	assert.Equal(t, FormatID, got.Format())

	regions := got.Regions()
	require.Len(t, regions, 2)
	assert.Equal(t, "tower", regions[0].Name)
	assert.Equal(t, "annex", regions[1].Name)
	assert.False(t, regions[0].HasLocalPalette())
	assert.True(t, regions[1].HasLocalPalette())
	assert.Equal(t, cube.Pos{-2, 1, 1}, regions[1].Size)

	for _, r := range s.Regions() {
		other, ok := got.Region(r.Name)
		require.True(t, ok)
		assert.Equal(t, r.Blocks(), other.Blocks(), r.Name)
		assert.Equal(t, r.Position, other.Position, r.Name)
	}

	b, ok := got.Block(0, 3, 0)
	require.True(t, ok)
	assert.True(t, b.Equal(glass))
	b, ok = got.Block(4, 0, 5)
	require.True(t, ok)
	assert.True(t, b.Equal(glass))

	be, ok := got.BlockEntityAt(cube.Pos{0, 1, 0})
	require.True(t, ok)
	assert.Equal(t, "minecraft:barrel", be.ID)

	annexGot, _ := got.Region("annex")
	ents := annexGot.Entities()
	require.Len(t, ents, 1)
	assert.Equal(t, mgl64.Vec3{4.5, 0, 5.5}, ents[0].Pos)

	assert.Equal(t, s.Palette().Len(), got.Palette().Len())
}

func TestDecodeRejectsWrongBlockCount(t *testing.T) {
	s := schematic.New("broken")
	r := schematic.NewRegion("r", cube.Pos{}, cube.Pos{2, 2, 2})
	r.SetBlocks([]int{0, 0, 0})
	s.AddRegion(r)

	data, err := Codec{}.Encode(s)
	require.NoError(t, err)
	_, err = Codec{}.Decode(data)
	assert.ErrorIs(t, err, tag.ErrMalformed)
}

func TestDecodeRejectsNegativeIDs(t *testing.T) {
	s := schematic.New("broken")
	r := schematic.NewRegion("r", cube.Pos{}, cube.Pos{1, 1, 1})
	r.SetBlocks([]int{-1})
	s.AddRegion(r)

	data, err := Codec{}.Encode(s)
	require.NoError(t, err)
	_, err = Codec{}.Decode(data)
	assert.ErrorIs(t, err, tag.ErrMalformed)
}

func TestSniff(t *testing.T) {
	assert.False(t, Codec{}.Sniff([]byte("nope")))

	other, err := tag.Encode(map[string]any{"Version": int32(2)})
	require.NoError(t, err)
	assert.False(t, Codec{}.Sniff(other))
}

func TestRegionNames(t *testing.T) {
	regions := tag.Compound{"a": map[string]any{}, "b": map[string]any{}, "c": map[string]any{}}
	names := regionNames(regions, []string{"c", "missing", "a", "c"})
	require.Len(t, names, 3)
	assert.Equal(t, []string{"c", "a", "b"}, names)
}
