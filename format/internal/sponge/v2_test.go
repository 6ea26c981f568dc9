package sponge

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oriumgames/pile/unischem/format/internal/varint"
	"github.com/oriumgames/pile/unischem/internal/tag"
	"github.com/oriumgames/pile/unischem/schematic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rawV2 writes hand-made files; omitempty lets tests drop required fields.
type rawV2 struct {
	Version     int32            `nbt:"Version"`
	DataVersion int32            `nbt:"DataVersion,omitempty"`
	Width       int16            `nbt:"Width"`
	Height      int16            `nbt:"Height"`
	Length      int16            `nbt:"Length"`
	PaletteMax  int32            `nbt:"PaletteMax,omitempty"`
	Palette     map[string]int32 `nbt:"Palette,omitempty"`
	BlockData   []byte           `nbt:"BlockData,array"`
}

func encodeRaw(t *testing.T, v rawV2) []byte {
	t.Helper()
	data, err := tag.Encode(v)
	require.NoError(t, err)
	return data
}

func quiet() Codec {
	return Codec{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestRoundTrip(t *testing.T) {
	stone := schematic.NewBlockState("minecraft:stone")
	stairs := schematic.NewBlockState("minecraft:oak_stairs").WithProperty("facing", "east").WithProperty("half", "top")

	s := schematic.New("house")
	s.Metadata.Author = "builder"
	s.Metadata.DataVersion = 3465
	s.SetBlock(10, 20, 30, stone)
	s.SetBlock(12, 21, 30, stairs)
	s.AddBlockEntity(schematic.NewBlockEntity("minecraft:chest", cube.Pos{11, 20, 30}).With("Lock", "secret"))
	s.AddEntity(schematic.NewEntity("minecraft:pig", mgl64.Vec3{10.5, 21, 30.5}))

	data, err := quiet().Encode(s)
	require.NoError(t, err)
	require.True(t, quiet().Sniff(data))

	got, diags, err := quiet().DecodeDiagnostics(data)
	require.NoError(t, err)
	assert.Empty(t, diags)

	assert.Equal(t, "house", got.Metadata.Name)
	assert.Equal(t, "builder", got.Metadata.Author)
	assert.Equal(t, 3465, got.Metadata.DataVersion)
	assert.Equal(t, FormatID, got.Format())

	r, ok := got.Region(schematic.DefaultRegionName)
	require.True(t, ok)
	assert.True(t, r.HasLocalPalette())
	assert.Equal(t, cube.Pos{}, r.Position)
	assert.Equal(t, cube.Pos{3, 2, 1}, r.Size)

	b, ok := got.Block(0, 0, 0)
	require.True(t, ok)
	assert.True(t, b.Equal(stone))
	b, ok = got.Block(2, 1, 0)
	require.True(t, ok)
	assert.True(t, b.Equal(stairs))
	b, ok = got.Block(1, 1, 0)
	require.True(t, ok)
	assert.True(t, b.IsAir())

	be, ok := got.BlockEntityAt(cube.Pos{1, 0, 0})
	require.True(t, ok)
	assert.Equal(t, "minecraft:chest", be.ID)
	assert.Equal(t, "secret", be.Data["Lock"])

	ents := got.Entities()
	require.Len(t, ents, 1)
	assert.Equal(t, mgl64.Vec3{0.5, 1, 0.5}, ents[0].Pos)
}

func TestEncodeLayout(t *testing.T) {
	s := schematic.New("")
	s.SetBlock(0, 0, 0, schematic.NewBlockState("minecraft:dirt"))

	data, err := quiet().Encode(s)
	require.NoError(t, err)

	root, err := tag.Decode(data)
	require.NoError(t, err)
	version, _ := root.Int("Version")
	assert.Equal(t, int32(2), version)
	dv, _ := root.Int("DataVersion")
	assert.Equal(t, int32(DefaultDataVersion), dv)
	offset, err := root.IntArray("Offset")
	require.NoError(t, err)
	assert.Equal(t, []int32{0, 0, 0}, offset)

	palette, err := root.Compound("Palette")
	require.NoError(t, err)
	assert.Equal(t, int32(0), palette[schematic.AirName])
	assert.Equal(t, int32(1), palette["minecraft:dirt"])
	paletteMax, _ := root.Int("PaletteMax")
	assert.Equal(t, int32(1), paletteMax)

	blockData, err := root.ByteArray("BlockData")
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, blockData)

	got, err := quiet().Decode(data)
	require.NoError(t, err)
	assert.Equal(t, UnnamedSchematic, got.Metadata.Name)
}

func TestEmptySchematicEncodesSingleAirCell(t *testing.T) {
	data, err := quiet().Encode(schematic.New("empty"))
	require.NoError(t, err)

	got, err := quiet().Decode(data)
	require.NoError(t, err)
	r, ok := got.Region(schematic.DefaultRegionName)
	require.True(t, ok)
	assert.Equal(t, cube.Pos{1, 1, 1}, r.Size)
	b, ok := got.Block(0, 0, 0)
	require.True(t, ok)
	assert.True(t, b.IsAir())
}

func TestMultiByteIDs(t *testing.T) {
	s := schematic.New("wide")
	for x := range 200 {
		s.SetBlock(x, 0, 0, schematic.NewBlockState("minecraft:wool").WithProperty("n", string(rune('a'+x%26))+string(rune('a'+x/26))))
	}

	data, err := quiet().Encode(s)
	require.NoError(t, err)
	got, err := quiet().Decode(data)
	require.NoError(t, err)

	for x := range 200 {
		want, _ := s.Block(x, 0, 0)
		b, ok := got.Block(x, 0, 0)
		require.True(t, ok)
		assert.True(t, b.Equal(want), "x=%d", x)
	}
}

func TestPaletteGapsDecodeAsAir(t *testing.T) {
	data := encodeRaw(t, rawV2{
		Version: 2, DataVersion: 1343,
		Width: 4, Height: 1, Length: 1,
		PaletteMax: 3,
		Palette:    map[string]int32{"minecraft:air": 0, "minecraft:stone": 3},
		BlockData:  []byte{3, 1, 2, 0},
	})

	s, err := quiet().Decode(data)
	require.NoError(t, err)

	b, ok := s.Block(0, 0, 0)
	require.True(t, ok)
	assert.Equal(t, "minecraft:stone", b.Name)
	for x := 1; x < 4; x++ {
		b, ok := s.Block(x, 0, 0)
		require.True(t, ok)
		assert.True(t, b.IsAir(), "x=%d", x)
	}
}

func TestDecodeMissingFields(t *testing.T) {
	valid := rawV2{
		Version: 2, DataVersion: 1343,
		Width: 1, Height: 1, Length: 1,
		Palette:   map[string]int32{"minecraft:air": 0},
		BlockData: []byte{0},
	}

	noVersion := valid
	noVersion.DataVersion = 0
	_, err := quiet().Decode(encodeRaw(t, noVersion))
	assert.ErrorIs(t, err, tag.ErrMissing)

	noPalette := valid
	noPalette.Palette = nil
	_, err = quiet().Decode(encodeRaw(t, noPalette))
	assert.ErrorIs(t, err, tag.ErrMissing)

	zeroWidth := valid
	zeroWidth.Width = 0
	_, err = quiet().Decode(encodeRaw(t, zeroWidth))
	assert.ErrorIs(t, err, tag.ErrMalformed)

	negativeID := valid
	negativeID.Palette = map[string]int32{"minecraft:air": 0, "minecraft:stone": -4}
	_, err = quiet().Decode(encodeRaw(t, negativeID))
	assert.ErrorIs(t, err, tag.ErrMalformed)

	_, err = quiet().Decode([]byte("garbage"))
	assert.ErrorIs(t, err, tag.ErrMalformed)
}

func TestLengthMismatch(t *testing.T) {
	data := encodeRaw(t, rawV2{
		Version: 2, DataVersion: 1343,
		Width: 2, Height: 1, Length: 1,
		Palette:   map[string]int32{"minecraft:air": 0, "minecraft:stone": 1},
		BlockData: []byte{1},
	})

	var logs bytes.Buffer
	lenient := Codec{Logger: slog.New(slog.NewTextHandler(&logs, nil))}
	s, diags, err := lenient.DecodeDiagnostics(data)
	require.NoError(t, err)
	require.Len(t, diags, 1)

	var mismatch *LengthMismatchError
	require.True(t, errors.As(diags[0], &mismatch))
	assert.Equal(t, 1, mismatch.Got)
	assert.Equal(t, 2, mismatch.Want)
	assert.Contains(t, logs.String(), "block data length mismatch")

	b, ok := s.Block(0, 0, 0)
	require.True(t, ok)
	assert.Equal(t, "minecraft:stone", b.Name)
	_, ok = s.Block(1, 0, 0)
	assert.False(t, ok)

	strict := quiet()
	strict.Strict = true
	_, err = strict.Decode(data)
	require.True(t, errors.As(err, &mismatch))
}

func TestBadBlockData(t *testing.T) {
	base := rawV2{
		Version: 2, DataVersion: 1343,
		Width: 1, Height: 1, Length: 1,
		Palette: map[string]int32{"minecraft:air": 0},
	}

	base.BlockData = []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	_, err := quiet().Decode(encodeRaw(t, base))
	assert.ErrorIs(t, err, varint.ErrOverflow)

	base.BlockData = []byte{0x80}
	_, err = quiet().Decode(encodeRaw(t, base))
	assert.ErrorIs(t, err, varint.ErrTruncated)
}

func TestEncodeTooLarge(t *testing.T) {
	s := schematic.New("long")
	s.SetBlockInRegion("a", 0, 0, 0, schematic.NewBlockState("minecraft:stone"))
	s.AddRegion(schematic.NewRegion("b", cube.Pos{70000, 0, 0}, cube.Pos{1, 1, 1}))

	_, err := quiet().Encode(s)
	assert.Error(t, err)
}

func TestSniff(t *testing.T) {
	c := quiet()
	assert.False(t, c.Sniff(nil))
	assert.False(t, c.Sniff([]byte("not a schematic at all")))

	other, err := tag.Encode(map[string]any{"Version": int32(2), "Width": int16(1)})
	require.NoError(t, err)
	assert.False(t, c.Sniff(other))
}
