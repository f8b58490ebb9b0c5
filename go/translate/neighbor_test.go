package translate

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/rmmh/worldshift/go/chunk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lookRule asks for context and then records what sits at the offset.
func lookRule(dx, dy, dz int) ruleFunc {
	return func(b chunk.Block, get Lookup) (chunk.Object, *chunk.BlockEntity, bool, error) {
		if b.BaseName != "sensor" {
			return renamed(b, "universal_minecraft"), nil, false, nil
		}
		if get == nil {
			return renamed(b, "universal_minecraft"), nil, true, nil
		}
		n, be, err := get(dx, dy, dz)
		if err != nil {
			return chunk.Object{}, nil, false, err
		}
		out := chunk.NewBlock("universal_minecraft", "sensor", map[string]string{
			"seen": n.BaseName,
			"be":   fmt.Sprint(be != nil),
		})
		return chunk.BlockObject(out), nil, true, nil
	}
}

func TestLookupCrossesIntoNeighbor(t *testing.T) {
	c := chunk.New(2, 5, 4)
	pal := makePalette(t, "minecraft:air", "minecraft:sensor")
	c.Blocks.Set(15, 2, 0, 1)

	neighbor := chunk.New(3, 5, 4)
	neighbor.Blocks.Set(0, 2, 0, 1)
	neighbor.BlockEntities = []*chunk.BlockEntity{{Namespace: "minecraft", BaseName: "furnace", X: 48, Y: 2, Z: 80}}
	npal := makePalette(t, "universal_minecraft:air", "universal_minecraft:furnace")

	var calls [][2]int
	resolve := func(dcx, dcz int) (*chunk.Chunk, chunk.Palette, error) {
		calls = append(calls, [2]int{dcx, dcz})
		return neighbor, npal, nil
	}

	v := &fakeVersion{to: lookRule(1, 0, 0)}
	c, out, err := New(nil).ToUniversal(bedrock13, staticProvider{v: v}, c, pal, resolve, true)
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{1, 0}}, calls)
	assert.Equal(t, "universal_minecraft:sensor[be=true,seen=furnace]", out[c.Blocks.At(15, 2, 0)].Block.Key())
	assert.Equal(t, "universal_minecraft:air", out[c.Blocks.At(0, 0, 0)].Block.Key())
}

func TestLookupNegativeOffsetFloors(t *testing.T) {
	c := chunk.New(0, 0, 1)
	pal := makePalette(t, "minecraft:air", "minecraft:sensor")
	c.Blocks.Set(0, 0, 0, 1)

	neighbor := chunk.New(-1, -1, 1)
	neighbor.Blocks.Set(15, 0, 15, 1)
	npal := makePalette(t, "universal_minecraft:air", "universal_minecraft:glass")

	var calls [][2]int
	resolve := func(dcx, dcz int) (*chunk.Chunk, chunk.Palette, error) {
		calls = append(calls, [2]int{dcx, dcz})
		return neighbor, npal, nil
	}
	v := &fakeVersion{to: lookRule(-1, 0, -1)}
	c, out, err := New(nil).ToUniversal(bedrock13, staticProvider{v: v}, c, pal, resolve, true)
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{-1, -1}}, calls)
	assert.Equal(t, "universal_minecraft:sensor[be=false,seen=glass]", out[c.Blocks.At(0, 0, 0)].Block.Key())
}

func TestContextBlocksGetPerPositionSlots(t *testing.T) {
	c := chunk.New(0, 0, 1)
	pal := makePalette(t, "minecraft:air", "minecraft:sensor", "minecraft:stone")
	c.Blocks.Set(1, 0, 0, 1)
	c.Blocks.Set(2, 0, 0, 2)
	c.Blocks.Set(5, 0, 0, 1)
	c.Blocks.Set(8, 0, 0, 1)
	c.Blocks.Set(9, 0, 0, 2)

	resolve := func(dcx, dcz int) (*chunk.Chunk, chunk.Palette, error) {
		t.Fatalf("unexpected neighbor load %d,%d", dcx, dcz)
		return nil, nil, nil
	}
	v := &fakeVersion{to: lookRule(1, 0, 0)}
	c, out, err := New(nil).ToUniversal(bedrock13, staticProvider{v: v}, c, pal, resolve, true)
	require.NoError(t, err)

	require.Len(t, out, 4)
	assert.Equal(t, "universal_minecraft:sensor[be=false,seen=stone]", out[c.Blocks.At(1, 0, 0)].Block.Key())
	assert.Equal(t, "universal_minecraft:sensor[be=false,seen=air]", out[c.Blocks.At(5, 0, 0)].Block.Key())
	assert.Equal(t, c.Blocks.At(1, 0, 0), c.Blocks.At(8, 0, 0))
	assert.NoError(t, c.Blocks.Validate(len(out)))
}

func TestNeighborFailureLeavesChunkUntouched(t *testing.T) {
	boom := errors.New("region file missing")
	c := chunk.New(7, 7, 1)
	c.Biomes = []int32{4, 4, 2}
	c.BlockEntities = []*chunk.BlockEntity{{BaseName: "Sign", X: 112, Z: 112}}
	pal := makePalette(t, "minecraft:air", "minecraft:sensor")
	c.Blocks.Set(15, 0, 3, 1)
	before := append([]uint32(nil), c.Blocks.Data...)

	resolve := func(dcx, dcz int) (*chunk.Chunk, chunk.Palette, error) {
		return nil, nil, boom
	}
	v := &fakeVersion{
		to:      lookRule(1, 0, 0),
		biomes:  map[int32]int32{2: 20, 4: 40},
		forward: map[string]string{"Sign": "minecraft:sign"},
	}
	out, outPal, err := New(nil).ToUniversal(bedrock13, staticProvider{v: v}, c, pal, resolve, true)
	require.Error(t, err)
	assert.Nil(t, out)
	assert.Nil(t, outPal)

	var ne *NeighborError
	require.True(t, errors.As(err, &ne))
	assert.Equal(t, 1, ne.DX)
	assert.Equal(t, 0, ne.DZ)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, before, c.Blocks.Data)
	assert.Equal(t, []int32{4, 4, 2}, c.Biomes)
	assert.Equal(t, "Sign", c.BlockEntities[0].NamespacedName())
}

func TestLookupWithoutResolver(t *testing.T) {
	c := chunk.New(0, 0, 2)
	pal := makePalette(t, "minecraft:air", "minecraft:stone")
	c.Blocks.Set(3, 1, 3, 1)
	c.BlockEntities = []*chunk.BlockEntity{{BaseName: "x", X: 3, Y: 1, Z: 3}}
	j := &job{chunk: c, palette: pal, blockEntities: c.BlockEntities}
	get := j.lookup(coordContext{x: 3, y: 0, z: 3})

	b, be, err := get(0, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, "minecraft:stone", b.Key())
	require.NotNil(t, be)
	assert.Equal(t, "x", be.BaseName)

	_, _, err = get(0, 2, 0)
	assert.Error(t, err, "above the grid")
	_, _, err = get(0, -1, 0)
	assert.Error(t, err, "below the grid")

	_, _, err = get(13, 0, 0)
	assert.ErrorIs(t, err, ErrNoResolver)
	var ne *NeighborError
	require.True(t, errors.As(err, &ne))
	assert.Equal(t, 1, ne.DX)
}

func TestLookupRejectsEntitySlots(t *testing.T) {
	c := chunk.New(0, 0, 1)
	pal := chunk.Palette{
		chunk.BlockEntry(chunk.NewBlock("minecraft", "air", nil)),
		{Object: chunk.EntityObject(chunk.Entity{Namespace: "minecraft", BaseName: "painting"})},
	}
	c.Blocks.Set(1, 0, 0, 1)
	j := &job{chunk: c, palette: pal}
	_, _, err := j.lookup(coordContext{})(1, 0, 0)
	assert.Error(t, err)
}

func TestNeighborsLoadsOnceAndUnpacks(t *testing.T) {
	src := &mapSource{chunks: map[[2]int]func() (*chunk.Chunk, chunk.Palette){
		{3, 5}: func() (*chunk.Chunk, chunk.Palette) {
			c := chunk.New(3, 5, 1)
			c.Blocks.Set(0, 0, 0, 1)
			c.BlockEntities = []*chunk.BlockEntity{{BaseName: "Furnace", X: 48, Z: 80}}
			return c, chunk.Palette{
				{Packed: []chunk.VersionedBlock{{Version: 1, Block: chunk.NewBlock("minecraft", "air", nil)}}},
				{Packed: []chunk.VersionedBlock{{Version: 1, Block: chunk.NewBlock("minecraft", "furnace", nil)}}},
			}
		},
	}}
	v := &packedVersion{fakeVersion{
		to:      lookRule(1, 0, 0),
		forward: map[string]string{"Furnace": "minecraft:furnace"},
	}}
	p := staticProvider{v: v}
	e := New(nil)
	resolve := e.Neighbors(src, ToUniversal, bedrock13, p, 2, 5)

	for range 2 {
		nc, npal, err := resolve(1, 0)
		require.NoError(t, err)
		assert.Equal(t, "minecraft:furnace", npal[1].Block.Key())
		assert.Empty(t, npal[1].Packed)
		assert.Equal(t, "minecraft:furnace", nc.BlockEntities[0].NamespacedName())
	}
	assert.Equal(t, 1, src.loads[[2]int{3, 5}])

	_, _, err := resolve(0, 1)
	assert.Error(t, err)

	c := chunk.New(2, 5, 1)
	c.Blocks.Set(15, 0, 0, 1)
	pal := chunk.Palette{
		{Packed: []chunk.VersionedBlock{{Version: 1, Block: chunk.NewBlock("minecraft", "air", nil)}}},
		{Packed: []chunk.VersionedBlock{{Version: 1, Block: chunk.NewBlock("minecraft", "sensor", nil)}}},
	}
	c, out, err := e.ToUniversal(bedrock13, p, c, pal, resolve, true)
	require.NoError(t, err)
	assert.Equal(t, "universal_minecraft:sensor[be=true,seen=furnace]", out[c.Blocks.At(15, 0, 0)].Block.Key())
	assert.Equal(t, 1, src.loads[[2]int{3, 5}])
}

func TestUniversalNeighborsUseStoredVersion(t *testing.T) {
	bedrock12 := VersionKey{Platform: "bedrock", Number: 12}
	src := &mapSource{key: bedrock12, chunks: map[[2]int]func() (*chunk.Chunk, chunk.Palette){
		{3, 5}: func() (*chunk.Chunk, chunk.Palette) {
			c := chunk.New(3, 5, 1)
			c.Blocks.Set(0, 0, 0, 1)
			return c, makePalette(t, "minecraft:air", "minecraft:old_glass")
		},
	}}
	old := &fakeVersion{to: func(b chunk.Block, _ Lookup) (chunk.Object, *chunk.BlockEntity, bool, error) {
		if b.BaseName == "old_glass" {
			return chunk.BlockObject(chunk.NewBlock("universal_minecraft", "glass", nil)), nil, false, nil
		}
		return renamed(b, "universal_minecraft"), nil, false, nil
	}}
	current := &fakeVersion{from: lookRule(1, 0, 0)}
	p := keyedProvider{bedrock12: old, bedrock13: current}
	e := New(nil)
	resolve := e.UniversalNeighbors(src, p, 2, 5)

	for range 2 {
		nc, npal, err := resolve(1, 0)
		require.NoError(t, err)
		assert.Equal(t, "universal_minecraft:glass", npal[nc.Blocks.At(0, 0, 0)].Block.Key())
	}
	assert.Equal(t, 1, src.loads[[2]int{3, 5}])

	c := chunk.New(2, 5, 1)
	c.Blocks.Set(15, 0, 0, 1)
	pal := makePalette(t, "universal_minecraft:air", "universal_minecraft:sensor")
	c, out, err := e.FromUniversal(bedrock13, p, c, pal, resolve, true)
	require.NoError(t, err)
	assert.Equal(t, "universal_minecraft:sensor[be=false,seen=glass]", out[c.Blocks.At(15, 0, 0)].Block.Key())

	_, _, err = resolve(0, 1)
	assert.Error(t, err)
}
