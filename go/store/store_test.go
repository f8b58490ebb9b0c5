package store

import (
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/rmmh/worldshift/go/chunk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnEncodings(t *testing.T) {
	for _, run := range [][]uint32{
		{0, 1, 1, 2, 0, 0, 3},
		{300, 301, 302, 303, 304, 305, 306, 307, 308, 309},
		{5, 4000, 3, 70000, 0},
	} {
		enc, err := encodeColumn(run)
		require.NoError(t, err)
		dec, err := decodeColumn(enc)
		require.NoError(t, err)
		assert.Equal(t, run, dec)
	}

	big := make([]uint32, 16*16*384)
	for i := range big {
		big[i] = uint32(i % 700)
	}
	enc, err := encodeColumn(big)
	require.NoError(t, err)
	assert.Less(t, len(enc), len(big))
	dec, err := decodeColumn(enc)
	require.NoError(t, err)
	assert.Equal(t, big, dec)

	_, err = decodeColumn([]byte{7, 1, 2, 3})
	assert.Error(t, err)
	_, err = decodeColumn(nil)
	assert.Error(t, err)
}

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "chunks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGet(t *testing.T) {
	s := openTemp(t)

	c := chunk.New(-3, 9, 2)
	c.Blocks.Set(1, 1, 1, 1)
	c.Blocks.Set(2, 0, 5, 2)
	c.Biomes = []int32{1, 1, 4}
	c.BlockEntities = []*chunk.BlockEntity{{Namespace: "minecraft", BaseName: "chest", X: -47, Y: 1, Z: 145, NBT: map[string]any{"Lock": "key"}}}
	c.Entities = []chunk.Entity{{Namespace: "minecraft", BaseName: "cow", X: -40.5, Y: 1, Z: 150}}
	pal := chunk.Palette{
		chunk.BlockEntry(chunk.NewBlock("minecraft", "air", nil)),
		chunk.BlockEntry(chunk.NewBlock("minecraft", "oak_fence", nil).Stack(chunk.NewBlock("minecraft", "water", map[string]string{"level": "0"}))),
		{Packed: []chunk.VersionedBlock{{Version: 17825808, Block: chunk.NewBlock("minecraft", "stone", map[string]string{"stone_type": "granite"})}}},
	}
	require.NoError(t, s.Put(13, c, pal))

	version, got, gotPal, err := s.Get(-3, 9)
	require.NoError(t, err)
	assert.Equal(t, 13, version)
	assert.Equal(t, c.Blocks, got.Blocks)
	assert.Equal(t, c.Biomes, got.Biomes)
	assert.Equal(t, c.BlockEntities, got.BlockEntities)
	assert.Equal(t, c.Entities, got.Entities)
	require.Len(t, gotPal, 3)
	for i := range pal {
		assert.Equal(t, pal[i].Unwrap().Block.Key(), gotPal[i].Unwrap().Block.Key())
	}
	assert.Equal(t, int32(17825808), gotPal[2].Packed[0].Version)

	// replacing keeps one row
	require.NoError(t, s.Put(14, c, pal))
	version, _, _, err = s.Get(-3, 9)
	require.NoError(t, err)
	assert.Equal(t, 14, version)
}

func TestEntityPaletteSlot(t *testing.T) {
	s := openTemp(t)
	c := chunk.New(0, 0, 1)
	pal := chunk.Palette{{Object: chunk.EntityObject(chunk.Entity{Namespace: "minecraft", BaseName: "painting"})}}
	require.NoError(t, s.Put(1, c, pal))
	_, gotPal, err := s.LoadChunk(0, 0)
	require.NoError(t, err)
	assert.Equal(t, chunk.KindEntity, gotPal[0].Kind)
	assert.Equal(t, "minecraft:painting", gotPal[0].Entity.NamespacedName())
}

func TestPutRejectsUnwritableBlockstates(t *testing.T) {
	s := openTemp(t)
	for _, tc := range []struct {
		name string
		slot chunk.Entry
	}{
		{"comma", chunk.BlockEntry(chunk.NewBlock("minecraft", "sign", map[string]string{"text": "a,b"}))},
		{"newline", chunk.BlockEntry(chunk.NewBlock("minecraft", "sign", map[string]string{"text": "a\nminecraft:water"}))},
		{"packed", chunk.Entry{Packed: []chunk.VersionedBlock{{Version: 1, Block: chunk.NewBlock("minecraft", "sign", map[string]string{"text": "x]"})}}}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := chunk.New(0, 0, 1)
			pal := chunk.Palette{tc.slot}
			assert.Error(t, s.Put(1, c, pal))
			_, err := NewDocument(c, pal)
			assert.Error(t, err)
		})
	}
	_, _, err := s.LoadChunk(0, 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMissingChunk(t *testing.T) {
	s := openTemp(t)
	_, _, err := s.LoadChunk(4, 4)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCoords(t *testing.T) {
	s := openTemp(t)
	for _, xz := range [][2]int{{1, 0}, {-1, 5}, {1, -2}} {
		require.NoError(t, s.Put(1, chunk.New(xz[0], xz[1], 1), chunk.Palette{chunk.BlockEntry(chunk.NewBlock("minecraft", "air", nil))}))
	}
	coords, err := s.Coords()
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{-1, 5}, {1, -2}, {1, 0}}, coords)
}
