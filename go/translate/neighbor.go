package translate

import (
	"github.com/pkg/errors"
	"github.com/rmmh/worldshift/go/chunk"
)

// coordContext pins a lookup to one block: its chunk-local position and
// the chunk's grid coordinates.
type coordContext struct {
	x, y, z int
	cx, cz  int
}

// lookup returns a Lookup relative to at. Offsets that stay inside the
// chunk read the input grid and palette; others go through the neighbor
// resolver.
func (j *job) lookup(at coordContext) Lookup {
	return func(dx, dy, dz int) (chunk.Block, *chunk.BlockEntity, error) {
		lx, ly, lz := at.x+dx, at.y+dy, at.z+dz
		ax, ay, az := lx+at.cx*chunk.Width, ly, lz+at.cz*chunk.Depth
		// arithmetic shift floors negative offsets into the previous chunk
		dcx, dcz := lx>>4, lz>>4

		c, palette := j.chunk, j.palette
		// the job's own block entities may already be aliased
		blockEntityAt := func(x, y, z int) *chunk.BlockEntity {
			return chunk.FindBlockEntity(j.blockEntities, x, y, z)
		}
		if dcx != 0 || dcz != 0 {
			if j.neighbors == nil {
				return chunk.Block{}, nil, &NeighborError{DX: dcx, DZ: dcz, Err: ErrNoResolver}
			}
			var err error
			c, palette, err = j.neighbors(dcx, dcz)
			if err != nil {
				return chunk.Block{}, nil, &NeighborError{DX: dcx, DZ: dcz, Err: err}
			}
			blockEntityAt = c.BlockEntityAt
		}

		if c.Blocks == nil || !c.Blocks.InBounds(lx&15, ly, lz&15) {
			return chunk.Block{}, nil, errors.Errorf("position %d,%d,%d is outside the chunk", ax, ay, az)
		}
		slot := c.Blocks.At(lx&15, ly, lz&15)
		if int(slot) >= len(palette) {
			return chunk.Block{}, nil, errors.Errorf("position %d,%d,%d references slot %d of a %d-entry palette", ax, ay, az, slot, len(palette))
		}
		obj := palette[slot].Unwrap()
		if obj.Kind != chunk.KindBlock {
			return chunk.Block{}, nil, errors.Errorf("position %d,%d,%d holds a %v", ax, ay, az, obj.Kind)
		}

		return obj.Block, blockEntityAt(ax, ay, az), nil
	}
}

// cachedResolver resolves offsets from (cx, cz) through load, keeping
// every loaded chunk for the life of the resolver.
func cachedResolver(cx, cz int, load func(cx, cz int) (*chunk.Chunk, chunk.Palette, error)) NeighborResolver {
	type loaded struct {
		c       *chunk.Chunk
		palette chunk.Palette
	}
	cache := map[[2]int]loaded{}
	return func(dcx, dcz int) (*chunk.Chunk, chunk.Palette, error) {
		k := [2]int{cx + dcx, cz + dcz}
		if l, ok := cache[k]; ok {
			return l.c, l.palette, nil
		}
		c, palette, err := load(k[0], k[1])
		if err != nil {
			return nil, nil, err
		}
		cache[k] = loaded{c, palette}
		return c, palette, nil
	}
}

// Neighbors returns a resolver for the chunk at (cx, cz) that loads
// adjacent chunks from src and prepares them with a shallow translate in
// direction dir, so lookups see unpacked palettes. src must hold chunks in
// the format dir reads: version key for ToUniversal, universal otherwise.
func (e *Engine) Neighbors(src ChunkSource, dir Direction, key VersionKey, p Provider, cx, cz int) NeighborResolver {
	return cachedResolver(cx, cz, func(cx, cz int) (*chunk.Chunk, chunk.Palette, error) {
		c, palette, err := src.LoadChunk(cx, cz)
		if err != nil {
			return nil, nil, err
		}
		if dir == ToUniversal {
			return e.ToUniversal(key, p, c, palette, nil, false)
		}
		return e.FromUniversal(key, p, c, palette, nil, false)
	})
}

// UniversalNeighbors returns a resolver for translating the chunk at
// (cx, cz) out of universal when its neighbors live in a version-specific
// source. Each neighbor is fully translated to universal under the version
// it was stored with. Context rules of those neighbors see no neighbors of
// their own.
func (e *Engine) UniversalNeighbors(src VersionedSource, p Provider, cx, cz int) NeighborResolver {
	return cachedResolver(cx, cz, func(cx, cz int) (*chunk.Chunk, chunk.Palette, error) {
		key, c, palette, err := src.LoadVersioned(cx, cz)
		if err != nil {
			return nil, nil, err
		}
		return e.ToUniversal(key, p, c, palette, nil, true)
	})
}
