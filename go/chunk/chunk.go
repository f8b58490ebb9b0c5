package chunk

import (
	"github.com/pkg/errors"
)

const (
	Width = 16
	Depth = 16
	// cells per y level
	layerSize = Width * Depth
)

// Pos is a chunk-local block position.
type Pos struct {
	X, Y, Z int
}

// Grid is a 16 x height x 16 array of palette slot indices, laid out
// x + z*16 + y*256 like a section's block array.
type Grid struct {
	Height int
	Data   []uint32
}

func NewGrid(height int) *Grid {
	return &Grid{Height: height, Data: make([]uint32, layerSize*height)}
}

func (g *Grid) offset(x, y, z int) int {
	return x + z*Width + y*layerSize
}

func (g *Grid) InBounds(x, y, z int) bool {
	return x >= 0 && x < Width && z >= 0 && z < Depth && y >= 0 && y < g.Height
}

func (g *Grid) At(x, y, z int) uint32 {
	return g.Data[g.offset(x, y, z)]
}

func (g *Grid) Set(x, y, z int, v uint32) {
	g.Data[g.offset(x, y, z)] = v
}

func (g *Grid) PosOf(o int) Pos {
	return Pos{X: o % Width, Y: o / layerSize, Z: (o / Width) % Depth}
}

// Occurrences groups every position by the slot it holds, in grid order.
func (g *Grid) Occurrences() map[uint32][]Pos {
	m := map[uint32][]Pos{}
	for o, v := range g.Data {
		m[v] = append(m[v], g.PosOf(o))
	}
	return m
}

// Remap rewrites every cell through table. Cells whose slot has no
// entry (table[v] < 0 or v out of range) are left unchanged.
func (g *Grid) Remap(table []int) {
	for o, v := range g.Data {
		if int(v) < len(table) && table[v] >= 0 {
			g.Data[o] = uint32(table[v])
		}
	}
}

// Validate reports a cell that references a slot outside a palette of size n.
func (g *Grid) Validate(n int) error {
	if len(g.Data) != layerSize*g.Height {
		return errors.Errorf("grid holds %d cells, want %d for height %d", len(g.Data), layerSize*g.Height, g.Height)
	}
	for o, v := range g.Data {
		if int(v) >= n {
			p := g.PosOf(o)
			return errors.Errorf("cell (%d,%d,%d) references slot %d of a %d-entry palette", p.X, p.Y, p.Z, v, n)
		}
	}
	return nil
}

// Chunk is one 16-wide column of the world at chunk coordinates (CX, CZ).
type Chunk struct {
	CX, CZ        int
	Blocks        *Grid
	Biomes        []int32
	BlockEntities []*BlockEntity
	Entities      []Entity
}

func New(cx, cz, height int) *Chunk {
	return &Chunk{CX: cx, CZ: cz, Blocks: NewGrid(height)}
}

// Abs converts a chunk-local position to absolute world coordinates.
func (c *Chunk) Abs(x, y, z int) (int, int, int) {
	return x + c.CX*Width, y, z + c.CZ*Depth
}

// BlockEntityAt returns the first block entity at the absolute position, or nil.
func (c *Chunk) BlockEntityAt(x, y, z int) *BlockEntity {
	return FindBlockEntity(c.BlockEntities, x, y, z)
}

func FindBlockEntity(bes []*BlockEntity, x, y, z int) *BlockEntity {
	for _, be := range bes {
		if be.X == x && be.Y == y && be.Z == z {
			return be
		}
	}
	return nil
}
