package store

import (
	"github.com/pkg/errors"
	"github.com/rmmh/worldshift/go/chunk"
	"github.com/samber/lo"
)

type PackedDoc struct {
	Version int32    `json:"version"`
	Block   []string `json:"block"`
}

// EntryDoc is one palette slot. Blocks are written as one blockstate
// string per layer.
type EntryDoc struct {
	Block  []string      `json:"block,omitempty"`
	Entity *chunk.Entity `json:"entity,omitempty"`
	Packed []PackedDoc   `json:"packed,omitempty"`
}

// Document is the JSON form of a chunk, used for stored rows (without
// Blocks, which get their own column) and by the HTTP service.
type Document struct {
	CX            int                  `json:"cx"`
	CZ            int                  `json:"cz"`
	Height        int                  `json:"height"`
	Blocks        []uint32             `json:"blocks,omitempty"`
	Palette       []EntryDoc           `json:"palette"`
	Biomes        []int32              `json:"biomes,omitempty"`
	BlockEntities []*chunk.BlockEntity `json:"block_entities,omitempty"`
	Entities      []chunk.Entity       `json:"entities,omitempty"`
}

// NewDocument describes c and its palette. It fails if a palette block
// cannot be written as blockstate strings.
func NewDocument(c *chunk.Chunk, pal chunk.Palette) (*Document, error) {
	palette, err := encodePalette(pal)
	if err != nil {
		return nil, errors.Wrapf(err, "chunk %d,%d", c.CX, c.CZ)
	}
	d := &Document{
		CX:            c.CX,
		CZ:            c.CZ,
		Palette:       palette,
		Biomes:        c.Biomes,
		BlockEntities: c.BlockEntities,
		Entities:      c.Entities,
	}
	if c.Blocks != nil {
		d.Height = c.Blocks.Height
		d.Blocks = c.Blocks.Data
	}
	return d, nil
}

// Chunk rebuilds the chunk and palette d describes.
func (d *Document) Chunk() (*chunk.Chunk, chunk.Palette, error) {
	if d.Height <= 0 {
		return nil, nil, errors.Errorf("chunk %d,%d: bad height %d", d.CX, d.CZ, d.Height)
	}
	c := chunk.New(d.CX, d.CZ, d.Height)
	if len(d.Blocks) != len(c.Blocks.Data) {
		return nil, nil, errors.Errorf("chunk %d,%d: grid has %d cells, want %d", d.CX, d.CZ, len(d.Blocks), len(c.Blocks.Data))
	}
	copy(c.Blocks.Data, d.Blocks)
	pal, err := decodePalette(d.Palette)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "chunk %d,%d", d.CX, d.CZ)
	}
	c.Biomes = d.Biomes
	c.BlockEntities = d.BlockEntities
	c.Entities = d.Entities
	return c, pal, nil
}

func layerStates(b chunk.Block) ([]string, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return lo.Map(b.Layers(), func(l chunk.Block, _ int) string { return l.Blockstate() }), nil
}

func parseLayers(states []string) (chunk.Block, error) {
	var b chunk.Block
	for i, s := range states {
		layer, err := chunk.ParseBlockstate(s)
		if err != nil {
			return b, err
		}
		if i == 0 {
			b = layer
		} else {
			b = b.Stack(layer)
		}
	}
	return b, nil
}

func encodePalette(pal chunk.Palette) ([]EntryDoc, error) {
	out := make([]EntryDoc, len(pal))
	for i, e := range pal {
		switch {
		case len(e.Packed) > 0:
			for _, vb := range e.Packed {
				states, err := layerStates(vb.Block)
				if err != nil {
					return nil, errors.Wrapf(err, "palette slot %d", i)
				}
				out[i].Packed = append(out[i].Packed, PackedDoc{vb.Version, states})
			}
		case e.Kind == chunk.KindEntity:
			ent := e.Entity
			out[i].Entity = &ent
		default:
			states, err := layerStates(e.Block)
			if err != nil {
				return nil, errors.Wrapf(err, "palette slot %d", i)
			}
			out[i].Block = states
		}
	}
	return out, nil
}

func decodePalette(docs []EntryDoc) (chunk.Palette, error) {
	pal := make(chunk.Palette, len(docs))
	for i, d := range docs {
		switch {
		case len(d.Packed) > 0:
			for _, p := range d.Packed {
				b, err := parseLayers(p.Block)
				if err != nil {
					return nil, errors.Wrapf(err, "palette slot %d", i)
				}
				pal[i].Packed = append(pal[i].Packed, chunk.VersionedBlock{Version: p.Version, Block: b})
			}
		case d.Entity != nil:
			pal[i].Object = chunk.EntityObject(*d.Entity)
		case len(d.Block) > 0:
			b, err := parseLayers(d.Block)
			if err != nil {
				return nil, errors.Wrapf(err, "palette slot %d", i)
			}
			pal[i] = chunk.BlockEntry(b)
		default:
			return nil, errors.Errorf("palette slot %d is empty", i)
		}
	}
	return pal, nil
}
