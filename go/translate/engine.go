package translate

import (
	"io"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/rmmh/worldshift/go/chunk"
)

// Engine translates chunks between version-specific palettes and the
// universal format. It keeps no state between calls; a call assumes it
// owns the chunk and palette it is given until it returns.
type Engine struct {
	log *slog.Logger
}

// New returns an engine that reports diagnostics to log. A nil log discards them.
func New(log *slog.Logger) *Engine {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{log: log}
}

// job is the state of one translate call.
type job struct {
	dir           Direction
	version       Version
	chunk         *chunk.Chunk
	palette       chunk.Palette
	blockEntities []*chunk.BlockEntity
	neighbors     NeighborResolver
}

// ToUniversal translates c, whose grid indexes palette, from the version
// named by key into the universal format. With deep false only the
// palette is unpacked and biomes and block entity names are converted;
// this is the form neighbor lookups load chunks in. On error c is left
// untouched.
func (e *Engine) ToUniversal(key VersionKey, p Provider, c *chunk.Chunk, palette chunk.Palette, neighbors NeighborResolver, deep bool) (*chunk.Chunk, chunk.Palette, error) {
	v, err := p.Version(key)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "loading rules for %s", key)
	}
	if codec, ok := v.(PaletteCodec); ok {
		palette = codec.UnpackPalette(palette)
	}
	biomes := RecodeBiomes(c.Biomes, func(code int32) int32 { return v.Biome(ToUniversal, code) })
	blockEntities := cloneBlockEntities(c.BlockEntities)
	e.aliasToUniversal(v, blockEntities)

	if deep {
		palette, err = e.translate(&job{
			dir:           ToUniversal,
			version:       v,
			chunk:         c,
			palette:       palette,
			blockEntities: blockEntities,
			neighbors:     neighbors,
		})
		if err != nil {
			return nil, nil, errors.Wrapf(err, "chunk %d,%d to universal from %s", c.CX, c.CZ, key)
		}
	} else {
		c.BlockEntities = blockEntities
	}
	c.Biomes = biomes
	return c, palette, nil
}

// FromUniversal translates a universal chunk into the version named by
// key. With deep false only the palette is packed and biomes and block
// entity names are converted. On error c is left untouched.
func (e *Engine) FromUniversal(key VersionKey, p Provider, c *chunk.Chunk, palette chunk.Palette, neighbors NeighborResolver, deep bool) (*chunk.Chunk, chunk.Palette, error) {
	v, err := p.Version(key)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "loading rules for %s", key)
	}
	if deep {
		palette, err = e.translate(&job{
			dir:           FromUniversal,
			version:       v,
			chunk:         c,
			palette:       palette,
			blockEntities: c.BlockEntities,
			neighbors:     neighbors,
		})
		if err != nil {
			return nil, nil, errors.Wrapf(err, "chunk %d,%d from universal to %s", c.CX, c.CZ, key)
		}
	}
	if codec, ok := v.(PaletteCodec); ok {
		palette = codec.PackPalette(palette)
	}
	c.Biomes = RecodeBiomes(c.Biomes, func(code int32) int32 { return v.Biome(FromUniversal, code) })
	e.aliasFromUniversal(v, c.BlockEntities)
	return c, palette, nil
}

type override struct {
	pos  chunk.Pos
	slot int
}

// translate runs the two passes over j and, only if both succeed, rewrites
// the chunk's grid and block entities. It returns the new palette.
func (e *Engine) translate(j *job) (chunk.Palette, error) {
	c := j.chunk
	if c.Blocks == nil {
		return nil, errors.New("chunk has no block grid")
	}
	if err := c.Blocks.Validate(len(j.palette)); err != nil {
		return nil, err
	}

	occurrences := c.Blocks.Occurrences()
	finished := chunk.NewPaletteBuilder()
	slotMap := make([]int, len(j.palette))
	var (
		todo          []int
		blockEntities []*chunk.BlockEntity
		dropped       int
	)

	place := func(template *chunk.BlockEntity, p chunk.Pos) {
		if template != nil {
			blockEntities = append(blockEntities, template.At(c.Abs(p.X, p.Y, p.Z)))
		}
	}

	// every distinct slot once, without neighbor information
	for i, entry := range j.palette {
		res, err := e.TranslateObject(j.version, j.dir, entry.Unwrap(), nil)
		if err != nil {
			return nil, errors.Wrapf(err, "palette slot %d", i)
		}
		if res.NeedsContext && j.neighbors != nil {
			slotMap[i] = -1
			todo = append(todo, i)
			continue
		}
		dropped += len(res.Entities)
		slotMap[i] = finished.Add(res.block(j.dir))
		for _, p := range occurrences[uint32(i)] {
			place(res.BlockEntity, p)
		}
	}

	// then every occurrence of the slots that asked for context
	var overrides []override
	for _, i := range todo {
		obj := j.palette[i].Unwrap()
		for _, p := range occurrences[uint32(i)] {
			get := j.lookup(coordContext{x: p.X, y: p.Y, z: p.Z, cx: c.CX, cz: c.CZ})
			res, err := e.TranslateObject(j.version, j.dir, obj, get)
			if err != nil {
				return nil, errors.Wrapf(err, "palette slot %d at %d,%d,%d", i, p.X, p.Y, p.Z)
			}
			dropped += len(res.Entities)
			overrides = append(overrides, override{p, finished.Add(res.block(j.dir))})
			place(res.BlockEntity, p)
		}
	}

	if dropped > 0 {
		e.log.Debug("entities produced by block rules were not placed",
			"direction", j.dir.String(), "cx", c.CX, "cz", c.CZ, "count", dropped)
	}
	if len(todo) > 0 {
		e.log.Debug("resolved context-dependent blocks",
			"direction", j.dir.String(), "cx", c.CX, "cz", c.CZ, "slots", len(todo), "positions", len(overrides),
			"palette", finished.Len())
	}

	c.Blocks.Remap(slotMap)
	for _, o := range overrides {
		c.Blocks.Set(o.pos.X, o.pos.Y, o.pos.Z, uint32(o.slot))
	}
	c.BlockEntities = blockEntities
	return finished.Palette(), nil
}

func cloneBlockEntities(bes []*chunk.BlockEntity) []*chunk.BlockEntity {
	if bes == nil {
		return nil
	}
	out := make([]*chunk.BlockEntity, len(bes))
	for i, be := range bes {
		cp := *be
		out[i] = &cp
	}
	return out
}
