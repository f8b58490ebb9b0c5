package translate

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/rmmh/worldshift/go/chunk"
	"github.com/rmmh/worldshift/go/versions"
)

type Direction int

const (
	ToUniversal Direction = iota
	FromUniversal
)

func (d Direction) String() string {
	switch d {
	case ToUniversal:
		return "to_universal"
	case FromUniversal:
		return "from_universal"
	}
	return "Direction(" + strconv.Itoa(int(d)) + ")"
}

func ParseDirection(s string) (Direction, error) {
	switch s {
	case "to_universal", "to":
		return ToUniversal, nil
	case "from_universal", "from":
		return FromUniversal, nil
	}
	return 0, errors.Errorf("unknown direction %q", s)
}

// VersionKey selects a rule set: a platform plus either an integer
// chunk-format version (Number) or a semantic game version (Game).
type VersionKey struct {
	Platform string
	Number   int
	Game     versions.GameVersion
}

func (k VersionKey) String() string {
	if !k.Game.IsZero() {
		return fmt.Sprintf("%s:%d.%d.%d", k.Platform, k.Game[0], k.Game[1], k.Game[2])
	}
	return fmt.Sprintf("%s:%d", k.Platform, k.Number)
}

// Lookup returns the block (and its block entity, if any) at an offset
// relative to the block being translated.
type Lookup func(dx, dy, dz int) (chunk.Block, *chunk.BlockEntity, error)

// Version is one version's rule set. Block translates a single layer; a
// nil get means no neighbor information is available. The returned bool
// reports that the result would change with neighbor information.
type Version interface {
	Block(dir Direction, layer chunk.Block, get Lookup) (chunk.Object, *chunk.BlockEntity, bool, error)
	Biome(dir Direction, code int32) int32
	// BlockEntityAliases returns the bare -> namespaced map and its inverse.
	// Either may be nil.
	BlockEntityAliases() (forward, inverse map[string]string)
}

// PaletteCodec is implemented by versions whose on-disk palette slots are
// not plain blocks.
type PaletteCodec interface {
	UnpackPalette(chunk.Palette) chunk.Palette
	PackPalette(chunk.Palette) chunk.Palette
}

// Provider hands out rule sets. Implementations own any caching.
type Provider interface {
	Version(key VersionKey) (Version, error)
}

// NeighborResolver loads the chunk at a chunk-grid offset from the one
// being translated.
type NeighborResolver func(dcx, dcz int) (*chunk.Chunk, chunk.Palette, error)

// ChunkSource loads raw chunks by absolute chunk coordinates.
type ChunkSource interface {
	LoadChunk(cx, cz int) (*chunk.Chunk, chunk.Palette, error)
}

// VersionedSource loads raw chunks together with the version key they
// are stored in.
type VersionedSource interface {
	LoadVersioned(cx, cz int) (VersionKey, *chunk.Chunk, chunk.Palette, error)
}

var (
	ErrUnsupported = errors.New("entity translation to universal is not supported")
	ErrNoResolver  = errors.New("no neighbor resolver")
)

// NeighborError is returned when a context lookup could not load the
// neighboring chunk. The translate call that hit it produced no output.
type NeighborError struct {
	DX, DZ int
	Err    error
}

func (e *NeighborError) Error() string {
	return fmt.Sprintf("loading neighbor chunk at offset (%d,%d): %v", e.DX, e.DZ, e.Err)
}

func (e *NeighborError) Unwrap() error { return e.Err }
