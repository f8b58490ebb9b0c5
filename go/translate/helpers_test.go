package translate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/rmmh/worldshift/go/chunk"
	"github.com/stretchr/testify/require"
)

type ruleFunc func(b chunk.Block, get Lookup) (chunk.Object, *chunk.BlockEntity, bool, error)

// fakeVersion swaps minecraft <-> universal_minecraft unless a rule overrides it.
type fakeVersion struct {
	to, from   ruleFunc
	biomes     map[int32]int32
	biomeCalls []int32
	forward    map[string]string
	inverse    map[string]string
}

func renamed(b chunk.Block, ns string) chunk.Object {
	return chunk.BlockObject(chunk.Block{Namespace: ns, BaseName: b.BaseName, Properties: b.Properties})
}

func (f *fakeVersion) Block(dir Direction, b chunk.Block, get Lookup) (chunk.Object, *chunk.BlockEntity, bool, error) {
	if dir == ToUniversal {
		if f.to != nil {
			return f.to(b, get)
		}
		return renamed(b, "universal_minecraft"), nil, false, nil
	}
	if f.from != nil {
		return f.from(b, get)
	}
	return renamed(b, "minecraft"), nil, false, nil
}

func (f *fakeVersion) Biome(dir Direction, code int32) int32 {
	f.biomeCalls = append(f.biomeCalls, code)
	if f.biomes == nil {
		return code
	}
	if dir == ToUniversal {
		return f.biomes[code]
	}
	for k, v := range f.biomes {
		if v == code {
			return k
		}
	}
	return code
}

func (f *fakeVersion) BlockEntityAliases() (map[string]string, map[string]string) {
	return f.forward, f.inverse
}

// packedVersion stores every slot as a single (1, block) pair on disk.
type packedVersion struct {
	fakeVersion
}

func (p *packedVersion) UnpackPalette(pal chunk.Palette) chunk.Palette {
	out := make(chunk.Palette, len(pal))
	for i, e := range pal {
		out[i] = chunk.Entry{Object: e.Unwrap()}
	}
	return out
}

func (p *packedVersion) PackPalette(pal chunk.Palette) chunk.Palette {
	out := make(chunk.Palette, len(pal))
	for i, e := range pal {
		out[i] = chunk.Entry{Packed: []chunk.VersionedBlock{{Version: 1, Block: e.Unwrap().Block}}}
	}
	return out
}

type staticProvider struct {
	v   Version
	err error
}

func (p staticProvider) Version(VersionKey) (Version, error) {
	return p.v, p.err
}

type keyedProvider map[VersionKey]Version

func (p keyedProvider) Version(key VersionKey) (Version, error) {
	v, ok := p[key]
	if !ok {
		return nil, fmt.Errorf("no rules for %s", key)
	}
	return v, nil
}

// mapSource serves generated chunks, all stored under key.
type mapSource struct {
	key    VersionKey
	chunks map[[2]int]func() (*chunk.Chunk, chunk.Palette)
	loads  map[[2]int]int
}

func (m *mapSource) LoadVersioned(cx, cz int) (VersionKey, *chunk.Chunk, chunk.Palette, error) {
	c, p, err := m.LoadChunk(cx, cz)
	return m.key, c, p, err
}

func (m *mapSource) LoadChunk(cx, cz int) (*chunk.Chunk, chunk.Palette, error) {
	if m.loads == nil {
		m.loads = map[[2]int]int{}
	}
	m.loads[[2]int{cx, cz}]++
	mk, ok := m.chunks[[2]int{cx, cz}]
	if !ok {
		return nil, nil, fmt.Errorf("chunk %d,%d not generated", cx, cz)
	}
	c, p := mk()
	return c, p, nil
}

// recorder collects slog records so tests can assert on diagnostics.
type recorder struct {
	mu      sync.Mutex
	records []slog.Record
}

func (r *recorder) Enabled(context.Context, slog.Level) bool { return true }
func (r *recorder) WithAttrs([]slog.Attr) slog.Handler      { return r }
func (r *recorder) WithGroup(string) slog.Handler           { return r }

func (r *recorder) Handle(_ context.Context, rec slog.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

func (r *recorder) messages(level slog.Level) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, rec := range r.records {
		if rec.Level == level {
			out = append(out, rec.Message)
		}
	}
	return out
}

func newRecordingEngine() (*Engine, *recorder) {
	r := &recorder{}
	return New(slog.New(r)), r
}

func makePalette(t *testing.T, states ...string) chunk.Palette {
	t.Helper()
	pal := make(chunk.Palette, len(states))
	for i, s := range states {
		b, err := chunk.ParseBlockstate(s)
		require.NoError(t, err, s)
		pal[i] = chunk.BlockEntry(b)
	}
	return pal
}

func cellStates(c *chunk.Chunk, pal chunk.Palette) []string {
	out := make([]string, len(c.Blocks.Data))
	for i, v := range c.Blocks.Data {
		out[i] = pal[v].Unwrap().Block.Key()
	}
	return out
}
