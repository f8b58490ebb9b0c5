package versions

import (
	"io"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Range is the inclusive span of game versions that wrote a chunk version.
type Range struct {
	Min, Max GameVersion
}

func (r Range) Contains(v GameVersion) bool {
	return r.Min.Compare(v) <= 0 && v.Compare(r.Max) <= 0
}

type tableEntry struct {
	chunkVersion int
	Range
}

// Table maps chunk-format versions to the game versions that wrote them.
// Ranges are expected not to overlap; lookups take the first match in
// ascending chunk-version order.
type Table struct {
	entries []tableEntry
}

func NewTable(ranges map[int]Range) *Table {
	t := &Table{}
	for cv, r := range ranges {
		t.entries = append(t.entries, tableEntry{cv, r})
	}
	sort.Slice(t.entries, func(i, j int) bool { return t.entries[i].chunkVersion < t.entries[j].chunkVersion })
	return t
}

// LevelDB lists the first and last game versions each leveldb chunk version
// was written by. 15 is open-ended.
var LevelDB = NewTable(map[int]Range{
	0:  {GameVersion{0, 9, 0, 0}, GameVersion{0, 9, 1, 9999}},
	1:  {GameVersion{0, 9, 2, 0}, GameVersion{0, 9, 4, 9999}},
	2:  {GameVersion{0, 9, 5, 0}, GameVersion{0, 16, 999, 9999}},
	3:  {GameVersion{0, 17, 0, 0}, GameVersion{0, 17, 999, 9999}},
	4:  {GameVersion{0, 18, 0, 0}, GameVersion{0, 18, 0, 0}},
	5:  {GameVersion{0, 18, 0, 0}, GameVersion{1, 1, 999, 9999}},
	6:  {GameVersion{1, 2, 0, 0}, GameVersion{1, 2, 0, 0}},
	7:  {GameVersion{1, 2, 0, 0}, GameVersion{1, 2, 999, 9999}},
	8:  {GameVersion{1, 3, 0, 0}, GameVersion{1, 7, 999, 9999}},
	9:  {GameVersion{1, 8, 0, 0}, GameVersion{1, 8, 999, 9999}},
	10: {GameVersion{1, 9, 0, 0}, GameVersion{1, 9, 999, 9999}},
	11: {GameVersion{1, 10, 0, 0}, GameVersion{1, 10, 999, 9999}},
	12: {GameVersion{1, 11, 0, 0}, GameVersion{1, 11, 0, 9999}},
	13: {GameVersion{1, 11, 1, 0}, GameVersion{1, 11, 1, 9999}},
	14: {GameVersion{1, 11, 2, 0}, GameVersion{1, 11, 999, 999}},
	15: {GameVersion{1, 12, 0, 0}, GameVersion{999, 999, 999, 9999}},
})

// GameToChunkVersion returns the chunk version written by game version v.
// ok is false when no entry covers v; such chunks are untranslatable.
func (t *Table) GameToChunkVersion(v GameVersion) (chunkVersion int, ok bool) {
	for _, e := range t.entries {
		if e.Contains(v) {
			return e.chunkVersion, true
		}
	}
	return 0, false
}

// ChunkToGameVersion clamps the recorded maximum game version of
// chunkVersion so it never exceeds max, the world's declared version.
func (t *Table) ChunkToGameVersion(max GameVersion, chunkVersion int) (GameVersion, bool) {
	r, ok := t.Range(chunkVersion)
	if !ok {
		return GameVersion{}, false
	}
	return r.Max.Min(max), true
}

func (t *Table) Range(chunkVersion int) (Range, bool) {
	i := sort.Search(len(t.entries), func(i int) bool { return t.entries[i].chunkVersion >= chunkVersion })
	if i < len(t.entries) && t.entries[i].chunkVersion == chunkVersion {
		return t.entries[i].Range, true
	}
	return Range{}, false
}

func (t *Table) ChunkVersions() []int {
	out := make([]int, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.chunkVersion
	}
	return out
}

// LoadTable reads a table persisted as YAML:
//
//	0: [[0, 9, 0, 0], [0, 9, 1, 9999]]
//	1: [[0, 9, 2, 0], [0, 9, 4, 9999]]
func LoadTable(r io.Reader) (*Table, error) {
	var raw map[int][][]int
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "decoding version table")
	}
	ranges := make(map[int]Range, len(raw))
	for cv, pair := range raw {
		if cv < 0 {
			return nil, errors.Errorf("negative chunk version %d", cv)
		}
		if len(pair) != 2 {
			return nil, errors.Errorf("chunk version %d: want [min, max], got %d versions", cv, len(pair))
		}
		var rg Range
		for i, tuple := range pair {
			if len(tuple) != 4 {
				return nil, errors.Errorf("chunk version %d: game version %v must have 4 components", cv, tuple)
			}
			var v GameVersion
			for j, n := range tuple {
				if n < 0 {
					return nil, errors.Errorf("chunk version %d: negative component in %v", cv, tuple)
				}
				v[j] = n
			}
			if i == 0 {
				rg.Min = v
			} else {
				rg.Max = v
			}
		}
		if rg.Max.Compare(rg.Min) < 0 {
			return nil, errors.Errorf("chunk version %d: range %v..%v is inverted", cv, rg.Min, rg.Max)
		}
		ranges[cv] = rg
	}
	return NewTable(ranges), nil
}
