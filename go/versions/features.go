package versions

import "fmt"

// Features describes the on-disk layout a leveldb chunk version uses.
// Empty strings mean the chunk version does not store that part.
type Features struct {
	ChunkVersion           int
	FinalisedState         string
	Data2D                 string
	Terrain                string
	BlockEntities          string
	BlockEntityFormat      string
	BlockEntityCoordFormat string
	Entities               string
	EntityFormat           string
	EntityCoordFormat      string
}

// Key is the routing key a decoder produces for one raw chunk.
type Key struct {
	Platform     string
	ChunkVersion int
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%d", k.Platform, k.ChunkVersion)
}

// Valid reports whether data with the given key can be handled with these features.
func (f Features) Valid(k Key) bool {
	return k.Platform == "bedrock" && k.ChunkVersion == f.ChunkVersion
}

type featureDelta struct {
	since int
	apply func(*Features)
}

// each chunk version inherits every delta with since <= its version
var leveldbDeltas = []featureDelta{
	{0, func(f *Features) {
		f.Data2D = "height512|biome256"
		f.Terrain = "30array"
		f.BlockEntities = "31list"
		f.BlockEntityFormat = "str-id"
		f.BlockEntityCoordFormat = "xyz-int"
		f.Entities = "32list"
		f.EntityFormat = "int-id"
		f.EntityCoordFormat = "Pos-list-float"
	}},
	{1, func(f *Features) { f.FinalisedState = "int0-2" }},
	{3, func(f *Features) { f.Terrain = "2farray" }},
	{7, func(f *Features) { f.Terrain = "2f1palette" }},
	{8, func(f *Features) { f.Terrain = "2fnpalette" }},
	{9, func(f *Features) { f.EntityFormat = "namespace-str-id" }},
}

// LevelDBFeatures returns the layout of a leveldb chunk version, or false if
// the version is not in the LevelDB table.
func LevelDBFeatures(chunkVersion int) (Features, bool) {
	if _, ok := LevelDB.Range(chunkVersion); !ok {
		return Features{}, false
	}
	var f Features
	for _, d := range leveldbDeltas {
		if d.since > chunkVersion {
			break
		}
		d.apply(&f)
	}
	f.ChunkVersion = chunkVersion
	return f, true
}
