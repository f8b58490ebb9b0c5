package rules

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/pkg/errors"
	"github.com/rmmh/worldshift/go/chunk"
	"github.com/rmmh/worldshift/go/translate"
	"github.com/rmmh/worldshift/go/versions"
	"github.com/samber/lo"
	"github.com/tidwall/gjson"
)

// Universal is the namespace of the universal format.
const Universal = "universal_minecraft"

// Rule rewrites one block name.
type Rule struct {
	// Name is the output name. Empty keeps the input base name in the
	// other direction's namespace.
	Name       string
	Properties map[string]string
	Drop       []string
	// Connect sets a property to "true" when the block at the offset has
	// the same base name as the input, and makes the rule context dependent.
	Connect     map[string][3]int
	BlockEntity string
	Entity      bool
}

// Table is a rule set loaded from a JSON rule file.
type Table struct {
	Platform     string
	ChunkVersion int
	Game         versions.GameVersion

	to, from   map[string]Rule
	biomesTo   map[int32]int32
	biomesFrom map[int32]int32
	forward    map[string]string
	inverse    map[string]string
}

// Key is the provider key the table registers under.
func (t *Table) Key() translate.VersionKey {
	return translate.VersionKey{Platform: t.Platform, Number: t.ChunkVersion, Game: t.Game}
}

// ParseTable reads a rule table. A table naming only a game version gets
// its chunk version from the leveldb version table.
func ParseTable(buf []byte) (*Table, error) {
	if !gjson.ValidBytes(buf) {
		return nil, errors.New("rule table is not valid JSON")
	}
	doc := gjson.ParseBytes(buf)
	t := &Table{Platform: doc.Get("platform").String()}
	if t.Platform == "" {
		return nil, errors.New("rule table has no platform")
	}

	if v := doc.Get("version"); v.Exists() {
		parts := v.Array()
		if len(parts) == 0 || len(parts) > 4 {
			return nil, errors.Errorf("version %s must have 1 to 4 components", v.Raw)
		}
		for i, p := range parts {
			t.Game[i] = int(p.Int())
		}
	}
	if cv := doc.Get("chunk_version"); cv.Exists() {
		t.ChunkVersion = int(cv.Int())
	} else if t.Platform == "bedrock" && !t.Game.IsZero() {
		n, ok := versions.LevelDB.GameToChunkVersion(t.Game)
		if !ok {
			return nil, errors.Errorf("no chunk version for game version %s", t.Game)
		}
		t.ChunkVersion = n
	}

	var err error
	if t.to, err = parseRules(doc.Get("blocks.to_universal")); err != nil {
		return nil, errors.Wrap(err, "blocks.to_universal")
	}
	if t.from, err = parseRules(doc.Get("blocks.from_universal")); err != nil {
		return nil, errors.Wrap(err, "blocks.from_universal")
	}
	if t.biomesTo, err = parseBiomes(doc.Get("biomes.to_universal")); err != nil {
		return nil, errors.Wrap(err, "biomes.to_universal")
	}
	if t.biomesFrom, err = parseBiomes(doc.Get("biomes.from_universal")); err != nil {
		return nil, errors.Wrap(err, "biomes.from_universal")
	}
	// a table that only lists one biome direction is its own inverse
	if t.biomesFrom == nil && t.biomesTo != nil {
		t.biomesFrom = lo.Invert(t.biomesTo)
	}

	if bes := doc.Get("block_entities"); bes.Exists() {
		t.forward = map[string]string{}
		bes.ForEach(func(k, v gjson.Result) bool {
			t.forward[k.String()] = v.String()
			return true
		})
		t.inverse = lo.Invert(t.forward)
	}
	return t, nil
}

func parseRules(section gjson.Result) (map[string]Rule, error) {
	rules := map[string]Rule{}
	var err error
	section.ForEach(func(k, v gjson.Result) bool {
		if !v.IsObject() {
			err = errors.Errorf("rule for %s is not an object", k.String())
			return false
		}
		r := Rule{
			Name:        v.Get("name").String(),
			BlockEntity: v.Get("block_entity").String(),
			Entity:      v.Get("entity").Bool(),
		}
		if props := v.Get("properties"); props.Exists() {
			r.Properties = map[string]string{}
			props.ForEach(func(pk, pv gjson.Result) bool {
				r.Properties[pk.String()] = pv.String()
				return true
			})
		}
		for _, d := range v.Get("drop").Array() {
			r.Drop = append(r.Drop, d.String())
		}
		if conn := v.Get("connect"); conn.Exists() {
			r.Connect = map[string][3]int{}
			conn.ForEach(func(pk, off gjson.Result) bool {
				xyz := off.Array()
				if len(xyz) != 3 {
					err = errors.Errorf("rule for %s: connect offset %s is not [dx,dy,dz]", k.String(), off.Raw)
					return false
				}
				r.Connect[pk.String()] = [3]int{int(xyz[0].Int()), int(xyz[1].Int()), int(xyz[2].Int())}
				return true
			})
			if err != nil {
				return false
			}
		}
		rules[k.String()] = r
		return true
	})
	return rules, err
}

func parseBiomes(section gjson.Result) (map[int32]int32, error) {
	if !section.Exists() {
		return nil, nil
	}
	m := map[int32]int32{}
	var err error
	section.ForEach(func(k, v gjson.Result) bool {
		n, perr := strconv.ParseInt(k.String(), 10, 32)
		if perr != nil {
			err = errors.Errorf("biome code %q is not a number", k.String())
			return false
		}
		m[int32(n)] = int32(v.Int())
		return true
	})
	return m, err
}

func namespaceFor(dir translate.Direction) string {
	if dir == translate.ToUniversal {
		return Universal
	}
	return "minecraft"
}

func (t *Table) Block(dir translate.Direction, b chunk.Block, get translate.Lookup) (chunk.Object, *chunk.BlockEntity, bool, error) {
	rules := t.to
	if dir == translate.FromUniversal {
		rules = t.from
	}
	ns := namespaceFor(dir)
	r, ok := rules[b.NamespacedName()]
	if !ok {
		return chunk.BlockObject(chunk.NewBlock(ns, b.BaseName, b.Properties)), nil, false, nil
	}

	out := chunk.NewBlock(ns, b.BaseName, lo.Assign(b.Properties, r.Properties))
	if r.Name != "" {
		out.Namespace, out.BaseName = chunk.SplitName(r.Name)
		if out.Namespace == "" {
			out.Namespace = ns
		}
	}
	for _, d := range r.Drop {
		delete(out.Properties, d)
	}

	needsContext := len(r.Connect) > 0
	if needsContext && get != nil {
		for _, prop := range slices.Sorted(maps.Keys(r.Connect)) {
			off := r.Connect[prop]
			n, _, err := get(off[0], off[1], off[2])
			if err != nil {
				return chunk.Object{}, nil, true, err
			}
			out.Properties[prop] = strconv.FormatBool(n.BaseName == b.BaseName)
		}
	}

	if r.Entity {
		props := lo.MapValues(out.Properties, func(v string, _ string) any { return v })
		return chunk.EntityObject(chunk.Entity{Namespace: out.Namespace, BaseName: out.BaseName, Properties: props}), nil, needsContext, nil
	}

	var be *chunk.BlockEntity
	if r.BlockEntity != "" {
		be = &chunk.BlockEntity{NBT: map[string]any{}}
		be.SetNamespacedName(r.BlockEntity)
	}
	return chunk.BlockObject(out), be, needsContext, nil
}

func (t *Table) Biome(dir translate.Direction, code int32) int32 {
	m := t.biomesTo
	if dir == translate.FromUniversal {
		m = t.biomesFrom
	}
	if out, ok := m[code]; ok {
		return out
	}
	return code
}

func (t *Table) BlockEntityAliases() (map[string]string, map[string]string) {
	return t.forward, t.inverse
}

func (t *Table) String() string {
	return fmt.Sprintf("%s rules (%d to, %d from)", t.Key(), len(t.to), len(t.from))
}
