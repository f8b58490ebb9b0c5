package translate

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/rmmh/worldshift/go/chunk"
)

const universalPrefix = "universal"

// Result is the merged translation of one palette object.
type Result struct {
	Block        *chunk.Block
	BlockEntity  *chunk.BlockEntity
	Entities     []chunk.Entity
	NeedsContext bool
}

// Air is the block a slot becomes when no layer produced a block.
func Air(dir Direction) chunk.Block {
	if dir == ToUniversal {
		return chunk.NewBlock("universal_minecraft", "air", nil)
	}
	return chunk.NewBlock("minecraft", "air", nil)
}

func (r Result) block(dir Direction) chunk.Block {
	if r.Block == nil {
		return Air(dir)
	}
	return *r.Block
}

// TranslateObject runs v's block rule over every layer of obj and merges
// the outputs: blocks are stacked in layer order, entities are collected,
// only the base layer may contribute a block entity, and NeedsContext is
// set if any layer needed it.
func (e *Engine) TranslateObject(v Version, dir Direction, obj chunk.Object, get Lookup) (Result, error) {
	var res Result
	switch obj.Kind {
	case chunk.KindEntity:
		if dir == ToUniversal {
			return res, errors.Wrapf(ErrUnsupported, "input %s", obj.Entity.NamespacedName())
		}
		res.Entities = append(res.Entities, obj.Entity)
		return res, nil
	case chunk.KindBlock:
	default:
		return res, errors.Errorf("unknown object kind %v", obj.Kind)
	}

	for depth, layer := range obj.Block.Layers() {
		out, be, extra, err := v.Block(dir, layer, get)
		if err != nil {
			return Result{}, errors.Wrapf(err, "translating %s", layer.Blockstate())
		}
		switch out.Kind {
		case chunk.KindBlock:
			if strings.HasPrefix(out.Block.Namespace, universalPrefix) != (dir == ToUniversal) {
				e.log.Warn("unexpected namespace after translation",
					"direction", dir.String(),
					"input", obj.Block.Key(),
					"output", out.Block.Blockstate())
			}
			if res.Block == nil {
				b := out.Block
				res.Block = &b
			} else {
				b := res.Block.Stack(out.Block)
				res.Block = &b
			}
			if depth == 0 {
				res.BlockEntity = be
			}
		case chunk.KindEntity:
			// entity positions are passed through as the rule produced them,
			// not rewritten to the block's position
			res.Entities = append(res.Entities, out.Entity)
		default:
			return Result{}, errors.Errorf("rule for %s returned unknown object kind %v", layer.Blockstate(), out.Kind)
		}
		res.NeedsContext = res.NeedsContext || extra
	}
	return res, nil
}
