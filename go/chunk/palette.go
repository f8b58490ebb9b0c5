package chunk

// VersionedBlock is one half of a packed palette slot: a block tagged with
// the version it was written by.
type VersionedBlock struct {
	Version int32
	Block   Block
}

// Entry is one palette slot. Packed palettes (bedrock style) store a list
// of (version, block) pairs per slot instead of a plain object.
type Entry struct {
	Object
	Packed []VersionedBlock
}

func BlockEntry(b Block) Entry { return Entry{Object: BlockObject(b)} }

// Unwrap returns the object a reader of this slot should see, looking
// through a packed slot to its first block.
func (e Entry) Unwrap() Object {
	if len(e.Packed) > 0 {
		return BlockObject(e.Packed[0].Block)
	}
	return e.Object
}

func (e Entry) key() string {
	if len(e.Packed) > 0 {
		s := "packed"
		for _, vb := range e.Packed {
			s += "|" + vb.Block.Key()
		}
		return s
	}
	if e.Kind == KindEntity {
		return "entity|" + e.Entity.NamespacedName()
	}
	return e.Block.Key()
}

type Palette []Entry

// PaletteBuilder is an append-only, deduplicating palette. A slot number
// never changes once handed out.
type PaletteBuilder struct {
	entries Palette
	index   map[string]int
}

func NewPaletteBuilder() *PaletteBuilder {
	return &PaletteBuilder{index: map[string]int{}}
}

// Add returns the slot for b, appending it if it is new.
func (pb *PaletteBuilder) Add(b Block) int {
	return pb.AddEntry(BlockEntry(b))
}

func (pb *PaletteBuilder) AddEntry(e Entry) int {
	if pb.index == nil {
		pb.index = map[string]int{}
	}
	k := e.key()
	if i, ok := pb.index[k]; ok {
		return i
	}
	pb.entries = append(pb.entries, e)
	pb.index[k] = len(pb.entries) - 1
	return len(pb.entries) - 1
}

func (pb *PaletteBuilder) Len() int { return len(pb.entries) }

// Palette returns a copy of the slots handed out so far.
func (pb *PaletteBuilder) Palette() Palette {
	out := make(Palette, len(pb.entries))
	copy(out, pb.entries)
	return out
}
