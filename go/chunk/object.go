package chunk

import "fmt"

// BlockEntity is the structured data attached to one block position.
// Namespace is empty while the name is still a bare, version-specific id.
type BlockEntity struct {
	Namespace string
	BaseName  string
	X, Y, Z   int
	NBT       map[string]any
}

func (be *BlockEntity) NamespacedName() string {
	if be.Namespace == "" {
		return be.BaseName
	}
	return be.Namespace + ":" + be.BaseName
}

func (be *BlockEntity) SetNamespacedName(name string) {
	be.Namespace, be.BaseName = SplitName(name)
}

// At returns a copy of be placed at the given absolute position.
// The NBT map is shared with the template.
func (be *BlockEntity) At(x, y, z int) *BlockEntity {
	out := *be
	out.X, out.Y, out.Z = x, y, z
	return &out
}

// Entity is a mobile object. Its position is never rewritten by translation.
type Entity struct {
	Namespace  string
	BaseName   string
	Properties map[string]any
	X, Y, Z    float64
}

func (e Entity) NamespacedName() string {
	if e.Namespace == "" {
		return e.BaseName
	}
	return e.Namespace + ":" + e.BaseName
}

type Kind uint8

const (
	KindBlock Kind = iota
	KindEntity
)

func (k Kind) String() string {
	switch k {
	case KindBlock:
		return "block"
	case KindEntity:
		return "entity"
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Object is what a translation rule consumes or produces: a block or an entity.
type Object struct {
	Kind   Kind
	Block  Block
	Entity Entity
}

func BlockObject(b Block) Object   { return Object{Kind: KindBlock, Block: b} }
func EntityObject(e Entity) Object { return Object{Kind: KindEntity, Entity: e} }

func (o Object) String() string {
	if o.Kind == KindEntity {
		return "entity " + o.Entity.NamespacedName()
	}
	return o.Block.Key()
}
