package chunk

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Block is a namespaced block state, optionally stacked with extra layers
// (e.g. a waterlogged block carries its fluid as an extra layer).
type Block struct {
	Namespace  string
	BaseName   string
	Properties map[string]string
	Extra      []Block
}

func NewBlock(namespace, baseName string, properties map[string]string) Block {
	return Block{Namespace: namespace, BaseName: baseName, Properties: properties}
}

func (b Block) NamespacedName() string {
	if b.Namespace == "" {
		return b.BaseName
	}
	return b.Namespace + ":" + b.BaseName
}

// Base returns the block without its extra layers.
func (b Block) Base() Block {
	b.Extra = nil
	return b
}

// Layers returns the base block followed by each extra layer, in order.
func (b Block) Layers() []Block {
	layers := make([]Block, 0, 1+len(b.Extra))
	layers = append(layers, b.Base())
	for _, e := range b.Extra {
		layers = append(layers, e.Base())
	}
	return layers
}

// Stack returns a copy of b with every layer of other appended as extra layers.
func (b Block) Stack(other Block) Block {
	extra := make([]Block, 0, len(b.Extra)+1+len(other.Extra))
	extra = append(extra, b.Extra...)
	extra = append(extra, other.Layers()...)
	b.Extra = extra
	return b
}

// Blockstate formats the base layer as namespace:name[k=v,...] with sorted keys.
func (b Block) Blockstate() string {
	var sb strings.Builder
	sb.WriteString(b.NamespacedName())
	if len(b.Properties) > 0 {
		keys := make([]string, 0, len(b.Properties))
		for k := range b.Properties {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteByte('[')
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(k)
			sb.WriteByte('=')
			sb.WriteString(b.Properties[k])
		}
		sb.WriteByte(']')
	}
	return sb.String()
}

// Key identifies a block including its layers. Two blocks are equal iff their keys are.
func (b Block) Key() string {
	if len(b.Extra) == 0 {
		return b.Blockstate()
	}
	parts := make([]string, 0, 1+len(b.Extra))
	for _, l := range b.Layers() {
		parts = append(parts, l.Blockstate())
	}
	return strings.Join(parts, "\n")
}

func (b Block) String() string {
	return b.Key()
}

// reserved delimits blockstate strings and the layers of a Key.
const reserved = "[],=\n"

// Validate rejects names, property keys and property values, in any
// layer, that the blockstate form cannot carry.
func (b Block) Validate() error {
	for _, l := range b.Layers() {
		if strings.ContainsAny(l.Namespace, reserved+":") || strings.ContainsAny(l.BaseName, reserved) {
			return errors.Errorf("block name %q contains a reserved character", l.NamespacedName())
		}
		for k, v := range l.Properties {
			if k == "" || strings.ContainsAny(k, reserved) {
				return errors.Errorf("%s: property name %q is empty or contains a reserved character", l.NamespacedName(), k)
			}
			if strings.ContainsAny(v, reserved) {
				return errors.Errorf("%s: value %q of %s contains a reserved character", l.NamespacedName(), v, k)
			}
		}
	}
	return nil
}
