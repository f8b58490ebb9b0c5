package translate

import "github.com/rmmh/worldshift/go/chunk"

// aliasToUniversal gives bare block entity ids their namespaced name.
// Already-namespaced entries are left alone.
func (e *Engine) aliasToUniversal(v Version, bes []*chunk.BlockEntity) {
	forward, _ := v.BlockEntityAliases()
	if forward == nil {
		return
	}
	for _, be := range bes {
		if be.Namespace != "" {
			continue
		}
		if name, ok := forward[be.BaseName]; ok {
			be.SetNamespacedName(name)
		} else {
			e.log.Warn("no namespaced name for block entity", "name", be.BaseName, "x", be.X, "y", be.Y, "z", be.Z)
		}
	}
}

func (e *Engine) aliasFromUniversal(v Version, bes []*chunk.BlockEntity) {
	_, inverse := v.BlockEntityAliases()
	if inverse == nil {
		return
	}
	for _, be := range bes {
		if name, ok := inverse[be.NamespacedName()]; ok {
			be.SetNamespacedName(name)
		} else {
			e.log.Warn("no version name for block entity", "name", be.NamespacedName(), "x", be.X, "y", be.Y, "z", be.Z)
		}
	}
}
