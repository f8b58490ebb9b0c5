package main

import (
	"github.com/rmmh/worldshift/go/chunk"
	"github.com/rmmh/worldshift/go/store"
	"github.com/rmmh/worldshift/go/translate"
)

// storeSource serves neighbors from a chunk database whose rows all
// belong to one platform; each row carries its own chunk version.
type storeSource struct {
	*store.Store
	platform string
}

func (s *storeSource) LoadVersioned(cx, cz int) (translate.VersionKey, *chunk.Chunk, chunk.Palette, error) {
	version, c, pal, err := s.Get(cx, cz)
	if err != nil {
		return translate.VersionKey{}, nil, nil, err
	}
	return translate.VersionKey{Platform: s.platform, Number: version}, c, pal, nil
}
