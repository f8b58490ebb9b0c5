package rules

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/rmmh/worldshift/go/translate"
	"github.com/rmmh/worldshift/go/versions"
)

var ErrUnknownVersion = errors.New("no rules for version")

// registryKey holds the chunk version when there is one and the game
// version otherwise, so a numbered key matches regardless of its Game.
type registryKey struct {
	platform string
	number   int
	game     versions.GameVersion
}

func keyOf(key translate.VersionKey) registryKey {
	if key.Number != 0 {
		return registryKey{platform: key.Platform, number: key.Number}
	}
	return registryKey{platform: key.Platform, game: key.Game}
}

// Registry is a translate.Provider over registered rule sets. Java data
// versions with no registered table get the built-in migration rules.
type Registry struct {
	log *slog.Logger

	mu       sync.RWMutex
	versions map[registryKey]translate.Version
}

func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Registry{log: log, versions: map[registryKey]translate.Version{}}
}

func (r *Registry) Register(key translate.VersionKey, v translate.Version) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.versions[keyOf(key)] = v
}

// LoadDir registers every *.json rule table in dir.
func (r *Registry) LoadDir(dir string) error {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return errors.Wrapf(err, "listing %s", dir)
	}
	for _, path := range paths {
		buf, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "reading %s", path)
		}
		t, err := ParseTable(buf)
		if err != nil {
			return errors.Wrapf(err, "parsing %s", path)
		}
		r.Register(t.Key(), t)
		r.log.Info("loaded rule table", "file", filepath.Base(path), "version", t.Key().String(),
			"to_universal", len(t.to), "from_universal", len(t.from))
	}
	return nil
}

func (r *Registry) Version(key translate.VersionKey) (translate.Version, error) {
	k := keyOf(key)
	r.mu.RLock()
	v, ok := r.versions[k]
	r.mu.RUnlock()
	if ok {
		return v, nil
	}
	if key.Platform == "java" && key.Number > 0 {
		if key.Number > JavaLatest {
			r.log.Warn("data version is newer than the known migrations", "version", key.Number, "latest", JavaLatest)
		}
		v = Java(key.Number)
		r.Register(key, v)
		return v, nil
	}
	return nil, errors.Wrapf(ErrUnknownVersion, "%s", key)
}
