package versions

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// GameVersion is a (major, minor, patch, revision) game release.
type GameVersion [4]int

// ParseGameVersion accepts 1 to 4 dot separated components; missing ones are zero.
func ParseGameVersion(s string) (GameVersion, error) {
	var v GameVersion
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) > 4 {
		return v, errors.Errorf("game version %q has more than 4 components", s)
	}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return v, errors.Errorf("bad component %q in game version %q", p, s)
		}
		v[i] = n
	}
	return v, nil
}

// Compare orders versions lexicographically, returning -1, 0 or 1.
func (v GameVersion) Compare(o GameVersion) int {
	for i := range v {
		if v[i] != o[i] {
			if v[i] < o[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Min returns the componentwise minimum of v and o.
func (v GameVersion) Min(o GameVersion) GameVersion {
	for i := range v {
		v[i] = min(v[i], o[i])
	}
	return v
}

func (v GameVersion) IsZero() bool {
	return v == GameVersion{}
}

func (v GameVersion) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v[0], v[1], v[2], v[3])
}
