package chunk

import (
	"strings"

	"github.com/pkg/errors"
)

// ParseBlockstate parses the form produced by Block.Blockstate, e.g.
// "minecraft:oak_door[facing=east,half=lower]". A name without a
// namespace keeps an empty Namespace.
func ParseBlockstate(s string) (Block, error) {
	var b Block
	name, props, hasProps := strings.Cut(s, "[")
	if hasProps {
		if !strings.HasSuffix(props, "]") {
			return b, errors.Errorf("unterminated property list in %q", s)
		}
		var err error
		b.Properties, err = parseProperties(strings.TrimSuffix(props, "]"))
		if err != nil {
			return b, errors.Wrapf(err, "bad blockstate %q", s)
		}
	}
	if name == "" {
		return b, errors.Errorf("empty block name in %q", s)
	}
	if ns, base, ok := strings.Cut(name, ":"); ok {
		b.Namespace, b.BaseName = ns, base
	} else {
		b.BaseName = name
	}
	if err := b.Validate(); err != nil {
		return b, errors.Wrapf(err, "bad blockstate %q", s)
	}
	return b, nil
}

// like "half=bottom,open=false"
func parseProperties(list string) (map[string]string, error) {
	m := map[string]string{}
	if list == "" {
		return m, nil
	}
	for _, pred := range strings.Split(list, ",") {
		equiv := strings.SplitN(pred, "=", 2)
		if len(equiv) != 2 || equiv[0] == "" {
			return nil, errors.Errorf("malformed property %q", pred)
		}
		m[equiv[0]] = equiv[1]
	}
	return m, nil
}

// SplitName splits "ns:name" into its parts; a bare name has an empty namespace.
func SplitName(name string) (namespace, base string) {
	if ns, b, ok := strings.Cut(name, ":"); ok {
		return ns, b
	}
	return "", name
}
