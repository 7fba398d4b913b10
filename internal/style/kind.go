package style

import "strings"

// Kind is the style family a descriptor resolves to.
type Kind int

// Kinds in match priority order. Identity is the fallback and never matches.
const (
	Identity Kind = iota
	VanGogh
	Picasso
	Cyberpunk
	Monet
	Anime
)

var kindNames = map[Kind]string{
	Identity:  "identity",
	VanGogh:   "van_gogh",
	Picasso:   "picasso",
	Cyberpunk: "cyberpunk",
	Monet:     "monet",
	Anime:     "anime",
}

// String returns the kind's table label.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Kinds returns every matchable kind in priority order.
func Kinds() []Kind {
	return []Kind{VanGogh, Picasso, Cyberpunk, Monet, Anime}
}

func parseKind(label string) (Kind, bool) {
	for k, name := range kindNames {
		if name == label {
			return k, true
		}
	}
	return Identity, false
}

// Resolve maps a descriptor to the first kind whose match substring it
// contains, or Identity if none does.
func Resolve(descriptor string) Kind {
	return Table().Resolve(descriptor)
}

// Resolve is like the package-level Resolve but uses t.
func (t *StyleTable) Resolve(descriptor string) Kind {
	for _, k := range Kinds() {
		entry, ok := t.entries[k]
		if ok && entry.Match != "" && strings.Contains(descriptor, entry.Match) {
			return k
		}
	}
	return Identity
}
