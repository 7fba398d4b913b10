package style

import "strings"

// Slug derives a file-system safe name: lower-cased, " - " becomes "_",
// then any remaining space becomes "_".
func Slug(descriptor string) string {
	s := strings.ToLower(descriptor)
	s = strings.ReplaceAll(s, " - ", "_")
	return strings.ReplaceAll(s, " ", "_")
}

// builtinStyles are the styles shipped with the web front-end.
var builtinStyles = []string{
	"Van Gogh - Starry Night",
	"Picasso - Cubist",
	"Cyberpunk Neon",
	"Monet - Water Lilies",
	"Anime Studio Ghibli",
}

// BuiltinStyles returns the shipped style descriptors in generation order.
func BuiltinStyles() []string {
	out := make([]string, len(builtinStyles))
	copy(out, builtinStyles)
	return out
}
