package buttons

import (
	"regexp"
	"strings"
)

var placeholder = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// Variables lists the placeholder names in a command template, trimmed and
// deduplicated, in order of first appearance.
func Variables(template string) []string {
	var names []string
	seen := make(map[string]bool)

	for _, m := range placeholder.FindAllStringSubmatch(template, -1) {
		name := strings.TrimSpace(m[1])
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// Expand substitutes every {{ name }} in template. Names missing from
// values expand to the empty string.
func Expand(template string, values map[string]string) string {
	return placeholder.ReplaceAllStringFunc(template, func(m string) string {
		name := strings.TrimSpace(m[2 : len(m)-2])
		return values[name]
	})
}
