package marketplace

import "strings"

// Suggest returns every make containing term, ignoring case, in the order of
// makes. A blank term yields no suggestions.
func Suggest(term string, makes []string) []string {
	want := fold(strings.TrimSpace(term))
	if want == "" {
		return []string{}
	}

	out := []string{}
	for _, m := range makes {
		if strings.Contains(fold(m), want) {
			out = append(out, m)
		}
	}
	return out
}
