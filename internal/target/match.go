package target

import (
	"strings"

	"github.com/vango-dev/pkgbuild/internal/errors"
)

// Resolve maps requested names onto catalog entries.
//
// An empty request selects the whole catalog. Otherwise each requested name
// contributes, in request order:
//   - without matchAll, the exact entry if there is one, else the first
//     entry containing the name;
//   - with matchAll, every entry containing the name, in catalog order.
//
// A name that matches nothing fails the whole call with E201. Expansions of
// different names are concatenated without de-duplication, so an explicitly
// repeated request builds twice.
func Resolve(catalog, requested []string, matchAll bool) ([]string, error) {
	if len(requested) == 0 {
		return append([]string(nil), catalog...), nil
	}

	var resolved []string
	for _, name := range requested {
		matched := match(catalog, name, matchAll)
		if len(matched) == 0 {
			return nil, errors.New(errors.CodeNoMatch).
				WithTarget(name).
				WithSuggestion("Known targets: " + strings.Join(catalog, ", "))
		}
		resolved = append(resolved, matched...)
	}
	return resolved, nil
}

func match(catalog []string, name string, matchAll bool) []string {
	if matchAll {
		var all []string
		for _, entry := range catalog {
			if strings.Contains(entry, name) {
				all = append(all, entry)
			}
		}
		return all
	}

	for _, entry := range catalog {
		if entry == name {
			return []string{entry}
		}
	}
	for _, entry := range catalog {
		if strings.Contains(entry, name) {
			return []string{entry}
		}
	}
	return nil
}
