package build

import (
	"strings"

	"github.com/vango-dev/pkgbuild/internal/errors"
)

// shortRevisionLen is the length of the commit passed to the bundler.
const shortRevisionLen = 7

// Revision runs the revision command once and returns the first seven
// characters of its output. Call it once per run and pass the result to
// every build.
func Revision(r Runner, name string, args ...string) (string, error) {
	out, err := r.Output(name, args...)
	if err != nil {
		return "", errors.New(errors.CodeRevision).
			WithDetail("Running " + name + " " + strings.Join(args, " ") + " failed.").
			WithSuggestion("Run pkgbuild inside a git checkout or set revision.command in pkgbuild.json").
			Wrap(err)
	}

	rev := strings.TrimSpace(string(out))
	if rev == "" {
		return "", errors.New(errors.CodeRevision).
			WithDetail(name + " printed no revision.")
	}
	if len(rev) > shortRevisionLen {
		rev = rev[:shortRevisionLen]
	}
	return rev, nil
}
