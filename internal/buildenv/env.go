// Package buildenv computes the environment handed to the bundler for one
// target. Resolution is pure: the same inputs always yield the same
// Environment, and the commit is an explicit argument.
package buildenv

import "strings"

// Build modes.
const (
	Development = "development"
	Production  = "production"
)

// Flags are the run-wide build switches taken from the command line.
type Flags struct {
	// Formats is a comma-separated output format list.
	Formats string

	// DevOnly forces development builds.
	DevOnly bool

	// ProdOnly restricts output to production builds. Ignored with DevOnly.
	ProdOnly bool

	// MatchAll expands every substring match of a requested name.
	MatchAll bool

	// Types requests type declaration output.
	Types bool
}

// Normalize returns f with ProdOnly cleared when DevOnly is set.
func (f Flags) Normalize() Flags {
	if f.DevOnly {
		f.ProdOnly = false
	}
	return f
}

// Var is one environment entry.
type Var struct {
	Key   string
	Value string
}

// Environment is an ordered set of bundler environment entries.
type Environment []Var

// Lookup returns the value of key and whether it is present.
func (e Environment) Lookup(key string) (string, bool) {
	for _, v := range e {
		if v.Key == key {
			return v.Value, true
		}
	}
	return "", false
}

// String renders the environment as the bundler's --environment argument,
// e.g. "COMMIT:abc1234,NODE_ENV:production,TARGET:image".
func (e Environment) String() string {
	parts := make([]string, len(e))
	for i, v := range e {
		parts[i] = v.Key + ":" + v.Value
	}
	return strings.Join(parts, ",")
}

// Resolve computes the environment of target. manifestEnv is the package's
// declared buildOptions.env, "" when it declares none.
//
// Keys appear in the order COMMIT, NODE_ENV, TARGET, FORMATS, TYPES,
// PROD_ONLY. Keys whose value would be empty are left out.
func Resolve(target, manifestEnv string, flags Flags, commit string) Environment {
	flags = flags.Normalize()

	mode := manifestEnv
	if mode == "" {
		if flags.DevOnly {
			mode = Development
		} else {
			mode = Production
		}
	}

	var env Environment
	add := func(key, value string) {
		if value != "" {
			env = append(env, Var{Key: key, Value: value})
		}
	}

	add("COMMIT", commit)
	add("NODE_ENV", mode)
	add("TARGET", target)
	add("FORMATS", flags.Formats)
	if flags.Types {
		add("TYPES", "true")
	}
	if flags.ProdOnly {
		add("PROD_ONLY", "true")
	}

	return env
}

// Watch computes the environment of a watch-mode build: commit, target and
// the format list, which falls back to defaultFormats.
func Watch(target, formats, defaultFormats, commit string) Environment {
	if formats == "" {
		formats = defaultFormats
	}

	var env Environment
	for _, v := range []Var{
		{"COMMIT", commit},
		{"TARGET", target},
		{"FORMATS", formats},
	} {
		if v.Value != "" {
			env = append(env, v)
		}
	}
	return env
}
