// Package target enumerates the buildable packages of a monorepo and
// resolves user-supplied names against them.
//
// A target is a directory under the packages root holding a package.json.
// Names are resolved exactly first and by substring otherwise:
//
//	names := []string{"image", "image-core", "cli"}
//	target.Resolve(names, []string{"image"}, false) // [image]
//	target.Resolve(names, []string{"image"}, true)  // [image image-core]
//	target.Resolve(names, []string{"core"}, false)  // [image-core]
package target
