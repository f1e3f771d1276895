// Package errors provides structured, actionable error messages for pkgbuild.
//
// Every failure the harness can surface carries a registered code that maps to:
//   - A short message describing the error
//   - A detailed explanation
//   - A documentation URL
//
// Build failures additionally carry the target they happened on and, for
// bundler failures, the subprocess exit status.
//
// # Error Categories
//
//   - config: pkgbuild.json problems, missing packages directory
//   - target: unknown targets and names that match nothing
//   - build: bundler, revision lookup and output cleanup failures
//   - audit: unreadable artifacts, compression failures
//   - publish: size report upload failures
//
// # Matching
//
// Errors compare by code, so the exported sentinels work with Is:
//
//	if errors.Is(err, errors.ErrNoMatch) {
//	    // a requested name matched no package
//	}
//
// # Usage
//
//	err := errors.New(errors.CodeBundlerFailed).
//	    WithTarget("image").
//	    WithExitCode(2).
//	    WithSuggestion("Run the bundler by hand to see the full output")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E210: Bundler failed
//	//
//	//   target: image (exit status 2)
//	//
//	//   The bundler exited with a non-zero status. Its output is shown above.
//	//
//	//   Hint: Run the bundler by hand to see the full output
package errors
