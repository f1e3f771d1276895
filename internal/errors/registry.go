package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://vango.dev/docs/pkgbuild/errors/"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (E120-E139)
	// ============================================

	CodeInvalidConfig: {
		Category: CategoryConfig,
		Message:  "Invalid pkgbuild.json",
		Detail:   "The pkgbuild.json configuration file is malformed or holds invalid values.",
		DocURL:   docBase + CodeInvalidConfig,
	},
	CodeMissingPackages: {
		Category: CategoryConfig,
		Message:  "Packages directory not found",
		Detail:   "No packages directory was found in the working directory or any parent directory.",
		DocURL:   docBase + CodeMissingPackages,
	},

	// ============================================
	// Target Errors (E200-E209)
	// ============================================

	CodeUnknownTarget: {
		Category: CategoryTarget,
		Message:  "Unknown target",
		Detail:   "The target has no package directory or no package.json manifest.",
		DocURL:   docBase + CodeUnknownTarget,
	},
	CodeNoMatch: {
		Category: CategoryTarget,
		Message:  "No matching target",
		Detail:   "The requested name is neither a package name nor part of one.",
		DocURL:   docBase + CodeNoMatch,
	},

	// ============================================
	// Build Errors (E210-E219)
	// ============================================

	CodeBundlerFailed: {
		Category: CategoryBuild,
		Message:  "Bundler failed",
		Detail:   "The bundler exited with a non-zero status or could not be started. Its output is shown above.",
		DocURL:   docBase + CodeBundlerFailed,
	},
	CodeRevision: {
		Category: CategoryBuild,
		Message:  "Revision lookup failed",
		Detail:   "The current revision could not be read from version control.",
		DocURL:   docBase + CodeRevision,
	},
	CodeCleanup: {
		Category: CategoryBuild,
		Message:  "Output cleanup failed",
		Detail:   "The previous dist directory of the target could not be removed.",
		DocURL:   docBase + CodeCleanup,
	},

	// ============================================
	// Audit Errors (E220-E229)
	// ============================================

	CodeArtifact: {
		Category: CategoryAudit,
		Message:  "Artifact audit failed",
		Detail:   "The built artifact exists but could not be read or compressed.",
		DocURL:   docBase + CodeArtifact,
	},

	// ============================================
	// Publish Errors (E230-E239)
	// ============================================

	CodePublish: {
		Category: CategoryPublish,
		Message:  "Size report upload failed",
		Detail:   "The size report could not be written to the configured bucket.",
		DocURL:   docBase + CodePublish,
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
