package errors

import (
	"sort"
	"strings"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Routing Errors (E001-E019)
	// ============================================

	"E001": {
		Category: CategoryRouting,
		Message:  "Duplicate route pattern",
		Detail:   "Two routes under the same parent match exactly the same paths. Parameter names do not distinguish patterns.",
	},
	"E002": {
		Category: CategoryRouting,
		Message:  "Invalid route pattern",
		Detail:   "The pattern could not be parsed. Parameters need a name made of letters, digits and underscores, a splat must be the last segment, and parameter names must be unique along a route.",
	},
	"E003": {
		Category: CategoryRouting,
		Message:  "Route not found",
		Detail:   "No registered route matches the path.",
	},
	"E004": {
		Category: CategoryRouting,
		Message:  "Route tree frozen",
		Detail:   "Routes cannot be registered after the tree has been frozen.",
	},
	"E005": {
		Category: CategoryRouting,
		Message:  "Missing outlet",
		Detail:   "A parent route rendered without an outlet while its child produced output.",
	},
	"E006": {
		Category: CategoryRouting,
		Message:  "Render failed",
		Detail:   "A route's render function failed.",
	},
	"E007": {
		Category: CategoryRouting,
		Message:  "Parent belongs to another registry",
		Detail:   "Routes can only be attached to nodes returned by the same registry.",
	},

	// ============================================
	// Configuration Errors (E100-E119)
	// ============================================

	"E100": {
		Category: CategoryConfig,
		Message:  "Configuration file not readable",
		Detail:   "The configuration file exists but could not be read.",
	},
	"E101": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "The configuration file is not valid JSON.",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range or malformed.",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Invalid log level",
		Detail:   "Log level must be one of debug, info, warn or error.",
	},

	// ============================================
	// CLI Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryCLI,
		Message:  "Invalid output format",
		Detail:   "Route tables can be printed as table, tree, json or yaml.",
	},
	"E141": {
		Category: CategoryCLI,
		Message:  "Bucket required",
		Detail:   "Publishing the manifest needs a destination bucket, from --bucket or publish.bucket in outlet.json.",
	},
	"E142": {
		Category: CategoryCLI,
		Message:  "Manifest publish failed",
		Detail:   "The route manifest could not be uploaded.",
	},
	"E143": {
		Category: CategoryCLI,
		Message:  "Command failed",
		Detail:   "The command stopped with an error that has no dedicated code.",
	},
	"E144": {
		Category: CategoryCLI,
		Message:  "Unknown error code",
		Detail:   "outlet explain only knows the codes listed by running it without arguments.",
	},

	// ============================================
	// Server Errors (E160-E179)
	// ============================================

	"E160": {
		Category: CategoryServer,
		Message:  "Server failed",
		Detail:   "The HTTP server stopped with an error.",
	},
	"E161": {
		Category: CategoryServer,
		Message:  "Address in use",
		Detail:   "Another process is listening on the configured address.",
	},
}

// GetAllCodes returns all registered error codes in ascending order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[strings.ToUpper(code)]
	return t, ok
}
