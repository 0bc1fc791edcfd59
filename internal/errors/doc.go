// Package errors provides structured, actionable error messages for the
// outlet CLI and server.
//
// Each error has a unique code (e.g., "E001") that maps to a category, a
// short message and a detailed explanation. Errors can carry a source
// location, which the terminal formatter prints with the surrounding lines
// of the file, and a suggestion for fixing the problem.
//
// # Error Categories
//
//   - routing: route table construction and resolution
//   - config: outlet.json loading and validation
//   - cli: command usage and publishing
//   - server: listener and connection failures
//
// # Usage
//
//	err := errors.New("E101").
//	    WithLocation("outlet.json", 4, 13).
//	    WithSuggestion("Remove the trailing comma")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E101: Invalid configuration file
//	//
//	//   outlet.json:4:13
//	//   ...
//	//
//	//   Hint: Remove the trailing comma
//
// Router errors are mapped to codes with FromRouterError.
package errors
