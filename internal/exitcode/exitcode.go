// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// Error indicates a runtime failure: the server rejected the request,
	// could not be reached, or a file could not be written.
	Error = 1

	// Usage indicates bad flags or arguments.
	Usage = 2
)
