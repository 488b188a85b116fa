// Package output provides JSON/Markdown output formatting and error handling.
package output

// Exit codes.
const (
	ExitOK        = 0 // Success
	ExitUsage     = 1 // Invalid arguments or flags
	ExitNotFound  = 2 // Item not found
	ExitConflict  = 3 // Store rejected the write
	ExitNetwork   = 4 // Connection/DNS/timeout error
	ExitAPI       = 5 // Server returned error
	ExitCanceled  = 6 // User declined a prompt
	ExitAmbiguous = 7 // Multiple items match a name
)

// Error codes for JSON envelope.
const (
	CodeUsage     = "usage"
	CodeNotFound  = "not_found"
	CodeConflict  = "conflict"
	CodeNetwork   = "network"
	CodeAPI       = "api_error"
	CodeCanceled  = "canceled"
	CodeAmbiguous = "ambiguous"
)

// ExitCodeFor returns the exit code for a given error code.
func ExitCodeFor(code string) int {
	switch code {
	case CodeUsage:
		return ExitUsage
	case CodeNotFound:
		return ExitNotFound
	case CodeConflict:
		return ExitConflict
	case CodeNetwork:
		return ExitNetwork
	case CodeAPI:
		return ExitAPI
	case CodeCanceled:
		return ExitCanceled
	case CodeAmbiguous:
		return ExitAmbiguous
	default:
		return ExitAPI
	}
}
