package constants

import "strings"

// Environment represents the execution mode of the process.
type Environment string

// Environment types for logger configuration and error redaction.
const (
	Development Environment = "development"
	Production  Environment = "production"
	CLI         Environment = "cli"
)

// ParseEnvironment maps a free-form mode string onto an Environment.
// Unknown and empty values are treated as Production so error details are never leaked by accident.
func ParseEnvironment(s string) Environment {
	switch Environment(strings.ToLower(strings.TrimSpace(s))) {
	case Development:
		return Development
	case CLI:
		return CLI
	default:
		return Production
	}
}

// Runtime identifies the hosting platform an adapter serves.
type Runtime string

const (
	// RuntimeFunction is the request-scoped function runtime (AWS Lambda).
	RuntimeFunction Runtime = "lambda"
	// RuntimeEdge is the isolate runtime speaking standard request/response objects.
	RuntimeEdge Runtime = "edge"
	// RuntimeServer is the long-lived process owning a listening socket.
	RuntimeServer Runtime = "server"
)

// Runtimes lists every supported runtime.
var Runtimes = []Runtime{RuntimeFunction, RuntimeEdge, RuntimeServer}

// ParseRuntime returns the Runtime matching s and whether it is known.
func ParseRuntime(s string) (Runtime, bool) {
	r := Runtime(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Runtimes {
		if r == known {
			return r, true
		}
	}
	return "", false
}
