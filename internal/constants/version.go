// Package constants defines global constants used throughout runadapt.
package constants

var version = "0.0.0-development" // Updated by CI/CD pipeline at build time

// GetVersion returns the current version of runadapt.
func GetVersion() *string {
	return &version
}

// ProjectName is the name of the CLI tool and application
const ProjectName = "runadapt"

// EnvPrefix is the prefix of every environment variable read by the config loader.
const EnvPrefix = "RUNADAPT"
