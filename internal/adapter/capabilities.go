package adapter

import (
	"github.com/runvoy/runadapt/internal/constants"
)

// Capabilities lets application code ask what the hosting runtime offers.
type Capabilities interface {
	// SupportsPersistentConnections reports whether the process outlives a
	// single request, so pooled connections are worth keeping.
	SupportsPersistentConnections() bool
	// Environment reports the execution mode and database facts.
	Environment() EnvironmentSnapshot
}

// EnvironmentSnapshot is the environment as seen at the time of the call.
type EnvironmentSnapshot struct {
	Mode      constants.Environment `json:"mode" yaml:"mode"`
	RuntimeID constants.Runtime     `json:"runtimeId" yaml:"runtimeId"`
	DBKind    string                `json:"dbKind" yaml:"dbKind"`
	DBHost    string                `json:"dbHost,omitempty" yaml:"dbHost,omitempty"`
	DBPort    int                   `json:"dbPort,omitempty" yaml:"dbPort,omitempty"`
}

// Environment reads the accessor on every call.
func (c *core) Environment() EnvironmentSnapshot {
	env := c.env()
	return EnvironmentSnapshot{
		Mode:      env.Mode(),
		RuntimeID: c.runtime,
		DBKind:    env.DBKind(),
		DBHost:    env.DBHost(),
		DBPort:    env.DBPort(),
	}
}

var (
	_ Capabilities = (*Function)(nil)
	_ Capabilities = (*Edge)(nil)
	_ Capabilities = (*Server)(nil)
)
