package config

import (
	"github.com/runvoy/runadapt/internal/constants"

	"github.com/spf13/viper"
)

// Accessor exposes the environment facts adapters report but do not own.
// Implementations are read on every call so changes made while the process
// runs are visible.
type Accessor interface {
	Mode() constants.Environment
	DBKind() string
	DBHost() string
	DBPort() int
}

type viperAccessor struct {
	v *viper.Viper
}

// NewAccessor returns an Accessor reading v on every call.
func NewAccessor(v *viper.Viper) Accessor {
	return &viperAccessor{v: v}
}

// FromEnvironment returns an Accessor over the RUNADAPT_* environment.
func FromEnvironment() Accessor {
	return NewAccessor(NewViper())
}

func (a *viperAccessor) Mode() constants.Environment {
	return constants.ParseEnvironment(a.v.GetString("mode"))
}

func (a *viperAccessor) DBKind() string { return a.v.GetString("db_kind") }
func (a *viperAccessor) DBHost() string { return a.v.GetString("db_host") }
func (a *viperAccessor) DBPort() int    { return a.v.GetInt("db_port") }

// Static is a fixed Accessor, mostly useful in tests.
type Static struct {
	Env  constants.Environment
	Kind string
	Host string
	Port int
}

// Mode returns s.Env, or Production when unset.
func (s Static) Mode() constants.Environment {
	if s.Env == "" {
		return constants.Production
	}
	return s.Env
}

func (s Static) DBKind() string { return s.Kind }
func (s Static) DBHost() string { return s.Host }
func (s Static) DBPort() int    { return s.Port }
