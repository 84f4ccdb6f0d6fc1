package config

import (
	"fmt"
	"strings"
)

// LoadMethod selects how a Loader produces its value.
type LoadMethod int

const (
	Remote LoadMethod = iota
	Programmatically
	LocalFile
	Default
)

// String returns the lowercase spelling used in configuration and
// environment variables.
func (m LoadMethod) String() string {
	switch m {
	case Remote:
		return "remote"
	case Programmatically:
		return "programmatically"
	case LocalFile:
		return "localfile"
	case Default:
		return "default"
	default:
		return fmt.Sprintf("loadmethod(%d)", int(m))
	}
}

// ParseLoadMethod parses the case-insensitive spelling of a LoadMethod.
func ParseLoadMethod(s string) (LoadMethod, error) {
	switch strings.ToLower(s) {
	case "remote":
		return Remote, nil
	case "programmatically":
		return Programmatically, nil
	case "localfile":
		return LocalFile, nil
	case "default":
		return Default, nil
	default:
		return 0, fmt.Errorf("config: invalid LoadMethod %q", s)
	}
}

// Loader dispatches to one of three provided loading strategies based on a
// LoadMethod, or to a zero-argument default constructor.
type Loader[T any] struct {
	LoadRemote           func() (T, error)
	LoadProgrammatically func() (T, error)
	LoadLocalFile        func() (T, error)
	NewDefault           func() T
}

// Load runs the strategy selected by method. A nil strategy for the
// selected method is an error, except for Default, which falls back to the
// zero value of T when NewDefault is nil.
func (l Loader[T]) Load(method LoadMethod) (T, error) {
	var zero T
	switch method {
	case Remote:
		if l.LoadRemote == nil {
			return zero, fmt.Errorf("config: no remote loader configured")
		}
		return l.LoadRemote()
	case Programmatically:
		if l.LoadProgrammatically == nil {
			return zero, fmt.Errorf("config: no programmatic loader configured")
		}
		return l.LoadProgrammatically()
	case LocalFile:
		if l.LoadLocalFile == nil {
			return zero, fmt.Errorf("config: no local file loader configured")
		}
		return l.LoadLocalFile()
	case Default:
		if l.NewDefault != nil {
			return l.NewDefault(), nil
		}
		return zero, nil
	default:
		return zero, fmt.Errorf("config: unknown load method %d", int(method))
	}
}
