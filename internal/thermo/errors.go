package thermo

import (
	"errors"
	"fmt"
)

// Domain errors for thermo configuration and reporting.
var (
	ErrUnknownKeyword   = errors.New("thermo: unknown keyword")
	ErrMalformedIndex   = errors.New("thermo: malformed index")
	ErrBadFormat        = errors.New("thermo: invalid format string")
	ErrProviderNotFound = errors.New("thermo: provider not found")
	ErrWrongKind        = errors.New("thermo: provider does not compute requested kind")
	ErrWrongQuantity    = errors.New("thermo: provider does not compute requested quantity")
	ErrIndexRange       = errors.New("thermo: index out of declared bounds")
	ErrBetweenRuns      = errors.New("thermo: keyword not usable outside an active run")
	ErrRoleNotBound     = errors.New("thermo: keyword requires a provider thermo does not use")
	ErrBadOption        = errors.New("thermo: invalid option")
	ErrNotCurrent       = errors.New("thermo: value not available for this step")
	ErrLostAtoms        = errors.New("thermo: lost atoms")
	ErrBondAtomsMissing = errors.New("thermo: bond atoms missing")
	ErrNotSetup         = errors.New("thermo: session not set up")
)

// ConfigError is returned by Configure and Modify. The pipeline and settings
// are unchanged when it is returned.
type ConfigError struct {
	Keyword  string
	Provider string
	Err      error
}

func (e *ConfigError) Error() string {
	msg := e.Err.Error()
	if e.Keyword != "" {
		msg += fmt.Sprintf(" (keyword %q)", e.Keyword)
	}
	if e.Provider != "" {
		msg += fmt.Sprintf(" (provider %q)", e.Provider)
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

// UnavailableError aborts a single Report call.
type UnavailableError struct {
	Column   int
	Keyword  string
	Provider string
	Step     int64
	Err      error
}

func (e *UnavailableError) Error() string {
	msg := fmt.Sprintf("step %d: column %d %q: %s", e.Step, e.Column+1, e.Keyword, e.Err)
	if e.Provider != "" {
		msg += fmt.Sprintf(" (provider %q)", e.Provider)
	}
	return msg
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// ConsistencyError reports a changed atom count under the error policy.
type ConsistencyError struct {
	Original int64
	Current  int64
	Step     int64
	Err      error
}

func (e *ConsistencyError) Error() string {
	if errors.Is(e.Err, ErrBondAtomsMissing) {
		return fmt.Sprintf("step %d: %s", e.Step, e.Err)
	}
	return fmt.Sprintf("step %d: %s: original %d current %d", e.Step, e.Err, e.Original, e.Current)
}

func (e *ConsistencyError) Unwrap() error { return e.Err }

func IsConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}

func IsConsistency(err error) bool {
	var ce *ConsistencyError
	return errors.As(err, &ce)
}

func configErr(keyword, provider string, err error) error {
	return &ConfigError{Keyword: keyword, Provider: provider, Err: err}
}
