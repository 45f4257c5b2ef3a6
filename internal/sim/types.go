package sim

import (
	"fmt"
	"time"

	"github.com/san-kum/thermo/internal/thermo"
)

// Host is the stepped simulation thermo reports on.
type Host interface {
	Step() error
	Snapshot() thermo.Snapshot
}

// Reporter is satisfied by *thermo.Thermo.
type Reporter interface {
	Setup(snap thermo.Snapshot) (thermo.Session, error)
	Report(snap thermo.Snapshot, sess thermo.Session) (thermo.Row, thermo.Session, error)
	Footer(snap thermo.Snapshot, sess thermo.Session) error
}

// Observer is notified after every completed step.
type Observer interface {
	OnStep(step, last int64)
}

type Config struct {
	Steps int64 `yaml:"steps"`
	// Every is the reporting interval in steps; 0 reports only the first
	// and last step.
	Every int64 `yaml:"every"`
}

type Result struct {
	FirstStep int64
	LastStep  int64
	Rows      int
	Wall      time.Duration
	Final     thermo.Snapshot
}

// StepError wraps a failure of the host or the reporter at a given step.
type StepError struct {
	Step int64
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("step %d: %v", e.Step, e.Err) }
func (e *StepError) Unwrap() error { return e.Err }
