package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/san-kum/thermo/internal/thermo"
)

var ErrBadConfig = errors.New("sim: invalid run config")

// Loop drives a host and reports on the first step, every Every steps and
// the last step of each run. Consecutive runs form a series that shares
// the reporter's provider bindings.
type Loop struct {
	host      Host
	reporter  Reporter
	observers []Observer

	begun     bool
	beginStep int64
	now       func() time.Time
}

func New(host Host, reporter Reporter) *Loop {
	return &Loop{
		host:     host,
		reporter: reporter,
		now:      time.Now,
	}
}

func (l *Loop) AddObserver(o Observer) { l.observers = append(l.observers, o) }

func (l *Loop) validateConfig(cfg Config) error {
	if cfg.Steps < 0 {
		return fmt.Errorf("%w: steps must not be negative, got %d", ErrBadConfig, cfg.Steps)
	}
	if cfg.Every < 0 {
		return fmt.Errorf("%w: every must not be negative, got %d", ErrBadConfig, cfg.Every)
	}
	return nil
}

// Run advances the host cfg.Steps steps. The context is checked between
// steps; on cancellation the footer is still written.
func (l *Loop) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := l.validateConfig(cfg); err != nil {
		return nil, err
	}

	start := l.now()
	snap := l.host.Snapshot()
	first, last := snap.Step, snap.Step+cfg.Steps
	if !l.begun {
		l.begun = true
		l.beginStep = first
	}
	result := &Result{FirstStep: first, LastStep: last}

	stamp := func(s thermo.Snapshot) thermo.Snapshot {
		s.Running = true
		s.BeginStep = l.beginStep
		s.LastStep = last
		s.CPU = l.now().Sub(start).Seconds()
		if done := s.Step - first; done > 0 {
			s.TimeRemaining = s.CPU * float64(last-s.Step) / float64(done)
		}
		return s
	}

	snap = stamp(snap)
	sess, err := l.reporter.Setup(snap)
	if err != nil {
		return result, err
	}
	var runErr error
	if _, sess, err = l.reporter.Report(snap, sess); err != nil {
		runErr = &StepError{Step: first, Err: err}
	} else {
		result.Rows++
	}

	for step := first; runErr == nil && step < last; {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		if err := l.host.Step(); err != nil {
			runErr = &StepError{Step: step + 1, Err: err}
			break
		}
		step++
		for _, obs := range l.observers {
			obs.OnStep(step, last)
		}
		if step != last && (cfg.Every == 0 || step%cfg.Every != 0) {
			continue
		}
		snap = stamp(l.host.Snapshot())
		if _, sess, err = l.reporter.Report(snap, sess); err != nil {
			runErr = &StepError{Step: step, Err: err}
			break
		}
		result.Rows++
	}

	snap = stamp(l.host.Snapshot())
	result.Final = snap
	result.Wall = l.now().Sub(start)
	if err := l.reporter.Footer(snap, sess); err != nil && runErr == nil {
		runErr = err
	}
	return result, runErr
}
