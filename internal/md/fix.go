package md

import (
	"fmt"
	"math"

	"github.com/san-kum/thermo/internal/thermo"
)

// Fix alters the system at the end of every step.
type Fix interface {
	thermo.Provider
	EndOfStep(s *System)
	// Energy is the cumulative energy the fix added to or removed from
	// the system, summed into ecouple.
	Energy() float64
}

// Berendsen rescales velocities toward a target temperature with time
// constant Tau. Its scalar is the cumulative energy removed from the system.
type Berendsen struct {
	base
	Target float64
	Tau    float64

	energy float64
	lambda float64
}

func NewBerendsen(target, tau float64) (*Berendsen, error) {
	if target < 0 || tau <= 0 {
		return nil, fmt.Errorf("%w: berendsen target %g tau %g", ErrBadParams, target, tau)
	}
	return &Berendsen{Target: target, Tau: tau, lambda: 1}, nil
}

func (f *Berendsen) EndOfStep(s *System) {
	t := s.kineticTemperature()
	if t == 0 {
		return
	}
	before := s.kineticEnergy()
	f.lambda = math.Sqrt(math.Max(0, 1+s.params.Dt/f.Tau*(f.Target/t-1)))
	for i := range s.vel {
		for k := 0; k < 3; k++ {
			s.vel[i][k] *= f.lambda
		}
	}
	f.energy += before - s.kineticEnergy()
}

func (f *Berendsen) Energy() float64 { return f.energy }

func (f *Berendsen) HasScalar() bool { return true }
func (f *Berendsen) Scalar() float64 { return f.energy }
func (f *Berendsen) HasVector() bool { return true }
func (f *Berendsen) VectorLen() int  { return 1 }
func (f *Berendsen) Current() bool   { return true }

// VectorAt exposes the last scaling factor.
func (f *Berendsen) VectorAt(int) float64 { return f.lambda }

func (f *Berendsen) Extensive(kind thermo.Kind) bool { return kind == thermo.KindScalar }

func (s *System) kineticEnergy() float64 {
	var ke float64
	for _, v := range s.vel {
		ke += 0.5 * s.params.Mass * (v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	}
	return ke
}
