package md

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/thermo/internal/thermo"
)

var (
	ErrNoAtoms    = errors.New("md: system has no atoms")
	ErrBadParams  = errors.New("md: invalid parameters")
	ErrDuplicate  = errors.New("md: duplicate id")
	ErrNotDefined = errors.New("md: id not defined")
)

type Vec3 [3]float64

// Params describes a Lennard-Jones system on an fcc lattice in reduced units.
type Params struct {
	Cells       int     `yaml:"cells"`
	Density     float64 `yaml:"density"`
	Temperature float64 `yaml:"temperature"`
	Cutoff      float64 `yaml:"cutoff"`
	Skin        float64 `yaml:"skin"`
	Dt          float64 `yaml:"dt"`
	Mass        float64 `yaml:"mass"`
	Seed        int64   `yaml:"seed"`
	// Boundary holds one letter per dimension: p is periodic, f is fixed
	// and loses atoms that leave the box.
	Boundary string `yaml:"boundary"`
}

func DefaultParams() Params {
	return Params{
		Cells:       4,
		Density:     0.8442,
		Temperature: 1.44,
		Cutoff:      2.5,
		Skin:        0.3,
		Dt:          0.005,
		Mass:        1,
		Seed:        87287,
		Boundary:    "ppp",
	}
}

func (p Params) Validate() error {
	switch {
	case p.Cells < 1:
		return fmt.Errorf("%w: cells must be positive, got %d", ErrBadParams, p.Cells)
	case p.Density <= 0:
		return fmt.Errorf("%w: density must be positive, got %g", ErrBadParams, p.Density)
	case p.Temperature < 0:
		return fmt.Errorf("%w: temperature must not be negative, got %g", ErrBadParams, p.Temperature)
	case p.Cutoff <= 0:
		return fmt.Errorf("%w: cutoff must be positive, got %g", ErrBadParams, p.Cutoff)
	case p.Skin < 0:
		return fmt.Errorf("%w: skin must not be negative, got %g", ErrBadParams, p.Skin)
	case p.Dt <= 0:
		return fmt.Errorf("%w: dt must be positive, got %g", ErrBadParams, p.Dt)
	case p.Mass <= 0:
		return fmt.Errorf("%w: mass must be positive, got %g", ErrBadParams, p.Mass)
	}
	if _, err := parseBoundary(p.Boundary); err != nil {
		return err
	}
	return nil
}

func parseBoundary(s string) ([3]bool, error) {
	var periodic [3]bool
	if s == "" {
		return [3]bool{true, true, true}, nil
	}
	if len(s) != 3 {
		return periodic, fmt.Errorf("%w: boundary %q needs one letter per dimension", ErrBadParams, s)
	}
	for i, c := range s {
		switch c {
		case 'p':
			periodic[i] = true
		case 'f':
		default:
			return periodic, fmt.Errorf("%w: boundary %q: unknown style %q", ErrBadParams, s, c)
		}
	}
	return periodic, nil
}

// System is a Lennard-Jones fluid integrated with velocity Verlet.
type System struct {
	params   Params
	periodic [3]bool
	box      thermo.Box
	lattice  float64

	pos    []Vec3
	vel    []Vec3
	force  []Vec3
	origin []Vec3
	image  [][3]int

	step int64
	time float64

	energy    thermo.Energies
	virial    [6]float64
	forceStep int64

	nlist   neighborList
	nbuild  int64
	ndanger int64

	fixes     []Fix
	providers thermo.ProviderSet
	temp      *Temperature
}

// New builds the lattice, assigns velocities and registers the default
// computes thermo_temp, thermo_press, thermo_pe, com and msd.
func New(p Params) (*System, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	periodic, _ := parseBoundary(p.Boundary)
	s := &System{
		params:    p,
		periodic:  periodic,
		providers: thermo.NewProviderSet(),
	}
	s.placeLattice()
	for k := 0; k < 3; k++ {
		if l := s.box.Hi[k] - s.box.Lo[k]; periodic[k] && l < 2*(p.Cutoff+p.Skin) {
			return nil, fmt.Errorf("%w: periodic box length %g is shorter than twice cutoff plus skin", ErrBadParams, l)
		}
	}
	s.assignVelocities(rand.New(rand.NewSource(p.Seed)))
	s.buildNeighbors()
	s.computeForces()

	s.temp = &Temperature{sys: s}
	s.providers.Add(thermo.RoleCompute, thermo.DefaultTemperatureID, s.temp)
	s.providers.Add(thermo.RoleCompute, thermo.DefaultPressureID, &Pressure{sys: s, temp: s.temp})
	s.providers.Add(thermo.RoleCompute, thermo.DefaultEnergyID, &PotentialEnergy{sys: s})
	s.providers.Add(thermo.RoleCompute, "com", &CenterOfMass{sys: s})
	s.providers.Add(thermo.RoleCompute, "msd", &MeanSquaredDisplacement{sys: s})
	return s, nil
}

func (s *System) placeLattice() {
	a := math.Cbrt(4 / s.params.Density)
	n := s.params.Cells
	s.lattice = a
	length := a * float64(n)
	s.box = thermo.Box{Hi: [3]float64{length, length, length}}

	basis := []Vec3{{0, 0, 0}, {0.5, 0.5, 0}, {0.5, 0, 0.5}, {0, 0.5, 0.5}}
	s.pos = make([]Vec3, 0, 4*n*n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				for _, b := range basis {
					s.pos = append(s.pos, Vec3{
						(float64(i) + b[0] + 0.25) * a,
						(float64(j) + b[1] + 0.25) * a,
						(float64(k) + b[2] + 0.25) * a,
					})
				}
			}
		}
	}
	s.vel = make([]Vec3, len(s.pos))
	s.force = make([]Vec3, len(s.pos))
	s.image = make([][3]int, len(s.pos))
	s.origin = make([]Vec3, len(s.pos))
	copy(s.origin, s.pos)
}

// assignVelocities draws Gaussian velocities, removes the net momentum and
// scales to the requested temperature.
func (s *System) assignVelocities(rng *rand.Rand) {
	var sum Vec3
	for i := range s.vel {
		for d := 0; d < 3; d++ {
			s.vel[i][d] = rng.NormFloat64()
			sum[d] += s.vel[i][d]
		}
	}
	n := float64(len(s.vel))
	for i := range s.vel {
		for d := 0; d < 3; d++ {
			s.vel[i][d] -= sum[d] / n
		}
	}
	t := s.kineticTemperature()
	if t == 0 {
		return
	}
	scale := math.Sqrt(s.params.Temperature / t)
	for i := range s.vel {
		for d := 0; d < 3; d++ {
			s.vel[i][d] *= scale
		}
	}
}

func (s *System) dof() float64 {
	n := float64(len(s.pos))
	if n < 2 {
		return 0
	}
	return 3*n - 3
}

func (s *System) kineticTemperature() float64 {
	dof := s.dof()
	if dof == 0 {
		return 0
	}
	var mv2 float64
	for _, v := range s.vel {
		mv2 += s.params.Mass * (v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	}
	return mv2 / (dof * thermo.LJUnits.Boltz)
}

func (s *System) delta(i, j int) Vec3 {
	return s.minImage(Vec3{
		s.pos[i][0] - s.pos[j][0],
		s.pos[i][1] - s.pos[j][1],
		s.pos[i][2] - s.pos[j][2],
	})
}

func (s *System) minImage(d Vec3) Vec3 {
	for k := 0; k < 3; k++ {
		if s.periodic[k] {
			l := s.box.Hi[k] - s.box.Lo[k]
			d[k] -= l * math.Round(d[k]/l)
		}
	}
	return d
}

func (s *System) computeForces() {
	for i := range s.force {
		s.force[i] = Vec3{}
	}
	s.virial = [6]float64{}
	var evdwl float64

	rc2 := s.params.Cutoff * s.params.Cutoff
	for _, pair := range s.nlist.pairs {
		i, j := pair[0], pair[1]
		d := s.delta(i, j)
		r2 := d[0]*d[0] + d[1]*d[1] + d[2]*d[2]
		if r2 >= rc2 {
			continue
		}
		inv2 := 1 / r2
		inv6 := inv2 * inv2 * inv2
		fpair := 24 * inv6 * (2*inv6 - 1) * inv2
		evdwl += 4 * inv6 * (inv6 - 1)
		for k := 0; k < 3; k++ {
			s.force[i][k] += d[k] * fpair
			s.force[j][k] -= d[k] * fpair
		}
		s.virial[0] += d[0] * d[0] * fpair
		s.virial[1] += d[1] * d[1] * fpair
		s.virial[2] += d[2] * d[2] * fpair
		s.virial[3] += d[0] * d[1] * fpair
		s.virial[4] += d[0] * d[2] * fpair
		s.virial[5] += d[1] * d[2] * fpair
	}
	s.energy = thermo.Energies{Vdwl: evdwl, Tail: s.tailEnergy()}
	s.forceStep = s.step
}

// tailEnergy is the long-range correction for a truncated potential. It is
// only defined for fully periodic boxes.
func (s *System) tailEnergy() float64 {
	if !s.periodic[0] || !s.periodic[1] || !s.periodic[2] {
		return 0
	}
	vol := s.box.Volume(3)
	n := float64(len(s.pos))
	if vol == 0 || n == 0 {
		return 0
	}
	rc3 := math.Pow(s.params.Cutoff, 3)
	rc9 := rc3 * rc3 * rc3
	return 8 * math.Pi * n * n / vol * (1/(9*rc9) - 1/(3*rc3))
}

// Step advances the system by one timestep.
func (s *System) Step() error {
	if len(s.pos) == 0 {
		return ErrNoAtoms
	}
	dt := s.params.Dt
	half := 0.5 * dt / s.params.Mass

	for i := range s.pos {
		for k := 0; k < 3; k++ {
			s.vel[i][k] += half * s.force[i][k]
			s.pos[i][k] += dt * s.vel[i][k]
		}
	}
	s.applyBoundaries()
	if s.nlist.stale(s) {
		s.buildNeighbors()
	}
	s.step++
	s.time += dt
	s.computeForces()
	for i := range s.vel {
		for k := 0; k < 3; k++ {
			s.vel[i][k] += half * s.force[i][k]
		}
	}
	for _, f := range s.fixes {
		f.EndOfStep(s)
	}
	return nil
}

// applyBoundaries wraps periodic dimensions and deletes atoms that left a
// fixed dimension.
func (s *System) applyBoundaries() {
	for i := 0; i < len(s.pos); {
		lost := false
		for k := 0; k < 3; k++ {
			lo, hi := s.box.Lo[k], s.box.Hi[k]
			if s.periodic[k] {
				l := hi - lo
				for s.pos[i][k] < lo {
					s.pos[i][k] += l
					s.image[i][k]--
				}
				for s.pos[i][k] >= hi {
					s.pos[i][k] -= l
					s.image[i][k]++
				}
			} else if s.pos[i][k] < lo || s.pos[i][k] >= hi {
				lost = true
			}
		}
		if lost {
			s.deleteAtom(i)
			continue
		}
		i++
	}
}

func (s *System) deleteAtom(i int) {
	last := len(s.pos) - 1
	s.pos[i], s.vel[i], s.force[i] = s.pos[last], s.vel[last], s.force[last]
	s.origin[i], s.image[i] = s.origin[last], s.image[last]
	s.pos, s.vel, s.force = s.pos[:last], s.vel[:last], s.force[:last]
	s.origin, s.image = s.origin[:last], s.image[:last]
	s.nlist.invalidate()
}

func (s *System) AddFix(id string, f Fix) error {
	if _, ok := s.providers.Lookup(thermo.RoleFix, id); ok {
		return fmt.Errorf("%w: fix %s", ErrDuplicate, id)
	}
	s.fixes = append(s.fixes, f)
	s.providers.Add(thermo.RoleFix, id, f)
	return nil
}

// AddCompute registers an extra compute under id.
func (s *System) AddCompute(id string, p thermo.Provider) error {
	if _, ok := s.providers.Lookup(thermo.RoleCompute, id); ok {
		return fmt.Errorf("%w: compute %s", ErrDuplicate, id)
	}
	s.providers.Add(thermo.RoleCompute, id, p)
	return nil
}

// DeleteCompute removes a compute; thermo notices at the next Setup.
func (s *System) DeleteCompute(id string) error {
	if _, ok := s.providers.Lookup(thermo.RoleCompute, id); !ok {
		return fmt.Errorf("%w: compute %s", ErrNotDefined, id)
	}
	s.providers.Remove(thermo.RoleCompute, id)
	return nil
}

// SetVariable defines or replaces an equal-style variable.
func (s *System) SetVariable(name string, fn func() float64) {
	s.providers.Add(thermo.RoleVariable, name, Variable(fn))
}

// Providers is the environment thermo resolves ids against.
func (s *System) Providers() thermo.Environment { return s.providers }

func (s *System) Atoms() int         { return len(s.pos) }
func (s *System) CurrentStep() int64 { return s.step }
func (s *System) Time() float64      { return s.time }

// Snapshot returns the host state thermo reads. Run bookkeeping (Running,
// CPU, BeginStep, LastStep) is filled in by the caller.
func (s *System) Snapshot() thermo.Snapshot {
	var ecouple float64
	for _, f := range s.fixes {
		ecouple += f.Energy()
	}
	fmax, fnorm := s.forceNorms()
	return thermo.Snapshot{
		Step:      s.step,
		Dt:        s.params.Dt,
		Time:      s.time,
		Dimension: 3,
		Atoms:     int64(len(s.pos)),
		Mass:      s.params.Mass * float64(len(s.pos)),
		Box:       s.box,
		Lattice:   [3]float64{s.lattice, s.lattice, s.lattice},
		Energy:    s.energy,
		Ecouple:   ecouple,
		Fmax:      fmax,
		Fnorm:     fnorm,
		Nbuild:    s.nbuild,
		Ndanger:   s.ndanger,
		Units:     thermo.LJUnits,
	}
}

func (s *System) forceNorms() (fmax, fnorm float64) {
	var sum float64
	for _, f := range s.force {
		for k := 0; k < 3; k++ {
			fmax = math.Max(fmax, math.Abs(f[k]))
			sum += f[k] * f[k]
		}
	}
	return fmax, math.Sqrt(sum)
}
