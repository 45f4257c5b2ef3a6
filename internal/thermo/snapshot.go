package thermo

import "math"

// Box is the simulation cell. Tilt factors are zero for orthogonal boxes.
type Box struct {
	Lo, Hi     [3]float64
	XY, XZ, YZ float64
	Triclinic  bool
}

func (b Box) Lengths() (lx, ly, lz float64) {
	return b.Hi[0] - b.Lo[0], b.Hi[1] - b.Lo[1], b.Hi[2] - b.Lo[2]
}

// Volume returns the cell volume, or its area in two dimensions.
func (b Box) Volume(dimension int) float64 {
	lx, ly, lz := b.Lengths()
	if dimension == 2 {
		return lx * ly
	}
	return lx * ly * lz
}

// Energies holds the per-step energy tallies of the force field.
type Energies struct {
	Vdwl     float64
	Coul     float64
	Long     float64
	Tail     float64
	Bond     float64
	Angle    float64
	Dihedral float64
	Improper float64
}

// Units carries the unit-system constants needed to derive quantities.
type Units struct {
	Name   string
	Boltz  float64
	Nktv2p float64
	Mv2d   float64
}

// LJUnits are reduced Lennard-Jones units.
var LJUnits = Units{Name: "lj", Boltz: 1, Nktv2p: 1, Mv2d: 1}

// Snapshot is the host state thermo reads on a reporting step.
type Snapshot struct {
	Step      int64
	// BeginStep is the first step of a series of runs, LastStep the final
	// step of the current run.
	BeginStep int64
	LastStep  int64
	Dt        float64
	Time      float64
	Running   bool

	// CPU is wall-clock seconds since the run started.
	CPU           float64
	TimeRemaining float64
	Partition     int
	Dimension     int

	Atoms            int64
	MissingBondAtoms int64
	Mass             float64
	Box              Box
	Lattice          [3]float64

	Bonds     int64
	Angles    int64
	Dihedrals int64
	Impropers int64

	Energy  Energies
	Ecouple float64
	Fmax    float64
	Fnorm   float64
	Nbuild  int64
	Ndanger int64

	Units Units
}

func (s *Snapshot) dimension() int {
	if s.Dimension == 0 {
		return 3
	}
	return s.Dimension
}

// cell returns the triclinic cell edge lengths and angles in degrees.
func (s *Snapshot) cell() (a, b, c, alpha, beta, gamma float64) {
	lx, ly, lz := s.Box.Lengths()
	if !s.Box.Triclinic {
		return lx, ly, lz, 90, 90, 90
	}
	xy, xz, yz := s.Box.XY, s.Box.XZ, s.Box.YZ
	a = lx
	b = math.Sqrt(ly*ly + xy*xy)
	c = math.Sqrt(lz*lz + xz*xz + yz*yz)
	alpha = degrees(math.Acos((xy*xz + ly*yz) / (b * c)))
	beta = degrees(math.Acos(xz / c))
	gamma = degrees(math.Acos(xy / b))
	return
}

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
