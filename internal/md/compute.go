package md

import "github.com/san-kum/thermo/internal/thermo"

// base answers no to every query; computes embed it and override what they
// provide.
type base struct{}

func (base) HasScalar() bool              { return false }
func (base) Scalar() float64              { return 0 }
func (base) HasVector() bool              { return false }
func (base) VectorLen() int               { return 0 }
func (base) VectorAt(int) float64         { return 0 }
func (base) HasArray() bool               { return false }
func (base) ArrayShape() (rows, cols int) { return 0, 0 }
func (base) ArrayAt(int, int) float64     { return 0 }

// Temperature is the kinetic temperature of all atoms. Its vector is the
// kinetic energy tensor xx, yy, zz, xy, xz, yz.
type Temperature struct {
	base
	sys *System
}

func (c *Temperature) HasScalar() bool { return true }
func (c *Temperature) Scalar() float64 { return c.sys.kineticTemperature() }
func (c *Temperature) HasVector() bool { return true }
func (c *Temperature) VectorLen() int  { return 6 }
func (c *Temperature) Current() bool   { return true }

func (c *Temperature) VectorAt(i int) float64 { return c.sys.kineticTensor()[i] }

func (c *Temperature) Computes(q thermo.Quantity) bool { return q == thermo.QuantityTemperature }
func (c *Temperature) DegreesOfFreedom() float64       { return c.sys.dof() }
func (c *Temperature) Extensive(kind thermo.Kind) bool { return kind == thermo.KindVector }

func (s *System) kineticTensor() [6]float64 {
	var t [6]float64
	m := s.params.Mass
	for _, v := range s.vel {
		t[0] += m * v[0] * v[0]
		t[1] += m * v[1] * v[1]
		t[2] += m * v[2] * v[2]
		t[3] += m * v[0] * v[1]
		t[4] += m * v[0] * v[2]
		t[5] += m * v[1] * v[2]
	}
	for i := range t {
		t[i] *= 0.5
	}
	return t
}

// Pressure combines the kinetic and virial contributions. The scalar uses
// the temperature compute, the vector is the full pressure tensor.
type Pressure struct {
	base
	sys  *System
	temp *Temperature
}

func (c *Pressure) HasScalar() bool { return true }
func (c *Pressure) HasVector() bool { return true }
func (c *Pressure) VectorLen() int  { return 6 }
func (c *Pressure) Current() bool   { return c.sys.forceStep == c.sys.step }

func (c *Pressure) Computes(q thermo.Quantity) bool { return q == thermo.QuantityPressure }

func (c *Pressure) Scalar() float64 {
	s := c.sys
	vol := s.box.Volume(3)
	if vol == 0 {
		return 0
	}
	kinetic := c.temp.DegreesOfFreedom() * thermo.LJUnits.Boltz * c.temp.Scalar()
	virial := s.virial[0] + s.virial[1] + s.virial[2]
	return (kinetic + virial) / (3 * vol) * thermo.LJUnits.Nktv2p
}

func (c *Pressure) VectorAt(i int) float64 {
	s := c.sys
	vol := s.box.Volume(3)
	if vol == 0 {
		return 0
	}
	ke := s.kineticTensor()
	return (2*ke[i] + s.virial[i]) / vol * thermo.LJUnits.Nktv2p
}

// PotentialEnergy is the pair energy including the tail correction.
type PotentialEnergy struct {
	base
	sys *System
}

func (c *PotentialEnergy) HasScalar() bool { return true }
func (c *PotentialEnergy) Scalar() float64 { return c.sys.energy.Vdwl + c.sys.energy.Tail }
func (c *PotentialEnergy) Current() bool   { return c.sys.forceStep == c.sys.step }

func (c *PotentialEnergy) Computes(q thermo.Quantity) bool {
	return q == thermo.QuantityPotentialEnergy
}

func (c *PotentialEnergy) Extensive(thermo.Kind) bool { return true }

// CenterOfMass is the unwrapped center of mass position.
type CenterOfMass struct {
	base
	sys *System
}

func (c *CenterOfMass) HasVector() bool { return true }
func (c *CenterOfMass) VectorLen() int  { return 3 }
func (c *CenterOfMass) Current() bool   { return true }

func (c *CenterOfMass) VectorAt(i int) float64 {
	s := c.sys
	if len(s.pos) == 0 {
		return 0
	}
	l := s.box.Hi[i] - s.box.Lo[i]
	var sum float64
	for j, p := range s.pos {
		sum += p[i] + float64(s.image[j][i])*l
	}
	return sum / float64(len(s.pos))
}

// MeanSquaredDisplacement reports dx², dy², dz² and their sum averaged over
// atoms, relative to the positions at creation.
type MeanSquaredDisplacement struct {
	base
	sys *System
}

func (c *MeanSquaredDisplacement) HasVector() bool { return true }
func (c *MeanSquaredDisplacement) VectorLen() int  { return 4 }
func (c *MeanSquaredDisplacement) Current() bool   { return true }

func (c *MeanSquaredDisplacement) VectorAt(i int) float64 {
	s := c.sys
	if len(s.pos) == 0 {
		return 0
	}
	var msd [4]float64
	for j, p := range s.pos {
		for k := 0; k < 3; k++ {
			l := s.box.Hi[k] - s.box.Lo[k]
			d := p[k] + float64(s.image[j][k])*l - s.origin[j][k]
			msd[k] += d * d
		}
	}
	n := float64(len(s.pos))
	for k := 0; k < 3; k++ {
		msd[k] /= n
		msd[3] += msd[k]
	}
	return msd[i]
}

// Variable is an equal-style variable evaluated on demand.
type Variable func() float64

func (v Variable) HasScalar() bool              { return true }
func (v Variable) Scalar() float64              { return v() }
func (v Variable) HasVector() bool              { return false }
func (v Variable) VectorLen() int               { return 0 }
func (v Variable) VectorAt(int) float64         { return 0 }
func (v Variable) HasArray() bool               { return false }
func (v Variable) ArrayShape() (rows, cols int) { return 0, 0 }
func (v Variable) ArrayAt(int, int) float64     { return 0 }
func (v Variable) Current() bool                { return true }
