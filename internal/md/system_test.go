package md

import (
	"math"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/thermo/internal/thermo"
)

func totalEnergy(s *System) float64 {
	return s.kineticEnergy() + s.energy.Vdwl + s.energy.Tail
}

func TestNewSystem(t *testing.T) {
	g := NewWithT(t)
	s, err := New(DefaultParams())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(s.Atoms()).To(Equal(256))
	g.Expect(s.kineticTemperature()).To(BeNumerically("~", 1.44, 1e-9))

	var p Vec3
	for _, v := range s.vel {
		for k := 0; k < 3; k++ {
			p[k] += v[k]
		}
	}
	for k := 0; k < 3; k++ {
		g.Expect(p[k]).To(BeNumerically("~", 0, 1e-9))
	}
	g.Expect(s.nbuild).To(Equal(int64(1)))
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Params)
	}{
		{"cells", func(p *Params) { p.Cells = 0 }},
		{"density", func(p *Params) { p.Density = 0 }},
		{"temperature", func(p *Params) { p.Temperature = -1 }},
		{"cutoff", func(p *Params) { p.Cutoff = 0 }},
		{"skin", func(p *Params) { p.Skin = -0.1 }},
		{"dt", func(p *Params) { p.Dt = 0 }},
		{"mass", func(p *Params) { p.Mass = 0 }},
		{"boundary length", func(p *Params) { p.Boundary = "pp" }},
		{"boundary style", func(p *Params) { p.Boundary = "psp" }},
		{"box too small", func(p *Params) { p.Cells = 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			p := DefaultParams()
			tt.edit(&p)
			_, err := New(p)
			g.Expect(err).To(MatchError(ErrBadParams))
		})
	}
}

func TestVelocityVerletConservesEnergy(t *testing.T) {
	g := NewWithT(t)
	s, err := New(DefaultParams())
	g.Expect(err).NotTo(HaveOccurred())

	e0 := totalEnergy(s)
	for i := 0; i < 200; i++ {
		g.Expect(s.Step()).To(Succeed())
	}
	g.Expect(s.CurrentStep()).To(Equal(int64(200)))
	g.Expect(s.Time()).To(BeNumerically("~", 1.0, 1e-9))
	g.Expect(math.Abs(totalEnergy(s)-e0) / math.Abs(e0)).To(BeNumerically("<", 1e-2))
	g.Expect(s.Atoms()).To(Equal(256))
	g.Expect(s.nbuild).To(BeNumerically(">", 1))
}

func TestFixedBoundariesLoseAtoms(t *testing.T) {
	g := NewWithT(t)
	p := DefaultParams()
	p.Boundary = "fff"
	p.Temperature = 5
	s, err := New(p)
	g.Expect(err).NotTo(HaveOccurred())

	for i := 0; i < 200; i++ {
		g.Expect(s.Step()).To(Succeed())
	}
	g.Expect(s.Atoms()).To(BeNumerically("<", 256))
	snap := s.Snapshot()
	g.Expect(snap.Atoms).To(Equal(int64(s.Atoms())))
	g.Expect(snap.Energy.Tail).To(BeZero())
	for _, pos := range s.pos {
		for k := 0; k < 3; k++ {
			g.Expect(pos[k]).To(And(BeNumerically(">=", s.box.Lo[k]), BeNumerically("<", s.box.Hi[k])))
		}
	}
}

func TestBerendsenCoolsTowardTarget(t *testing.T) {
	g := NewWithT(t)
	s, err := New(DefaultParams())
	g.Expect(err).NotTo(HaveOccurred())
	fix, err := NewBerendsen(0.5, 0.1)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(s.AddFix("berendsen", fix)).To(Succeed())
	g.Expect(s.AddFix("berendsen", fix)).To(MatchError(ErrDuplicate))

	for i := 0; i < 300; i++ {
		g.Expect(s.Step()).To(Succeed())
	}
	g.Expect(s.kineticTemperature()).To(BeNumerically("<", 1.0))
	g.Expect(fix.Scalar()).To(BeNumerically(">", 0))
	g.Expect(s.Snapshot().Ecouple).To(Equal(fix.Energy()))

	_, err = NewBerendsen(1, 0)
	g.Expect(err).To(MatchError(ErrBadParams))
}

func TestProviders(t *testing.T) {
	g := NewWithT(t)
	s, err := New(DefaultParams())
	g.Expect(err).NotTo(HaveOccurred())
	env := s.Providers()

	temp, ok := env.Lookup(thermo.RoleCompute, thermo.DefaultTemperatureID)
	g.Expect(ok).To(BeTrue())
	g.Expect(temp.Scalar()).To(BeNumerically("~", 1.44, 1e-9))
	ke := temp.VectorAt(0) + temp.VectorAt(1) + temp.VectorAt(2)
	g.Expect(ke).To(BeNumerically("~", s.kineticEnergy(), 1e-9))

	press, ok := env.Lookup(thermo.RoleCompute, thermo.DefaultPressureID)
	g.Expect(ok).To(BeTrue())
	trace := press.VectorAt(0) + press.VectorAt(1) + press.VectorAt(2)
	g.Expect(press.Scalar()).To(BeNumerically("~", trace/3, 1e-9))

	com, _ := env.Lookup(thermo.RoleCompute, "com")
	msd, _ := env.Lookup(thermo.RoleCompute, "msd")
	g.Expect(com.VectorLen()).To(Equal(3))
	g.Expect(msd.VectorAt(3)).To(BeZero())

	s.SetVariable("twice", func() float64 { return 2 * float64(s.Atoms()) })
	v, ok := env.Lookup(thermo.RoleVariable, "twice")
	g.Expect(ok).To(BeTrue())
	g.Expect(v.Scalar()).To(Equal(512.0))

	g.Expect(s.AddCompute("com", com)).To(MatchError(ErrDuplicate))
	g.Expect(s.DeleteCompute("com")).To(Succeed())
	g.Expect(s.DeleteCompute("com")).To(MatchError(ErrNotDefined))
}

func TestThermoReadsSystem(t *testing.T) {
	g := NewWithT(t)
	s, err := New(DefaultParams())
	g.Expect(err).NotTo(HaveOccurred())
	fix, _ := NewBerendsen(1, 1)
	g.Expect(s.AddFix("berendsen", fix)).To(Succeed())
	s.SetVariable("natoms", func() float64 { return float64(s.Atoms()) })

	th := thermo.New(s.Providers(), thermo.Options{Writer: &discard{}})
	g.Expect(th.Configure([]string{
		"step", "temp", "pe", "press", "etotal", "econserve", "pxx",
		"c_com[*]", "c_msd[4]", "f_berendsen", "f_berendsen[1]", "v_natoms", "nbuild", "fmax",
	})).To(Succeed())

	snap := s.Snapshot()
	snap.Running = true
	sess, err := th.Setup(snap)
	g.Expect(err).NotTo(HaveOccurred())
	row, _, err := th.Report(snap, sess)
	g.Expect(err).NotTo(HaveOccurred())

	values := map[string]float64{}
	for i, c := range th.Columns() {
		values[c] = row.Values[i].Float64()
	}
	g.Expect(values["temp"]).To(BeNumerically("~", 1.44, 1e-9))
	g.Expect(values["pe"]).To(BeNumerically("~", s.energy.Vdwl+s.energy.Tail, 1e-9))
	g.Expect(values["etotal"]).To(BeNumerically("~", totalEnergy(s), 1e-6))
	g.Expect(values["v_natoms"]).To(Equal(256.0))
	g.Expect(values["f_berendsen[1]"]).To(Equal(1.0))
	g.Expect(values).To(HaveKey("c_com[3]"))
}

type discard struct{}

func (*discard) Write(p []byte) (int, error) { return len(p), nil }
