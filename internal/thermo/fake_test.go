package thermo

import (
	"bytes"
	"fmt"
	"testing"
)

type fakeProvider struct {
	hasScalar bool
	scalar    float64
	vector    []float64
	array     [][]float64
	stale     bool
	computes  []Quantity
	extensive bool
}

func scalarProvider(v float64, q ...Quantity) *fakeProvider {
	return &fakeProvider{hasScalar: true, scalar: v, computes: q}
}

func (p *fakeProvider) HasScalar() bool        { return p.hasScalar }
func (p *fakeProvider) Scalar() float64        { return p.scalar }
func (p *fakeProvider) HasVector() bool        { return p.vector != nil }
func (p *fakeProvider) VectorLen() int         { return len(p.vector) }
func (p *fakeProvider) VectorAt(i int) float64 { return p.vector[i] }
func (p *fakeProvider) HasArray() bool         { return p.array != nil }
func (p *fakeProvider) ArrayAt(i, j int) float64 {
	return p.array[i][j]
}
func (p *fakeProvider) Current() bool       { return !p.stale }
func (p *fakeProvider) Extensive(Kind) bool { return p.extensive }

func (p *fakeProvider) ArrayShape() (int, int) {
	if len(p.array) == 0 {
		return 0, 0
	}
	return len(p.array), len(p.array[0])
}

func (p *fakeProvider) Computes(q Quantity) bool {
	for _, c := range p.computes {
		if c == q {
			return true
		}
	}
	return false
}

type dofProvider struct {
	*fakeProvider
	dof float64
}

func (p dofProvider) DegreesOfFreedom() float64 { return p.dof }

type recLogger struct {
	lines []string
}

func (l *recLogger) Logf(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

type recObserver struct {
	columns []string
	rows    []Row
}

func (o *recObserver) OnRow(columns []string, row Row) {
	o.columns = columns
	o.rows = append(o.rows, row)
}

func testEnv() ProviderSet {
	env := NewProviderSet()
	env.Add(RoleCompute, DefaultTemperatureID, scalarProvider(1.5, QuantityTemperature))
	press := scalarProvider(2.0, QuantityPressure)
	press.vector = []float64{1, 2, 3, 4, 5, 6}
	env.Add(RoleCompute, DefaultPressureID, press)
	pe := scalarProvider(-600, QuantityPotentialEnergy)
	pe.extensive = true
	env.Add(RoleCompute, DefaultEnergyID, pe)
	env.Add(RoleCompute, "mytemp", scalarProvider(3.0, QuantityTemperature))
	env.Add(RoleCompute, "com", &fakeProvider{vector: []float64{0.1, 0.2, 0.3}})
	env.Add(RoleCompute, "msd", &fakeProvider{array: [][]float64{{1, 2, 3}, {4, 5, 6}}})
	fix := scalarProvider(12)
	fix.extensive = true
	env.Add(RoleFix, "berendsen", fix)
	env.Add(RoleVariable, "x", scalarProvider(7))
	return env
}

func testSnap(step int64, atoms int64) Snapshot {
	return Snapshot{
		Step:     step,
		LastStep: 100,
		Running:  true,
		Atoms:    atoms,
		Mass:     100,
		Box:      Box{Hi: [3]float64{10, 10, 10}},
		Units:    LJUnits,
	}
}

func newTestThermo(t *testing.T, env Environment, words ...string) (*Thermo, *bytes.Buffer, *recLogger) {
	t.Helper()
	var buf bytes.Buffer
	log := &recLogger{}
	th := New(env, Options{Writer: &buf, Logger: log})
	if len(words) > 0 {
		if err := th.Configure(words); err != nil {
			t.Fatalf("configure %v: %v", words, err)
		}
	}
	return th, &buf, log
}

// reportOne sets up a session at step 0 and reports a single row.
func reportOne(t *testing.T, th *Thermo, snap Snapshot) (Row, error) {
	t.Helper()
	sess, err := th.Setup(snap)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	row, _, err := th.Report(snap, sess)
	return row, err
}
