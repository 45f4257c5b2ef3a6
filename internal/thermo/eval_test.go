package thermo

import (
	"testing"

	. "github.com/onsi/gomega"
)

func valuesByName(t *testing.T, th *Thermo, snap Snapshot) map[string]float64 {
	t.Helper()
	row, err := reportOne(t, th, snap)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	out := make(map[string]float64, len(row.Values))
	for i, name := range th.Columns() {
		out[name] = row.Values[i].Float64()
	}
	return out
}

func TestDispatchValues(t *testing.T) {
	words := []string{
		"step", "atoms", "temp", "pe", "ke", "etotal", "press", "enthalpy", "econserve",
		"pxx", "pyz", "vol", "density", "lx", "cella", "cellalpha",
		"c_com[2]", "c_msd[2][3]", "f_berendsen", "v_x",
	}
	want := map[string]float64{
		"step":        3,
		"atoms":       100,
		"temp":        1.5,
		"pe":          -600,
		"ke":          222.75,
		"etotal":      -377.25,
		"press":       2,
		"enthalpy":    1622.75,
		"econserve":   -372.25,
		"pxx":         1,
		"pyz":         6,
		"vol":         1000,
		"density":     0.1,
		"lx":          10,
		"cella":       10,
		"cellalpha":   90,
		"c_com[2]":    0.2,
		"c_msd[2][3]": 6,
		"f_berendsen": 12,
		"v_x":         7,
	}

	g := NewWithT(t)
	th, _, _ := newTestThermo(t, testEnv(), words...)
	snap := testSnap(3, 100)
	snap.Ecouple = 5
	got := valuesByName(t, th, snap)
	for name, v := range want {
		g.Expect(got[name]).To(BeNumerically("~", v, 1e-9), name)
	}
}

func TestArrayWildcardValues(t *testing.T) {
	g := NewWithT(t)
	th, _, _ := newTestThermo(t, testEnv(), "c_msd[*]")
	row, err := reportOne(t, th, testSnap(0, 1))
	g.Expect(err).NotTo(HaveOccurred())
	got := make([]float64, len(row.Values))
	for i, v := range row.Values {
		got[i] = v.Float64()
	}
	g.Expect(got).To(Equal([]float64{1, 2, 3, 4, 5, 6}))
}

func TestDispatchValueTypes(t *testing.T) {
	g := NewWithT(t)
	th, _, _ := newTestThermo(t, testEnv(), "step", "part", "temp")
	row, err := reportOne(t, th, testSnap(0, 1))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(row.Values[0].Type).To(Equal(TypeBigInt))
	g.Expect(row.Values[1].Type).To(Equal(TypeInt))
	g.Expect(row.Values[2].Type).To(Equal(TypeFloat))
}

func TestNormalization(t *testing.T) {
	words := []string{"temp", "pe", "ke", "f_berendsen", "v_x", "atoms"}
	tests := []struct {
		name    string
		def     bool
		modify  Modify
		atoms   int64
		pe      float64
		berend  float64
		unnorms []string
	}{
		{"off by default", false, Modify{}, 100, -600, 12, nil},
		{"on", false, Modify{Normalize: "yes"}, 100, -6, 0.12, nil},
		{"default for reduced units", true, Modify{}, 100, -6, 0.12, nil},
		{"explicit off", true, Modify{Normalize: "no"}, 100, -600, 12, nil},
		{"restored default", true, Modify{Normalize: "default"}, 100, -6, 0.12, nil},
		{"no atoms", false, Modify{Normalize: "yes"}, 0, -600, 12, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			th := New(testEnv(), Options{Writer: &discard{}, NormalizeDefault: tt.def})
			g.Expect(th.Configure(words)).To(Succeed())
			g.Expect(th.Modify(tt.modify)).To(Succeed())

			got := valuesByName(t, th, testSnap(0, tt.atoms))
			g.Expect(got["pe"]).To(BeNumerically("~", tt.pe, 1e-12))
			g.Expect(got["f_berendsen"]).To(BeNumerically("~", tt.berend, 1e-12))
			g.Expect(got["temp"]).To(Equal(1.5))
			g.Expect(got["v_x"]).To(Equal(7.0))
			g.Expect(got["atoms"]).To(Equal(float64(tt.atoms)))
		})
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestKineticEnergyUsesDegreesOfFreedom(t *testing.T) {
	g := NewWithT(t)
	env := testEnv()
	env.Add(RoleCompute, DefaultTemperatureID, dofProvider{scalarProvider(2, QuantityTemperature), 10})
	th, _, _ := newTestThermo(t, env, "ke")

	got := valuesByName(t, th, testSnap(0, 100))
	g.Expect(got["ke"]).To(Equal(10.0))
}

func TestTriclinicCell(t *testing.T) {
	g := NewWithT(t)
	th, _, _ := newTestThermo(t, testEnv(), "cella", "cellb", "cellgamma", "xy")
	snap := testSnap(0, 1)
	snap.Box.XY = 10
	snap.Box.Triclinic = true

	got := valuesByName(t, th, snap)
	g.Expect(got["cella"]).To(Equal(10.0))
	g.Expect(got["cellb"]).To(BeNumerically("~", 14.142135623730951, 1e-9))
	g.Expect(got["cellgamma"]).To(BeNumerically("~", 45, 1e-9))
	g.Expect(got["xy"]).To(Equal(10.0))
}

func TestTimeBasedKeywords(t *testing.T) {
	g := NewWithT(t)
	th, _, _ := newTestThermo(t, testEnv(), "step", "cpu", "tpcpu", "spcpu", "cpuremain")

	start := testSnap(0, 10)
	sess, err := th.Setup(start)
	g.Expect(err).NotTo(HaveOccurred())
	row, sess, err := th.Report(start, sess)
	g.Expect(err).NotTo(HaveOccurred())
	for _, v := range row.Values[1:] {
		g.Expect(v.Float).To(BeZero())
	}

	mid := testSnap(50, 10)
	mid.Time = 0.5
	mid.CPU = 2
	row, _, err = th.Report(mid, sess)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(row.Values[1].Float).To(Equal(2.0))
	g.Expect(row.Values[2].Float).To(Equal(0.25))
	g.Expect(row.Values[3].Float).To(Equal(25.0))
	g.Expect(row.Values[4].Float).To(Equal(2.0))
}

func TestTimeBasedKeywordBetweenRuns(t *testing.T) {
	g := NewWithT(t)
	th, _, _ := newTestThermo(t, testEnv(), "step", "elapsed")

	snap := testSnap(0, 10)
	snap.Running = false
	_, err := reportOne(t, th, snap)
	g.Expect(err).To(MatchError(ErrBetweenRuns))
	g.Expect(IsConfig(err)).To(BeTrue())
}

func TestProviderNotCurrent(t *testing.T) {
	g := NewWithT(t)
	env := testEnv()
	stale := scalarProvider(-1, QuantityPotentialEnergy)
	stale.stale = true
	env.Add(RoleCompute, DefaultEnergyID, stale)
	th, _, _ := newTestThermo(t, env, "step", "pe")

	_, err := reportOne(t, th, testSnap(4, 10))
	g.Expect(err).To(MatchError(ErrNotCurrent))
	g.Expect(IsUnavailable(err)).To(BeTrue())
	g.Expect(err.Error()).To(ContainSubstring(`step 4: column 2 "pe"`))
	g.Expect(err.Error()).To(ContainSubstring(`(provider "c_thermo_pe")`))
}

func TestEvaluate(t *testing.T) {
	g := NewWithT(t)
	th, _, _ := newTestThermo(t, testEnv(), "step", "etotal")
	snap := testSnap(0, 100)
	sess, err := th.Setup(snap)
	g.Expect(err).NotTo(HaveOccurred())

	v, err := th.Evaluate("ke", snap, sess)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(v).To(Equal(222.75))

	_, err = th.Evaluate("press", snap, sess)
	g.Expect(err).To(MatchError(ErrRoleNotBound))
	g.Expect(IsConfig(err)).To(BeTrue())

	_, err = th.Evaluate("nope", snap, sess)
	g.Expect(err).To(MatchError(ErrUnknownKeyword))
}
