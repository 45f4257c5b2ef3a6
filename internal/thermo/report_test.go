package thermo_test

import (
	"bytes"
	"fmt"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/thermo/internal/thermo"
)

type quantity struct {
	value float64
	q     thermo.Quantity
}

func (p quantity) HasScalar() bool                 { return true }
func (p quantity) Scalar() float64                 { return p.value }
func (p quantity) HasVector() bool                 { return false }
func (p quantity) VectorLen() int                  { return 0 }
func (p quantity) VectorAt(int) float64            { return 0 }
func (p quantity) HasArray() bool                  { return false }
func (p quantity) ArrayShape() (int, int)          { return 0, 0 }
func (p quantity) ArrayAt(int, int) float64        { return 0 }
func (p quantity) Current() bool                   { return true }
func (p quantity) Computes(q thermo.Quantity) bool { return q == p.q }

type lines []string

func (l *lines) Logf(format string, args ...any) { *l = append(*l, fmt.Sprintf(format, args...)) }

var _ = Describe("Report", func() {
	var (
		out  *bytes.Buffer
		log  *lines
		th   *thermo.Thermo
		snap thermo.Snapshot
	)

	BeforeEach(func() {
		env := thermo.NewProviderSet()
		env.Add(thermo.RoleCompute, thermo.DefaultTemperatureID, quantity{1.5, thermo.QuantityTemperature})
		env.Add(thermo.RoleCompute, thermo.DefaultEnergyID, quantity{-600, thermo.QuantityPotentialEnergy})

		out = &bytes.Buffer{}
		log = &lines{}
		th = thermo.New(env, thermo.Options{Writer: out, Logger: log})
		Expect(th.Configure([]string{"step", "temp", "pe"})).To(Succeed())

		snap = thermo.Snapshot{Step: 0, LastStep: 100, Running: true, Atoms: 100}
	})

	It("writes a header and one line per report", func() {
		sess, err := th.Setup(snap)
		Expect(err).NotTo(HaveOccurred())

		for _, step := range []int64{0, 50, 100} {
			snap.Step = step
			_, sess, err = th.Report(snap, sess)
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(th.Footer(snap, sess)).To(Succeed())

		text := strings.Split(out.String(), "\n")
		Expect(strings.Fields(text[0])).To(Equal([]string{"step", "temp", "pe"}))
		Expect(strings.Fields(text[1])).To(Equal([]string{"0", "1.5", "-600"}))
		Expect(strings.Fields(text[3])).To(Equal([]string{"100", "1.5", "-600"}))
		Expect(text[4]).To(HavePrefix("Loop time of"))
	})

	Context("when atoms are lost", func() {
		It("aborts the run under the default policy", func() {
			sess, err := th.Setup(snap)
			Expect(err).NotTo(HaveOccurred())

			snap.Atoms = 98
			_, _, err = th.Report(snap, sess)
			Expect(thermo.IsConsistency(err)).To(BeTrue())
			Expect(err).To(MatchError(ContainSubstring("original 100 current 98")))
		})

		It("warns once and keeps reporting under the warn policy", func() {
			Expect(th.Modify(thermo.Modify{LostPolicy: "warn"})).To(Succeed())
			sess, err := th.Setup(snap)
			Expect(err).NotTo(HaveOccurred())

			snap.Atoms = 98
			row, sess, err := th.Report(snap, sess)
			Expect(err).NotTo(HaveOccurred())
			Expect(row.Diagnostics).To(ConsistOf(And(ContainSubstring("100"), ContainSubstring("98"))))
			Expect(strings.Fields(row.Text)).To(Equal([]string{"0", "1.5", "-600"}))

			snap.Step = 10
			row, _, err = th.Report(snap, sess)
			Expect(err).NotTo(HaveOccurred())
			Expect(row.Diagnostics).To(BeEmpty())
			Expect(*log).To(HaveLen(1))
		})
	})

	Context("when the keyword list is rejected", func() {
		It("keeps the previous pipeline", func() {
			err := th.Configure([]string{"step", "bogus123"})
			Expect(err).To(MatchError(thermo.ErrUnknownKeyword))
			Expect(th.Columns()).To(Equal([]string{"step", "temp", "pe"}))
		})
	})

	Context("with normalization", func() {
		BeforeEach(func() {
			Expect(th.Modify(thermo.Modify{Normalize: "yes"})).To(Succeed())
		})

		It("divides extensive columns by the atom count", func() {
			sess, err := th.Setup(snap)
			Expect(err).NotTo(HaveOccurred())
			row, _, err := th.Report(snap, sess)
			Expect(err).NotTo(HaveOccurred())
			Expect(row.Values[1].Float).To(Equal(1.5))
			Expect(row.Values[2].Float).To(Equal(-6.0))
		})

		It("leaves values alone with no atoms", func() {
			snap.Atoms = 0
			sess, err := th.Setup(snap)
			Expect(err).NotTo(HaveOccurred())
			row, _, err := th.Report(snap, sess)
			Expect(err).NotTo(HaveOccurred())
			Expect(row.Values[2].Float).To(Equal(-600.0))
		})
	})
})
