package sim

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/thermo/internal/md"
	"github.com/san-kum/thermo/internal/thermo"
)

type testHost struct {
	step   int64
	failAt int64
}

func (h *testHost) Step() error {
	if h.failAt > 0 && h.step+1 == h.failAt {
		return errors.New("blew up")
	}
	h.step++
	return nil
}

func (h *testHost) Snapshot() thermo.Snapshot {
	return thermo.Snapshot{Step: h.step, Atoms: 10, Dt: 0.005, Time: float64(h.step) * 0.005}
}

type testReporter struct {
	setups  int
	steps   []int64
	begins  []int64
	lasts   []int64
	footers int
	failAt  int64
}

func (r *testReporter) Setup(snap thermo.Snapshot) (thermo.Session, error) {
	r.setups++
	return thermo.Session{Active: true, FirstStep: snap.Step}, nil
}

func (r *testReporter) Report(snap thermo.Snapshot, sess thermo.Session) (thermo.Row, thermo.Session, error) {
	if r.failAt > 0 && snap.Step == r.failAt {
		return thermo.Row{}, sess, errors.New("bad keyword")
	}
	r.steps = append(r.steps, snap.Step)
	r.begins = append(r.begins, snap.BeginStep)
	r.lasts = append(r.lasts, snap.LastStep)
	sess.Reports++
	return thermo.Row{Step: snap.Step}, sess, nil
}

func (r *testReporter) Footer(thermo.Snapshot, thermo.Session) error {
	r.footers++
	return nil
}

type stepCounter struct{ n int }

func (c *stepCounter) OnStep(int64, int64) { c.n++ }

func TestLoopReportingSteps(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		steps []int64
	}{
		{"every 5", Config{Steps: 10, Every: 5}, []int64{0, 5, 10}},
		{"uneven tail", Config{Steps: 7, Every: 3}, []int64{0, 3, 6, 7}},
		{"endpoints only", Config{Steps: 4}, []int64{0, 4}},
		{"zero steps", Config{Steps: 0, Every: 2}, []int64{0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			rep := &testReporter{}
			counter := &stepCounter{}
			loop := New(&testHost{}, rep)
			loop.AddObserver(counter)

			res, err := loop.Run(context.Background(), tt.cfg)
			g.Expect(err).NotTo(HaveOccurred())
			g.Expect(rep.steps).To(Equal(tt.steps))
			g.Expect(res.Rows).To(Equal(len(tt.steps)))
			g.Expect(res.LastStep).To(Equal(tt.cfg.Steps))
			g.Expect(counter.n).To(Equal(int(tt.cfg.Steps)))
			g.Expect(rep.footers).To(Equal(1))
		})
	}
}

func TestLoopSeriesKeepsBeginStep(t *testing.T) {
	g := NewWithT(t)
	rep := &testReporter{}
	loop := New(&testHost{}, rep)

	_, err := loop.Run(context.Background(), Config{Steps: 4, Every: 2})
	g.Expect(err).NotTo(HaveOccurred())
	res, err := loop.Run(context.Background(), Config{Steps: 4, Every: 2})
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(res.FirstStep).To(Equal(int64(4)))
	g.Expect(rep.setups).To(Equal(2))
	g.Expect(rep.steps).To(Equal([]int64{0, 2, 4, 4, 6, 8}))
	g.Expect(rep.begins).To(HaveEach(int64(0)))
	g.Expect(rep.lasts).To(Equal([]int64{4, 4, 4, 8, 8, 8}))
}

func TestLoopInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"negative steps", Config{Steps: -1}},
		{"negative every", Config{Steps: 10, Every: -5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			rep := &testReporter{}
			_, err := New(&testHost{}, rep).Run(context.Background(), tt.cfg)
			g.Expect(err).To(MatchError(ErrBadConfig))
			g.Expect(rep.setups).To(BeZero())
		})
	}
}

func TestLoopHostError(t *testing.T) {
	g := NewWithT(t)
	rep := &testReporter{}
	_, err := New(&testHost{failAt: 3}, rep).Run(context.Background(), Config{Steps: 10, Every: 1})

	var stepErr *StepError
	g.Expect(errors.As(err, &stepErr)).To(BeTrue())
	g.Expect(stepErr.Step).To(Equal(int64(3)))
	g.Expect(err.Error()).To(Equal("step 3: blew up"))
	g.Expect(rep.steps).To(Equal([]int64{0, 1, 2}))
	g.Expect(rep.footers).To(Equal(1))
}

func TestLoopReportError(t *testing.T) {
	g := NewWithT(t)
	rep := &testReporter{failAt: 4}
	_, err := New(&testHost{}, rep).Run(context.Background(), Config{Steps: 10, Every: 2})

	g.Expect(err).To(MatchError(ContainSubstring("bad keyword")))
	g.Expect(rep.steps).To(Equal([]int64{0, 2}))
}

func TestLoopFirstReportErrorStillWritesFooter(t *testing.T) {
	g := NewWithT(t)
	rep := &testReporter{failAt: 5}
	host := &testHost{step: 5}
	res, err := New(host, rep).Run(context.Background(), Config{Steps: 10, Every: 2})

	var stepErr *StepError
	g.Expect(errors.As(err, &stepErr)).To(BeTrue())
	g.Expect(stepErr.Step).To(Equal(int64(5)))
	g.Expect(rep.footers).To(Equal(1))
	g.Expect(rep.steps).To(BeEmpty())
	g.Expect(res.Rows).To(BeZero())
	g.Expect(host.step).To(Equal(int64(5)))
}

func TestLoopCancelled(t *testing.T) {
	g := NewWithT(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep := &testReporter{}
	res, err := New(&testHost{}, rep).Run(ctx, Config{Steps: 100, Every: 10})
	g.Expect(err).To(MatchError(context.Canceled))
	g.Expect(res.Final.Step).To(BeZero())
	g.Expect(rep.footers).To(Equal(1))
}

func TestLoopWithThermo(t *testing.T) {
	g := NewWithT(t)
	sys, err := md.New(md.DefaultParams())
	g.Expect(err).NotTo(HaveOccurred())

	var out bytes.Buffer
	th := thermo.New(sys.Providers(), thermo.Options{Writer: &out, NormalizeDefault: true})
	g.Expect(th.Configure([]string{"step", "temp", "pe", "elapsed", "cpuremain"})).To(Succeed())

	res, err := New(sys, th).Run(context.Background(), Config{Steps: 10, Every: 5})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(res.Rows).To(Equal(3))

	text := out.String()
	g.Expect(text).To(ContainSubstring("elapsed"))
	g.Expect(text).To(ContainSubstring("Loop time of"))
	g.Expect(strings.Count(text, "\n")).To(BeNumerically(">=", 4))
}
