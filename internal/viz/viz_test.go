package viz

import (
	"bytes"
	"math"
	"strings"
	"testing"

	. "github.com/onsi/gomega"
)

func TestLoggerWritesLines(t *testing.T) {
	g := NewWithT(t)
	var buf bytes.Buffer
	l := NewLogger(&buf)

	l.Logf("WARNING: %s", "Lost atoms: original 256 current 250")
	l.Logf("ERROR: %s", "boom")
	l.Logf("note")

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	g.Expect(lines).To(HaveLen(3))
	g.Expect(lines[0]).To(ContainSubstring("Lost atoms: original 256 current 250"))
	g.Expect(lines[1]).To(ContainSubstring("boom"))
}

func TestPlotColumn(t *testing.T) {
	g := NewWithT(t)
	out, err := PlotColumn("temp", []int64{0, 50, 100}, []float64{1.44, math.NaN(), 0.7}, 30, 5)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(out).To(ContainSubstring("temp, steps 0..100"))

	_, err = PlotColumn("press", []int64{0}, []float64{1}, 30, 5)
	g.Expect(err).To(MatchError(ContainSubstring(`column "press"`)))
}

func TestSparklineWidth(t *testing.T) {
	g := NewWithT(t)
	g.Expect(Sparkline(nil, 4)).To(Equal("────"))

	vals := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	line := Sparkline(vals, 5)
	g.Expect(strings.Count(line, "█")).To(Equal(1))
	g.Expect(strings.Count(line, "▁")).To(Equal(1))
}

func TestSetTheme(t *testing.T) {
	g := NewWithT(t)
	defer SetTheme(ThemeDefault.Name)

	g.Expect(SetTheme("mono")).To(BeTrue())
	g.Expect(CurrentTheme.Name).To(Equal("mono"))
	g.Expect(SetTheme("nope")).To(BeFalse())

	NextTheme()
	g.Expect(CurrentTheme.Name).To(Equal("default"))
	g.Expect(ThemeNames()).To(Equal([]string{"default", "mono"}))
}
