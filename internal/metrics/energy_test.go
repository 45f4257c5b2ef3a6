package metrics

import (
	"math"
	"testing"

	. "github.com/onsi/gomega"
)

func TestEnergyDrift(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		max     float64
		current float64
	}{
		{"constant", []float64{-5, -5, -5}, 0, 0},
		{"recovering", []float64{-4, -5, -4.2}, 0.25, 0.05},
		{"zero start", []float64{0, 1, 2}, 0, 0},
		{"skips nan", []float64{-2, math.NaN(), -3}, 0.5, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			d := NewEnergyDrift("etotal")
			for _, v := range tt.samples {
				d.Observe([]string{"step", "etotal"}, []float64{0, v})
			}
			g.Expect(d.Value()).To(BeNumerically("~", tt.max, 1e-12))
			g.Expect(d.Current()).To(BeNumerically("~", tt.current, 1e-12))
		})
	}
}

func TestEnergyDriftMissingColumnAndReset(t *testing.T) {
	g := NewWithT(t)
	d := NewEnergyDrift("econserve")
	d.Observe([]string{"etotal"}, []float64{-4})
	g.Expect(d.Value()).To(BeZero())

	d.Observe([]string{"econserve"}, []float64{-4})
	d.Observe([]string{"econserve"}, []float64{-6})
	g.Expect(d.Value()).To(BeNumerically("~", 0.5, 1e-12))

	d.Reset()
	g.Expect(d.Value()).To(BeZero())
	g.Expect(d.Column()).To(Equal("econserve"))
}
