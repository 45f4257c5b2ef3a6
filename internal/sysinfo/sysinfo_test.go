package sysinfo

import (
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/thermo/internal/thermo"
)

var _ thermo.MemoryProbe = (*Probe)(nil)

func TestProbeMemory(t *testing.T) {
	g := NewWithT(t)
	p, err := NewProbe()
	g.Expect(err).NotTo(HaveOccurred())

	mb, err := p.MemoryMB()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(mb).To(BeNumerically(">", 0))
}

func TestHostString(t *testing.T) {
	g := NewWithT(t)
	h := Host{LogicalCPUs: 8, TotalMB: 16384, UsedPercent: 42.26}
	g.Expect(h.String()).To(Equal("8 logical CPUs, 16384 MB memory (42.3% used)"))
}
