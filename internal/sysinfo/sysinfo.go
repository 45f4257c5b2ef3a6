// Package sysinfo reads process and host facts through gopsutil.
package sysinfo

import (
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

const mebibyte = 1024 * 1024

// Probe reports the resident memory of the current process.
type Probe struct {
	proc *process.Process
}

func NewProbe() (*Probe, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("sysinfo: open process: %w", err)
	}
	return &Probe{proc: p}, nil
}

// MemoryMB implements thermo.MemoryProbe.
func (p *Probe) MemoryMB() (float64, error) {
	info, err := p.proc.MemoryInfo()
	if err != nil {
		return 0, fmt.Errorf("sysinfo: memory info: %w", err)
	}
	return float64(info.RSS) / mebibyte, nil
}

// Host summarizes the machine a run executes on.
type Host struct {
	LogicalCPUs int
	TotalMB     float64
	UsedPercent float64
}

func ReadHost() (Host, error) {
	n, err := cpu.Counts(true)
	if err != nil {
		return Host{}, fmt.Errorf("sysinfo: cpu count: %w", err)
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return Host{}, fmt.Errorf("sysinfo: virtual memory: %w", err)
	}
	return Host{LogicalCPUs: n, TotalMB: float64(vm.Total) / mebibyte, UsedPercent: vm.UsedPercent}, nil
}

func (h Host) String() string {
	return fmt.Sprintf("%d logical CPUs, %.0f MB memory (%.1f%% used)", h.LogicalCPUs, h.TotalMB, h.UsedPercent)
}
