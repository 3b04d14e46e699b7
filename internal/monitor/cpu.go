package monitor

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
)

type CPUMonitor struct {
	counts func(logical bool) (int, error)
}

func NewCPUMonitor() *CPUMonitor {
	return &CPUMonitor{counts: cpu.Counts}
}

func (m *CPUMonitor) Name() string {
	return "cpu"
}

func (m *CPUMonitor) Collect() (any, error) {
	physical, err := m.counts(false)
	if err != nil {
		return nil, fmt.Errorf("physical cores: %w", err)
	}
	logical, err := m.counts(true)
	if err != nil {
		return nil, fmt.Errorf("logical cores: %w", err)
	}

	state := &CPUState{
		PhysicalCores: physical,
		LogicalCores:  logical,
	}

	// Model name is informational; some platforms do not report it.
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		state.ModelName = infos[0].ModelName
	}

	return state, nil
}

// Workers resolves a configured worker count. Zero or less means one worker
// per physical core, falling back to the Go runtime's CPU count.
func (m *CPUMonitor) Workers(requested int) int {
	if requested > 0 {
		return requested
	}
	if n, err := m.counts(false); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}
