// Package monitor collects the host facts recorded alongside processed
// data and used to size the solver worker pool.
package monitor

import (
	"errors"
	"runtime"
	"time"
)

type Monitor interface {
	Name() string
	Collect() (any, error)
}

type HostState struct {
	Hostname        string `json:"hostname"`
	OS              string `json:"os"`
	Platform        string `json:"platform"`
	PlatformVersion string `json:"platform_version"`
	KernelArch      string `json:"kernel_arch"`
}

type CPUState struct {
	ModelName     string `json:"model_name"`
	PhysicalCores int    `json:"physical_cores"`
	LogicalCores  int    `json:"logical_cores"`
}

type MemoryState struct {
	TotalBytes uint64 `json:"total_bytes"`
}

// HostInfo is the provenance stamped into processed tables and solutions.
type HostInfo struct {
	Host        HostState   `json:"host"`
	CPU         CPUState    `json:"cpu"`
	Memory      MemoryState `json:"memory"`
	GoVersion   string      `json:"go_version"`
	CollectedAt time.Time   `json:"collected_at"`
}

// Snapshot runs every monitor once. Monitors that fail leave their part of
// the result zero; their errors are joined.
func Snapshot(monitors ...Monitor) (*HostInfo, error) {
	info := &HostInfo{
		GoVersion:   runtime.Version(),
		CollectedAt: time.Now().UTC(),
	}

	var errs []error
	for _, m := range monitors {
		data, err := m.Collect()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		switch v := data.(type) {
		case *HostState:
			info.Host = *v
		case *CPUState:
			info.CPU = *v
		case *MemoryState:
			info.Memory = *v
		}
	}
	return info, errors.Join(errs...)
}

// Default returns the host, cpu and memory monitors.
func Default() []Monitor {
	return []Monitor{NewHostMonitor(), NewCPUMonitor(), NewMemoryMonitor()}
}
