package monitor

import (
	"fmt"

	"github.com/shirou/gopsutil/v4/host"
)

type HostMonitor struct{}

func NewHostMonitor() *HostMonitor {
	return &HostMonitor{}
}

func (m *HostMonitor) Name() string {
	return "host"
}

func (m *HostMonitor) Collect() (any, error) {
	h, err := host.Info()
	if err != nil {
		return nil, fmt.Errorf("host info: %w", err)
	}

	return &HostState{
		Hostname:        h.Hostname,
		OS:              h.OS,
		Platform:        h.Platform,
		PlatformVersion: h.PlatformVersion,
		KernelArch:      h.KernelArch,
	}, nil
}
