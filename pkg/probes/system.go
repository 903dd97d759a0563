package probes

import (
	"context"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/librepower/csentinel/pkg/fingerprint"
)

// System reads hostname, uptime, load average, and memory totals. Field
// order in the returned SystemStats is fixed by the struct's declaration
// order, per spec.md 4.2.
func System(ctx context.Context) (fingerprint.SystemStats, error) {
	var stats fingerprint.SystemStats

	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return stats, err
	}
	stats.Hostname = info.Hostname
	stats.UptimeSeconds = info.Uptime

	avg, err := load.AvgWithContext(ctx)
	if err == nil && avg != nil {
		stats.LoadAvg = [3]float64{avg.Load1, avg.Load5, avg.Load15}
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err == nil && vm != nil {
		stats.TotalRAM = vm.Total
		stats.FreeRAM = vm.Free
	}

	return stats, nil
}
