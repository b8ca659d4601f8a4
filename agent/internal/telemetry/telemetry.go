// Package telemetry collects host resource utilization for the Node Agent's
// periodic status reports to the Scheduler, replacing the teacher's
// zero-value metrics stub with a real github.com/shirou/gopsutil/v4 reading.
package telemetry

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
)

// DiskPath is the filesystem path usage is sampled from.
var DiskPath = "/"

// Usage is a plain snapshot of host resource figures, deliberately not tied
// to either the agent or scheduler proto package — callers convert it to
// whichever ResourceSummary they need.
type Usage struct {
	CPU    uint64 // millicores
	Memory uint64 // bytes
	Disk   uint64 // bytes
}

// Cpu is reported in millicores, consistent with the Scheduler's placement
// math (shared/types.ResourceSummary.CPU, scheduler/internal/placement).

// Collect returns a snapshot of current host resource usage: cpu millicores
// in use, memory bytes used, and disk bytes used, matching the fields the
// Scheduler expects on a Resource.Usage ResourceSummary.
func Collect(ctx context.Context) (Usage, error) {
	cpuPercents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return Usage{}, fmt.Errorf("telemetry: failed to read cpu usage: %w", err)
	}
	var cpuPct float64
	if len(cpuPercents) > 0 {
		cpuPct = cpuPercents[0]
	}

	counts, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return Usage{}, fmt.Errorf("telemetry: failed to read cpu count: %w", err)
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Usage{}, fmt.Errorf("telemetry: failed to read memory usage: %w", err)
	}

	du, err := disk.UsageWithContext(ctx, DiskPath)
	if err != nil {
		return Usage{}, fmt.Errorf("telemetry: failed to read disk usage: %w", err)
	}

	usedMillicores := uint64(cpuPct / 100 * float64(counts) * 1000)

	return Usage{CPU: usedMillicores, Memory: vm.Used, Disk: du.Used}, nil
}

// Capacity returns the host's total resource capacity. The connection
// manager reads it once per Status stream and sends it as the Limit of every
// NodeStatus frame so the Scheduler can bin-pack against it.
func Capacity(ctx context.Context) (Usage, error) {
	counts, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return Usage{}, fmt.Errorf("telemetry: failed to read cpu count: %w", err)
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Usage{}, fmt.Errorf("telemetry: failed to read memory total: %w", err)
	}

	du, err := disk.UsageWithContext(ctx, DiskPath)
	if err != nil {
		return Usage{}, fmt.Errorf("telemetry: failed to read disk total: %w", err)
	}

	return Usage{CPU: uint64(counts) * 1000, Memory: vm.Total, Disk: du.Total}, nil
}
