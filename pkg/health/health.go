// Package health builds the system health snapshot from gopsutil readings and
// dependency checks.
package health

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"mibhub/pkg/models"

	"github.com/hashicorp/go-multierror"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
)

// Service states reported in the services list.
const (
	StatusUp       = "up"
	StatusDown     = "down"
	StatusDegraded = "degraded"
	StatusDisabled = "disabled"
)

const defaultCPUSample = 200 * time.Millisecond

// ServiceCheck reports the state of one dependency.
type ServiceCheck func(ctx context.Context) models.ServiceStatus

// Collector gathers host metrics and runs the service checks.
type Collector struct {
	diskPath  string
	cpuSample time.Duration
	started   time.Time
	checks    []ServiceCheck
}

// NewCollector creates a collector reporting disk usage for diskPath.
func NewCollector(diskPath string, checks ...ServiceCheck) *Collector {
	if diskPath == "" {
		diskPath = "/"
	}
	return &Collector{
		diskPath:  diskPath,
		cpuSample: defaultCPUSample,
		started:   time.Now(),
		checks:    checks,
	}
}

// Collect returns the snapshot. Readings that fail are left zeroed and their
// errors returned together; the snapshot is never nil.
func (c *Collector) Collect(ctx context.Context) (*models.SystemHealth, error) {
	var result *multierror.Error
	snapshot := &models.SystemHealth{
		Services: make([]models.ServiceStatus, 0, len(c.checks)),
	}

	if cores, err := cpu.CountsWithContext(ctx, true); err != nil {
		result = multierror.Append(result, fmt.Errorf("get cpu cores: %w", err))
	} else {
		snapshot.CPU.Cores = cores
	}

	if percent, err := cpu.PercentWithContext(ctx, c.cpuSample, false); err != nil {
		result = multierror.Append(result, fmt.Errorf("get cpu percent: %w", err))
	} else if len(percent) > 0 {
		snapshot.CPU.UsagePercent = percent[0]
	}

	if avg, err := load.AvgWithContext(ctx); err != nil {
		result = multierror.Append(result, fmt.Errorf("get load average: %w", err))
	} else {
		snapshot.CPU.LoadAverages = models.LoadAverages{Load1: avg.Load1, Load5: avg.Load5, Load15: avg.Load15}
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err != nil {
		result = multierror.Append(result, fmt.Errorf("get memory info: %w", err))
	} else {
		snapshot.Memory = models.MemoryInfo{
			Total:        vm.Total,
			Used:         vm.Used,
			Available:    vm.Available,
			UsagePercent: vm.UsedPercent,
		}
	}

	snapshot.Disk.Path = c.diskPath
	if usage, err := disk.UsageWithContext(ctx, c.diskPath); err != nil {
		result = multierror.Append(result, fmt.Errorf("get disk usage: %w", err))
	} else {
		snapshot.Disk.Total = usage.Total
		snapshot.Disk.Used = usage.Used
		snapshot.Disk.Available = usage.Free
		snapshot.Disk.UsagePercent = usage.UsedPercent
	}

	if counters, err := net.IOCountersWithContext(ctx, false); err != nil {
		result = multierror.Append(result, fmt.Errorf("get network counters: %w", err))
	} else if len(counters) > 0 {
		snapshot.Network = models.NetworkInfo{
			BytesSent:   counters[0].BytesSent,
			BytesRecv:   counters[0].BytesRecv,
			PacketsSent: counters[0].PacketsSent,
			PacketsRecv: counters[0].PacketsRecv,
		}
	}

	snapshot.Platform.OS = runtime.GOOS
	snapshot.Platform.Arch = runtime.GOARCH
	snapshot.Platform.GoVersion = runtime.Version()
	snapshot.Uptime.ProcessSeconds = int64(time.Since(c.started).Seconds())

	if info, err := host.InfoWithContext(ctx); err != nil {
		result = multierror.Append(result, fmt.Errorf("get host info: %w", err))
		if hostname, hostErr := os.Hostname(); hostErr == nil {
			snapshot.Platform.Hostname = hostname
		}
	} else {
		snapshot.Platform.Hostname = info.Hostname
		snapshot.Platform.Platform = info.Platform
		snapshot.Platform.PlatformVersion = info.PlatformVersion
		snapshot.Platform.KernelVersion = info.KernelVersion
		snapshot.Uptime.HostSeconds = info.Uptime
		snapshot.Uptime.Host = FormatUptime(time.Duration(info.Uptime) * time.Second)
	}

	for _, check := range c.checks {
		snapshot.Services = append(snapshot.Services, check(ctx))
	}

	return snapshot, result.ErrorOrNil()
}

// FormatUptime renders d as "3d 4h 5m".
func FormatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
