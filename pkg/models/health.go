package models

// SystemHealth is the snapshot returned by the system health endpoint.
type SystemHealth struct {
	CPU      CPUInfo         `json:"cpu"`
	Memory   MemoryInfo      `json:"memory"`
	Disk     DiskInfo        `json:"disk"`
	Network  NetworkInfo     `json:"network"`
	Services []ServiceStatus `json:"services"`
	Uptime   UptimeInfo      `json:"uptime"`
	Platform PlatformInfo    `json:"platform"`
}

// CPUInfo represents processor usage.
type CPUInfo struct {
	Cores        int          `json:"cores"`
	UsagePercent float64      `json:"usage_percent"`
	LoadAverages LoadAverages `json:"load_averages"`
}

// LoadAverages represents system load information.
type LoadAverages struct {
	Load1  float64 `json:"load_1"`
	Load5  float64 `json:"load_5"`
	Load15 float64 `json:"load_15"`
}

// MemoryInfo represents memory usage information.
type MemoryInfo struct {
	Total        uint64  `json:"total"`
	Used         uint64  `json:"used"`
	Available    uint64  `json:"available"`
	UsagePercent float64 `json:"usage_percent"`
}

// DiskInfo represents disk usage for the data directory.
type DiskInfo struct {
	Path         string  `json:"path"`
	Total        uint64  `json:"total"`
	Used         uint64  `json:"used"`
	Available    uint64  `json:"available"`
	UsagePercent float64 `json:"usage_percent"`
}

// NetworkInfo represents aggregated interface counters.
type NetworkInfo struct {
	BytesSent   uint64 `json:"bytes_sent"`
	BytesRecv   uint64 `json:"bytes_recv"`
	PacketsSent uint64 `json:"packets_sent"`
	PacketsRecv uint64 `json:"packets_recv"`
}

// ServiceStatus reports the state of a dependency.
type ServiceStatus struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// UptimeInfo reports host and process uptime.
type UptimeInfo struct {
	Host           string `json:"host"`
	HostSeconds    uint64 `json:"host_seconds"`
	ProcessSeconds int64  `json:"process_seconds"`
}

// PlatformInfo describes the host operating system.
type PlatformInfo struct {
	Hostname        string `json:"hostname"`
	OS              string `json:"os"`
	Platform        string `json:"platform"`
	PlatformVersion string `json:"platform_version"`
	KernelVersion   string `json:"kernel_version"`
	Arch            string `json:"arch"`
	GoVersion       string `json:"go_version"`
}
