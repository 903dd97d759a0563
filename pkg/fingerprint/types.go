// Package fingerprint defines the immutable host-snapshot record and its
// derived quick-analysis indicators, and renders it as stable-order JSON.
package fingerprint

// SystemStats holds the fixed-order system-stats probe result.
type SystemStats struct {
	Hostname       string     `json:"hostname"`
	UptimeSeconds  uint64     `json:"uptime_seconds"`
	LoadAvg        [3]float64 `json:"load_avg"`
	TotalRAM       uint64     `json:"total_ram"`
	FreeRAM        uint64     `json:"free_ram"`
}

// Process is one process-probe record.
type Process struct {
	PID        int    `json:"pid"`
	PPID       int    `json:"ppid"`
	PGID       int    `json:"pgid"`
	UID        int    `json:"uid"`
	Command    string `json:"command"`
	State      string `json:"state"`
	FDCount    int    `json:"fd_count"`
	AgeSeconds int64  `json:"age_seconds"`
}

// IsZombie reports whether the process state marks a zombie.
func (p Process) IsZombie() bool {
	return p.State == "Z"
}

// Config is one config-file probe record.
type Config struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
	Size   int64  `json:"size"`
	Mode   uint32 `json:"mode"`
	UID    int    `json:"uid"`
	GID    int    `json:"gid"`
	Mtime  int64  `json:"mtime"`
	SHA256 string `json:"sha256"`
	// Symlink records whether the probed path is a symbolic link; the real
	// path is resolved before hashing. Recovered from the AIX config probe
	// in original_source, dropped by the distilled spec's config record.
	Symlink bool `json:"symlink"`
}

// PermissionIssue reports whether cfg is world-writable, or wider than 0644
// and not owned by root.
func (c Config) PermissionIssue() bool {
	if !c.Exists {
		return false
	}
	worldWritable := c.Mode&0o002 != 0
	tooWide := c.Mode&0o777 > 0o644 && c.UID != 0
	return worldWritable || tooWide
}

// Listener is a listening-socket network-probe record.
type Listener struct {
	Protocol    string `json:"protocol"`
	LocalAddr   string `json:"local_addr"`
	LocalPort   int    `json:"local_port"`
	State       string `json:"state"`
	PID         int    `json:"pid"`
	ProcessName string `json:"process_name"`
	Uncommon    bool   `json:"uncommon"`
}

// Connection is an established-connection network-probe record.
type Connection struct {
	Protocol    string `json:"protocol"`
	LocalAddr   string `json:"local_addr"`
	RemoteAddr  string `json:"remote_addr"`
	State       string `json:"state"`
	PID         int    `json:"pid"`
	ProcessName string `json:"process_name"`
}

// Network aggregates listener/connection records plus summary counts.
type Network struct {
	TotalListening    int          `json:"total_listening"`
	TotalEstablished  int          `json:"total_established"`
	UnusualPortCount  int          `json:"unusual_port_count"`
	Listeners         []Listener   `json:"listeners"`
	Connections       []Connection `json:"connections"`
}

// Fingerprint is one immutable snapshot of host observable state. Field
// order here is the field order emitted in JSON (encoding/json marshals
// struct fields in declaration order), satisfying the stable-output
// invariant P4.
type Fingerprint struct {
	Timestamp    int64     `json:"timestamp"`
	Version      string    `json:"version"`
	System       SystemStats `json:"system"`
	ProcessCount int       `json:"process_count"`
	Processes    []Process `json:"processes"`
	ConfigCount  int       `json:"config_count"`
	Configs      []Config  `json:"configs"`
	Network      Network   `json:"network"`
	ProbeErrors  int       `json:"probe_errors"`
}

// QuickAnalysis holds derived indicators computed over a Fingerprint.
type QuickAnalysis struct {
	ZombieCount            int `json:"zombie_count"`
	HighFDCount            int `json:"high_fd_count"`
	LongRunningCount       int `json:"long_running_count"`
	ConfigPermissionIssues int `json:"config_permission_issues"`
	UnusualListenerCount   int `json:"unusual_listener_count"`
	TotalIssues            int `json:"total_issues"`
}

const (
	// HighFDThreshold marks a process as "high-FD" above this open count.
	HighFDThreshold = 256
	// LongRunningSeconds marks a process as long-running at or above this age.
	LongRunningSeconds = 7 * 24 * 3600
)

// Analyze computes QuickAnalysis indicators from fp.
func Analyze(fp Fingerprint) QuickAnalysis {
	var qa QuickAnalysis
	for _, p := range fp.Processes {
		if p.IsZombie() {
			qa.ZombieCount++
		}
		if p.FDCount > HighFDThreshold {
			qa.HighFDCount++
		}
		if p.AgeSeconds >= LongRunningSeconds {
			qa.LongRunningCount++
		}
	}
	for _, c := range fp.Configs {
		if c.PermissionIssue() {
			qa.ConfigPermissionIssues++
		}
	}
	qa.UnusualListenerCount = fp.Network.UnusualPortCount
	qa.TotalIssues = qa.ZombieCount + qa.HighFDCount + qa.LongRunningCount +
		qa.ConfigPermissionIssues + qa.UnusualListenerCount
	return qa
}
