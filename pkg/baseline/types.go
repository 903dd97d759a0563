// Package baseline persists rolling EMA-maintained statistics across runs:
// a host-fingerprint baseline (stable invariants of the machine) and an
// audit-metric baseline (the fixed on-disk binary layout from spec.md 6).
package baseline

import "time"

// AuditMagic is the fixed 8-byte header magic for the audit-metric baseline
// file.
const AuditMagic = "SNTLAUDT"

// AuditVersion is the only recognised on-disk format version.
const AuditVersion uint32 = 1

// Alpha is the EMA smoothing factor applied to every tracked metric.
const Alpha = 0.2

// AuditBaseline holds the EMA-maintained audit metrics persisted to
// audit_baseline.dat.
type AuditBaseline struct {
	Created            time.Time
	Updated            time.Time
	SampleCount        uint32
	AvgAuthFailures    float32
	AvgSudoCount       float32
	AvgSensitiveAccess float32
	AvgTmpExecutions   float32
	AvgShellSpawns     float32
}

// AuditMetrics is one observation's input to AuditBaseline.Update.
type AuditMetrics struct {
	AuthFailures    float32
	SudoCount       float32
	SensitiveAccess float32
	TmpExecutions   float32
	ShellSpawns     float32
}

// HostBaseline captures stable invariants of the machine used to detect
// drift: canonical listeners, canonical configs, the process-name set, and a
// load-average window. Unlike AuditBaseline it has no fixed wire format in
// spec.md, so it is persisted as JSON (see store.go).
type HostBaseline struct {
	Created            time.Time         `json:"created"`
	Updated            time.Time         `json:"updated"`
	SampleCount        uint32            `json:"sample_count"`
	CanonicalListeners []int             `json:"canonical_listeners"`
	CanonicalConfigs   map[string]string `json:"canonical_configs"`
	ProcessNames       []string          `json:"process_names"`
	LoadAvgWindow      [][3]float64      `json:"load_avg_window"`
}
