// Package agent wires the probes, audit collector, baseline store,
// analyzer, and SIEM router together into the run loop cmd/sentinel
// exposes, grounded on DataDog-datadog-agent's cmd/agent -> pkg split:
// cmd stays a thin cobra shell, the real orchestration lives here.
package agent

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"os"
	"path/filepath"
	"time"

	gopsprocess "github.com/shirou/gopsutil/v3/process"
	"github.com/sirupsen/logrus"

	"github.com/librepower/csentinel/internal/config"
	"github.com/librepower/csentinel/pkg/analyzer"
	"github.com/librepower/csentinel/pkg/audit"
	"github.com/librepower/csentinel/pkg/baseline"
	"github.com/librepower/csentinel/pkg/fingerprint"
	"github.com/librepower/csentinel/pkg/probes"
	"github.com/librepower/csentinel/pkg/siem"
)

// DefaultMonitoredConfigs lists the configuration files csentinel fingerprints
// by default, grounded on original_source/csentinel4aix's static config_paths
// table.
var DefaultMonitoredConfigs = []string{
	"/etc/passwd",
	"/etc/shadow",
	"/etc/sudoers",
	"/etc/ssh/sshd_config",
	"/etc/pam.d/sshd",
	"/etc/hosts",
}

// Exit codes per spec.md 6's CLI contract.
const (
	ExitOK            = 0
	ExitWarnings      = 1
	ExitCritical      = 2
	ExitProbeFailure  = 3
)

// Result is the outcome of one RunOnce pass.
type Result struct {
	Fingerprint fingerprint.Fingerprint
	Analysis    fingerprint.QuickAnalysis
	AuditSummary audit.AuditSummary
	Events      []siem.Event
	ExitCode    int
}

// Agent owns the long-lived state a run loop needs across ticks: the
// baseline store, the SIEM router (which tracks the previous fingerprint),
// and the installation salt used to hash usernames.
type Agent struct {
	Config config.Config
	Store  *baseline.Store
	Router *siem.Router
	Salt   string
	Log    *logrus.Logger

	lastAuditTick time.Time
}

// New builds an Agent from cfg, loading or generating the installation salt
// and constructing the SIEM router from cfg's sink settings.
func New(cfg config.Config, log *logrus.Logger) (*Agent, error) {
	salt, err := loadOrCreateSalt(cfg.StateDir)
	if err != nil {
		return nil, err
	}

	format := siem.FormatCEF
	if cfg.SyslogFormat == "json" {
		format = siem.FormatJSONLine
	}

	var sinks []siem.Sink
	if cfg.SyslogTarget != "" {
		sinks = append(sinks, siem.NewSyslogSink("udp", cfg.SyslogTarget, format))
	}
	if cfg.LogFilePath != "" {
		sinks = append(sinks, siem.NewLogFileSink(cfg.LogFilePath))
	}
	if cfg.EmailTarget != "" {
		sinks = append(sinks, siem.NewEmailSink(cfg.EmailTarget, cfg.RiskThreshold))
	}

	return &Agent{
		Config:        cfg,
		Store:         baseline.NewStore(),
		Router:        siem.NewRouter(format, sinks...),
		Salt:          salt,
		Log:           log,
		lastAuditTick: time.Now().Add(-time.Duration(cfg.IntervalSeconds) * time.Second),
	}, nil
}

// RunOnce performs one full collection-analysis-dispatch pass: gather the
// host fingerprint, collect and analyze the audit window since the last
// tick, update and persist both baselines, route SIEM events, and return
// the exit code spec.md 6 defines.
func (a *Agent) RunOnce(ctx context.Context) (Result, error) {
	now := time.Now()
	probeErrors := 0

	sys, err := probes.System(ctx)
	if err != nil {
		probeErrors++
		a.Log.WithError(err).Warn("system probe failed")
	}
	procs, err := probes.Process(ctx)
	if err != nil {
		probeErrors++
		a.Log.WithError(err).Warn("process probe failed")
	}
	net, err := probes.Network(ctx)
	if err != nil {
		probeErrors++
		a.Log.WithError(err).Warn("network probe failed")
	}
	configs, cfgErrs := probes.Config(DefaultMonitoredConfigs)
	probeErrors += cfgErrs

	fp := fingerprint.Fingerprint{
		Timestamp:    now.Unix(),
		Version:      "1",
		System:       sys,
		ProcessCount: len(procs),
		Processes:    procs,
		ConfigCount:  len(configs),
		Configs:      configs,
		Network:      net,
		ProbeErrors:  probeErrors,
	}
	analysis := fingerprint.Analyze(fp)

	since := a.lastAuditTick
	summary, err := audit.Collect(ctx, since, a.Salt, lookupProcess)
	if err != nil {
		a.Log.WithError(err).Warn("audit collection failed")
	}
	a.lastAuditTick = now

	hostBaseline, err := a.Store.LoadHost()
	if err != nil {
		hostBaseline = baseline.HostBaseline{}
	}
	auditBaseline, err := a.Store.LoadAudit()
	if err != nil {
		auditBaseline = baseline.AuditBaseline{}
	}

	summary = analyzer.Analyze(summary, auditBaseline, now)

	auditBaseline.Update(now, baseline.AuditMetrics{
		AuthFailures:    float32(summary.Authentication.Failures),
		SudoCount:       float32(summary.PrivilegeEscalation.SudoCount),
		SensitiveAccess: float32(len(summary.FileIntegrity.SensitiveFileAccess)),
		TmpExecutions:   float32(summary.ProcessActivity.TmpExecutions),
		ShellSpawns:     float32(summary.ProcessActivity.ShellSpawns),
	})
	if err := a.Store.SaveAudit(auditBaseline); err != nil {
		a.Log.WithError(err).Warn("failed to persist audit baseline")
	}

	hostBaseline.SampleCount++
	hostBaseline.Updated = now
	if hostBaseline.SampleCount == 1 {
		hostBaseline.Created = now
	}
	if err := a.Store.SaveHost(hostBaseline); err != nil {
		a.Log.WithError(err).Warn("failed to persist host baseline")
	}

	events := a.Router.Update(ctx, fp, summary, now)

	exitCode := ExitOK
	switch {
	case analysis.ZombieCount > 0 || analysis.ConfigPermissionIssues > 0 ||
		analysis.UnusualListenerCount >= 4 || summary.RiskScore >= 16:
		exitCode = ExitCritical
	case analysis.TotalIssues > 0 || summary.RiskScore > 0:
		exitCode = ExitWarnings
	}
	if probeErrors > 0 && exitCode == ExitOK {
		exitCode = ExitProbeFailure
	}

	return Result{
		Fingerprint:  fp,
		Analysis:     analysis,
		AuditSummary: summary,
		Events:       events,
		ExitCode:     exitCode,
	}, nil
}

// lookupProcess implements audit.ProcessLookup against the live process
// table via gopsutil, used to walk ancestry chains for suspicious execs.
func lookupProcess(pid int) (int, string, bool) {
	p, err := gopsprocess.NewProcess(int32(pid))
	if err != nil {
		return 0, "", false
	}
	ppid, err := p.Ppid()
	if err != nil {
		return 0, "", false
	}
	name, err := p.Name()
	if err != nil {
		return 0, "", false
	}
	return int(ppid), name, true
}

// loadOrCreateSalt reads the installation's username-hashing salt from
// stateDir/salt, generating and persisting a fresh 16-byte random value on
// first run so FailureUsersHashed tokens stay stable across restarts.
func loadOrCreateSalt(stateDir string) (string, error) {
	path := filepath.Join(stateDir, "salt")
	if data, err := os.ReadFile(path); err == nil {
		return string(data), nil
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	salt := hex.EncodeToString(buf)

	if err := os.MkdirAll(stateDir, 0o700); err != nil {
		return salt, nil // best effort: still usable for this run
	}
	_ = os.WriteFile(path, []byte(salt), 0o600)
	return salt, nil
}
