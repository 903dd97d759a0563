//go:build linux

package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestAddExecEventTmpShellNoParentIsSingleFactor pins scenario S3: an
// execve of /tmp/payload whose resolved image is /bin/sh counts as both a
// tmp execution and a shell spawn, but without an unexpected-parent chain
// it must not also register as a suspicious exec, since that would double
// the risk contribution of a single execve.
func TestAddExecEventTmpShellNoParentIsSingleFactor(t *testing.T) {
	summary := &AuditSummary{Enabled: true}
	addExecEvent(summary, "/tmp/payload", EventContext{Exe: "/bin/sh"}, nil)

	assert.Equal(t, 1, summary.ProcessActivity.TmpExecutions)
	assert.Equal(t, 1, summary.ProcessActivity.ShellSpawns)
	assert.Equal(t, 0, summary.ProcessActivity.SuspiciousExecCount)
	assert.Empty(t, summary.ProcessActivity.SuspiciousExecs)
}

// TestAddExecEventTmpShellUnexpectedParentIsSuspicious confirms the chain
// heuristic still fires suspicious_exec_count when the shell's parent is
// one of the unexpected-parent set, on top of the tmp-execution factor.
func TestAddExecEventTmpShellUnexpectedParentIsSuspicious(t *testing.T) {
	lookup := func(pid int) (int, string, bool) {
		switch pid {
		case 10:
			return 11, "sh", true
		case 11:
			return 1, "httpd", true
		}
		return 0, "", false
	}

	summary := &AuditSummary{Enabled: true}
	addExecEvent(summary, "/tmp/payload", EventContext{PID: 10, Exe: "/bin/sh"}, lookup)

	assert.Equal(t, 1, summary.ProcessActivity.TmpExecutions)
	assert.Equal(t, 1, summary.ProcessActivity.ShellSpawns)
	assert.Equal(t, 1, summary.ProcessActivity.SuspiciousExecCount)
	execs := summary.ProcessActivity.SuspiciousExecs
	assert.Len(t, execs, 1)
	assert.Equal(t, "httpd spawned a shell outside a login context", execs[0].Description)
}

// TestAddExecEventOrdinaryPathIsIgnored confirms a non-tmp, non-devshm,
// non-shell execve contributes nothing.
func TestAddExecEventOrdinaryPathIsIgnored(t *testing.T) {
	summary := &AuditSummary{Enabled: true}
	addExecEvent(summary, "/usr/bin/python3", EventContext{}, nil)

	assert.Zero(t, summary.ProcessActivity.TmpExecutions)
	assert.Zero(t, summary.ProcessActivity.ShellSpawns)
	assert.Zero(t, summary.ProcessActivity.SuspiciousExecCount)
}
