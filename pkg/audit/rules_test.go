package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSensitivePath(t *testing.T) {
	assert.True(t, IsSensitivePath("/etc/shadow"))
	assert.True(t, IsSensitivePath("/etc/shadow-"))
	assert.True(t, IsSensitivePath("/etc/sudoers"))
	assert.True(t, IsSensitivePath("/etc/sudoers.d/custom"))
	assert.True(t, IsSensitivePath("/etc/passwd"))
	assert.False(t, IsSensitivePath("/etc/passwd.bak"), "must not substring-match")
	assert.False(t, IsSensitivePath("/home/alice/shadow-copy.txt"))
}

func TestIsTmpAndDevShmExecution(t *testing.T) {
	assert.True(t, IsTmpExecution("/tmp/x"))
	assert.False(t, IsTmpExecution("/usr/bin/tmpfile"))
	assert.True(t, IsDevShmExecution("/dev/shm/payload"))
	assert.False(t, IsDevShmExecution("/dev/sharename"))
}

func TestIsShellSpawn(t *testing.T) {
	assert.True(t, IsShellSpawn("/bin/bash"))
	assert.True(t, IsShellSpawn("/bin/sh"))
	assert.False(t, IsShellSpawn("/usr/bin/python3"))
}

func TestSuspiciousChainReason(t *testing.T) {
	assert.Equal(t, "", SuspiciousChainReason(ProcessChain{"bash"}))
	assert.Equal(t, "", SuspiciousChainReason(ProcessChain{"bash", "systemd"}))
	assert.Contains(t, SuspiciousChainReason(ProcessChain{"sh", "nginx"}), "nginx")
	assert.Equal(t, "", SuspiciousChainReason(ProcessChain{"python3", "nginx"}))
}

func TestIsBruteForceThreshold(t *testing.T) {
	assert.False(t, IsBruteForce(5))
	assert.True(t, IsBruteForce(6))
}
