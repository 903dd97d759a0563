package audit

import (
	"strings"

	"github.com/gobwas/glob"
)

// sensitiveGlobs replaces the source program's strstr(path, "shadow")
// substring match (spec.md 9's over-matching flag) with an explicit set of
// absolute-path prefixes/globs.
var sensitiveGlobs = []glob.Glob{
	glob.MustCompile("/etc/shadow*"),
	glob.MustCompile("/etc/sudoers*"),
	glob.MustCompile("/etc/sudoers.d/*"),
	glob.MustCompile("/etc/passwd"),
	glob.MustCompile("/etc/pam.d/*"),
}

// IsSensitivePath reports whether path matches one of the curated
// sensitive-file globs.
func IsSensitivePath(path string) bool {
	for _, g := range sensitiveGlobs {
		if g.Match(path) {
			return true
		}
	}
	return false
}

// shellBasenames are executable basenames that mark a shell spawn.
var shellBasenames = map[string]bool{
	"sh": true, "bash": true,
}

// IsTmpExecution reports whether path is under /tmp/.
func IsTmpExecution(path string) bool {
	return strings.HasPrefix(path, "/tmp/")
}

// IsDevShmExecution reports whether path is under /dev/shm/.
func IsDevShmExecution(path string) bool {
	return strings.HasPrefix(path, "/dev/shm/")
}

// IsShellSpawn reports whether path's basename names a shell interpreter.
func IsShellSpawn(path string) bool {
	base := path
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		base = path[idx+1:]
	}
	return shellBasenames[base]
}

// unexpectedShellParents flags parent processes from which a shell spawn is
// considered suspicious rather than routine. Only the shell's immediate
// parent (chain[1]) is compared against this set.
var unexpectedShellParents = map[string]bool{
	"httpd": true, "nginx": true, "sshd": true, "mysqld": true, "java": true,
}

// SuspiciousChainReason returns a non-empty reason when chain[0] is a shell
// (a basename in shellBasenames) and chain[1] is in unexpectedShellParents.
// Scripting engines such as python3 are not flagged, and ancestors beyond
// the immediate parent are not examined.
func SuspiciousChainReason(chain ProcessChain) string {
	if len(chain) < 2 {
		return ""
	}
	leaf := chain[0]
	parent := chain[1]
	if !shellBasenames[leaf] {
		return ""
	}
	if unexpectedShellParents[parent] {
		return parent + " spawned a shell outside a login context"
	}
	return ""
}

// BruteForceThreshold is the strictly-greater-than bound for the
// brute-force heuristic (5 failures does not trigger; 6 does).
const BruteForceThreshold = 5

// IsBruteForce reports whether authFailures exceeds BruteForceThreshold.
func IsBruteForce(authFailures int) bool {
	return authFailures > BruteForceThreshold
}
