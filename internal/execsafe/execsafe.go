// Package execsafe is the single chokepoint through which csentinel invokes
// external processes (ausearch, auditpr, netstat, sendmail). It replaces the
// source program's popen()-based shell invocation with argv-only exec.Command
// calls over a sanitised environment, grounded on safedep-pmg's
// pkg/common/utils.ExecCmd and guard packages.
package execsafe

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/librepower/csentinel/internal/xerrors"
)

// pinnedPath is the only PATH external commands are allowed to resolve
// against, matching the source program's fixed search path.
const pinnedPath = "/usr/bin:/bin:/usr/sbin:/sbin"

// deniedEnv lists environment variables stripped from every child process;
// each could redirect dynamic-linker or shell behaviour.
var deniedEnv = []string{
	"LD_PRELOAD", "LD_LIBRARY_PATH", "LD_AUDIT", "LD_DEBUG", "LIBPATH",
	"IFS", "CDPATH", "ENV", "BASH_ENV",
}

// Result holds the captured output of a completed external command.
type Result struct {
	Stdout string
	Stderr string
}

// Run executes name with argv (argv[0] excluded from args) over a sanitised
// environment: PATH pinned, locale forced to C, and the variables in
// deniedEnv removed regardless of the ambient environment. It never invokes
// a shell; name and args are passed to exec.Command verbatim.
func Run(ctx context.Context, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = sanitizedEnv()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return Result{Stdout: stdout.String(), Stderr: stderr.String()},
			xerrors.WrapDetail(err, xerrors.TransportFailure, "execsafe.Run", name+": "+stderr.String())
	}
	return Result{Stdout: stdout.String(), Stderr: stderr.String()}, nil
}

// RunWithStdin is Run but feeds stdin to the child's standard input, used by
// the sendmail invocation which expects the message body on stdin.
func RunWithStdin(ctx context.Context, stdin string, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = sanitizedEnv()
	cmd.Stdin = strings.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return Result{Stdout: stdout.String(), Stderr: stderr.String()},
			xerrors.WrapDetail(err, xerrors.TransportFailure, "execsafe.RunWithStdin", name+": "+stderr.String())
	}
	return Result{Stdout: stdout.String(), Stderr: stderr.String()}, nil
}

// sanitizedEnv builds a minimal environment: PATH, LANG/LC_ALL pinned to C,
// nothing else. It deliberately does not start from os.Environ(), since the
// deny-list approach in the source program is itself the redesign flag this
// package closes: an allow-list is the safer default.
func sanitizedEnv() []string {
	return []string{
		"PATH=" + pinnedPath,
		"LANG=C",
		"LC_ALL=C",
	}
}

// StripDenied filters env (in "KEY=VALUE" form) by removing any entry whose
// key appears in deniedEnv. Exposed for callers that must start from an
// inherited environment rather than the zeroed default sanitizedEnv builds.
func StripDenied(env []string) []string {
	out := make([]string, 0, len(env))
	for _, kv := range env {
		key, _, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		denied := false
		for _, d := range deniedEnv {
			if key == d {
				denied = true
				break
			}
		}
		if !denied {
			out = append(out, kv)
		}
	}
	return out
}
