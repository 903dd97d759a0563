//go:build aix

package probes

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/librepower/csentinel/internal/execsafe"
	"github.com/librepower/csentinel/pkg/fingerprint"
)

// expectedProcessByPort curates the port -> expected listener name table the
// AIX collector consults when a socket FD can't be attributed to a single
// PID directly, grounded on original_source/csentinel4aix/src/net_probe.c.
var expectedProcessByPort = map[int]string{
	22: "sshd", 25: "sendmail", 80: "httpd", 443: "httpd",
	3306: "mysqld", 5432: "postgres",
}

// collectNetwork parses `netstat -an` output for the IPv4/IPv6 union, then
// resolves per-PID ownership using the socket-FD-holder heuristic: scan
// /proc/*/fd marking processes that hold any socket FD, then for each
// well-known port match against expectedProcessByPort.
func collectNetwork(ctx context.Context) ([]fingerprint.Listener, []fingerprint.Connection, error) {
	res, err := execsafe.Run(ctx, "netstat", "-an")
	if err != nil {
		return nil, nil, err
	}

	candidates := socketHoldingPIDs()

	var listeners []fingerprint.Listener
	var conns []fingerprint.Connection

	for _, line := range strings.Split(res.Stdout, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 6 {
			continue
		}
		proto := fields[0]
		if !strings.HasPrefix(proto, "tcp") && !strings.HasPrefix(proto, "udp") {
			continue
		}
		localAddr, localPort, ok := splitHostPort(fields[3])
		if !ok {
			continue
		}
		state := "LISTEN"
		if len(fields) >= 6 {
			state = strings.ToUpper(fields[5])
		}

		pid, name := 0, ""
		if expected, ok := expectedProcessByPort[localPort]; ok {
			for _, c := range candidates {
				if c.name == expected {
					pid, name = c.pid, c.name
					break
				}
			}
		}

		if state == "LISTEN" {
			listeners = append(listeners, fingerprint.Listener{
				Protocol:    proto,
				LocalAddr:   localAddr,
				LocalPort:   localPort,
				State:       state,
				PID:         pid,
				ProcessName: name,
				Uncommon:    IsUncommonPort(localPort),
			})
		} else if state == "ESTABLISHED" {
			remoteAddr, _, _ := splitHostPort(fields[4])
			conns = append(conns, fingerprint.Connection{
				Protocol:    proto,
				LocalAddr:   localAddr,
				RemoteAddr:  remoteAddr,
				State:       state,
				PID:         pid,
				ProcessName: name,
			})
		}
	}
	return listeners, conns, nil
}

func splitHostPort(s string) (string, int, bool) {
	idx := strings.LastIndex(s, ".")
	if idx < 0 {
		return "", 0, false
	}
	host, portStr := s[:idx], s[idx+1:]
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return "", 0, false
	}
	return host, port, true
}

type socketHolder struct {
	pid  int
	name string
}

func socketHoldingPIDs() []socketHolder {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil
	}
	var out []socketHolder
	for _, e := range entries {
		pid, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		fdDir := filepath.Join("/proc", e.Name(), "fd")
		fds, err := os.ReadDir(fdDir)
		if err != nil {
			continue
		}
		hasSocket := false
		for _, fd := range fds {
			target, err := os.Readlink(filepath.Join(fdDir, fd.Name()))
			if err == nil && strings.HasPrefix(target, "socket:[") {
				hasSocket = true
				break
			}
		}
		if hasSocket {
			out = append(out, socketHolder{pid: pid, name: processNameAIX(pid)})
		}
	}
	return out
}

func processNameAIX(pid int) string {
	b, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "psinfo"))
	if err != nil || len(b) < 16 {
		return ""
	}
	// psinfo's pr_fname begins at a fixed offset in the struct; this reader
	// extracts it defensively rather than binding the full struct layout.
	return strings.TrimRight(string(b[:16]), "\x00")
}
