package lpsof

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// describeFD classifies one /proc/PID/fd entry: readlink the link first; a
// "socket:[N]" or "pipe:[N]" target is decoded directly; any other target
// is stat'ed through the link to read its type, size, device, inode and
// link count. The link itself is never lstat'ed.
func describeFD(pid, fd int, linkPath string) (FDRecord, error) {
	target, err := os.Readlink(linkPath)
	if err != nil {
		return FDRecord{}, err
	}

	rec := FDRecord{Number: fd}

	if strings.HasPrefix(target, "socket:[") {
		return decodeSocketFD(pid, fd, target, rec)
	}
	if strings.HasPrefix(target, "pipe:[") {
		rec.Type = TypeFIFO
		return rec, nil
	}

	st, err := os.Stat(linkPath)
	if err != nil {
		// The target may have vanished between readlink and stat; report
		// what we know rather than dropping the descriptor.
		rec.Type = TypeUnknown
		rec.Path = target
		return rec, nil
	}
	rec.Path = target
	rec.Size = st.Size()

	sysStat, ok := st.Sys().(*unix.Stat_t)
	if ok {
		rec.Device = uint64(sysStat.Dev)
		rec.Inode = sysStat.Ino
		rec.LinkCount = int(sysStat.Nlink)
	}

	switch {
	case st.Mode().IsDir():
		rec.Type = TypeDirectory
	case st.Mode()&os.ModeCharDevice != 0:
		rec.Type = TypeChar
	case st.Mode()&os.ModeDevice != 0:
		rec.Type = TypeBlock
	case st.Mode()&os.ModeSymlink != 0:
		rec.Type = TypeLink
	case st.Mode().IsRegular():
		rec.Type = TypeRegular
	default:
		rec.Type = TypeUnknown
	}

	rec.Mode = accessModeFromFlags(readFDFlags(linkPath))
	return rec, nil
}

// decodeSocketFD parses the socket:[inode] target, then resolves its
// address family and local/remote endpoints from /proc/net, the way
// the original collector correlates inode -> connection info.
func decodeSocketFD(pid, fd int, target string, rec FDRecord) (FDRecord, error) {
	var inode uint64
	if _, err := fmt.Sscanf(target, "socket:[%d]", &inode); err != nil {
		rec.Type = TypeUnknown
		return rec, nil
	}
	rec.Inode = inode
	rec.Type = TypeSocket

	if info, ok := lookupSocketByInode(inode); ok {
		rec = applySocketInfo(rec, info)
	}
	return rec, nil
}

// socketInfo is the decoded form of a socket path string of the forms
// "TCP[6]:local->remote", "UDP[6]:local", or "unix:path", per spec.md 4.8's
// socket-decoding stage.
type socketInfo struct {
	protocol   string
	family     string
	localAddr  string
	localPort  int
	remoteAddr string
	remotePort int
	state      TCPState
	path       string
}

// applySocketInfo maps a decoded socketInfo onto rec, choosing TypeInet,
// TypeInet6, or TypeUnix.
func applySocketInfo(rec FDRecord, info socketInfo) FDRecord {
	switch info.family {
	case "unix":
		rec.Type = TypeUnix
		rec.Path = info.path
		return rec
	case "inet6":
		rec.Type = TypeInet6
	default:
		rec.Type = TypeInet
	}
	rec.Protocol = info.protocol
	rec.LocalAddr = info.localAddr
	rec.LocalPort = info.localPort
	rec.RemoteAddr = info.remoteAddr
	rec.RemotePort = info.remotePort
	rec.State = info.state
	return rec
}

func accessModeFromFlags(flags int) AccessMode {
	switch flags & unix.O_ACCMODE {
	case unix.O_RDONLY:
		return AccessMode{Read: true}
	case unix.O_WRONLY:
		return AccessMode{Write: true}
	case unix.O_RDWR:
		return AccessMode{Read: true, Write: true}
	default:
		return AccessMode{Unknown: true}
	}
}

// readFDFlags reads the file-status flags for linkPath from
// /proc/PID/fdinfo, returning -1 when unavailable, which
// accessModeFromFlags maps to an unknown access mode.
func readFDFlags(linkPath string) int {
	fdinfoPath := strings.Replace(linkPath, "/fd/", "/fdinfo/", 1)
	data, err := os.ReadFile(fdinfoPath)
	if err != nil {
		return -1
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "flags:") {
			fields := strings.Fields(line)
			if len(fields) != 2 {
				continue
			}
			v, err := strconv.ParseInt(fields[1], 8, 64)
			if err != nil {
				continue
			}
			return int(v)
		}
	}
	return -1
}

// lookupSocketByInode resolves a socket inode to decoded endpoint
// information. This package keeps its own minimal resolver (rather than
// importing pkg/probes) to avoid a cross-package dependency cycle; it reads
// /proc/net/{tcp,tcp6,udp,udp6} and then /proc/net/unix directly.
func lookupSocketByInode(inode uint64) (socketInfo, bool) {
	for _, f := range []struct {
		path, proto, family string
	}{
		{"/proc/net/tcp", "tcp", "inet"},
		{"/proc/net/tcp6", "tcp", "inet6"},
		{"/proc/net/udp", "udp", "inet"},
		{"/proc/net/udp6", "udp", "inet6"},
	} {
		if info, ok := scanProcNetForInode(f.path, f.proto, f.family, inode); ok {
			return info, true
		}
	}
	if info, ok := scanUnixNetForInode(inode); ok {
		return info, true
	}
	return socketInfo{}, false
}
