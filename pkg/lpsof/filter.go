package lpsof

import (
	"bufio"
	"encoding/hex"
	"os"
	"strconv"
	"strings"
)

// FDFilter selects which descriptors EnumerateFDs admits, per spec.md 4.8's
// descriptor-level filter stage. All populated criteria must pass (AND
// logic); an empty filter passes everything.
type FDFilter struct {
	NetworkOnly   bool
	UnixOnly      bool
	PathSubstring string
	DirOnly       bool // +d: directory-type descriptors only; no path is compared
	DirRecursive  bool // +D: same test as +d; no directory subtree is matched
	MinLinkCount  int
	Types         []FDType
	States        []TCPState
}

// AdmitsSpecial reports whether this filter's criteria allow the synthetic
// cwd/rtd entries to be considered at all (they carry no FD number, so a
// filter scoped to FD types that can never apply to them excludes them).
func (f FDFilter) AdmitsSpecial() bool {
	if len(f.Types) == 0 {
		return true
	}
	for _, t := range f.Types {
		if t == TypeDirectory {
			return true
		}
	}
	return false
}

// Match reports whether rec passes every populated criterion in f.
func (f FDFilter) Match(rec FDRecord) bool {
	if f.NetworkOnly && rec.Type != TypeInet && rec.Type != TypeInet6 {
		return false
	}
	if f.UnixOnly && rec.Type != TypeUnix {
		return false
	}
	if f.PathSubstring != "" && !strings.Contains(rec.Path, f.PathSubstring) {
		return false
	}
	if (f.DirOnly || f.DirRecursive) && rec.Type != TypeDirectory {
		return false
	}
	if f.MinLinkCount > 0 && rec.LinkCount < f.MinLinkCount {
		return false
	}
	if len(f.Types) > 0 && !containsType(f.Types, rec.Type) {
		return false
	}
	if len(f.States) > 0 {
		if rec.Type != TypeInet && rec.Type != TypeInet6 {
			return false
		}
		if !containsState(f.States, rec.State) {
			return false
		}
	}
	return true
}

func containsType(ts []FDType, t FDType) bool {
	for _, x := range ts {
		if x == t {
			return true
		}
	}
	return false
}

func containsState(ss []TCPState, s TCPState) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

// scanProcNetForInode scans one /proc/net/{tcp,tcp6,udp,udp6} table for the
// row owning inode, decoding its hex-encoded local/remote endpoints. The
// decoding parallels pkg/probes/network_linux.go's decodeHexEndpoint but is
// reimplemented here (rather than imported) to keep pkg/lpsof free of a
// pkg/probes dependency; unlike that version, it also decodes IPv6 rows.
func scanProcNetForInode(path, proto, family string, inode uint64) (socketInfo, bool) {
	f, err := os.Open(path)
	if err != nil {
		return socketInfo{}, false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	first := true
	for scanner.Scan() {
		if first {
			first = false
			continue // header line
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 10 {
			continue
		}
		rowInode, err := strconv.ParseUint(fields[9], 10, 64)
		if err != nil || rowInode != inode {
			continue
		}

		localAddr, localPort, lok := decodeHexEndpoint(fields[1])
		remoteAddr, remotePort, rok := decodeHexEndpoint(fields[2])
		if !lok || !rok {
			continue
		}

		stCode, _ := strconv.ParseUint(fields[3], 16, 8)
		info := socketInfo{
			protocol:   proto,
			family:     family,
			localAddr:  localAddr,
			localPort:  localPort,
			remoteAddr: remoteAddr,
			remotePort: remotePort,
		}
		if proto == "tcp" {
			info.state = tcpStateFromCode(int(stCode))
		}
		return info, true
	}
	return socketInfo{}, false
}

// decodeHexEndpoint decodes a /proc/net/tcp-style "ADDR:PORT" hex field
// (little-endian IPv4, or 16-byte IPv6) into an address and a decimal port.
// IPv4 is rendered dotted; IPv6 is rendered as 32 hex digits with each
// 4-byte group byte-swapped, without colons.
func decodeHexEndpoint(field string) (string, int, bool) {
	parts := strings.SplitN(field, ":", 2)
	if len(parts) != 2 {
		return "", 0, false
	}
	addrHex, portHex := parts[0], parts[1]

	port64, err := strconv.ParseUint(portHex, 16, 32)
	if err != nil {
		return "", 0, false
	}

	raw, err := hex.DecodeString(addrHex)
	if err != nil || (len(raw) != 4 && len(raw) != 16) {
		return "", 0, false
	}

	if len(raw) == 4 {
		return ipv4FromLE(raw), int(port64), true
	}
	return ipv6FromLE(raw), int(port64), true
}

// scanUnixNetForInode scans /proc/net/unix for the row owning inode,
// returning its bound path (if any) as a socketInfo of family "unix".
func scanUnixNetForInode(inode uint64) (socketInfo, bool) {
	f, err := os.Open("/proc/net/unix")
	if err != nil {
		return socketInfo{}, false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	first := true
	for scanner.Scan() {
		if first {
			first = false
			continue // header line
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 7 {
			continue
		}
		rowInode, err := strconv.ParseUint(fields[6], 10, 64)
		if err != nil || rowInode != inode {
			continue
		}
		path := ""
		if len(fields) >= 8 {
			path = fields[7]
		}
		return socketInfo{protocol: "unix", family: "unix", path: path}, true
	}
	return socketInfo{}, false
}

func ipv4FromLE(b []byte) string {
	return strconv.Itoa(int(b[3])) + "." + strconv.Itoa(int(b[2])) + "." +
		strconv.Itoa(int(b[1])) + "." + strconv.Itoa(int(b[0]))
}

func ipv6FromLE(b []byte) string {
	// Each 4-byte little-endian group is byte-swapped before hex rendering.
	out := make([]byte, 0, 16)
	for i := 0; i < 16; i += 4 {
		out = append(out, b[i+3], b[i+2], b[i+1], b[i])
	}
	return hex.EncodeToString(out)
}

func tcpStateFromCode(code int) TCPState {
	switch code {
	case 0x01:
		return TCPEstablished
	case 0x02:
		return TCPSynSent
	case 0x03:
		return TCPSynRecv
	case 0x04:
		return TCPFinWait1
	case 0x05:
		return TCPFinWait2
	case 0x06:
		return TCPTimeWait
	case 0x07:
		return TCPClose
	case 0x08:
		return TCPCloseWait
	case 0x09:
		return TCPLastAck
	case 0x0A:
		return TCPListen
	case 0x0B:
		return TCPClosing
	default:
		return TCPUnknown
	}
}
