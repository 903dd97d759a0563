// Package lpsof enumerates processes and their open file descriptors,
// classifies, filters, renders, and snapshot/diffs them, grounded on
// original_source/lpsof/src/lpsof.c.
package lpsof

// FDType is a tagged variant replacing the source program's stringly-typed
// fd_type_t character array, per spec.md 9's tagged-variant redesign flag.
type FDType int

const (
	TypeUnknown FDType = iota
	TypeRegular
	TypeDirectory
	TypeChar
	TypeBlock
	TypeFIFO
	TypeSocket
	TypeLink
	TypeInet
	TypeInet6
	TypeUnix
)

func (t FDType) String() string {
	switch t {
	case TypeRegular:
		return "REG"
	case TypeDirectory:
		return "DIR"
	case TypeChar:
		return "CHR"
	case TypeBlock:
		return "BLK"
	case TypeFIFO:
		return "FIFO"
	case TypeSocket:
		return "SOCK"
	case TypeLink:
		return "LINK"
	case TypeInet:
		return "INET"
	case TypeInet6:
		return "INET6"
	case TypeUnix:
		return "UNIX"
	default:
		return "UNKNOWN"
	}
}

// SpecialFD names a synthetic, non-numeric file-descriptor slot.
type SpecialFD string

const (
	FDNumber SpecialFD = "" // sentinel: when non-empty, FD.Number is ignored
	FDCwd    SpecialFD = "cwd"
	FDRtd    SpecialFD = "rtd"
	FDTxt    SpecialFD = "txt"
	FDMem    SpecialFD = "mem"
	FDDel    SpecialFD = "DEL"
	FDCtty   SpecialFD = "ctty"
)

// AccessMode is the r/w/u triple recorded for a descriptor.
type AccessMode struct {
	Read, Write, Unknown bool
}

// TCPState is a tagged variant for socket connection state, never compared
// by string after parsing.
type TCPState int

const (
	TCPUnknown TCPState = iota
	TCPListen
	TCPEstablished
	TCPSynSent
	TCPSynRecv
	TCPFinWait1
	TCPFinWait2
	TCPTimeWait
	TCPClose
	TCPCloseWait
	TCPLastAck
	TCPClosing
)

func (s TCPState) String() string {
	switch s {
	case TCPListen:
		return "LISTEN"
	case TCPEstablished:
		return "ESTABLISHED"
	case TCPSynSent:
		return "SYN_SENT"
	case TCPSynRecv:
		return "SYN_RECV"
	case TCPFinWait1:
		return "FIN_WAIT1"
	case TCPFinWait2:
		return "FIN_WAIT2"
	case TCPTimeWait:
		return "TIME_WAIT"
	case TCPClose:
		return "CLOSE"
	case TCPCloseWait:
		return "CLOSE_WAIT"
	case TCPLastAck:
		return "LAST_ACK"
	case TCPClosing:
		return "CLOSING"
	default:
		return "UNKNOWN"
	}
}

// FDRecord is one open-file-descriptor record.
type FDRecord struct {
	Number     int
	Special    SpecialFD
	Type       FDType
	Mode       AccessMode
	Device     uint64
	Inode      uint64
	Size       int64
	Offset     int64
	LinkCount  int

	// Socket-only fields.
	Protocol    string
	Family      string
	LocalAddr   string
	LocalPort   int
	RemoteAddr  string
	RemotePort  int
	State       TCPState
	Path        string // unix socket / regular file path
}

// HasPort reports whether the record is of a type that carries port fields
// (INET or INET6). The port values themselves are not range-checked here.
func (f FDRecord) HasPort() bool {
	return f.Type == TypeInet || f.Type == TypeInet6
}

// MaxFDsPerProcess is the hard cap on FD array growth per process.
const MaxFDsPerProcess = 1024

// InitialFDCapacity is the initial geometric-growth size for a process's FD
// slice.
const InitialFDCapacity = 32

// ProcessRecord owns one process's command metadata and FD sequence
// exclusively; growing FDs reallocates the slice in place (spec.md 3's
// ownership invariant).
type ProcessRecord struct {
	PID     int
	UID     int
	PGID    int
	Command string
	FDs     []FDRecord
}
