package lpsof

import (
	"bufio"
	"io"
	"os/user"
	"strconv"
	"strings"
)

// snapshotLine is one pipe-separated record as written by WriteSnapshot and
// parsed by ReadSnapshot, grounded on original_source/lpsof's flat
// save-file format.
type snapshotLine struct {
	PID     int
	Command string
	User    string
	FD      string
	Path    string
	Device  uint64
	Inode   uint64
}

// key identifies the same logical descriptor across two snapshots for
// Delta's diffing, from PID, FD label and name. Size and offset are not
// part of a snapshot line; for INET sockets the name includes the TCP
// state, so a state change shows as one descriptor closed and one opened.
func (s snapshotLine) key() string {
	return strconv.Itoa(s.PID) + "|" + s.FD + "|" + s.Path
}

// sanitizeField replaces '|' and newline bytes in a source field with '_',
// per spec.md 6's snapshot format: lossy, but keeps the pipe-separated line
// format unambiguous for downstream parsers.
func sanitizeField(s string) string {
	s = strings.ReplaceAll(s, "|", "_")
	s = strings.ReplaceAll(s, "\n", "_")
	return s
}

// usernameForUID resolves uid to a username, falling back to the numeric
// uid (as lpsof itself does) when no passwd entry exists.
func usernameForUID(uid int) string {
	u, err := user.LookupId(strconv.Itoa(uid))
	if err != nil {
		return strconv.Itoa(uid)
	}
	return u.Username
}

// WriteSnapshot renders procs as pipe-separated lines to w, one line per
// open descriptor, skipping special (cwd/rtd) entries that carry no
// meaningful identity across process restarts.
func WriteSnapshot(w io.Writer, procs []*ProcessRecord) error {
	bw := bufio.NewWriter(w)
	for _, p := range procs {
		for _, fd := range p.FDs {
			if fd.Special != "" {
				continue
			}
			fields := []string{
				strconv.Itoa(p.PID),
				sanitizeField(p.Command),
				sanitizeField(usernameForUID(p.UID)),
				sanitizeField(fdLabel(fd)),
				sanitizeField(nameLabel(fd)),
				strconv.FormatUint(fd.Device, 10),
				strconv.FormatUint(fd.Inode, 10),
			}
			if _, err := bw.WriteString(strings.Join(fields, "|")); err != nil {
				return err
			}
			if _, err := bw.WriteString("\n"); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// ReadSnapshot parses a pipe-separated snapshot file written by
// WriteSnapshot, skipping blank lines and lines starting with '#'.
func ReadSnapshot(r io.Reader) ([]snapshotLine, error) {
	var out []snapshotLine
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) != 7 {
			continue
		}
		pid, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		device, _ := strconv.ParseUint(parts[5], 10, 64)
		inode, _ := strconv.ParseUint(parts[6], 10, 64)
		out = append(out, snapshotLine{
			PID:     pid,
			Command: parts[1],
			User:    parts[2],
			FD:      parts[3],
			Path:    parts[4],
			Device:  device,
			Inode:   inode,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// snapshotFromProcs converts live process records directly into
// snapshotLine form, used by WatchDelta to compare consecutive polls
// without rendering them to text. Unlike WriteSnapshot, it does not
// sanitize '|' or newline bytes in fields.
func snapshotFromProcs(procs []*ProcessRecord) []snapshotLine {
	var out []snapshotLine
	for _, p := range procs {
		for _, fd := range p.FDs {
			if fd.Special != "" {
				continue
			}
			out = append(out, snapshotLine{
				PID:     p.PID,
				Command: p.Command,
				User:    usernameForUID(p.UID),
				FD:      fdLabel(fd),
				Path:    nameLabel(fd),
				Device:  fd.Device,
				Inode:   fd.Inode,
			})
		}
	}
	return out
}
