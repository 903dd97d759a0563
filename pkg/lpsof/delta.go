package lpsof

import (
	"bytes"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/librepower/csentinel/internal/xerrors"
)

// MaxSnapshotFileSize rejects save files larger than this, per spec.md
// 4.8's input-validation bound on untrusted on-disk state.
const MaxSnapshotFileSize = 10 * 1024 * 1024

// DeltaKind classifies one changed descriptor between two snapshots.
type DeltaKind int

const (
	DeltaOpened DeltaKind = iota
	DeltaClosed
)

// DeltaEntry is one added or removed descriptor found by Delta.
type DeltaEntry struct {
	Kind DeltaKind
	Line snapshotLine
}

// Delta compares prev against current using a single hash-table pass over
// each side (O(N) amortised, replacing the source program's nested-loop
// comparison per spec.md 9's redesign flag), keyed on PID+FD+path.
func Delta(prev, current []snapshotLine) []DeltaEntry {
	prevByKey := make(map[string]snapshotLine, len(prev))
	for _, l := range prev {
		prevByKey[l.key()] = l
	}
	curByKey := make(map[string]snapshotLine, len(current))
	for _, l := range current {
		curByKey[l.key()] = l
	}

	var out []DeltaEntry
	for k, l := range curByKey {
		if _, ok := prevByKey[k]; !ok {
			out = append(out, DeltaEntry{Kind: DeltaOpened, Line: l})
		}
	}
	for k, l := range prevByKey {
		if _, ok := curByKey[k]; !ok {
			out = append(out, DeltaEntry{Kind: DeltaClosed, Line: l})
		}
	}
	return out
}

// LoadSnapshotFile reads and parses a previously-saved snapshot file,
// rejecting files over MaxSnapshotFileSize outright.
func LoadSnapshotFile(path string) ([]snapshotLine, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, xerrors.Wrap(err, xerrors.ProbeFailure, "lpsof.LoadSnapshotFile")
	}
	if info.Size() > MaxSnapshotFileSize {
		return nil, xerrors.New(xerrors.InputRejected, "lpsof.LoadSnapshotFile",
			"snapshot file exceeds maximum accepted size")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.Wrap(err, xerrors.ProbeFailure, "lpsof.LoadSnapshotFile")
	}
	defer f.Close()

	if err := flockShared(f); err == nil {
		defer unix.Flock(int(f.Fd()), unix.LOCK_UN)
	}

	return ReadSnapshot(f)
}

// SaveSnapshotFile atomically writes procs to path: render to a temp file
// in the same directory, fsync, then rename over the destination, so a
// reader never observes a partially-written snapshot.
func SaveSnapshotFile(path string, procs []*ProcessRecord) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".lpsof-snapshot-*")
	if err != nil {
		return xerrors.Wrap(err, xerrors.TransportFailure, "lpsof.SaveSnapshotFile")
	}
	tmpPath := tmp.Name()
	cleanupTmp := true
	defer func() {
		if cleanupTmp {
			os.Remove(tmpPath)
		}
	}()

	if err := flockExclusive(tmp); err == nil {
		defer unix.Flock(int(tmp.Fd()), unix.LOCK_UN)
	}

	var buf bytes.Buffer
	if err := WriteSnapshot(&buf, procs); err != nil {
		tmp.Close()
		return xerrors.Wrap(err, xerrors.TransportFailure, "lpsof.SaveSnapshotFile")
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return xerrors.Wrap(err, xerrors.TransportFailure, "lpsof.SaveSnapshotFile")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return xerrors.Wrap(err, xerrors.TransportFailure, "lpsof.SaveSnapshotFile")
	}
	if err := tmp.Close(); err != nil {
		return xerrors.Wrap(err, xerrors.TransportFailure, "lpsof.SaveSnapshotFile")
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return xerrors.Wrap(err, xerrors.TransportFailure, "lpsof.SaveSnapshotFile")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return xerrors.Wrap(err, xerrors.TransportFailure, "lpsof.SaveSnapshotFile")
	}
	cleanupTmp = false
	return nil
}

// flockExclusive and flockShared take advisory locks so concurrent lpsof
// invocations (a watch loop and a one-shot diff) don't interleave writes
// or read a half-written file; failure to lock is non-fatal on filesystems
// that don't support flock (best-effort per spec.md 4.8).
func flockExclusive(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_EX)
}

func flockShared(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_SH)
}
