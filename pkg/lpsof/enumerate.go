package lpsof

import (
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// ProcessFilter selects which processes EnumerateProcesses admits. Matching
// is OR-logic across populated fields by default; AndLogic flips to
// AND-logic, per spec.md 4.8's process-level filter rule.
type ProcessFilter struct {
	PIDs       []int
	UIDs       []int
	PGIDs      []int
	CommandPfx string
	AndLogic   bool
}

func (f ProcessFilter) empty() bool {
	return len(f.PIDs) == 0 && len(f.UIDs) == 0 && len(f.PGIDs) == 0 && f.CommandPfx == ""
}

func (f ProcessFilter) matches(pid, uid, pgid int, command string) bool {
	if f.empty() {
		return true
	}
	checks := []bool{}
	if len(f.PIDs) > 0 {
		checks = append(checks, containsInt(f.PIDs, pid))
	}
	if len(f.UIDs) > 0 {
		checks = append(checks, containsInt(f.UIDs, uid))
	}
	if len(f.PGIDs) > 0 {
		checks = append(checks, containsInt(f.PGIDs, pgid))
	}
	if f.CommandPfx != "" {
		checks = append(checks, strings.HasPrefix(command, f.CommandPfx))
	}
	if len(checks) == 0 {
		return true
	}
	if f.AndLogic {
		for _, c := range checks {
			if !c {
				return false
			}
		}
		return true
	}
	for _, c := range checks {
		if c {
			return true
		}
	}
	return false
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

// EnumerateProcesses iterates every visible process under /proc, returning
// one ProcessRecord per process that passes filter. Each record's FD slice
// starts empty; callers populate it via EnumerateFDs.
func EnumerateProcesses(filter ProcessFilter) ([]*ProcessRecord, error) {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, err
	}

	var procs []*ProcessRecord
	for _, e := range entries {
		pid, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		st, err := os.Stat("/proc/" + e.Name())
		if err != nil {
			continue
		}
		sysStat, ok := st.Sys().(*unix.Stat_t)
		uid := 0
		if ok {
			uid = int(sysStat.Uid)
		}
		pgid, _ := unix.Getpgid(pid)
		command := readComm(pid)

		if !filter.matches(pid, uid, pgid, command) {
			continue
		}

		procs = append(procs, &ProcessRecord{
			PID:     pid,
			UID:     uid,
			PGID:    pgid,
			Command: command,
			FDs:     make([]FDRecord, 0, InitialFDCapacity),
		})
	}
	return procs, nil
}

func readComm(pid int) string {
	b, err := os.ReadFile("/proc/" + strconv.Itoa(pid) + "/comm")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

// EnumerateFDs scans /proc/PID/fd for proc, appending one FDRecord per
// descriptor plus the special cwd/rtd entries admitted by filter. The FD
// slice grows geometrically from InitialFDCapacity to MaxFDsPerProcess,
// reallocating in place (spec.md 3's ownership invariant).
func EnumerateFDs(proc *ProcessRecord, filter FDFilter) error {
	if filter.AdmitsSpecial() {
		addSpecialFDs(proc)
		kept := proc.FDs[:0]
		for _, rec := range proc.FDs {
			if filter.Match(rec) {
				kept = append(kept, rec)
			}
		}
		proc.FDs = kept
	}

	fdDir := "/proc/" + strconv.Itoa(proc.PID) + "/fd"
	entries, err := os.ReadDir(fdDir)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if len(proc.FDs) >= MaxFDsPerProcess {
			break
		}
		num, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		rec, err := describeFD(proc.PID, num, fdDir+"/"+e.Name())
		if err != nil {
			continue
		}
		if !filter.Match(rec) {
			continue
		}
		proc.FDs = growAppend(proc.FDs, rec)
	}
	return nil
}

// growAppend appends rec to fds, growing capacity geometrically (doubling)
// rather than relying solely on append's own amortised growth, to keep the
// cap explicit per spec.md 4.8's "grow geometrically from 32 up to 1024"
// rule.
func growAppend(fds []FDRecord, rec FDRecord) []FDRecord {
	if len(fds) == cap(fds) {
		newCap := cap(fds) * 2
		if newCap == 0 {
			newCap = InitialFDCapacity
		}
		if newCap > MaxFDsPerProcess {
			newCap = MaxFDsPerProcess
		}
		grown := make([]FDRecord, len(fds), newCap)
		copy(grown, fds)
		fds = grown
	}
	return append(fds, rec)
}

func addSpecialFDs(proc *ProcessRecord) {
	base := "/proc/" + strconv.Itoa(proc.PID)
	if target, err := os.Readlink(base + "/cwd"); err == nil {
		proc.FDs = append(proc.FDs, FDRecord{Special: FDCwd, Type: TypeDirectory, Path: target})
	}
	if target, err := os.Readlink(base + "/root"); err == nil {
		proc.FDs = append(proc.FDs, FDRecord{Special: FDRtd, Type: TypeDirectory, Path: target})
	}
}
