package probes

import (
	"context"
	"time"

	gopsprocess "github.com/shirou/gopsutil/v3/process"

	"github.com/librepower/csentinel/pkg/fingerprint"
)

// Process enumerates every process visible to the caller and returns one
// record per process. Per-process failures (a process exiting mid-scan,
// permission denial) are skipped rather than aborting the whole probe;
// "high-FD" and "long-running" classification is left to the analyzer, this
// probe only supplies raw counts and ages.
func Process(ctx context.Context) ([]fingerprint.Process, error) {
	pids, err := gopsprocess.PidsWithContext(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	out := make([]fingerprint.Process, 0, len(pids))
	for _, pid := range pids {
		p, err := gopsprocess.NewProcessWithContext(ctx, pid)
		if err != nil {
			continue
		}
		rec := fingerprint.Process{PID: int(pid)}

		if ppid, err := p.PpidWithContext(ctx); err == nil {
			rec.PPID = int(ppid)
		}
		if pgid, err := pgidOf(pid); err == nil {
			rec.PGID = pgid
		}
		if uids, err := p.UidsWithContext(ctx); err == nil && len(uids) > 0 {
			rec.UID = int(uids[0])
		}
		if name, err := p.NameWithContext(ctx); err == nil {
			rec.Command = truncate(name, 32)
		}
		if status, err := p.StatusWithContext(ctx); err == nil && len(status) > 0 {
			rec.State = status[0]
		}
		if fds, err := p.NumFDsWithContext(ctx); err == nil {
			rec.FDCount = int(fds)
		}
		if createdMs, err := p.CreateTimeWithContext(ctx); err == nil {
			started := time.UnixMilli(createdMs)
			if age := now.Sub(started); age > 0 {
				rec.AgeSeconds = int64(age.Seconds())
			}
		}

		out = append(out, rec)
	}
	return out, nil
}

// truncate bounds s to at most n bytes, matching the command-field bound in
// spec.md 3's invariants.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
