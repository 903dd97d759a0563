package baseline

import "time"

// Significance bands a deviation percentage into a severity label.
type Significance int

const (
	Normal Significance = iota
	Low
	Medium
	High
	Critical
)

func (s Significance) String() string {
	switch s {
	case Normal:
		return "NORMAL"
	case Low:
		return "LOW"
	case Medium:
		return "MEDIUM"
	case High:
		return "HIGH"
	case Critical:
		return "CRITICAL"
	default:
		return "NORMAL"
	}
}

// Deviation computes the percentage deviation of current from avg. When avg
// is at or above 0.1 it is the usual relative change; below that it is
// defined as 100 when current is positive (avoiding division blow-up near
// zero) and 0 otherwise.
func Deviation(current, avg float64) float64 {
	if avg >= 0.1 {
		return ((current - avg) / avg) * 100
	}
	if current > 0 {
		return 100
	}
	return 0
}

// Band classifies a deviation percentage into its significance band.
func Band(deviationPct float64) Significance {
	switch {
	case deviationPct > 500:
		return Critical
	case deviationPct > 200:
		return High
	case deviationPct > 100:
		return Medium
	case deviationPct > 50:
		return Low
	default:
		return Normal
	}
}

// updateEMA applies the EMA rule to one metric: seed on the first sample,
// otherwise blend with Alpha.
func updateEMA(avg, current float32, seeded bool) float32 {
	if !seeded {
		return current
	}
	return float32(Alpha)*current + float32(1-Alpha)*avg
}

// Update folds one observation into b, applying the EMA rule to every
// tracked metric and advancing sample_count/updated. On the very first
// sample (SampleCount == 0) each average is seeded to the current value and
// Created is stamped.
func (b *AuditBaseline) Update(now time.Time, m AuditMetrics) {
	seeded := b.SampleCount != 0
	if !seeded {
		b.Created = now
	}
	b.AvgAuthFailures = updateEMA(b.AvgAuthFailures, m.AuthFailures, seeded)
	b.AvgSudoCount = updateEMA(b.AvgSudoCount, m.SudoCount, seeded)
	b.AvgSensitiveAccess = updateEMA(b.AvgSensitiveAccess, m.SensitiveAccess, seeded)
	b.AvgTmpExecutions = updateEMA(b.AvgTmpExecutions, m.TmpExecutions, seeded)
	b.AvgShellSpawns = updateEMA(b.AvgShellSpawns, m.ShellSpawns, seeded)
	b.SampleCount++
	b.Updated = now
}
