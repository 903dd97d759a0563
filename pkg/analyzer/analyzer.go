// Package analyzer applies deviation rules against a baseline, classifies
// anomalies, and computes a weighted risk score with per-factor
// attribution. Analyze is a pure function: it never touches the baseline
// store or any OS surface itself.
package analyzer

import (
	"time"

	"github.com/librepower/csentinel/pkg/audit"
	"github.com/librepower/csentinel/pkg/baseline"
)

// WarmUpSampleCount is the minimum baseline sample count required before any
// anomaly is emitted (spec.md 3's warm-up invariant).
const WarmUpSampleCount = 5

// Analyze annotates summary's deviation fields against bl, emits anomalies
// for each triggered rule (unless bl is still warming up), and computes the
// weighted risk score and level. It returns the annotated summary; the
// caller is expected to persist bl separately via baseline.Store.
func Analyze(summary audit.AuditSummary, bl baseline.AuditBaseline, now time.Time) audit.AuditSummary {
	summary.Authentication.BaselineAvg = float64(bl.AvgAuthFailures)
	summary.Authentication.DeviationPct = baseline.Deviation(float64(summary.Authentication.Failures), float64(bl.AvgAuthFailures))

	summary.PrivilegeEscalation.SudoBaselineAvg = float64(bl.AvgSudoCount)
	summary.PrivilegeEscalation.SudoDeviationPct = baseline.Deviation(float64(summary.PrivilegeEscalation.SudoCount), float64(bl.AvgSudoCount))

	summary.Learning = audit.Learning{
		SampleCount: bl.SampleCount,
		Confidence:  audit.Confidence(bl.SampleCount),
	}

	if bl.SampleCount >= WarmUpSampleCount {
		summary.Anomalies = applyAnomalyRules(summary, now)
	} else {
		summary.Anomalies = nil
	}

	summary.RiskFactors, summary.RiskScore = computeRiskFactors(summary)
	summary.RiskLevel = riskLevel(summary.RiskScore)

	return summary
}

func riskLevel(score int) string {
	switch {
	case score >= 31:
		return "critical"
	case score >= 16:
		return "high"
	case score >= 6:
		return "medium"
	default:
		return "low"
	}
}
