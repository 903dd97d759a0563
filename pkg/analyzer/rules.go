package analyzer

import (
	"time"

	"github.com/librepower/csentinel/pkg/audit"
)

// applyAnomalyRules emits one anomaly per triggered rule, bounded at
// audit.MaxAnomalies.
func applyAnomalyRules(s audit.AuditSummary, now time.Time) []audit.Anomaly {
	var anomalies []audit.Anomaly
	add := func(a audit.Anomaly) {
		if len(anomalies) >= audit.MaxAnomalies {
			return
		}
		a.SeverityStr = a.Severity.String()
		a.Timestamp = now.Unix()
		anomalies = append(anomalies, a)
	}

	if s.Authentication.DeviationPct > 100 {
		add(audit.Anomaly{
			Type:         "auth_failure_spike",
			Description:  "authentication failure rate exceeds baseline",
			Severity:     audit.SevHigh,
			Current:      float64(s.Authentication.Failures),
			Baseline:     s.Authentication.BaselineAvg,
			DeviationPct: s.Authentication.DeviationPct,
		})
	}

	if s.PrivilegeEscalation.SudoDeviationPct > 200 {
		add(audit.Anomaly{
			Type:         "sudo_spike",
			Description:  "sudo invocation rate exceeds baseline",
			Severity:     audit.SevMedium,
			Current:      float64(s.PrivilegeEscalation.SudoCount),
			Baseline:     s.PrivilegeEscalation.SudoBaselineAvg,
			DeviationPct: s.PrivilegeEscalation.SudoDeviationPct,
		})
	}

	if s.ProcessActivity.TmpExecutions > 0 {
		add(audit.Anomaly{
			Type:        "tmp_execution",
			Description: "execution from /tmp observed",
			Severity:    audit.SevHigh,
			Current:     float64(s.ProcessActivity.TmpExecutions),
		})
	}

	if s.ProcessActivity.DevShmExecutions > 0 {
		add(audit.Anomaly{
			Type:        "devshm_execution",
			Description: "execution from /dev/shm observed",
			Severity:    audit.SevCritical,
			Current:     float64(s.ProcessActivity.DevShmExecutions),
		})
	}

	return anomalies
}
