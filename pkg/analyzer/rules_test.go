package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/librepower/csentinel/pkg/audit"
)

func TestApplyAnomalyRulesTriggersOnDeviation(t *testing.T) {
	s := audit.AuditSummary{
		Authentication: audit.Authentication{DeviationPct: 150},
	}
	anomalies := applyAnomalyRules(s, time.Now())
	assert.Len(t, anomalies, 1)
	assert.Equal(t, "auth_failure_spike", anomalies[0].Type)
	assert.Equal(t, "HIGH", anomalies[0].SeverityStr)
}

func TestApplyAnomalyRulesNoneBelowThreshold(t *testing.T) {
	s := audit.AuditSummary{
		Authentication:      audit.Authentication{DeviationPct: 100},
		PrivilegeEscalation: audit.PrivilegeEscalation{SudoDeviationPct: 200},
	}
	assert.Empty(t, applyAnomalyRules(s, time.Now()))
}

func TestApplyAnomalyRulesDevShmIsCritical(t *testing.T) {
	s := audit.AuditSummary{ProcessActivity: audit.ProcessActivity{DevShmExecutions: 1}}
	anomalies := applyAnomalyRules(s, time.Now())
	assert.Len(t, anomalies, 1)
	assert.Equal(t, "CRITICAL", anomalies[0].SeverityStr)
}

func TestApplyAnomalyRulesBoundedAtMax(t *testing.T) {
	s := audit.AuditSummary{
		Authentication:      audit.Authentication{DeviationPct: 150},
		PrivilegeEscalation: audit.PrivilegeEscalation{SudoDeviationPct: 250},
		ProcessActivity:     audit.ProcessActivity{TmpExecutions: 1, DevShmExecutions: 1},
	}
	anomalies := applyAnomalyRules(s, time.Now())
	assert.LessOrEqual(t, len(anomalies), audit.MaxAnomalies)
}
