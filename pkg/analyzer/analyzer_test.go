package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/librepower/csentinel/pkg/audit"
	"github.com/librepower/csentinel/pkg/baseline"
)

func TestAnalyzeWarmUpSuppressesAnomalies(t *testing.T) {
	summary := audit.AuditSummary{
		Authentication: audit.Authentication{Failures: 1000},
	}
	bl := baseline.AuditBaseline{SampleCount: WarmUpSampleCount - 1, AvgAuthFailures: 1}

	got := Analyze(summary, bl, time.Now())
	assert.Empty(t, got.Anomalies)
	assert.Equal(t, "low", got.Learning.Confidence)
}

func TestAnalyzeEmitsAnomaliesAfterWarmUp(t *testing.T) {
	summary := audit.AuditSummary{
		Authentication: audit.Authentication{Failures: 100},
	}
	bl := baseline.AuditBaseline{SampleCount: WarmUpSampleCount, AvgAuthFailures: 1}

	got := Analyze(summary, bl, time.Now())
	assert.NotEmpty(t, got.Anomalies)
	assert.Greater(t, got.RiskScore, 0)
}

func TestRiskLevelThresholds(t *testing.T) {
	assert.Equal(t, "low", riskLevel(5))
	assert.Equal(t, "medium", riskLevel(6))
	assert.Equal(t, "medium", riskLevel(15))
	assert.Equal(t, "high", riskLevel(16))
	assert.Equal(t, "high", riskLevel(30))
	assert.Equal(t, "critical", riskLevel(31))
}

func TestComputeRiskFactorsSumsToScore(t *testing.T) {
	summary := audit.AuditSummary{
		Authentication:      audit.Authentication{Failures: 2, DeviationPct: 0, BruteForceDetected: true},
		PrivilegeEscalation: audit.PrivilegeEscalation{SuCount: 1},
		ProcessActivity:     audit.ProcessActivity{TmpExecutions: 1},
	}
	factors, score := computeRiskFactors(summary)
	assert.NotEmpty(t, factors)

	sum := 0
	for _, f := range factors {
		sum += f.Weight
	}
	assert.Equal(t, sum, score)
}

func TestComputeRiskFactorsBoundedAtMax(t *testing.T) {
	summary := audit.AuditSummary{
		Authentication:      audit.Authentication{Failures: 1, BruteForceDetected: true},
		PrivilegeEscalation: audit.PrivilegeEscalation{SudoDeviationPct: 300, SuCount: 1},
		FileIntegrity:       audit.FileIntegrity{PermissionChanges: 1, OwnershipChanges: 1},
		ProcessActivity:     audit.ProcessActivity{TmpExecutions: 1, DevShmExecutions: 1, SuspiciousExecCount: 1},
		SecurityFramework:   audit.SecurityFramework{SELinuxAVCDenials: 1, AppArmorDenials: 1},
	}
	factors, _ := computeRiskFactors(summary)
	assert.LessOrEqual(t, len(factors), audit.MaxRiskFactors)
}
