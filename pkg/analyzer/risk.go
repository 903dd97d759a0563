package analyzer

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/librepower/csentinel/pkg/audit"
	"github.com/librepower/csentinel/pkg/baseline"
)

// authFailureMultiplier selects the per-failure weight by deviation band;
// each factor contributes once, weighted independently, with no
// cross-factor multiplier (spec.md 9's pinned rule).
func authFailureMultiplier(deviationPct float64) int {
	switch baseline.Band(deviationPct) {
	case baseline.Critical:
		return 5
	case baseline.High:
		return 3
	case baseline.Medium:
		return 2
	default:
		return 1
	}
}

// computeRiskFactors walks the weighted-sum table in spec.md 4.5's fixed
// order, producing one (reason, weight) pair per contributing source. The
// returned score is the sum of the returned factors' weights (P1).
func computeRiskFactors(s audit.AuditSummary) ([]audit.RiskFactor, int) {
	var factors []audit.RiskFactor
	add := func(reason string, weight int) {
		if weight <= 0 {
			return
		}
		if len(factors) >= audit.MaxRiskFactors {
			return
		}
		factors = append(factors, audit.RiskFactor{Reason: reason, Weight: weight})
	}

	if s.Authentication.Failures > 0 {
		mult := authFailureMultiplier(s.Authentication.DeviationPct)
		add(fmt.Sprintf("%d authentication failures", s.Authentication.Failures), s.Authentication.Failures*mult)
	}
	if s.Authentication.BruteForceDetected {
		add("Brute force attack pattern detected", 10)
	}
	if s.PrivilegeEscalation.SudoDeviationPct > 200 {
		add("sudo usage spike above baseline", 5)
	}
	if s.PrivilegeEscalation.SuCount > 0 {
		add(fmt.Sprintf("%d su invocations", s.PrivilegeEscalation.SuCount), s.PrivilegeEscalation.SuCount*2)
	}
	if s.FileIntegrity.PermissionChanges > 0 {
		add(fmt.Sprintf("%d permission changes", s.FileIntegrity.PermissionChanges), s.FileIntegrity.PermissionChanges*3)
	}
	if s.FileIntegrity.OwnershipChanges > 0 {
		add(fmt.Sprintf("%d ownership changes", s.FileIntegrity.OwnershipChanges), s.FileIntegrity.OwnershipChanges*3)
	}
	if accessCount, suspiciousCount := sensitiveAccessCounts(s); accessCount > 0 || suspiciousCount > 0 {
		add(fmt.Sprintf("%d sensitive file accesses", accessCount), accessCount*2+suspiciousCount*5)
	}
	if s.ProcessActivity.TmpExecutions > 0 {
		add(fmt.Sprintf("%d executions from /tmp", s.ProcessActivity.TmpExecutions), s.ProcessActivity.TmpExecutions*4)
	}
	if s.ProcessActivity.DevShmExecutions > 0 {
		add(fmt.Sprintf("%d executions from /dev/shm", s.ProcessActivity.DevShmExecutions), s.ProcessActivity.DevShmExecutions*6)
	}
	if s.ProcessActivity.SuspiciousExecCount > 0 {
		add(fmt.Sprintf("%d suspicious executions", s.ProcessActivity.SuspiciousExecCount), s.ProcessActivity.SuspiciousExecCount*10)
	}
	if s.SecurityFramework.SELinuxAVCDenials > 0 {
		add(fmt.Sprintf("%d SELinux AVC denials", s.SecurityFramework.SELinuxAVCDenials), s.SecurityFramework.SELinuxAVCDenials)
	}
	if s.SecurityFramework.AppArmorDenials > 0 {
		add(fmt.Sprintf("%d AppArmor denials", s.SecurityFramework.AppArmorDenials), s.SecurityFramework.AppArmorDenials)
	}

	factors = lo.Filter(factors, func(f audit.RiskFactor, _ int) bool { return f.Weight > 0 })

	score := 0
	for _, f := range factors {
		score += f.Weight
	}
	return factors, score
}

func sensitiveAccessCounts(s audit.AuditSummary) (count, suspicious int) {
	for _, rec := range s.FileIntegrity.SensitiveFileAccess {
		count += rec.Count
		if rec.Suspicious {
			suspicious++
		}
	}
	return count, suspicious
}
