//go:build aix

package audit

import (
	"context"
	"strings"
	"time"

	"github.com/librepower/csentinel/internal/execsafe"
	"github.com/librepower/csentinel/pkg/digest"
)

// aixRecord is one auditpr -v line: {event_name, login, status, weekday,
// month, day, HH:MM:SS, year, command, wpar}.
type aixRecord struct {
	event, login, status, command string
}

// CollectAIX consumes `auditpr -v` text records and categorises them into
// the same enumerations the Linux collector produces, per spec.md 4.3's
// AIX-native branch.
func CollectAIX(ctx context.Context, since time.Time, salt string, lookup ProcessLookup) (AuditSummary, error) {
	res, err := execsafe.Run(ctx, "auditpr", "-v")
	if err != nil {
		return AuditSummary{Enabled: false}, nil
	}

	summary := AuditSummary{Enabled: true, PeriodSeconds: int64(time.Since(since).Seconds())}
	failuresByUser := map[string]int{}

	for _, line := range strings.Split(res.Stdout, "\n") {
		rec, ok := parseAIXLine(line)
		if !ok {
			continue
		}

		switch rec.event {
		case "USER_Authenticate":
			if rec.status == "FAILED" {
				summary.Authentication.Failures++
				failuresByUser[rec.login]++
			} else {
				summary.Authentication.SuccessCount++
			}
		case "USER_SU":
			summary.PrivilegeEscalation.SuCount++
		case "USER_Sudo", "CMD_Execute_sudo":
			summary.PrivilegeEscalation.SudoCount++
		case "FILE_Write", "FILE_Open":
			if IsSensitivePath(rec.command) {
				addSensitiveAccess(&summary, rec.command, EventContext{Comm: rec.login}, lookup)
			}
		case "PROC_Execute":
			addExecEvent(&summary, rec.command, EventContext{Comm: rec.login}, lookup)
		case "AVC_DENIAL":
			summary.SecurityFramework.SELinuxAVCDenials++
		}
	}

	for user := range failuresByUser {
		summary.Authentication.FailureUsersHashed = append(summary.Authentication.FailureUsersHashed, digest.HashUsername(salt, user))
	}
	summary.Authentication.BruteForceDetected = IsBruteForce(summary.Authentication.Failures)
	return summary, nil
}

// parseAIXLine splits one auditpr -v line into its fixed fields. Malformed
// lines (headers, blanks, short lines) are skipped, never partially parsed.
func parseAIXLine(line string) (aixRecord, bool) {
	fields := strings.Fields(line)
	if len(fields) < 3 || strings.HasPrefix(line, "event") {
		return aixRecord{}, false
	}
	rec := aixRecord{event: fields[0], login: fields[1], status: fields[2]}
	if len(fields) > 8 {
		rec.command = fields[8]
	}
	return rec, true
}
