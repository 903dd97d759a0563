package siem

import (
	"context"
	"fmt"

	"github.com/librepower/csentinel/internal/execsafe"
	"github.com/librepower/csentinel/internal/xerrors"
)

// EmailSink invokes /usr/sbin/sendmail via an explicit argv vector, never a
// shell, per spec.md 9's open question on the email dispatch mechanism.
// Dispatch is a no-op below Threshold.
type EmailSink struct {
	To        string
	Threshold int
}

// NewEmailSink builds a sink that only fires when an event's risk score is
// at least threshold.
func NewEmailSink(to string, threshold int) *EmailSink {
	return &EmailSink{To: to, Threshold: threshold}
}

// Dispatch sends e.RiskScore >= Threshold events to s.To via sendmail -t.
func (s *EmailSink) Dispatch(ctx context.Context, e Event, cef string, jsonPayload []byte) error {
	if e.RiskScore < s.Threshold {
		return nil
	}

	body := fmt.Sprintf("To: %s\nSubject: csentinel alert: %s\n\nSeverity: %d\nHost: %s\nEvent: %s\nRisk score: %d\nDetails: %s\n",
		s.To, e.Type.String(), e.Severity, e.Host, e.Type.String(), e.RiskScore, e.Message)

	res, err := execsafe.RunWithStdin(ctx, body, "/usr/sbin/sendmail", "-t")
	if err != nil {
		return xerrors.WrapDetail(err, xerrors.TransportFailure, "siem.EmailSink.Dispatch", res.Stderr)
	}
	return nil
}
