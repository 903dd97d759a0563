package siem

import (
	"context"
	"sync"
	"time"

	"github.com/librepower/csentinel/internal/logging"
	"github.com/librepower/csentinel/pkg/audit"
	"github.com/librepower/csentinel/pkg/fingerprint"
)

// Sink dispatches a rendered event payload somewhere (syslog, a log file, or
// email). Sinks never retry; a TransportFailure is logged and the pipeline
// continues, per spec.md 7's error policy.
type Sink interface {
	Dispatch(ctx context.Context, e Event, cef string, jsonPayload []byte) error
}

// Router is the stateful event-generation-and-dispatch service spec.md 9
// calls for explicitly, replacing the source program's module-level
// previous-fingerprint global with an owned struct field.
type Router struct {
	mu   sync.Mutex
	prev *fingerprint.Fingerprint

	Format RenderFormat
	Sinks  []Sink
}

// RenderFormat selects which of CEF or JSON a router's syslog sink uses.
type RenderFormat int

const (
	FormatCEF RenderFormat = iota
	FormatJSONLine
)

// NewRouter builds a Router with no previous-fingerprint slot populated.
func NewRouter(format RenderFormat, sinks ...Sink) *Router {
	return &Router{Format: format, Sinks: sinks}
}

// Update diffs fp/summary against the router's single previous-fingerprint
// slot, generates the triggered events in the fixed order spec.md 4.7
// defines (FINGERPRINT always last), dispatches each to every configured
// sink, and replaces the previous-fingerprint slot with fp.
func (r *Router) Update(ctx context.Context, fp fingerprint.Fingerprint, summary audit.AuditSummary, now time.Time) []Event {
	r.mu.Lock()
	prev := r.prev
	r.mu.Unlock()

	events := generateEvents(fp, summary, prev, now)

	for _, e := range events {
		r.dispatch(ctx, e)
	}

	r.mu.Lock()
	fpCopy := fp
	r.prev = &fpCopy
	r.mu.Unlock()

	return events
}

func (r *Router) dispatch(ctx context.Context, e Event) {
	cef := RenderCEF(e)
	jsonPayload, err := FormatJSON(e)
	if err != nil {
		return
	}
	for _, sink := range r.Sinks {
		if err := sink.Dispatch(ctx, e, cef, jsonPayload); err != nil {
			logging.Default().WithError(err).Warn("SIEM sink dispatch failed")
		}
	}
}

// generateEvents implements the event-generation rules of spec.md 4.7,
// comparing fp only against the immediately previous tick (never a wider
// window).
func generateEvents(fp fingerprint.Fingerprint, summary audit.AuditSummary, prev *fingerprint.Fingerprint, now time.Time) []Event {
	var events []Event
	host := fp.System.Hostname

	if summary.Authentication.Failures > 3 {
		events = append(events, Event{
			Type: EventAuthFailure, Severity: SevMedium, Timestamp: now, Host: host,
			Message:   "authentication failures observed",
			RiskScore: summary.RiskScore,
			Count:     summary.Authentication.Failures,
		})
	}
	if summary.Authentication.BruteForceDetected {
		events = append(events, Event{
			Type: EventBruteForce, Severity: SevCritical, Timestamp: now, Host: host,
			Message:   "brute force attack pattern detected",
			RiskScore: summary.RiskScore,
		})
	}
	if summary.PrivilegeEscalation.SuCount > 0 || summary.PrivilegeEscalation.SudoCount > 0 {
		events = append(events, Event{
			Type: EventPrivEscalation, Severity: SevLow, Timestamp: now, Host: host,
			Message:   "privilege escalation activity observed",
			RiskScore: summary.RiskScore,
			Count:     summary.PrivilegeEscalation.SuCount + summary.PrivilegeEscalation.SudoCount,
		})
	}

	if prev != nil {
		prevPorts := make(map[int]bool, len(prev.Network.Listeners))
		for _, l := range prev.Network.Listeners {
			prevPorts[l.LocalPort] = true
		}
		currPorts := make(map[int]bool, len(fp.Network.Listeners))
		for _, l := range fp.Network.Listeners {
			currPorts[l.LocalPort] = true
			if !prevPorts[l.LocalPort] {
				events = append(events, Event{
					Type: EventNewListener, Severity: SevHigh, Timestamp: now, Host: host,
					Message:   "new listener observed",
					RiskScore: summary.RiskScore,
					DPT:       l.LocalPort,
					SProc:     l.ProcessName,
				})
			}
		}
		for _, l := range prev.Network.Listeners {
			if !currPorts[l.LocalPort] {
				events = append(events, Event{
					Type: EventListenerGone, Severity: SevLow, Timestamp: now, Host: host,
					Message:   "previously observed listener disappeared",
					RiskScore: summary.RiskScore,
					DPT:       l.LocalPort,
					SProc:     l.ProcessName,
				})
			}
		}

		prevDigest := make(map[string]string, len(prev.Configs))
		for _, c := range prev.Configs {
			prevDigest[c.Path] = c.SHA256
		}
		for _, c := range fp.Configs {
			if old, ok := prevDigest[c.Path]; ok && old != c.SHA256 {
				events = append(events, Event{
					Type: EventConfigChange, Severity: SevHigh, Timestamp: now, Host: host,
					Message:   "configuration file changed",
					RiskScore: summary.RiskScore,
					FilePath:  c.Path,
				})
			}
		}
	}

	events = append(events, Event{
		Type: EventFingerprint, Severity: SevInfo, Timestamp: now, Host: host,
		Message:    "periodic fingerprint",
		RiskScore:  summary.RiskScore,
		Details:    fp,
		HasDetails: true,
	})

	return events
}
