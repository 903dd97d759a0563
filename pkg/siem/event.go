// Package siem generates, renders, and dispatches security events derived
// from diffing successive fingerprints.
package siem

import (
	"time"

	"github.com/librepower/csentinel/pkg/fingerprint"
)

// Severity is the numeric CEF/syslog severity scale, grounded on
// original_source/csentinel4aix/src/siem_events.c's SEV_* constants.
type Severity int

const (
	SevInfo     Severity = 1
	SevLow      Severity = 3
	SevMedium   Severity = 5
	SevHigh     Severity = 7
	SevCritical Severity = 9
)

// EventType enumerates the SIEM event kinds this router emits.
type EventType int

const (
	EventAuthFailure EventType = iota
	EventBruteForce
	EventPrivEscalation
	EventNewListener
	EventConfigChange
	EventFingerprint
	// EventListenerGone is additive observability recovered from
	// original_source/csentinel4aix/src/siem_events.c's event_type_t enum
	// (EVT_LISTENER_GONE), which the distilled event table dropped.
	EventListenerGone
)

func (t EventType) String() string {
	switch t {
	case EventAuthFailure:
		return "AUTH_FAILURE"
	case EventBruteForce:
		return "BRUTE_FORCE"
	case EventPrivEscalation:
		return "PRIV_ESCALATION"
	case EventNewListener:
		return "NEW_LISTENER"
	case EventConfigChange:
		return "CONFIG_CHANGE"
	case EventFingerprint:
		return "FINGERPRINT"
	case EventListenerGone:
		return "LISTENER_GONE"
	default:
		return "UNKNOWN"
	}
}

// typeID maps each EventType to the numeric CEF signature ID.
func (t EventType) typeID() int {
	return int(t) + 1
}

// Event is one SIEM-bound semantic event.
type Event struct {
	Type        EventType
	Severity    Severity
	Timestamp   time.Time
	Host        string
	Message     string
	RiskScore   int
	Src         string
	SUser       string
	DPT         int
	SProc       string
	FilePath    string
	Count       int
	Details     fingerprint.Fingerprint
	HasDetails  bool
}
