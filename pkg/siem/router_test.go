package siem

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librepower/csentinel/pkg/audit"
	"github.com/librepower/csentinel/pkg/fingerprint"
)

type recordingSink struct {
	events []Event
}

func (r *recordingSink) Dispatch(ctx context.Context, e Event, cef string, jsonPayload []byte) error {
	r.events = append(r.events, e)
	return nil
}

func TestRouterFingerprintEventAlwaysLast(t *testing.T) {
	sink := &recordingSink{}
	router := NewRouter(FormatCEF, sink)

	summary := audit.AuditSummary{Authentication: audit.Authentication{Failures: 10}}
	fp := fingerprint.Fingerprint{System: fingerprint.SystemStats{Hostname: "host1"}}

	events := router.Update(context.Background(), fp, summary, time.Now())
	require.NotEmpty(t, events)
	assert.Equal(t, EventFingerprint, events[len(events)-1].Type)
	assert.Equal(t, events, sink.events)
}

func TestRouterDetectsNewAndGoneListeners(t *testing.T) {
	sink := &recordingSink{}
	router := NewRouter(FormatCEF, sink)

	fp1 := fingerprint.Fingerprint{
		Network: fingerprint.Network{Listeners: []fingerprint.Listener{{LocalPort: 22}}},
	}
	router.Update(context.Background(), fp1, audit.AuditSummary{}, time.Now())

	fp2 := fingerprint.Fingerprint{
		Network: fingerprint.Network{Listeners: []fingerprint.Listener{{LocalPort: 8080}}},
	}
	events := router.Update(context.Background(), fp2, audit.AuditSummary{}, time.Now())

	var sawNew, sawGone bool
	for _, e := range events {
		if e.Type == EventNewListener && e.DPT == 8080 {
			sawNew = true
		}
		if e.Type == EventListenerGone && e.DPT == 22 {
			sawGone = true
		}
	}
	assert.True(t, sawNew, "expected a NEW_LISTENER event for port 8080")
	assert.True(t, sawGone, "expected a LISTENER_GONE event for port 22")
}

func TestRouterDetectsConfigChange(t *testing.T) {
	sink := &recordingSink{}
	router := NewRouter(FormatCEF, sink)

	fp1 := fingerprint.Fingerprint{Configs: []fingerprint.Config{{Path: "/etc/passwd", SHA256: "a"}}}
	router.Update(context.Background(), fp1, audit.AuditSummary{}, time.Now())

	fp2 := fingerprint.Fingerprint{Configs: []fingerprint.Config{{Path: "/etc/passwd", SHA256: "b"}}}
	events := router.Update(context.Background(), fp2, audit.AuditSummary{}, time.Now())

	var sawChange bool
	for _, e := range events {
		if e.Type == EventConfigChange && e.FilePath == "/etc/passwd" {
			sawChange = true
		}
	}
	assert.True(t, sawChange)
}

func TestPriorityClamping(t *testing.T) {
	assert.Equal(t, 9, priority(9))
	assert.Equal(t, 8, priority(20), "must clamp to the floor for out-of-range severities")
	assert.Equal(t, 15, priority(-5), "must clamp to the ceiling for out-of-range severities")
}
