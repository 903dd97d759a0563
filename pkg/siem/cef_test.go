package siem

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCEFHeaderAndOptionalFields(t *testing.T) {
	e := Event{
		Type: EventNewListener, Severity: SevHigh, Timestamp: time.Unix(0, 0), Host: "h1",
		Message: "new listener observed", RiskScore: 20, DPT: 8080, SProc: "nc",
	}
	out := RenderCEF(e)
	assert.Contains(t, out, "CEF:0|LibrePower|C-Sentinel|")
	assert.Contains(t, out, "NEW_LISTENER")
	assert.Contains(t, out, "dpt=8080")
	assert.Contains(t, out, "sproc=nc")
	assert.NotContains(t, out, "src=")
}

func TestEscapeCEFNeutralizesFieldInjection(t *testing.T) {
	e := Event{Type: EventFingerprint, Severity: SevInfo, Timestamp: time.Now(), Message: "a|b=c\\d"}
	out := RenderCEF(e)
	assert.Contains(t, out, `a\|b\=c\\d`)
}

func TestFormatJSONRoundTrips(t *testing.T) {
	e := Event{
		Type: EventAuthFailure, Severity: SevMedium, Timestamp: time.Unix(100, 0), Host: "h1",
		Message: "auth failures", RiskScore: 12, Count: 4,
	}
	data, err := FormatJSON(e)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "AUTH_FAILURE", doc["event"])
	assert.Equal(t, "h1", doc["host"])
	assert.EqualValues(t, 12, doc["risk_score"])
}
