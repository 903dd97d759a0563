package fingerprint

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeCountsEachIndicator(t *testing.T) {
	fp := Fingerprint{
		Processes: []Process{
			{State: "Z"},
			{FDCount: HighFDThreshold + 1},
			{AgeSeconds: LongRunningSeconds},
			{State: "S", FDCount: 1, AgeSeconds: 1},
		},
		Configs: []Config{
			{Exists: true, Mode: 0o666},
			{Exists: true, Mode: 0o644, UID: 0},
		},
		Network: Network{UnusualPortCount: 2},
	}

	qa := Analyze(fp)
	assert.Equal(t, 1, qa.ZombieCount)
	assert.Equal(t, 1, qa.HighFDCount)
	assert.Equal(t, 1, qa.LongRunningCount)
	assert.Equal(t, 1, qa.ConfigPermissionIssues)
	assert.Equal(t, 2, qa.UnusualListenerCount)
	assert.Equal(t, 6, qa.TotalIssues)
}

func TestPermissionIssueWorldWritable(t *testing.T) {
	c := Config{Exists: true, Mode: 0o644 | 0o002, UID: 0}
	assert.True(t, c.PermissionIssue())
}

func TestPermissionIssueWideAndNotRoot(t *testing.T) {
	c := Config{Exists: true, Mode: 0o755, UID: 1000}
	assert.True(t, c.PermissionIssue())
}

func TestPermissionIssueNoneForRootOwned0644(t *testing.T) {
	c := Config{Exists: true, Mode: 0o644, UID: 0}
	assert.False(t, c.PermissionIssue())
}

func TestPermissionIssueAbsentNeverFlags(t *testing.T) {
	c := Config{Exists: false, Mode: 0o777}
	assert.False(t, c.PermissionIssue())
}

func TestEmitPreservesFieldOrder(t *testing.T) {
	fp := Fingerprint{Timestamp: 1, Version: "1"}
	data, err := Emit(fp, nil)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "timestamp")
	assert.Contains(t, raw, "version")
	assert.NotContains(t, raw, "audit_summary")

	ts := bytes.Index(data, []byte(`"timestamp"`))
	ver := bytes.Index(data, []byte(`"version"`))
	pe := bytes.Index(data, []byte(`"probe_errors"`))
	assert.True(t, ts >= 0 && ts < ver && ver < pe, "fields must be emitted in declaration order")
}

func TestEmitParseRoundTrip(t *testing.T) {
	fp := Fingerprint{Timestamp: 42, Version: "1", ProcessCount: 3}
	summary := json.RawMessage(`{"risk_score":5}`)

	data, err := Emit(fp, summary)
	require.NoError(t, err)

	got, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, fp, got)
}
