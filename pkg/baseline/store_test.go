package baseline

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librepower/csentinel/internal/xerrors"
)

func TestAuditBaselineRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStoreWithFs(fs)

	want := AuditBaseline{
		Created:            time.Unix(1000, 0).UTC(),
		Updated:            time.Unix(2000, 0).UTC(),
		SampleCount:        7,
		AvgAuthFailures:    1.5,
		AvgSudoCount:       2.5,
		AvgSensitiveAccess: 3.5,
		AvgTmpExecutions:   4.5,
		AvgShellSpawns:     5.5,
	}
	require.NoError(t, store.SaveAudit(want))

	got, err := store.LoadAudit()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadAuditAbsentIsNotFatal(t *testing.T) {
	store := NewStoreWithFs(afero.NewMemMapFs())
	_, err := store.LoadAudit()
	require.Error(t, err)
	assert.True(t, xerrors.IsKind(err, xerrors.BaselineAbsent))
}

func TestLoadAuditCorruptMagic(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStoreWithFs(fs)
	require.NoError(t, afero.WriteFile(fs, systemDir+"/"+auditFileName, []byte("not a valid baseline file at all"), 0o600))

	_, err := store.LoadAudit()
	require.Error(t, err)
	assert.True(t, xerrors.IsKind(err, xerrors.BaselineCorrupt))
}

func TestHostBaselineRoundTrip(t *testing.T) {
	store := NewStoreWithFs(afero.NewMemMapFs())
	want := HostBaseline{
		Created:            time.Unix(1000, 0).UTC(),
		SampleCount:        3,
		CanonicalListeners: []int{22, 443},
		CanonicalConfigs:   map[string]string{"/etc/passwd": "abc"},
		ProcessNames:       []string{"sshd"},
	}
	require.NoError(t, store.SaveHost(want))

	got, err := store.LoadHost()
	require.NoError(t, err)
	assert.Equal(t, want.SampleCount, got.SampleCount)
	assert.Equal(t, want.CanonicalConfigs, got.CanonicalConfigs)
}
