package lpsof

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFieldReplacesPipesAndNewlines(t *testing.T) {
	assert.Equal(t, "plain", sanitizeField("plain"))
	assert.Equal(t, "has_pipe", sanitizeField("has|pipe"))
	assert.Equal(t, "has_newline", sanitizeField("has\nnewline"))
	assert.Equal(t, "tcp 0.0.0.0:80->1.2.3.4:9_weird", sanitizeField("tcp 0.0.0.0:80->1.2.3.4:9|weird"))
}

func TestWriteReadSnapshotRoundTrip(t *testing.T) {
	procs := []*ProcessRecord{
		{
			PID: 100, UID: 0, Command: "nginx",
			FDs: []FDRecord{
				{Number: 3, Type: TypeRegular, Path: "/var/log/nginx|error.log", Device: 1, Inode: 42},
				{Special: FDCwd, Type: TypeDirectory, Path: "/"}, // skipped: special
			},
		},
	}

	var buf strings.Builder
	require.NoError(t, WriteSnapshot(&buf, procs))

	lines, err := ReadSnapshot(strings.NewReader(buf.String()))
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 100, lines[0].PID)
	assert.Equal(t, "nginx", lines[0].Command)
	assert.Equal(t, usernameForUID(0), lines[0].User)
	assert.Equal(t, "/var/log/nginx_error.log", lines[0].Path)
	assert.Equal(t, uint64(42), lines[0].Inode)
}

func TestReadSnapshotSkipsCommentsAndBlankLines(t *testing.T) {
	input := "# comment\n\n100|cmd|root|3|/path|1|2\n"
	lines, err := ReadSnapshot(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 100, lines[0].PID)
	assert.Equal(t, "root", lines[0].User)
}

func TestDeltaDetectsOpenedAndClosed(t *testing.T) {
	prev := []snapshotLine{
		{PID: 1, FD: "3", Path: "/a"},
		{PID: 1, FD: "4", Path: "/b"},
	}
	current := []snapshotLine{
		{PID: 1, FD: "3", Path: "/a"},
		{PID: 1, FD: "5", Path: "/c"},
	}
	entries := Delta(prev, current)
	require.Len(t, entries, 2)

	var sawOpened, sawClosed bool
	for _, e := range entries {
		if e.Kind == DeltaOpened && e.Line.FD == "5" {
			sawOpened = true
		}
		if e.Kind == DeltaClosed && e.Line.FD == "4" {
			sawClosed = true
		}
	}
	assert.True(t, sawOpened)
	assert.True(t, sawClosed)
}

func TestDeltaNoChangeIsEmpty(t *testing.T) {
	lines := []snapshotLine{{PID: 1, FD: "3", Path: "/a"}}
	assert.Empty(t, Delta(lines, lines))
}

func TestSnapshotFromProcsMatchesExpectedStructure(t *testing.T) {
	procs := []*ProcessRecord{
		{
			PID: 7, UID: 0, Command: "sshd",
			FDs: []FDRecord{
				{Number: 4, Type: TypeRegular, Path: "/var/log/auth.log", Device: 1, Inode: 99},
			},
		},
	}

	got := snapshotFromProcs(procs)
	want := []snapshotLine{
		{PID: 7, Command: "sshd", User: usernameForUID(0), FD: "4", Path: "/var/log/auth.log", Device: 1, Inode: 99},
	}

	if diff := cmp.Diff(want, got, cmp.AllowUnexported(snapshotLine{})); diff != "" {
		t.Errorf("snapshotFromProcs mismatch (-want +got):\n%s", diff)
	}
}
