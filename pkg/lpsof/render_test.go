package lpsof

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPIDsOnlyDeduplicates(t *testing.T) {
	procs := []*ProcessRecord{{PID: 5}, {PID: 5}, {PID: 7}}
	var buf strings.Builder
	require.NoError(t, renderPIDsOnly(&buf, procs))
	assert.Equal(t, "5\n7\n", buf.String())
}

func TestFieldValuesSelectsRequestedFields(t *testing.T) {
	p := &ProcessRecord{PID: 10, Command: "nginx", UID: 33}
	fd := FDRecord{Number: 3, Type: TypeRegular, Path: "/etc/nginx.conf"}

	got := fieldValues(p, fd, []string{"pid", "command", "name"})
	assert.Equal(t, []string{"10", "nginx", "/etc/nginx.conf"}, got)
}

func TestFieldValuesUnknownFieldIsEmpty(t *testing.T) {
	p := &ProcessRecord{PID: 1}
	got := fieldValues(p, FDRecord{}, []string{"bogus"})
	assert.Equal(t, []string{""}, got)
}

func TestRenderFieldsNullSeparatesWhenRequested(t *testing.T) {
	procs := []*ProcessRecord{{PID: 1, Command: "x", FDs: []FDRecord{{Number: 3, Type: TypeRegular, Path: "/a"}}}}
	var buf strings.Builder
	require.NoError(t, renderFields(&buf, procs, RenderOptions{Fields: []string{"pid", "name"}, NullSep: true}))
	assert.Equal(t, "1\x00/a\n", buf.String())
}

func TestSizeLabelOnlyAppliesToRegularAndDirectory(t *testing.T) {
	assert.Equal(t, "-", sizeLabel(FDRecord{Type: TypeSocket, Size: 100}, false))
	assert.Equal(t, "100", sizeLabel(FDRecord{Type: TypeRegular, Size: 100}, false))
}

func TestNameLabelFormatsSocketsWithState(t *testing.T) {
	fd := FDRecord{Type: TypeInet, Protocol: "TCP", LocalAddr: "0.0.0.0", LocalPort: 80, State: TCPListen}
	assert.Contains(t, nameLabel(fd), "0.0.0.0:80")
	assert.Contains(t, nameLabel(fd), "LISTEN")
}

func TestNameLabelUnixSocketPrefixed(t *testing.T) {
	fd := FDRecord{Type: TypeUnix, Path: "/run/sock"}
	assert.Equal(t, "unix:/run/sock", nameLabel(fd))
}
