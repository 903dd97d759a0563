package lpsof

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeHexEndpointIPv4(t *testing.T) {
	// 0100007F:0050 is 127.0.0.1:80 in /proc/net/tcp's little-endian form.
	addr, port, ok := decodeHexEndpoint("0100007F:0050")
	require.True(t, ok)
	assert.Equal(t, "127.0.0.1", addr)
	assert.Equal(t, 80, port)
}

func TestDecodeHexEndpointRejectsMalformed(t *testing.T) {
	_, _, ok := decodeHexEndpoint("not-a-field")
	assert.False(t, ok)
}

func TestTCPStateFromCode(t *testing.T) {
	assert.Equal(t, TCPListen, tcpStateFromCode(0x0A))
	assert.Equal(t, TCPEstablished, tcpStateFromCode(0x01))
	assert.Equal(t, TCPUnknown, tcpStateFromCode(0xFF))
}

func TestAccessModeFromFlags(t *testing.T) {
	assert.Equal(t, AccessMode{Read: true}, accessModeFromFlags(0))
	assert.Equal(t, AccessMode{Write: true}, accessModeFromFlags(1))
	assert.Equal(t, AccessMode{Read: true, Write: true}, accessModeFromFlags(2))
}
