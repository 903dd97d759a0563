package probes

import (
	"context"

	"github.com/librepower/csentinel/pkg/fingerprint"
)

// tcpStateNames mirrors /proc/net/tcp's numeric state column, grounded on
// original_source/csentinel4aix/src/net_probe.c's tcp_state_name table.
var tcpStateNames = map[int]string{
	0x00: "UNKNOWN",
	0x01: "ESTABLISHED",
	0x02: "SYN_SENT",
	0x03: "SYN_RECV",
	0x04: "FIN_WAIT1",
	0x05: "FIN_WAIT2",
	0x06: "TIME_WAIT",
	0x07: "CLOSE",
	0x08: "CLOSE_WAIT",
	0x09: "LAST_ACK",
	0x0A: "LISTEN",
	0x0B: "CLOSING",
}

func tcpStateName(code int) string {
	if name, ok := tcpStateNames[code]; ok {
		return name
	}
	return "UNKNOWN"
}

// Network produces listener and established-connection records, along with
// summary counts, using the platform-specific collector registered by
// network_linux.go or network_aix.go.
func Network(ctx context.Context) (fingerprint.Network, error) {
	listeners, conns, err := collectNetwork(ctx)
	net := fingerprint.Network{
		Listeners:   listeners,
		Connections: conns,
	}
	net.TotalListening = len(listeners)
	net.TotalEstablished = len(conns)
	for _, l := range listeners {
		if l.Uncommon {
			net.UnusualPortCount++
		}
	}
	return net, err
}
