package siem

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/librepower/csentinel/internal/xerrors"
)

// SyslogSink dispatches events as RFC 5424 syslog frames over UDP or TCP.
// Socket setup is treated as transport mechanics (out of core scope per
// spec.md 1); this sink still wires real net.Dial calls since the payload
// framing itself is a spec'd contract worth exercising end to end.
type SyslogSink struct {
	Network string // "udp" or "tcp"
	Addr    string
	AppName string
	Format  RenderFormat
}

// NewSyslogSink builds a sink targeting addr ("host:port") over network
// ("udp" or "tcp"), rendering each event in the given format.
func NewSyslogSink(network, addr string, format RenderFormat) *SyslogSink {
	return &SyslogSink{Network: network, Addr: addr, AppName: "csentinel", Format: format}
}

// Dispatch sends the sink's configured rendering (CEF or JSON) framed as an
// RFC 5424 syslog message: <PRI>1 TIMESTAMP HOST APP - - - MSG.
func (s *SyslogSink) Dispatch(ctx context.Context, e Event, cef string, jsonPayload []byte) error {
	payload := cef
	if s.Format == FormatJSONLine {
		payload = string(jsonPayload)
	}

	pri := priority(int(e.Severity))
	frame := fmt.Sprintf("<%d>1 %s %s %s - - - %s",
		pri, e.Timestamp.UTC().Format(time.RFC3339), e.Host, s.AppName, payload)

	conn, err := net.Dial(s.Network, s.Addr)
	if err != nil {
		return xerrors.Wrap(err, xerrors.TransportFailure, "siem.SyslogSink.Dispatch")
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(frame)); err != nil {
		return xerrors.Wrap(err, xerrors.TransportFailure, "siem.SyslogSink.Dispatch")
	}
	return nil
}

// priority computes RFC 5424 PRI = 8 + (10 - severity), clamped to [8, 15].
func priority(severity int) int {
	pri := 8 + (10 - severity)
	if pri < 8 {
		return 8
	}
	if pri > 15 {
		return 15
	}
	return pri
}
