package siem

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyslogSinkFramesRFC5424Message(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	received := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		data, _ := bufio.NewReader(conn).ReadString('\n')
		if data == "" {
			buf := make([]byte, 4096)
			n, _ := conn.Read(buf)
			data = string(buf[:n])
		}
		received <- data
	}()

	sink := NewSyslogSink("tcp", ln.Addr().String(), FormatJSONLine)
	evt := Event{
		Type:      EventNewListener,
		Severity:  9,
		Host:      "host1",
		Timestamp: time.Now(),
	}

	require.NoError(t, sink.Dispatch(context.Background(), evt, "", []byte(`{"event":"new_listener"}`)))

	select {
	case frame := <-received:
		assert.True(t, strings.HasPrefix(frame, "<"))
		assert.Contains(t, frame, "csentinel")
		assert.Contains(t, frame, "host1")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for syslog frame")
	}
}

func TestSyslogSinkDialFailureWraps(t *testing.T) {
	sink := NewSyslogSink("tcp", "127.0.0.1:1", FormatCEF)
	err := sink.Dispatch(context.Background(), Event{Timestamp: time.Now()}, "CEF:0|x", nil)
	assert.Error(t, err)
}
