package siem

import (
	"context"
	"os"

	"github.com/librepower/csentinel/internal/xerrors"
)

// LogFileSink appends one JSON-rendered event per line to Path, opened with
// mode 0640. fsync is not required per event, per spec.md 4.7.
type LogFileSink struct {
	Path string
}

// NewLogFileSink builds a sink appending to path.
func NewLogFileSink(path string) *LogFileSink {
	return &LogFileSink{Path: path}
}

// Dispatch appends jsonPayload followed by a newline to the sink's file.
func (s *LogFileSink) Dispatch(ctx context.Context, e Event, cef string, jsonPayload []byte) error {
	f, err := os.OpenFile(s.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return xerrors.Wrap(err, xerrors.TransportFailure, "siem.LogFileSink.Dispatch")
	}
	defer f.Close()

	if _, err := f.Write(append(jsonPayload, '\n')); err != nil {
		return xerrors.Wrap(err, xerrors.TransportFailure, "siem.LogFileSink.Dispatch")
	}
	return nil
}
