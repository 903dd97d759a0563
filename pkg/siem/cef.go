package siem

import (
	"fmt"
	"strings"
)

// cefVersion is the fixed third field in the CEF header, distinct from the
// CEF spec version (always "0").
const cefVersion = "0.6.0"

// RenderCEF renders e as a single-line Common Event Format 0 record, per
// spec.md 6's grammar: fixed header fields followed by an optional tail of
// src/suser/dpt/sproc/filePath/cnt extensions, each appended only when
// present.
func RenderCEF(e Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CEF:0|LibrePower|C-Sentinel|%s|%d|%s|%d|rt=%s dhost=%s msg=%s cn1Label=risk_score cn1=%d",
		cefVersion, e.Type.typeID(), e.Type.String(), e.Severity,
		e.Timestamp.UTC().Format("2006-01-02T15:04:05Z"), e.Host, escapeCEF(e.Message), e.RiskScore)

	if e.Src != "" {
		fmt.Fprintf(&b, " src=%s", e.Src)
	}
	if e.SUser != "" {
		fmt.Fprintf(&b, " suser=%s", e.SUser)
	}
	if e.DPT != 0 {
		fmt.Fprintf(&b, " dpt=%d", e.DPT)
	}
	if e.SProc != "" {
		fmt.Fprintf(&b, " sproc=%s", e.SProc)
	}
	if e.FilePath != "" {
		fmt.Fprintf(&b, " filePath=%s", e.FilePath)
	}
	if e.Count != 0 {
		fmt.Fprintf(&b, " cnt=%d", e.Count)
	}
	return b.String()
}

// escapeCEF replaces characters CEF reserves in a value field (per the CEF
// spec, pipe and backslash in extension values, equals sign in keys) so a
// message cannot forge additional CEF fields.
func escapeCEF(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `|`, `\|`, `=`, `\=`)
	return r.Replace(s)
}
