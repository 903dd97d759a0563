package fingerprint

import "encoding/json"

// document is the on-wire JSON shape: the Fingerprint's fields followed by
// an optional audit_summary block. Building this struct fresh per call
// (rather than splicing bytes into an already-rendered document) is what
// keeps emission deterministic under P4/L1.
type document struct {
	Fingerprint
	AuditSummary json.RawMessage `json:"audit_summary,omitempty"`
}

// Emit serializes fp as stable-order JSON. When auditSummary is non-nil, it
// is marshalled-in as the already-encoded audit_summary block; pkg/audit is
// responsible for producing those bytes so this package never needs to
// import it.
func Emit(fp Fingerprint, auditSummary json.RawMessage) ([]byte, error) {
	doc := document{Fingerprint: fp, AuditSummary: auditSummary}
	return json.Marshal(doc)
}

// Parse decodes data produced by Emit back into a Fingerprint. Fields that
// are emit-only (none currently) are dropped; the audit_summary block, if
// present, is not reconstructed into a typed value here since it belongs to
// pkg/audit's own types.
func Parse(data []byte) (Fingerprint, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Fingerprint{}, err
	}
	return doc.Fingerprint, nil
}
