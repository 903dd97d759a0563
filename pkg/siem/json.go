package siem

import "encoding/json"

// jsonDocument is the stable-field-order JSON rendering of an Event, per
// spec.md 4.7.
type jsonDocument struct {
	Timestamp int64                    `json:"timestamp"`
	Host      string                   `json:"host"`
	Event     string                   `json:"event"`
	Severity  int                      `json:"severity"`
	RiskScore int                      `json:"risk_score"`
	Message   string                   `json:"message"`
	Src       string                   `json:"src,omitempty"`
	SUser     string                   `json:"suser,omitempty"`
	DPT       int                      `json:"dpt,omitempty"`
	SProc     string                   `json:"sproc,omitempty"`
	FilePath  string                   `json:"file_path,omitempty"`
	Count     int                      `json:"cnt,omitempty"`
	Details   *json.RawMessage         `json:"details,omitempty"`
}

// FormatJSON renders e as structured JSON.
func FormatJSON(e Event) ([]byte, error) {
	doc := jsonDocument{
		Timestamp: e.Timestamp.Unix(),
		Host:      e.Host,
		Event:     e.Type.String(),
		Severity:  int(e.Severity),
		RiskScore: e.RiskScore,
		Message:   e.Message,
		Src:       e.Src,
		SUser:     e.SUser,
		DPT:       e.DPT,
		SProc:     e.SProc,
		FilePath:  e.FilePath,
		Count:     e.Count,
	}
	if e.HasDetails {
		raw, err := json.Marshal(e.Details)
		if err != nil {
			return nil, err
		}
		rm := json.RawMessage(raw)
		doc.Details = &rm
	}
	return json.Marshal(doc)
}
