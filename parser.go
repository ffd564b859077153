package portdex

import "fmt"

// ParseWarning records a non-fatal anomaly encountered while parsing one
// source row. Warnings accumulate across a parse run and never abort it.
type ParseWarning struct {
	Row     int    `json:"row"`
	Reason  string `json:"reason"`
	Snippet string `json:"snippet,omitempty"`
}

// String renders the warning for advisory output.
func (w ParseWarning) String() string {
	if w.Snippet == "" {
		return fmt.Sprintf("row %d: %s", w.Row, w.Reason)
	}
	return fmt.Sprintf("row %d: %s (%q)", w.Row, w.Reason, w.Snippet)
}

// Parser extracts port assignments from the source document's HTML.
//
// Structural anomalies in individual rows degrade to warnings; the returned
// error is non-nil only when the document lacks the expected table structure
// entirely (code EUNPROCESSABLE), signaling the source format has drifted
// beyond recovery.
type Parser interface {
	Parse(html string) ([]*PortAssignment, []ParseWarning, error)
}

// Converter renders a description cell's HTML as plain markdown text.
type Converter interface {
	Convert(html string) (string, error)
}
