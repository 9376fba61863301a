// Package schemas defines the wire types shared between the CLI, the report
// writer, and anything consuming formfit output.
package schemas

import "time"

// ControlKind identifies the category a control was sized as.
type ControlKind string

const (
	KindTextArea       ControlKind = "TEXTAREA"
	KindSingleLineText ControlKind = "SINGLE_LINE_TEXT"
	KindSelection      ControlKind = "SELECTION"
)

// ControlResult records the outcome of sizing one control.
type ControlResult struct {
	Tag    string      `json:"tag"`
	Kind   ControlKind `json:"kind"`
	ID     string      `json:"id,omitempty"`
	Name   string      `json:"name,omitempty"`
	Width  string      `json:"width,omitempty"`
	Height string      `json:"height,omitempty"`
	// Applied is false when the control was matched but left untouched, for
	// example a select with no selected option.
	Applied bool   `json:"applied"`
	Error   string `json:"error,omitempty"`
}

// DocumentReport aggregates the results for one processed document.
type DocumentReport struct {
	Source    string          `json:"source"`
	Timestamp time.Time       `json:"timestamp"`
	Controls  []ControlResult `json:"controls"`
	Matched   int             `json:"matched"`
	Resized   int             `json:"resized"`
}

// SizingReport is the top level report across a whole run.
type SizingReport struct {
	Version   string           `json:"version"`
	StartedAt time.Time        `json:"started_at"`
	Documents []DocumentReport `json:"documents"`
}
