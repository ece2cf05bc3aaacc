// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// Severity grades a diagnostic message.
type Severity string

const (
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// Message is one diagnostic emitted while validating or resolving an OCI.
type Message struct {
	// Operation names the step that produced the message, e.g. "validate".
	Operation string   `json:"operation" yaml:"operation"`
	Severity  Severity `json:"severity" yaml:"severity"`
	Text      string   `json:"text" yaml:"text"`
}

func (m Message) String() string {
	return fmt.Sprintf("{%s} [%s] %s", m.Operation, m.Severity, m.Text)
}
