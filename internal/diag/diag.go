// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package diag accumulates the severity-tagged messages produced while an
// OCI is validated and resolved.
package diag

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/pdiddy/oci-engine/pkg/types"
)

// Log is an append-only list of messages. Every message is mirrored to the
// global zap logger. The zero value is ready to use.
type Log struct {
	mu       sync.Mutex
	messages []types.Message
}

// Add appends a message.
func (l *Log) Add(op string, sev types.Severity, format string, args ...any) {
	m := types.Message{Operation: op, Severity: sev, Text: fmt.Sprintf(format, args...)}

	l.mu.Lock()
	l.messages = append(l.messages, m)
	l.mu.Unlock()

	fields := []zap.Field{zap.String("operation", op)}
	switch sev {
	case types.SeverityError:
		zap.L().Error(m.Text, fields...)
	case types.SeverityWarning:
		zap.L().Warn(m.Text, fields...)
	default:
		zap.L().Debug(m.Text, fields...)
	}
}

func (l *Log) Info(op, format string, args ...any) {
	l.Add(op, types.SeverityInfo, format, args...)
}

func (l *Log) Warn(op, format string, args ...any) {
	l.Add(op, types.SeverityWarning, format, args...)
}

func (l *Log) Error(op, format string, args ...any) {
	l.Add(op, types.SeverityError, format, args...)
}

// Messages returns a copy of everything logged so far.
func (l *Log) Messages() []types.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]types.Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Has reports whether any message of the given severity was logged.
func (l *Log) Has(sev types.Severity) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.messages {
		if m.Severity == sev {
			return true
		}
	}
	return false
}

// Print writes one message per line.
func (l *Log) Print(w io.Writer) {
	for _, m := range l.Messages() {
		fmt.Fprintln(w, m.String())
	}
}
