// Package audit receives one structured event per classification decision
// and per circuit-breaker trip. The enforcer calls the sink exactly once
// per classification (twice on a trip); transport and persistence are the
// sink's concern.
package audit

import (
	"encoding/json"
	"os"
	"sync"
	"time"
)

// Severity of an audit event.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Operations recorded by the enforcer.
const (
	OpClassify    = "classify"
	OpBreakerTrip = "circuit_breaker_trip"
)

// Event is one security decision record.
type Event struct {
	Timestamp      string `json:"timestamp"`
	Operation      string `json:"operation"`
	Command        string `json:"command"`
	Severity       string `json:"severity"`
	Classification string `json:"classification,omitempty"`
	Reason         string `json:"reason,omitempty"`
	Profile        string `json:"profile,omitempty"`
}

// Sink consumes audit events. Implementations must tolerate being called
// from the single goroutine that owns an enforcer instance; the bundled
// file sink additionally locks so several enforcers may share one file.
type Sink interface {
	Record(Event)
}

// NopSink discards events. The default for library embedding.
type NopSink struct{}

func (NopSink) Record(Event) {}

// FileSink appends events as JSON lines. Commands and reasons are
// redacted before persistence so secrets pasted into a command never
// reach disk.
type FileSink struct {
	mu   sync.Mutex
	file *os.File
}

// NewFileSink opens (or creates) the JSONL audit log at path.
func NewFileSink(path string) (*FileSink, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}
	return &FileSink{file: file}, nil
}

func (s *FileSink) Record(event Event) {
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	event.Command = Redact(event.Command)
	event.Reason = Redact(event.Reason)

	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.file.Write(data)
}

func (s *FileSink) Close() error {
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}
