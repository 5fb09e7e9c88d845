// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package observability emits structured run records for scan operations.
// The core validation engine stays silent; observation happens at the
// scanning and preprocessing layers around it.
package observability

import (
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Level int

const (
	LevelOff     Level = 0
	LevelMetrics Level = 1
	LevelDebug   Level = 2
)

// ParseLevel maps a configuration name to an observation level. Names
// are the ones accepted by the config file; anything else observes at
// the default metrics level.
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "off":
		return LevelOff
	case "debug":
		return LevelDebug
	default:
		return LevelMetrics
	}
}

// StandardObserver tags every record with the scan session it belongs to.
// One observer is shared across components for the lifetime of a run.
type StandardObserver struct {
	level     Level
	writer    io.Writer
	sessionID string

	// DebugObserver is non-nil when step-by-step tracing is enabled.
	DebugObserver *DebugObserver
}

// NewStandardObserver creates an observer writing JSON records to writer.
func NewStandardObserver(level Level, writer io.Writer) *StandardObserver {
	o := &StandardObserver{
		level:     level,
		writer:    writer,
		sessionID: uuid.NewString(),
	}
	if level >= LevelDebug {
		o.DebugObserver = NewDebugObserver(writer)
	}
	return o
}

// SessionID returns the identifier shared by every record of this run.
func (o *StandardObserver) SessionID() string {
	if o == nil {
		return ""
	}
	return o.sessionID
}

// StartTiming begins timing one operation and returns the completion
// function that emits its record.
func (o *StandardObserver) StartTiming(component, operation, filePath string) func(success bool, metadata map[string]interface{}) {
	start := time.Now()

	return func(success bool, metadata map[string]interface{}) {
		o.LogOperation(OperationRecord{
			Component:  component,
			Operation:  operation,
			FilePath:   filePath,
			DurationMs: time.Since(start).Milliseconds(),
			Success:    success,
			Metadata:   metadata,
		})
	}
}

// LogOperation writes one record if the level admits it.
func (o *StandardObserver) LogOperation(record OperationRecord) {
	if o == nil || o.level < LevelMetrics || o.writer == nil {
		return
	}
	record.SessionID = o.sessionID
	record.Timestamp = time.Now().UTC().Format(time.RFC3339)
	json.NewEncoder(o.writer).Encode(record)
}

// OperationRecord is the JSON shape of one observed operation.
type OperationRecord struct {
	SessionID      string                 `json:"session_id"`
	Timestamp      string                 `json:"timestamp"`
	Component      string                 `json:"component"`
	Operation      string                 `json:"operation"`
	FilePath       string                 `json:"file_path,omitempty"`
	DurationMs     int64                  `json:"duration_ms"`
	Success        bool                   `json:"success"`
	Error          string                 `json:"error,omitempty"`
	CandidateCount int                    `json:"candidate_count,omitempty"`
	FindingCount   int                    `json:"finding_count,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}
