// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// DebugObserver prints indented step-by-step traces of a scan run. It is
// meant for interactive debugging, not machine consumption.
type DebugObserver struct {
	writer io.Writer
	indent int
}

func NewDebugObserver(writer io.Writer) *DebugObserver {
	return &DebugObserver{writer: writer}
}

// StartStep opens a step and returns the function that closes it.
func (d *DebugObserver) StartStep(component, step, subject string) func(success bool, details string) {
	start := time.Now()
	fmt.Fprintf(d.writer, "%s🔄 %s: %s (%s)\n", d.prefix(), component, step, subject)
	d.indent++

	return func(success bool, details string) {
		d.indent--
		mark := "✅"
		if !success {
			mark = "❌"
		}
		fmt.Fprintf(d.writer, "%s%s %s: %s (%dms) %s\n",
			d.prefix(), mark, component, step, time.Since(start).Milliseconds(), details)
	}
}

// LogDetail records one line inside the current step.
func (d *DebugObserver) LogDetail(component, detail string) {
	fmt.Fprintf(d.writer, "%s   → %s: %s\n", d.prefix(), component, detail)
}

func (d *DebugObserver) prefix() string {
	return strings.Repeat("  ", d.indent)
}
