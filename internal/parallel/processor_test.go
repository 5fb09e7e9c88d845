// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"natid-scan/internal/core"
)

func newTestScanner(t *testing.T) *core.Scanner {
	t.Helper()
	scanner, err := core.NewScanner(core.ScanConfig{
		ConfidenceLevels: "all",
		Observability:    "off",
	})
	if err != nil {
		t.Fatalf("building scanner: %v", err)
	}
	return scanner
}

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestProcessFiles_MultipleFiles(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeFixture(t, dir, "a.txt", "dni 12345679S\n"),
		writeFixture(t, dir, "b.txt", "bsn 111222333\n"),
		writeFixture(t, dir, "c.txt", "no identity numbers here\n"),
	}

	processor := NewProcessor(newTestScanner(t), 2)
	result, stats, err := processor.ProcessFiles(context.Background(), files)
	if err != nil {
		t.Fatalf("ProcessFiles failed: %v", err)
	}

	if stats.TotalFiles != 3 || stats.ProcessedFiles != 3 || stats.FailedFiles != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if len(result.Matches) != 2 {
		t.Fatalf("expected 2 matches across files, got %d", len(result.Matches))
	}
	if stats.TotalMatches != len(result.Matches) {
		t.Errorf("stats.TotalMatches = %d, want %d", stats.TotalMatches, len(result.Matches))
	}
	if stats.WorkerCount != 2 {
		t.Errorf("expected 2 workers, got %d", stats.WorkerCount)
	}
}

func TestProcessFiles_StableOrder(t *testing.T) {
	dir := t.TempDir()
	// Deliberately submitted out of lexical order
	files := []string{
		writeFixture(t, dir, "c.txt", "dni 12345679S\n"),
		writeFixture(t, dir, "a.txt", "dni 12345679S\n"),
		writeFixture(t, dir, "b.txt", "dni 12345679S\n"),
	}

	processor := NewProcessor(newTestScanner(t), 3)
	result, _, err := processor.ProcessFiles(context.Background(), files)
	if err != nil {
		t.Fatalf("ProcessFiles failed: %v", err)
	}

	if len(result.Matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(result.Matches))
	}
	for i := 1; i < len(result.Matches); i++ {
		if result.Matches[i-1].Filename > result.Matches[i].Filename {
			t.Fatalf("matches not sorted by filename: %q before %q",
				result.Matches[i-1].Filename, result.Matches[i].Filename)
		}
	}
}

func TestProcessFiles_FailuresDoNotStopRun(t *testing.T) {
	dir := t.TempDir()
	good := writeFixture(t, dir, "good.txt", "dni 12345679S\n")
	bad := writeFixture(t, dir, "bad.bin", string([]byte{0x00, 0x01}))

	processor := NewProcessor(newTestScanner(t), 2)
	result, stats, err := processor.ProcessFiles(context.Background(), []string{good, bad})
	if err != nil {
		t.Fatalf("per-file failures should not fail the run: %v", err)
	}

	if stats.ProcessedFiles != 1 || stats.FailedFiles != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if len(stats.Failures) != 1 || stats.Failures[0].Path != bad {
		t.Errorf("expected the binary file in Failures, got %+v", stats.Failures)
	}
	if len(result.Matches) != 1 {
		t.Errorf("expected the good file's match to survive, got %d", len(result.Matches))
	}
}

func TestProcessFilesWithProgress(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for _, name := range []string{"one.txt", "two.txt", "three.txt"} {
		files = append(files, writeFixture(t, dir, name, "nothing to find\n"))
	}

	var calls int
	var lastCompleted int
	processor := NewProcessor(newTestScanner(t), 1)
	_, _, err := processor.ProcessFilesWithProgress(context.Background(), files,
		func(completed, total int, currentFile string) {
			calls++
			lastCompleted = completed
			if total != len(files) {
				t.Errorf("total = %d, want %d", total, len(files))
			}
		})
	if err != nil {
		t.Fatalf("ProcessFilesWithProgress failed: %v", err)
	}

	if calls != len(files) {
		t.Errorf("expected %d progress calls, got %d", len(files), calls)
	}
	if lastCompleted != len(files) {
		t.Errorf("last completed = %d, want %d", lastCompleted, len(files))
	}
}

func TestProcessFiles_ContextCanceled(t *testing.T) {
	dir := t.TempDir()
	file := writeFixture(t, dir, "a.txt", "dni 12345679S\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	processor := NewProcessor(newTestScanner(t), 1)
	_, _, err := processor.ProcessFiles(ctx, []string{file})
	if err == nil {
		t.Error("expected error from canceled context")
	}
}

func TestNewProcessor_WorkerSelection(t *testing.T) {
	scanner := newTestScanner(t)

	if got := NewProcessor(scanner, 0).Workers(); got < 1 {
		t.Errorf("automatic worker count should be at least 1, got %d", got)
	}
	if got := NewProcessor(scanner, 3).Workers(); got != 3 {
		t.Errorf("explicit worker count should be honored, got %d", got)
	}
}
