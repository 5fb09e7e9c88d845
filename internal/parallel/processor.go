// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package parallel fans file scans out across a bounded worker pool so
// directory trees are processed concurrently with stable output order.
package parallel

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"natid-scan/internal/core"
	"natid-scan/internal/detector"
	"natid-scan/internal/observability"

	"golang.org/x/sync/errgroup"
)

// ProcessingStats tracks parallel processing statistics.
type ProcessingStats struct {
	TotalFiles     int           `json:"total_files"`
	ProcessedFiles int           `json:"processed_files"`
	FailedFiles    int           `json:"failed_files"`
	TotalMatches   int           `json:"total_matches"`
	TotalDuration  time.Duration `json:"total_duration_ms"`
	WorkerCount    int           `json:"worker_count"`

	// Failures lists the files whose scan failed, for warning output.
	Failures []FileError `json:"-"`
}

// FileError pairs a path with the reason its scan failed.
type FileError struct {
	Path string
	Err  error
}

// ProgressCallback is called after each file completes.
type ProgressCallback func(completed, total int, currentFile string)

// Processor runs one scanner across many files concurrently.
type Processor struct {
	scanner  *core.Scanner
	observer *observability.StandardObserver
	workers  int
}

// Automatic worker selection is capped to keep file descriptor usage
// bounded on large machines; an explicit count is honored as given.
const maxAutoWorkers = 8

// NewProcessor creates a processor around a shared scanner. A worker
// count of zero or less selects one worker per CPU.
func NewProcessor(scanner *core.Scanner, workers int) *Processor {
	if workers <= 0 {
		workers = runtime.NumCPU()
		if workers > maxAutoWorkers {
			workers = maxAutoWorkers
		}
	}
	return &Processor{
		scanner:  scanner,
		observer: scanner.Observer(),
		workers:  workers,
	}
}

// Workers returns the effective worker count.
func (p *Processor) Workers() int {
	return p.workers
}

// ProcessFiles scans every file and merges the results.
func (p *Processor) ProcessFiles(ctx context.Context, filePaths []string) (*core.ScanResult, *ProcessingStats, error) {
	return p.ProcessFilesWithProgress(ctx, filePaths, nil)
}

// ProcessFilesWithProgress scans every file, reporting completion after
// each one. Per-file failures are recorded and do not stop the run; the
// returned error is non-nil only when the context is canceled.
func (p *Processor) ProcessFilesWithProgress(ctx context.Context, filePaths []string, progress ProgressCallback) (*core.ScanResult, *ProcessingStats, error) {
	start := time.Now()

	var finishTiming func(bool, map[string]interface{})
	if p.observer != nil {
		finishTiming = p.observer.StartTiming("parallel_processor", "process_files", "")
	}

	combined := &core.ScanResult{}
	stats := &ProcessingStats{
		TotalFiles:  len(filePaths),
		WorkerCount: p.workers,
	}

	var mu sync.Mutex
	completed := 0

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for _, filePath := range filePaths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result := p.scanner.ScanFile(filePath)

			mu.Lock()
			defer mu.Unlock()
			completed++
			if result.Error != nil {
				stats.FailedFiles++
				stats.Failures = append(stats.Failures, FileError{Path: filePath, Err: result.Error})
			} else {
				stats.ProcessedFiles++
				combined.Matches = append(combined.Matches, result.Matches...)
				combined.AllowlistedMatches = append(combined.AllowlistedMatches, result.AllowlistedMatches...)
			}
			if progress != nil {
				progress(completed, len(filePaths), filePath)
			}
			return nil
		})
	}

	err := g.Wait()

	sortMatches(combined.Matches)
	sortAllowlisted(combined.AllowlistedMatches)
	combined.AllowlistedCount = len(combined.AllowlistedMatches)
	combined.ProcessedFiles = stats.ProcessedFiles
	stats.TotalMatches = len(combined.Matches)
	stats.TotalDuration = time.Since(start)

	if finishTiming != nil {
		finishTiming(err == nil, map[string]interface{}{
			"total_files":     stats.TotalFiles,
			"processed_files": stats.ProcessedFiles,
			"failed_files":    stats.FailedFiles,
			"total_matches":   stats.TotalMatches,
			"workers":         stats.WorkerCount,
		})
	}

	return combined, stats, err
}

// sortMatches orders findings by file and position so output is stable
// regardless of worker completion order.
func sortMatches(matches []detector.Match) {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Filename != matches[j].Filename {
			return matches[i].Filename < matches[j].Filename
		}
		return matches[i].LineNumber < matches[j].LineNumber
	})
}

func sortAllowlisted(entries []detector.AllowlistedMatch) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Match.Filename != entries[j].Match.Filename {
			return entries[i].Match.Filename < entries[j].Match.Filename
		}
		return entries[i].Match.LineNumber < entries[j].Match.LineNumber
	})
}
