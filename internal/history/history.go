// Package history persists one record per completed build so past runs can
// be listed and compared without re-reading build reports from disk.
package history

import (
	"context"
	"errors"
	"time"

	"git.home.luguber.info/inful/texbuilder/internal/build"
)

// ErrNotFound indicates no record exists for the requested build id.
var ErrNotFound = errors.New("texbuilder: build record not found")

// Record is the persisted summary of one build run.
type Record struct {
	BuildID   string
	Document  string
	Outcome   string
	Passes    int
	Warnings  int
	Duration  time.Duration
	StartedAt time.Time
}

// FromReport flattens a build report into its history record.
func FromReport(r *build.Report) Record {
	return Record{
		BuildID:   r.BuildID,
		Document:  r.Document,
		Outcome:   string(r.Outcome),
		Passes:    r.Passes,
		Warnings:  len(r.Warnings) + len(r.ToolWarnings),
		Duration:  r.End.Sub(r.Start),
		StartedAt: r.Start,
	}
}

// Store defines the interface for persisting and retrieving build records.
type Store interface {
	// Record persists one completed build.
	Record(ctx context.Context, rec Record) error

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]Record, error)

	// ByBuildID retrieves a single record by its build id.
	ByBuildID(ctx context.Context, buildID string) (*Record, error)

	// Close closes the store and releases resources.
	Close() error
}
