// Package reconcile orchestrates the historical-import pipeline: extract
// candidate records from files, match them against a registry snapshot, hand
// the working set to a reviewer for corrections, then batch-commit the
// vehicle-resolved entries.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fleetledger/fleetledger/internal/common"
	"github.com/fleetledger/fleetledger/internal/extract"
	"github.com/fleetledger/fleetledger/internal/preview"
	"github.com/fleetledger/fleetledger/internal/service"
)

// Reviewer lets the user edit the preview session before commit. Review
// returns false to abandon the import without writing anything.
type Reviewer interface {
	Review(ctx context.Context, session *preview.Session) (bool, error)
}

// AutoApprove is a Reviewer that commits the session as matched, with no
// interactive editing.
type AutoApprove struct{}

// Review implements Reviewer.
func (AutoApprove) Review(_ context.Context, _ *preview.Session) (bool, error) {
	return true, nil
}

// ProgressFunc reports commit progress after each attempted write.
type ProgressFunc func(done, total int)

// State tracks where the pipeline is in its strictly sequential flow.
type State int

// Pipeline states.
const (
	StateIdle State = iota
	StateExtracting
	StatePreviewing
	StateCommitting
)

func (s State) String() string {
	switch s {
	case StateExtracting:
		return "extracting"
	case StatePreviewing:
		return "previewing"
	case StateCommitting:
		return "committing"
	default:
		return "idle"
	}
}

// Engine runs one import session end to end.
type Engine struct {
	storage  service.Storage
	registry extract.Registry
	reviewer Reviewer
	progress ProgressFunc
	state    State
}

// Options configures a single run.
type Options struct {
	// DryRun stops after the review phase without writing anything.
	DryRun bool
}

// Result describes one finished run.
type Result struct {
	Warnings  []string
	Summary   service.ImportSummary
	Extracted int
	Committed bool
}

// New creates an import engine. A nil reviewer auto-approves; a nil progress
// function disables progress reporting.
func New(storage service.Storage, registry extract.Registry, reviewer Reviewer, progress ProgressFunc) *Engine {
	if reviewer == nil {
		reviewer = AutoApprove{}
	}
	return &Engine{
		storage:  storage,
		registry: registry,
		reviewer: reviewer,
		progress: progress,
		state:    StateIdle,
	}
}

// State returns the engine's current pipeline state.
func (e *Engine) State() State {
	return e.state
}

// Run executes the pipeline over the given files. The flow is strictly
// sequential and user-driven: Idle -> Extracting -> Previewing ->
// Committing -> Idle. Whatever happens, the session is torn down before
// returning.
func (e *Engine) Run(ctx context.Context, files []string, opts Options) (*Result, error) {
	if e.state != StateIdle {
		return nil, fmt.Errorf("import already in progress (state %s)", e.state)
	}
	defer func() { e.state = StateIdle }()

	e.state = StateExtracting
	slog.Info("Starting import", "files", len(files))

	extracted := e.registry.ExtractAll(ctx, files)
	result := &Result{
		Warnings:  extracted.Errors,
		Extracted: len(extracted.Records),
	}
	if len(extracted.Records) == 0 {
		return result, fmt.Errorf("%w: no records extracted from %d file(s)", common.ErrNoRecords, len(files))
	}

	snapshot, err := e.storage.Snapshot(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to load reference data: %w", err)
	}

	e.state = StatePreviewing
	session := preview.NewSession(extracted.Records, snapshot)
	defer session.Reset()

	slog.Info("Matched records",
		"total", session.Len(),
		"matched", session.MatchedCount(),
		"unmatched", session.UnmatchedCount())

	if opts.DryRun {
		slog.Info("Dry run complete, nothing written")
		return result, nil
	}

	proceed, err := e.reviewer.Review(ctx, session)
	if err != nil {
		return result, fmt.Errorf("review failed: %w", err)
	}
	if !proceed {
		slog.Info("Import abandoned during review")
		return result, nil
	}

	e.state = StateCommitting
	summary, err := e.commit(ctx, session)
	if err != nil {
		return result, err
	}

	result.Summary = summary
	result.Committed = true
	return result, nil
}
