// Package merge incorporates a foreign batch of responses (another device's
// snapshot) into the local store without duplication.
//
// The algorithm has two explicit phases:
//
//  1. Plan: given the set of ids already stored, split the batch into fresh
//     records and duplicates. Pure, no I/O.
//  2. Apply: append the fresh records, in batch order, in one atomic write.
//
// Merging is idempotent: after a batch is merged every one of its ids is in
// the local id set, so merging it again plans zero fresh records.
//
// Foreign records are appended unchanged. Their id, deviceId, sectorName,
// timestamp and synced flag are never rewritten.
package merge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/roach88/boothsync/internal/survey"
)

// Backend is the persistence the merge engine reads ids from and appends to.
// AppendResponses must be all-or-nothing.
type Backend interface {
	ResponseIDs(ctx context.Context) (map[string]struct{}, error)
	AppendResponses(ctx context.Context, rs []survey.Response) error
}

// Result reports what a merge did.
type Result struct {
	Added      int `json:"added"`
	Duplicates int `json:"duplicates"`
}

// Plan is the outcome of the planning phase.
type Plan struct {
	Fresh      []survey.Response
	Duplicates int
}

// Result converts the plan into the counts a successful apply reports.
func (p Plan) Result() Result {
	return Result{Added: len(p.Fresh), Duplicates: p.Duplicates}
}

// Validate checks that every element of batch carries a non-empty id.
// It is the only structural check; other fields are taken as they come.
func Validate(batch []survey.Response) error {
	for i, r := range batch {
		if strings.TrimSpace(r.ID) == "" {
			return survey.NewFormatError(i, "record has no id", nil)
		}
	}
	return nil
}

// PlanMerge splits batch into records absent from existing and duplicates.
//
// A record whose id appears earlier in the same batch also counts as a
// duplicate, so the plan never contains two records with one id.
// existing is not modified.
func PlanMerge(existing map[string]struct{}, batch []survey.Response) Plan {
	seen := make(map[string]struct{}, len(batch))
	plan := Plan{Fresh: make([]survey.Response, 0, len(batch))}

	for _, r := range batch {
		_, local := existing[r.ID]
		_, earlier := seen[r.ID]
		if local || earlier {
			plan.Duplicates++
			continue
		}
		seen[r.ID] = struct{}{}
		plan.Fresh = append(plan.Fresh, r)
	}
	return plan
}

// Engine merges foreign batches into a local backend.
//
// Thread-safety: Merge calls on one Engine are serialized so that two
// imports cannot plan against the same id snapshot.
type Engine struct {
	backend Backend
	logger  *slog.Logger
	mu      sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger overrides the logger (default slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine creates a merge engine over backend.
func NewEngine(backend Backend, opts ...Option) *Engine {
	e := &Engine{backend: backend, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Merge incorporates batch into the local store.
//
// On any error the store is unchanged and the returned Result is zero.
func (e *Engine) Merge(ctx context.Context, batch []survey.Response) (Result, error) {
	if err := Validate(batch); err != nil {
		return Result{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	existing, err := e.backend.ResponseIDs(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("merge: %w", err)
	}

	plan := PlanMerge(existing, batch)
	if err := e.backend.AppendResponses(ctx, plan.Fresh); err != nil {
		return Result{}, fmt.Errorf("merge: %w", err)
	}

	res := plan.Result()
	e.logger.Info("merge applied", "batch", len(batch), "added", res.Added, "duplicates", res.Duplicates)
	return res, nil
}
