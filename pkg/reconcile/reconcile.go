// Package reconcile computes and applies the minimal set of persistence
// mutations needed to bring a look's stored placement records in line with
// the in-memory arrangement.
//
// The persistence collaborator only exposes create-many, update-one and
// delete-one operations (no server-side diff or patch primitive), so the
// engine partitions the change set itself:
//
//   - records whose item is no longer placed are deleted
//   - newly placed items are created in a single batch
//   - items present on both sides with a changed position or scale are updated
//   - items with unchanged placement are skipped entirely
//
// Diff is pure; Apply dispatches the plan. Updates and deletes act on
// disjoint record sets and are issued concurrently. The create batch is
// issued first: a failed batch then aborts the whole save before anything
// destructive has run, instead of leaving the look missing items the user
// meant to keep.
package reconcile

import (
	"context"
	"math"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/arrangement"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/errors"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/geometry"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/observability"
)

// Record is the persisted shape of one placed item.
// ID is record identity, distinct from the wardrobe item id.
type Record struct {
	ID        string               `json:"id" bson:"_id"`
	LookID    string               `json:"look_id" bson:"look_id"`
	ItemID    string               `json:"item_id" bson:"item_id"`
	ItemType  arrangement.ItemType `json:"item_type" bson:"item_type"`
	SortOrder int                  `json:"sort_order" bson:"sort_order"`
	Pos       geometry.Position    `json:"pos" bson:"pos"`
	Scale     float64              `json:"scale" bson:"scale"`
}

// Create describes one record to be created by the batch call.
type Create struct {
	ItemID    string               `json:"item_id"`
	ItemType  arrangement.ItemType `json:"item_type"`
	SortOrder int                  `json:"sort_order"`
	Pos       geometry.Position    `json:"pos"`
	Scale     float64              `json:"scale"`
}

// Update describes new placement values for an existing record.
type Update struct {
	Pos   geometry.Position `json:"pos"`
	Scale float64           `json:"scale"`
}

// Plan is the computed mutation set. Deletes carry record ids.
type Plan struct {
	Creates []Create
	Updates map[string]Update // record id -> new values
	Deletes []string
}

// Empty reports whether the plan contains no mutations.
func (p Plan) Empty() bool {
	return len(p.Creates) == 0 && len(p.Updates) == 0 && len(p.Deletes) == 0
}

// Persister is the narrow persistence surface the engine needs.
// internal/store implements it; tests use in-memory fakes.
type Persister interface {
	// CreatePlacements creates all records in one batch and returns them
	// with assigned ids.
	CreatePlacements(ctx context.Context, lookID string, creates []Create) ([]Record, error)

	// UpdatePlacement overwrites position and scale on one record.
	UpdatePlacement(ctx context.Context, recordID string, upd Update) error

	// DeletePlacement removes one record by id. Deleting an already-deleted
	// record is not an error (idempotent by record id).
	DeletePlacement(ctx context.Context, recordID string) error
}

// Diff partitions the difference between the persisted records and the
// desired arrangement snapshot.
//
// Entries with unchanged position and scale are excluded from the update set;
// this no-op filtering is required, not incidental, since every update is a
// separate network call. SortOrder on creates follows the entry's index in
// the desired arrangement.
func Diff(records []Record, entries []arrangement.Entry) Plan {
	plan := Plan{Updates: make(map[string]Update)}

	desired := make(map[string]int, len(entries)) // item id -> entry index
	for i, e := range entries {
		desired[e.Item.ID] = i
	}

	current := make(map[string]Record, len(records)) // item id -> record
	for _, r := range records {
		current[r.ItemID] = r
		if _, keep := desired[r.ItemID]; !keep {
			plan.Deletes = append(plan.Deletes, r.ID)
		}
	}

	for i, e := range entries {
		r, exists := current[e.Item.ID]
		if !exists {
			plan.Creates = append(plan.Creates, Create{
				ItemID:   e.Item.ID,
				ItemType: e.Item.Type,
				// Index in the desired arrangement, not a continuation of the
				// stored sort orders. A full re-save renumbers from zero.
				SortOrder: i,
				Pos:       e.Pos,
				Scale:     e.Scale,
			})
			continue
		}
		if !placementEqual(r, e) {
			plan.Updates[r.ID] = Update{Pos: e.Pos, Scale: e.Scale}
		}
	}

	return plan
}

func placementEqual(r Record, e arrangement.Entry) bool {
	return floatEqual(r.Pos.X, e.Pos.X) &&
		floatEqual(r.Pos.Y, e.Pos.Y) &&
		floatEqual(r.Scale, e.Scale)
}

// floatEqual compares placement floats with a tolerance well below anything
// a gesture can produce, so round-tripping through persistence never
// manufactures spurious updates.
func floatEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// Result reports what an apply actually changed.
type Result struct {
	// Created holds the records returned by the create batch, with ids
	// assigned by the persister.
	Created []Record

	// Failed holds the record ids whose update or delete did not land.
	// Callers tracking persisted state must not fold these mutations in,
	// or a retry would have nothing left to re-issue.
	Failed map[string]bool
}

// Engine applies plans against a persister.
type Engine struct {
	Logger *log.Logger
}

// NewEngine creates an engine. A nil logger falls back to log.Default().
func NewEngine(logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{Logger: logger}
}

// Apply dispatches the plan against p for the given look.
//
// The create batch runs first and its failure aborts the apply: at that point
// nothing has been deleted or overwritten, so the caller can simply retry.
// Updates and deletes then run concurrently; an individual failure does not
// block the others. Partial failures are collected and returned as a single
// ErrCodePartialApply error after every operation has settled, with the
// failed record ids reported in the Result. Retrying a partially applied
// plan is safe: updates and deletes are idempotent by record id, and a
// re-diff will no longer contain the already-created items.
func (e *Engine) Apply(ctx context.Context, p Persister, lookID string, plan Plan) (Result, error) {
	hooks := observability.Reconcile()
	hooks.OnApplyStart(ctx, lookID, len(plan.Creates), len(plan.Updates), len(plan.Deletes))

	var res Result
	if len(plan.Creates) > 0 {
		created, err := p.CreatePlacements(ctx, lookID, plan.Creates)
		if err != nil {
			hooks.OnApplyComplete(ctx, lookID, err)
			return Result{}, errors.Wrap(errors.ErrCodeStore, err, "create %d placement records", len(plan.Creates))
		}
		res.Created = created
		e.Logger.Debug("created placement records", "look", lookID, "count", len(created))
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures []error
	)
	fail := func(recordID string, err error) {
		mu.Lock()
		failures = append(failures, err)
		if res.Failed == nil {
			res.Failed = make(map[string]bool)
		}
		res.Failed[recordID] = true
		mu.Unlock()
	}

	for recordID, upd := range plan.Updates {
		wg.Add(1)
		go func(recordID string, upd Update) {
			defer wg.Done()
			if err := p.UpdatePlacement(ctx, recordID, upd); err != nil {
				e.Logger.Warn("placement update failed", "record", recordID, "err", err)
				fail(recordID, errors.Wrap(errors.ErrCodeStore, err, "update record %s", recordID))
			}
		}(recordID, upd)
	}

	for _, recordID := range plan.Deletes {
		wg.Add(1)
		go func(recordID string) {
			defer wg.Done()
			if err := p.DeletePlacement(ctx, recordID); err != nil {
				e.Logger.Warn("placement delete failed", "record", recordID, "err", err)
				fail(recordID, errors.Wrap(errors.ErrCodeStore, err, "delete record %s", recordID))
			}
		}(recordID)
	}

	wg.Wait()

	if len(failures) > 0 {
		err := errors.New(errors.ErrCodePartialApply,
			"%d of %d placement operations failed", len(failures), len(plan.Updates)+len(plan.Deletes))
		err.Cause = joinErrors(failures)
		hooks.OnApplyComplete(ctx, lookID, err)
		return res, err
	}

	hooks.OnApplyComplete(ctx, lookID, nil)
	return res, nil
}

func joinErrors(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}
	return &multiError{errs: errs}
}

type multiError struct{ errs []error }

func (m *multiError) Error() string {
	s := m.errs[0].Error()
	for _, err := range m.errs[1:] {
		s += "; " + err.Error()
	}
	return s
}

func (m *multiError) Unwrap() []error { return m.errs }
