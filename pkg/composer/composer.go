// Package composer orchestrates a look editing session.
//
// A Session owns the authoritative arrangement, feeds pointer events through
// the gesture controller, renders scenes for the canvas, and saves the look:
// validation, diffing the arrangement against the persisted records,
// applying the plan, and kicking off composite generation in the background.
package composer

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/areebaatariq/turnstyle-platform-sub001/internal/store"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/arrangement"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/canvas"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/composite"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/errors"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/geometry"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/gesture"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/reconcile"
)

// DefaultSaveTimeout bounds the persistence phase of a save. Composite
// generation runs detached and is not covered by it.
const DefaultSaveTimeout = 30 * time.Second

// Options configure a Session.
type Options struct {
	// LookID of an existing look, or empty for a new one.
	LookID string

	// UserID owns looks created by this session.
	UserID string

	Profile   geometry.LayoutProfile
	Store     store.Store
	Generator *composite.Generator

	// Palette resolves a wardrobe item by id when the gesture layer adds it
	// or a persisted record is restored.
	Palette func(itemID string) (arrangement.Item, bool)

	// CanvasSize reports the current canvas pixel dimensions.
	CanvasSize func() gesture.Size

	// SaveTimeout overrides DefaultSaveTimeout. Zero keeps the default.
	SaveTimeout time.Duration

	Logger *log.Logger
}

// Session is a single look editing session. Methods are safe for the
// cooperative single-pointer-stream use the gesture layer produces; Save may
// be called while composite generation from a previous save is still
// running.
type Session struct {
	mu      sync.Mutex
	profile geometry.LayoutProfile
	arr     *arrangement.Arrangement
	ctl     *gesture.Controller
	st      store.Store
	gen     *composite.Generator
	engine  *reconcile.Engine
	logger  *log.Logger

	lookID      string
	userID      string
	palette     func(itemID string) (arrangement.Item, bool)
	records     []reconcile.Record
	saveTimeout time.Duration

	composites sync.WaitGroup
}

// NewSession builds a session and wires the gesture controller's intents
// into the arrangement.
func NewSession(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	timeout := opts.SaveTimeout
	if timeout <= 0 {
		timeout = DefaultSaveTimeout
	}

	s := &Session{
		profile:     opts.Profile,
		arr:         arrangement.New(opts.Profile),
		st:          opts.Store,
		gen:         opts.Generator,
		engine:      reconcile.NewEngine(logger),
		logger:      logger,
		lookID:      opts.LookID,
		userID:      opts.UserID,
		palette:     opts.Palette,
		saveTimeout: timeout,
	}

	s.ctl = gesture.NewController(gesture.Config{
		Profile:    opts.Profile,
		CanvasSize: opts.CanvasSize,
		Lookup:     s.arr.Get,
		Callbacks: gesture.Callbacks{
			OnPositionChange: func(itemID string, pos geometry.Position) {
				s.mu.Lock()
				defer s.mu.Unlock()
				s.arr.Move(itemID, pos)
			},
			OnScaleChange: func(itemID string, scale float64) {
				s.mu.Lock()
				defer s.mu.Unlock()
				s.arr.SetScale(itemID, scale)
			},
			OnAdd: func(itemID string) {
				item, ok := opts.Palette(itemID)
				if !ok {
					logger.Warn("dropped item not in palette", "item", itemID)
					return
				}
				s.mu.Lock()
				defer s.mu.Unlock()
				s.arr.Add(item)
			},
			OnRemove: func(itemID string) {
				s.mu.Lock()
				defer s.mu.Unlock()
				s.arr.Remove(itemID)
			},
		},
	})
	return s
}

// Load restores an existing look's placements into the arrangement.
// Records whose item is no longer in the palette are kept in the record set
// (so a save without touching them leaves them alone) but not placed.
func (s *Session) Load(ctx context.Context) error {
	if s.lookID == "" {
		return nil
	}
	records, err := s.st.ListPlacements(ctx, s.lookID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	for _, r := range records {
		item, ok := s.palette(r.ItemID)
		if !ok {
			s.logger.Warn("stored item missing from palette", "look", s.lookID, "item", r.ItemID)
			continue
		}
		s.arr.AddAt(item, r.Pos, r.Scale)
	}
	return nil
}

// Controller exposes the gesture controller for pointer event delivery.
func (s *Session) Controller() *gesture.Controller {
	return s.ctl
}

// LookID returns the persisted look id, empty until the first save of a new
// look completes.
func (s *Session) LookID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookID
}

// Entries returns a snapshot of the current arrangement.
func (s *Session) Entries() []arrangement.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.arr.Entries()
}

// SetEntries replaces the arrangement with an absolute placement snapshot.
// Loaded records are kept, so a following Save diffs the new snapshot against
// the persisted state. Positions and scales are clamped on the way in.
func (s *Session) SetEntries(entries []arrangement.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.arr.Entries() {
		s.arr.Remove(e.Item.ID)
	}
	for _, e := range entries {
		s.arr.AddAt(e.Item, e.Pos, e.Scale)
	}
}

// Scene renders the current arrangement for display. The gesture
// controller's transient drag state flows into the boxes, so an in-progress
// drag shows its live position rather than the committed one.
func (s *Session) Scene(mode canvas.Mode, fitContent bool) canvas.Scene {
	s.mu.Lock()
	entries := s.arr.Entries()
	s.mu.Unlock()
	return canvas.Build(entries, s.profile, canvas.Options{
		Mode:       mode,
		State:      s.ctl,
		FitContent: fitContent,
	})
}

// Save persists the arrangement under the given name.
//
// Validation runs before any network call: the name must be valid and the
// look must contain at least one item. Persistence is bounded by the save
// timeout; hitting it surfaces an ErrCodeTimeout error, though in-flight
// store calls are not forcibly cancelled beyond the context deadline.
// On success a detached goroutine renders the composite and stores
// it best-effort; its failure is never surfaced to the caller.
//
// A partial-apply error from the reconcile engine is returned after local
// state has been updated for the mutations that did land.
func (s *Session) Save(ctx context.Context, name string) error {
	if err := errors.ValidateLookName(name); err != nil {
		return err
	}

	s.mu.Lock()
	entries := s.arr.Entries()
	records := make([]reconcile.Record, len(s.records))
	copy(records, s.records)
	lookID := s.lookID
	s.mu.Unlock()

	if len(entries) == 0 {
		return errors.New(errors.ErrCodeInvalidLook, "a look needs at least one item")
	}

	ctx, cancel := context.WithTimeout(ctx, s.saveTimeout)
	defer cancel()

	if lookID == "" {
		look := &store.Look{Name: name, UserID: s.userID}
		if err := s.st.CreateLook(ctx, look); err != nil {
			return timeoutErr(ctx, err, s.saveTimeout)
		}
		lookID = look.ID
		s.mu.Lock()
		s.lookID = lookID
		s.mu.Unlock()
	}

	plan := reconcile.Diff(records, entries)
	res, applyErr := s.engine.Apply(ctx, s.st, lookID, plan)
	if applyErr != nil && !errors.Is(applyErr, errors.ErrCodePartialApply) {
		return timeoutErr(ctx, applyErr, s.saveTimeout)
	}

	s.mu.Lock()
	s.records = mergeRecords(records, plan, res)
	s.mu.Unlock()

	s.spawnComposite(lookID, entries)
	return applyErr
}

// spawnComposite renders and stores the composite in the background. The
// goroutine gets its own context so it survives the save call returning.
func (s *Session) spawnComposite(lookID string, entries []arrangement.Entry) {
	if s.gen == nil {
		return
	}
	s.composites.Add(1)
	go func() {
		defer s.composites.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		uri, err := s.gen.Generate(ctx, lookID, entries, s.profile)
		if err != nil {
			s.logger.Warn("composite generation failed", "look", lookID, "error", err)
			return
		}
		if err := s.st.UpdateLookComposite(ctx, lookID, uri); err != nil {
			s.logger.Warn("failed to store composite", "look", lookID, "error", err)
		}
	}()
}

// WaitComposites blocks until background composite work has finished.
func (s *Session) WaitComposites() {
	s.composites.Wait()
}

// mergeRecords folds an applied plan into the previous record set: deletes
// drop records, updates overwrite placement values, and the returned create
// batch is appended. Mutations the apply reported as failed keep their old
// record state, so the next diff re-issues them.
func mergeRecords(records []reconcile.Record, plan reconcile.Plan, res reconcile.Result) []reconcile.Record {
	deleted := make(map[string]bool, len(plan.Deletes))
	for _, id := range plan.Deletes {
		if !res.Failed[id] {
			deleted[id] = true
		}
	}

	out := make([]reconcile.Record, 0, len(records)+len(res.Created))
	for _, r := range records {
		if deleted[r.ID] {
			continue
		}
		if upd, ok := plan.Updates[r.ID]; ok && !res.Failed[r.ID] {
			r.Pos = upd.Pos
			r.Scale = upd.Scale
		}
		out = append(out, r)
	}
	return append(out, res.Created...)
}

// timeoutErr converts a failure caused by the save deadline firing into a
// timeout error, so callers can tell an expired save apart from a backend
// rejection.
func timeoutErr(ctx context.Context, err error, timeout time.Duration) error {
	if ctx.Err() == context.DeadlineExceeded {
		return errors.Wrap(errors.ErrCodeTimeout, err, "save timed out after %s", timeout)
	}
	return err
}
