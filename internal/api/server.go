// Package api exposes looks and placements over HTTP for the serve command.
//
// The API is a thin shell: request bodies are decoded into the same types
// the library packages use, the reconcile engine does the diffing, and the
// store does the persistence. Composite generation is the only long-running
// endpoint and runs synchronously at the client's request.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/areebaatariq/turnstyle-platform-sub001/internal/store"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/arrangement"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/composite"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/errors"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/geometry"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/reconcile"
)

// Server handles the HTTP API.
type Server struct {
	store     store.Store
	generator *composite.Generator
	engine    *reconcile.Engine
	logger    *log.Logger
}

// NewServer creates a server. The generator may be nil, which disables the
// composite endpoint.
func NewServer(st store.Store, gen *composite.Generator, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		store:     st,
		generator: gen,
		engine:    reconcile.NewEngine(logger),
		logger:    logger,
	}
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/looks", func(r chi.Router) {
		r.Get("/", s.handleListLooks)
		r.Post("/", s.handleCreateLook)
		r.Route("/{lookID}", func(r chi.Router) {
			r.Get("/", s.handleGetLook)
			r.Delete("/", s.handleDeleteLook)
			r.Get("/placements", s.handleListPlacements)
			r.Put("/arrangement", s.handleSaveArrangement)
			r.Post("/composite", s.handleGenerateComposite)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListLooks(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		s.respondError(w, errors.New(errors.ErrCodeInvalidInput, "user_id query parameter is required"))
		return
	}
	looks, err := s.store.ListLooks(r.Context(), userID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if looks == nil {
		looks = []store.Look{}
	}
	s.respondJSON(w, http.StatusOK, looks)
}

type createLookRequest struct {
	Name   string `json:"name"`
	UserID string `json:"user_id"`
}

func (s *Server) handleCreateLook(w http.ResponseWriter, r *http.Request) {
	var req createLookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}
	if err := errors.ValidateLookName(req.Name); err != nil {
		s.respondError(w, err)
		return
	}
	look := &store.Look{Name: req.Name, UserID: req.UserID}
	if err := s.store.CreateLook(r.Context(), look); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, look)
}

func (s *Server) handleGetLook(w http.ResponseWriter, r *http.Request) {
	look, err := s.store.GetLook(r.Context(), chi.URLParam(r, "lookID"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, look)
}

func (s *Server) handleDeleteLook(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteLook(r.Context(), chi.URLParam(r, "lookID")); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListPlacements(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.ListPlacements(r.Context(), chi.URLParam(r, "lookID"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	if records == nil {
		records = []reconcile.Record{}
	}
	s.respondJSON(w, http.StatusOK, records)
}

// placementEntry is one desired placement in a save request.
type placementEntry struct {
	Item  arrangement.Item  `json:"item"`
	Pos   geometry.Position `json:"pos"`
	Scale float64           `json:"scale"`
}

type saveArrangementRequest struct {
	Entries []placementEntry `json:"entries"`
}

type saveArrangementResponse struct {
	Created int                `json:"created"`
	Updated int                `json:"updated"`
	Deleted int                `json:"deleted"`
	Records []reconcile.Record `json:"records"`
}

// handleSaveArrangement diffs the submitted entries against the stored
// records and applies the plan.
func (s *Server) handleSaveArrangement(w http.ResponseWriter, r *http.Request) {
	lookID := chi.URLParam(r, "lookID")
	if _, err := s.store.GetLook(r.Context(), lookID); err != nil {
		s.respondError(w, err)
		return
	}

	var req saveArrangementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}

	entries := make([]arrangement.Entry, 0, len(req.Entries))
	for _, e := range req.Entries {
		if err := errors.ValidateItemID(e.Item.ID); err != nil {
			s.respondError(w, err)
			return
		}
		entries = append(entries, arrangement.Entry{Item: e.Item, Pos: e.Pos, Scale: e.Scale})
	}

	records, err := s.store.ListPlacements(r.Context(), lookID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	plan := reconcile.Diff(records, entries)
	if _, err := s.engine.Apply(r.Context(), s.store, lookID, plan); err != nil {
		s.respondError(w, err)
		return
	}

	after, err := s.store.ListPlacements(r.Context(), lookID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, saveArrangementResponse{
		Created: len(plan.Creates),
		Updated: len(plan.Updates),
		Deleted: len(plan.Deletes),
		Records: after,
	})
}

type compositeRequest struct {
	Entries     []placementEntry `json:"entries"`
	DeviceClass string           `json:"device_class,omitempty"`
}

type compositeResponse struct {
	CompositeImage string `json:"composite_image"`
}

// handleGenerateComposite renders the submitted entries and stores the
// result on the look. The request carries the entries because placement
// records do not include image references.
func (s *Server) handleGenerateComposite(w http.ResponseWriter, r *http.Request) {
	if s.generator == nil {
		s.respondError(w, errors.New(errors.ErrCodeUnsupported, "composite generation is not configured"))
		return
	}

	lookID := chi.URLParam(r, "lookID")
	if _, err := s.store.GetLook(r.Context(), lookID); err != nil {
		s.respondError(w, err)
		return
	}

	var req compositeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}

	switch geometry.DeviceClass(req.DeviceClass) {
	case "", geometry.DeviceRegular, geometry.DeviceCompact:
	default:
		s.respondError(w, errors.New(errors.ErrCodeInvalidProfile, "unknown device class %q", req.DeviceClass))
		return
	}

	entries := make([]arrangement.Entry, 0, len(req.Entries))
	for _, e := range req.Entries {
		entries = append(entries, arrangement.Entry{Item: e.Item, Pos: e.Pos, Scale: e.Scale})
	}

	profile := geometry.ProfileFor(geometry.DeviceClass(req.DeviceClass))
	uri, err := s.generator.Generate(r.Context(), lookID, entries, profile)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if err := s.store.UpdateLookComposite(r.Context(), lookID, uri); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, compositeResponse{CompositeImage: uri})
}
