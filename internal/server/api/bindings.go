package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ayusman/mudra/internal/store"
)

// BindingHandler serves the gesture tables: finger-vector bindings and pinch
// rules. Changes apply to sessions started afterwards.
type BindingHandler struct {
	store *store.Store
}

// NewBindingHandler creates a BindingHandler backed by s.
func NewBindingHandler(s *store.Store) *BindingHandler {
	return &BindingHandler{store: s}
}

// Register mounts the binding routes on r.
func (h *BindingHandler) Register(r *mux.Router) {
	r.HandleFunc("/bindings", h.list).Methods(http.MethodGet)
	r.HandleFunc("/bindings", h.create).Methods(http.MethodPost)
	r.HandleFunc("/bindings/{id}", h.get).Methods(http.MethodGet)
	r.HandleFunc("/bindings/{id}", h.delete).Methods(http.MethodDelete)

	r.HandleFunc("/pinches", h.listPinches).Methods(http.MethodGet)
	r.HandleFunc("/pinches", h.createPinch).Methods(http.MethodPost)
	r.HandleFunc("/pinches/{id}", h.deletePinch).Methods(http.MethodDelete)
}

type createBindingRequest struct {
	Mode     string `json:"mode"`
	Pattern  string `json:"pattern"`
	Label    string `json:"label"`
	Priority int    `json:"priority"`
}

type listBindingsResponse struct {
	Bindings []*store.Binding `json:"bindings"`
}

type createPinchRequest struct {
	Mode        string  `json:"mode"`
	PointA      int     `json:"point_a"`
	PointB      int     `json:"point_b"`
	MaxDistance float64 `json:"max_distance"`
	Label       string  `json:"label"`
	RequireUp   string  `json:"require_up"`
	Priority    int     `json:"priority"`
}

type listPinchesResponse struct {
	Pinches []*store.PinchRule `json:"pinches"`
}

// list handles GET /api/bindings, optionally filtered by ?mode=.
func (h *BindingHandler) list(w http.ResponseWriter, r *http.Request) {
	bindings, err := h.store.Bindings().List(r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list bindings")
		return
	}
	writeJSON(w, http.StatusOK, listBindingsResponse{Bindings: bindings})
}

// create handles POST /api/bindings.
func (h *BindingHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createBindingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	b := &store.Binding{
		Mode:     req.Mode,
		Pattern:  req.Pattern,
		Label:    req.Label,
		Priority: req.Priority,
	}
	if err := h.store.Bindings().Create(b); err != nil {
		writeStoreError(w, err, "Failed to create binding")
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// get handles GET /api/bindings/{id}.
func (h *BindingHandler) get(w http.ResponseWriter, r *http.Request) {
	b, err := h.store.Bindings().GetByID(mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err, "Failed to get binding")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// delete handles DELETE /api/bindings/{id}.
func (h *BindingHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Bindings().Delete(mux.Vars(r)["id"]); err != nil {
		writeStoreError(w, err, "Failed to delete binding")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BindingHandler) listPinches(w http.ResponseWriter, r *http.Request) {
	rules, err := h.store.Pinches().List(r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list pinch rules")
		return
	}
	writeJSON(w, http.StatusOK, listPinchesResponse{Pinches: rules})
}

func (h *BindingHandler) createPinch(w http.ResponseWriter, r *http.Request) {
	var req createPinchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p := &store.PinchRule{
		Mode:        req.Mode,
		PointA:      req.PointA,
		PointB:      req.PointB,
		MaxDistance: req.MaxDistance,
		Label:       req.Label,
		RequireUp:   req.RequireUp,
		Priority:    req.Priority,
	}
	if err := h.store.Pinches().Create(p); err != nil {
		writeStoreError(w, err, "Failed to create pinch rule")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *BindingHandler) deletePinch(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Pinches().Delete(mux.Vars(r)["id"]); err != nil {
		writeStoreError(w, err, "Failed to delete pinch rule")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeStoreError maps store sentinel errors onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, store.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
