package api

import (
	"errors"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/input"
	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/internal/slides"
	"github.com/ayusman/mudra/internal/store"
)

// Controller is the session control the API drives.
type Controller interface {
	Start(req session.StartRequest) (session.StartResult, error)
	Stop() session.StopResult
	Status() session.Status
}

// SessionHandler starts, stops and reports activation sessions.
type SessionHandler struct {
	ctrl  Controller
	store *store.Store
}

// NewSessionHandler creates a SessionHandler. s may be nil, in which case
// the session log is not served.
func NewSessionHandler(ctrl Controller, s *store.Store) *SessionHandler {
	return &SessionHandler{ctrl: ctrl, store: s}
}

// Register mounts the session routes on r.
func (h *SessionHandler) Register(r *mux.Router) {
	r.HandleFunc("/session", h.status).Methods(http.MethodGet)
	r.HandleFunc("/session/start", h.start).Methods(http.MethodPost)
	r.HandleFunc("/session/stop", h.stop).Methods(http.MethodPost)
	if h.store != nil {
		r.HandleFunc("/sessions", h.history).Methods(http.MethodGet)
	}
}

type listSessionsResponse struct {
	Sessions []*store.SessionRecord `json:"sessions"`
}

// status handles GET /api/session.
func (h *SessionHandler) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ctrl.Status())
}

// start handles POST /api/session/start with {"mode": ..., "deck": ...}.
// A running session answers 409 and is left alone.
func (h *SessionHandler) start(w http.ResponseWriter, r *http.Request) {
	var req session.StartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, session.StartResult{Status: session.ResultError, Error: "Invalid request body"})
		return
	}

	res, err := h.ctrl.Start(req)
	switch {
	case err != nil:
		writeJSON(w, startErrorStatus(err), res)
	case res.Status == session.ResultAlreadyRunning:
		writeJSON(w, http.StatusConflict, res)
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

// stop handles POST /api/session/stop. Stopping when idle is not an error.
func (h *SessionHandler) stop(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ctrl.Stop())
}

// history handles GET /api/sessions?limit=N.
func (h *SessionHandler) history(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	records, err := h.store.Sessions().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}
	writeJSON(w, http.StatusOK, listSessionsResponse{Sessions: records})
}

func startErrorStatus(err error) int {
	switch {
	case errors.Is(err, gesture.ErrUnknownMode),
		errors.Is(err, session.ErrDeckRequired),
		errors.Is(err, slides.ErrInvalidDeck),
		errors.Is(err, slides.ErrEmptyDeck),
		errors.Is(err, fs.ErrNotExist):
		return http.StatusBadRequest
	case errors.Is(err, input.ErrBusy):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
