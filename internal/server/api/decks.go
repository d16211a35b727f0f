package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/slides"
)

// DeckHandler lists the slide decks under the presentation root.
type DeckHandler struct {
	root string
}

// NewDeckHandler creates a DeckHandler for root.
func NewDeckHandler(root string) *DeckHandler {
	return &DeckHandler{root: root}
}

// Register mounts GET /decks on r.
func (h *DeckHandler) Register(r *mux.Router) {
	r.HandleFunc("/decks", h.list).Methods(http.MethodGet)
}

type listDecksResponse struct {
	Decks []string `json:"decks"`
}

func (h *DeckHandler) list(w http.ResponseWriter, r *http.Request) {
	names, err := slides.ListDecks(h.root)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list decks")
		return
	}
	writeJSON(w, http.StatusOK, listDecksResponse{Decks: names})
}

// PluginHandler lists discovered plugins and rescans the plugin directory.
type PluginHandler struct {
	mgr *plugin.Manager
}

// NewPluginHandler creates a PluginHandler over mgr.
func NewPluginHandler(mgr *plugin.Manager) *PluginHandler {
	return &PluginHandler{mgr: mgr}
}

// Register mounts the plugin routes on r.
func (h *PluginHandler) Register(r *mux.Router) {
	r.HandleFunc("/plugins", h.list).Methods(http.MethodGet)
	r.HandleFunc("/plugins/reload", h.reload).Methods(http.MethodPost)
}

type listPluginsResponse struct {
	Plugins []plugin.Manifest `json:"plugins"`
}

func (h *PluginHandler) list(w http.ResponseWriter, r *http.Request) {
	plugins := h.mgr.List()
	resp := listPluginsResponse{Plugins: make([]plugin.Manifest, 0, len(plugins))}
	for _, p := range plugins {
		resp.Plugins = append(resp.Plugins, p.Manifest)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *PluginHandler) reload(w http.ResponseWriter, r *http.Request) {
	if err := h.mgr.Discover(); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to discover plugins")
		return
	}
	h.list(w, r)
}
