// Package api serves canvases over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/inamate/inkcanvas/internal/auth"
	"github.com/inamate/inkcanvas/internal/board"
	"github.com/inamate/inkcanvas/internal/canvas"
	"github.com/inamate/inkcanvas/internal/document"
	"github.com/inamate/inkcanvas/internal/geom"
	"github.com/inamate/inkcanvas/internal/metrics"
)

// maxImportBytes bounds the body of a stroke import.
const maxImportBytes = 8 << 20

type Handler struct {
	store *board.Store
}

func NewHandler(store *board.Store) *Handler {
	return &Handler{store: store}
}

// Routes registers the canvas routes on r.
func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/canvases", h.List).Methods("GET")
	r.HandleFunc("/canvases", h.Create).Methods("POST")
	r.HandleFunc("/canvases/{canvasId}", h.Get).Methods("GET")
	r.HandleFunc("/canvases/{canvasId}", h.Delete).Methods("DELETE")
	r.HandleFunc("/canvases/{canvasId}/strokes", h.Strokes).Methods("GET")
	r.HandleFunc("/canvases/{canvasId}/strokes", h.Import).Methods("POST")
	r.HandleFunc("/canvases/{canvasId}/strokes/{strokeId}", h.DeleteStroke).Methods("DELETE")
	r.HandleFunc("/canvases/{canvasId}/clear", h.Clear).Methods("POST")
	r.HandleFunc("/canvases/{canvasId}/save", h.Save).Methods("POST")
	r.HandleFunc("/canvases/{canvasId}/restore", h.Restore).Methods("POST")
	r.HandleFunc("/canvases/{canvasId}/hit", h.Hit).Methods("GET")
}

type createRequest struct {
	ID     string  `json:"id"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type restoreRequest struct {
	Level *int `json:"level"`
}

type hitResponse struct {
	Hits []string `json:"hits,omitempty"`
	Hit  *bool    `json:"hit,omitempty"`
}

func (h *Handler) canvas(w http.ResponseWriter, r *http.Request) (*canvas.Canvas, bool) {
	c, err := h.store.Get(mux.Vars(r)["canvasId"])
	if err != nil {
		handleServiceError(w, err)
		return nil, false
	}
	return c, true
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.List())
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
	}
	if req.Width < 0 || req.Height < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "width and height must not be negative"})
		return
	}

	var opts []canvas.Option
	if req.Width > 0 || req.Height > 0 {
		opts = append(opts, canvas.WithSize(req.Width, req.Height))
	}
	c, err := h.store.Create(req.ID, opts...)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	slog.Info("canvas created over http", "canvas", c.ID(), "user", auth.UserIDFromContext(r.Context()))
	writeJSON(w, http.StatusCreated, summarize(c))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := h.canvas(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c.Document(r.URL.Query().Get("points") == "true"))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(mux.Vars(r)["canvasId"]); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Strokes exports the canvas as interchange paths.
func (h *Handler) Strokes(w http.ResponseWriter, r *http.Request) {
	c, ok := h.canvas(w, r)
	if !ok {
		return
	}
	size := c.Size()
	exported := c.Export(r.URL.Query().Get("points") == "true")
	paths := make([]document.Path, len(exported))
	for i, p := range exported {
		paths[i] = document.Path{Size: size, Path: p}
	}
	writeJSON(w, http.StatusOK, paths)
}

// Import adds interchange paths on top of the canvas.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	c, ok := h.canvas(w, r)
	if !ok {
		return
	}
	var paths []document.Path
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxImportBytes)).Decode(&paths); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	ids, err := c.Import(paths)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string][]string{"ids": ids})
}

func (h *Handler) DeleteStroke(w http.ResponseWriter, r *http.Request) {
	c, ok := h.canvas(w, r)
	if !ok {
		return
	}
	if _, err := c.RemoveStrokes(mux.Vars(r)["strokeId"]); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	c, ok := h.canvas(w, r)
	if !ok {
		return
	}
	removed := c.Clear()
	if removed == nil {
		removed = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"removed": removed})
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	c, ok := h.canvas(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"level": c.Save()})
}

// Restore reverts to the level in the body; an empty body pops one level.
func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	c, ok := h.canvas(w, r)
	if !ok {
		return
	}
	var req restoreRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
	}
	level := -1
	if req.Level != nil {
		level = *req.Level
	}
	changed, err := c.Restore(level)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if changed == nil {
		changed = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"depth": c.Depth(), "changed": changed})
}

// Hit reports the strokes under ?x=&y=, or with ?stroke= whether that one
// stroke is hit and visible.
func (h *Handler) Hit(w http.ResponseWriter, r *http.Request) {
	c, ok := h.canvas(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "x and y must be numbers"})
		return
	}
	metrics.HitTests.Inc()
	p := geom.Pt(x, y)

	if id := q.Get("stroke"); id != "" {
		hit, err := c.HitTestStroke(p, id)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, hitResponse{Hit: &hit})
		return
	}
	writeJSON(w, http.StatusOK, hitResponse{Hits: c.HitTest(p)})
}

func summarize(c *canvas.Canvas) board.Summary {
	size := c.Size()
	return board.Summary{
		ID:      c.ID(),
		Strokes: c.Len(),
		Depth:   c.Depth(),
		Width:   size.Width,
		Height:  size.Height,
	}
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, board.ErrNotFound), errors.Is(err, canvas.ErrUnknownID):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, board.ErrExists), errors.Is(err, canvas.ErrDuplicateID):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, canvas.ErrInvalidSaveCount):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		slog.Error("canvas request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
