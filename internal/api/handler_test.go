package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/inkcanvas/internal/board"
	"github.com/inamate/inkcanvas/internal/canvas"
	"github.com/inamate/inkcanvas/internal/document"
	"github.com/inamate/inkcanvas/internal/geom"
)

func newRouter(store *board.Store) *mux.Router {
	r := mux.NewRouter()
	NewHandler(store).Routes(r.PathPrefix("/api").Subrouter())
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func TestCanvasCRUD(t *testing.T) {
	r := newRouter(board.NewStore(canvas.WithSize(100, 50)))

	rec := do(t, r, http.MethodPost, "/api/canvases", `{"id":"c1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	sum := decode[board.Summary](t, rec)
	assert.Equal(t, board.Summary{ID: "c1", Depth: 1, Width: 100, Height: 50}, sum)

	rec = do(t, r, http.MethodPost, "/api/canvases", `{"id":"c1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/canvases", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	generated := decode[board.Summary](t, rec)
	assert.NotEmpty(t, generated.ID)

	rec = do(t, r, http.MethodGet, "/api/canvases", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]board.Summary](t, rec), 2)

	rec = do(t, r, http.MethodGet, "/api/canvases/c1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := decode[document.Canvas](t, rec)
	assert.Equal(t, "c1", doc.ID)
	assert.Equal(t, 1, doc.Depth)

	assert.Equal(t, http.StatusNoContent, do(t, r, http.MethodDelete, "/api/canvases/c1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodDelete, "/api/canvases/c1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/api/canvases/c1/strokes", "").Code)

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/api/canvases", `{"width":-1}`).Code)
}

func TestImportExportAndHit(t *testing.T) {
	store := board.NewStore(canvas.WithSize(200, 100), canvas.WithHitSlop(geom.UniformHitSlop(2)))
	_, err := store.Create("c1")
	require.NoError(t, err)
	r := newRouter(store)

	// Drawn on a surface half as wide: coordinates double on import.
	body := `[{"drawer":"alice","size":{"width":100,"height":50},
		"path":{"id":"p1","color":4278190080,"width":4,"points":[{"x":0,"y":0},{"x":5,"y":0},{"x":10,"y":0}]}}]`
	rec := do(t, r, http.MethodPost, "/api/canvases/c1/strokes", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, map[string][]string{"ids": {"p1"}}, decode[map[string][]string](t, rec))

	assert.Equal(t, http.StatusConflict, do(t, r, http.MethodPost, "/api/canvases/c1/strokes", body).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/api/canvases/c1/strokes", `{`).Code)

	rec = do(t, r, http.MethodGet, "/api/canvases/c1/strokes?points=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	paths := decode[[]document.Path](t, rec)
	require.Len(t, paths, 1)
	assert.Equal(t, document.Size{Width: 200, Height: 100}, paths[0].Size)
	assert.Equal(t, geom.Pt(20, 0), paths[0].Path.Points[2])

	rec = do(t, r, http.MethodGet, "/api/canvases/c1/strokes", "")
	paths = decode[[]document.Path](t, rec)
	assert.Empty(t, paths[0].Path.Points)

	rec = do(t, r, http.MethodGet, "/api/canvases/c1/hit?x=10&y=0.5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"hits":["p1"]}`, rec.Body.String())

	rec = do(t, r, http.MethodGet, "/api/canvases/c1/hit?x=10&y=40&stroke=p1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"hit":false}`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/api/canvases/c1/hit?x=1&y=1&stroke=zz", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/api/canvases/c1/hit?x=a&y=1", "").Code)

	assert.Equal(t, http.StatusNoContent, do(t, r, http.MethodDelete, "/api/canvases/c1/strokes/p1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodDelete, "/api/canvases/c1/strokes/p1", "").Code)
}

func TestSaveRestoreClear(t *testing.T) {
	store := board.NewStore()
	c, err := store.Create("c1")
	require.NoError(t, err)
	_, err = c.CreateStroke(canvas.StrokeParams{ID: "s1"})
	require.NoError(t, err)
	r := newRouter(store)

	rec := do(t, r, http.MethodPost, "/api/canvases/c1/save", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"level":1}`, rec.Body.String())

	width := 12.0
	require.NoError(t, c.SetStrokeStyle("s1", nil, &width))

	rec = do(t, r, http.MethodPost, "/api/canvases/c1/restore", `{"level":7}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/canvases/c1/restore", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"depth":1,"changed":["s1"]}`, rec.Body.String())

	rec = do(t, r, http.MethodPost, "/api/canvases/c1/clear", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"removed":["s1"]}`, rec.Body.String())

	rec = do(t, r, http.MethodPost, "/api/canvases/c1/clear", "")
	assert.JSONEq(t, `{"removed":[]}`, rec.Body.String())
}
