package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AdrienGannerie/gridboard/pkg/grid"
	"github.com/AdrienGannerie/gridboard/pkg/store"
)

func newTestAPI(t *testing.T) (*httptest.Server, *grid.Engine) {
	t.Helper()
	eng := grid.NewEngine(nil)
	err := eng.Attach(context.Background(), store.NewMemory(), grid.Options{
		SlotCount:     4,
		ShrinkToPlace: true,
	})
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	srv := httptest.NewServer(newAPI(eng).routes())
	t.Cleanup(srv.Close)
	return srv, eng
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestAPIAddAndLayout(t *testing.T) {
	srv, _ := newTestAPI(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/items", map[string]any{
		"id": "clock", "width": 2, "height": 1, "mount_to_top": true,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add status = %d", resp.StatusCode)
	}
	var added grid.ItemLayout
	if err := json.NewDecoder(resp.Body).Decode(&added); err != nil {
		t.Fatal(err)
	}
	if added.ID != "clock" || added.Rect() != (grid.Rect{X: 0, Y: 0, W: 2, H: 1}) {
		t.Errorf("added = %+v", added)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/layout", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("layout status = %d", resp.StatusCode)
	}
	var layout layoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&layout); err != nil {
		t.Fatal(err)
	}
	if layout.SlotCount != 4 || len(layout.Dashboard) != 1 || layout.Status != "loaded" {
		t.Errorf("layout = %+v", layout)
	}
}

func TestAPIAddGeneratesID(t *testing.T) {
	srv, _ := newTestAPI(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/items", map[string]any{
		"width": 1, "height": 1,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add status = %d", resp.StatusCode)
	}
	var added grid.ItemLayout
	if err := json.NewDecoder(resp.Body).Decode(&added); err != nil {
		t.Fatal(err)
	}
	if added.ID == "" {
		t.Error("no id generated")
	}
}

func TestAPIPatchRectAndZone(t *testing.T) {
	srv, eng := newTestAPI(t)
	ctx := context.Background()
	seed := func(id string, w, h int) {
		t.Helper()
		it := grid.ItemLayout{ID: id, StartX: -1, StartY: -1, Width: w, Height: h, MinWidth: 1, MinHeight: 1}
		if err := eng.Add(ctx, it, true); err != nil {
			t.Fatal(err)
		}
	}
	seed("a", 2, 1)
	seed("b", 2, 1)

	resp := doJSON(t, http.MethodPatch, srv.URL+"/api/items/a", map[string]any{
		"rect": map[string]int{"x": 0, "y": 2, "w": 2, "h": 1},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch rect status = %d", resp.StatusCode)
	}
	if it, _ := eng.Item("a"); it.StartY != 2 {
		t.Errorf("a at %s after rect patch", it.Rect())
	}

	resp = doJSON(t, http.MethodPatch, srv.URL+"/api/items/a", map[string]any{
		"target": "b", "zone": "left",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch zone status = %d", resp.StatusCode)
	}
	if it, _ := eng.Item("a"); it.Rect() != (grid.Rect{X: 0, Y: 0, W: 2, H: 1}) {
		t.Errorf("a at %s after zone patch", it.Rect())
	}

	// Pointer offsets resolve to a zone server-side.
	resp = doJSON(t, http.MethodPatch, srv.URL+"/api/items/a", map[string]any{
		"target": "b", "pointer_x": 0.5, "pointer_y": 0.9,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch pointer status = %d", resp.StatusCode)
	}
	if it, _ := eng.Item("a"); it.StartY != 1 {
		t.Errorf("a at %s after pointer patch, want row 1", it.Rect())
	}
}

func TestAPIErrors(t *testing.T) {
	srv, eng := newTestAPI(t)
	if err := eng.Add(context.Background(), grid.ItemLayout{ID: "a", StartX: -1, StartY: -1, Width: 2, Height: 1, MinWidth: 1, MinHeight: 1}, true); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"delete unknown", http.MethodDelete, "/api/items/ghost", nil, http.StatusNotFound},
		{"patch without payload", http.MethodPatch, "/api/items/a", map[string]any{}, http.StatusBadRequest},
		{"patch unknown zone", http.MethodPatch, "/api/items/a", map[string]any{"target": "a", "zone": "diagonal"}, http.StatusBadRequest},
		{"add duplicate", http.MethodPost, "/api/items", map[string]any{"id": "a", "width": 1, "height": 1}, http.StatusConflict},
		{"add invalid geometry", http.MethodPost, "/api/items", map[string]any{"id": "bad", "width": 0, "height": 1}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, tt.method, srv.URL+tt.path, tt.body)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
			var body errorResponse
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("error body: %v", err)
			}
			if body.Code == "" {
				t.Error("error response carries no code")
			}
		})
	}
}

func TestAPIEditLifecycle(t *testing.T) {
	srv, eng := newTestAPI(t)
	if err := eng.Add(context.Background(), grid.ItemLayout{ID: "a", StartX: -1, StartY: -1, Width: 2, Height: 1, MinWidth: 1, MinHeight: 1}, true); err != nil {
		t.Fatal(err)
	}

	post := func(path string) int {
		t.Helper()
		resp := doJSON(t, http.MethodPost, srv.URL+path, nil)
		return resp.StatusCode
	}

	if got := post("/api/edit"); got != http.StatusNoContent {
		t.Fatalf("start edit status = %d", got)
	}
	// Opening a second session conflicts.
	if got := post("/api/edit"); got != http.StatusConflict {
		t.Fatalf("nested start edit status = %d", got)
	}

	resp := doJSON(t, http.MethodPatch, srv.URL+"/api/items/a", map[string]any{
		"rect": map[string]int{"x": 2, "y": 0, "w": 2, "h": 1},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch status = %d", resp.StatusCode)
	}

	if got := post("/api/edit/cancel"); got != http.StatusNoContent {
		t.Fatalf("cancel status = %d", got)
	}
	if it, _ := eng.Item("a"); it.Rect() != (grid.Rect{X: 0, Y: 0, W: 2, H: 1}) {
		t.Errorf("a at %s after cancel, want its pre-session position", it.Rect())
	}
	if eng.Editing() {
		t.Error("still editing after cancel")
	}
}

func TestResolveZone(t *testing.T) {
	fp := func(v float64) *float64 { return &v }
	tests := []struct {
		name    string
		req     patchItemRequest
		want    grid.DropZone
		wantErr bool
	}{
		{"named zone", patchItemRequest{Zone: "left"}, grid.DropLeft, false},
		{"empty defaults to center", patchItemRequest{}, grid.DropCenter, false},
		{"pointer offsets", patchItemRequest{PointerX: fp(0.5), PointerY: fp(0.1)}, grid.DropTop, false},
		{"unknown zone", patchItemRequest{Zone: "diagonal"}, grid.DropCenter, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveZone(tt.req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("resolveZone = %s, want %s", got, tt.want)
			}
		})
	}
}
