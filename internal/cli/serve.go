package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	apperrors "github.com/AdrienGannerie/gridboard/pkg/errors"
	"github.com/AdrienGannerie/gridboard/pkg/grid"
)

func newServeCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the layout engine over an HTTP API",
		Long: `Serve attaches the layout engine to the configured store and exposes it
over a JSON HTTP API: read the layout, add, move, resize and delete items,
and drive the edit-session lifecycle.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext(cmd, configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cc.cfg.Serve.Addr = addr
			}
			eng, cleanup, err := cc.attachEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			srv := &http.Server{
				Addr:              cc.cfg.Serve.Addr,
				Handler:           newAPI(eng).routes(),
				ReadHeaderTimeout: 5 * time.Second,
			}
			go func() {
				<-cc.ctx.Done()
				shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdown)
			}()

			cc.logger.Info("serving dashboard", "dashboard", cc.cfg.Dashboard, "addr", cc.cfg.Serve.Addr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides config)")
	return cmd
}

// api serves one engine over HTTP. Engine mutations are single-threaded by
// design, so every mutating route holds the request serializer.
type api struct {
	eng *grid.Engine
	sem chan struct{}
}

func newAPI(eng *grid.Engine) *api {
	return &api{eng: eng, sem: make(chan struct{}, 1)}
}

func (a *api) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Route("/api", func(r chi.Router) {
		r.Get("/layout", a.handleLayout)
		r.Post("/items", a.serialized(a.handleAddItem))
		r.Delete("/items/{id}", a.serialized(a.handleDeleteItem))
		r.Patch("/items/{id}", a.serialized(a.handlePatchItem))
		r.Post("/edit", a.serialized(a.handleStartEdit))
		r.Post("/edit/confirm", a.serialized(a.handleExitEdit(true)))
		r.Post("/edit/cancel", a.serialized(a.handleExitEdit(false)))
	})
	return r
}

// serialized funnels mutating requests through one slot at a time: the
// engine is not safe for concurrent mutation and the HTTP server is the only
// concurrent caller in this process.
func (a *api) serialized(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.sem <- struct{}{}
		defer func() { <-a.sem }()
		h(w, r)
	}
}

// layoutResponse is the GET /api/layout body.
type layoutResponse struct {
	Dashboard []grid.ItemLayout `json:"items"`
	SlotCount int               `json:"slot_count"`
	Editing   bool              `json:"editing"`
	Status    string            `json:"status"`
}

func (a *api) handleLayout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, layoutResponse{
		Dashboard: a.eng.Items(),
		SlotCount: a.eng.SlotCount(),
		Editing:   a.eng.Editing(),
		Status:    a.eng.Status().String(),
	})
}

// addItemRequest is the POST /api/items body. A missing id gets a generated
// UUID.
type addItemRequest struct {
	grid.ItemLayout
	MountToTop bool `json:"mount_to_top"`
}

func (a *api) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.New(apperrors.ErrCodeInvalidInput, "decode body: %v", err))
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if err := apperrors.ValidateItemID(req.ID); err != nil {
		writeError(w, err)
		return
	}
	if req.MinWidth == 0 {
		req.MinWidth = 1
	}
	if req.MinHeight == 0 {
		req.MinHeight = 1
	}
	if err := a.eng.Add(r.Context(), req.ItemLayout, req.MountToTop); err != nil {
		writeError(w, err)
		return
	}
	it, _ := a.eng.Item(req.ID)
	writeJSON(w, http.StatusCreated, it)
}

func (a *api) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.eng.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// patchItemRequest is the PATCH /api/items/{id} body. Either a target
// rectangle or a drop-zone insertion relative to another item.
type patchItemRequest struct {
	Rect   *grid.Rect `json:"rect,omitempty"`
	Target string     `json:"target,omitempty"`
	Zone   string     `json:"zone,omitempty"`
	// PointerX/PointerY are the pointer offset normalized to the target's
	// bounding box; used when Zone is empty.
	PointerX *float64 `json:"pointer_x,omitempty"`
	PointerY *float64 `json:"pointer_y,omitempty"`
}

func (a *api) handlePatchItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req patchItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.New(apperrors.ErrCodeInvalidInput, "decode body: %v", err))
		return
	}
	var err error
	switch {
	case req.Target != "":
		zone, zerr := resolveZone(req)
		if zerr != nil {
			writeError(w, zerr)
			return
		}
		err = a.eng.InsertNear(r.Context(), id, req.Target, zone)
	case req.Rect != nil:
		err = a.eng.PlaceAt(r.Context(), id, *req.Rect)
	default:
		writeError(w, apperrors.New(apperrors.ErrCodeInvalidInput, "need rect or target"))
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	it, _ := a.eng.Item(id)
	writeJSON(w, http.StatusOK, it)
}

func resolveZone(req patchItemRequest) (grid.DropZone, error) {
	if req.Zone == "" {
		if req.PointerX != nil && req.PointerY != nil {
			return grid.ZoneAt(*req.PointerX, *req.PointerY), nil
		}
		return grid.DropCenter, nil
	}
	switch req.Zone {
	case "top":
		return grid.DropTop, nil
	case "bottom":
		return grid.DropBottom, nil
	case "left":
		return grid.DropLeft, nil
	case "right":
		return grid.DropRight, nil
	case "center":
		return grid.DropCenter, nil
	default:
		return grid.DropCenter, apperrors.New(apperrors.ErrCodeInvalidZone, "unknown drop zone %q", req.Zone)
	}
}

func (a *api) handleStartEdit(w http.ResponseWriter, r *http.Request) {
	if err := a.eng.StartEditing(); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleExitEdit(confirm bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := a.eng.ExitEditing(r.Context(), confirm); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// errorResponse is the JSON body of every non-2xx response.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := apperrors.GetCode(err)
	switch {
	case errors.Is(err, grid.ErrUnknownItem):
		status, code = http.StatusNotFound, apperrors.ErrCodeItemNotFound
	case errors.Is(err, grid.ErrDuplicateItem),
		errors.Is(err, grid.ErrInvalidItem),
		errors.Is(err, grid.ErrEditing),
		errors.Is(err, grid.ErrNoPlacement):
		status, code = http.StatusConflict, apperrors.ErrCodeInvalidItem
	case errors.Is(err, grid.ErrConfiguration):
		status, code = http.StatusUnprocessableEntity, apperrors.ErrCodeInvalidConfig
	case errors.Is(err, grid.ErrNotAttached):
		status, code = http.StatusServiceUnavailable, apperrors.ErrCodeInternal
	case errors.Is(err, grid.ErrStore):
		status, code = http.StatusBadGateway, apperrors.ErrCodeStore
	case code == apperrors.ErrCodeInvalidInput, code == apperrors.ErrCodeInvalidZone, code == apperrors.ErrCodeInvalidItem:
		status = http.StatusBadRequest
	}
	if code == "" {
		code = apperrors.ErrCodeInternal
	}
	writeJSON(w, status, errorResponse{Code: string(code), Message: apperrors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
