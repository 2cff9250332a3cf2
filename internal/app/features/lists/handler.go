// internal/app/features/lists/handler.go
package lists

import (
	"context"
	"net/http"

	"github.com/dalemusser/hidapi/internal/app/policy/decision"
	"github.com/dalemusser/hidapi/internal/app/system/apperr"
	"github.com/dalemusser/hidapi/internal/app/system/auth"
	"github.com/dalemusser/hidapi/internal/app/system/authz"
	"github.com/dalemusser/hidapi/internal/app/system/respond"
	"github.com/dalemusser/hidapi/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Saver *Saver
	Log   *zap.Logger
}

func NewHandler(saver *Saver, logger *zap.Logger) *Handler {
	return &Handler{Saver: saver, Log: logger}
}

// HandleSave serves POST /v0/lists. "_id" in the body selects an existing
// list; without it a new list is created.
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	a, ok := h.actor(w, r)
	if !ok {
		return
	}
	var body decision.Changes
	if err := respond.Decode(w, r, &body); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	id, _ := body.String("_id")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "save list")
	defer cancel()

	res, err := h.Saver.Save(ctx, a, id, body)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	respond.JSON(w, status, res)
}

// HandleMine serves GET /v0/lists.
func (h *Handler) HandleMine(w http.ResponseWriter, r *http.Request) {
	a, ok := h.actor(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list lists")
	defer cancel()

	ls, err := h.Saver.Mine(ctx, a)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, ls)
}

// HandleDelete serves DELETE /v0/lists/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "delete list", h.Saver.Delete)
}

// HandleFollow serves POST /v0/lists/{id}/follow.
func (h *Handler) HandleFollow(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "follow list", h.Saver.Follow)
}

// HandleUnfollow serves DELETE /v0/lists/{id}/follow.
func (h *Handler) HandleUnfollow(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "unfollow list", h.Saver.Unfollow)
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request, op string, fn func(ctx context.Context, a authz.Actor, id string) error) {
	a, ok := h.actor(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, op)
	defer cancel()

	if err := fn(ctx, a, chi.URLParam(r, "id")); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (authz.Actor, bool) {
	a, ok := auth.ActorFrom(r.Context())
	if !ok {
		respond.Error(w, h.Log, apperr.ErrUnauthenticated)
	}
	return a, ok
}
