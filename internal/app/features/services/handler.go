// internal/app/features/services/handler.go
package services

import (
	"net/http"

	"github.com/dalemusser/hidapi/internal/app/policy/decision"
	"github.com/dalemusser/hidapi/internal/app/system/apperr"
	"github.com/dalemusser/hidapi/internal/app/system/auth"
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

// HandleSave serves POST /v0/services.
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	a, ok := auth.ActorFrom(r.Context())
	if !ok {
		respond.Error(w, h.Log, apperr.ErrUnauthenticated)
		return
	}
	var body decision.Changes
	if err := respond.Decode(w, r, &body); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	id, _ := body.String("_id")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "save service")
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

// HandleList serves GET /v0/services?locationId=...
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list services")
	defer cancel()

	svcs, err := h.Saver.ListAt(ctx, r.URL.Query().Get("locationId"))
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, svcs)
}

// HandleDelete serves DELETE /v0/services/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	a, ok := auth.ActorFrom(r.Context())
	if !ok {
		respond.Error(w, h.Log, apperr.ErrUnauthenticated)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "delete service")
	defer cancel()

	if err := h.Saver.Delete(ctx, a, chi.URLParam(r, "id")); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
