// internal/app/features/profiles/handler.go
package profiles

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

// HandleSave serves POST /v0/profiles/{id}.
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

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "save profile")
	defer cancel()

	res, err := h.Saver.Save(ctx, a, chi.URLParam(r, "id"), body)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}
