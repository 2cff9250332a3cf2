// internal/app/features/contacts/handler.go
package contacts

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

// Handler exposes the contact Saver over HTTP.
type Handler struct {
	Saver *Saver
	Log   *zap.Logger
}

func NewHandler(saver *Saver, logger *zap.Logger) *Handler {
	return &Handler{Saver: saver, Log: logger}
}

// HandleSave serves POST /v0/contacts.
//
// The body is the requested change-set. "_id" selects an existing contact
// and "_profile" the owner of a new one ("new" for a new person).
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
	profileID, _ := body.String("_profile")
	delete(body, "_id")
	delete(body, "_profile")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "save contact")
	defer cancel()

	res, err := h.Saver.Save(ctx, a, SaveRequest{ID: id, ProfileID: profileID, Changes: body})
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

// HandleCheckOut serves POST /v0/contacts/{id}/checkout.
func (h *Handler) HandleCheckOut(w http.ResponseWriter, r *http.Request) {
	a, ok := auth.ActorFrom(r.Context())
	if !ok {
		respond.Error(w, h.Log, apperr.ErrUnauthenticated)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "check out contact")
	defer cancel()

	res, err := h.Saver.CheckOut(ctx, a, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}
