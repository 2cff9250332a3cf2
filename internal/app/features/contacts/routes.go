// internal/app/features/contacts/routes.go
package contacts

import "github.com/go-chi/chi/v5"

// Routes mounts the contact endpoints (typically under "/v0/contacts").
// Callers wrap the router with the auth middleware.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleSave)
	r.Post("/{id}/checkout", h.HandleCheckOut)
	return r
}
