// internal/app/features/lists/routes.go
package lists

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleMine)
	r.Post("/", h.HandleSave)
	r.Delete("/{id}", h.HandleDelete)
	r.Post("/{id}/follow", h.HandleFollow)
	r.Delete("/{id}/follow", h.HandleUnfollow)
	return r
}
