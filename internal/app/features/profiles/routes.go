// internal/app/features/profiles/routes.go
package profiles

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/{id}", h.HandleSave)
	return r
}
