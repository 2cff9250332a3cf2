// internal/app/features/services/routes.go
package services

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleList)
	r.Post("/", h.HandleSave)
	r.Delete("/{id}", h.HandleDelete)
	return r
}
