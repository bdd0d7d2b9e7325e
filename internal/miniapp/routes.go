package miniapp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/api/can-spin", h.HandleCanSpin)
	r.Post("/api/spin", h.HandleSpin)
	r.Get("/api/health", h.HandleHealth)
}

// RegisterStatic serves the wheel UI from dir at the root path.
func RegisterStatic(r chi.Router, dir string) {
	fs := http.FileServer(http.Dir(dir))
	r.Handle("/*", fs)
}
