package router

import (
	"net/http"

	"cafe-media/internal/http-server/handler/photo"
	"cafe-media/internal/http-server/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/wb-go/wbf/zlog"
)

type Handler struct {
	PhotoHandler *photo.PhotoHandler
}

func SetupRouter(h *Handler, logger *zlog.Zerolog) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RecoveryMiddleware(logger))
	r.Use(middleware.LoggingMiddleware(logger))

	r.Route("/api", func(r chi.Router) {
		r.Route("/cafes/{id}", func(r chi.Router) {
			r.Route("/photos", func(r chi.Router) {
				r.Get("/", h.PhotoHandler.ListPhotos)
				r.Post("/presign", h.PhotoHandler.PresignCafePhoto)
				r.Post("/confirm", h.PhotoHandler.ConfirmCafePhoto)
				r.Patch("/order", h.PhotoHandler.ReorderPhotos)
				r.Patch("/{photoId}/cover", h.PhotoHandler.SetCover)
				r.Delete("/{photoId}", h.PhotoHandler.DeletePhoto)
			})

			r.Post("/submissions/photos/presign", h.PhotoHandler.PresignSubmission)
			r.Post("/submissions/photos/confirm", h.PhotoHandler.ConfirmSubmission)
		})

		r.Post("/me/avatar/presign", h.PhotoHandler.PresignAvatar)
		r.Post("/me/avatar/confirm", h.PhotoHandler.ConfirmAvatar)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})
	})

	return r
}
