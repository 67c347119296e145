package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/LunZaiZai0223/YelpCamp-v2/internal/handler"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/middleware"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/platform/logger"
)

// New wires the HTTP routes. Every request passes through logging, the form
// method override and session tracking; mutating routes additionally require
// a logged-in session.
func New(
	campgrounds *handler.CampgroundHandler,
	users *handler.UserHandler,
	reviews *handler.ReviewHandler,
	renderer *handler.Renderer,
	sessions *middleware.SessionManager,
	staticDir string,
	log *logger.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger(log))
	r.Use(middleware.MethodOverride)
	r.Use(sessions.LoadAndTrack)
	r.NotFound(renderer.NotFound)

	fileServer := http.StripPrefix(middleware.StaticPrefix, http.FileServer(http.Dir(staticDir)))
	r.Handle(middleware.StaticPrefix+"*", fileServer)

	r.Get("/", campgrounds.Home)

	r.Route("/campgrounds", func(r chi.Router) {
		r.Get("/", campgrounds.Index)

		// Static segments win over {id}, so /new and /user never reach Show.
		r.Get("/{id}", campgrounds.Show)

		r.Group(func(r chi.Router) {
			r.Use(sessions.RequireLogin)
			r.Post("/", campgrounds.Create)
			r.Get("/new", campgrounds.New)
			r.Get("/{id}/edit", campgrounds.Edit)
			r.Patch("/{id}", campgrounds.Update)
			r.Delete("/{id}", campgrounds.Delete)
			r.Post("/{id}/like", campgrounds.Like)
			r.Post("/{id}/nolike", campgrounds.Unlike)

			r.Post("/{id}/review", reviews.Create)
			r.Delete("/{id}/review/{reviewId}", reviews.Delete)
		})

		r.Route("/user", func(r chi.Router) {
			r.Get("/register", users.ShowRegisterForm)
			r.Post("/register", users.Register)
			r.Get("/login", users.ShowLoginForm)
			r.Post("/login", users.Login)
			r.Get("/{userId}", users.ShowProfile)

			r.Group(func(r chi.Router) {
				r.Use(sessions.RequireLogin)
				r.Get("/logout", users.Logout)
				r.Patch("/{userId}", users.ChangeAvatar)
			})
		})
	})

	return r
}
