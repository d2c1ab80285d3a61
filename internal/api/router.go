package api

import (
	"net/http"

	"github.com/dom/game-catalog/internal/api/handlers"
	"github.com/dom/game-catalog/internal/api/middleware"
	"github.com/dom/game-catalog/internal/config"
	"github.com/dom/game-catalog/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func NewRouter(services *service.Services, cfg *config.Config, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.RequestLogger(logger.Named("http")))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth, logger)
	gameHandler := handlers.NewGameHandler(services.Game, logger)
	installerHandler := handlers.NewInstallerHandler(services.Installer, logger)
	catalogHandler := handlers.NewCatalogHandler(services.Catalog, logger)
	libraryHandler := handlers.NewLibraryHandler(services.Library, logger)
	featuredHandler := handlers.NewFeaturedHandler(services.Featured, logger)

	auth := middleware.Auth(services.Auth, logger)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(auth)
				r.Get("/me", authHandler.Me)
				r.Post("/logout", authHandler.Logout)
			})
		})

		r.Route("/games", func(r chi.Router) {
			r.Get("/", gameHandler.List)
			r.Post("/", gameHandler.List)
			r.Get("/{slug}", gameHandler.Get)
			r.Get("/{slug}/screenshots", gameHandler.Screenshots)

			r.With(auth).Post("/submissions", gameHandler.Submit)
			r.With(auth, middleware.Staff).Post("/{slug}/publish", gameHandler.Publish)
		})

		r.Route("/installers", func(r chi.Router) {
			r.Get("/{slug}", installerHandler.List)
			r.Get("/{slug}/yaml", installerHandler.YAML)
			r.Get("/{slug}/json", installerHandler.JSON)

			r.Group(func(r chi.Router) {
				r.Use(auth)
				r.Post("/", installerHandler.Create)
				r.Put("/{slug}", installerHandler.Update)
				r.Get("/{slug}/issues", installerHandler.Issues)
				r.Post("/{slug}/issues", installerHandler.ReportIssue)
				r.With(middleware.Staff).Post("/{slug}/publish", installerHandler.Publish)
			})
		})

		r.Route("/library", func(r chi.Router) {
			r.Use(auth)
			r.Get("/{username}", libraryHandler.Get)
			r.Post("/games/{slug}", libraryHandler.AddGame)
			r.Delete("/games/{slug}", libraryHandler.RemoveGame)
		})

		r.Get("/featured", featuredHandler.List)
		r.Get("/genres", catalogHandler.ListGenres)
		r.Get("/companies/{slug}", catalogHandler.GetCompany)
		r.Get("/platforms/{slug}", catalogHandler.GetPlatform)

		// Catalog administration
		r.Group(func(r chi.Router) {
			r.Use(auth, middleware.Staff)
			r.Post("/featured", featuredHandler.Create)
			r.Post("/genres", catalogHandler.CreateGenre)
			r.Post("/companies", catalogHandler.CreateCompany)
			r.Put("/companies/{slug}", catalogHandler.UpdateCompany)
			r.Put("/platforms/{slug}/default-installer", catalogHandler.SetDefaultInstaller)
			r.Post("/runners", catalogHandler.CreateRunner)
			r.Delete("/runners/{slug}", catalogHandler.DeleteRunner)
		})
	})

	return r
}
