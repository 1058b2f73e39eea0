package routes

import (
	"github.com/bonhomie/fest-system/handlers"
	"github.com/bonhomie/fest-system/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	Profile      *handlers.ProfileHandler
	Event        *handlers.EventHandler
	Registration *handlers.RegistrationHandler
	Payment      *handlers.PaymentHandler
	Result       *handlers.ResultHandler
	Export       *handlers.ExportHandler
	Dashboard    *handlers.DashboardHandler
	WebSocket    *handlers.WebSocketHandler
}

func InitRoutes(h Handlers, jwtSecret string) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret)
	staffOnly := middleware.Authorize("coordinator", "admin")
	adminOnly := middleware.Authorize("admin")

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Post("/auth/register", h.Auth.Register)
	router.Post("/auth/login", h.Auth.Login)

	router.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Post("/auth/password", h.Auth.UpdatePassword)
	})

	router.Route("/profiles", func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/me", h.Profile.GetMe)
		r.Put("/me", h.Profile.UpdateMe)
		r.Get("/me/results", h.Profile.ListMyResults)

		r.Group(func(r chi.Router) {
			r.Use(staffOnly)

			r.Get("/", h.Profile.List)
			r.Get("/resolve", h.Profile.ResolveRollNumber)
			r.Post("/offline", h.Profile.CreateOffline)
			r.Get("/me/assignments", h.Event.ListMyAssignedEvents)
			r.Get("/{profileID}", h.Profile.GetByID)
		})

		r.With(adminOnly).Delete("/{profileID}", h.Profile.Delete)
	})

	router.Route("/events", func(r chi.Router) {
		// Event catalog and results are public.
		r.Get("/", h.Event.List)
		r.Get("/{eventID}", h.Event.GetByID)
		r.Get("/{eventID}/results", h.Result.ListByEvent)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Get("/{eventID}/registrations", h.Registration.ListByEvent)

			r.Group(func(r chi.Router) {
				r.Use(staffOnly)

				r.Post("/{eventID}/live", h.Event.GoLive)
				r.Delete("/{eventID}/live", h.Event.EndLive)
				r.Post("/{eventID}/cover", h.Event.UploadCover)
				r.Post("/{eventID}/qr", h.Event.UploadQR)
				r.Post("/{eventID}/results", h.Result.Announce)
				r.Get("/{eventID}/export", h.Export.ExportConfirmedCSV)
				r.Get("/{eventID}/audit", h.Event.AuditTrail)
			})

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)

				r.Post("/", h.Event.Create)
				r.Put("/{eventID}", h.Event.Update)
				r.Delete("/{eventID}", h.Event.Delete)
				r.Post("/{eventID}/coordinators", h.Event.AssignCoordinator)
				r.Get("/{eventID}/coordinators", h.Event.ListCoordinators)
				r.Delete("/{eventID}/coordinators/{profileID}", h.Event.UnassignCoordinator)
			})
		})
	})

	router.Route("/registrations", func(r chi.Router) {
		r.Use(authenticate)

		r.Post("/individual", h.Registration.RegisterIndividual)
		r.Post("/team", h.Registration.RegisterTeam)
		r.Get("/{registrationID}", h.Registration.GetByID)
		r.Post("/{registrationID}/screenshot", h.Registration.UploadScreenshot)
		r.Post("/{registrationID}/members", h.Registration.AddMember)
		r.Delete("/{registrationID}/members/{profileID}", h.Registration.RemoveMember)
		r.Put("/{registrationID}/members", h.Registration.ReplaceMember)
		r.Delete("/{registrationID}", h.Registration.DeleteTeam)

		r.Group(func(r chi.Router) {
			r.Use(staffOnly)

			r.Post("/{registrationID}/verify", h.Payment.Verify)
			r.Post("/{registrationID}/reject", h.Payment.Reject)
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Use(staffOnly)

		r.Get("/dashboard/stats", h.Dashboard.GetStats)
		r.Get("/dashboard/activity", h.Dashboard.RecentActivity)
	})

	router.Get("/ws/events", h.WebSocket.ServeEvents)
	router.Get("/ws/events/{eventID}", h.WebSocket.ServeEvent)

	return router
}
