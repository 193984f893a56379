package routes

import (
	"github.com/careerdeck/gatekeeper/internal/handlers"
	"github.com/careerdeck/gatekeeper/internal/identity"
	"github.com/careerdeck/gatekeeper/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	accountHandler *handlers.AccountHandler,
	activityHandler *handlers.ActivityHandler,
	subscriptionHandler *handlers.SubscriptionHandler,
	resumeHandler *handlers.ResumeHandler,
	sessions *identity.SessionManager,
) {
	authRateLimit := middleware.DefaultAuthRateLimit()

	// Public routes, tightly rate limited
	router.With(middleware.RateLimitByIP(authRateLimit)).Post("/auth/login", authHandler.Login)
	router.With(middleware.RateLimitByIP(authRateLimit)).Post("/auth/login/verify", authHandler.VerifyLogin)
	router.With(middleware.RateLimitByIP(authRateLimit)).Post("/auth/password-reset", authHandler.RequestPasswordReset)

	// Protected routes, session required
	router.Group(func(r chi.Router) {
		r.Use(identity.Middleware(sessions))
		r.Use(middleware.RateLimitByIP(middleware.DefaultAPIRateLimit()))

		r.Get("/account/profile", accountHandler.GetProfile)
		r.Put("/account/language", accountHandler.ChangeLanguage)
		r.Post("/account/language/verify", accountHandler.ConfirmLanguage)
		r.Get("/account/login-history", accountHandler.LoginHistory)

		r.Post("/posts", activityHandler.CreatePost)
		r.Post("/applications", activityHandler.Apply)

		r.Post("/subscriptions", subscriptionHandler.Start)
		r.Post("/subscriptions/confirm", subscriptionHandler.Confirm)
		r.Post("/subscriptions/payment", subscriptionHandler.PaymentCallback)

		r.Post("/resume", resumeHandler.Start)
		r.Post("/resume/confirm", resumeHandler.Confirm)
		r.Post("/resume/payment", resumeHandler.PaymentCallback)
		r.Get("/resume", resumeHandler.Get)
	})
}
