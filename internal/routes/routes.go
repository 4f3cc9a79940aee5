package routes

import (
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saeid-a/FitProfileSync/internal/config"
	"github.com/saeid-a/FitProfileSync/internal/gateway"
	"github.com/saeid-a/FitProfileSync/internal/handlers"
	"github.com/saeid-a/FitProfileSync/internal/middleware"
	"github.com/saeid-a/FitProfileSync/internal/session"
	"github.com/saeid-a/FitProfileSync/internal/store"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool, cache store.Cache) {
	authenticator := gateway.NewPgAuthenticator(db)
	remote := store.NewPostgresRemoteStore(db)
	sessions := session.NewManager(authenticator, remote, cache)

	authHandler := handlers.NewAuthHandler(authenticator, remote, cache, sessions, cfg.JWTSecret)
	profileHandler := handlers.NewProfileHandler(sessions)
	onboardingHandler := handlers.NewOnboardingHandler(sessions)
	stateWSHandler := handlers.NewStateWSHandler(sessions, cfg.JWTSecret)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/password-reset", authHandler.RequestPasswordReset)
	auth.Post("/logout", middleware.AuthRequired(cfg.JWTSecret), authHandler.Logout)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	profile := authProtected.Group("/profile")
	profile.Get("", profileHandler.GetProfile)
	profile.Put("", profileHandler.UpdateProfile)
	profile.Get("/metrics", profileHandler.GetMetrics)

	onboarding := authProtected.Group("/onboarding")
	onboarding.Post("/start", onboardingHandler.Start)
	onboarding.Get("", onboardingHandler.State)
	onboarding.Get("/status", onboardingHandler.Status)
	onboarding.Post("/next", onboardingHandler.Next)
	onboarding.Post("/previous", onboardingHandler.Previous)
	onboarding.Delete("", onboardingHandler.Abandon)

	api.Use("/v1/ws", stateWSHandler.WebSocketAuth)
	api.Get("/v1/ws", websocket.New(stateWSHandler.HandleWebSocket))
}
