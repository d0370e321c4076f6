package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/sentinelbot/sentinel-backend/internal/handlers"
)

func SetupRoutes(r *chi.Mux) {
	// Message ingest (gateway relay auth, not admin sessions)
	r.Post("/api/messages", handlers.IngestMessage)

	// Admin auth routes (accounts are created directly in the database)
	r.Post("/api/admin/signin", handlers.AdminSignin)
	r.Post("/api/admin/signout", handlers.AdminSignout)

	// Strike administration
	r.Get("/api/admin/strikes", handlers.RequireAdmin(handlers.GetStrikes))
	r.Delete("/api/admin/strikes", handlers.RequireAdmin(handlers.ClearStrikes))

	// Audit views
	r.Get("/api/admin/violations", handlers.RequireAdmin(handlers.GetViolations))
	r.Get("/api/admin/actions", handlers.RequireAdmin(handlers.GetModActions))
	r.Get("/api/admin/events", handlers.RequireAdmin(handlers.GetRecentEvents))

	// Manual moderation actions (kick / ban / timeout)
	r.Post("/api/admin/actions", handlers.RequireAdmin(handlers.TakeAction))

	// WebSocket endpoints
	r.Get("/ws/gateway", handlers.GatewayWebSocket) // platform relay feed
	r.Get("/ws/modlog", handlers.ModlogWebSocket)   // dashboard live log
}
