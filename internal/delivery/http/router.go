package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, handler *Handler) {
	// Health check and metrics
	app.Get("/health", handler.HealthCheck)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API v1 routes
	api := app.Group("/api/v1")
	{
		// Complaints
		api.Get("/complaints", handler.ListComplaints)
		api.Post("/complaints", handler.CreateComplaint)
		api.Get("/complaints/:id", handler.GetComplaint)
		api.Post("/complaints/:id/resolve", handler.ResolveComplaint)
		api.Post("/complaints/:id/unresolve", handler.UnresolveComplaint)
		api.Get("/complaints/:id/actions", handler.GetComplaintActions)

		// Priority engine
		api.Get("/priority-zones", handler.GetPriorityZones)
		api.Get("/priority-zones/geojson", handler.GetPriorityZonesGeoJSON)
		api.Get("/hotspots", handler.GetHotspots)
		api.Get("/scores", handler.GetScores)

		// Analytics
		api.Get("/analytics", handler.GetAnalytics)
		api.Get("/dashboard", handler.GetDashboard)

		api.Post("/geocode", handler.Geocode)
	}
}
