// internal/app/router.go
package app

import (
	adminHandler "beatreach-service/internal/handlers/admin"
	contactHandler "beatreach-service/internal/handlers/contacts"
	segmentHandler "beatreach-service/internal/handlers/segments"
	syncHandler "beatreach-service/internal/handlers/sync"
	"beatreach-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	SyncHandler    *syncHandler.SyncHandler
	SegmentHandler *segmentHandler.SegmentHandler
	ContactHandler *contactHandler.ContactHandler
	AdminHandler   *adminHandler.AdminHandler
	AuthMiddleware *middleware.AuthMiddleware
	SyncRateLimit  gin.HandlerFunc
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== Event Ingestion ====================
	// Called by the storefront and email provider webhooks; rate limited
	// per client, authenticated as an operator token.
	sync := api.Group("/sync")
	sync.Use(h.AuthMiddleware.Auth(), h.SyncRateLimit)
	{
		sync.POST("/follow-gate", h.SyncHandler.FollowGate)
		sync.POST("/purchase", h.SyncHandler.Purchase)
		sync.POST("/enrollment", h.SyncHandler.Enrollment)
		sync.POST("/engagement", h.SyncHandler.Engagement)
		sync.POST("/manual-tag", h.SyncHandler.ManualTag)
	}

	// ==================== Contacts ====================
	contacts := api.Group("/contacts")
	contacts.Use(h.AuthMiddleware.Auth())
	{
		contacts.GET("/store/:storeId", h.ContactHandler.List)
		contacts.GET("/store/:storeId/stats", h.ContactHandler.Stats)
		contacts.GET("/store/:storeId/by-email", h.ContactHandler.GetByEmail)
		contacts.GET("/:id", h.ContactHandler.Get)
		contacts.GET("/:id/activity", h.ContactHandler.Activity)
		contacts.POST("/:id/record-sent", h.ContactHandler.RecordSent)
	}

	// ==================== Segments ====================
	segments := api.Group("/segments")
	segments.Use(h.AuthMiddleware.Auth())
	{
		segments.GET("/store/:storeId", h.SegmentHandler.List)
		segments.POST("/query", h.SegmentHandler.Query)
		segments.POST("/store/:storeId/prebuilt", h.SegmentHandler.CreatePrebuilt)
	}

	// ==================== Admin Batch Jobs ====================
	adminRoutes := api.Group("/admin")
	adminRoutes.Use(h.AuthMiddleware.Auth(), h.AuthMiddleware.RequireRole("operator", "admin"))
	{
		adminRoutes.POST("/retag-contacts", h.AdminHandler.RetagContacts)
		adminRoutes.POST("/tag-enrolled-users", h.AdminHandler.TagEnrolledUsers)
	}
}
