package routes

import (
	"github.com/gin-gonic/gin"

	config "github.com/phillip/impact-connect-go/config"
	controllers "github.com/phillip/impact-connect-go/controllers"
	middleware "github.com/phillip/impact-connect-go/middleware"
)

func SetupRoutes(r *gin.Engine, cfg *config.Config) {
	auth := middleware.AuthMiddleware(cfg)

	// Events
	events := r.Group("/events")
	events.Use(auth)
	{
		events.GET("/", controllers.FeedEvents(cfg))
		events.POST("/create", controllers.CreateEvent(cfg))
		events.DELETE("/delete/:id", controllers.DeleteEvent(cfg))
		events.POST("/apply/:id", controllers.ApplyEvent(cfg))
		events.GET("/my-events/:userId", controllers.MyEvents(cfg))
		events.GET("/:id", controllers.GetEvent(cfg))
		events.GET("/:id/applications", controllers.GetEventApplications(cfg))
		events.POST("/:id/comment", controllers.CreateComment(cfg))
		events.POST("/:id/like", controllers.LikeEvent(cfg))
		events.POST("/:id/status", controllers.UpdateEventStatus(cfg))
	}

	// Connections
	connections := r.Group("/connections")
	connections.Use(auth)
	{
		connections.GET("", controllers.ListConnections(cfg))
		connections.POST("/:id", controllers.Connect(cfg))
		connections.DELETE("/:id", controllers.Disconnect(cfg))
	}
}
