package transport

import (
	"time"

	"github.com/assitosante/notification-agent/internal/scheduler"
	"github.com/assitosante/notification-agent/internal/service"
	"github.com/assitosante/notification-agent/internal/transport/middleware"

	"github.com/gin-gonic/gin"
)

func InitRoutes(notifications service.NotificationService, reminders *scheduler.ReminderScheduler) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Logger(), gin.Recovery())

	handler := NewNotificationHandler(notifications, reminders)

	// API routes
	api := router.Group("/api/v1")
	{
		api.GET("/notifications", handler.GetNotifications)
		api.POST("/notifications/:id/read", handler.MarkAsRead)
		api.POST("/notifications/read-all", handler.ClearAll)
		api.POST("/notifications/refresh", handler.Refresh)
		api.GET("/reminders", handler.GetReminders)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"service":   "notification-agent",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	return router
}
