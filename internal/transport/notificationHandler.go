package transport

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/assitosante/notification-agent/internal/entity"
	"github.com/assitosante/notification-agent/internal/scheduler"
	"github.com/assitosante/notification-agent/internal/service"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	service   service.NotificationService
	scheduler *scheduler.ReminderScheduler
}

func NewNotificationHandler(service service.NotificationService, scheduler *scheduler.ReminderScheduler) *NotificationHandler {
	return &NotificationHandler{service: service, scheduler: scheduler}
}

func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	notifications := h.service.Notifications()

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"count":         len(notifications),
		"unread":        h.service.UnreadCount(),
	})
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	if err := h.service.MarkAsRead(c.Request.Context(), id); err != nil {
		if errors.Is(err, entity.ErrNotificationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread": h.service.UnreadCount()})
}

func (h *NotificationHandler) ClearAll(c *gin.Context) {
	if err := h.service.ClearAll(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread": 0})
}

func (h *NotificationHandler) Refresh(c *gin.Context) {
	if err := h.service.Load(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":  len(h.service.Notifications()),
		"unread": h.service.UnreadCount(),
	})
}

func (h *NotificationHandler) GetReminders(c *gin.Context) {
	entries := h.scheduler.Entries()

	c.JSON(http.StatusOK, gin.H{
		"reminders": entries,
		"count":     len(entries),
	})
}
