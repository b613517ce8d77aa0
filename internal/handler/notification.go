package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ridehail/internal/domain"
	"ridehail/internal/repository"
)

// NotificationHandler handles HTTP requests for in-app notifications.
type NotificationHandler struct {
	notificationRepo repository.NotificationRepository
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationRepo repository.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notificationRepo: notificationRepo}
}

// NotificationResponse is the HTTP response for a notification.
type NotificationResponse struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	RideID     string `json:"ride_id,omitempty"`
	RideStatus string `json:"ride_status,omitempty"`
	Read       bool   `json:"read"`
	CreatedAt  string `json:"created_at"`
}

func toNotificationResponse(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:         n.ID,
		Title:      n.Title,
		Message:    n.Message,
		RideID:     n.RideID,
		RideStatus: string(n.Status),
		Read:       n.Read,
		CreatedAt:  n.CreatedAt.Format(time.RFC3339),
	}
}

// GetByUser handles GET /v1/users/:id/notifications
func (h *NotificationHandler) GetByUser(c *gin.Context) {
	notifications, err := h.notificationRepo.GetByUserID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		response = append(response, toNotificationResponse(n))
	}
	respondJSON(c, http.StatusOK, response)
}

// MarkRead handles POST /v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.notificationRepo.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"read": true})
}
