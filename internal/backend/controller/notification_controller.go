package controller

import (
	"fmt"

	"campuscomplaint/internal/backend/middleware"
	"campuscomplaint/internal/backend/service"
	"campuscomplaint/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// NotificationController handles notification endpoints.
type NotificationController struct {
	notificationService *service.NotificationService
}

func NewNotificationController(notificationService *service.NotificationService) *NotificationController {
	return &NotificationController{notificationService: notificationService}
}

func (h *NotificationController) Unread(c *gin.Context) {
	page, err := pageParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	principal, _ := middleware.CurrentPrincipal(c)
	items, total, err := h.notificationService.Unread(c.Request.Context(), principal.ID, page)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, toNotifications(items), total, page.Page, page.Size)
}

func (h *NotificationController) MarkRead(c *gin.Context) {
	var req MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}
	principal, _ := middleware.CurrentPrincipal(c)
	changed, err := h.notificationService.MarkRead(c.Request.Context(), principal.ID, req.NotificationIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, fmt.Sprintf("%d notifications marked as read", changed), nil)
}

// MarkReadRequest defines the mark-read payload.
type MarkReadRequest struct {
	NotificationIDs []int64 `json:"notificationIds"`
}
