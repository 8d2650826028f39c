package controller

import (
	"strings"

	"campuscomplaint/internal/backend/middleware"
	"campuscomplaint/internal/backend/service"
	"campuscomplaint/internal/model"
	"campuscomplaint/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// UserController handles profile endpoints.
type UserController struct {
	userService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{userService: userService}
}

// Profile returns the caller's profile without the envelope.
func (h *UserController) Profile(c *gin.Context) {
	principal, _ := middleware.CurrentPrincipal(c)
	user, err := h.userService.Profile(c.Request.Context(), principal.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Raw(c, toUser(*user))
}

func (h *UserController) Edit(c *gin.Context) {
	var req EditUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}
	principal, _ := middleware.CurrentPrincipal(c)
	if err := h.userService.Edit(c.Request.Context(), principal.ID, strings.TrimSpace(req.Name), strings.TrimSpace(req.MobileNumber)); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "Profile updated successfully", nil)
}

func (h *UserController) List(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	out := make([]model.User, 0, len(users))
	for _, u := range users {
		out = append(out, toUser(u))
	}
	response.Success(c, out)
}

// EditUserRequest defines profile edit payload.
type EditUserRequest struct {
	Name         string `json:"name"`
	MobileNumber string `json:"mobileNumber"`
}
