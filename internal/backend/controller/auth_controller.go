package controller

import (
	"strings"

	"campuscomplaint/internal/backend/service"
	"campuscomplaint/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// AuthController handles auth-related HTTP endpoints.
type AuthController struct {
	authService *service.AuthService
}

// NewAuthController creates a new AuthController.
func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

// Signup handles user registration.
func (h *AuthController) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}
	err := h.authService.Signup(c.Request.Context(), service.SignupInput{
		Name:            req.Name,
		MobileNumber:    strings.TrimSpace(req.MobileNumber),
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "User registered successfully", nil)
}

// Login returns the bare token pair, without the envelope.
func (h *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}
	tokens, err := h.authService.Login(c.Request.Context(), strings.TrimSpace(req.MobileNumber), req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Raw(c, tokens)
}

// Refresh handles token refresh.
func (h *AuthController) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}
	tokens, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, tokens)
}

// UpdateRole changes another user's role.
func (h *AuthController) UpdateRole(c *gin.Context) {
	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}
	if err := h.authService.UpdateRole(c.Request.Context(), req.UserID, req.Role); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "Role updated", nil)
}

// RequestPasswordReset emails an OTP.
func (h *AuthController) RequestPasswordReset(c *gin.Context) {
	var req PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}
	if err := h.authService.RequestPasswordReset(c.Request.Context(), strings.TrimSpace(req.Email)); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "OTP sent to your email", nil)
}

// ResetPassword sets a new password with the OTP.
func (h *AuthController) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}
	if err := h.authService.ResetPassword(c.Request.Context(), strings.TrimSpace(req.Email), req.OTP, req.NewPassword); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "Password reset successful", nil)
}

// SignupRequest defines registration payload. Field checks happen in the service
// so the client sees field-specific messages.
type SignupRequest struct {
	Name            string `json:"name"`
	MobileNumber    string `json:"mobileNumber"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// LoginRequest defines login payload.
type LoginRequest struct {
	MobileNumber string `json:"mobileNumber"`
	Password     string `json:"password"`
}

// RefreshRequest defines refresh payload.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// UpdateRoleRequest defines role change payload.
type UpdateRoleRequest struct {
	UserID int64  `json:"userId" binding:"required"`
	Role   string `json:"role" binding:"required"`
}

// PasswordResetRequest defines OTP request payload.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest defines password reset payload.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}
